// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"io"
	"log"
	"os"
)

// LogLevel is the verbosity of the detector's logs. Each level includes the levels below it.
type LogLevel int

const (
	// ErrLevel only logs the methods whose analysis failed
	ErrLevel LogLevel = iota + 1

	// WarnLevel adds the classes missing from the type lookup and the lookup failures
	WarnLevel

	// InfoLevel adds the configured policies and the summary of a run
	InfoLevel

	// DebugLevel adds one line per analyzed or skipped method
	DebugLevel

	// TraceLevel adds the verdict of every candidate allocation, which is only practical on small programs
	TraceLevel
)

var levelPrefixes = [...]string{
	ErrLevel:   "[ERROR] ",
	WarnLevel:  "[WARN] ",
	InfoLevel:  "[INFO] ",
	DebugLevel: "[DEBUG] ",
	TraceLevel: "[TRACE] ",
}

func (l LogLevel) String() string {
	if l < ErrLevel || l > TraceLevel {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return levelPrefixes[l][1 : len(levelPrefixes[l])-2]
}

// A LogGroup holds one logger per level. Messages above the configured level are dropped before formatting.
type LogGroup struct {
	level   LogLevel
	loggers [TraceLevel + 1]*log.Logger
}

// NewLogGroup returns the log group for the log-level and silence-warn options of config. The loggers write to
// stderr until SetAllOutput is called.
func NewLogGroup(config *Config) *LogGroup {
	level := LogLevel(config.LogLevel)
	if config.SilenceWarn && level >= WarnLevel {
		level = ErrLevel
	}
	l := &LogGroup{level: level}
	for lvl := ErrLevel; lvl <= TraceLevel; lvl++ {
		l.loggers[lvl] = log.New(os.Stderr, levelPrefixes[lvl], log.LstdFlags)
	}
	return l
}

// Level returns the level of the log group
func (l *LogGroup) Level() LogLevel {
	return l.level
}

// Enabled returns true if messages of the level are logged
func (l *LogGroup) Enabled(level LogLevel) bool {
	return level <= l.level
}

// Logger returns the logger of the level, for callers that need a *log.Logger.
// Messages printed directly on it are not filtered by the level of the group.
func (l *LogGroup) Logger(level LogLevel) *log.Logger {
	if level < ErrLevel {
		level = ErrLevel
	} else if level > TraceLevel {
		level = TraceLevel
	}
	return l.loggers[level]
}

// SetOutput redirects the logger of one level
func (l *LogGroup) SetOutput(level LogLevel, w io.Writer) {
	l.Logger(level).SetOutput(w)
}

// SetAllOutput redirects every logger of the group to w. Tests use it to capture or discard the logs.
func (l *LogGroup) SetAllOutput(w io.Writer) {
	for lvl := ErrLevel; lvl <= TraceLevel; lvl++ {
		l.loggers[lvl].SetOutput(w)
	}
}

// SetAllFlags sets the log flags of every logger of the group
func (l *LogGroup) SetAllFlags(x int) {
	for lvl := ErrLevel; lvl <= TraceLevel; lvl++ {
		l.loggers[lvl].SetFlags(x)
	}
}

func (l *LogGroup) logf(level LogLevel, format string, v ...any) {
	if l.Enabled(level) {
		l.loggers[level].Printf(format, v...)
	}
}

// Tracef logs the analysis of a single candidate
func (l *LogGroup) Tracef(format string, v ...any) { l.logf(TraceLevel, format, v...) }

// Debugf logs progress at the granularity of methods
func (l *LogGroup) Debugf(format string, v ...any) { l.logf(DebugLevel, format, v...) }

// Infof logs the configuration and results of a run
func (l *LogGroup) Infof(format string, v ...any) { l.logf(InfoLevel, format, v...) }

// Warnf logs problems that make the results incomplete, such as missing classes
func (l *LogGroup) Warnf(format string, v ...any) { l.logf(WarnLevel, format, v...) }

// Errorf logs failures of the analysis of a method
func (l *LogGroup) Errorf(format string, v ...any) { l.logf(ErrLevel, format, v...) }
