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
	"os"
	"path"

	"github.com/awslabs/ar-resource-leaks/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the analysis and the specification of the leak problems.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// LeakProblems lists the resource leak specifications. When empty, the built-in stream policy is used.
	LeakProblems []LeakSpec `yaml:"leak-problems"`

	// Filters lists the methods that are not analyzed
	Filters []CodeIdentifier `yaml:"filters"`

	// Hierarchy maps class names to their direct supertypes. It complements the type information of the program
	// and of the standard library.
	Hierarchy map[string][]string `yaml:"hierarchy"`
}

// LeakSpec specifies one kind of resource to track
type LeakSpec struct {
	// RuleID is the identifier of the findings reported for this kind of resource
	RuleID string `yaml:"rule-id"`

	// Tracked lists the types whose allocations are resources
	Tracked []string `yaml:"tracked"`

	// Excluded lists subtypes of tracked types that are not resources, e.g. in-memory streams
	Excluded []string `yaml:"excluded"`

	// CloseMethods identifies the methods closing a resource when called on it. The class of the identifiers is
	// matched against the owner of the invoked method.
	CloseMethods []CodeIdentifier `yaml:"close-methods"`

	// Priority is the priority of the findings, from 1 (high) to 3 (low). Default is 2.
	Priority int `yaml:"priority"`

	// CloseOnDeclaredType restricts the close methods to invokevirtual calls whose owner is the allocated class
	CloseOnDeclaredType bool `yaml:"close-on-declared-type"`
}

// Options holds the global options of the analysis
type Options struct {
	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// NumRoutines is the number of methods analyzed in parallel. Values <= 0 mean 1.
	NumRoutines int `yaml:"num-routines"`

	// MaxFindings sets a limit for the number of findings reported. If MaxFindings > 0, then at most MaxFindings will
	// be reported. Otherwise, if MaxFindings <= 0, it is ignored.
	MaxFindings int `yaml:"max-findings"`

	// SkipUnreachableExit skips the methods whose exit cannot be reached from their entry, e.g. methods that
	// always loop
	SkipUnreachableExit bool `yaml:"skip-unreachable-exit"`

	// SilenceWarn suppresses warnings
	SilenceWarn bool `yaml:"silence-warn"`

	// StreamCloseOnSupertypes lets the built-in stream policy accept close()V invoked through any owner, such as
	// java.io.Closeable, instead of only invokevirtual on the allocated class
	StreamCloseOnSupertypes bool `yaml:"stream-close-on-supertypes"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:   "",
		LeakProblems: nil,
		Filters:      nil,
		Hierarchy:    map[string][]string{},
		Options: Options{
			LogLevel:            int(InfoLevel),
			NumRoutines:         DefaultNumRoutines,
			MaxFindings:         0,
			SkipUnreachableExit: false,
			SilenceWarn:         false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadBytes(filename, b)
}

// LoadBytes reads a configuration from the content b of the file filename
func LoadBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.LogLevel < int(ErrLevel) || cfg.LogLevel > int(TraceLevel) {
		return nil, fmt.Errorf("invalid log-level %d in %s, should be between %d and %d", cfg.LogLevel,
			filename, ErrLevel, TraceLevel)
	}
	if cfg.NumRoutines <= 0 {
		cfg.NumRoutines = DefaultNumRoutines
	}
	if cfg.Hierarchy == nil {
		cfg.Hierarchy = map[string][]string{}
	}

	for i := range cfg.LeakProblems {
		spec := &cfg.LeakProblems[i]
		if spec.RuleID == "" {
			return nil, fmt.Errorf("leak problem %d in %s has no rule-id", i, filename)
		}
		if len(spec.Tracked) == 0 {
			return nil, fmt.Errorf("leak problem %s in %s tracks no type", spec.RuleID, filename)
		}
		if len(spec.CloseMethods) == 0 {
			return nil, fmt.Errorf("leak problem %s in %s has no close method", spec.RuleID, filename)
		}
		if spec.Priority == 0 {
			spec.Priority = DefaultPriority
		}
		if spec.Priority < MinPriority || spec.Priority > MaxPriority {
			return nil, fmt.Errorf("leak problem %s in %s has priority %d, should be between %d and %d",
				spec.RuleID, filename, spec.Priority, MinPriority, MaxPriority)
		}
		funcutil.MapInPlace(spec.CloseMethods, CompileRegexes)
	}
	funcutil.MapInPlace(cfg.Filters, CompileRegexes)

	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// SourceFile returns the name of the file the config has been loaded from, if any
func (c Config) SourceFile() string {
	return c.sourceFile
}

// IsFiltered returns true if the method identified by cid matches any filter of the config
func (c Config) IsFiltered(cid CodeIdentifier) bool {
	return ExistsCid(c.Filters, func(f CodeIdentifier) bool {
		return f.Matches(cid.Class, cid.Method, cid.Descriptor)
	})
}

// IsCloseMethod returns true if the method identified by cid is a close method of the leak specification
func (ls LeakSpec) IsCloseMethod(cid CodeIdentifier) bool {
	return ExistsCid(ls.CloseMethods, func(m CodeIdentifier) bool {
		return m.Matches(cid.Class, cid.Method, cid.Descriptor)
	})
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxFindings returns true if n findings exceed the maximum number of findings of the configuration.
// (if the configuration setting is <= 0, then this returns false)
func (c Config) ExceedsMaxFindings(n int) bool {
	if c.MaxFindings <= 0 {
		return false
	}
	return n > c.MaxFindings
}
