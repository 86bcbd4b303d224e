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

// Package formatutil colors the text printed by the tools and sanitizes the strings that come from analyzed
// programs.
package formatutil

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"golang.org/x/term"
)

// ColorMode decides when colors are used
type ColorMode int32

const (
	// ColorAuto uses colors when the standard output is a terminal
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

var colorMode atomic.Int32

// SetColorMode sets the color mode of all the color functions
func SetColorMode(m ColorMode) {
	colorMode.Store(int32(m))
}

func colorsEnabled() bool {
	switch ColorMode(colorMode.Load()) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return term.IsTerminal(1)
	}
}

var (
	Bold   = Color("\033[1m%s\033[0m")
	Faint  = Color("\033[2m%s\033[0m")
	Red    = Color("\033[1;31m%s\033[0m")
	Green  = Color("\033[1;32m%s\033[0m")
	Yellow = Color("\033[1;33m%s\033[0m")
	Purple = Color("\033[1;34m%s\033[0m")
	Cyan   = Color("\033[1;36m%s\033[0m")
)

// Color returns a function printing its arguments in the color of colorString, a format with one %s verb.
func Color(colorString string) func(...any) string {
	return func(args ...any) string {
		if colorsEnabled() {
			return fmt.Sprintf(colorString, fmt.Sprint(args...))
		}
		return fmt.Sprint(args...)
	}
}

// Sanitize escapes the control characters of s, so that names read from a program file cannot inject terminal
// escape sequences.
func Sanitize(s string) string {
	q := strconv.Quote(s)
	return q[1 : len(q)-1]
}
