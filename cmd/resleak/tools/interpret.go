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

package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotRead = regexp.MustCompile("failed to read program file")

// Captures the kind of error that happen when you put a flag at the end instead of program files
var flagAsProgramFile = regexp.MustCompile(`open -(\w+)`)

// Captures opcodes the program parser does not know
var unknownOpcode = regexp.MustCompile(`unknown opcode "[^"]*[A-Z][^"]*"`)

// Captures the error of a class defined in several program files
var duplicateClass = regexp.MustCompile(`class \S+ is defined in`)

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotRead.MatchString(errMsg) {
		if flagAsProgramFile.MatchString(errMsg) {
			return "all command line flags should be before the paths to the program files"
		}
		return "make sure the paths to the program files are correct"
	}
	if unknownOpcode.MatchString(errMsg) {
		return "opcode mnemonics are lower case, e.g. invokevirtual"
	}
	if duplicateClass.MatchString(errMsg) {
		return "each class must be defined in exactly one program file"
	}
	return ""
}
