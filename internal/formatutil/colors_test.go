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

package formatutil

import "testing"

func TestColorModes(t *testing.T) {
	defer SetColorMode(ColorAuto)

	SetColorMode(ColorAlways)
	if got := Red("x"); got != "\033[1;31mx\033[0m" {
		t.Errorf("expected a red x, got %q", got)
	}
	SetColorMode(ColorNever)
	if got := Red("x", 1); got != "x1" {
		t.Errorf("expected plain text, got %q", got)
	}
}

func TestSanitize(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"java.io.File.<init>()V", "java.io.File.<init>()V"},
		{"a\033[31mb", `a\x1b[31mb`},
		{"line\nbreak", `line\nbreak`},
		{"", ""},
	} {
		if got := Sanitize(tc.in); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
