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

package bytecode

import (
	"errors"
	"testing"

	"golang.org/x/exp/slices"
)

func TestParseMethodDescriptor(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		params   []string
		ret      string
		argWords int
	}{
		{"()V", nil, "V", 0},
		{"(I)I", []string{"I"}, "I", 1},
		{"(JLjava/lang/String;D)V", []string{"J", "Ljava/lang/String;", "D"}, "V", 5},
		{"([[I[Ljava/io/File;)Ljava/io/InputStream;", []string{"[[I", "[Ljava/io/File;"}, "Ljava/io/InputStream;", 2},
		{"(ZBCSF)[J", []string{"Z", "B", "C", "S", "F"}, "[J", 5},
	} {
		md, err := ParseMethodDescriptor(tc.desc)
		if err != nil {
			t.Errorf("%s: %v", tc.desc, err)
			continue
		}
		if !slices.Equal(md.Params, tc.params) || md.Return != tc.ret {
			t.Errorf("%s: got %v %s", tc.desc, md.Params, md.Return)
		}
		if md.ArgWords() != tc.argWords {
			t.Errorf("%s: expected %d argument words, got %d", tc.desc, tc.argWords, md.ArgWords())
		}
	}
}

func TestParseMethodDescriptorErrors(t *testing.T) {
	for _, desc := range []string{"", "V", "(", "(I", "(I)", "(Q)V", "(Ljava/lang/String)V", "(L;)V", "()VV",
		"()II", "([)V"} {
		_, err := ParseMethodDescriptor(desc)
		var descErr *DescriptorError
		if !errors.As(err, &descErr) {
			t.Errorf("%q: expected a descriptor error, got %v", desc, err)
		}
	}
}

func TestFieldDescriptors(t *testing.T) {
	for _, desc := range []string{"I", "J", "Ljava/io/File;", "[[D"} {
		if err := ValidateFieldDescriptor(desc); err != nil {
			t.Errorf("%s: %v", desc, err)
		}
	}
	for _, desc := range []string{"", "V", "II", "Ljava/io/File", "["} {
		if err := ValidateFieldDescriptor(desc); err == nil {
			t.Errorf("%q should be invalid", desc)
		}
	}
	for desc, w := range map[string]int{"J": 2, "D": 2, "V": 0, "I": 1, "Ljava/io/File;": 1, "[J": 1} {
		if TypeWidth(desc) != w {
			t.Errorf("width of %s should be %d", desc, w)
		}
	}
	if c, ok := ClassOfDescriptor("Ljava/io/File;"); !ok || c != "java.io.File" {
		t.Errorf("unexpected class %s", c)
	}
	if _, ok := ClassOfDescriptor("[Ljava/io/File;"); ok {
		t.Errorf("arrays are not classes")
	}
}
