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
	"fmt"
	"strings"
)

// A DescriptorError is returned when a field or method descriptor is malformed.
type DescriptorError struct {
	Descriptor string
	Pos        int
	Msg        string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %q at %d: %s", e.Descriptor, e.Pos, e.Msg)
}

// MethodDescriptor is a parsed method descriptor such as "(Ljava/io/File;I)V". Params and Return hold the field
// descriptors of the parameters and of the return type.
type MethodDescriptor struct {
	Params []string
	Return string
}

// ParseMethodDescriptor parses a method descriptor.
func ParseMethodDescriptor(desc string) (MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return MethodDescriptor{}, &DescriptorError{desc, 0, "expected '('"}
	}
	var md MethodDescriptor
	i := 1
	for i < len(desc) && desc[i] != ')' {
		end, err := scanFieldType(desc, i)
		if err != nil {
			return MethodDescriptor{}, err
		}
		md.Params = append(md.Params, desc[i:end])
		i = end
	}
	if i >= len(desc) {
		return MethodDescriptor{}, &DescriptorError{desc, i, "missing ')'"}
	}
	i++ // skip ')'
	if i < len(desc) && desc[i] == 'V' {
		if i+1 != len(desc) {
			return MethodDescriptor{}, &DescriptorError{desc, i + 1, "trailing characters"}
		}
		md.Return = "V"
		return md, nil
	}
	end, err := scanFieldType(desc, i)
	if err != nil {
		return MethodDescriptor{}, err
	}
	if end != len(desc) {
		return MethodDescriptor{}, &DescriptorError{desc, end, "trailing characters"}
	}
	md.Return = desc[i:end]
	return md, nil
}

// ValidateFieldDescriptor returns an error if desc is not a single field descriptor.
func ValidateFieldDescriptor(desc string) error {
	end, err := scanFieldType(desc, 0)
	if err != nil {
		return err
	}
	if end != len(desc) {
		return &DescriptorError{desc, end, "trailing characters"}
	}
	return nil
}

// scanFieldType returns the index just past the field type starting at desc[i]
func scanFieldType(desc string, i int) (int, error) {
	start := i
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	if i >= len(desc) {
		return 0, &DescriptorError{desc, start, "unterminated type"}
	}
	switch desc[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1, nil
	case 'L':
		semi := strings.IndexByte(desc[i:], ';')
		if semi <= 1 {
			return 0, &DescriptorError{desc, i, "unterminated class type"}
		}
		return i + semi + 1, nil
	default:
		return 0, &DescriptorError{desc, i, fmt.Sprintf("unexpected %q", desc[i])}
	}
}

// TypeWidth returns the number of words a value of the field descriptor t occupies in a frame: two for long and
// double, zero for void, and one otherwise.
func TypeWidth(t string) int {
	switch t {
	case "J", "D":
		return 2
	case "V", "":
		return 0
	default:
		return 1
	}
}

// ParamWidths returns the width in words of each declared parameter, in order.
func (md MethodDescriptor) ParamWidths() []int {
	widths := make([]int, len(md.Params))
	for i, p := range md.Params {
		widths[i] = TypeWidth(p)
	}
	return widths
}

// ArgWords returns the total number of words taken by the declared parameters.
func (md MethodDescriptor) ArgWords() int {
	n := 0
	for _, p := range md.Params {
		n += TypeWidth(p)
	}
	return n
}

// ReturnWidth returns the width in words of the returned value.
func (md MethodDescriptor) ReturnWidth() int {
	return TypeWidth(md.Return)
}

// IsVoid returns true if the method does not return a value
func (md MethodDescriptor) IsVoid() bool {
	return md.Return == "V"
}

// BinaryName converts an internal class name ("java/io/File") to its binary name ("java.io.File"). Names already in
// binary form are returned unchanged.
func BinaryName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}

// ClassOfDescriptor returns the binary class name of an object field descriptor ("Ljava/io/File;" gives
// "java.io.File"), and false if the descriptor is not an object type.
func ClassOfDescriptor(desc string) (string, bool) {
	if len(desc) < 3 || desc[0] != 'L' || desc[len(desc)-1] != ';' {
		return "", false
	}
	return BinaryName(desc[1 : len(desc)-1]), true
}
