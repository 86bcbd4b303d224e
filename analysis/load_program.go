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

package analysis

import (
	"fmt"
	"os"
	"regexp"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/config"
	"github.com/awslabs/ar-resource-leaks/analysis/leaks"
	"github.com/awslabs/ar-resource-leaks/internal/yamlutil"
)

// LoadedProgram represents a loaded program.
type LoadedProgram struct {
	// Program contains the classes of all the program files, merged.
	Program *bytecode.Program
	// Lookup answers the type queries of the analysis. It knows the library classes, the hierarchy edges of the
	// program files and of the config, and the program's own classes.
	Lookup *bytecode.Hierarchy
	// Directives is a map from the directive's position in the program to the relevant directive comment.
	Directives Directives
}

// LoadProgram loads the program files at paths and merges them into one program. A class defined in two files is
// an error.
func LoadProgram(c *config.Config, paths []string) (LoadedProgram, error) {
	if len(paths) == 0 {
		return LoadedProgram{}, fmt.Errorf("no program files")
	}
	var program *bytecode.Program
	directives := Directives{}
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return LoadedProgram{}, fmt.Errorf("failed to read program file: %w", err)
		}
		p, err := ParseProgram(path, b, directives)
		if err != nil {
			return LoadedProgram{}, err
		}
		if program == nil {
			program = p
		} else if err := program.Merge(p); err != nil {
			return LoadedProgram{}, err
		}
	}
	return LoadedProgram{
		Program:    program,
		Lookup:     program.NewLookup(c.Hierarchy),
		Directives: directives,
	}, nil
}

// ParseProgram parses the program in b and adds the directives it contains to directives.
func ParseProgram(name string, b []byte, directives Directives) (*bytecode.Program, error) {
	p, err := bytecode.ParseProgram(name, b)
	if err != nil {
		return nil, err
	}
	found, err := findDirectives(name, b)
	if err != nil {
		return nil, err
	}
	for pos, d := range found {
		directives[pos] = d
	}
	return p, nil
}

// Directives represents a map of directive position to directive.
type Directives map[DirectivePos]Directive

// Directive represents an instruction to the analysis in the program being analyzed.
// It is a comment in the form: `# resleak:x`, where x is a valid DirectiveKind, on the line of an instruction.
type Directive struct {
	Kind DirectiveKind
	// Source is the program file and Line the line of the comment
	Source string
	Line   int
}

// DirectivePos represents the position of a directive within a program: the instruction at Offset in the method
// Method of Class.
type DirectivePos struct {
	Class      string
	Method     string
	Descriptor string
	Offset     int
}

// NewDirectivePos creates a DirectivePos from the location of a finding.
func NewDirectivePos(loc leaks.SourceLocation) DirectivePos {
	return DirectivePos{
		Class:      loc.Class,
		Method:     loc.Method,
		Descriptor: loc.Descriptor,
		Offset:     loc.Offset,
	}
}

// DirectiveKind represents the kind of directive.
type DirectiveKind string

const (
	// DirectiveIgnore represents a directive to ignore the resources created by an instruction.
	DirectiveIgnore DirectiveKind = "ignore"
)

var directiveRegex = regexp.MustCompile(`#.*resleak:(\w+)`)

// NewDirective returns the directive of the line and true if the line contains a valid directive comment.
func NewDirective(line string) (Directive, bool) {
	m := directiveRegex.FindStringSubmatch(line)
	if m == nil {
		return Directive{}, false
	}
	switch k := DirectiveKind(m[1]); k {
	case DirectiveIgnore:
		return Directive{Kind: k}, true
	default:
		return Directive{}, false
	}
}

// Ignores returns true if the directives suppress the finding f.
func (ds Directives) Ignores(f leaks.Finding) bool {
	d, ok := ds[NewDirectivePos(f.Location)]
	return ok && d.Kind == DirectiveIgnore
}

// findDirectives returns all the directives of the program in b. Offsets are computed as the program loader does.
func findDirectives(name string, b []byte) (Directives, error) {
	byLine := map[int]Directive{}
	for i, line := range yamlutil.Lines(b) {
		if d, ok := NewDirective(line); ok {
			d.Source = name
			d.Line = i + 1
			byLine[d.Line] = d
		}
	}
	res := make(Directives)
	if len(byLine) == 0 {
		return res, nil
	}
	nodes, err := yamlutil.Instructions(b)
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal program %s: %w", name, err)
	}
	offset := -1
	for _, ins := range nodes {
		if ins.Index == 0 {
			offset = -1
		}
		var spec struct {
			Offset *int `yaml:"offset"`
		}
		if err := ins.Node.Decode(&spec); err != nil {
			return nil, fmt.Errorf("in %s, line %d: %w", name, ins.Node.Line, err)
		}
		if spec.Offset != nil {
			offset = *spec.Offset
		} else {
			offset++
		}
		if d, ok := byLine[ins.Node.Line]; ok {
			pos := DirectivePos{
				Class:      bytecode.BinaryName(ins.Class),
				Method:     ins.Method,
				Descriptor: ins.Descriptor,
				Offset:     offset,
			}
			res[pos] = d
		}
	}
	return res, nil
}
