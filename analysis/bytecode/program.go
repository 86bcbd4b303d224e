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
	"os"

	"gopkg.in/yaml.v3"
)

// A Program is a set of classes to analyze, together with the hierarchy edges of library classes that are not
// part of the program.
type Program struct {
	// Source is the file the program was read from, if any
	Source string

	Classes []*Class

	// Hierarchy maps library class names to their direct supertypes
	Hierarchy map[string][]string
}

// programSpec is the yaml representation of a program
type programSpec struct {
	Classes   []classSpec         `yaml:"classes"`
	Hierarchy map[string][]string `yaml:"hierarchy"`
}

type classSpec struct {
	Name       string       `yaml:"name"`
	Super      string       `yaml:"super"`
	Interfaces []string     `yaml:"interfaces"`
	SourceFile string       `yaml:"source-file"`
	Methods    []methodSpec `yaml:"methods"`
}

type methodSpec struct {
	Name       string            `yaml:"name"`
	Descriptor string            `yaml:"descriptor"`
	Access     []string          `yaml:"access"`
	MaxLocals  int               `yaml:"max-locals"`
	MaxStack   int               `yaml:"max-stack"`
	Code       []instructionSpec `yaml:"code"`
}

// instructionSpec is one instruction in a yaml program. Offsets default to the offset of the previous instruction
// plus one; branch targets designate offsets.
type instructionSpec struct {
	Offset  *int   `yaml:"offset"`
	Op      string `yaml:"op"`
	Line    int    `yaml:"line"`
	Local   *int   `yaml:"local"`
	Class   string `yaml:"class"`
	Name    string `yaml:"name"`
	Desc    string `yaml:"desc"`
	Target  *int   `yaml:"target"`
	Targets []int  `yaml:"targets"`
	Dims    int    `yaml:"dims"`
}

// LoadProgram reads a yaml program description from a file.
func LoadProgram(filename string) (*Program, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read program file: %w", err)
	}
	return ParseProgram(filename, b)
}

// ParseProgram parses a yaml program description. The name is used in error messages.
func ParseProgram(name string, b []byte) (*Program, error) {
	var spec programSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("could not unmarshal program %s: %w", name, err)
	}
	p := &Program{Source: name, Hierarchy: spec.Hierarchy}
	for _, cs := range spec.Classes {
		c, err := cs.toClass()
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", name, err)
		}
		p.Classes = append(p.Classes, c)
	}
	return p, nil
}

func (cs classSpec) toClass() (*Class, error) {
	if cs.Name == "" {
		return nil, fmt.Errorf("class without a name")
	}
	c := &Class{
		Name:       BinaryName(cs.Name),
		Super:      BinaryName(cs.Super),
		Interfaces: mapNames(cs.Interfaces),
		SourceFile: cs.SourceFile,
	}
	if c.Super == "" && c.Name != ObjectClass {
		c.Super = ObjectClass
	}
	for _, ms := range cs.Methods {
		m, err := ms.toMethod(c.Name)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c.Name, err)
		}
		c.Methods = append(c.Methods, m)
	}
	return c, nil
}

func (ms methodSpec) toMethod(class string) (*Method, error) {
	access, err := ParseAccessFlags(ms.Access)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", ms.Name, err)
	}
	m := &Method{
		Class:      class,
		Name:       ms.Name,
		Descriptor: ms.Descriptor,
		Access:     access,
		MaxLocals:  ms.MaxLocals,
		MaxStack:   ms.MaxStack,
	}
	if _, err := ParseMethodDescriptor(m.Descriptor); err != nil {
		return nil, fmt.Errorf("method %s: %w", ms.Name, err)
	}
	offset := -1
	for i, is := range ms.Code {
		ins, err := is.toInstruction()
		if err != nil {
			return nil, fmt.Errorf("method %s, instruction %d: %w", m.QualifiedName(), i, err)
		}
		if is.Offset != nil {
			if *is.Offset <= offset {
				return nil, fmt.Errorf("method %s, instruction %d: offset %d is not increasing",
					m.QualifiedName(), i, *is.Offset)
			}
			ins.Offset = *is.Offset
		} else {
			ins.Offset = offset + 1
		}
		offset = ins.Offset
		m.Code = append(m.Code, ins)
	}
	if err := m.ComputeLimits(); err != nil {
		return nil, err
	}
	return m, nil
}

func (is instructionSpec) toInstruction() (Instruction, error) {
	op, local, ok := LookupMnemonic(is.Op)
	if !ok {
		return Instruction{}, fmt.Errorf("unknown opcode %q", is.Op)
	}
	ins := Instruction{
		Opcode:     op,
		Line:       is.Line,
		Local:      local,
		Class:      BinaryName(is.Class),
		Name:       is.Name,
		Descriptor: is.Desc,
		Dims:       is.Dims,
	}
	kind := op.Kind()
	if kind == KindLoad || kind == KindStore || op == OpIinc {
		if is.Local != nil {
			if local >= 0 && *is.Local != local {
				return Instruction{}, fmt.Errorf("%s conflicts with local %d", is.Op, *is.Local)
			}
			ins.Local = *is.Local
		} else if local < 0 {
			return Instruction{}, fmt.Errorf("%s requires a local", is.Op)
		}
		if ins.Local < 0 {
			return Instruction{}, fmt.Errorf("negative local %d", ins.Local)
		}
	} else {
		ins.Local = 0
	}
	switch kind {
	case KindBranch, KindGoto, KindSwitch:
		if is.Target != nil {
			ins.Targets = append(ins.Targets, *is.Target)
		}
		ins.Targets = append(ins.Targets, is.Targets...)
		if len(ins.Targets) == 0 {
			return Instruction{}, fmt.Errorf("%s requires a target", is.Op)
		}
		if kind != KindSwitch && len(ins.Targets) != 1 {
			return Instruction{}, fmt.Errorf("%s has %d targets", is.Op, len(ins.Targets))
		}
	case KindNew, KindCheckCast:
		if ins.Class == "" {
			return Instruction{}, fmt.Errorf("%s requires a class", is.Op)
		}
	case KindInvoke, KindGetField, KindPutField:
		if ins.Name == "" || ins.Descriptor == "" {
			return Instruction{}, fmt.Errorf("%s requires a name and a descriptor", is.Op)
		}
		if op != OpInvokedynamic && ins.Class == "" {
			return Instruction{}, fmt.Errorf("%s requires an owner class", is.Op)
		}
	}
	if _, err := ins.Effect(); err != nil {
		return Instruction{}, err
	}
	return ins, nil
}

// Class returns the class with the given binary name, or nil.
func (p *Program) Class(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NumMethods returns the total number of methods in the program
func (p *Program) NumMethods() int {
	n := 0
	for _, c := range p.Classes {
		n += len(c.Methods)
	}
	return n
}

// Merge adds the classes and hierarchy edges of other to p. Classes defined in both programs are an error.
func (p *Program) Merge(other *Program) error {
	for _, c := range other.Classes {
		if p.Class(c.Name) != nil {
			return fmt.Errorf("class %s is defined in %s and %s", c.Name, p.Source, other.Source)
		}
		p.Classes = append(p.Classes, c)
	}
	if len(other.Hierarchy) > 0 && p.Hierarchy == nil {
		p.Hierarchy = map[string][]string{}
	}
	for k, v := range other.Hierarchy {
		p.Hierarchy[k] = append(p.Hierarchy[k], v...)
	}
	return nil
}

// NewLookup returns a hierarchy with the default library classes, the program's hierarchy edges, the extra edges
// and the program's own classes.
func (p *Program) NewLookup(extra ...map[string][]string) *Hierarchy {
	h := DefaultJDKHierarchy()
	h.AddEdges(p.Hierarchy)
	for _, edges := range extra {
		h.AddEdges(edges)
	}
	h.AddClasses(p.Classes)
	return h
}
