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

	"golang.org/x/tools/container/intsets"
)

// AccessFlags are the access flags of a class member
type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSynchronized AccessFlags = 0x0020
	AccBridge       AccessFlags = 0x0040
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
)

var accessNames = map[string]AccessFlags{
	"public":       AccPublic,
	"private":      AccPrivate,
	"protected":    AccProtected,
	"static":       AccStatic,
	"final":        AccFinal,
	"synchronized": AccSynchronized,
	"bridge":       AccBridge,
	"varargs":      AccVarargs,
	"native":       AccNative,
	"abstract":     AccAbstract,
	"strict":       AccStrict,
	"synthetic":    AccSynthetic,
}

// ParseAccessFlags returns the flags named in names (e.g. "public", "static").
func ParseAccessFlags(names []string) (AccessFlags, error) {
	var flags AccessFlags
	for _, name := range names {
		f, ok := accessNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("unknown access flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}

// Has returns true if all the flags in f2 are set in f
func (f AccessFlags) Has(f2 AccessFlags) bool {
	return f&f2 == f2
}

// A Class is a class with its methods. Names are binary names (java.io.FileInputStream).
type Class struct {
	Name       string
	Super      string
	Interfaces []string
	SourceFile string
	Methods    []*Method
}

// A Method is a method of a class with its code.
type Method struct {
	// Class is the binary name of the declaring class
	Class string

	Name       string
	Descriptor string
	Access     AccessFlags

	// MaxLocals is the number of local variable words of the method
	MaxLocals int

	// MaxStack is the maximum depth of the operand stack in words
	MaxStack int

	Code []Instruction
}

// Supertypes returns the direct supertypes of the class
func (c *Class) Supertypes() []string {
	var supers []string
	if c.Super != "" {
		supers = append(supers, c.Super)
	}
	return append(supers, c.Interfaces...)
}

// Method returns the first method of c with the given name, or nil if there is none.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// QualifiedName returns the name of the method qualified by its class and descriptor, e.g.
// com.example.Foo.read(Ljava/io/File;)V
func (m *Method) QualifiedName() string {
	return m.Class + "." + m.Name + m.Descriptor
}

func (m *Method) String() string {
	return m.QualifiedName()
}

// IsAbstract returns true if the method is abstract
func (m *Method) IsAbstract() bool { return m.Access.Has(AccAbstract) }

// IsNative returns true if the method is native
func (m *Method) IsNative() bool { return m.Access.Has(AccNative) }

// IsStatic returns true if the method is static
func (m *Method) IsStatic() bool { return m.Access.Has(AccStatic) }

// HasCode returns true if the method has a body that can be analyzed
func (m *Method) HasCode() bool {
	return !m.IsAbstract() && !m.IsNative() && len(m.Code) > 0
}

// BytecodeSet returns the set of opcodes appearing in the method's code.
func (m *Method) BytecodeSet() *intsets.Sparse {
	set := &intsets.Sparse{}
	for i := range m.Code {
		set.Insert(int(m.Code[i].Opcode))
	}
	return set
}

// IndexOfOffset returns the index in Code of the instruction at the given bytecode offset.
func (m *Method) IndexOfOffset(offset int) (int, bool) {
	lo, hi := 0, len(m.Code)
	for lo < hi {
		mid := (lo + hi) / 2
		switch o := m.Code[mid].Offset; {
		case o == offset:
			return mid, true
		case o < offset:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return -1, false
}

// ParamWords returns the number of local variable words taken by the parameters, including the receiver of
// instance methods.
func (m *Method) ParamWords() (int, error) {
	md, err := ParseMethodDescriptor(m.Descriptor)
	if err != nil {
		return 0, err
	}
	n := md.ArgWords()
	if !m.IsStatic() {
		n++
	}
	return n, nil
}

// ComputeLimits sets MaxLocals and MaxStack when they have not been provided. MaxLocals is computed from the
// parameters and the local variable accesses; MaxStack is bounded by the total number of words pushed by the code.
func (m *Method) ComputeLimits() error {
	if m.MaxLocals == 0 {
		n, err := m.ParamWords()
		if err != nil {
			return fmt.Errorf("method %s: %w", m.QualifiedName(), err)
		}
		for i := range m.Code {
			ins := &m.Code[i]
			w := 1
			switch ins.Kind() {
			case KindLoad, KindStore:
				w = opcodeTable[ins.Opcode].width
			default:
				if ins.Opcode != OpIinc {
					continue
				}
			}
			if ins.Local+w > n {
				n = ins.Local + w
			}
		}
		m.MaxLocals = n
	}
	if m.MaxStack == 0 {
		total := 0
		for i := range m.Code {
			eff, err := m.Code[i].Effect()
			if err != nil {
				return fmt.Errorf("method %s: %w", m.QualifiedName(), err)
			}
			total += eff.Produces
		}
		m.MaxStack = total
	}
	return nil
}
