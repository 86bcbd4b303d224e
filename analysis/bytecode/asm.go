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

import "fmt"

// Helpers to assemble method bodies programmatically. Offsets of instructions built this way are assigned by
// NewMethod, so that branch targets can be written as instruction indexes.

// Op returns an instruction without operands.
func Op(op Opcode) Instruction {
	return Instruction{Opcode: op}
}

// New returns a new instruction allocating class.
func New(class string) Instruction {
	return Instruction{Opcode: OpNew, Class: BinaryName(class)}
}

// Aload returns an aload of the local.
func Aload(local int) Instruction {
	return Instruction{Opcode: OpAload, Local: local}
}

// Astore returns an astore into the local.
func Astore(local int) Instruction {
	return Instruction{Opcode: OpAstore, Local: local}
}

// LocalOp returns a load or store instruction op on the local.
func LocalOp(op Opcode, local int) Instruction {
	return Instruction{Opcode: op, Local: local}
}

// Invoke returns an invocation instruction.
func Invoke(op Opcode, owner string, name string, descriptor string) Instruction {
	return Instruction{Opcode: op, Class: BinaryName(owner), Name: name, Descriptor: descriptor}
}

// Field returns a field access instruction.
func Field(op Opcode, owner string, name string, descriptor string) Instruction {
	return Instruction{Opcode: op, Class: BinaryName(owner), Name: name, Descriptor: descriptor}
}

// Jump returns a branch or goto instruction to the given targets.
func Jump(op Opcode, targets ...int) Instruction {
	return Instruction{Opcode: op, Targets: targets}
}

// CheckCast returns a checkcast to class.
func CheckCast(class string) Instruction {
	return Instruction{Opcode: OpCheckcast, Class: BinaryName(class)}
}

// WithLine sets the source line of the instruction.
func (ins Instruction) WithLine(line int) Instruction {
	ins.Line = line
	return ins
}

// NewMethod returns a method of class with the given code. Instructions are given the offsets 0, 1, 2, ... and
// the limits are computed from the code.
func NewMethod(class string, name string, descriptor string, access AccessFlags, code ...Instruction) (*Method,
	error) {
	m := &Method{
		Class:      BinaryName(class),
		Name:       name,
		Descriptor: descriptor,
		Access:     access,
		Code:       make([]Instruction, len(code)),
	}
	for i, ins := range code {
		ins.Offset = i
		if _, err := ins.Effect(); err != nil {
			return nil, fmt.Errorf("instruction %d of %s: %w", i, m.QualifiedName(), err)
		}
		m.Code[i] = ins
	}
	if err := m.ComputeLimits(); err != nil {
		return nil, err
	}
	return m, nil
}
