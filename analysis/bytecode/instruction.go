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

// An Instruction is one instruction of a method body, with its symbolic references already resolved from the
// constant pool.
type Instruction struct {
	// Opcode is the JVM opcode of the instruction
	Opcode Opcode

	// Offset is the bytecode offset of the instruction in the method. Offsets are strictly increasing along the
	// method's code and are the stable key used to designate instructions.
	Offset int

	// Line is the source line of the instruction, or 0 if unknown
	Line int

	// Local is the local variable index of loads, stores and iinc
	Local int

	// Class is the class operand of new, checkcast, instanceof and anewarray, and the owner class of field and
	// method references, as a binary name (java.io.File)
	Class string

	// Name is the name of the referenced field or method
	Name string

	// Descriptor is the descriptor of the referenced field or method
	Descriptor string

	// Targets are the bytecode offsets the instruction may branch to. For switches, the default target is included.
	Targets []int

	// Dims is the number of dimensions of a multianewarray
	Dims int
}

// Effect describes how an instruction changes the operand stack. The words consumed by an instruction are the
// Consumes top words of the stack; for invocations the first consumed word belongs to the receiver when the
// dispatch has one.
type Effect struct {
	Kind     Kind
	Consumes int
	Produces int
	// Width is the number of words of the value moved by loads, stores, dup and pop variants and returns
	Width int
	// Under is the number of words a dup variant inserts its copy under
	Under int
	// Dispatch is the dispatch mode of invocations
	Dispatch Dispatch
	// ArgWidths is the width of each argument of an invocation, including the receiver as first argument if any
	ArgWidths []int
}

// Kind returns the kind of the instruction
func (ins *Instruction) Kind() Kind {
	return ins.Opcode.Kind()
}

// IsInvoke returns true if the instruction is a method invocation
func (ins *Instruction) IsInvoke() bool {
	return ins.Kind() == KindInvoke
}

// Dispatch returns the dispatch mode of the instruction, DispatchNone if it is not an invocation
func (ins *Instruction) Dispatch() Dispatch {
	return opcodeTable[ins.Opcode].dispatch
}

// Effect computes the stack effect of the instruction. An error is returned when the instruction is not part of the
// model or its descriptor is malformed.
func (ins *Instruction) Effect() (Effect, error) {
	info, ok := opcodeTable[ins.Opcode]
	if !ok {
		return Effect{}, fmt.Errorf("unsupported opcode %d at offset %d", ins.Opcode, ins.Offset)
	}
	eff := Effect{
		Kind:     info.kind,
		Consumes: info.consumes,
		Produces: info.produces,
		Width:    info.width,
		Under:    info.under,
		Dispatch: info.dispatch,
	}
	switch info.kind {
	case KindInvoke:
		md, err := ParseMethodDescriptor(ins.Descriptor)
		if err != nil {
			return Effect{}, fmt.Errorf("invalid invoke at offset %d: %w", ins.Offset, err)
		}
		if info.dispatch.HasReceiver() {
			eff.ArgWidths = append(eff.ArgWidths, 1)
		}
		eff.ArgWidths = append(eff.ArgWidths, md.ParamWidths()...)
		for _, w := range eff.ArgWidths {
			eff.Consumes += w
		}
		eff.Produces = md.ReturnWidth()
	case KindGetField, KindPutField:
		if err := ValidateFieldDescriptor(ins.Descriptor); err != nil {
			return Effect{}, fmt.Errorf("invalid field access at offset %d: %w", ins.Offset, err)
		}
		w := TypeWidth(ins.Descriptor)
		eff.Width = w
		receiver := 1
		if info.static {
			receiver = 0
		}
		if info.kind == KindGetField {
			eff.Consumes, eff.Produces = receiver, w
		} else {
			eff.Consumes, eff.Produces = receiver+w, 0
		}
	case KindOther:
		if ins.Opcode == OpMultianewarray {
			if ins.Dims <= 0 {
				return Effect{}, fmt.Errorf("multianewarray at offset %d has %d dimensions", ins.Offset, ins.Dims)
			}
			eff.Consumes = ins.Dims
		}
	case KindDup:
		eff.Consumes = info.width + info.under
		eff.Produces = 2*info.width + info.under
	}
	return eff, nil
}

// IsInvocationOf returns true if the instruction invokes a method with the given name and descriptor.
func (ins *Instruction) IsInvocationOf(name string, descriptor string) bool {
	return ins.IsInvoke() && ins.Name == name && ins.Descriptor == descriptor
}

func (ins *Instruction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s", ins.Offset, ins.Opcode.Mnemonic())
	switch ins.Kind() {
	case KindLoad, KindStore:
		fmt.Fprintf(&b, " %d", ins.Local)
	case KindNew, KindCheckCast:
		fmt.Fprintf(&b, " %s", ins.Class)
	case KindInvoke, KindGetField, KindPutField:
		fmt.Fprintf(&b, " %s.%s%s", ins.Class, ins.Name, ins.Descriptor)
	case KindBranch, KindGoto, KindSwitch:
		fmt.Fprintf(&b, " %v", ins.Targets)
	default:
		if ins.Opcode == OpIinc {
			fmt.Fprintf(&b, " %d", ins.Local)
		} else if ins.Class != "" {
			fmt.Fprintf(&b, " %s", ins.Class)
		}
	}
	return b.String()
}
