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

package resource

import (
	"fmt"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
)

// An EffectVisitor computes the effect of instructions on frames for the analysis of one resource.
type EffectVisitor[R Resource] struct {
	tracker  Tracker[R]
	resource R
	creation cfg.Location
}

// NewEffectVisitor returns a visitor tracking resource with the close detection of tracker. Trackers use it to
// implement their EffectVisitor method.
func NewEffectVisitor[R Resource](tracker Tracker[R], resource R) *EffectVisitor[R] {
	return &EffectVisitor[R]{tracker: tracker, resource: resource, creation: resource.CreationPoint()}
}

// Resource returns the resource tracked by the visitor
func (v *EffectVisitor[R]) Resource() R {
	return v.resource
}

// VisitBlock returns the frame at the end of the block given the frame in at its start
func (v *EffectVisitor[R]) VisitBlock(block *cfg.BasicBlock, in Frame) (Frame, error) {
	f := in
	for i := block.Start; i < block.End; i++ {
		out, err := v.Visit(block, i, f)
		if err != nil {
			return Frame{}, err
		}
		f = out
	}
	return f, nil
}

// Visit returns the frame after the instruction at index of the block, given the frame in before it. An unreached
// frame is returned unchanged.
//
// On top of the stack and locals effect of the instruction, the status changes as follows:
//   - at the creation point of the resource, the pushed reference is marked and the status becomes Open
//   - otherwise, an open resource becomes Closed when the tracker detects a close on the marked instance
//   - otherwise, an open resource becomes Escaped when a marked value is stored to a field or an array, returned,
//     or passed to a call other than as the receiver of an instance call
//
// Closed and Escaped resources stay so until the creation point is executed again.
func (v *EffectVisitor[R]) Visit(block *cfg.BasicBlock, index int, in Frame) (Frame, error) {
	if !in.reached {
		return in, nil
	}
	out, err := v.visit(block, index, in)
	if err != nil {
		return Frame{}, &DataflowError{Block: block.Index, Index: index, Err: err}
	}
	return out, nil
}

func (v *EffectVisitor[R]) visit(block *cfg.BasicBlock, index int, in Frame) (Frame, error) {
	ins := block.Instruction(index)
	eff, err := ins.Effect()
	if err != nil {
		return Frame{}, err
	}
	f := in.clone()
	if f.StackDepth() < eff.Consumes {
		return Frame{}, fmt.Errorf("%s consumes %d words with %d on the stack: %w",
			ins, eff.Consumes, f.StackDepth(), ErrStackUnderflow)
	}
	consumed := f.slots[len(f.slots)-eff.Consumes:]

	isCreation := v.creation == cfg.Location{Block: block.Index, Index: index}
	isClose := !isCreation && f.status == Open && eff.Consumes > 0 && consumed[0] == Instance &&
		v.tracker.DetectClose(block, index, v.resource)
	escapes := false

	switch eff.Kind {
	case bytecode.KindOther, bytecode.KindGetField, bytecode.KindNew:
		f.pop(eff.Consumes)
		f.pushN(NotTracked, eff.Produces)
	case bytecode.KindLoad:
		if ins.Local < 0 || ins.Local+eff.Width > f.numLocals {
			return Frame{}, fmt.Errorf("%s with %d locals: %w", ins, f.numLocals, ErrLocalOutOfRange)
		}
		f.slots = append(f.slots, f.slots[ins.Local:ins.Local+eff.Width]...)
	case bytecode.KindStore:
		if ins.Local < 0 || ins.Local+eff.Width > f.numLocals {
			return Frame{}, fmt.Errorf("%s with %d locals: %w", ins, f.numLocals, ErrLocalOutOfRange)
		}
		copy(f.slots[ins.Local:ins.Local+eff.Width], consumed)
		f.pop(eff.Width)
	case bytecode.KindDup:
		// the top Width words are copied under the Width+Under top words
		words := append([]Marker(nil), consumed...)
		top := words[eff.Under:]
		f.pop(eff.Consumes)
		f.slots = append(f.slots, top...)
		f.slots = append(f.slots, words[:eff.Under]...)
		f.slots = append(f.slots, top...)
	case bytecode.KindPop:
		f.pop(eff.Consumes)
	case bytecode.KindSwap:
		consumed[0], consumed[1] = consumed[1], consumed[0]
	case bytecode.KindCheckCast:
		// the same reference stays on the stack
	case bytecode.KindInvoke:
		escapes = invocationEscapes(eff, consumed)
		f.pop(eff.Consumes)
		f.pushN(NotTracked, eff.Produces)
	case bytecode.KindPutField:
		escapes = holds(consumed[eff.Consumes-eff.Width:])
		f.pop(eff.Consumes)
	case bytecode.KindArrayStore:
		escapes = consumed[eff.Consumes-1] == Instance
		f.pop(eff.Consumes)
	case bytecode.KindReturn, bytecode.KindThrow:
		escapes = eff.Kind == bytecode.KindReturn && holds(consumed)
		f.slots = f.slots[:f.numLocals]
	case bytecode.KindBranch, bytecode.KindSwitch, bytecode.KindGoto:
		f.pop(eff.Consumes)
	case bytecode.KindSubroutine:
		return Frame{}, fmt.Errorf("%s: %w", ins, ErrUnsupportedInstruction)
	default:
		return Frame{}, fmt.Errorf("%s of kind %s: %w", ins, eff.Kind, ErrUnsupportedInstruction)
	}

	switch {
	case isCreation:
		if f.StackDepth() == 0 {
			return Frame{}, fmt.Errorf("creation point %s pushes no value: %w", ins, ErrUnsupportedInstruction)
		}
		f.slots[len(f.slots)-1] = Instance
		f.status = Open
	case isClose:
		f.status = Closed
	case escapes && f.status == Open:
		f.status = Escaped
	}
	return f, nil
}

// invocationEscapes returns true if a marked value is passed to the invocation other than as its receiver
func invocationEscapes(eff bytecode.Effect, consumed []Marker) bool {
	pos := 0
	for k, w := range eff.ArgWidths {
		arg := consumed[pos : pos+w]
		pos += w
		if k == 0 && eff.Dispatch.HasReceiver() {
			continue
		}
		if holds(arg) {
			return true
		}
	}
	return false
}

func holds(words []Marker) bool {
	for _, m := range words {
		if m == Instance {
			return true
		}
	}
	return false
}

func (f *Frame) pop(n int) {
	f.slots = f.slots[:len(f.slots)-n]
}

func (f *Frame) pushN(m Marker, n int) {
	for i := 0; i < n; i++ {
		f.slots = append(f.slots, m)
	}
}
