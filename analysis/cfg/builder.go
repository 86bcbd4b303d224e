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

package cfg

import (
	"fmt"
	"sort"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"golang.org/x/tools/container/intsets"
)

// A BuildError is returned when the control-flow graph of a method cannot be built.
type BuildError struct {
	Method string
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("cannot build cfg of %s: %s", e.Method, e.Reason)
}

// A Builder computes the control-flow graph of a method
type Builder interface {
	Build(method *bytecode.Method) (*Graph, error)
}

// BuilderFunc adapts a function to the Builder interface
type BuilderFunc func(method *bytecode.Method) (*Graph, error)

// Build calls f(method)
func (f BuilderFunc) Build(method *bytecode.Method) (*Graph, error) {
	return f(method)
}

// DefaultBuilder builds graphs with Build
var DefaultBuilder Builder = BuilderFunc(Build)

// Build computes the control-flow graph of the method's code. Blocks start at leaders: the first instruction, the
// targets of jumps and the instructions following a jump, a return or a throw.
//
// Exception handlers are not connected; code only reachable through a handler stays unreachable from the entry.
// Subroutines (jsr/ret) are not supported.
func Build(method *bytecode.Method) (*Graph, error) {
	fail := func(format string, args ...any) (*Graph, error) {
		return nil, &BuildError{Method: method.QualifiedName(), Reason: fmt.Sprintf(format, args...)}
	}
	code := method.Code
	if len(code) == 0 {
		return fail("method has no code")
	}

	var leaders intsets.Sparse
	leaders.Insert(0)
	for i := range code {
		ins := &code[i]
		kind := ins.Kind()
		if kind == bytecode.KindSubroutine {
			return fail("unsupported subroutine instruction %s", ins)
		}
		if !ins.Opcode.Known() {
			return fail("unknown opcode %d at offset %d", ins.Opcode, ins.Offset)
		}
		for _, target := range ins.Targets {
			j, ok := method.IndexOfOffset(target)
			if !ok {
				return fail("instruction %s jumps to offset %d, which is not an instruction", ins, target)
			}
			leaders.Insert(j)
		}
		if kind.EndsBlock() && i+1 < len(code) {
			leaders.Insert(i + 1)
		}
	}

	g := NewGraph(method)
	starts := leaders.AppendTo(nil)
	sort.Ints(starts)
	byStart := make(map[int]*BasicBlock, len(starts))
	for k, start := range starts {
		end := len(code)
		if k+1 < len(starts) {
			end = starts[k+1]
		}
		byStart[start] = g.AddBlock(start, end)
	}

	g.AddEdge(g.Entry, byStart[0], FallThrough)
	for _, b := range g.Blocks {
		if b.IsEmpty() {
			continue
		}
		last := b.Last()
		fallThrough := func() error {
			next, ok := byStart[b.End]
			if !ok {
				return &BuildError{
					Method: method.QualifiedName(),
					Reason: fmt.Sprintf("execution falls off the end of the code after %s", last),
				}
			}
			g.AddEdge(b, next, FallThrough)
			return nil
		}
		jump := func() {
			for _, target := range last.Targets {
				j, _ := method.IndexOfOffset(target)
				g.AddEdge(b, byStart[j], Branch)
			}
		}
		switch last.Kind() {
		case bytecode.KindBranch:
			if len(last.Targets) != 1 {
				return fail("conditional branch %s must have exactly one target", last)
			}
			jump()
			if err := fallThrough(); err != nil {
				return nil, err
			}
		case bytecode.KindGoto:
			if len(last.Targets) != 1 {
				return fail("goto %s must have exactly one target", last)
			}
			jump()
		case bytecode.KindSwitch:
			if len(last.Targets) == 0 {
				return fail("switch %s has no targets", last)
			}
			jump()
		case bytecode.KindReturn, bytecode.KindThrow:
			g.AddEdge(b, g.Exit, ExitEdge)
		default:
			if err := fallThrough(); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
