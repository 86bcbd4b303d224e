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
	"io"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
)

// Statistics summarizes the size of a program and of its control-flow graphs
type Statistics struct {
	NumberOfClasses           uint
	NumberOfMethods           uint
	NumberOfNonemptyMethods   uint
	NumberOfAllocatingMethods uint
	NumberOfBlocks            uint
	NumberOfEdges             uint
	NumberOfInstructions      uint
	NumberOfUnreachableBlocks uint
	// NumberOfCfgErrors is the number of methods with code whose graph cannot be built
	NumberOfCfgErrors uint
}

// ProgramStatistics computes the statistics of the program, building the graph of each method with builder.
func ProgramStatistics(p *bytecode.Program, builder cfg.Builder) Statistics {
	result := Statistics{}
	for _, c := range p.Classes {
		result.NumberOfClasses++
		for _, m := range c.Methods {
			result.NumberOfMethods++
			if !m.HasCode() {
				continue
			}
			result.NumberOfNonemptyMethods++
			result.NumberOfInstructions += uint(len(m.Code))
			if m.BytecodeSet().Has(int(bytecode.OpNew)) {
				result.NumberOfAllocatingMethods++
			}
			g, err := builder.Build(m)
			if err != nil {
				result.NumberOfCfgErrors++
				continue
			}
			// the entry and exit blocks are not counted
			result.NumberOfBlocks += uint(len(g.Blocks) - 2)
			result.NumberOfEdges += uint(g.NumEdges())
			for i, r := range g.Reachable() {
				if !r && i != g.Exit.Index {
					result.NumberOfUnreachableBlocks++
				}
			}
		}
	}
	return result
}

// WriteText writes the statistics to w, one per line
func (s Statistics) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"classes: %d\nmethods: %d (%d with code, %d allocating)\nblocks: %d (%d unreachable)\n"+
			"edges: %d\ninstructions: %d\ngraph errors: %d\n",
		s.NumberOfClasses, s.NumberOfMethods, s.NumberOfNonemptyMethods, s.NumberOfAllocatingMethods,
		s.NumberOfBlocks, s.NumberOfUnreachableBlocks, s.NumberOfEdges, s.NumberOfInstructions, s.NumberOfCfgErrors)
	return err
}
