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

// Package cfg defines the control-flow graphs of method bodies consumed by the dataflow analyses, and a simple
// builder that computes them from a method's instruction list.
//
// A Graph has two sentinel blocks without instructions: the entry block, whose only successor is the block
// starting at the first instruction, and the exit block, which is the successor of every block ending with a
// return or a throw. Blocks are indexed from 0 and the index of a block is its node id in the graph interfaces.
//
// Graph implements both the graph.Iterator interface of github.com/yourbasic/graph and the graph.Directed interface
// of gonum.org/v1/gonum/graph.
package cfg

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
)

// EdgeKind is the kind of a control-flow edge
type EdgeKind int

const (
	// FallThrough edges go to the next instruction in the code
	FallThrough EdgeKind = iota
	// Branch edges go to the target of a branch, goto or switch
	Branch
	// ExitEdge edges go from a returning or throwing block to the exit block
	ExitEdge
)

func (k EdgeKind) String() string {
	switch k {
	case FallThrough:
		return "fallthrough"
	case Branch:
		return "branch"
	case ExitEdge:
		return "exit"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// A BasicBlock is a maximal straight-line sequence of instructions of a method: the instructions with indexes in
// [Start, End) in the method's code. Sentinel blocks have Start == End.
type BasicBlock struct {
	// Index is the position of the block in Graph.Blocks
	Index int

	// Method is the method the block belongs to
	Method *bytecode.Method

	// Start is the index in Method.Code of the first instruction of the block
	Start int

	// End is one past the index in Method.Code of the last instruction of the block
	End int

	Preds []*BasicBlock
	Succs []*BasicBlock
}

// ID returns the node id of the block; it implements gonum's graph.Node
func (b *BasicBlock) ID() int64 {
	return int64(b.Index)
}

// Len returns the number of instructions in the block
func (b *BasicBlock) Len() int {
	return b.End - b.Start
}

// IsEmpty returns true if the block has no instructions, which is the case of sentinel blocks
func (b *BasicBlock) IsEmpty() bool {
	return b.End <= b.Start
}

// Instruction returns the instruction at index i of the method's code. i must be in [Start, End).
func (b *BasicBlock) Instruction(i int) *bytecode.Instruction {
	return &b.Method.Code[i]
}

// Last returns the last instruction of the block, or nil if the block is empty
func (b *BasicBlock) Last() *bytecode.Instruction {
	if b.IsEmpty() {
		return nil
	}
	return &b.Method.Code[b.End-1]
}

// Contains returns true if the instruction index i belongs to the block
func (b *BasicBlock) Contains(i int) bool {
	return b.Start <= i && i < b.End
}

func (b *BasicBlock) String() string {
	if b.IsEmpty() {
		return fmt.Sprintf("block %d (empty)", b.Index)
	}
	return fmt.Sprintf("block %d [%d..%d]", b.Index, b.Method.Code[b.Start].Offset, b.Method.Code[b.End-1].Offset)
}

// A Location is a program point: an instruction of a method together with the block containing it.
type Location struct {
	// Block is the index of the basic block
	Block int
	// Index is the index of the instruction in the method's code
	Index int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Block, l.Index)
}

// Edge is a directed control-flow edge. It implements gonum's graph.Edge.
type Edge struct {
	Src  *BasicBlock
	Dst  *BasicBlock
	Kind EdgeKind
}

// Graph is the control-flow graph of a method.
type Graph struct {
	Method *bytecode.Method
	Blocks []*BasicBlock
	Entry  *BasicBlock
	Exit   *BasicBlock

	// edges maps (from, to) pairs of block indexes to the kind of the edge
	edges map[[2]int]EdgeKind
}

// NewGraph returns a graph for the method containing only the entry and exit sentinel blocks. Blocks and edges are
// added with AddBlock and AddEdge; the exit block is kept last by AddBlock.
func NewGraph(method *bytecode.Method) *Graph {
	g := &Graph{
		Method: method,
		edges:  map[[2]int]EdgeKind{},
	}
	g.Entry = &BasicBlock{Index: 0, Method: method}
	g.Exit = &BasicBlock{Index: 1, Method: method}
	g.Blocks = []*BasicBlock{g.Entry, g.Exit}
	return g
}

// AddBlock adds a block holding the instructions [start, end) of the method's code and returns it.
func (g *Graph) AddBlock(start int, end int) *BasicBlock {
	b := &BasicBlock{Method: g.Method, Start: start, End: end}
	// keep the exit block last
	n := len(g.Blocks)
	b.Index = n - 1
	g.Exit.Index = n
	g.Blocks = append(g.Blocks[:n-1], b, g.Exit)
	g.reindexEdges(n-1, n)
	return b
}

// reindexEdges renames the exit block's index from old to new in the edge map
func (g *Graph) reindexEdges(old int, new int) {
	for key, kind := range g.edges {
		changed := key
		if key[0] == old {
			changed[0] = new
		}
		if key[1] == old {
			changed[1] = new
		}
		if changed != key {
			delete(g.edges, key)
			g.edges[changed] = kind
		}
	}
}

// AddEdge adds an edge from src to dst. Adding an existing edge does nothing.
func (g *Graph) AddEdge(src *BasicBlock, dst *BasicBlock, kind EdgeKind) {
	key := [2]int{src.Index, dst.Index}
	if _, ok := g.edges[key]; ok {
		return
	}
	g.edges[key] = kind
	src.Succs = append(src.Succs, dst)
	dst.Preds = append(dst.Preds, src)
}

// EdgeKindBetween returns the kind of the edge between the blocks of index from and to, if there is one.
func (g *Graph) EdgeKindBetween(from int, to int) (EdgeKind, bool) {
	k, ok := g.edges[[2]int{from, to}]
	return k, ok
}

// NumEdges returns the number of edges in the graph
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// BlockOf returns the block containing the instruction of index i in the method's code.
func (g *Graph) BlockOf(i int) (*BasicBlock, bool) {
	for _, b := range g.Blocks {
		if b.Contains(i) {
			return b, true
		}
	}
	return nil, false
}

// LocationOf returns the location of the instruction of index i in the method's code.
func (g *Graph) LocationOf(i int) (Location, bool) {
	b, ok := g.BlockOf(i)
	if !ok {
		return Location{}, false
	}
	return Location{Block: b.Index, Index: i}, true
}

// LocationAtOffset returns the location of the instruction at the bytecode offset.
func (g *Graph) LocationAtOffset(offset int) (Location, bool) {
	i, ok := g.Method.IndexOfOffset(offset)
	if !ok {
		return Location{}, false
	}
	return g.LocationOf(i)
}

// Validate checks the structural invariants of the graph: sentinels are empty, the entry has no predecessors,
// the exit has no successors, block indexes are consistent and every instruction belongs to exactly one block.
func (g *Graph) Validate() error {
	if g.Entry == nil || g.Exit == nil {
		return fmt.Errorf("graph has no entry or exit")
	}
	if !g.Entry.IsEmpty() || !g.Exit.IsEmpty() {
		return fmt.Errorf("entry and exit blocks must be empty")
	}
	if len(g.Entry.Preds) > 0 {
		return fmt.Errorf("entry block has predecessors")
	}
	if len(g.Exit.Succs) > 0 {
		return fmt.Errorf("exit block has successors")
	}
	owner := make([]int, len(g.Method.Code))
	for i := range owner {
		owner[i] = -1
	}
	for i, b := range g.Blocks {
		if b.Index != i {
			return fmt.Errorf("block at position %d has index %d", i, b.Index)
		}
		if b.Start < 0 || b.End > len(g.Method.Code) || b.Start > b.End {
			return fmt.Errorf("block %d has invalid range [%d, %d)", i, b.Start, b.End)
		}
		for j := b.Start; j < b.End; j++ {
			if owner[j] >= 0 {
				return fmt.Errorf("instruction %d is in blocks %d and %d", j, owner[j], i)
			}
			owner[j] = i
		}
	}
	for j, o := range owner {
		if o < 0 {
			return fmt.Errorf("instruction %d is in no block", j)
		}
	}
	return nil
}

func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cfg of %s\n", g.Method.QualifiedName())
	for _, block := range g.Blocks {
		switch block {
		case g.Entry:
			fmt.Fprintf(&b, "entry ")
		case g.Exit:
			fmt.Fprintf(&b, "exit ")
		}
		fmt.Fprintf(&b, "%s ->", block)
		for _, s := range block.Succs {
			k, _ := g.EdgeKindBetween(block.Index, s.Index)
			fmt.Fprintf(&b, " %d(%s)", s.Index, k)
		}
		fmt.Fprintf(&b, "\n")
		for i := block.Start; i < block.End; i++ {
			fmt.Fprintf(&b, "    %s\n", block.Instruction(i))
		}
	}
	return b.String()
}
