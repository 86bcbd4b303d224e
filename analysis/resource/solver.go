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

	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
	"golang.org/x/tools/container/intsets"
)

// BlockCallback is called by the solver each time a block is visited, with the frames at its start and end
type BlockCallback func(block *cfg.BasicBlock, in Frame, out Frame)

// A Solver computes the frames of every block of a control-flow graph for one resource, by forward iteration until
// a fixpoint is reached.
//
// The frame at the start of a block accumulates the merge of every frame computed at the end of its predecessors,
// which guarantees termination within the height of the lattice. Blocks are processed in the order given by the
// strongly connected components of the graph.
type Solver[R Resource] struct {
	graph   *cfg.Graph
	visitor *EffectVisitor[R]

	// entry[i] and exit[i] are the frames at the start and end of the block of index i
	entry []Frame
	exit  []Frame

	// ranks[i] is the rank of block i in the processing order, byRank is the inverse permutation
	ranks  []int
	byRank []int

	iterations    int
	maxIterations int
	onBlock       BlockCallback
}

// NewSolver returns a solver for the analysis of resource in g, with the effect visitor returned by tracker.
func NewSolver[R Resource](g *cfg.Graph, tracker Tracker[R], resource R) *Solver[R] {
	n := len(g.Blocks)
	s := &Solver[R]{
		graph:   g,
		visitor: tracker.EffectVisitor(resource),
		entry:   make([]Frame, n),
		exit:    make([]Frame, n),
		ranks:   g.Ranks(),
		byRank:  make([]int, n),
	}
	for i, r := range s.ranks {
		s.byRank[r] = i
	}
	s.maxIterations = n * (LatticeHeight(g.Method.MaxLocals, g.Method.MaxStack) + 1)
	return s
}

// WithBlockCallback sets a callback called every time a block is visited and returns the solver
func (s *Solver[R]) WithBlockCallback(f BlockCallback) *Solver[R] {
	s.onBlock = f
	return s
}

// WithMaxIterations overrides the bound on the number of block visits and returns the solver
func (s *Solver[R]) WithMaxIterations(n int) *Solver[R] {
	s.maxIterations = n
	return s
}

// Solve runs the analysis to a fixpoint. Errors of the analysis are returned as a *DataflowError; an error is also
// returned when the graph is not well-formed.
func (s *Solver[R]) Solve() (*Result, error) {
	if err := s.graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid control-flow graph for %s: %w", s.graph.Method.QualifiedName(), err)
	}
	for i := range s.entry {
		s.entry[i] = Frame{}
		s.exit[i] = Frame{}
	}
	s.iterations = 0
	entry := s.graph.Entry.Index
	s.entry[entry] = NewEntryFrame(s.graph.Method.MaxLocals)

	var worklist intsets.Sparse
	worklist.Insert(s.ranks[entry])
	var rank int
	for worklist.TakeMin(&rank) {
		block := s.graph.Blocks[s.byRank[rank]]
		s.iterations++
		if s.iterations > s.maxIterations {
			return nil, &DataflowError{Block: block.Index, Index: -1, Err: ErrNoFixpoint}
		}
		changed, err := s.visitBlock(block)
		if err != nil {
			return nil, err
		}
		for _, succ := range changed {
			worklist.Insert(s.ranks[succ])
		}
	}
	return s.result(), nil
}

// visitBlock computes the exit frame of block and merges it into the entry frames of its successors. It returns
// the indexes of the successors whose entry frame changed.
func (s *Solver[R]) visitBlock(block *cfg.BasicBlock) ([]int, error) {
	in := s.entry[block.Index]
	out, err := s.visitor.VisitBlock(block, in)
	if err != nil {
		return nil, err
	}
	s.exit[block.Index] = out
	if s.onBlock != nil {
		s.onBlock(block, in, out)
	}
	var changed []int
	for _, succ := range block.Succs {
		merged, err := Merge(s.entry[succ.Index], out)
		if err != nil {
			return nil, &DataflowError{Block: succ.Index, Index: -1, Err: err}
		}
		if !merged.Equal(s.entry[succ.Index]) {
			s.entry[succ.Index] = merged
			changed = append(changed, succ.Index)
		}
	}
	return changed, nil
}

// Step visits every reached block once more, in processing order, and returns true if any frame changed. After
// Solve, Step returns false: the frames are a fixpoint.
func (s *Solver[R]) Step() (bool, error) {
	dirty := false
	for _, i := range s.byRank {
		block := s.graph.Blocks[i]
		if !s.entry[i].reached {
			continue
		}
		before := s.exit[i]
		changed, err := s.visitBlock(block)
		if err != nil {
			return false, err
		}
		if len(changed) > 0 || !before.Equal(s.exit[i]) {
			dirty = true
		}
	}
	return dirty, nil
}

func (s *Solver[R]) result() *Result {
	return &Result{
		Graph:      s.graph,
		Entry:      append([]Frame(nil), s.entry...),
		Exit:       append([]Frame(nil), s.exit...),
		Iterations: s.iterations,
		step:       s.Step,
	}
}

// Result holds the frames computed by a solver
type Result struct {
	Graph *cfg.Graph

	// Entry and Exit hold the frames at the start and end of each block, by block index. Blocks that are not
	// reachable from the entry have unreached frames.
	Entry []Frame
	Exit  []Frame

	// Iterations is the number of block visits it took to reach the fixpoint
	Iterations int

	step func() (bool, error)
}

// ExitFrame returns the frame reaching the exit block
func (r *Result) ExitFrame() Frame {
	return r.Entry[r.Graph.Exit.Index]
}

// ExitStatus returns the status of the resource at the exit of the method. It is Top when the exit is not reached.
func (r *Result) ExitStatus() Status {
	return r.ExitFrame().Status()
}

// Stable runs one more pass of the solver over the fixpoint and returns true if no frame changed.
func (r *Result) Stable() (bool, error) {
	if r.step == nil {
		return false, fmt.Errorf("result has no solver")
	}
	changed, err := r.step()
	return !changed, err
}
