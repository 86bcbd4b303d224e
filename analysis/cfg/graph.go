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
	"github.com/awslabs/ar-resource-leaks/internal/graphutil"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
)

// From returns the source block of the edge
func (e Edge) From() graph.Node { return e.Src }

// To returns the destination block of the edge
func (e Edge) To() graph.Node { return e.Dst }

// ReversedEdge returns the edge with source and destination swapped, with the same kind
func (e Edge) ReversedEdge() graph.Edge { return Edge{Src: e.Dst, Dst: e.Src, Kind: e.Kind} }

// Order returns the number of blocks; it implements yourbasic's graph.Iterator
func (g *Graph) Order() int {
	return len(g.Blocks)
}

// Visit calls do for each successor w of block v, stopping when do returns true. The cost of every edge is 0.
// It implements yourbasic's graph.Iterator.
func (g *Graph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(g.Blocks) {
		return false
	}
	for _, s := range g.Blocks[v].Succs {
		if do(s.Index, 0) {
			return true
		}
	}
	return false
}

// Node returns the block with the given id, or nil
func (g *Graph) Node(id int64) graph.Node {
	if b := g.block(id); b != nil {
		return b
	}
	return nil
}

func (g *Graph) block(id int64) *BasicBlock {
	if id < 0 || id >= int64(len(g.Blocks)) {
		return nil
	}
	return g.Blocks[id]
}

func blockNodes(blocks []*BasicBlock) graph.Nodes {
	if len(blocks) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(blocks))
	for i, b := range blocks {
		nodes[i] = b
	}
	return iterator.NewOrderedNodes(nodes)
}

// Nodes returns all the blocks of the graph, in index order
func (g *Graph) Nodes() graph.Nodes {
	return blockNodes(g.Blocks)
}

// From returns the successors of the block with the given id
func (g *Graph) From(id int64) graph.Nodes {
	b := g.block(id)
	if b == nil {
		return graph.Empty
	}
	return blockNodes(b.Succs)
}

// To returns the predecessors of the block with the given id
func (g *Graph) To(id int64) graph.Nodes {
	b := g.block(id)
	if b == nil {
		return graph.Empty
	}
	return blockNodes(b.Preds)
}

// HasEdgeFromTo returns true if there is an edge from block uid to block vid
func (g *Graph) HasEdgeFromTo(uid, vid int64) bool {
	_, ok := g.edges[[2]int{int(uid), int(vid)}]
	return ok
}

// HasEdgeBetween returns true if there is an edge between xid and yid, in either direction
func (g *Graph) HasEdgeBetween(xid, yid int64) bool {
	return g.HasEdgeFromTo(xid, yid) || g.HasEdgeFromTo(yid, xid)
}

// Edge returns the edge from uid to vid, or nil if there is none
func (g *Graph) Edge(uid, vid int64) graph.Edge {
	kind, ok := g.edges[[2]int{int(uid), int(vid)}]
	if !ok {
		return nil
	}
	return Edge{Src: g.Blocks[uid], Dst: g.Blocks[vid], Kind: kind}
}

// Reachable returns, for each block index, whether the block is reachable from the entry block
func (g *Graph) Reachable() []bool {
	return graphutil.Reachable(g, g.Entry.Index)
}

// Ranks returns an ordering of the blocks where blocks come after their predecessors except along back edges.
// See graphutil.SCCRanks.
func (g *Graph) Ranks() []int {
	return graphutil.SCCRanks(g, len(g.Blocks))
}

// Acyclic returns true if the graph has no loops
func (g *Graph) Acyclic() bool {
	return graphutil.Acyclic(g)
}

// Loops returns the block indexes of each loop of the graph, as strongly connected components
func (g *Graph) Loops() [][]int64 {
	return graphutil.NontrivialComponents(g)
}
