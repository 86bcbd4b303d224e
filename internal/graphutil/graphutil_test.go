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

package graphutil

import (
	"fmt"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// intGraph is a graph on nodes 0..len-1 given by successor lists. Self loops are allowed.
type intGraph [][]int

// Order and Visit implement the yourbasic graph.Iterator interface
func (m intGraph) Order() int { return len(m) }

func (m intGraph) Visit(v int, do func(w int, c int64) bool) bool {
	for _, w := range m[v] {
		if do(w, 0) {
			return true
		}
	}
	return false
}

// The other methods implement the gonum graph.Directed interface

func (m intGraph) Node(id int64) graph.Node {
	if id < 0 || int(id) >= len(m) {
		return nil
	}
	return simple.Node(id)
}

func (m intGraph) nodes(ids []int) graph.Nodes {
	seen := map[int]bool{}
	var nodes []graph.Node
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			nodes = append(nodes, simple.Node(id))
		}
	}
	return iterator.NewOrderedNodes(nodes)
}

func (m intGraph) Nodes() graph.Nodes {
	ids := make([]int, len(m))
	for i := range ids {
		ids[i] = i
	}
	return m.nodes(ids)
}

func (m intGraph) From(id int64) graph.Nodes {
	return m.nodes(m[id])
}

func (m intGraph) To(id int64) graph.Nodes {
	var preds []int
	for u, succs := range m {
		for _, v := range succs {
			if v == int(id) {
				preds = append(preds, u)
			}
		}
	}
	return m.nodes(preds)
}

func (m intGraph) HasEdgeFromTo(uid, vid int64) bool {
	for _, v := range m[uid] {
		if v == int(vid) {
			return true
		}
	}
	return false
}

func (m intGraph) HasEdgeBetween(xid, yid int64) bool {
	return m.HasEdgeFromTo(xid, yid) || m.HasEdgeFromTo(yid, xid)
}

func (m intGraph) Edge(uid, vid int64) graph.Edge {
	if !m.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

func randomGraph(size int, seed int64) intGraph {
	m := make(intGraph, size)
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < size; i++ {
		m[i] = []int{}
		for j := 0; j < 3; j++ {
			if r.Float32() < 0.5 {
				m[i] = append(m[i], int(r.Int63()%int64(size)))
			}
		}
	}
	return m
}

// Computes whether y is reachable from x
func reaches(m intGraph, x, y int) bool {
	visited := map[int]bool{}
	var visit func(int)
	visit = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, nn := range m[n] {
			visit(nn)
		}
	}
	visit(x)
	return visited[y]
}

func checkRanks(m intGraph, ranks []int) error {
	seen := map[int]bool{}
	for _, r := range ranks {
		if r < 0 || r >= len(m) || seen[r] {
			return fmt.Errorf("ranks %v are not a permutation\nin:%v", ranks, m)
		}
		seen[r] = true
	}
	for u, succs := range m {
		for _, v := range succs {
			// edges between components go forward
			if !reaches(m, v, u) && ranks[u] >= ranks[v] {
				return fmt.Errorf("edge %d -> %d goes backward: ranks %d, %d\nin:%v", u, v, ranks[u], ranks[v], m)
			}
		}
	}
	for _, scc := range NontrivialComponents(m) {
		lo, hi := len(m), -1
		for _, id := range scc {
			if r := ranks[id]; r < lo {
				lo = r
			}
			if r := ranks[id]; r > hi {
				hi = r
			}
		}
		if hi-lo+1 != len(scc) {
			return fmt.Errorf("component %v does not have consecutive ranks %v\nin:%v", scc, ranks, m)
		}
	}
	return nil
}

func checkComponents(m intGraph) error {
	covered := map[int64]bool{}
	for _, scc := range NontrivialComponents(m) {
		for _, x := range scc {
			if covered[x] {
				return fmt.Errorf("repeated node %v\nin:%v", x, m)
			}
			covered[x] = true
			for _, y := range scc {
				if !reaches(m, int(x), int(y)) {
					return fmt.Errorf("the component nodes are not reachable: %v %v\nin:%v", x, y, m)
				}
			}
		}
		if len(scc) == 1 && !m.HasEdgeFromTo(scc[0], scc[0]) {
			return fmt.Errorf("trivial component %v\nin:%v", scc, m)
		}
	}
	// every node on a cycle is in a component
	for x := range m {
		onCycle := false
		for _, y := range m[x] {
			if reaches(m, y, x) {
				onCycle = true
			}
		}
		if onCycle != covered[int64(x)] {
			return fmt.Errorf("node %d on a cycle: %v, in a component: %v\nin:%v", x, onCycle, covered[int64(x)], m)
		}
	}
	return nil
}

func TestSCCRanks(t *testing.T) {
	check := func(m intGraph) {
		if err := checkRanks(m, SCCRanks(m, len(m))); err != nil {
			t.Fatalf("Error: %v", err)
		}
		if err := checkComponents(m); err != nil {
			t.Fatalf("Error: %v", err)
		}
	}
	check(intGraph{{0}})
	check(intGraph{{}})
	check(intGraph{{0, 1}, {}})
	check(intGraph{{1, 2}, {3}, {1}, {}})
	check(intGraph{{1, 2}, {3}, {1, 0}, {}})
	check(intGraph{{3, 1}, {0}, {1}, {3}})
	for i := 0; i < 100; i++ {
		check(randomGraph(10, 68348438+int64(i)))
	}
	for i := 0; i < 10; i++ {
		check(randomGraph(50, 184618+int64(i)))
	}
}

func TestSCCRanksChain(t *testing.T) {
	// a chain is ranked in order
	m := intGraph{{1}, {2}, {3}, {}}
	for i, r := range SCCRanks(m, len(m)) {
		if r != i {
			t.Errorf("node %d has rank %d", i, r)
		}
	}
	// nodes missing from the graph are ranked last
	ranks := SCCRanks(m, 6)
	if ranks[4] != 4 || ranks[5] != 5 {
		t.Errorf("unexpected ranks %v", ranks)
	}
}

func TestReachable(t *testing.T) {
	for i := 0; i < 50; i++ {
		m := randomGraph(12, 9417+int64(i))
		r := Reachable(m, 0)
		n := 0
		for v := range m {
			if r[v] != reaches(m, 0, v) {
				t.Fatalf("Reachable(0)[%d] = %v\nin:%v", v, r[v], m)
			}
			if r[v] {
				n++
			}
		}
		if c := CountReachable(m, 0); c != n {
			t.Errorf("CountReachable = %d, expected %d", c, n)
		}
	}
	if r := Reachable(intGraph{{}}, 3); r[0] {
		t.Errorf("nothing is reachable from a node outside the graph")
	}
}

func TestAcyclic(t *testing.T) {
	for i := 0; i < 50; i++ {
		m := randomGraph(8, 271+int64(i))
		if Acyclic(m) != (len(NontrivialComponents(m)) == 0) {
			t.Fatalf("Acyclic disagrees with the components of\n%v", m)
		}
	}
	if !Acyclic(intGraph{{1}, {2}, {}}) || Acyclic(intGraph{{1}, {1}}) {
		t.Errorf("unexpected Acyclic result")
	}
}
