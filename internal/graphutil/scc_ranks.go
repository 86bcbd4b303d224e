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
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// SCCRanks returns a slice of size n that ranks the nodes of g, whose ids must be 0..n-1. For every edge u -> v
// between two different strongly connected components, rank[u] < rank[v]; nodes of a same component get
// consecutive ranks in increasing id order. Ranks are a permutation of 0..n-1.
//
// Processing nodes by increasing rank makes forward dataflow analyses visit predecessors before successors
// everywhere except along back edges.
func SCCRanks(g graph.Directed, n int) []int {
	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = -1
	}
	// TarjanSCC returns the components in reverse topological order
	sccs := topo.TarjanSCC(g)
	next := 0
	for i := len(sccs) - 1; i >= 0; i-- {
		ids := make([]int, 0, len(sccs[i]))
		for _, node := range sccs[i] {
			ids = append(ids, int(node.ID()))
		}
		sort.Ints(ids)
		for _, id := range ids {
			if id >= 0 && id < n && ranks[id] < 0 {
				ranks[id] = next
				next++
			}
		}
	}
	// nodes the graph did not enumerate are ranked last
	for i := range ranks {
		if ranks[i] < 0 {
			ranks[i] = next
			next++
		}
	}
	return ranks
}

// NontrivialComponents returns the strongly connected components of g that contain a cycle, i.e. components with
// more than one node or a node with a self loop. Each component is sorted by node id.
func NontrivialComponents(g graph.Directed) [][]int64 {
	var res [][]int64
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) == 1 && !g.HasEdgeFromTo(scc[0].ID(), scc[0].ID()) {
			continue
		}
		ids := make([]int64, len(scc))
		for i, node := range scc {
			ids[i] = node.ID()
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		res = append(res, ids)
	}
	sort.Slice(res, func(i, j int) bool { return res[i][0] < res[j][0] })
	return res
}
