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

// Package graphutil contains graph algorithms used by the analyses, expressed over the interfaces of the graph
// libraries so that any graph implementing them (in particular control-flow graphs) can use them.
package graphutil

import (
	"github.com/yourbasic/graph"
)

// Reachable returns a slice r of size g.Order() such that r[v] is true if and only if there is a path from the
// node from to v in g. A node is always reachable from itself.
func Reachable(g graph.Iterator, from int) []bool {
	r := make([]bool, g.Order())
	if from < 0 || from >= len(r) {
		return r
	}
	r[from] = true
	graph.BFS(g, from, func(_, w int, _ int64) {
		r[w] = true
	})
	return r
}

// CountReachable returns the number of nodes reachable from the node from
func CountReachable(g graph.Iterator, from int) int {
	n := 0
	for _, b := range Reachable(g, from) {
		if b {
			n++
		}
	}
	return n
}

// Acyclic returns true if g has no cycles
func Acyclic(g graph.Iterator) bool {
	return graph.Acyclic(g)
}
