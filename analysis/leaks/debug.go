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

package leaks

import (
	"fmt"
	"io"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
	"github.com/awslabs/ar-resource-leaks/analysis/resource"
)

// CandidateStatus is the outcome of the search of a resource at some offset of a method
type CandidateStatus int

const (
	// CandidateFound means the instruction at the offset allocates a resource
	CandidateFound CandidateStatus = iota
	// CandidateNoInstruction means there is no reachable instruction at the offset
	CandidateNoInstruction
	// CandidateNotResource means the instruction at the offset does not allocate a resource of the policy
	CandidateNotResource
)

func (s CandidateStatus) String() string {
	switch s {
	case CandidateFound:
		return "found"
	case CandidateNoInstruction:
		return "no instruction at offset"
	case CandidateNotResource:
		return "not a resource"
	default:
		return fmt.Sprintf("CandidateStatus(%d)", int(s))
	}
}

// CandidateResult is the result of FindCandidate. Resource is set only when Status is CandidateFound.
type CandidateResult struct {
	Status   CandidateStatus
	Resource TrackedResource
}

// FindCandidate looks for a resource allocated at the bytecode offset of the method. If g is nil, the control-flow
// graph of the method is built with cfg.Build.
func FindCandidate(m *bytecode.Method, g *cfg.Graph, tracker *PolicyTracker, lookup bytecode.TypeLookup,
	offset int) (CandidateResult, error) {
	if g == nil {
		var err error
		if g, err = cfg.Build(m); err != nil {
			return CandidateResult{}, err
		}
	}
	loc, ok := g.LocationAtOffset(offset)
	if !ok || !g.Reachable()[loc.Block] {
		return CandidateResult{Status: CandidateNoInstruction}, nil
	}
	r := tracker.DetectCreation(g.Blocks[loc.Block], loc.Index, lookup)
	if r.IsNone() {
		return CandidateResult{Status: CandidateNotResource}, nil
	}
	return CandidateResult{Status: CandidateFound, Resource: r.Value()}, nil
}

// Debug runs the analysis of the resource allocated at the offset of the method and writes the control-flow graph,
// the frames computed for each block and the verdict to w.
func Debug(w io.Writer, m *bytecode.Method, tracker *PolicyTracker, lookup bytecode.TypeLookup,
	offset int) (CandidateResult, error) {
	g, err := cfg.Build(m)
	if err != nil {
		return CandidateResult{}, err
	}
	fmt.Fprintf(w, "%s", g)
	if g.Acyclic() {
		fmt.Fprintf(w, "graph is acyclic\n")
	} else {
		fmt.Fprintf(w, "loops: %v\n", g.Loops())
	}
	candidate, err := FindCandidate(m, g, tracker, lookup, offset)
	if err != nil || candidate.Status != CandidateFound {
		return candidate, err
	}
	fmt.Fprintf(w, "tracking %s for %s\n", candidate.Resource, tracker.Policy().RuleID)

	solver := resource.NewSolver[TrackedResource](g, tracker, candidate.Resource).
		WithBlockCallback(func(block *cfg.BasicBlock, in resource.Frame, out resource.Frame) {
			fmt.Fprintf(w, "  %s: %s -> %s\n", block, in, out)
		})
	res, err := solver.Solve()
	if err != nil {
		return candidate, err
	}
	fmt.Fprintf(w, "fixpoint after %d block visits\n", res.Iterations)
	for i := range g.Blocks {
		fmt.Fprintf(w, "  block %d: in %s, out %s\n", i, res.Entry[i], res.Exit[i])
	}
	fmt.Fprintf(w, "status at exit: %s\n", res.ExitStatus())
	return candidate, nil
}
