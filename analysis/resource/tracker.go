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
	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
	"github.com/awslabs/ar-resource-leaks/internal/funcutil"
)

// A Resource is one candidate resource instance, identified by the program point creating it.
type Resource interface {
	CreationPoint() cfg.Location
}

// A Tracker is the policy deciding which instructions create and close resources of kind R.
//
// Trackers may be shared by concurrent analyses of different methods and must be safe for concurrent use.
type Tracker[R Resource] interface {
	// DetectCreation returns the resource created by the instruction at index of the block, if any. Types are
	// looked up with lookup; a failed lookup means the instruction does not create a trackable resource.
	DetectCreation(block *cfg.BasicBlock, index int, lookup bytecode.TypeLookup) funcutil.Optional[R]

	// DetectClose returns true if the instruction at index of the block closes resources of the kind of resource.
	// The visitor additionally checks that the closed value is the tracked instance.
	DetectClose(block *cfg.BasicBlock, index int, resource R) bool

	// EffectVisitor returns a fresh visitor for one analysis of resource
	EffectVisitor(resource R) *EffectVisitor[R]
}

// FindCreations returns every resource created in the reachable blocks of g according to the tracker, in
// instruction order.
func FindCreations[R Resource](g *cfg.Graph, tracker Tracker[R], lookup bytecode.TypeLookup) []R {
	var res []R
	reachable := g.Reachable()
	for _, b := range g.Blocks {
		if !reachable[b.Index] {
			continue
		}
		for i := b.Start; i < b.End; i++ {
			if r := tracker.DetectCreation(b, i, lookup); r.IsSome() {
				res = append(res, r.Value())
			}
		}
	}
	return res
}
