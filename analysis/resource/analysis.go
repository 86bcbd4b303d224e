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
	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
)

// AnalysisResult is the verdict of the analysis of one resource
type AnalysisResult struct {
	// Creation is the program point creating the resource
	Creation cfg.Location

	// Status is the status of the resource at the exit of the method
	Status Status

	// ExitReached is false when no path from the entry reaches the exit of the method
	ExitReached bool

	// Iterations is the number of block visits of the solver
	Iterations int
}

// Leaks returns true if the resource may still be open when the method exits
func (r AnalysisResult) Leaks() bool {
	return r.Status == Open
}

// Analyze runs the analysis of resource in g to a fixpoint and returns the verdict at the exit.
func Analyze[R Resource](g *cfg.Graph, tracker Tracker[R], resource R) (AnalysisResult, error) {
	res, err := NewSolver(g, tracker, resource).Solve()
	if err != nil {
		return AnalysisResult{Creation: resource.CreationPoint()}, err
	}
	exit := res.ExitFrame()
	return AnalysisResult{
		Creation:    resource.CreationPoint(),
		Status:      exit.Status(),
		ExitReached: exit.Reached(),
		Iterations:  res.Iterations,
	}, nil
}
