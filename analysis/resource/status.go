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

// Package resource implements a dataflow analysis tracking the lifecycle of one resource created in a method body.
//
// The abstract state at each program point is a Frame: a marker for each word of the local variables and of the
// operand stack, recording whether the word holds the tracked resource, and a Status summarizing the lifecycle of
// the resource (not yet created, open, closed or escaped). A Tracker decides which instructions create and close
// resources; the EffectVisitor simulates instructions on frames; the Solver computes frames for every block of a
// control-flow graph until a fixpoint is reached.
//
// Each run of the solver tracks exactly one resource, and runs are independent of each other. The status of the
// frame at the exit block of the graph is the verdict for the resource: Open at the exit means that some path
// leaves the method with the resource open.
package resource

import "fmt"

// Status is the lifecycle status of the tracked resource. Statuses are totally ordered for merging:
// Top < Closed < Escaped < Open, and the merge of two statuses is the greatest.
type Status int8

const (
	// Top is the status before the resource is created. It is the identity of the merge.
	Top Status = iota
	// Closed means the resource has been closed
	Closed
	// Escaped means the resource left the scope of the method (stored, returned or passed to a call that may
	// keep it) and cannot be tracked any further
	Escaped
	// Open means the resource has been created and is still open
	Open
)

func (s Status) String() string {
	switch s {
	case Top:
		return "TOP"
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	case Escaped:
		return "ESCAPED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MergeStatus returns the status at a join point of two paths with statuses a and b.
func MergeStatus(a Status, b Status) Status {
	if a > b {
		return a
	}
	return b
}

// Marker records whether a local or stack word holds the tracked resource
type Marker uint8

const (
	// NotTracked words hold anything but the tracked resource
	NotTracked Marker = iota
	// Instance words hold a reference to the tracked resource
	Instance
)

func (m Marker) String() string {
	if m == Instance {
		return "R"
	}
	return "-"
}

// MergeMarker returns m if both markers are equal, and NotTracked otherwise
func MergeMarker(m Marker, m2 Marker) Marker {
	if m == m2 {
		return m
	}
	return NotTracked
}
