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
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// A Frame is the abstract state at a program point. The zero Frame is the frame of a point that is not reached by
// the analysis, and it is the identity of Merge.
//
// Frames are values: operations return new frames and never modify their receiver or arguments.
type Frame struct {
	// slots holds the markers of the local variable words followed by the operand stack words, top of the stack last
	slots     []Marker
	numLocals int
	status    Status
	reached   bool
}

// NewEntryFrame returns the frame at the entry of a method with numLocals local variable words: every local is
// NotTracked, the stack is empty and the status is Top.
func NewEntryFrame(numLocals int) Frame {
	if numLocals < 0 {
		numLocals = 0
	}
	return Frame{
		slots:     make([]Marker, numLocals),
		numLocals: numLocals,
		status:    Top,
		reached:   true,
	}
}

// Reached returns false for the frame of points the analysis has not reached
func (f Frame) Reached() bool { return f.reached }

// Status returns the lifecycle status of the tracked resource
func (f Frame) Status() Status { return f.status }

// NumLocals returns the number of local variable words
func (f Frame) NumLocals() int { return f.numLocals }

// StackDepth returns the number of words on the operand stack
func (f Frame) StackDepth() int { return len(f.slots) - f.numLocals }

// NumSlots returns the number of words of the frame, locals and stack
func (f Frame) NumSlots() int { return len(f.slots) }

// Slot returns the marker of slot i, where locals come first and the top of the stack is last
func (f Frame) Slot(i int) Marker { return f.slots[i] }

// Local returns the marker of local word i
func (f Frame) Local(i int) (Marker, error) {
	if i < 0 || i >= f.numLocals {
		return NotTracked, fmt.Errorf("local %d: %w", i, ErrLocalOutOfRange)
	}
	return f.slots[i], nil
}

// Top returns the marker of the stack word at depth d from the top; Top(0) is the top of the stack
func (f Frame) Top(d int) (Marker, error) {
	if d < 0 || d >= f.StackDepth() {
		return NotTracked, fmt.Errorf("stack word %d: %w", d, ErrStackUnderflow)
	}
	return f.slots[len(f.slots)-1-d], nil
}

// Holds returns true if some slot of the frame holds the tracked resource
func (f Frame) Holds() bool {
	return slices.Contains(f.slots, Instance)
}

// WithStatus returns a copy of the frame with status s
func (f Frame) WithStatus(s Status) Frame {
	g := f.clone()
	g.status = s
	return g
}

// Equal returns true if both frames are the same abstract state
func (f Frame) Equal(g Frame) bool {
	if f.reached != g.reached {
		return false
	}
	if !f.reached {
		return true
	}
	return f.status == g.status && f.numLocals == g.numLocals && slices.Equal(f.slots, g.slots)
}

func (f Frame) clone() Frame {
	g := f
	g.slots = slices.Clone(f.slots)
	return g
}

func (f Frame) String() string {
	if !f.reached {
		return "<unreached>"
	}
	var b strings.Builder
	b.WriteString("[")
	for i, m := range f.slots {
		if i == f.numLocals {
			b.WriteString("|")
		}
		b.WriteString(m.String())
	}
	if f.numLocals == len(f.slots) {
		b.WriteString("|")
	}
	b.WriteString("] ")
	b.WriteString(f.status.String())
	return b.String()
}

// ErrInconsistentFrames is returned when merging frames of different shapes
var ErrInconsistentFrames = errors.New("inconsistent frames")

// Merge returns the frame at a join point of two paths reaching it with frames a and b.
//
// The status of the result is MergeStatus of both statuses. When one of the frames has status Top, the resource
// has not been created on that path, and the markers of the other frame are kept; otherwise markers are merged
// slot by slot with MergeMarker. Frames with different numbers of locals or stack words cannot be merged.
func Merge(a Frame, b Frame) (Frame, error) {
	if !a.reached {
		return b.clone(), nil
	}
	if !b.reached {
		return a.clone(), nil
	}
	if a.numLocals != b.numLocals || len(a.slots) != len(b.slots) {
		return Frame{}, fmt.Errorf("%w: %d locals and %d stack words vs %d locals and %d stack words",
			ErrInconsistentFrames, a.numLocals, a.StackDepth(), b.numLocals, b.StackDepth())
	}
	res := Frame{
		numLocals: a.numLocals,
		status:    MergeStatus(a.status, b.status),
		reached:   true,
	}
	switch {
	case a.status == Top:
		res.slots = slices.Clone(b.slots)
	case b.status == Top:
		res.slots = slices.Clone(a.slots)
	default:
		res.slots = make([]Marker, len(a.slots))
		for i := range a.slots {
			res.slots[i] = MergeMarker(a.slots[i], b.slots[i])
		}
	}
	return res, nil
}

// LatticeHeight returns a bound on the length of the chains of frames computed for a method with the given limits:
// the status can increase at most three times and each slot marker can change at most once once the resource is
// created.
func LatticeHeight(maxLocals int, maxStack int) int {
	return 1 + 3 + maxLocals + maxStack
}
