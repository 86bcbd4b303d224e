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
	"testing"
)

func mkFrame(numLocals int, status Status, slots ...Marker) Frame {
	return Frame{slots: slots, numLocals: numLocals, status: status, reached: true}
}

// sampleFrames returns frames of two locals and one stack word with every combination of markers and statuses
// that the analysis can produce: Top frames never hold the resource.
func sampleFrames() []Frame {
	frames := []Frame{{}, mkFrame(2, Top, NotTracked, NotTracked, NotTracked)}
	for _, s := range []Status{Open, Closed, Escaped} {
		for bits := 0; bits < 8; bits++ {
			slots := make([]Marker, 3)
			for i := range slots {
				if bits&(1<<i) != 0 {
					slots[i] = Instance
				}
			}
			frames = append(frames, mkFrame(2, s, slots...))
		}
	}
	return frames
}

func TestMergeStatus(t *testing.T) {
	tests := []struct {
		a, b, expected Status
	}{
		{Top, Top, Top},
		{Top, Open, Open},
		{Top, Closed, Closed},
		{Top, Escaped, Escaped},
		{Open, Closed, Open},
		{Open, Escaped, Open},
		{Closed, Escaped, Escaped},
		{Closed, Closed, Closed},
	}
	for _, test := range tests {
		if s := MergeStatus(test.a, test.b); s != test.expected {
			t.Errorf("merge of %s and %s: expected %s, got %s", test.a, test.b, test.expected, s)
		}
		if s := MergeStatus(test.b, test.a); s != test.expected {
			t.Errorf("merge of %s and %s: expected %s, got %s", test.b, test.a, test.expected, s)
		}
	}
}

func TestMergeIdentity(t *testing.T) {
	for _, f := range sampleFrames() {
		m, err := Merge(Frame{}, f)
		if err != nil || !m.Equal(f) {
			t.Errorf("merging %s with an unreached frame should give %s, got %s", f, f, m)
		}
		m, err = Merge(f, f)
		if err != nil || !m.Equal(f) {
			t.Errorf("merge of %s with itself should be idempotent, got %s", f, m)
		}
	}
}

func TestMergeSoundness(t *testing.T) {
	frames := sampleFrames()
	for _, a := range frames {
		for _, b := range frames {
			ab, err := Merge(a, b)
			if err != nil {
				t.Fatalf("merge of %s and %s failed: %v", a, b, err)
			}
			ba, _ := Merge(b, a)
			if !ab.Equal(ba) {
				t.Errorf("merge is not commutative: %s and %s give %s and %s", a, b, ab, ba)
			}
			if !a.Reached() || !b.Reached() {
				continue
			}
			if ab.Status() < a.Status() || ab.Status() < b.Status() {
				t.Errorf("merge of %s and %s lost a status: %s", a, b, ab)
			}
			if (a.Status() == Open || b.Status() == Open) && ab.Status() != Open {
				t.Errorf("open must dominate the merge of %s and %s, got %s", a, b, ab)
			}
			// merging again with either side does not change the result
			for _, f := range []Frame{a, b} {
				again, _ := Merge(ab, f)
				if !again.Equal(ab) {
					t.Errorf("merge of %s and %s is not an upper bound of %s", a, b, f)
				}
			}
			for _, c := range frames {
				abc, _ := Merge(ab, c)
				bc, _ := Merge(b, c)
				abc2, _ := Merge(a, bc)
				if !abc.Equal(abc2) {
					t.Errorf("merge is not associative on %s, %s, %s", a, b, c)
				}
			}
		}
	}
}

func TestMergeMarkers(t *testing.T) {
	top := mkFrame(1, Top, NotTracked, NotTracked)
	open := mkFrame(1, Open, Instance, NotTracked)
	closed := mkFrame(1, Closed, NotTracked, Instance)

	m, _ := Merge(top, open)
	if !m.Equal(open) {
		t.Errorf("a path where the resource is not created should keep the markers of the other, got %s", m)
	}
	m, _ = Merge(open, closed)
	if expected := mkFrame(1, Open, NotTracked, NotTracked); !m.Equal(expected) {
		t.Errorf("expected %s, got %s", expected, m)
	}
	if m.Holds() {
		t.Errorf("%s should not hold the resource", m)
	}
}

func TestMergeInconsistent(t *testing.T) {
	a := mkFrame(1, Open, Instance)
	b := mkFrame(1, Open, Instance, NotTracked)
	if _, err := Merge(a, b); !errors.Is(err, ErrInconsistentFrames) {
		t.Errorf("frames with different stack depths should not merge, got %v", err)
	}
	c := mkFrame(2, Open, Instance, NotTracked)
	if _, err := Merge(b, c); !errors.Is(err, ErrInconsistentFrames) {
		t.Errorf("frames with different numbers of locals should not merge, got %v", err)
	}
}

func TestFrameAccessors(t *testing.T) {
	f := mkFrame(2, Open, Instance, NotTracked, Instance)
	if f.NumLocals() != 2 || f.StackDepth() != 1 || f.NumSlots() != 3 {
		t.Errorf("unexpected shape of %s", f)
	}
	if m, err := f.Local(0); err != nil || m != Instance {
		t.Errorf("local 0 should be tracked")
	}
	if _, err := f.Local(2); !errors.Is(err, ErrLocalOutOfRange) {
		t.Errorf("local 2 is out of range")
	}
	if m, err := f.Top(0); err != nil || m != Instance {
		t.Errorf("top of stack should be tracked")
	}
	if _, err := f.Top(1); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("stack has only one word")
	}
	g := f.WithStatus(Closed)
	if f.Status() != Open || g.Status() != Closed || f.Equal(g) {
		t.Errorf("WithStatus should return a modified copy")
	}
	if s := f.String(); s != "[R-|R] OPEN" {
		t.Errorf("unexpected string %q", s)
	}
	if s := (Frame{}).String(); s != "<unreached>" {
		t.Errorf("unexpected string %q", s)
	}
	entry := NewEntryFrame(3)
	if entry.Status() != Top || entry.StackDepth() != 0 || entry.NumLocals() != 3 || entry.Holds() {
		t.Errorf("unexpected entry frame %s", entry)
	}
}
