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
	"errors"
	"fmt"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
	"github.com/awslabs/ar-resource-leaks/analysis/config"
	"github.com/awslabs/ar-resource-leaks/analysis/resource"
	"github.com/awslabs/ar-resource-leaks/internal/funcutil"
)

// A TrackedResource is an allocation of a resource type
type TrackedResource struct {
	// Creation is the location of the allocation
	Creation cfg.Location

	// Class is the binary name of the allocated class
	Class string

	// Policy is the policy the resource is tracked for
	Policy *Policy
}

// CreationPoint returns the location of the allocation
func (r TrackedResource) CreationPoint() cfg.Location {
	return r.Creation
}

func (r TrackedResource) String() string {
	return fmt.Sprintf("%s allocated at %s", r.Class, r.Creation)
}

// PolicyTracker tracks the resources of a policy. It implements resource.Tracker.
type PolicyTracker struct {
	policy  *Policy
	missing MissingClassReporter
	logger  *config.LogGroup
}

// NewPolicyTracker returns a tracker for the resources of the policy. Classes that cannot be found by the type lookup
// are reported to missing, which may be nil.
func NewPolicyTracker(policy Policy, missing MissingClassReporter) *PolicyTracker {
	return &PolicyTracker{policy: &policy, missing: missing}
}

// NewStreamTracker returns a tracker for the built-in stream policy
func NewStreamTracker(missing MissingClassReporter) *PolicyTracker {
	return NewPolicyTracker(StreamPolicy(), missing)
}

// WithLogger sets the logger receiving the lookup failures that are not missing classes, and returns the tracker
func (t *PolicyTracker) WithLogger(logger *config.LogGroup) *PolicyTracker {
	t.logger = logger
	return t
}

// Policy returns the policy of the tracker
func (t *PolicyTracker) Policy() *Policy {
	return t.policy
}

// DetectCreation returns the resource allocated by the instruction, if it is an allocation of a subtype of a tracked
// type that is not a subtype of an excluded type. When the lookup fails, the class is reported missing and the
// allocation is not a resource.
func (t *PolicyTracker) DetectCreation(block *cfg.BasicBlock, index int,
	lookup bytecode.TypeLookup) funcutil.Optional[TrackedResource] {
	ins := block.Instruction(index)
	if ins.Kind() != bytecode.KindNew {
		return funcutil.None[TrackedResource]()
	}
	tracked, err := t.isResourceType(ins.Class, lookup)
	if err != nil {
		t.reportLookupError(ins.Class, err)
		return funcutil.None[TrackedResource]()
	}
	if !tracked {
		return funcutil.None[TrackedResource]()
	}
	return funcutil.Some(TrackedResource{
		Creation: cfg.Location{Block: block.Index, Index: index},
		Class:    ins.Class,
		Policy:   t.policy,
	})
}

func (t *PolicyTracker) isResourceType(class string, lookup bytecode.TypeLookup) (bool, error) {
	isSub := func(supers []string) (bool, error) {
		for _, super := range supers {
			ok, err := lookup.IsSubtype(class, super)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	tracked, err := isSub(t.policy.Tracked)
	if err != nil || !tracked {
		return false, err
	}
	excluded, err := isSub(t.policy.Excluded)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

// reportLookupError reports the missing class of a failed lookup on class. Other failures are not missing classes
// and are only logged.
func (t *PolicyTracker) reportLookupError(class string, err error) {
	var notFound *bytecode.ClassNotFoundError
	if errors.As(err, &notFound) {
		if t.missing != nil {
			t.missing.ReportMissingClass(notFound.Class)
		}
		return
	}
	if t.logger != nil {
		t.logger.Warnf("%s: type lookup of %s failed: %v", t.policy.RuleID, class, err)
	}
}

// DetectClose returns true if the instruction invokes a close method of the policy on an object. When the policy
// closes on the declared type, the call must be an invokevirtual whose owner is the class of r.
func (t *PolicyTracker) DetectClose(block *cfg.BasicBlock, index int, r TrackedResource) bool {
	ins := block.Instruction(index)
	if !ins.IsInvoke() || !ins.Dispatch().HasReceiver() {
		return false
	}
	if t.policy.CloseOnDeclaredType && (ins.Opcode != bytecode.OpInvokevirtual || ins.Class != r.Class) {
		return false
	}
	return t.policy.IsCloseMethod(ins.Class, ins.Name, ins.Descriptor)
}

// EffectVisitor returns a visitor for the analysis of r
func (t *PolicyTracker) EffectVisitor(r TrackedResource) *resource.EffectVisitor[TrackedResource] {
	return resource.NewEffectVisitor[TrackedResource](t, r)
}
