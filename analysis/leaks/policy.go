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

// Package leaks implements the detection of resources that may not be closed on every path of a method.
//
// A Policy describes a kind of resource: the allocated types that are resources and the methods closing them. A
// PolicyTracker implements the resource.Tracker interface for a policy, and the Detector runs the resource analysis
// for every allocation site of every method of a program, reporting a Finding when the resource may still be open
// when the method exits.
//
// The built-in policy detects open streams: allocations of input and output streams, except the in-memory ones,
// that are never closed.
package leaks

import (
	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/config"
)

// A Policy describes one kind of resource
type Policy struct {
	// RuleID identifies the findings of this policy
	RuleID string

	// Tracked are the binary names of the types whose allocations are resources
	Tracked []string

	// Excluded are subtypes of the tracked types whose allocations are not resources
	Excluded []string

	// CloseMethods identify the methods that close the resource they are invoked on
	CloseMethods []config.CodeIdentifier

	// Priority of the findings
	Priority Priority

	// CloseOnDeclaredType only accepts close methods invoked with invokevirtual on the allocated class. A
	// FileInputStream closed through InputStream.close or Closeable.close stays open.
	CloseOnDeclaredType bool
}

// StreamPolicy returns the built-in policy for streams: any input or output stream except byte array streams,
// closed by invokevirtual close()V on the allocated class.
func StreamPolicy() Policy {
	return Policy{
		RuleID:   config.DefaultRuleID,
		Tracked:  []string{"java.io.InputStream", "java.io.OutputStream"},
		Excluded: []string{"java.io.ByteArrayInputStream", "java.io.ByteArrayOutputStream"},
		CloseMethods: []config.CodeIdentifier{
			config.NewCodeIdentifier("", "close", "()V"),
		},
		Priority:            Normal,
		CloseOnDeclaredType: true,
	}
}

// PolicyFromSpec returns the policy of a leak specification of the config
func PolicyFromSpec(spec config.LeakSpec) Policy {
	p := Policy{
		RuleID:              spec.RuleID,
		CloseMethods:        spec.CloseMethods,
		Priority:            Priority(spec.Priority),
		CloseOnDeclaredType: spec.CloseOnDeclaredType,
	}
	for _, t := range spec.Tracked {
		p.Tracked = append(p.Tracked, bytecode.BinaryName(t))
	}
	for _, t := range spec.Excluded {
		p.Excluded = append(p.Excluded, bytecode.BinaryName(t))
	}
	if p.Priority == 0 {
		p.Priority = Normal
	}
	return p
}

// PoliciesFromConfig returns the policies of the leak problems of the config, or the stream policy if there are none.
// The stream-close-on-supertypes option only applies to the built-in policy.
func PoliciesFromConfig(c *config.Config) []Policy {
	if len(c.LeakProblems) == 0 {
		p := StreamPolicy()
		p.CloseOnDeclaredType = !c.StreamCloseOnSupertypes
		return []Policy{p}
	}
	var policies []Policy
	for _, spec := range c.LeakProblems {
		policies = append(policies, PolicyFromSpec(spec))
	}
	return policies
}

// IsCloseMethod returns true if the method owner.name with descriptor is a close method of the policy. The owner is
// not checked against the resource; see CloseOnDeclaredType.
func (p *Policy) IsCloseMethod(owner string, name string, descriptor string) bool {
	for _, cid := range p.CloseMethods {
		if cid.Matches(owner, name, descriptor) {
			return true
		}
	}
	return false
}
