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

// Package debug implements the front-end of the analysis of a single resource, printing the frames of every block.
package debug

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awslabs/ar-resource-leaks/analysis"
	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/leaks"
	"github.com/awslabs/ar-resource-leaks/cmd/resleak/tools"
)

// Usage of the debug sub-command
const Usage = `Run the analysis of the resource allocated at an offset of a method and print the frames of every block.

Usage:
  resleak debug [options] program.yaml class method offset

The method is a name, or a name followed by a descriptor when the class has several methods with that name.

Examples:
% resleak debug program.yaml test.Streams 'closeOnBranch(Z)V' 0
`

// Flags represents the flags for the debug sub-command.
type Flags struct {
	tools.CommonFlags
	rule   string
	class  string
	method string
	offset int
}

// NewFlags returns parsed flags for debug.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("debug")
	rule := flags.FlagSet.String("rule", "", "rule of the policy tracking the resource (default: the first policy)")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	rest := common.FlagSet.Args()
	if len(rest) != 4 {
		return Flags{}, fmt.Errorf("expected a program file, a class, a method and an offset, got %v", rest)
	}
	offset, err := strconv.Atoi(rest[3])
	if err != nil || offset < 0 {
		return Flags{}, fmt.Errorf("invalid offset %q", rest[3])
	}
	return Flags{
		CommonFlags: common,
		rule:        *rule,
		class:       bytecode.BinaryName(rest[1]),
		method:      rest[2],
		offset:      offset,
	}, nil
}

// Run runs the analysis of the resource designated by the flags and writes the trace to w.
func Run(flags Flags, w io.Writer) error {
	cfg, _, err := tools.Setup(flags.CommonFlags)
	if err != nil {
		return err
	}
	loaded, err := analysis.LoadProgram(cfg, flags.FlagSet.Args()[:1])
	if err != nil {
		return fmt.Errorf("could not load program: %w", err)
	}
	m, err := findMethod(loaded.Program, flags.class, flags.method)
	if err != nil {
		return err
	}
	tracker, err := findTracker(leaks.PoliciesFromConfig(cfg), flags.rule)
	if err != nil {
		return err
	}
	res, err := leaks.Debug(w, m, tracker, loaded.Lookup, flags.offset)
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", m.QualifiedName(), err)
	}
	if res.Status != leaks.CandidateFound {
		fmt.Fprintf(w, "no %s resource at offset %d: %s\n", tracker.Policy().RuleID, flags.offset, res.Status)
	}
	return nil
}

func findMethod(p *bytecode.Program, class string, method string) (*bytecode.Method, error) {
	c := p.Class(class)
	if c == nil {
		return nil, fmt.Errorf("class %s not found", class)
	}
	name, desc, hasDesc := strings.Cut(method, "(")
	var found []*bytecode.Method
	for _, m := range c.Methods {
		if m.Name == name && (!hasDesc || m.Descriptor == "("+desc) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("method %s not found in %s", method, class)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%d methods %s in %s, add a descriptor", len(found), method, class)
	}
}

func findTracker(policies []leaks.Policy, rule string) (*leaks.PolicyTracker, error) {
	for _, p := range policies {
		if rule == "" || p.RuleID == rule {
			return leaks.NewPolicyTracker(p, nil), nil
		}
	}
	return nil, fmt.Errorf("no policy for rule %s", rule)
}
