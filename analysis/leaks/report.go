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
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/awslabs/ar-resource-leaks/internal/formatutil"
)

// Priority of a finding. Lower values are more important.
type Priority int

const (
	High   Priority = 1
	Normal Priority = 2
	Low    Priority = 3
)

func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// A SourceLocation locates an instruction of a method
type SourceLocation struct {
	// Class is the binary name of the class of the method
	Class string `json:"class"`
	// SourceFile is the source file of the class, if known
	SourceFile string `json:"source-file,omitempty"`
	// Method is the name of the method
	Method string `json:"method"`
	// Descriptor is the descriptor of the method
	Descriptor string `json:"descriptor"`
	// Line is the source line, or 0 if unknown
	Line int `json:"line,omitempty"`
	// Offset is the bytecode offset of the instruction
	Offset int `json:"offset"`
}

func (l SourceLocation) String() string {
	file := l.SourceFile
	if file == "" {
		file = "?"
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s.%s%s (%s:%d)", l.Class, l.Method, l.Descriptor, file, l.Line)
	}
	return fmt.Sprintf("%s.%s%s (%s, offset %d)", l.Class, l.Method, l.Descriptor, file, l.Offset)
}

// A Finding reports a resource that may not be closed on some path of a method
type Finding struct {
	RuleID string `json:"rule-id"`
	// Location is the location of the allocation of the resource
	Location SourceLocation `json:"location"`
	Priority Priority       `json:"priority"`
	// ResourceClass is the allocated class
	ResourceClass string `json:"resource-class"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s may not be closed, allocated in %s", f.RuleID, f.ResourceClass, f.Location)
}

// SortFindings sorts findings by class, method, offset and rule
func SortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i].Location, findings[j].Location
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		if a.Descriptor != b.Descriptor {
			return a.Descriptor < b.Descriptor
		}
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		return findings[i].RuleID < findings[j].RuleID
	})
}

// A MethodError is a fatal error of the analysis of one method. The other methods are still analyzed.
type MethodError struct {
	Class  string
	Method string
	Err    error
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("analysis of %s.%s failed: %v", e.Class, e.Method, e.Err)
}

func (e *MethodError) Unwrap() error {
	return e.Err
}

// MarshalJSON marshals the error with its message
func (e *MethodError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Class  string `json:"class"`
		Method string `json:"method"`
		Error  string `json:"error"`
	}{e.Class, e.Method, e.Err.Error()})
}

// Report is the result of the analysis of a program
type Report struct {
	// Findings are sorted by SortFindings
	Findings []Finding `json:"findings"`

	// Errors are the methods whose analysis failed
	Errors []*MethodError `json:"errors,omitempty"`

	// MissingClasses are the classes the type lookup could not find, sorted
	MissingClasses []string `json:"missing-classes,omitempty"`

	// NumMethods is the number of methods analyzed
	NumMethods int `json:"num-methods"`

	// Truncated is true when findings have been dropped because of the maximum number of findings
	Truncated bool `json:"truncated,omitempty"`

	// Suppressed is the number of findings dropped by suppression directives
	Suppressed int `json:"suppressed,omitempty"`
}

// HasFindings returns true if the report has findings
func (r *Report) HasFindings() bool {
	return len(r.Findings) > 0
}

// HasErrors returns true if the analysis of some method failed, or some class was missing
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0 || len(r.MissingClasses) > 0
}

// WriteText writes a human-readable version of the report to w. Findings come first, then errors and missing
// classes.
func (r *Report) WriteText(w io.Writer) error {
	p := func(format string, args ...any) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	}
	for _, f := range r.Findings {
		color := formatutil.Yellow
		if f.Priority == High {
			color = formatutil.Red
		}
		if err := p("%s [%s] %s\n", color(f.RuleID), f.Priority, f.ResourceClass+" may not be closed"); err != nil {
			return err
		}
		if err := p("    allocated in %s\n", formatutil.Sanitize(f.Location.String())); err != nil {
			return err
		}
	}
	if r.Truncated {
		if err := p("%s\n", formatutil.Faint("(more findings omitted)")); err != nil {
			return err
		}
	}
	for _, e := range r.Errors {
		if err := p("%s %s\n", formatutil.Red("error:"), e.Error()); err != nil {
			return err
		}
	}
	for _, c := range r.MissingClasses {
		if err := p("%s %s\n", formatutil.Purple("missing class:"), c); err != nil {
			return err
		}
	}
	status := formatutil.Green(fmt.Sprintf("%d findings", len(r.Findings)))
	if r.HasFindings() {
		status = formatutil.Red(fmt.Sprintf("%d findings", len(r.Findings)))
	}
	if err := p("%s in %d methods, %d errors, %d missing classes\n", status, r.NumMethods, len(r.Errors),
		len(r.MissingClasses)); err != nil {
		return err
	}
	if r.Suppressed > 0 {
		return p("%s\n", formatutil.Faint(fmt.Sprintf("%d findings suppressed", r.Suppressed)))
	}
	return nil
}
