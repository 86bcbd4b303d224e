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
	"time"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
	"github.com/awslabs/ar-resource-leaks/analysis/config"
	"github.com/awslabs/ar-resource-leaks/analysis/resource"
	"github.com/awslabs/ar-resource-leaks/internal/funcutil"
)

// A Detector finds leaked resources in the methods of a program. A Detector can analyze several methods
// concurrently.
type Detector struct {
	config   *config.Config
	logger   *config.LogGroup
	lookup   bytecode.TypeLookup
	builder  cfg.Builder
	trackers []*PolicyTracker
	missing  *MissingClassCollector
	suppress func(Finding) bool
}

// NewDetector returns a detector for the policies of the config, answering type queries with lookup.
func NewDetector(c *config.Config, logger *config.LogGroup, lookup bytecode.TypeLookup) *Detector {
	d := &Detector{
		config:  c,
		logger:  logger,
		lookup:  lookup,
		builder: cfg.DefaultBuilder,
		missing: NewMissingClassCollector(),
	}
	for _, p := range PoliciesFromConfig(c) {
		d.trackers = append(d.trackers, NewPolicyTracker(p, d.missing).WithLogger(logger))
	}
	return d
}

// WithBuilder sets the builder of control-flow graphs and returns the detector
func (d *Detector) WithBuilder(b cfg.Builder) *Detector {
	d.builder = b
	return d
}

// WithSuppression sets a predicate on findings; AnalyzeProgram drops the findings it holds for.
func (d *Detector) WithSuppression(suppress func(Finding) bool) *Detector {
	d.suppress = suppress
	return d
}

// Trackers returns the trackers of the detector, one per policy
func (d *Detector) Trackers() []*PolicyTracker {
	return d.trackers
}

// MissingClasses returns the classes reported missing so far
func (d *Detector) MissingClasses() []string {
	return d.missing.Classes()
}

// shouldAnalyze returns true if the method has code, is not filtered and allocates some object
func (d *Detector) shouldAnalyze(m *bytecode.Method) bool {
	if !m.HasCode() {
		return false
	}
	if d.config.IsFiltered(config.NewCodeIdentifier(m.Class, m.Name, m.Descriptor)) {
		d.logger.Debugf("Skipping filtered method %s", m.QualifiedName())
		return false
	}
	return m.BytecodeSet().Has(int(bytecode.OpNew))
}

// AnalyzeMethod returns the findings of the method. sourceFile is the source file of the method's class, if known.
// The returned error is a *MethodError.
func (d *Detector) AnalyzeMethod(m *bytecode.Method, sourceFile string) ([]Finding, error) {
	findings, _, err := d.analyzeMethod(m, sourceFile)
	return findings, err
}

// analyzeMethod implements AnalyzeMethod, and also returns false when the method is skipped
func (d *Detector) analyzeMethod(m *bytecode.Method, sourceFile string) ([]Finding, bool, error) {
	if !d.shouldAnalyze(m) {
		return nil, false, nil
	}
	d.logger.Debugf("Analyzing %s", m.QualifiedName())
	methodErr := func(err error) error {
		return &MethodError{Class: m.Class, Method: m.Name + m.Descriptor, Err: err}
	}
	g, err := d.builder.Build(m)
	if err != nil {
		return nil, true, methodErr(err)
	}
	if d.config.SkipUnreachableExit && !g.Reachable()[g.Exit.Index] {
		d.logger.Debugf("Skipping %s: exit is unreachable", m.QualifiedName())
		return nil, false, nil
	}

	var findings []Finding
	for _, tracker := range d.trackers {
		for _, r := range resource.FindCreations[TrackedResource](g, tracker, d.lookup) {
			res, err := resource.Analyze[TrackedResource](g, tracker, r)
			if err != nil {
				return nil, true, methodErr(fmt.Errorf("resource %s: %w", r, err))
			}
			d.logger.Tracef("%s: %s is %s at exit (%d iterations)", m.QualifiedName(), r, res.Status,
				res.Iterations)
			if res.Leaks() {
				findings = append(findings, newFinding(m, sourceFile, r))
			}
		}
	}
	return findings, true, nil
}

func newFinding(m *bytecode.Method, sourceFile string, r TrackedResource) Finding {
	ins := &m.Code[r.Creation.Index]
	return Finding{
		RuleID: r.Policy.RuleID,
		Location: SourceLocation{
			Class:      m.Class,
			SourceFile: sourceFile,
			Method:     m.Name,
			Descriptor: m.Descriptor,
			Line:       lineOf(m, r.Creation.Index),
			Offset:     ins.Offset,
		},
		Priority:      r.Policy.Priority,
		ResourceClass: r.Class,
	}
}

// lineOf returns the source line of the instruction at index i. An instruction without line information is on the
// line of the closest preceding instruction that has one.
func lineOf(m *bytecode.Method, i int) int {
	for ; i >= 0; i-- {
		if l := m.Code[i].Line; l > 0 {
			return l
		}
	}
	return 0
}

// AnalyzeClass returns the findings of all the methods of the class, and the errors of the methods whose analysis
// failed.
func (d *Detector) AnalyzeClass(c *bytecode.Class) ([]Finding, []*MethodError) {
	var findings []Finding
	var errs []*MethodError
	for _, m := range c.Methods {
		f, err := d.AnalyzeMethod(m, c.SourceFile)
		if err != nil {
			errs = append(errs, toMethodError(m, err))
			continue
		}
		findings = append(findings, f...)
	}
	SortFindings(findings)
	return findings, errs
}

func toMethodError(m *bytecode.Method, err error) *MethodError {
	if me, ok := err.(*MethodError); ok {
		return me
	}
	return &MethodError{Class: m.Class, Method: m.Name + m.Descriptor, Err: err}
}

type methodJob struct {
	method     *bytecode.Method
	sourceFile string
}

type methodResult struct {
	findings []Finding
	err      *MethodError
	analyzed bool
}

// AnalyzeProgram analyzes all the methods of the program, using the number of routines of the config, and returns
// the report. Methods are analyzed independently: the failure of one does not stop the others.
func (d *Detector) AnalyzeProgram(p *bytecode.Program) *Report {
	start := time.Now()
	var jobs []methodJob
	for _, c := range p.Classes {
		for _, m := range c.Methods {
			jobs = append(jobs, methodJob{method: m, sourceFile: c.SourceFile})
		}
	}
	d.logger.Infof("Analyzing %d methods of %d classes with %d routines", len(jobs), len(p.Classes),
		d.config.NumRoutines)

	results := funcutil.MapParallel(jobs, func(job methodJob) methodResult {
		findings, analyzed, err := d.analyzeMethod(job.method, job.sourceFile)
		if err != nil {
			me := toMethodError(job.method, err)
			d.logger.Errorf("%v", me)
			return methodResult{err: me, analyzed: analyzed}
		}
		return methodResult{findings: findings, analyzed: analyzed}
	}, d.config.NumRoutines)

	report := &Report{}
	for _, res := range results {
		for _, f := range res.findings {
			if d.suppress != nil && d.suppress(f) {
				d.logger.Debugf("Suppressed %s at %s", f.RuleID, f.Location)
				report.Suppressed++
				continue
			}
			report.Findings = append(report.Findings, f)
		}
		if res.err != nil {
			report.Errors = append(report.Errors, res.err)
		}
		if res.analyzed {
			report.NumMethods++
		}
	}
	SortFindings(report.Findings)
	if d.config.ExceedsMaxFindings(len(report.Findings)) {
		report.Findings = report.Findings[:d.config.MaxFindings]
		report.Truncated = true
	}
	report.MissingClasses = d.missing.Classes()
	for _, c := range report.MissingClasses {
		d.logger.Warnf("Missing class %s", c)
	}
	d.logger.Infof("Found %d leaks in %d methods (%d errors, %d missing classes) in %.2f s",
		len(report.Findings), report.NumMethods, len(report.Errors), len(report.MissingClasses),
		time.Since(start).Seconds())
	return report
}
