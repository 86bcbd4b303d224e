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

// Package analysistest loads test programs and the expected findings annotated in them.
package analysistest

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"testing"

	"github.com/awslabs/ar-resource-leaks/analysis/bytecode"
	"github.com/awslabs/ar-resource-leaks/analysis/config"
	"github.com/awslabs/ar-resource-leaks/internal/yamlutil"
)

// LoadTest loads the program in the directory dir of fsys, looking for a program.yaml and an optional config.yaml.
// When there is no config.yaml, the default config is used.
func LoadTest(t *testing.T, fsys fs.FS, dir string) (*bytecode.Program, *config.Config) {
	t.Helper()
	programFile := path.Join(dir, "program.yaml")
	b, err := fs.ReadFile(fsys, programFile)
	if err != nil {
		t.Fatalf("error reading %s: %v", programFile, err)
	}
	program, err := bytecode.ParseProgram(programFile, b)
	if err != nil {
		t.Fatalf("error loading program %s: %v", programFile, err)
	}
	configFile := path.Join(dir, "config.yaml")
	cb, err := fs.ReadFile(fsys, configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return program, config.NewDefault()
	}
	if err != nil {
		t.Fatalf("error reading %s: %v", configFile, err)
	}
	cfg, err := config.LoadBytes(configFile, cb)
	if err != nil {
		t.Fatalf("error loading config %s: %v", configFile, err)
	}
	return program, cfg
}

// Lookup returns the type lookup of the program, with the hierarchy edges of the config
func Lookup(program *bytecode.Program, cfg *config.Config) *bytecode.Hierarchy {
	return program.NewLookup(cfg.Hierarchy)
}

// LeakRegex matches annotations of the form "@Leak(RULE_ID)"
var LeakRegex = regexp.MustCompile(`#.*@Leak\((\w+)\)`)

// LeakPos identifies an annotated allocation: the instruction at Index in the code of the method Method (name and
// descriptor) of Class, leaked according to the rule RuleID
type LeakPos struct {
	Class  string
	Method string
	Index  int
	RuleID string
}

func (p LeakPos) String() string {
	return fmt.Sprintf("%s at %s.%s[%d]", p.RuleID, p.Class, p.Method, p.Index)
}

// GetExpectedLeaks reads the annotations of the program file and returns the set of expected leaks. An annotation
// "# @Leak(RULE_ID)" must be on the line starting the mapping of an instruction.
func GetExpectedLeaks(t *testing.T, fsys fs.FS, filename string) map[LeakPos]bool {
	t.Helper()
	b, err := fs.ReadFile(fsys, filename)
	if err != nil {
		t.Fatalf("error reading %s: %v", filename, err)
	}
	annotations := map[int][]string{}
	for i, line := range yamlutil.Lines(b) {
		for _, m := range LeakRegex.FindAllStringSubmatch(line, -1) {
			annotations[i+1] = append(annotations[i+1], m[1])
		}
	}

	nodes, err := yamlutil.Instructions(b)
	if err != nil {
		t.Fatalf("error parsing %s: %v", filename, err)
	}
	expected := map[LeakPos]bool{}
	found := 0
	for _, ins := range nodes {
		for _, rule := range annotations[ins.Node.Line] {
			pos := LeakPos{
				Class:  bytecode.BinaryName(ins.Class),
				Method: ins.Method + ins.Descriptor,
				Index:  ins.Index,
				RuleID: rule,
			}
			expected[pos] = true
			found++
		}
	}
	total := 0
	for _, rules := range annotations {
		total += len(rules)
	}
	if found != total {
		t.Fatalf("%d annotations of %s are not on an instruction", total-found, filename)
	}
	return expected
}
