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

package analysis

import (
	"bytes"
	"errors"
	"io/fs"
	"path"
	"runtime"
	"strings"
	"testing"

	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
	"github.com/awslabs/ar-resource-leaks/analysis/config"
)

func testdataDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(filename), "testdata", "load")
}

func loadTestConfig(t *testing.T) *config.Config {
	c, err := config.Load(path.Join(testdataDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("error loading config: %s", err)
	}
	return c
}

func programLoadTest(t *testing.T, files ...string) LoadedProgram {
	var paths []string
	for _, f := range files {
		paths = append(paths, path.Join(testdataDir(), f))
	}
	loaded, err := LoadProgram(loadTestConfig(t), paths)
	if err != nil {
		t.Fatalf("error loading program: %s", err)
	}
	return loaded
}

func TestLoadMergesPrograms(t *testing.T) {
	loaded := programLoadTest(t, "a.yaml", "b.yaml")
	if n := len(loaded.Program.Classes); n != 2 {
		t.Fatalf("expected 2 classes, got %d", n)
	}
	if n := loaded.Program.NumMethods(); n != 4 {
		t.Errorf("expected 4 methods, got %d", n)
	}
	for _, c := range []string{"test.A", "test.B"} {
		if loaded.Program.Class(c) == nil {
			t.Errorf("class %s not loaded", c)
		}
	}
}

func TestLoadLookup(t *testing.T) {
	loaded := programLoadTest(t, "a.yaml")
	for _, tc := range []struct {
		class string
		super string
		want  bool
	}{
		{"com.example.Conn", "java.io.InputStream", true}, // from the config
		{"com.example.Conn", "java.io.Closeable", true},
		{"com.example.Pool", "java.lang.Object", true}, // from the program
		{"com.example.Pool", "java.io.Closeable", false},
		{"test.A", "java.lang.Object", true},
	} {
		got, err := loaded.Lookup.IsSubtype(tc.class, tc.super)
		if err != nil {
			t.Errorf("IsSubtype(%s, %s): %v", tc.class, tc.super, err)
			continue
		}
		if got != tc.want {
			t.Errorf("IsSubtype(%s, %s) = %v, want %v", tc.class, tc.super, got, tc.want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	c := loadTestConfig(t)
	dir := testdataDir()
	if _, err := LoadProgram(c, nil); err == nil {
		t.Errorf("loading no file should fail")
	}
	_, err := LoadProgram(c, []string{path.Join(dir, "a.yaml"), path.Join(dir, "dup.yaml")})
	if err == nil || !strings.Contains(err.Error(), "test.A") {
		t.Errorf("expected an error naming the duplicate class, got %v", err)
	}
	if _, err := LoadProgram(c, []string{path.Join(dir, "broken.yaml")}); err == nil {
		t.Errorf("loading a program with an unknown opcode should fail")
	}
	_, err = LoadProgram(c, []string{path.Join(dir, "absent.yaml")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestFindDirectives(t *testing.T) {
	loaded := programLoadTest(t, "a.yaml", "b.yaml")
	if n := len(loaded.Directives); n != 2 {
		t.Fatalf("expected 2 directives, got %d: %v", n, loaded.Directives)
	}
	for _, pos := range []DirectivePos{
		{Class: "test.A", Method: "ignored", Descriptor: "()V", Offset: 0},
		{Class: "test.B", Method: "ignored", Descriptor: "()V", Offset: 10},
	} {
		d, ok := loaded.Directives[pos]
		if !ok {
			t.Errorf("missing directive at %v", pos)
			continue
		}
		if d.Kind != DirectiveIgnore {
			t.Errorf("directive at %v has kind %s", pos, d.Kind)
		}
	}
}

func TestNewDirective(t *testing.T) {
	for _, tc := range []struct {
		line string
		ok   bool
	}{
		{"  - {op: new, class: A} # resleak:ignore", true},
		{"# resleak:ignore", true},
		{"  - {op: new, class: A} # resleak:other", false},
		{"  - {op: new, class: resleak:ignore}", false},
		{"  - {op: new, class: A}", false},
	} {
		if _, ok := NewDirective(tc.line); ok != tc.ok {
			t.Errorf("NewDirective(%q) = %v, want %v", tc.line, ok, tc.ok)
		}
	}
}

func TestRunLeakDetection(t *testing.T) {
	loaded := programLoadTest(t, "a.yaml", "b.yaml")
	c := loadTestConfig(t)
	logger := config.NewLogGroup(c)
	var logs bytes.Buffer
	logger.SetAllOutput(&logs)

	report := RunLeakDetection(c, logger, loaded)
	if len(report.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %v", report.Findings)
	}
	f := report.Findings[0]
	if f.Location.Class != "test.A" || f.Location.Method != "open" || f.Location.Line != 3 {
		t.Errorf("unexpected finding location %s", f.Location)
	}
	if report.Suppressed != 2 {
		t.Errorf("expected 2 suppressed findings, got %d", report.Suppressed)
	}
	if report.HasErrors() {
		t.Errorf("unexpected errors %v, missing classes %v", report.Errors, report.MissingClasses)
	}
	if report.NumMethods != 4 {
		t.Errorf("expected 4 analyzed methods, got %d", report.NumMethods)
	}
}

func TestProgramStatistics(t *testing.T) {
	loaded := programLoadTest(t, "a.yaml", "b.yaml")
	stats := ProgramStatistics(loaded.Program, cfg.DefaultBuilder)
	if stats.NumberOfClasses != 2 || stats.NumberOfMethods != 4 || stats.NumberOfNonemptyMethods != 4 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.NumberOfAllocatingMethods != 4 {
		t.Errorf("expected 4 allocating methods, got %d", stats.NumberOfAllocatingMethods)
	}
	if stats.NumberOfInstructions != 24 {
		t.Errorf("expected 24 instructions, got %d", stats.NumberOfInstructions)
	}
	// every method is a single block
	if stats.NumberOfBlocks != 4 || stats.NumberOfUnreachableBlocks != 0 || stats.NumberOfCfgErrors != 0 {
		t.Errorf("unexpected graph counts %+v", stats)
	}
	var b strings.Builder
	if err := stats.WriteText(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "methods: 4 (4 with code, 4 allocating)") {
		t.Errorf("unexpected output:\n%s", b.String())
	}
}
