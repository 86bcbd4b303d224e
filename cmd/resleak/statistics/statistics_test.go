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

package statistics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/awslabs/ar-resource-leaks/analysis"
)

func TestStatisticsText(t *testing.T) {
	flags, err := NewFlags([]string{"-color", "never", "../testdata/example.yaml", "../testdata/legacy.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := Run(flags, &out); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"classes: 2\n", "methods: 3 (3 with code, 3 allocating)\n", "graph errors: 1\n"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output should contain %q:\n%s", s, out.String())
		}
	}
}

func TestStatisticsJSON(t *testing.T) {
	flags, err := NewFlags([]string{"-json", "../testdata/clean.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := Run(flags, &out); err != nil {
		t.Fatal(err)
	}
	var stats analysis.Statistics
	if err := json.Unmarshal(out.Bytes(), &stats); err != nil {
		t.Fatalf("invalid json %q: %v", out.String(), err)
	}
	if stats.NumberOfClasses != 1 || stats.NumberOfCfgErrors != 0 || stats.NumberOfBlocks == 0 {
		t.Errorf("unexpected statistics %+v", stats)
	}
}

func TestStatisticsMissingFile(t *testing.T) {
	flags, err := NewFlags([]string{"../testdata/absent.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(flags, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "could not load program") {
		t.Errorf("expected a load error, got %v", err)
	}
}
