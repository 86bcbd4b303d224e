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

package check

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/awslabs/ar-resource-leaks/cmd/resleak/tools"
)

func runCheck(t *testing.T, args ...string) (int, string, error) {
	flags, err := NewFlags(append([]string{"-color", "never"}, args...))
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	var out bytes.Buffer
	code, err := Run(flags, &out)
	return code, out.String(), err
}

func TestCheckExitCodes(t *testing.T) {
	for _, tc := range []struct {
		files []string
		code  int
	}{
		{[]string{"../testdata/example.yaml"}, tools.ExitFindings},
		{[]string{"../testdata/clean.yaml"}, tools.ExitOK},
		{[]string{"../testdata/legacy.yaml"}, tools.ExitErrors},
		{[]string{"../testdata/legacy.yaml", "../testdata/example.yaml"}, tools.ExitFindings},
		{[]string{"../testdata/absent.yaml"}, tools.ExitUsage},
	} {
		code, _, err := runCheck(t, tc.files...)
		if code != tc.code {
			t.Errorf("%v: expected exit code %d, got %d (%v)", tc.files, tc.code, code, err)
		}
		if (code == tools.ExitUsage) != (err != nil) {
			t.Errorf("%v: only usage errors return an error, got %v", tc.files, err)
		}
	}
}

func TestCheckText(t *testing.T) {
	_, out, err := runCheck(t, "../testdata/example.yaml", "../testdata/legacy.yaml")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{
		"OS_OPEN_STREAM [normal] java.io.FileInputStream may not be closed",
		"example.Example.read(Ljava/lang/String;Z)V (Example.java:5)",
		"error: analysis of example.Legacy.run()V failed",
		"1 findings in 3 methods, 1 errors, 0 missing classes",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output should contain %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "copy") {
		t.Errorf("the wrapped stream is closed:\n%s", out)
	}
}

func TestCheckJSON(t *testing.T) {
	_, out, err := runCheck(t, "-json", "../testdata/example.yaml", "../testdata/legacy.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var report struct {
		Findings []struct {
			RuleID   string `json:"rule-id"`
			Location struct {
				Method string `json:"method"`
				Offset int    `json:"offset"`
			} `json:"location"`
		} `json:"findings"`
		Errors []struct {
			Method string `json:"method"`
			Error  string `json:"error"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid json %s: %v", out, err)
	}
	if len(report.Findings) != 1 || report.Findings[0].Location.Method != "read" ||
		report.Findings[0].RuleID != "OS_OPEN_STREAM" {
		t.Errorf("unexpected findings %+v", report.Findings)
	}
	if len(report.Errors) != 1 || report.Errors[0].Method != "run()V" || report.Errors[0].Error == "" {
		t.Errorf("unexpected errors %+v", report.Errors)
	}
}

func TestCheckNoProgram(t *testing.T) {
	if _, err := NewFlags([]string{"-verbose"}); err == nil {
		t.Errorf("check without program file should fail")
	}
}
