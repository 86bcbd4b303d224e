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

// Package check implements the front-end of the leak detection on whole programs.
package check

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-resource-leaks/analysis"
	"github.com/awslabs/ar-resource-leaks/analysis/leaks"
	"github.com/awslabs/ar-resource-leaks/cmd/resleak/tools"
	"github.com/awslabs/ar-resource-leaks/internal/formatutil"
)

// Usage of the check sub-command
const Usage = `Detect the resources that may not be closed on every path of the methods of a program.

Usage:
  resleak check [options] program.yaml...

Use the -help flag to display the options.

The exit status is 0 when there is no finding, 1 when some resource may leak, 3 when there is no finding but some
method could not be analyzed or some class is missing, and 2 when the program cannot be loaded.

Examples:
% resleak check -config config.yaml program.yaml
`

// Flags represents the flags for the check sub-command.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
}

// NewFlags returns parsed flags for check.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("check")
	outputJSON := flags.FlagSet.Bool("json", false, "output the report as JSON")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	if common.FlagSet.NArg() == 0 {
		return Flags{}, fmt.Errorf("expected at least one program file")
	}
	return Flags{CommonFlags: common, outputJSON: *outputJSON}, nil
}

// Run runs the leak detection on the program files of the flags, writes the report to w and returns the exit code.
// An error is returned only when the analysis could not start.
func Run(flags Flags, w io.Writer) (int, error) {
	cfg, logger, err := tools.Setup(flags.CommonFlags)
	if err != nil {
		return tools.ExitUsage, err
	}
	fmt.Fprintln(os.Stderr, formatutil.Faint("Reading program"))
	loaded, err := analysis.LoadProgram(cfg, flags.FlagSet.Args())
	if err != nil {
		return tools.ExitUsage, fmt.Errorf("could not load program: %w", err)
	}

	fmt.Fprintln(os.Stderr, formatutil.Faint("Analyzing"))
	report := analysis.RunLeakDetection(cfg, logger, loaded)
	if flags.outputJSON {
		err = json.NewEncoder(w).Encode(report)
	} else {
		err = report.WriteText(w)
	}
	if err != nil {
		return tools.ExitUsage, fmt.Errorf("could not write report: %w", err)
	}
	return ExitCode(report), nil
}

// ExitCode returns the exit code for the report
func ExitCode(report *leaks.Report) int {
	switch {
	case report.HasFindings():
		return tools.ExitFindings
	case report.HasErrors():
		return tools.ExitErrors
	default:
		return tools.ExitOK
	}
}
