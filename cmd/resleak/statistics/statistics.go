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

// Package statistics implements the front-end for the program statistics.
package statistics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-resource-leaks/analysis"
	"github.com/awslabs/ar-resource-leaks/analysis/cfg"
	"github.com/awslabs/ar-resource-leaks/cmd/resleak/tools"
	"github.com/awslabs/ar-resource-leaks/internal/formatutil"
)

// Usage of the statistics sub-command
const Usage = `Compute statistics on the methods of a program and their control-flow graphs.

Usage:
  resleak statistics [options] program.yaml...

Use the -help flag to display the options.

Examples:
% resleak statistics -json program.yaml
`

// Flags represents the flags for the statistics sub-command.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
}

// NewFlags returns parsed flags for statistics.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("statistics")
	outputJSON := flags.FlagSet.Bool("json", false, "output results as JSON")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, outputJSON: *outputJSON}, nil
}

// Run computes the statistics of the program files of the flags and writes them to w.
func Run(flags Flags, w io.Writer) error {
	config, _, err := tools.Setup(flags.CommonFlags)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, formatutil.Faint("Reading program"))
	loaded, err := analysis.LoadProgram(config, flags.FlagSet.Args())
	if err != nil {
		return fmt.Errorf("could not load program: %w", err)
	}
	result := analysis.ProgramStatistics(loaded.Program, cfg.DefaultBuilder)
	if flags.outputJSON {
		return json.NewEncoder(w).Encode(result)
	}
	return result.WriteText(w)
}
