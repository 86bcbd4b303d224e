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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-resource-leaks/analysis"
	"github.com/awslabs/ar-resource-leaks/cmd/resleak/check"
	"github.com/awslabs/ar-resource-leaks/cmd/resleak/debug"
	"github.com/awslabs/ar-resource-leaks/cmd/resleak/statistics"
	"github.com/awslabs/ar-resource-leaks/cmd/resleak/tools"
)

const usage = `resleak: resource leak detection for JVM methods
Usage:
  resleak [tool] [options] <program file(s)>
Tools:
  - check: reports the resources that may not be closed on every path of the methods of a program
  - debug: prints the analysis of the resource allocated at one offset of a method
  - statistics: prints statistics about the methods of a program and their control-flow graphs
Examples:
  Check a program: resleak check -config config.yaml program.yaml
  Debug one allocation: resleak debug program.yaml test.Streams closeOnBranch 0`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(tools.ExitUsage)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "check":
		flags, err := check.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		code, err := check.Run(flags, os.Stdout)
		if err != nil {
			errExit(err)
		}
		os.Exit(code)
	case "debug":
		flags, err := debug.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := debug.Run(flags, os.Stdout); err != nil {
			errExit(err)
		}
	case "statistics":
		flags, err := statistics.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := statistics.Run(flags, os.Stdout); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(tools.ExitUsage)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(tools.ExitUsage)
}
