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

// Package analysis contains helper functions for running the leak detection on a program.
package analysis

import (
	"time"

	"github.com/awslabs/ar-resource-leaks/analysis/config"
	"github.com/awslabs/ar-resource-leaks/analysis/leaks"
)

// RunLeakDetection runs the leak detector of the config on the loaded program, in parallel using the number of
// routines of the config. Findings at an instruction carrying an ignore directive are suppressed.
func RunLeakDetection(c *config.Config, logger *config.LogGroup, loaded LoadedProgram) *leaks.Report {
	logger.Infof("Starting leak detection ...")
	start := time.Now()

	detector := leaks.NewDetector(c, logger, loaded.Lookup)
	if len(loaded.Directives) > 0 {
		logger.Debugf("Program has %d directives", len(loaded.Directives))
		detector.WithSuppression(loaded.Directives.Ignores)
	}
	for _, tracker := range detector.Trackers() {
		logger.Debugf("Tracking %s", tracker.Policy().RuleID)
	}
	report := detector.AnalyzeProgram(loaded.Program)

	logger.Infof("Leak detection done (%.2f s).", time.Since(start).Seconds())
	return report
}
