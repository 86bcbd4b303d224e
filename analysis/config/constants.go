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

package config

const (
	// DefaultRuleID is the rule id of findings of the built-in stream policy
	DefaultRuleID = "OS_OPEN_STREAM"
	// DefaultPriority is the priority of findings when a leak problem does not specify one (normal priority)
	DefaultPriority = 2
	// MinPriority and MaxPriority bound the priorities of findings; 1 is high and 3 is low.
	MinPriority = 1
	MaxPriority = 3
	// DefaultNumRoutines is the number of methods analyzed in parallel by default
	DefaultNumRoutines = 1
)
