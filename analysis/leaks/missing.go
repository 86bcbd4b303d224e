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
	"sync"

	"github.com/awslabs/ar-resource-leaks/internal/funcutil"
)

// A MissingClassReporter is notified of the classes the type lookup could not find
type MissingClassReporter interface {
	ReportMissingClass(class string)
}

// MissingClassCollector collects missing classes. It is safe for concurrent use.
type MissingClassCollector struct {
	mu      sync.Mutex
	classes map[string]bool
}

// NewMissingClassCollector returns an empty collector
func NewMissingClassCollector() *MissingClassCollector {
	return &MissingClassCollector{classes: map[string]bool{}}
}

// ReportMissingClass records the class as missing
func (c *MissingClassCollector) ReportMissingClass(class string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes[class] = true
}

// Classes returns the missing classes in sorted order
func (c *MissingClassCollector) Classes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return funcutil.SetToOrderedSlice(c.classes)
}
