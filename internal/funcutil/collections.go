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

// Package funcutil contains generic helpers on slices, maps and optional values.
package funcutil

import (
	"sort"
	"sync"

	"golang.org/x/exp/constraints"
)

// MapInPlace calls f on all elements of the slice to update them.
func MapInPlace[T any](a []T, f func(T) T) {
	for i, x := range a {
		a[i] = f(x)
	}
}

// MapParallel returns a new slice b such that b[i] = f(a[i]), calling f from numRoutines goroutines. f must be safe
// for concurrent use. The order of the results is the order of a, whatever the scheduling.
func MapParallel[T any, S any](a []T, f func(T) S, numRoutines int) []S {
	res := make([]S, len(a))
	if numRoutines <= 1 {
		for i, x := range a {
			res[i] = f(x)
		}
		return res
	}
	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(numRoutines)
	for r := 0; r < numRoutines; r++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				// each index is written by exactly one goroutine
				res[i] = f(a[i])
			}
		}()
	}
	for i := range a {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return res
}

// SetToOrderedSlice converts a set represented as a map from elements to booleans into a slice.
// Sorts the result in increasing order
func SetToOrderedSlice[T constraints.Ordered](set map[T]bool) []T {
	var s []T
	for r, b := range set {
		if b {
			s = append(s, r)
		}
	}
	sort.Slice(s, func(i int, j int) bool { return s[i] < s[j] })
	return s
}
