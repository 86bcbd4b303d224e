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

package bytecode

import (
	"fmt"
	"sort"
)

// ObjectClass is the root of the class hierarchy
const ObjectClass = "java.lang.Object"

// TypeLookup answers subtyping queries on classes. Implementations return a *ClassNotFoundError when a class
// needed to answer the query is not known.
type TypeLookup interface {
	IsSubtype(class string, super string) (bool, error)
}

// A ClassNotFoundError is returned by a TypeLookup when a class is missing from the hierarchy.
type ClassNotFoundError struct {
	Class string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class not found: %s", e.Class)
}

// Hierarchy is a TypeLookup built from explicit class to supertypes edges. A Hierarchy is safe for concurrent
// queries once it is no longer modified.
type Hierarchy struct {
	supers map[string][]string
}

// NewHierarchy returns an empty hierarchy that only knows java.lang.Object.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{supers: map[string][]string{ObjectClass: nil}}
}

// Add records that class has the given direct supertypes. Calling Add on a known class adds to its supertypes.
func (h *Hierarchy) Add(class string, supers ...string) {
	existing := h.supers[class]
	for _, s := range supers {
		if s == "" || s == class {
			continue
		}
		dup := false
		for _, e := range existing {
			if e == s {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, s)
		}
	}
	h.supers[class] = existing
}

// AddClasses adds the classes and their supertypes to the hierarchy.
func (h *Hierarchy) AddClasses(classes []*Class) {
	for _, c := range classes {
		h.Add(c.Name, c.Supertypes()...)
	}
}

// AddEdges adds a map from class names to their supertypes, as found in configuration files.
func (h *Hierarchy) AddEdges(edges map[string][]string) {
	// sorted for deterministic supertype order
	keys := make([]string, 0, len(edges))
	for k := range edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Add(BinaryName(k), mapNames(edges[k])...)
	}
}

func mapNames(names []string) []string {
	res := make([]string, len(names))
	for i, n := range names {
		res[i] = BinaryName(n)
	}
	return res
}

// Knows returns true if the class is in the hierarchy
func (h *Hierarchy) Knows(class string) bool {
	_, ok := h.supers[class]
	return ok
}

// Len returns the number of classes in the hierarchy
func (h *Hierarchy) Len() int {
	return len(h.supers)
}

// IsSubtype returns true if class is super or a transitive subtype of super. Every class reached while walking up
// from class must be known, otherwise a *ClassNotFoundError naming the first missing class is returned.
func (h *Hierarchy) IsSubtype(class string, super string) (bool, error) {
	if class == super {
		return true, nil
	}
	if !h.Knows(class) {
		return false, &ClassNotFoundError{Class: class}
	}
	visited := map[string]bool{class: true}
	stack := []string{class}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		supers, ok := h.supers[cur]
		if !ok {
			return false, &ClassNotFoundError{Class: cur}
		}
		for _, s := range supers {
			if s == super {
				return true, nil
			}
			if !visited[s] {
				visited[s] = true
				stack = append(stack, s)
			}
		}
	}
	return false, nil
}

// DefaultJDKHierarchy returns a hierarchy containing the closeable types of java.io and java.lang that the
// stream policy refers to.
func DefaultJDKHierarchy() *Hierarchy {
	h := NewHierarchy()
	h.Add("java.lang.AutoCloseable", ObjectClass)
	h.Add("java.io.Closeable", "java.lang.AutoCloseable")
	h.Add("java.io.Flushable", ObjectClass)

	h.Add("java.io.InputStream", ObjectClass, "java.io.Closeable")
	for _, c := range []string{"java.io.FileInputStream", "java.io.ByteArrayInputStream",
		"java.io.FilterInputStream", "java.io.ObjectInputStream", "java.io.PipedInputStream",
		"java.io.SequenceInputStream"} {
		h.Add(c, "java.io.InputStream")
	}
	for _, c := range []string{"java.io.BufferedInputStream", "java.io.DataInputStream",
		"java.io.PushbackInputStream", "java.util.zip.InflaterInputStream"} {
		h.Add(c, "java.io.FilterInputStream")
	}
	h.Add("java.util.zip.GZIPInputStream", "java.util.zip.InflaterInputStream")
	h.Add("java.util.zip.ZipInputStream", "java.util.zip.InflaterInputStream")

	h.Add("java.io.OutputStream", ObjectClass, "java.io.Closeable", "java.io.Flushable")
	for _, c := range []string{"java.io.FileOutputStream", "java.io.ByteArrayOutputStream",
		"java.io.FilterOutputStream", "java.io.ObjectOutputStream", "java.io.PipedOutputStream"} {
		h.Add(c, "java.io.OutputStream")
	}
	for _, c := range []string{"java.io.BufferedOutputStream", "java.io.DataOutputStream",
		"java.io.PrintStream", "java.util.zip.DeflaterOutputStream"} {
		h.Add(c, "java.io.FilterOutputStream")
	}
	h.Add("java.util.zip.GZIPOutputStream", "java.util.zip.DeflaterOutputStream")
	h.Add("java.util.zip.ZipOutputStream", "java.util.zip.DeflaterOutputStream")

	h.Add("java.io.Reader", ObjectClass, "java.io.Closeable", "java.lang.Readable")
	h.Add("java.lang.Readable", ObjectClass)
	for _, c := range []string{"java.io.InputStreamReader", "java.io.BufferedReader", "java.io.StringReader",
		"java.io.CharArrayReader"} {
		h.Add(c, "java.io.Reader")
	}
	h.Add("java.io.FileReader", "java.io.InputStreamReader")

	h.Add("java.io.Writer", ObjectClass, "java.io.Closeable", "java.io.Flushable", "java.lang.Appendable")
	h.Add("java.lang.Appendable", ObjectClass)
	for _, c := range []string{"java.io.OutputStreamWriter", "java.io.BufferedWriter", "java.io.PrintWriter",
		"java.io.StringWriter", "java.io.CharArrayWriter"} {
		h.Add(c, "java.io.Writer")
	}
	h.Add("java.io.FileWriter", "java.io.OutputStreamWriter")

	h.Add("java.io.File", ObjectClass)
	h.Add("java.lang.String", ObjectClass)
	h.Add("java.lang.Throwable", ObjectClass)
	h.Add("java.lang.Exception", "java.lang.Throwable")
	h.Add("java.io.IOException", "java.lang.Exception")
	h.Add("java.lang.RuntimeException", "java.lang.Exception")
	h.Add("java.lang.IllegalStateException", "java.lang.RuntimeException")
	h.Add("java.lang.StringBuilder", ObjectClass)
	return h
}
