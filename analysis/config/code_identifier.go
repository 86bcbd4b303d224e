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

import (
	"fmt"
	"regexp"
)

// CodeIdentifier identifies a method of a class. Empty fields match anything.
type CodeIdentifier struct {
	// Class is the binary name of the class, e.g. java.io.InputStream
	Class string `yaml:"class"`

	// Method is the name of the method
	Method string `yaml:"method"`

	// Descriptor is the method descriptor, e.g. ()V
	Descriptor string `yaml:"descriptor"`

	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	classRegex      *regexp.Regexp
	methodRegex     *regexp.Regexp
	descriptorRegex *regexp.Regexp
}

// NewCodeIdentifier returns the code identifier of a method, without regexes
func NewCodeIdentifier(class string, method string, descriptor string) CodeIdentifier {
	return CodeIdentifier{Class: class, Method: method, Descriptor: descriptor}
}

func (cid CodeIdentifier) String() string {
	return fmt.Sprintf("%s.%s%s", cid.Class, cid.Method, cid.Descriptor)
}

// CompileRegexes compiles the strings in the code identifier into regexes. It compiles all identifiers into regexes
// or none.
//
// Descriptors contain regex metacharacters: ()V compiles but does not match itself. Descriptors are matched
// literally first, so that both plain descriptors and patterns work.
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	classRegex, err := regexp.Compile(anchored(cid.Class))
	if err != nil {
		return cid
	}
	methodRegex, err := regexp.Compile(anchored(cid.Method))
	if err != nil {
		return cid
	}
	descriptorRegex, err := regexp.Compile(anchored(cid.Descriptor))
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{classRegex, methodRegex, descriptorRegex}
	return cid
}

func anchored(s string) string {
	return "^(?:" + s + ")$"
}

// HasRegexes returns true if the identifier has been compiled to regexes
func (cid CodeIdentifier) HasRegexes() bool {
	return cid.computedRegexs != nil
}

// Matches returns true if each of the fields of the method identified by class, method and descriptor either match
// the corresponding field of cid, or the field of cid is empty.
func (cid CodeIdentifier) Matches(class string, method string, descriptor string) bool {
	return matchField(cid.Class, class, cid.computedRegexs, func(r *codeIdentifierRegex) *regexp.Regexp {
		return r.classRegex
	}) && matchField(cid.Method, method, cid.computedRegexs, func(r *codeIdentifierRegex) *regexp.Regexp {
		return r.methodRegex
	}) && matchField(cid.Descriptor, descriptor, cid.computedRegexs, func(r *codeIdentifierRegex) *regexp.Regexp {
		return r.descriptorRegex
	})
}

func matchField(ref string, s string, regexes *codeIdentifierRegex,
	get func(*codeIdentifierRegex) *regexp.Regexp) bool {
	if ref == "" || ref == s {
		return true
	}
	if regexes == nil {
		return false
	}
	return get(regexes).MatchString(s)
}

// ExistsCid is true if there is some x in a such that f(x) is true.
func ExistsCid(a []CodeIdentifier, f func(identifier CodeIdentifier) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}
