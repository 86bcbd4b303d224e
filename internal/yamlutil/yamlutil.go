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

// Package yamlutil contains helpers to walk the yaml nodes of a program file, for the tools that need the lines of
// the program's elements.
package yamlutil

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Document returns the content of a document node, or n
func Document(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

// MapValue returns the value of key in the mapping node n, or nil
func MapValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// Items returns the items of a sequence node, or nil
func Items(n *yaml.Node) []*yaml.Node {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}

// Scalar returns the value of n, or the empty string
func Scalar(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	return n.Value
}

// InstructionNode is the yaml node of an instruction of a program, with its position in the program
type InstructionNode struct {
	// Class is the class name as written in the file
	Class      string
	Method     string
	Descriptor string
	// Index is the index of the instruction in the code of the method
	Index int
	Node  *yaml.Node
}

// Instructions parses b and returns the nodes of all the instructions of the program, in order
func Instructions(b []byte) ([]InstructionNode, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	var res []InstructionNode
	for _, class := range Items(MapValue(Document(&root), "classes")) {
		className := Scalar(MapValue(class, "name"))
		for _, method := range Items(MapValue(class, "methods")) {
			for i, ins := range Items(MapValue(method, "code")) {
				res = append(res, InstructionNode{
					Class:      className,
					Method:     Scalar(MapValue(method, "name")),
					Descriptor: Scalar(MapValue(method, "descriptor")),
					Index:      i,
					Node:       ins,
				})
			}
		}
	}
	return res, nil
}

// Lines splits b into lines. Line i+1 of the file is at index i.
func Lines(b []byte) []string {
	return strings.Split(string(b), "\n")
}
