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

package yamlutil

import (
	"strings"
	"testing"
)

const program = `classes:
  - name: test/A
    methods:
      - name: open
        descriptor: "()V"
        code:
          - {op: new, class: java/io/FileInputStream}
          - {op: pop} # resleak:ignore
          - {op: return}
      - name: empty
        descriptor: "()V"
  - name: test/B
    methods:
      - name: run
        descriptor: "(I)V"
        code:
          - op: return
`

func TestInstructions(t *testing.T) {
	nodes, err := Instructions([]byte(program))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(nodes))
	}
	pop := nodes[1]
	if pop.Class != "test/A" || pop.Method != "open" || pop.Descriptor != "()V" || pop.Index != 1 {
		t.Errorf("unexpected node %+v", pop)
	}
	lines := Lines([]byte(program))
	if !strings.Contains(lines[pop.Node.Line-1], "resleak:ignore") {
		t.Errorf("line %d should hold the directive: %q", pop.Node.Line, lines[pop.Node.Line-1])
	}
	last := nodes[3]
	if last.Class != "test/B" || last.Index != 0 || Scalar(MapValue(last.Node, "op")) != "return" {
		t.Errorf("unexpected node %+v", last)
	}
}

func TestInstructionsInvalid(t *testing.T) {
	if _, err := Instructions([]byte("classes: [")); err == nil {
		t.Errorf("expected a yaml error")
	}
	nodes, err := Instructions([]byte("hierarchy: {a: [b]}"))
	if err != nil || len(nodes) != 0 {
		t.Errorf("a program without classes has no instructions")
	}
}

func TestHelpersOnMissingNodes(t *testing.T) {
	if MapValue(nil, "a") != nil || Items(nil) != nil || Scalar(nil) != "" {
		t.Errorf("helpers should accept nil nodes")
	}
}
