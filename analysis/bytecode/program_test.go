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
	"strings"
	"testing"
)

const sampleProgram = `
classes:
  - name: test/Sample
    interfaces: [java/io/Closeable]
    source-file: Sample.java
    methods:
      - name: read
        descriptor: "(Ljava/lang/String;J)V"
        code:
          - {op: new, class: java/io/FileInputStream, line: 3}
          - {op: dup}
          - {op: aload_1}
          - {op: invokespecial, class: java/io/FileInputStream, name: "<init>", desc: "(Ljava/lang/String;)V"}
          - {op: astore, local: 4}
          - {offset: 10, op: aload, local: 4}
          - {op: ifnull, target: 13}
          - {op: return}
          - {offset: 13, op: return}
      - name: close
        descriptor: "()V"
        access: [public, abstract]
hierarchy:
  com/example/Pool: [java/lang/Object, java/io/Closeable]
`

func TestParseProgram(t *testing.T) {
	p, err := ParseProgram("sample.yaml", []byte(sampleProgram))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	c := p.Class("test.Sample")
	if c == nil {
		t.Fatalf("test.Sample should be defined")
	}
	if c.Super != ObjectClass || len(c.Supertypes()) != 2 || c.Interfaces[0] != "java.io.Closeable" {
		t.Errorf("unexpected supertypes %v", c.Supertypes())
	}
	if p.NumMethods() != 2 {
		t.Errorf("expected 2 methods, got %d", p.NumMethods())
	}
	read := c.Method("read")
	if read == nil || !read.HasCode() {
		t.Fatalf("read should have code")
	}
	offsets := []int{0, 1, 2, 3, 4, 10, 11, 12, 13}
	for i, ins := range read.Code {
		if ins.Offset != offsets[i] {
			t.Errorf("instruction %d should be at offset %d, got %d", i, offsets[i], ins.Offset)
		}
	}
	if read.Code[2].Opcode != OpAload || read.Code[2].Local != 1 {
		t.Errorf("aload_1 should be normalized, got %s", &read.Code[2])
	}
	if read.Code[0].Class != "java.io.FileInputStream" || read.Code[0].Line != 3 {
		t.Errorf("unexpected allocation %s", &read.Code[0])
	}
	// receiver, a reference and a long, then local 4
	if read.MaxLocals != 5 {
		t.Errorf("expected 5 locals, got %d", read.MaxLocals)
	}
	if i, ok := read.IndexOfOffset(11); !ok || i != 6 {
		t.Errorf("offset 11 should be at index 6, got %d", i)
	}
	if _, ok := read.IndexOfOffset(5); ok {
		t.Errorf("there is no instruction at offset 5")
	}
	set := read.BytecodeSet()
	if !set.Has(int(OpNew)) || !set.Has(int(OpIfnull)) || set.Has(int(OpAthrow)) {
		t.Errorf("unexpected bytecode set %s", set)
	}
	if c.Method("close").HasCode() {
		t.Errorf("abstract methods have no code")
	}
	if read.QualifiedName() != "test.Sample.read(Ljava/lang/String;J)V" {
		t.Errorf("unexpected name %s", read.QualifiedName())
	}
	if len(p.Hierarchy["com/example/Pool"]) != 2 {
		t.Errorf("program hierarchy edges should be kept as written")
	}
}

func TestParseProgramErrors(t *testing.T) {
	method := func(code string) string {
		return "classes:\n  - name: A\n    methods:\n      - name: m\n        descriptor: \"()V\"\n        code:\n" + code
	}
	for _, tc := range []struct {
		name string
		src  string
		msg  string
	}{
		{"yaml", "classes: [", "could not unmarshal"},
		{"no-name", "classes:\n  - super: A\n", "class without a name"},
		{"access", "classes:\n  - name: A\n    methods:\n      - {name: m, descriptor: \"()V\", access: [open]}\n",
			"unknown access flag"},
		{"descriptor", "classes:\n  - name: A\n    methods:\n      - {name: m, descriptor: \"()\"}\n",
			"malformed descriptor"},
		{"opcode", method("          - {op: frobnicate}\n"), "unknown opcode"},
		{"offset", method("          - {offset: 4, op: nop}\n          - {offset: 4, op: return}\n"),
			"offset 4 is not increasing"},
		{"no-target", method("          - {op: goto}\n"), "goto requires a target"},
		{"two-targets", method("          - {op: ifeq, targets: [3, 4]}\n"), "ifeq has 2 targets"},
		{"no-class", method("          - {op: new}\n"), "new requires a class"},
		{"no-member-name", method("          - {op: invokestatic, class: A}\n"), "requires a name and a descriptor"},
		{"no-owner", method("          - {op: getstatic, name: f, desc: I}\n"), "requires an owner class"},
		{"no-local", method("          - {op: aload}\n"), "aload requires a local"},
		{"local-conflict", method("          - {op: aload_1, local: 2}\n"), "conflicts with local 2"},
		{"bad-field", method("          - {op: getstatic, class: A, name: f, desc: V}\n"), "malformed descriptor"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProgram("bad.yaml", []byte(tc.src))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("error %q should contain %q", err, tc.msg)
			}
		})
	}
}

func TestParseAccessFlags(t *testing.T) {
	f, err := ParseAccessFlags([]string{"public", "STATIC", "native"})
	if err != nil {
		t.Fatal(err)
	}
	if !f.Has(AccPublic|AccStatic) || !f.Has(AccNative) || f.Has(AccAbstract) {
		t.Errorf("unexpected flags %x", f)
	}
	if _, err := ParseAccessFlags([]string{"sealed"}); err == nil {
		t.Errorf("sealed is not a flag")
	}
}

func TestMerge(t *testing.T) {
	a, err := ParseProgram("a.yaml", []byte("classes:\n  - name: test/A\nhierarchy:\n  x/Y: [java/io/Closeable]\n"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseProgram("b.yaml", []byte("classes:\n  - name: test/B\n    super: test/A\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Merge(b); err != nil {
		t.Fatal(err)
	}
	if a.Class("test.B") == nil || a.Class("test.B").Super != "test.A" {
		t.Errorf("test.B should be merged")
	}
	err = a.Merge(b)
	if err == nil || !strings.Contains(err.Error(), "class test.B is defined in a.yaml and b.yaml") {
		t.Errorf("expected a duplicate class error, got %v", err)
	}

	h := a.NewLookup(map[string][]string{"z/W": {"x/Y"}})
	for _, q := range [][2]string{
		{"test.B", ObjectClass},
		{"x.Y", "java.lang.AutoCloseable"},
		{"z.W", "java.io.Closeable"},
	} {
		if ok, err := h.IsSubtype(q[0], q[1]); !ok || err != nil {
			t.Errorf("%s should be a subtype of %s (%v)", q[0], q[1], err)
		}
	}
}

func TestNewMethod(t *testing.T) {
	m, err := NewMethod("test/A", "m", "(J)V", AccStatic,
		New("java/io/File"),
		Op(OpDup),
		Invoke(OpInvokespecial, "java/io/File", "<init>", "()V"),
		Astore(2).WithLine(7),
		Jump(OpGoto, 5),
		Op(OpReturn),
	)
	if err != nil {
		t.Fatal(err)
	}
	if m.Class != "test.A" || m.MaxLocals != 3 || m.Code[4].Offset != 4 || m.Code[3].Line != 7 {
		t.Errorf("unexpected method %s: %d locals", m, m.MaxLocals)
	}
	if _, err := NewMethod("test/A", "m", "()V", 0, Invoke(OpInvokestatic, "A", "f", "(")); err == nil {
		t.Errorf("malformed descriptors should be rejected")
	}
}
