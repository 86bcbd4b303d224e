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
	"testing"

	"golang.org/x/exp/slices"
)

func TestLookupMnemonic(t *testing.T) {
	for _, tc := range []struct {
		name  string
		op    Opcode
		local int
	}{
		{"aload", OpAload, -1},
		{"aload_0", OpAload, 0},
		{"astore_3", OpAstore, 3},
		{"lload_2", OpLload, 2},
		{"invokevirtual", OpInvokevirtual, -1},
		{"iconst_1", Opcode(4), -1},
	} {
		op, local, ok := LookupMnemonic(tc.name)
		if !ok || op != tc.op || local != tc.local {
			t.Errorf("%s: got %s, %d, %v", tc.name, op, local, ok)
		}
	}
	for _, name := range []string{"aload_4", "new_0", "INVOKEVIRTUAL", ""} {
		if _, _, ok := LookupMnemonic(name); ok {
			t.Errorf("%q should not be a mnemonic", name)
		}
	}
	if OpAload.Mnemonic() != "aload" || !OpAload.Known() || Opcode(254).Known() {
		t.Errorf("unexpected opcode table")
	}
}

func TestEffect(t *testing.T) {
	for _, tc := range []struct {
		ins      Instruction
		consumes int
		produces int
		args     []int
	}{
		{New("java/io/File"), 0, 1, nil},
		{Aload(1), 0, 1, nil},
		{LocalOp(OpLstore, 2), 2, 0, nil},
		{Op(OpDup), 1, 2, nil},
		{Op(OpDupX1), 2, 3, nil},
		{Op(OpDup2X2), 4, 6, nil},
		{Op(OpSwap), 2, 2, nil},
		{Invoke(OpInvokevirtual, "java/io/InputStream", "read", "([BII)I"), 4, 1, []int{1, 1, 1, 1}},
		{Invoke(OpInvokestatic, "java/lang/Math", "max", "(JJ)J"), 4, 2, []int{2, 2}},
		{Invoke(OpInvokespecial, "java/io/File", "<init>", "(Ljava/lang/String;)V"), 2, 0, []int{1, 1}},
		{Invoke(OpInvokedynamic, "", "apply", "(Ljava/lang/Object;)Ljava/util/function/Function;"), 1, 1,
			[]int{1}},
		{Field(OpGetfield, "test/A", "x", "J"), 1, 2, nil},
		{Field(OpPutstatic, "test/A", "x", "D"), 2, 0, nil},
		{Field(OpPutfield, "test/A", "in", "Ljava/io/InputStream;"), 2, 0, nil},
		{Instruction{Opcode: OpMultianewarray, Class: "[[I", Dims: 2}, 2, 1, nil},
		{Op(OpAastore), 3, 0, nil},
	} {
		eff, err := tc.ins.Effect()
		if err != nil {
			t.Errorf("%s: %v", &tc.ins, err)
			continue
		}
		if eff.Consumes != tc.consumes || eff.Produces != tc.produces || !slices.Equal(eff.ArgWidths, tc.args) {
			t.Errorf("%s: got %+v", &tc.ins, eff)
		}
	}
}

func TestEffectErrors(t *testing.T) {
	for _, ins := range []Instruction{
		{Opcode: Opcode(254)},
		Invoke(OpInvokevirtual, "A", "m", "(X)V"),
		Field(OpGetfield, "A", "f", "V"),
		{Opcode: OpMultianewarray, Class: "[[I"},
	} {
		if _, err := ins.Effect(); err == nil {
			t.Errorf("%s: expected an error", &ins)
		}
	}
}

func TestDispatch(t *testing.T) {
	for op, receiver := range map[Opcode]bool{
		OpInvokevirtual:   true,
		OpInvokespecial:   true,
		OpInvokeinterface: true,
		OpInvokestatic:    false,
		OpInvokedynamic:   false,
		OpNew:             false,
	} {
		ins := Instruction{Opcode: op}
		if ins.Dispatch().HasReceiver() != receiver {
			t.Errorf("%s: receiver should be %v", op, receiver)
		}
	}
	ins := Invoke(OpInvokevirtual, "java/io/InputStream", "close", "()V")
	if !ins.IsInvocationOf("close", "()V") || ins.IsInvocationOf("close", "(Z)V") {
		t.Errorf("unexpected IsInvocationOf")
	}
	if ins.Class != "java.io.InputStream" {
		t.Errorf("owners are binary names, got %s", ins.Class)
	}
}

func TestEndsBlock(t *testing.T) {
	for k, ends := range map[Kind]bool{
		KindBranch: true, KindGoto: true, KindSwitch: true, KindReturn: true, KindThrow: true,
		KindSubroutine: true, KindInvoke: false, KindNew: false, KindOther: false,
	} {
		if k.EndsBlock() != ends {
			t.Errorf("%s: EndsBlock should be %v", k, ends)
		}
	}
}
