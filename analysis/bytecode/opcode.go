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

import "fmt"

// Opcode is a JVM opcode number.
type Opcode uint8

// Opcodes referenced by name in the analyses. The full table is in opcodeTable.
const (
	OpNop             Opcode = 0
	OpAconstNull      Opcode = 1
	OpIload           Opcode = 21
	OpLload           Opcode = 22
	OpFload           Opcode = 23
	OpDload           Opcode = 24
	OpAload           Opcode = 25
	OpIstore          Opcode = 54
	OpLstore          Opcode = 55
	OpFstore          Opcode = 56
	OpDstore          Opcode = 57
	OpAstore          Opcode = 58
	OpAastore         Opcode = 83
	OpPop             Opcode = 87
	OpPop2            Opcode = 88
	OpDup             Opcode = 89
	OpDupX1           Opcode = 90
	OpDupX2           Opcode = 91
	OpDup2            Opcode = 92
	OpDup2X1          Opcode = 93
	OpDup2X2          Opcode = 94
	OpSwap            Opcode = 95
	OpIinc            Opcode = 132
	OpIfeq            Opcode = 153
	OpIfne            Opcode = 154
	OpIfAcmpeq        Opcode = 165
	OpIfAcmpne        Opcode = 166
	OpGoto            Opcode = 167
	OpJsr             Opcode = 168
	OpRet             Opcode = 169
	OpTableswitch     Opcode = 170
	OpLookupswitch    Opcode = 171
	OpIreturn         Opcode = 172
	OpLreturn         Opcode = 173
	OpFreturn         Opcode = 174
	OpDreturn         Opcode = 175
	OpAreturn         Opcode = 176
	OpReturn          Opcode = 177
	OpGetstatic       Opcode = 178
	OpPutstatic       Opcode = 179
	OpGetfield        Opcode = 180
	OpPutfield        Opcode = 181
	OpInvokevirtual   Opcode = 182
	OpInvokespecial   Opcode = 183
	OpInvokestatic    Opcode = 184
	OpInvokeinterface Opcode = 185
	OpInvokedynamic   Opcode = 186
	OpNew             Opcode = 187
	OpNewarray        Opcode = 188
	OpAnewarray       Opcode = 189
	OpArraylength     Opcode = 190
	OpAthrow          Opcode = 191
	OpCheckcast       Opcode = 192
	OpInstanceof      Opcode = 193
	OpMonitorenter    Opcode = 194
	OpMonitorexit     Opcode = 195
	OpMultianewarray  Opcode = 197
	OpIfnull          Opcode = 198
	OpIfnonnull       Opcode = 199
	OpGotoW           Opcode = 200
	OpJsrW            Opcode = 201
)

// Kind is the closed set of instruction kinds distinguished by the frame simulation. Every opcode maps to exactly
// one kind; instructions of kind KindOther only move untracked words on the operand stack.
type Kind int

const (
	// KindOther pops a fixed number of words and pushes a fixed number of untracked words
	KindOther Kind = iota
	// KindNew allocates an object and pushes its reference
	KindNew
	// KindLoad pushes the value of a local variable
	KindLoad
	// KindStore pops a value into a local variable
	KindStore
	// KindDup is any of the dup family: dup, dup_x1, dup_x2, dup2, dup2_x1, dup2_x2
	KindDup
	// KindPop is pop or pop2
	KindPop
	// KindSwap swaps the two top words
	KindSwap
	// KindCheckCast pops a reference and pushes the same reference
	KindCheckCast
	// KindInvoke is any method invocation
	KindInvoke
	// KindGetField reads an instance or static field
	KindGetField
	// KindPutField writes an instance or static field
	KindPutField
	// KindArrayStore stores a reference into an array
	KindArrayStore
	// KindReturn returns from the method, with or without a value
	KindReturn
	// KindThrow throws the exception on top of the stack
	KindThrow
	// KindBranch is a two-way conditional branch
	KindBranch
	// KindGoto is an unconditional branch
	KindGoto
	// KindSwitch is a multi-way branch
	KindSwitch
	// KindSubroutine is jsr/ret, which the analyses do not model
	KindSubroutine
)

var kindNames = [...]string{
	KindOther:      "other",
	KindNew:        "new",
	KindLoad:       "load",
	KindStore:      "store",
	KindDup:        "dup",
	KindPop:        "pop",
	KindSwap:       "swap",
	KindCheckCast:  "checkcast",
	KindInvoke:     "invoke",
	KindGetField:   "getfield",
	KindPutField:   "putfield",
	KindArrayStore: "arraystore",
	KindReturn:     "return",
	KindThrow:      "throw",
	KindBranch:     "branch",
	KindGoto:       "goto",
	KindSwitch:     "switch",
	KindSubroutine: "subroutine",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// EndsBlock returns true if an instruction of kind k always ends a basic block.
func (k Kind) EndsBlock() bool {
	switch k {
	case KindBranch, KindGoto, KindSwitch, KindReturn, KindThrow, KindSubroutine:
		return true
	default:
		return false
	}
}

// Dispatch is the dispatch mode of an invocation
type Dispatch int

const (
	// DispatchNone is the dispatch of non-invoke instructions
	DispatchNone Dispatch = iota
	DispatchVirtual
	DispatchSpecial
	DispatchStatic
	DispatchInterface
	DispatchDynamic
)

// HasReceiver returns true if the first argument consumed by the invocation is the receiver object.
func (d Dispatch) HasReceiver() bool {
	return d == DispatchVirtual || d == DispatchSpecial || d == DispatchInterface
}

func (d Dispatch) String() string {
	switch d {
	case DispatchVirtual:
		return "virtual"
	case DispatchSpecial:
		return "special"
	case DispatchStatic:
		return "static"
	case DispatchInterface:
		return "interface"
	case DispatchDynamic:
		return "dynamic"
	default:
		return "none"
	}
}

// opInfo describes the static stack behavior of an opcode. For kinds whose stack effect depends on operands
// (invocations, field accesses, multianewarray) consumes and produces are computed from the instruction.
type opInfo struct {
	name     string
	kind     Kind
	consumes int
	produces int
	// width is the number of words of the value moved by loads, stores, returns and dup/pop variants
	width int
	// under is the number of words the dup variants insert the copy under
	under    int
	dispatch Dispatch
	static   bool
}

var (
	opcodeTable  = map[Opcode]opInfo{}
	mnemonicToOp = map[string]Opcode{}
)

func def(op Opcode, info opInfo) {
	opcodeTable[op] = info
	mnemonicToOp[info.name] = op
}

func other(op Opcode, name string, consumes, produces int) {
	def(op, opInfo{name: name, kind: KindOther, consumes: consumes, produces: produces})
}

// prefixWidth returns the number of words of a value whose mnemonic starts with the type letter p
func prefixWidth(p byte) int {
	if p == 'l' || p == 'd' {
		return 2
	}
	return 1
}

func init() {
	other(OpNop, "nop", 0, 0)
	other(OpAconstNull, "aconst_null", 0, 1)
	for i, name := range []string{"iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4",
		"iconst_5"} {
		other(Opcode(2+i), name, 0, 1)
	}
	other(9, "lconst_0", 0, 2)
	other(10, "lconst_1", 0, 2)
	other(11, "fconst_0", 0, 1)
	other(12, "fconst_1", 0, 1)
	other(13, "fconst_2", 0, 1)
	other(14, "dconst_0", 0, 2)
	other(15, "dconst_1", 0, 2)
	other(16, "bipush", 0, 1)
	other(17, "sipush", 0, 1)
	other(18, "ldc", 0, 1)
	other(19, "ldc_w", 0, 1)
	other(20, "ldc2_w", 0, 2)

	// Loads and stores. The short forms (aload_0, ...) are normalized to the long forms with an explicit local.
	for i, p := range []byte{'i', 'l', 'f', 'd', 'a'} {
		def(OpIload+Opcode(i), opInfo{name: string(p) + "load", kind: KindLoad, produces: prefixWidth(p),
			width: prefixWidth(p)})
		def(OpIstore+Opcode(i), opInfo{name: string(p) + "store", kind: KindStore, consumes: prefixWidth(p),
			width: prefixWidth(p)})
	}

	// Array loads (46-53) and stores (79-86)
	for i, p := range []byte{'i', 'l', 'f', 'd', 'a', 'b', 'c', 's'} {
		other(Opcode(46+i), string(p)+"aload", 2, prefixWidth(p))
		if p == 'a' {
			def(OpAastore, opInfo{name: "aastore", kind: KindArrayStore, consumes: 3, width: 1})
		} else {
			other(Opcode(79+i), string(p)+"astore", 2+prefixWidth(p), 0)
		}
	}

	def(OpPop, opInfo{name: "pop", kind: KindPop, consumes: 1, width: 1})
	def(OpPop2, opInfo{name: "pop2", kind: KindPop, consumes: 2, width: 2})
	def(OpDup, opInfo{name: "dup", kind: KindDup, width: 1, under: 0})
	def(OpDupX1, opInfo{name: "dup_x1", kind: KindDup, width: 1, under: 1})
	def(OpDupX2, opInfo{name: "dup_x2", kind: KindDup, width: 1, under: 2})
	def(OpDup2, opInfo{name: "dup2", kind: KindDup, width: 2, under: 0})
	def(OpDup2X1, opInfo{name: "dup2_x1", kind: KindDup, width: 2, under: 1})
	def(OpDup2X2, opInfo{name: "dup2_x2", kind: KindDup, width: 2, under: 2})
	def(OpSwap, opInfo{name: "swap", kind: KindSwap, consumes: 2, produces: 2})

	// Arithmetic (96-119): add, sub, mul, div, rem, neg for i, l, f, d
	for i, op := range []string{"add", "sub", "mul", "div", "rem", "neg"} {
		for j, p := range []byte{'i', 'l', 'f', 'd'} {
			w := prefixWidth(p)
			if op == "neg" {
				other(Opcode(96+4*i+j), string(p)+op, w, w)
			} else {
				other(Opcode(96+4*i+j), string(p)+op, 2*w, w)
			}
		}
	}
	other(120, "ishl", 2, 1)
	other(121, "lshl", 3, 2)
	other(122, "ishr", 2, 1)
	other(123, "lshr", 3, 2)
	other(124, "iushr", 2, 1)
	other(125, "lushr", 3, 2)
	other(126, "iand", 2, 1)
	other(127, "land", 4, 2)
	other(128, "ior", 2, 1)
	other(129, "lor", 4, 2)
	other(130, "ixor", 2, 1)
	other(131, "lxor", 4, 2)
	other(OpIinc, "iinc", 0, 0)

	// Conversions (133-147)
	for i, conv := range []string{"i2l", "i2f", "i2d", "l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l", "d2f",
		"i2b", "i2c", "i2s"} {
		other(Opcode(133+i), conv, prefixWidth(conv[0]), prefixWidth(conv[2]))
	}
	other(148, "lcmp", 4, 1)
	other(149, "fcmpl", 2, 1)
	other(150, "fcmpg", 2, 1)
	other(151, "dcmpl", 4, 1)
	other(152, "dcmpg", 4, 1)

	for i, cond := range []string{"ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle"} {
		def(OpIfeq+Opcode(i), opInfo{name: cond, kind: KindBranch, consumes: 1})
	}
	for i, cond := range []string{"if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple",
		"if_acmpeq", "if_acmpne"} {
		def(Opcode(159+i), opInfo{name: cond, kind: KindBranch, consumes: 2})
	}
	def(OpIfnull, opInfo{name: "ifnull", kind: KindBranch, consumes: 1})
	def(OpIfnonnull, opInfo{name: "ifnonnull", kind: KindBranch, consumes: 1})
	def(OpGoto, opInfo{name: "goto", kind: KindGoto})
	def(OpGotoW, opInfo{name: "goto_w", kind: KindGoto})
	def(OpJsr, opInfo{name: "jsr", kind: KindSubroutine, produces: 1})
	def(OpJsrW, opInfo{name: "jsr_w", kind: KindSubroutine, produces: 1})
	def(OpRet, opInfo{name: "ret", kind: KindSubroutine})
	def(OpTableswitch, opInfo{name: "tableswitch", kind: KindSwitch, consumes: 1})
	def(OpLookupswitch, opInfo{name: "lookupswitch", kind: KindSwitch, consumes: 1})

	for i, p := range []byte{'i', 'l', 'f', 'd', 'a'} {
		def(OpIreturn+Opcode(i), opInfo{name: string(p) + "return", kind: KindReturn, consumes: prefixWidth(p),
			width: prefixWidth(p)})
	}
	def(OpReturn, opInfo{name: "return", kind: KindReturn})

	def(OpGetstatic, opInfo{name: "getstatic", kind: KindGetField, static: true})
	def(OpPutstatic, opInfo{name: "putstatic", kind: KindPutField, static: true})
	def(OpGetfield, opInfo{name: "getfield", kind: KindGetField})
	def(OpPutfield, opInfo{name: "putfield", kind: KindPutField})

	def(OpInvokevirtual, opInfo{name: "invokevirtual", kind: KindInvoke, dispatch: DispatchVirtual})
	def(OpInvokespecial, opInfo{name: "invokespecial", kind: KindInvoke, dispatch: DispatchSpecial})
	def(OpInvokestatic, opInfo{name: "invokestatic", kind: KindInvoke, dispatch: DispatchStatic, static: true})
	def(OpInvokeinterface, opInfo{name: "invokeinterface", kind: KindInvoke, dispatch: DispatchInterface})
	def(OpInvokedynamic, opInfo{name: "invokedynamic", kind: KindInvoke, dispatch: DispatchDynamic, static: true})

	def(OpNew, opInfo{name: "new", kind: KindNew, produces: 1})
	other(OpNewarray, "newarray", 1, 1)
	other(OpAnewarray, "anewarray", 1, 1)
	other(OpArraylength, "arraylength", 1, 1)
	def(OpAthrow, opInfo{name: "athrow", kind: KindThrow, consumes: 1})
	def(OpCheckcast, opInfo{name: "checkcast", kind: KindCheckCast, consumes: 1, produces: 1})
	other(OpInstanceof, "instanceof", 1, 1)
	other(OpMonitorenter, "monitorenter", 1, 0)
	other(OpMonitorexit, "monitorexit", 1, 0)
	def(OpMultianewarray, opInfo{name: "multianewarray", kind: KindOther, produces: 1})
}

// Mnemonic returns the mnemonic of the opcode, or "opcode(n)" for opcodes outside the model.
func (op Opcode) Mnemonic() string {
	if info, ok := opcodeTable[op]; ok {
		return info.name
	}
	return fmt.Sprintf("opcode(%d)", int(op))
}

func (op Opcode) String() string {
	return op.Mnemonic()
}

// Kind returns the instruction kind of the opcode. Opcodes outside the model are KindOther.
func (op Opcode) Kind() Kind {
	return opcodeTable[op].kind
}

// Known returns true if the opcode is part of the model
func (op Opcode) Known() bool {
	_, ok := opcodeTable[op]
	return ok
}

// LookupMnemonic returns the opcode for a mnemonic. Short forms with an implicit local index such as "aload_1"
// are resolved to their long form and the local index is returned as the second value (-1 otherwise).
func LookupMnemonic(name string) (Opcode, int, bool) {
	if op, ok := mnemonicToOp[name]; ok {
		return op, -1, true
	}
	// short forms: xload_n, xstore_n
	n := len(name)
	if n > 2 && name[n-2] == '_' && name[n-1] >= '0' && name[n-1] <= '3' {
		if op, ok := mnemonicToOp[name[:n-2]]; ok {
			k := op.Kind()
			if k == KindLoad || k == KindStore {
				return op, int(name[n-1] - '0'), true
			}
		}
	}
	return 0, -1, false
}
