package ir

// Op identifies an IR instruction opcode.
type Op uint8

const (
	OpInvalid Op = iota

	// Constants. Spelled with the type name in the grammar: %x = f32 1.5
	// Ldc loads a module-level named constant: %x = ldc eps
	OpFConst
	OpUConst
	OpLdc

	// Float arithmetic.
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFNeg

	// Math intrinsics.
	OpSqrt
	OpExp
	OpLog
	OpPow
	OpAbs
	OpMin
	OpMax
	OpFloor

	// Vector ops.
	OpVAdd
	OpVSub
	OpScale
	OpDot
	OpCross
	OpNorm
	OpNormalize
	OpElem

	// Quaternion ops.
	OpQMul
	OpQConj
	OpRotate
	OpQElem

	// Integer ops.
	OpIAdd
	OpIEq
	OpINe
	OpILt
	OpU2F

	// Float comparisons.
	OpFEq
	OpFLt
	OpFLe
	OpFGt
	OpFGe

	OpSelect

	OpCall

	// Terminators.
	OpBr
	OpCbr
	OpRet
)

var opNames = map[Op]string{
	OpFConst:    "f32",
	OpUConst:    "u32",
	OpLdc:       "ldc",
	OpFAdd:      "fadd",
	OpFSub:      "fsub",
	OpFMul:      "fmul",
	OpFDiv:      "fdiv",
	OpFNeg:      "fneg",
	OpSqrt:      "sqrt",
	OpExp:       "exp",
	OpLog:       "log",
	OpPow:       "pow",
	OpAbs:       "abs",
	OpMin:       "min",
	OpMax:       "max",
	OpFloor:     "floor",
	OpVAdd:      "vadd",
	OpVSub:      "vsub",
	OpScale:     "scale",
	OpDot:       "dot",
	OpCross:     "cross",
	OpNorm:      "norm",
	OpNormalize: "normalize",
	OpElem:      "elem",
	OpQMul:      "qmul",
	OpQConj:     "qconj",
	OpRotate:    "rotate",
	OpQElem:     "qelem",
	OpIAdd:      "iadd",
	OpIEq:       "ieq",
	OpINe:       "ine",
	OpILt:       "ilt",
	OpU2F:       "u2f",
	OpFEq:       "feq",
	OpFLt:       "flt",
	OpFLe:       "fle",
	OpFGt:       "fgt",
	OpFGe:       "fge",
	OpSelect:    "select",
	OpCall:      "call",
	OpBr:        "br",
	OpCbr:       "cbr",
	OpRet:       "ret",
}

// String returns the textual mnemonic of the opcode.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "invalid"
}

// ParseOp maps a mnemonic to its Op. Returns OpInvalid, false for unknown
// mnemonics.
func ParseOp(s string) (Op, bool) {
	for op, name := range opNames {
		if name == s {
			return op, true
		}
	}
	return OpInvalid, false
}

// IsTerminator reports whether op ends a block.
func (op Op) IsTerminator() bool {
	return op == OpBr || op == OpCbr || op == OpRet
}

// Arity returns the number of register operands the op consumes.
// Reports -1 for OpCall, whose operand count is the callee's parameter count.
func (op Op) Arity() int {
	switch op {
	case OpFConst, OpUConst, OpLdc, OpBr:
		return 0
	case OpFNeg, OpSqrt, OpExp, OpLog, OpAbs, OpFloor,
		OpNorm, OpNormalize, OpElem, OpQConj, OpQElem, OpU2F, OpRet:
		return 1
	case OpFAdd, OpFSub, OpFMul, OpFDiv, OpPow, OpMin, OpMax,
		OpVAdd, OpVSub, OpScale, OpDot, OpCross, OpQMul, OpRotate,
		OpIAdd, OpIEq, OpINe, OpILt,
		OpFEq, OpFLt, OpFLe, OpFGt, OpFGe:
		return 2
	case OpSelect:
		return 3
	case OpCbr:
		return 1
	case OpCall:
		return -1
	default:
		return 0
	}
}
