package engine

import (
	"sync"

	"github.com/mverlet/pairjit/internal/geom"
	"github.com/mverlet/pairjit/internal/ir"
)

// vmOp is an executable opcode. The set is wider than ir.Op where static
// typing collapses at run time (select is split per result bank) and
// narrower where ops share machinery (the unary math intrinsics dispatch
// through the target table under a single opcode).
type vmOp uint8

const (
	vmFConst vmOp = iota
	vmUConst
	vmFAdd
	vmFSub
	vmFMul
	vmFDiv
	vmFNeg
	vmIntr // u = intrinsic id
	vmPow
	vmMin
	vmMax
	vmVAdd
	vmVSub
	vmScale
	vmDot
	vmCross
	vmNorm
	vmNormalize
	vmElem // c = component
	vmQMul
	vmQConj
	vmRotate
	vmQElem // c = component
	vmIAdd
	vmIEq
	vmINe
	vmILt
	vmU2F
	vmFEq
	vmFLt
	vmFLe
	vmFGt
	vmFGe
	vmSelF
	vmSelU
	vmSelB
	vmSelV
	vmSelQ
	vmCall // fn = callee index, args = caller slots, c = result bank
	vmJmp  // a = target pc
	vmCbr  // a = condition slot, b = true pc, c = false pc
	vmRet  // a = result slot, c = result bank
)

// vmInstr is one executable instruction. dst and a/b/c index bank slots or,
// for control flow, hold pc targets.
type vmInstr struct {
	op      vmOp
	dst     uint16
	a, b, c uint16
	f       float32
	u       uint32
	fn      int
	args    []vmArg
}

// vmArg is one call argument: the caller-frame slot it is read from and the
// bank it lives in. Callee parameter slots are implied: parameters occupy
// the first slots of each bank in declaration order.
type vmArg struct {
	src  uint16
	bank bank
}

// codeObj is an immutable compiled function body plus a pool of frames
// sized for it.
type codeObj struct {
	name    string
	ops     []vmInstr
	counts  [numBanks]int
	retBank bank
	frames  sync.Pool
}

func (c *codeObj) getFrame() *frame {
	return c.frames.Get().(*frame)
}

// frame is the per-invocation register file. Frames are pooled and reused
// without zeroing; the verifier proves every slot is written on every path
// before it is read, so stale contents are unobservable.
type frame struct {
	f []float32
	u []uint32
	b []bool
	v []geom.Vec3
	q []geom.Quat
}

// compile lowers a verified function to executable form. After a successful
// verify this cannot fail: every register, label, callee and type has been
// checked, so lowering is a mechanical translation.
func (e *Engine) compile(fn *function) *codeObj {
	info := fn.info
	c := &codeObj{
		name:    fn.name,
		counts:  info.counts,
		retBank: bankOf(info.decl.Result),
	}
	counts := info.counts
	c.frames.New = func() any {
		return &frame{
			f: make([]float32, counts[bankF]),
			u: make([]uint32, counts[bankU]),
			b: make([]bool, counts[bankB]),
			v: make([]geom.Vec3, counts[bankV]),
			q: make([]geom.Quat, counts[bankQ]),
		}
	}

	// First pass: emit with label fixups, recording each block's pc.
	// Fixups are patched by index after all blocks are placed.
	blockPC := make(map[string]uint16, len(info.decl.Blocks))
	type fixup struct {
		pc    int
		field uint8 // 0 = a, 1 = b, 2 = c
		label string
	}
	var fixups []fixup

	for _, blk := range info.decl.Blocks {
		blockPC[blk.Label] = uint16(len(c.ops))
		for _, in := range blk.Instrs {
			c.ops = append(c.ops, e.lower(info, in))
			pc := len(c.ops) - 1
			switch in.Op {
			case ir.OpBr:
				fixups = append(fixups, fixup{pc: pc, field: 0, label: in.Labels[0]})
			case ir.OpCbr:
				fixups = append(fixups, fixup{pc: pc, field: 1, label: in.Labels[0]})
				fixups = append(fixups, fixup{pc: pc, field: 2, label: in.Labels[1]})
			}
		}
	}
	for _, fx := range fixups {
		pc := blockPC[fx.label]
		switch fx.field {
		case 0:
			c.ops[fx.pc].a = pc
		case 1:
			c.ops[fx.pc].b = pc
		default:
			c.ops[fx.pc].c = pc
		}
	}
	return c
}

// lower translates a single verified IR instruction.
func (e *Engine) lower(info *funcInfo, in ir.Instr) vmInstr {
	vi := vmInstr{}
	if in.Dest != "" {
		vi.dst = info.slots[in.Dest].idx
	}
	arg := func(i int) uint16 { return info.slots[in.Args[i]].idx }

	switch in.Op {
	case ir.OpFConst:
		vi.op, vi.f = vmFConst, in.FVal
	case ir.OpUConst:
		vi.op, vi.u = vmUConst, in.UVal
	case ir.OpLdc:
		// Named constants are resolved at registration time (after any
		// overrides) and inlined as immediates.
		cst := e.consts[in.Const]
		if cst.Type == ir.TypeU32 {
			vi.op, vi.u = vmUConst, cst.UVal
		} else {
			vi.op, vi.f = vmFConst, cst.FVal
		}

	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv, ir.OpPow, ir.OpMin, ir.OpMax,
		ir.OpVAdd, ir.OpVSub, ir.OpScale, ir.OpDot, ir.OpCross, ir.OpQMul, ir.OpRotate,
		ir.OpIAdd, ir.OpIEq, ir.OpINe, ir.OpILt,
		ir.OpFEq, ir.OpFLt, ir.OpFLe, ir.OpFGt, ir.OpFGe:
		vi.op = binaryOps[in.Op]
		vi.a, vi.b = arg(0), arg(1)

	case ir.OpFNeg, ir.OpNorm, ir.OpNormalize, ir.OpQConj, ir.OpU2F:
		vi.op = unaryOps[in.Op]
		vi.a = arg(0)

	case ir.OpSqrt, ir.OpExp, ir.OpLog, ir.OpAbs, ir.OpFloor:
		vi.op = vmIntr
		vi.a = arg(0)
		vi.u = intrinsicIDs[in.Op]

	case ir.OpElem:
		vi.op, vi.a, vi.c = vmElem, arg(0), uint16(in.Elem)
	case ir.OpQElem:
		vi.op, vi.a, vi.c = vmQElem, arg(0), uint16(in.Elem)

	case ir.OpSelect:
		vi.op = selectOps[bankOf(info.types[in.Args[1]])]
		vi.a, vi.b, vi.c = arg(0), arg(1), arg(2)

	case ir.OpCall:
		vi.op = vmCall
		vi.fn = e.index[in.Callee]
		callee := e.mod.Func(in.Callee)
		vi.c = uint16(bankOf(callee.Result))
		vi.args = make([]vmArg, len(in.Args))
		for i, a := range in.Args {
			s := info.slots[a]
			vi.args[i] = vmArg{src: s.idx, bank: s.bank}
		}

	case ir.OpBr:
		vi.op = vmJmp
	case ir.OpCbr:
		vi.op = vmCbr
		vi.a = arg(0)
	case ir.OpRet:
		vi.op = vmRet
		vi.a = arg(0)
		vi.c = uint16(info.slots[in.Args[0]].bank)
	}
	return vi
}

var binaryOps = map[ir.Op]vmOp{
	ir.OpFAdd:   vmFAdd,
	ir.OpFSub:   vmFSub,
	ir.OpFMul:   vmFMul,
	ir.OpFDiv:   vmFDiv,
	ir.OpPow:    vmPow,
	ir.OpMin:    vmMin,
	ir.OpMax:    vmMax,
	ir.OpVAdd:   vmVAdd,
	ir.OpVSub:   vmVSub,
	ir.OpScale:  vmScale,
	ir.OpDot:    vmDot,
	ir.OpCross:  vmCross,
	ir.OpQMul:   vmQMul,
	ir.OpRotate: vmRotate,
	ir.OpIAdd:   vmIAdd,
	ir.OpIEq:    vmIEq,
	ir.OpINe:    vmINe,
	ir.OpILt:    vmILt,
	ir.OpFEq:    vmFEq,
	ir.OpFLt:    vmFLt,
	ir.OpFLe:    vmFLe,
	ir.OpFGt:    vmFGt,
	ir.OpFGe:    vmFGe,
}

var unaryOps = map[ir.Op]vmOp{
	ir.OpFNeg:      vmFNeg,
	ir.OpNorm:      vmNorm,
	ir.OpNormalize: vmNormalize,
	ir.OpQConj:     vmQConj,
	ir.OpU2F:       vmU2F,
}

var intrinsicIDs = map[ir.Op]uint32{
	ir.OpSqrt:  intrSqrt,
	ir.OpExp:   intrExp,
	ir.OpLog:   intrLog,
	ir.OpAbs:   intrAbs,
	ir.OpFloor: intrFloor,
}

var selectOps = [numBanks]vmOp{
	bankF: vmSelF,
	bankU: vmSelU,
	bankB: vmSelB,
	bankV: vmSelV,
	bankQ: vmSelQ,
}
