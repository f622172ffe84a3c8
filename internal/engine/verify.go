package engine

import (
	"fmt"

	"github.com/mverlet/pairjit/internal/ir"
)

// bank identifies a typed register file within a frame.
type bank uint8

const (
	bankF bank = iota // float32
	bankU             // uint32
	bankB             // bool
	bankV             // vec3
	bankQ             // quat
	numBanks
)

func bankOf(t ir.Type) bank {
	switch t {
	case ir.TypeF32:
		return bankF
	case ir.TypeU32:
		return bankU
	case ir.TypeBool:
		return bankB
	case ir.TypeVec3:
		return bankV
	default:
		return bankQ
	}
}

// slot is a register's location: which bank and which index within it.
type slot struct {
	bank bank
	idx  uint16
}

// funcInfo is the verifier's output for one function: register types and
// slot assignments. Slots are allocated in definition order (parameters
// first), which the call sequence in exec.go relies on.
type funcInfo struct {
	decl   *ir.Function
	types  map[string]ir.Type
	slots  map[string]slot
	counts [numBanks]int
}

func (fi *funcInfo) define(name string, t ir.Type) slot {
	b := bankOf(t)
	s := slot{bank: b, idx: uint16(fi.counts[b])}
	fi.counts[b]++
	fi.types[name] = t
	fi.slots[name] = s
	return s
}

// verifyModule type-checks every function and rejects call-graph cycles.
// On success it returns per-function register layouts; no code is generated.
func verifyModule(m *ir.Module) (map[string]*funcInfo, error) {
	infos := make(map[string]*funcInfo, len(m.Funcs))
	for _, f := range m.Funcs {
		fi, err := verifyFunc(m, f)
		if err != nil {
			return nil, err
		}
		infos[f.Name] = fi
	}
	if err := checkCallGraph(m); err != nil {
		return nil, err
	}
	return infos, nil
}

func verifyFunc(m *ir.Module, f *ir.Function) (*funcInfo, error) {
	fi := &funcInfo{
		decl:  f,
		types: make(map[string]ir.Type),
		slots: make(map[string]slot),
	}

	for _, p := range f.Params {
		if _, dup := fi.types[p.Name]; dup {
			return nil, &Error{Code: ErrDuplicateParam, Func: f.Name, Line: f.Line,
				Msg: fmt.Sprintf("duplicate parameter %%%s", p.Name)}
		}
		fi.define(p.Name, p.Type)
	}

	v := &verifier{mod: m, fn: f, info: fi}
	for _, blk := range f.Blocks {
		if err := v.checkBlock(blk); err != nil {
			return nil, err
		}
	}
	order, err := v.checkBlockGraph()
	if err != nil {
		return nil, err
	}
	if err := v.checkDefiniteDefs(order); err != nil {
		return nil, err
	}
	return fi, nil
}

type verifier struct {
	mod  *ir.Module
	fn   *ir.Function
	info *funcInfo
}

func (v *verifier) errf(code string, line int, format string, args ...any) error {
	return &Error{Code: code, Func: v.fn.Name, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (v *verifier) checkBlock(blk *ir.Block) error {
	if len(blk.Instrs) == 0 {
		return v.errf(ErrMissingTerminator, blk.Line, "block %q is empty", blk.Label)
	}
	for i, in := range blk.Instrs {
		last := i == len(blk.Instrs)-1
		if in.Op.IsTerminator() != last {
			if last {
				return v.errf(ErrMissingTerminator, in.Line,
					"block %q does not end in a terminator", blk.Label)
			}
			return v.errf(ErrAfterTerminator, blk.Instrs[i+1].Line,
				"unreachable instruction after terminator in block %q", blk.Label)
		}
		if err := v.checkInstr(&blk.Instrs[i]); err != nil {
			return err
		}
	}
	return nil
}

// operand returns the type of a register operand, failing if no definition
// precedes the use textually. Textual order alone does not prove the
// definition executes before the use; checkDefiniteDefs settles that over
// the block graph once typing is done.
func (v *verifier) operand(in *ir.Instr, name string) (ir.Type, error) {
	t, ok := v.info.types[name]
	if !ok {
		return ir.TypeInvalid, v.errf(ErrUndefinedRegister, in.Line,
			"register %%%s used before definition", name)
	}
	return t, nil
}

func (v *verifier) define(in *ir.Instr, t ir.Type) error {
	if _, dup := v.info.types[in.Dest]; dup {
		return v.errf(ErrDuplicateRegister, in.Line, "register %%%s assigned twice", in.Dest)
	}
	v.info.define(in.Dest, t)
	return nil
}

// want checks a single operand against the expected type.
func (v *verifier) want(in *ir.Instr, name string, expect ir.Type) error {
	t, err := v.operand(in, name)
	if err != nil {
		return err
	}
	if t != expect {
		return v.errf(ErrTypeMismatch, in.Line,
			"%s expects %s operand, %%%s is %s", in.Op, expect, name, t)
	}
	return nil
}

func (v *verifier) checkInstr(in *ir.Instr) error {
	switch in.Op {
	case ir.OpFConst:
		return v.define(in, ir.TypeF32)
	case ir.OpUConst:
		return v.define(in, ir.TypeU32)

	case ir.OpLdc:
		c, ok := v.mod.Const(in.Const)
		if !ok {
			return v.errf(ErrUnknownConstant, in.Line, "undeclared constant %q", in.Const)
		}
		return v.define(in, c.Type)

	case ir.OpElem:
		if in.Elem == ir.ElemW {
			return v.errf(ErrBadComponent, in.Line, "vec3 has no w component")
		}
		if err := v.want(in, in.Args[0], ir.TypeVec3); err != nil {
			return err
		}
		return v.define(in, ir.TypeF32)

	case ir.OpQElem:
		if err := v.want(in, in.Args[0], ir.TypeQuat); err != nil {
			return err
		}
		return v.define(in, ir.TypeF32)

	case ir.OpSelect:
		if err := v.want(in, in.Args[0], ir.TypeBool); err != nil {
			return err
		}
		tt, err := v.operand(in, in.Args[1])
		if err != nil {
			return err
		}
		ft, err := v.operand(in, in.Args[2])
		if err != nil {
			return err
		}
		if tt != ft {
			return v.errf(ErrTypeMismatch, in.Line,
				"select arms disagree: %%%s is %s, %%%s is %s", in.Args[1], tt, in.Args[2], ft)
		}
		return v.define(in, tt)

	case ir.OpCall:
		callee := v.mod.Func(in.Callee)
		if callee == nil {
			return v.errf(ErrUnknownCallee, in.Line, "call to undeclared function @%s", in.Callee)
		}
		if len(in.Args) != len(callee.Params) {
			return v.errf(ErrCallArity, in.Line,
				"@%s takes %d arguments, got %d", in.Callee, len(callee.Params), len(in.Args))
		}
		for i, a := range in.Args {
			if err := v.want(in, a, callee.Params[i].Type); err != nil {
				return err
			}
		}
		return v.define(in, callee.Result)

	case ir.OpRet:
		return v.want(in, in.Args[0], v.fn.Result)

	case ir.OpBr:
		return v.checkLabel(in, in.Labels[0])

	case ir.OpCbr:
		if err := v.want(in, in.Args[0], ir.TypeBool); err != nil {
			return err
		}
		for _, l := range in.Labels {
			if err := v.checkLabel(in, l); err != nil {
				return err
			}
		}
		return nil

	default:
		operands, result := fixedSignature(in.Op)
		for i, a := range in.Args {
			if err := v.want(in, a, operands[i]); err != nil {
				return err
			}
		}
		return v.define(in, result)
	}
}

func (v *verifier) checkLabel(in *ir.Instr, label string) error {
	if v.fn.Block(label) == nil {
		return v.errf(ErrUnknownLabel, in.Line, "branch to undeclared block %q", label)
	}
	return nil
}

// fixedSignature returns operand and result types for ops whose typing does
// not depend on context. Ops with contextual typing (select, call, ldc,
// elem, terminators) are handled directly in checkInstr.
func fixedSignature(op ir.Op) ([]ir.Type, ir.Type) {
	f, u, b, v3, q := ir.TypeF32, ir.TypeU32, ir.TypeBool, ir.TypeVec3, ir.TypeQuat
	switch op {
	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv, ir.OpPow, ir.OpMin, ir.OpMax:
		return []ir.Type{f, f}, f
	case ir.OpFNeg, ir.OpSqrt, ir.OpExp, ir.OpLog, ir.OpAbs, ir.OpFloor:
		return []ir.Type{f}, f
	case ir.OpVAdd, ir.OpVSub:
		return []ir.Type{v3, v3}, v3
	case ir.OpScale:
		return []ir.Type{v3, f}, v3
	case ir.OpDot:
		return []ir.Type{v3, v3}, f
	case ir.OpCross:
		return []ir.Type{v3, v3}, v3
	case ir.OpNorm:
		return []ir.Type{v3}, f
	case ir.OpNormalize:
		return []ir.Type{v3}, v3
	case ir.OpQMul:
		return []ir.Type{q, q}, q
	case ir.OpQConj:
		return []ir.Type{q}, q
	case ir.OpRotate:
		return []ir.Type{q, v3}, v3
	case ir.OpIAdd:
		return []ir.Type{u, u}, u
	case ir.OpIEq, ir.OpINe, ir.OpILt:
		return []ir.Type{u, u}, b
	case ir.OpU2F:
		return []ir.Type{u}, f
	case ir.OpFEq, ir.OpFLt, ir.OpFLe, ir.OpFGt, ir.OpFGe:
		return []ir.Type{f, f}, b
	default:
		return nil, ir.TypeInvalid
	}
}

// checkBlockGraph rejects cycles among blocks and returns the reachable
// blocks in reverse postorder from the entry. Registers are assigned once,
// so the condition of a taken back-edge can never change; any block cycle
// is a guaranteed infinite loop at evaluation time and is refused up front.
func (v *verifier) checkBlockGraph() ([]*ir.Block, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(v.fn.Blocks))
	var order []*ir.Block

	var visit func(blk *ir.Block) error
	visit = func(blk *ir.Block) error {
		state[blk.Label] = visiting
		term := &blk.Instrs[len(blk.Instrs)-1]
		for _, label := range term.Labels {
			switch state[label] {
			case visiting:
				return v.errf(ErrBlockCycle, term.Line,
					"branch to %q closes a control-flow cycle", label)
			case unvisited:
				if err := visit(v.fn.Block(label)); err != nil {
					return err
				}
			}
		}
		state[blk.Label] = done
		order = append(order, blk)
		return nil
	}

	entry := v.fn.Entry()
	if entry == nil {
		return nil, nil
	}
	if err := visit(entry); err != nil {
		return nil, err
	}
	// Postorder reversed is topological here, so every block in the slice
	// comes after all of its predecessors.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// checkDefiniteDefs proves that every register use has a definition on every
// path from the entry to the use. Frames are recycled without zeroing, so a
// use that some path can reach undefined would read whatever the previous
// evaluation left in the slot. The order argument must place predecessors
// before successors; with an acyclic graph a single pass reaches the fixed
// point.
func (v *verifier) checkDefiniteDefs(order []*ir.Block) error {
	atEntry := make(map[string]map[string]bool, len(order))

	for _, blk := range order {
		live := atEntry[blk.Label]
		if live == nil {
			// Entry block: only parameters are set on arrival.
			live = make(map[string]bool, len(v.fn.Params))
			for _, p := range v.fn.Params {
				live[p.Name] = true
			}
		}
		for i := range blk.Instrs {
			in := &blk.Instrs[i]
			for _, a := range in.Args {
				if !live[a] {
					return v.errf(ErrUndefinedRegister, in.Line,
						"register %%%s is not defined on every path to its use in block %q", a, blk.Label)
				}
			}
			if in.Dest != "" {
				live[in.Dest] = true
			}
		}
		term := &blk.Instrs[len(blk.Instrs)-1]
		for _, label := range term.Labels {
			prev, seen := atEntry[label]
			if !seen {
				next := make(map[string]bool, len(live))
				for name := range live {
					next[name] = true
				}
				atEntry[label] = next
				continue
			}
			for name := range prev {
				if !live[name] {
					delete(prev, name)
				}
			}
		}
	}
	return nil
}

// checkCallGraph rejects recursion. A total evaluator cannot be allowed to
// overflow the stack at simulation time, so cycles are a registration error.
func checkCallGraph(m *ir.Module) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(m.Funcs))

	var visit func(f *ir.Function) error
	visit = func(f *ir.Function) error {
		state[f.Name] = visiting
		for _, blk := range f.Blocks {
			for _, in := range blk.Instrs {
				if in.Op != ir.OpCall {
					continue
				}
				callee := m.Func(in.Callee)
				switch state[callee.Name] {
				case visiting:
					return &Error{Code: ErrRecursion, Func: f.Name, Line: in.Line,
						Msg: fmt.Sprintf("recursive call chain through @%s", in.Callee)}
				case unvisited:
					if err := visit(callee); err != nil {
						return err
					}
				}
			}
		}
		state[f.Name] = done
		return nil
	}

	for _, f := range m.Funcs {
		if state[f.Name] == unvisited {
			if err := visit(f); err != nil {
				return err
			}
		}
	}
	return nil
}
