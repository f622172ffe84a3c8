// Package parser implements the IR loader: it turns the textual IR produced
// by the upstream expression compiler into an ir.Module.
//
// The parser performs syntactic checks only. Type checking, register
// single-assignment and control-flow rules are the engine verifier's job.
// Malformed input is a terminal failure for the construction attempt; the
// returned *Error carries line/column coordinates and Render turns it into a
// caret-annotated diagnostic.
package parser

import (
	"fmt"
	"strconv"

	"github.com/mverlet/pairjit/internal/ir"
)

// Parse parses IR source text into a module.
// On failure the returned error is a *Error positioned at the offending token.
func Parse(src string) (*ir.Module, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseModule()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errf(t token, format string, args ...any) error {
	return &Error{Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes the next token, requiring the given kind.
func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errf(t, "expected %s, found %s", what, t.describe())
	}
	return t, nil
}

// expectKeyword consumes the next token, requiring a specific identifier.
func (p *parser) expectKeyword(kw string) (token, error) {
	t := p.next()
	if t.kind != tokIdent || t.text != kw {
		return t, p.errf(t, "expected %q, found %s", kw, t.describe())
	}
	return t, nil
}

func (p *parser) parseModule() (*ir.Module, error) {
	if _, err := p.expectKeyword("module"); err != nil {
		return nil, err
	}
	name, err := p.expect(tokString, "module name string")
	if err != nil {
		return nil, err
	}

	m := &ir.Module{Name: name.text}
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return m, nil
		case t.kind == tokIdent && t.text == "const":
			c, err := p.parseConst()
			if err != nil {
				return nil, err
			}
			if _, dup := m.Const(c.Name); dup {
				return nil, p.errf(t, "duplicate constant %q", c.Name)
			}
			m.Consts = append(m.Consts, c)
		case t.kind == tokIdent && t.text == "func":
			f, err := p.parseFunc()
			if err != nil {
				return nil, err
			}
			if m.Func(f.Name) != nil {
				return nil, p.errf(t, "duplicate function @%s", f.Name)
			}
			m.Funcs = append(m.Funcs, f)
		default:
			return nil, p.errf(t, "expected 'const' or 'func' declaration, found %s", t.describe())
		}
	}
}

func (p *parser) parseConst() (ir.Constant, error) {
	kw, _ := p.expectKeyword("const")
	name, err := p.expect(tokIdent, "constant name")
	if err != nil {
		return ir.Constant{}, err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return ir.Constant{}, err
	}
	typ, err := p.parseType()
	if err != nil {
		return ir.Constant{}, err
	}
	if typ != ir.TypeF32 && typ != ir.TypeU32 {
		return ir.Constant{}, p.errf(name, "constant %q must be f32 or u32, got %s", name.text, typ)
	}
	if _, err := p.expect(tokAssign, "'='"); err != nil {
		return ir.Constant{}, err
	}
	lit, err := p.expect(tokNumber, "numeric literal")
	if err != nil {
		return ir.Constant{}, err
	}

	c := ir.Constant{Name: name.text, Type: typ, Line: kw.line}
	switch typ {
	case ir.TypeF32:
		c.FVal, err = p.parseF32(lit)
	case ir.TypeU32:
		c.UVal, err = p.parseU32(lit)
	}
	if err != nil {
		return ir.Constant{}, err
	}
	return c, nil
}

func (p *parser) parseType() (ir.Type, error) {
	t, err := p.expect(tokIdent, "type name")
	if err != nil {
		return ir.TypeInvalid, err
	}
	typ, ok := ir.ParseType(t.text)
	if !ok {
		return ir.TypeInvalid, p.errf(t, "unknown type %q", t.text)
	}
	return typ, nil
}

func (p *parser) parseFunc() (*ir.Function, error) {
	kw, _ := p.expectKeyword("func")
	name, err := p.expect(tokSym, "function symbol")
	if err != nil {
		return nil, err
	}
	f := &ir.Function{Name: name.text, Line: kw.line}

	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	for p.peek().kind != tokRParen {
		if len(f.Params) > 0 {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return nil, err
			}
		}
		reg, err := p.expect(tokReg, "parameter register")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		f.Params = append(f.Params, ir.Param{Name: reg.text, Type: typ})
	}
	p.next() // ')'

	if _, err := p.expect(tokArrow, "'->'"); err != nil {
		return nil, err
	}
	if f.Result, err = p.parseType(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}

	for p.peek().kind != tokRBrace {
		blk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		if f.Block(blk.Label) != nil {
			return nil, p.errf(p.peek(), "duplicate block label %q in @%s", blk.Label, f.Name)
		}
		f.Blocks = append(f.Blocks, blk)
	}
	p.next() // '}'

	if len(f.Blocks) == 0 {
		return nil, p.errf(kw, "function @%s has no blocks", f.Name)
	}
	return f, nil
}

func (p *parser) parseBlock() (*ir.Block, error) {
	label, err := p.expect(tokIdent, "block label")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return nil, err
	}
	blk := &ir.Block{Label: label.text, Line: label.line}

	for {
		t := p.peek()
		switch {
		case t.kind == tokRBrace:
			return blk, nil
		case t.kind == tokEOF:
			return nil, p.errf(t, "unterminated function body: expected '}'")
		case t.kind == tokIdent && p.toks[p.pos+1].kind == tokColon:
			// Next block label.
			return blk, nil
		case t.kind == tokReg:
			in, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			blk.Instrs = append(blk.Instrs, in)
		case t.kind == tokIdent:
			in, err := p.parseTerminator()
			if err != nil {
				return nil, err
			}
			blk.Instrs = append(blk.Instrs, in)
		default:
			return nil, p.errf(t, "expected instruction, found %s", t.describe())
		}
	}
}

// parseAssign parses "%dest = op ..." forms.
func (p *parser) parseAssign() (ir.Instr, error) {
	dest := p.next() // tokReg, checked by caller
	if _, err := p.expect(tokAssign, "'='"); err != nil {
		return ir.Instr{}, err
	}
	mnem, err := p.expect(tokIdent, "instruction mnemonic")
	if err != nil {
		return ir.Instr{}, err
	}
	op, ok := ir.ParseOp(mnem.text)
	if !ok {
		return ir.Instr{}, p.errf(mnem, "unknown instruction %q", mnem.text)
	}
	if op.IsTerminator() {
		return ir.Instr{}, p.errf(mnem, "%s does not produce a value", op)
	}

	in := ir.Instr{Op: op, Dest: dest.text, Line: dest.line}
	switch op {
	case ir.OpFConst:
		lit, err := p.expect(tokNumber, "f32 literal")
		if err != nil {
			return ir.Instr{}, err
		}
		if in.FVal, err = p.parseF32(lit); err != nil {
			return ir.Instr{}, err
		}

	case ir.OpUConst:
		lit, err := p.expect(tokNumber, "u32 literal")
		if err != nil {
			return ir.Instr{}, err
		}
		if in.UVal, err = p.parseU32(lit); err != nil {
			return ir.Instr{}, err
		}

	case ir.OpLdc:
		name, err := p.expect(tokIdent, "constant name")
		if err != nil {
			return ir.Instr{}, err
		}
		in.Const = name.text

	case ir.OpElem, ir.OpQElem:
		reg, err := p.expect(tokReg, "register operand")
		if err != nil {
			return ir.Instr{}, err
		}
		in.Args = []string{reg.text}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return ir.Instr{}, err
		}
		comp, err := p.expect(tokIdent, "component (x, y, z or w)")
		if err != nil {
			return ir.Instr{}, err
		}
		elem, ok := ir.ParseElem(comp.text)
		if !ok {
			return ir.Instr{}, p.errf(comp, "unknown component %q", comp.text)
		}
		in.Elem = elem

	case ir.OpCall:
		callee, err := p.expect(tokSym, "callee symbol")
		if err != nil {
			return ir.Instr{}, err
		}
		in.Callee = callee.text
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return ir.Instr{}, err
		}
		for p.peek().kind != tokRParen {
			if len(in.Args) > 0 {
				if _, err := p.expect(tokComma, "','"); err != nil {
					return ir.Instr{}, err
				}
			}
			arg, err := p.expect(tokReg, "argument register")
			if err != nil {
				return ir.Instr{}, err
			}
			in.Args = append(in.Args, arg.text)
		}
		p.next() // ')'

	default:
		for i := 0; i < op.Arity(); i++ {
			if i > 0 {
				if _, err := p.expect(tokComma, "','"); err != nil {
					return ir.Instr{}, err
				}
			}
			arg, err := p.expect(tokReg, "register operand")
			if err != nil {
				return ir.Instr{}, err
			}
			in.Args = append(in.Args, arg.text)
		}
	}
	return in, nil
}

func (p *parser) parseTerminator() (ir.Instr, error) {
	mnem := p.next() // tokIdent, checked by caller
	op, ok := ir.ParseOp(mnem.text)
	if !ok || !op.IsTerminator() {
		return ir.Instr{}, p.errf(mnem, "expected instruction, found %s", mnem.describe())
	}

	in := ir.Instr{Op: op, Line: mnem.line}
	switch op {
	case ir.OpRet:
		reg, err := p.expect(tokReg, "return register")
		if err != nil {
			return ir.Instr{}, err
		}
		in.Args = []string{reg.text}

	case ir.OpBr:
		label, err := p.expect(tokIdent, "target label")
		if err != nil {
			return ir.Instr{}, err
		}
		in.Labels = []string{label.text}

	case ir.OpCbr:
		cond, err := p.expect(tokReg, "condition register")
		if err != nil {
			return ir.Instr{}, err
		}
		in.Args = []string{cond.text}
		for i := 0; i < 2; i++ {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return ir.Instr{}, err
			}
			label, err := p.expect(tokIdent, "target label")
			if err != nil {
				return ir.Instr{}, err
			}
			in.Labels = append(in.Labels, label.text)
		}
	}
	return in, nil
}

func (p *parser) parseF32(t token) (float32, error) {
	v, err := strconv.ParseFloat(t.text, 32)
	if err != nil {
		return 0, p.errf(t, "invalid f32 literal %q", t.text)
	}
	return float32(v), nil
}

func (p *parser) parseU32(t token) (uint32, error) {
	v, err := strconv.ParseUint(t.text, 10, 32)
	if err != nil {
		return 0, p.errf(t, "invalid u32 literal %q", t.text)
	}
	return uint32(v), nil
}
