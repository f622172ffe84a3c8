package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes a deterministic textual listing of the module to w.
// The output parses back to an equivalent module, and is stable across runs,
// which makes it suitable for golden-file comparison.
func Fprint(w io.Writer, m *Module) error {
	var b strings.Builder
	fmt.Fprintf(&b, "module %q\n", m.Name)

	for _, c := range m.Consts {
		switch c.Type {
		case TypeU32:
			fmt.Fprintf(&b, "\nconst %s: u32 = %d\n", c.Name, c.UVal)
		default:
			fmt.Fprintf(&b, "\nconst %s: f32 = %s\n", c.Name, formatF32(c.FVal))
		}
	}

	for _, f := range m.Funcs {
		b.WriteString("\n")
		printFunc(&b, f)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the listing of the module as a string.
func (m *Module) String() string {
	var b strings.Builder
	Fprint(&b, m) // strings.Builder never errors
	return b.String()
}

func printFunc(b *strings.Builder, f *Function) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%%%s: %s", p.Name, p.Type)
	}
	fmt.Fprintf(b, "func @%s(%s) -> %s {\n", f.Name, strings.Join(params, ", "), f.Result)
	for _, blk := range f.Blocks {
		fmt.Fprintf(b, "%s:\n", blk.Label)
		for _, in := range blk.Instrs {
			fmt.Fprintf(b, "  %s\n", in.String())
		}
	}
	b.WriteString("}\n")
}

// String renders the instruction in source syntax.
func (in Instr) String() string {
	switch in.Op {
	case OpFConst:
		return fmt.Sprintf("%%%s = f32 %s", in.Dest, formatF32(in.FVal))
	case OpUConst:
		return fmt.Sprintf("%%%s = u32 %d", in.Dest, in.UVal)
	case OpLdc:
		return fmt.Sprintf("%%%s = ldc %s", in.Dest, in.Const)
	case OpElem, OpQElem:
		return fmt.Sprintf("%%%s = %s %%%s, %s", in.Dest, in.Op, in.Args[0], in.Elem)
	case OpCall:
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = "%" + a
		}
		return fmt.Sprintf("%%%s = call @%s(%s)", in.Dest, in.Callee, strings.Join(args, ", "))
	case OpBr:
		return fmt.Sprintf("br %s", in.Labels[0])
	case OpCbr:
		return fmt.Sprintf("cbr %%%s, %s, %s", in.Args[0], in.Labels[0], in.Labels[1])
	case OpRet:
		return fmt.Sprintf("ret %%%s", in.Args[0])
	default:
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = "%" + a
		}
		return fmt.Sprintf("%%%s = %s %s", in.Dest, in.Op, strings.Join(args, ", "))
	}
}

// formatF32 renders a float32 with the fewest digits that round-trip.
func formatF32(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	// Keep literals recognizable as floats in the listing.
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}
