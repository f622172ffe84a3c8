package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a lex or parse failure with 1-based source coordinates.
type Error struct {
	Line int
	Col  int
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Render formats err against its source text. For a *Error the result is a
// multi-line diagnostic with a caret pointing at the offending column and one
// line of context on each side:
//
//	parse error at 3:12: unexpected token ')'
//
//	   2 | %a = f32 1.0
//	   3 | %b = fadd %a)
//	     |            ^
//	   4 | ret %b
//
// Any other error renders as err.Error(). This is the string that lands in
// the factory's diagnostic slot, so it must stay plain text.
func Render(err error, src string) string {
	var pe *Error
	if !errors.As(err, &pe) {
		return err.Error()
	}

	lines := strings.Split(src, "\n")
	line := pe.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	b.WriteString(pe.Error())
	b.WriteString("\n")

	width := numWidth(min(line+1, len(lines)))
	writeLine := func(n int) {
		if n < 1 || n > len(lines) {
			return
		}
		fmt.Fprintf(&b, "\n  %*d | %s", width, n, lines[n-1])
	}

	writeLine(line - 1)
	writeLine(line)

	// Caret under the error column, clamped to the line.
	col := pe.Col
	if col < 1 {
		col = 1
	}
	if col > len(lines[line-1])+1 {
		col = len(lines[line-1]) + 1
	}
	fmt.Fprintf(&b, "\n  %*s | %s^", width, "", strings.Repeat(" ", col-1))

	writeLine(line + 1)
	b.WriteString("\n")
	return b.String()
}

func numWidth(n int) int {
	w := 1
	for n >= 10 {
		n /= 10
		w++
	}
	return w
}
