package parser

import (
	"fmt"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent          // module, const, func, mnemonics, labels, type names
	tokReg            // %name
	tokSym            // @name
	tokString         // "..."
	tokNumber         // 1, -2.5, 6.02e23
	tokColon          // :
	tokComma          // ,
	tokAssign         // =
	tokLParen         // (
	tokRParen         // )
	tokLBrace         // {
	tokRBrace         // }
	tokArrow          // ->
)

var tokenKindNames = map[tokenKind]string{
	tokEOF:    "end of input",
	tokIdent:  "identifier",
	tokReg:    "register",
	tokSym:    "symbol",
	tokString: "string",
	tokNumber: "number",
	tokColon:  "':'",
	tokComma:  "','",
	tokAssign: "'='",
	tokLParen: "'('",
	tokRParen: "')'",
	tokLBrace: "'{'",
	tokRBrace: "'}'",
	tokArrow:  "'->'",
}

type token struct {
	kind tokenKind
	text string // without the % or @ sigil, without string quotes
	line int    // 1-based
	col  int    // 1-based
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokIdent, tokNumber:
		return fmt.Sprintf("%q", t.text)
	case tokReg:
		return fmt.Sprintf("'%%%s'", t.text)
	case tokSym:
		return fmt.Sprintf("'@%s'", t.text)
	default:
		return tokenKindNames[t.kind]
	}
}

// lex tokenizes src. Comments run from ';' to end of line. Returns a *Error
// on an unterminated string or an illegal character.
func lex(src string) ([]token, error) {
	var toks []token
	line, col := 1, 1

	emit := func(kind tokenKind, text string, l, c int) {
		toks = append(toks, token{kind: kind, text: text, line: l, col: c})
	}

	i := 0
	advance := func() {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i++
	}

	for i < len(src) {
		ch := src[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			advance()

		case ch == ';':
			for i < len(src) && src[i] != '\n' {
				advance()
			}

		case ch == ':':
			emit(tokColon, ":", line, col)
			advance()
		case ch == ',':
			emit(tokComma, ",", line, col)
			advance()
		case ch == '=':
			emit(tokAssign, "=", line, col)
			advance()
		case ch == '(':
			emit(tokLParen, "(", line, col)
			advance()
		case ch == ')':
			emit(tokRParen, ")", line, col)
			advance()
		case ch == '{':
			emit(tokLBrace, "{", line, col)
			advance()
		case ch == '}':
			emit(tokRBrace, "}", line, col)
			advance()

		case ch == '-':
			// Either '->' or a negative numeric literal.
			if i+1 < len(src) && src[i+1] == '>' {
				emit(tokArrow, "->", line, col)
				advance()
				advance()
				break
			}
			if i+1 < len(src) && isDigit(src[i+1]) {
				l, c := line, col
				start := i
				advance() // consume '-'
				for i < len(src) && isNumberChar(src[i]) {
					advance()
				}
				emit(tokNumber, src[start:i], l, c)
				break
			}
			return nil, &Error{Line: line, Col: col, Msg: "unexpected character '-'"}

		case ch == '%' || ch == '@':
			l, c := line, col
			advance()
			start := i
			for i < len(src) && isIdentChar(src[i]) {
				advance()
			}
			if i == start {
				return nil, &Error{Line: l, Col: c, Msg: fmt.Sprintf("expected name after '%c'", ch)}
			}
			kind := tokReg
			if ch == '@' {
				kind = tokSym
			}
			emit(kind, src[start:i], l, c)

		case ch == '"':
			l, c := line, col
			advance()
			start := i
			for i < len(src) && src[i] != '"' && src[i] != '\n' {
				advance()
			}
			if i >= len(src) || src[i] != '"' {
				return nil, &Error{Line: l, Col: c, Msg: "unterminated string literal"}
			}
			emit(tokString, src[start:i], l, c)
			advance() // closing quote

		case isDigit(ch):
			l, c := line, col
			start := i
			for i < len(src) && isNumberChar(src[i]) {
				advance()
			}
			emit(tokNumber, src[start:i], l, c)

		case isIdentStart(ch):
			l, c := line, col
			start := i
			for i < len(src) && isIdentChar(src[i]) {
				advance()
			}
			emit(tokIdent, src[start:i], l, c)

		default:
			return nil, &Error{Line: line, Col: col, Msg: fmt.Sprintf("illegal character %q", rune(ch))}
		}
	}

	emit(tokEOF, "", line, col)
	return toks, nil
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentChar(ch byte) bool {
	return ch == '_' || ch == '.' || unicode.IsLetter(rune(ch)) || isDigit(ch)
}

// isNumberChar accepts the characters that may appear inside a numeric
// literal after the first digit: digits, decimal point, exponent markers and
// exponent signs. strconv does the real validation.
func isNumberChar(ch byte) bool {
	switch {
	case isDigit(ch):
		return true
	case ch == '.' || ch == 'e' || ch == 'E':
		return true
	case ch == '+' || ch == '-':
		return true
	}
	return false
}
