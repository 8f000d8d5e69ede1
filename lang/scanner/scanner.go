// Package scanner implements nic's line-oriented tokenizer: one token at a
// time, with domain keyword and literal recognition folded in, per
// spec.md component B. Statement keywords (function, if, while, ...) are
// not distinct token kinds here: they arrive as plain IDENT tokens and are
// dispatched by text at the start of a line in lang/parser, matching
// spec.md §4.H's "first identifier token routes to..." driver.
package scanner

import (
	"context"
	"fmt"
	"go/scanner"
	"go/token"
	"os"
	"strconv"
	"unicode/utf8"

	nictoken "github.com/nic-lang/nicc/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

var PrintError = scanner.PrintError

const (
	maxIdentLen  = 32
	maxStringLen = 256
)

// TokenAndValue combines the token type with the token value in the same
// struct, the unit the parser consumes one at a time.
type TokenAndValue struct {
	Token nictoken.Token
	Value nictoken.Value
}

// ScanFile tokenizes a single source file, reporting every lexical error it
// finds rather than stopping at the first one, exactly as the statement
// parser does for syntax errors one layer up.
func ScanFile(ctx context.Context, filename string) ([]TokenAndValue, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		var el ErrorList
		el.Add(token.Position{Filename: filename}, err.Error())
		return nil, el.Err()
	}
	return ScanSource(filename, b)
}

// ScanSource tokenizes src, attributing positions to filename in any
// reported errors.
func ScanSource(filename string, src []byte) ([]TokenAndValue, error) {
	var (
		s      Scanner
		tokVal nictoken.Value
		el     ErrorList
	)

	s.Init(filename, src, el.Add)
	var toks []TokenAndValue
	for {
		tok := s.Scan(&tokVal)
		toks = append(toks, TokenAndValue{Token: tok, Value: tokVal})
		if tok == nictoken.EOF {
			break
		}
	}
	el.Sort()
	return toks, el.Err()
}

// Scanner tokenizes one source file for the statement/expression parsers to
// consume.
type Scanner struct {
	filename string
	src      []byte
	err      func(pos token.Position, msg string)

	cur  rune // current character
	off  int  // byte offset of cur
	roff int  // reading offset, byte position after cur
	line int  // 1-based line of cur

	// minusIsSign governs whether a leading '-' before a digit is folded
	// into the number literal (true, the default at the start of an
	// expression operand) or tokenized as the MINUS operator (false, right
	// after an operand has just been scanned). The expression parser flips
	// this between calls to Scan; it never affects EOF's literal value
	// (see token.DomainLiteral).
	minusIsSign bool
}

// Init prepares s to scan src, attributing positions to filename.
func (s *Scanner) Init(filename string, src []byte, errHandler func(token.Position, string)) {
	s.filename = filename
	s.src = src
	s.err = errHandler
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1
	s.minusIsSign = true
	s.advance()
}

// SetMinusIsSign toggles sign-folding ahead of the next Scan call.
func (s *Scanner) SetMinusIsSign(v bool) { s.minusIsSign = v }

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.line++
		}
		s.cur = -1
		return
	}
	if s.cur == '\n' {
		s.line++
	}
	s.off = s.roff
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advanceIf(b byte) bool {
	if s.cur >= 0 && byte(s.cur) == b {
		s.advance()
		return true
	}
	return false
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(token.Position{Filename: s.filename, Line: s.line, Offset: off}, msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

// Scan reads the next token, filling *tokVal with its raw text and any
// decoded value.
func (s *Scanner) Scan(tokVal *nictoken.Value) (tok nictoken.Token) {
	s.skipWhitespaceAndComments()

	line := s.line
	start := s.off

	switch cur := s.cur; {
	case cur == '\n':
		for s.cur == '\n' || isWhitespace(s.cur) {
			s.advance()
			s.skipWhitespaceAndComments()
		}
		tok = nictoken.NEWLINE
		*tokVal = nictoken.Value{Raw: "\n", Line: line}

	case isIdentStart(cur):
		lit := s.ident()
		if len(lit) > maxIdentLen {
			s.errorf(start, "identifier %q exceeds %d characters", lit, maxIdentLen)
		}
		if v, ok := nictoken.DomainLiteral(lit); ok {
			tok = nictoken.INT
			*tokVal = nictoken.Value{Raw: lit, Line: line, Int: v}
			return tok
		}
		tok = nictoken.IDENT
		*tokVal = nictoken.Value{Raw: lit, Line: line, Str: lit}

	case isDecimal(cur) || (cur == '-' && s.minusIsSign && isDecimal(rune(s.peek()))):
		tok = nictoken.INT
		lit, v := s.number()
		*tokVal = nictoken.Value{Raw: lit, Line: line, Int: v}

	default:
		s.advance()
		switch cur {
		case '"':
			tok = nictoken.STRING
			lit, val := s.shortString(start)
			*tokVal = nictoken.Value{Raw: lit, Line: line, Str: val}
			return tok

		case '(':
			tok = nictoken.LPAREN
		case ')':
			tok = nictoken.RPAREN
		case '[':
			tok = nictoken.LBRACK
		case ']':
			tok = nictoken.RBRACK
		case ',':
			tok = nictoken.COMMA
		case '+':
			tok = nictoken.PLUS
		case '-':
			tok = nictoken.MINUS
		case '*':
			tok = nictoken.STAR
		case '/':
			tok = nictoken.SLASH
		case '%':
			tok = nictoken.PERCENT
		case '&':
			tok = nictoken.AMPERSAND
		case '|':
			tok = nictoken.PIPE
		case '^':
			tok = nictoken.CIRCUMFLEX
		case '~':
			tok = nictoken.TILDE
		case ':':
			tok = nictoken.COLON
		case '=':
			tok = nictoken.EQ
		case '!':
			if s.advanceIf('=') {
				tok = nictoken.NEQ
			} else {
				s.errorf(start, "illegal character %#U, expected '!='", cur)
				tok = nictoken.ILLEGAL
			}
		case '<':
			switch {
			case s.advanceIf('<'):
				tok = nictoken.SHL
			case s.advanceIf('='):
				tok = nictoken.LE
			default:
				tok = nictoken.LT
			}
		case '>':
			switch {
			case s.advanceIf('>'):
				tok = nictoken.SHR
			case s.advanceIf('='):
				tok = nictoken.GE
			default:
				tok = nictoken.GT
			}
		case -1:
			tok = nictoken.EOF
		default:
			s.errorf(start, "illegal character %#U", cur)
			tok = nictoken.ILLEGAL
		}
		*tokVal = nictoken.Value{Raw: string(s.src[start:s.off]), Line: line}
	}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isIdentCont(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// number scans an integer literal: decimal, 0x-hex, 0b-binary, optionally
// sign-prefixed when minusIsSign permits it.
func (s *Scanner) number() (lit string, v int64) {
	start := s.off
	neg := false
	if s.cur == '-' {
		neg = true
		s.advance()
	}

	base := 10
	if s.cur == '0' && (lower(rune(s.peek())) == 'x' || lower(rune(s.peek())) == 'b') {
		isHex := lower(rune(s.peek())) == 'x'
		s.advance()
		s.advance()
		if isHex {
			base = 16
		} else {
			base = 2
		}
	}

	digStart := s.off
	for isBaseDigit(s.cur, base) {
		s.advance()
	}
	digits := string(s.src[digStart:s.off])
	if digits == "" {
		s.error(start, "malformed number literal, no digits")
	}

	lit = string(s.src[start:s.off])
	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		s.errorf(start, "integer literal %q out of range", lit)
	}
	if neg {
		n = -n
	}
	return lit, n
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		for isWhitespace(s.cur) {
			s.advance()
		}
		if s.cur == '/' && s.peek() == '/' {
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
			continue
		}
		break
	}
}

// isWhitespace excludes '\n': newlines are significant, emitted as their
// own NEWLINE token, since nic is line-oriented (spec.md §4.H).
func isWhitespace(rn rune) bool { return rn == ' ' || rn == '\t' || rn == '\r' }

// isIdentStart reports whether rn can open an identifier: an ASCII letter
// only, per spec.md §4.B's [A-Za-z][A-Za-z0-9_.]* shape (grammar.ebnf's
// IDENT/letter productions encode the same restriction).
func isIdentStart(rn rune) bool {
	return 'a' <= rn && rn <= 'z' || 'A' <= rn && rn <= 'Z'
}

// isIdentCont reports whether rn can continue an identifier after its
// first character: ASCII letter, digit, '_', or '.'.
func isIdentCont(rn rune) bool {
	return isIdentStart(rn) || isDigit(rn) || rn == '_' || rn == '.'
}

func isDigit(rn rune) bool { return '0' <= rn && rn <= '9' }

func isDecimal(rn rune) bool { return isDigit(rn) }

func isBaseDigit(rn rune, base int) bool {
	switch base {
	case 16:
		return isDigit(rn) || 'a' <= lower(rn) && lower(rn) <= 'f'
	case 2:
		return rn == '0' || rn == '1'
	default:
		return isDigit(rn)
	}
}

func lower(ch rune) rune { return ('a' - 'A') | ch }
