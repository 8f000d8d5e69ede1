package token_test

import (
	"testing"

	"github.com/nic-lang/nicc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	assert.Equal(t, "+", token.PLUS.String())
	assert.Equal(t, "end of file", token.EOF.String())
	assert.Contains(t, token.Token(100).String(), "token(")
}

func TestTokenGoString(t *testing.T) {
	assert.Equal(t, "'+'", token.PLUS.GoString())
	assert.Equal(t, "identifier", token.IDENT.GoString())
}

func TestIsCompare(t *testing.T) {
	for _, tok := range []token.Token{token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE} {
		assert.True(t, tok.IsCompare(), tok.String())
	}
	assert.False(t, token.PLUS.IsCompare())
	assert.False(t, token.SHL.IsCompare())
}

func TestIsArithOp(t *testing.T) {
	for _, tok := range []token.Token{token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.AMPERSAND, token.PIPE, token.CIRCUMFLEX, token.SHL, token.SHR, token.COLON} {
		assert.True(t, tok.IsArithOp(), tok.String())
	}
	assert.False(t, token.LT.IsArithOp())
	assert.False(t, token.COMMA.IsArithOp())
}

func TestPrecedenceOrdering(t *testing.T) {
	// Ordering from spec.md §4.F, lowest to highest.
	require.Less(t, token.PLUS.Precedence(), token.STAR.Precedence())
	assert.Equal(t, token.PLUS.Precedence(), token.MINUS.Precedence())
	assert.Less(t, token.STAR.Precedence(), token.SLASH.Precedence())
	assert.Less(t, token.SLASH.Precedence(), token.PERCENT.Precedence())
	assert.Less(t, token.PERCENT.Precedence(), token.PIPE.Precedence())
	assert.Less(t, token.PIPE.Precedence(), token.CIRCUMFLEX.Precedence())
	assert.Less(t, token.CIRCUMFLEX.Precedence(), token.AMPERSAND.Precedence())
	assert.Less(t, token.AMPERSAND.Precedence(), token.SHL.Precedence())
	assert.Equal(t, token.SHL.Precedence(), token.SHR.Precedence())
	assert.Less(t, token.SHR.Precedence(), token.COLON.Precedence())
	assert.Zero(t, token.LPAREN.Precedence())
}

func TestDomainLiteralEOF(t *testing.T) {
	v, ok := token.DomainLiteral("EOF")
	require.True(t, ok)
	assert.EqualValues(t, -1, v)
}

func TestDomainLiteralGPIO(t *testing.T) {
	a, ok := token.DomainLiteral("GPIOA")
	require.True(t, ok)
	assert.EqualValues(t, 0, a)

	i, ok := token.DomainLiteral("GPIOI")
	require.True(t, ok)
	assert.EqualValues(t, 8, i)
}

func TestDomainLiteralMisc(t *testing.T) {
	cases := map[string]int64{
		"TRUE": 1, "FALSE": 0,
		"HIGH": 1, "LOW": 0,
		"HEX": 0, "STR": 4,
		"I2C2": 2, "UART6": 6,
		"RED": 1, "A_BOLD": 1,
		"SEEK_END": 2,
	}
	for name, want := range cases {
		got, ok := token.DomainLiteral(name)
		require.True(t, ok, name)
		assert.EqualValues(t, want, got, name)
	}
}

func TestDomainLiteralUnknown(t *testing.T) {
	_, ok := token.DomainLiteral("not_a_literal")
	assert.False(t, ok)
}
