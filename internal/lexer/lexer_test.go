package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func lexemes(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Lexeme
	}
	return out
}

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	toks := Tokenize("let x = foo")
	require.Len(t, toks, 5) // let, x, =, foo, EOF
	assert.Equal(t, []token.Kind{token.Keyword, token.Ident, token.Operator, token.Ident, token.EOF}, kinds(toks))
	assert.Equal(t, []string{"let", "x", "=", "foo", ""}, lexemes(toks))
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	toks := Tokenize("a == b != c <= d >= e ++ f")
	assert.Equal(t, []string{"a", "==", "b", "!=", "c", "<=", "d", ">=", "e", "++", "f", ""}, lexemes(toks))
}

func TestTokenizeArrowIsPunct(t *testing.T) {
	toks := Tokenize("->")
	assert.Equal(t, token.Punct, toks[0].Kind)
	assert.Equal(t, "->", toks[0].Lexeme)
}

func TestTokenizeIntLiteral(t *testing.T) {
	toks := Tokenize("12345")
	require.Len(t, toks, 2)
	assert.Equal(t, token.IntLiteral, toks[0].Kind)
	assert.Equal(t, "12345", toks[0].Lexeme)
}

func TestTokenizeStringLiteralEscapes(t *testing.T) {
	toks := Tokenize(`"a\nb\t\"c\"\\d"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.StringLiteral, toks[0].Kind)
	assert.Equal(t, "a\nb\t\"c\"\\d", toks[0].Lexeme)
}

func TestTokenizeCommentsAreSkipped(t *testing.T) {
	toks := Tokenize("let x = 1 // trailing comment\nlet y = 2")
	assert.Equal(t, []string{"let", "x", "=", "1", "let", "y", "=", "2", ""}, lexemes(toks))
}

func TestTokenizeSoftKeywordThenIsIdent(t *testing.T) {
	toks := Tokenize("if a then b else c")
	assert.Equal(t, []token.Kind{token.Keyword, token.Ident, token.Ident, token.Ident, token.Keyword, token.Ident, token.EOF},
		kinds(toks))
}

func TestTokenizeStructLiteralDotBrace(t *testing.T) {
	toks := Tokenize(".{ x: 1 }")
	assert.Equal(t, []string{".", "{", "x", ":", "1", "}", ""}, lexemes(toks))
}

func TestTokenizeTracksLineAndColumn(t *testing.T) {
	toks := Tokenize("let x =\n  1")
	last := toks[len(toks)-2] // the IntLiteral "1"
	assert.Equal(t, 2, last.Span.Start.Line)
}

func TestTokenizeEndsWithUnbrokenEOF(t *testing.T) {
	l := New("")
	first := l.NextToken()
	second := l.NextToken()
	assert.Equal(t, token.EOF, first.Kind)
	assert.Equal(t, token.EOF, second.Kind)
}
