package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whylang/whyc/internal/token"
)

func TestLexKeywordsAndPunctuation(t *testing.T) {
	tokens, err := Lex("test.why", "let mut x: i64 = 42;")
	require.NoError(t, err)

	kinds := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}

	assert.Equal(t, []token.Kind{
		token.Let, token.Mut, token.Ident, token.Colon, token.Ident,
		token.Assign, token.Integer, token.Semicolon,
	}, kinds)
}

func TestLexTwoCharOperatorsGreedy(t *testing.T) {
	tokens, err := Lex("test.why", "-> => == <= >= < >")
	require.NoError(t, err)

	var kinds []token.Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}

	assert.Equal(t, []token.Kind{
		token.Arrow, token.FatArrow, token.Eq, token.Le, token.Ge, token.Lt, token.Gt,
	}, kinds)
}

func TestLexFloatVsInteger(t *testing.T) {
	tokens, err := Lex("test.why", "42 1337.5")
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, token.Integer, tokens[0].Kind)
	assert.Equal(t, uint64(42), tokens[0].Int)

	assert.Equal(t, token.Float, tokens[1].Kind)
	assert.InDelta(t, 1337.5, tokens[1].Float, 1e-9)
}

func TestLexComment(t *testing.T) {
	tokens, err := Lex("test.why", "// some comment\nlet")
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, token.Comment, tokens[0].Kind)
	assert.Equal(t, " some comment", tokens[0].Text)
	assert.Equal(t, token.Let, tokens[1].Kind)
}

func TestLexUnknownCharacterFails(t *testing.T) {
	_, err := Lex("test.why", "let x = @;")

	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, lexErr.Error(), "@")
}

// TestSpanPreservesOffsets: every token's span covers exactly the lexeme
// at its byte offset.
func TestSpanPreservesOffsets(t *testing.T) {
	src := "let x = 42;"
	tokens, err := Lex("test.why", src)
	require.NoError(t, err)

	for _, tok := range tokens {
		lexeme := src[tok.Span.Start.Offset:tok.Span.End.Offset]
		if tok.Kind == token.Ident || tok.Kind == token.Integer {
			assert.Equal(t, tok.Text, lexeme)
		}
	}
}

func TestSpanLineColumnAdvancesAcrossNewlines(t *testing.T) {
	tokens, err := Lex("test.why", "let x\n= 1;")
	require.NoError(t, err)

	eqTok := tokens[2]
	assert.Equal(t, token.Assign, eqTok.Kind)
	assert.Equal(t, 2, eqTok.Span.Start.Line)
	assert.Equal(t, 1, eqTok.Span.Start.Col)
}
