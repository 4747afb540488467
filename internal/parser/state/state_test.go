package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whylang/whyc/internal/position"
	"github.com/whylang/whyc/internal/token"
)

func tokensOf(kinds ...token.Kind) []token.Token {
	out := make([]token.Token, len(kinds))
	for i, k := range kinds {
		out[i] = token.Token{Kind: k}
	}
	return out
}

func TestPeekDoesNotAdvance(t *testing.T) {
	s := New(tokensOf(token.Let, token.Ident))

	first, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, token.Let, first.Kind)

	again, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, token.Let, again.Kind)
	assert.Equal(t, 0, s.Pos())
}

func TestNextAdvancesToExhaustion(t *testing.T) {
	s := New(tokensOf(token.Let, token.Ident))

	tok, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, token.Let, tok.Kind)

	tok, ok = s.Next()
	require.True(t, ok)
	assert.Equal(t, token.Ident, tok.Kind)

	_, ok = s.Next()
	assert.False(t, ok)
}

func TestPeekAtLooksAhead(t *testing.T) {
	s := New(tokensOf(token.Ident, token.Assign, token.Integer))

	tok, ok := s.PeekAt(1)
	require.True(t, ok)
	assert.Equal(t, token.Assign, tok.Kind)

	_, ok = s.PeekAt(3)
	assert.False(t, ok)
}

func TestCheckpointRestoreRewindsCursor(t *testing.T) {
	s := New(tokensOf(token.Let, token.Ident, token.Assign))

	cp := s.Checkpoint()
	s.Next()
	s.Next()
	require.Equal(t, 2, s.Pos())

	s.Restore(cp)
	assert.Equal(t, 0, s.Pos())

	tok, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, token.Let, tok.Kind)
}

func TestAtEOFOnEOFToken(t *testing.T) {
	s := New(tokensOf(token.Ident, token.EOF))
	assert.False(t, s.AtEOF())
	s.Next()
	assert.True(t, s.AtEOF())
}

func TestRecordKeepsDeepestError(t *testing.T) {
	s := New(tokensOf(token.Let, token.Ident, token.Assign))

	shallow := &Error{Message: "shallow"}
	deep := &Error{Message: "deep"}

	s.Record(shallow, 0)
	s.Record(deep, 2)
	s.Record(&Error{Message: "shallow again"}, 1)

	require.NotNil(t, s.BestError())
	assert.Equal(t, "deep", s.BestError().Message)
}

func TestRecordTieKeepsFirst(t *testing.T) {
	s := New(tokensOf(token.Let))

	first := &Error{Message: "first"}
	s.Record(first, 1)
	s.Record(&Error{Message: "second"}, 1)

	assert.Same(t, first, s.BestError())
}

func TestEOFErrorHasNoSpan(t *testing.T) {
	err := EOF("function")
	assert.Contains(t, err.Error(), "hit EOF while parsing function")
	assert.False(t, err.Span().IsValid())
}

func TestExpectedCarriesOffendingSpan(t *testing.T) {
	at := position.Span{
		Start: position.Position{File: "t.why", Line: 1, Col: 5, Offset: 4},
		End:   position.Position{File: "t.why", Line: 1, Col: 6, Offset: 5},
	}
	err := Expected(token.Semicolon, token.Token{Kind: token.Ident, Text: "x", Span: at})

	assert.Equal(t, at, err.Span())
	assert.Contains(t, err.Error(), "expected ;")
	assert.Contains(t, err.Error(), "identifier")
}
