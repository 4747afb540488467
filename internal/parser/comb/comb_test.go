package comb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whylang/whyc/internal/lexer"
	"github.com/whylang/whyc/internal/parser/state"
	"github.com/whylang/whyc/internal/token"
)

func stateOf(t *testing.T, src string) *state.State {
	t.Helper()
	tokens, err := lexer.Lex("comb_test.why", src)
	require.NoError(t, err)
	return state.New(append(tokens, token.Token{Kind: token.EOF}))
}

func TestTerminalMatchesAndEmitsLexeme(t *testing.T) {
	s := stateOf(t, "foo")

	frags, err := Terminal(token.Ident).Parse(s)
	require.NoError(t, err)
	require.Len(t, frags, 1)

	tok := frags[0].(token.Token)
	assert.Equal(t, "foo", tok.Text)
}

func TestTerminalPunctuationEmitsNoFragment(t *testing.T) {
	s := stateOf(t, ";")

	frags, err := Terminal(token.Semicolon).Parse(s)
	require.NoError(t, err)
	assert.Empty(t, frags)
	assert.True(t, s.AtEOF())
}

func TestTerminalMismatchLeavesCursorInPlace(t *testing.T) {
	s := stateOf(t, "foo")
	before := s.Pos()

	_, err := Terminal(token.Semicolon).Parse(s)
	require.Error(t, err)
	assert.Equal(t, before, s.Pos())
}

func TestSeqIsAtomicOnFailure(t *testing.T) {
	// `let foo` matches the first part of `let foo =` but not the `=`;
	// the whole sequence must restore to the starting cursor.
	s := stateOf(t, "let foo ;")
	before := s.Pos()

	seq := Seq(Terminal(token.Let), Terminal(token.Ident), Terminal(token.Assign))
	_, err := seq.Parse(s)
	require.Error(t, err)
	assert.Equal(t, before, s.Pos())
}

func TestSeqConcatenatesFragments(t *testing.T) {
	s := stateOf(t, "foo bar")

	frags, err := Seq(Terminal(token.Ident), Terminal(token.Ident)).Parse(s)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	assert.Equal(t, "foo", frags[0].(token.Token).Text)
	assert.Equal(t, "bar", frags[1].(token.Token).Text)
}

func TestAltTriesAlternativesInOrder(t *testing.T) {
	s := stateOf(t, "42")

	frags, err := Alt(Terminal(token.Ident), Terminal(token.Integer)).Parse(s)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, uint64(42), frags[0].(token.Token).Int)
}

func TestAltReportsDeepestError(t *testing.T) {
	// The first alternative dies immediately on `let`; the second gets
	// past `let foo` before failing on the missing `=`. The reported
	// error must be the deeper one.
	s := stateOf(t, "let foo ;")

	shallow := Terminal(token.Ident)
	deep := Seq(Terminal(token.Let), Terminal(token.Ident), Terminal(token.Assign))

	_, err := Alt(shallow, deep).Parse(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected =")
}

func TestOptSucceedsWithNothingOnFailure(t *testing.T) {
	s := stateOf(t, "foo")
	before := s.Pos()

	frags, err := Opt(Terminal(token.Integer)).Parse(s)
	require.NoError(t, err)
	assert.Empty(t, frags)
	assert.Equal(t, before, s.Pos())
}

func TestSepByLeavesTrailingSeparator(t *testing.T) {
	s := stateOf(t, "foo, bar, ;")

	frags, err := SepBy(Terminal(token.Ident), Terminal(token.Comma)).Parse(s)
	require.NoError(t, err)
	require.Len(t, frags, 2)

	// The separator after `bar` had no item behind it, so it stays
	// unconsumed for the caller.
	next, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, token.Comma, next.Kind)
}

func TestSepByMatchesEmptyList(t *testing.T) {
	s := stateOf(t, ")")

	frags, err := SepBy(Terminal(token.Ident), Terminal(token.Comma)).Parse(s)
	require.NoError(t, err)
	assert.Empty(t, frags)

	next, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, token.RParen, next.Kind)
}

func TestRepUntilConsumesTerminator(t *testing.T) {
	s := stateOf(t, "foo bar }")

	frags, err := RepUntil(Terminal(token.Ident), Terminal(token.RBrace)).Parse(s)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	assert.True(t, s.AtEOF())
}

func TestRuleDefersLookupUntilParse(t *testing.T) {
	table := map[string]Comb{}

	// The rule body is registered after the Rule value is built; lookup
	// at Parse time must still find it.
	r := Rule("ident", func(name string) Comb { return table[name] })
	table["ident"] = Terminal(token.Ident)

	s := stateOf(t, "foo")
	frags, err := r.Parse(s)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "foo", frags[0].(token.Token).Text)
}

func TestRuleMissingNamePanics(t *testing.T) {
	r := Rule("ghost", func(string) Comb { return nil })
	s := stateOf(t, "foo")

	assert.Panics(t, func() { _, _ = r.Parse(s) })
}

func TestWrapExposesRuleResultAsFragment(t *testing.T) {
	wrapped := Wrap(func(s *state.State) (Frag, error) {
		tok, ok := s.Next()
		if !ok {
			return nil, state.EOF("token")
		}
		return tok.Text, nil
	})

	s := stateOf(t, "foo")
	frags, err := wrapped.Parse(s)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "foo", frags[0])
}
