package diagnostic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whylang/whyc/internal/diagnostic"
	"github.com/whylang/whyc/internal/lexer"
	"github.com/whylang/whyc/internal/position"
)

func TestRenderSpannedErrorShowsSourceLine(t *testing.T) {
	src := "let x = @;"
	sm := position.NewSourceMap()
	sm.Add("t.why", src)

	_, err := lexer.Lex("t.why", src)
	require.Error(t, err)

	spanned, ok := err.(diagnostic.Spanned)
	require.True(t, ok)

	out := diagnostic.Render(spanned, sm)
	assert.Contains(t, out, "1 |let x = @;")
	assert.Contains(t, out, "^")
	assert.Contains(t, out, "unexpected character")
}

func TestRenderSpanlessErrorFallsBackToMessage(t *testing.T) {
	sm := position.NewSourceMap()

	spanless := &spanlessError{msg: "hit EOF while parsing function"}
	assert.Equal(t, "hit EOF while parsing function", diagnostic.Render(spanless, sm))
}

type spanlessError struct{ msg string }

func (e *spanlessError) Error() string       { return e.msg }
func (e *spanlessError) Span() position.Span { return position.Span{} }

func TestSummaryPluralises(t *testing.T) {
	assert.Equal(t, "check: 1 error", diagnostic.Summary("check", 1))
	assert.Equal(t, "parse: 3 errors", diagnostic.Summary("parse", 3))
}
