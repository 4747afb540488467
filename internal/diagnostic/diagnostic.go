// Package diagnostic renders pipeline errors (lex, parse, type-check) into
// the span-prefixed text format the CLI prints to stderr.
package diagnostic

import (
	"fmt"

	"github.com/whylang/whyc/internal/position"
)

// Spanned is implemented by every error family the pipeline returns:
// lexer.Error, parser.Error and check.Error. EOF-triggered parse errors
// carry no span, signalled by Span().IsValid() == false.
type Spanned interface {
	error
	Span() position.Span
}

// Render formats err as `<line> |<source-line>` followed by a caret line
// and the message. Falls back to
// the bare error message when the error has no span or sourceMap has no
// record of the file (e.g. the EOF case).
func Render(err Spanned, sourceMap *position.SourceMap) string {
	span := err.Span()
	if !span.IsValid() {
		return err.Error()
	}
	return position.Highlight(sourceMap, span, err.Error())
}

// Summary produces the one-line `<n> error(s)` suffix the CLI prints after
// a failed pipeline stage.
func Summary(stage string, count int) string {
	if count == 1 {
		return fmt.Sprintf("%s: 1 error", stage)
	}
	return fmt.Sprintf("%s: %d errors", stage, count)
}
