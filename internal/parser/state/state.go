// Package state implements the parser's token cursor: a vector of tokens
// with a checkpoint/restore cursor, plus an error accumulator that
// remembers the deepest error seen across abandoned alternatives so a
// full parse failure reports the most specific cause rather than whatever
// the last-tried alternative happened to say.
package state

import (
	"fmt"

	"github.com/whylang/whyc/internal/position"
	"github.com/whylang/whyc/internal/token"
)

// Error is a parse failure: a short explanation plus the span it occurred
// at. EOF failures carry no span (the zero Span, !IsValid()).
type Error struct {
	Message string
	At      position.Span
}

func (e *Error) Error() string { return e.Message }

// Span satisfies internal/diagnostic.Spanned.
func (e *Error) Span() position.Span { return e.At }

// EOF builds the span-less "hit EOF while parsing X" error.
func EOF(item string) *Error {
	return &Error{Message: fmt.Sprintf("hit EOF while parsing %s", item)}
}

// Expected builds an "expected Tag, found Tag" error at a token's span.
func Expected(want fmt.Stringer, got token.Token) *Error {
	return &Error{
		Message: fmt.Sprintf("expected %s, found %s", want, got.Kind),
		At:      got.Span,
	}
}

// State is the mutable cursor threaded through every combinator and
// grammar rule.
type State struct {
	tokens []token.Token
	pos    int

	bestErr   *Error
	bestReach int
}

// New wraps a token stream (EOF token included; parser.Parse appends
// one before handing the stream over) for parsing from the start.
func New(tokens []token.Token) *State {
	return &State{tokens: tokens}
}

// Peek returns the token under the cursor without consuming it. ok is
// false only once the cursor has passed the final EOF token.
func (s *State) Peek() (token.Token, bool) {
	return s.PeekAt(0)
}

// PeekAt looks ahead offset tokens from the cursor without moving it; the
// parser uses it to see whether an identifier is followed by `{` (a struct
// initialisation) before committing to a primary expression.
func (s *State) PeekAt(offset int) (token.Token, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.tokens) {
		return token.Token{}, false
	}
	return s.tokens[i], true
}

// Next consumes and returns the token under the cursor.
func (s *State) Next() (token.Token, bool) {
	t, ok := s.Peek()
	if !ok {
		return token.Token{}, false
	}
	s.pos++
	return t, true
}

// AtEOF reports whether the cursor sits on (or past) the stream's EOF
// token.
func (s *State) AtEOF() bool {
	t, ok := s.Peek()
	return !ok || t.Kind == token.EOF
}

// Checkpoint saves the cursor position for a later Restore.
func (s *State) Checkpoint() int { return s.pos }

// Restore resets the cursor to a previously saved checkpoint, discarding
// any progress made since: alternatives must not leak partial
// consumption.
func (s *State) Restore(cp int) { s.pos = cp }

// Record pushes a failing branch's error into the accumulator, keeping
// whichever recorded error reached furthest into the token stream: ties
// keep the first one recorded, so only a strictly deeper failure replaces
// it.
func (s *State) Record(err *Error, reachedPos int) {
	if s.bestErr == nil || reachedPos > s.bestReach {
		s.bestErr = err
		s.bestReach = reachedPos
	}
}

// BestError returns the deepest accumulated error, or nil if nothing has
// been recorded yet.
func (s *State) BestError() *Error { return s.bestErr }

// Pos reports the current cursor position, used by callers recording into
// the accumulator via Record.
func (s *State) Pos() int { return s.pos }
