// Package comb implements a small parser-combinator algebra (Terminal,
// Rule, Seq, Alt, Opt, SepBy, RepUntil) as an interpreted value type
// threading an internal/parser/state.State cursor.
//
// Every composite is atomic: it either succeeds having advanced the
// state, or fails having restored it, so a failed alternative never
// leaks a partially consumed token stream to its sibling.
package comb

import (
	"github.com/whylang/whyc/internal/parser/state"
	"github.com/whylang/whyc/internal/token"
)

// Frag is one fragment produced by a successful combinator match. Terminal
// matches against a lexeme-bearing kind (Ident, Integer, Float, Comment)
// emit the matched token itself as a Frag; punctuation terminals emit
// none. Grammar rules built on top of comb read the Frag list back out by
// type assertion (internal/parser asserts the results of its Wrap'd rules
// back to AST node types) and assemble the typed AST node themselves;
// comb's job stops at "did this shape of tokens match".
type Frag any

// Comb is satisfied by every combinator: given a state, it either
// succeeds with the fragments it produced (state advanced), or fails with
// a *state.Error. The state is restored only if the combinator itself
// chose to backtrack: Seq and the top-level Alt branches always restore
// on failure; Terminal leaves the cursor wherever it stopped, since a
// single token match either fully succeeds or consumes nothing.
type Comb interface {
	Parse(s *state.State) ([]Frag, error)
}

// combFunc adapts a plain function to the Comb interface, the idiomatic
// Go equivalent of wrapping a closure as an enum variant's payload.
type combFunc func(s *state.State) ([]Frag, error)

func (f combFunc) Parse(s *state.State) ([]Frag, error) { return f(s) }

// lexemeKinds are the token kinds Terminal treats as carrying a payload
// worth keeping as a Frag.
var lexemeKinds = map[token.Kind]bool{
	token.Ident:   true,
	token.Integer: true,
	token.Float:   true,
	token.Comment: true,
}

// Terminal consumes exactly one token of kind k. On a mismatch it fails
// without advancing the cursor (a single-token lookahead never partially
// consumes). On success it emits the matched token as a Frag only for
// lexeme-bearing kinds; punctuation terminals emit nothing.
func Terminal(k token.Kind) Comb {
	return combFunc(func(s *state.State) ([]Frag, error) {
		tok, ok := s.Peek()
		if !ok {
			err := state.EOF(k.String())
			s.Record(err, s.Pos())
			return nil, err
		}
		if tok.Kind != k {
			err := state.Expected(k, tok)
			s.Record(err, s.Pos())
			return nil, err
		}
		s.Next()
		if lexemeKinds[k] {
			return []Frag{tok}, nil
		}
		return nil, nil
	})
}

// Wrap adapts a hand-written grammar rule (the parser package's
// per-production functions, which build typed AST nodes directly rather
// than reassembling them from a raw Frag list) into a Comb, so it can be
// threaded through Seq/Alt/Opt/SepBy/RepUntil alongside the primitive
// combinators. fn's result, on success, becomes the sole Frag.
func Wrap(fn func(s *state.State) (Frag, error)) Comb {
	return combFunc(func(s *state.State) ([]Frag, error) {
		f, err := fn(s)
		if err != nil {
			return nil, err
		}
		return []Frag{f}, nil
	})
}

// Rule names a grammar rule, deferring resolution of its body until
// Parse is actually called, so a rule may reference itself (or a rule
// defined later in the same table) without infinite recursion at
// construction time.
func Rule(name string, lookup func(name string) Comb) Comb {
	return combFunc(func(s *state.State) ([]Frag, error) {
		c := lookup(name)
		if c == nil {
			panic("comb: no rule registered for " + name)
		}
		return c.Parse(s)
	})
}

// Seq runs every part in order, concatenating their fragments. It is
// atomic: on any part's failure the whole sequence
// restores the cursor to where it started and propagates that part's
// error, so a partially matched sequence never leaves a stray AST
// fragment or advanced cursor behind for a sibling Alt branch to trip
// over.
func Seq(parts ...Comb) Comb {
	return combFunc(func(s *state.State) ([]Frag, error) {
		cp := s.Checkpoint()
		var frags []Frag
		for _, part := range parts {
			f, err := part.Parse(s)
			if err != nil {
				s.Restore(cp)
				return nil, err
			}
			frags = append(frags, f...)
		}
		return frags, nil
	})
}

// Alt tries each alternative in order, restoring the cursor between
// attempts. The first alternative to succeed wins; if every alternative
// fails, Alt returns the best (deepest-reaching) error recorded along the
// way via the state's accumulator, rather than simply the last
// alternative's error.
func Alt(alts ...Comb) Comb {
	return combFunc(func(s *state.State) ([]Frag, error) {
		cp := s.Checkpoint()
		var lastErr error
		for _, alt := range alts {
			f, err := alt.Parse(s)
			if err == nil {
				return f, nil
			}
			s.Restore(cp)
			lastErr = err
		}
		if best := s.BestError(); best != nil {
			return nil, best
		}
		return nil, lastErr
	})
}

// Opt tries c; on failure it restores the cursor and succeeds with no
// fragments.
func Opt(c Comb) Comb {
	return combFunc(func(s *state.State) ([]Frag, error) {
		cp := s.Checkpoint()
		f, err := c.Parse(s)
		if err != nil {
			s.Restore(cp)
			return nil, nil
		}
		return f, nil
	})
}

// SepBy matches zero or more item, separated by sep, without consuming a
// trailing separator.
func SepBy(item, sep Comb) Comb {
	return combFunc(func(s *state.State) ([]Frag, error) {
		var frags []Frag

		cp := s.Checkpoint()
		f, err := item.Parse(s)
		if err != nil {
			s.Restore(cp)
			return nil, nil
		}
		frags = append(frags, f...)

		for {
			sepCp := s.Checkpoint()
			if _, err := sep.Parse(s); err != nil {
				s.Restore(sepCp)
				return frags, nil
			}

			f, err := item.Parse(s)
			if err != nil {
				// A separator with nothing after it (trailing sep): back
				// up past the separator too, since it was not ours to
				// consume without a following item.
				s.Restore(sepCp)
				return frags, nil
			}
			frags = append(frags, f...)
		}
	})
}

// RepUntil matches zero or more item, stopping once end matches; end's
// own fragments (if any) are included, and end itself is consumed.
func RepUntil(item, end Comb) Comb {
	return combFunc(func(s *state.State) ([]Frag, error) {
		start := s.Checkpoint()
		var frags []Frag
		for {
			cp := s.Checkpoint()
			if f, err := end.Parse(s); err == nil {
				frags = append(frags, f...)
				return frags, nil
			}
			s.Restore(cp)

			f, err := item.Parse(s)
			if err != nil {
				s.Restore(start)
				return nil, err
			}
			frags = append(frags, f...)
		}
	})
}
