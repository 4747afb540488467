// Package parser builds the untyped AST (ast.Unit metadata) from a token
// stream, using recursive-descent grammar rules expressed over
// internal/parser/comb's combinator algebra and internal/parser/state's
// backtracking cursor.
//
// The layout is one function per grammar production; each returns a typed
// AST node directly rather than reassembling it from raw fragments.
package parser

import (
	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/lexer"
	"github.com/whylang/whyc/internal/parser/state"
	"github.com/whylang/whyc/internal/token"
)

// Error is re-exported so callers only need to import this package to
// type-switch on parse failures (it already satisfies
// internal/diagnostic.Spanned).
type Error = state.Error

// label lets arbitrary descriptive text (e.g. "statement", "type") stand
// in as the fmt.Stringer state.Expected wants, for sites where the
// expected thing isn't a single token.Kind.
type label string

func (l label) String() string { return string(l) }

func consume(s *state.State, k token.Kind, item string) (token.Token, error) {
	tok, ok := s.Peek()
	if !ok {
		err := state.EOF(item)
		s.Record(err, s.Pos())
		return token.Token{}, err
	}
	if tok.Kind != k {
		err := state.Expected(k, tok)
		s.Record(err, s.Pos())
		return token.Token{}, err
	}
	s.Next()
	return tok, nil
}

func peekKind(s *state.State, k token.Kind) bool {
	tok, ok := s.Peek()
	return ok && tok.Kind == k
}

func peekKindAt(s *state.State, offset int, k token.Kind) bool {
	tok, ok := s.PeekAt(offset)
	return ok && tok.Kind == k
}

// ParseFile lexes then parses source text in one step, the shape
// cmd/whyc's pipeline calls.
func ParseFile(filename, src string) (ast.Program[ast.Unit], error) {
	tokens, err := lexer.Lex(filename, src)
	if err != nil {
		return ast.Program[ast.Unit]{}, err
	}
	return Parse(tokens)
}

// Parse consumes top-level statements until the token stream is
// exhausted, or returns the deepest accumulated parse error. The EOF
// sentinel is appended here so the grammar rules can rely on its
// presence.
func Parse(tokens []token.Token) (ast.Program[ast.Unit], error) {
	s := state.New(append(tokens, token.Token{Kind: token.EOF}))

	var statements []ast.Statement[ast.Unit]
	for !s.AtEOF() {
		stmt, err := parseTopLevel(s)
		if err != nil {
			if best := s.BestError(); best != nil {
				return ast.Program[ast.Unit]{}, best
			}
			return ast.Program[ast.Unit]{}, err
		}
		statements = append(statements, stmt)
	}

	return ast.Program[ast.Unit]{Statements: statements}, nil
}
