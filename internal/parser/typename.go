package parser

import (
	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/parser/comb"
	"github.com/whylang/whyc/internal/parser/state"
	"github.com/whylang/whyc/internal/token"
)

// parseTypeName tries the TypeName alternatives in order: Literal, then
// Function, then Tuple, then Array, each behind its own checkpoint,
// restoring on failure so the next alternative starts clean.
func parseTypeName(s *state.State) (ast.TypeName, error) {
	cp := s.Checkpoint()

	if lit, err := parseLiteralType(s); err == nil {
		return lit, nil
	}
	s.Restore(cp)

	if fn, err := parseFnType(s); err == nil {
		return fn, nil
	}
	s.Restore(cp)

	if tup, err := parseTupleType(s); err == nil {
		return tup, nil
	}
	s.Restore(cp)

	if arr, err := parseArrayType(s); err == nil {
		return arr, nil
	}
	s.Restore(cp)

	if best := s.BestError(); best != nil {
		return nil, best
	}
	tok, ok := s.Peek()
	if !ok {
		return nil, state.EOF("type")
	}
	return nil, state.Expected(label("type"), tok)
}

func parseLiteralType(s *state.State) (*ast.LiteralType, error) {
	tok, err := consume(s, token.Ident, "type")
	if err != nil {
		return nil, err
	}
	return &ast.LiteralType{Name: tok.Text, Pos: tok.Span}, nil
}

// parseTypeList reads a comma-separated, possibly empty list of type
// names between a caller-consumed opening delimiter and a closing one it
// consumes itself, using the comb.SepBy combinator over a Wrap'd
// parseTypeName.
func parseTypeList(s *state.State, closing token.Kind, item string) ([]ast.TypeName, error) {
	typeNameComb := comb.Wrap(func(s *state.State) (comb.Frag, error) {
		return parseTypeName(s)
	})

	frags, err := comb.SepBy(typeNameComb, comb.Terminal(token.Comma)).Parse(s)
	if err != nil {
		return nil, err
	}

	elems := make([]ast.TypeName, len(frags))
	for i, f := range frags {
		elems[i] = f.(ast.TypeName)
	}

	if _, err := consume(s, closing, item); err != nil {
		return nil, err
	}

	return elems, nil
}

// parseFnType is `(T, ...) -> T`.
func parseFnType(s *state.State) (*ast.FnType, error) {
	open, err := consume(s, token.LParen, "function type")
	if err != nil {
		return nil, err
	}

	params, err := parseTypeList(s, token.RParen, "function type")
	if err != nil {
		return nil, err
	}

	if _, err := consume(s, token.Arrow, "function type"); err != nil {
		return nil, err
	}

	ret, err := parseTypeName(s)
	if err != nil {
		return nil, err
	}

	return &ast.FnType{Params: params, Return: ret, Pos: open.Span.Merge(ret.GetSpan())}, nil
}

// parseTupleType is `(T, ...)` with no trailing arrow.
func parseTupleType(s *state.State) (*ast.TupleType, error) {
	open, err := consume(s, token.LParen, "tuple type")
	if err != nil {
		return nil, err
	}

	elems, err := parseTypeList(s, token.RParen, "tuple type")
	if err != nil {
		return nil, err
	}

	return &ast.TupleType{Elements: elems, Pos: open.Span}, nil
}

// parseArrayType is `[T]`.
func parseArrayType(s *state.State) (*ast.ArrayType, error) {
	open, err := consume(s, token.LBracket, "array type")
	if err != nil {
		return nil, err
	}

	elem, err := parseTypeName(s)
	if err != nil {
		return nil, err
	}

	closeTok, err := consume(s, token.RBracket, "array type")
	if err != nil {
		return nil, err
	}

	return &ast.ArrayType{Element: elem, Pos: open.Span.Merge(closeTok.Span)}, nil
}
