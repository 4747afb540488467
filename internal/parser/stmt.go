package parser

import (
	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/parser/state"
	"github.com/whylang/whyc/internal/token"
)

// parseTopLevel dispatches among the top-level statement variants:
// Function, Constant, Declaration, StructDeclaration, Comment,
// Initialisation.
func parseTopLevel(s *state.State) (ast.Statement[ast.Unit], error) {
	tok, ok := s.Peek()
	if !ok {
		return nil, state.EOF("top-level item")
	}

	switch tok.Kind {
	case token.Fn:
		return parseFunction(s, true)
	case token.Const:
		return parseConstant(s)
	case token.Declare:
		return parseDeclaration(s)
	case token.Struct:
		return parseStructDeclaration(s)
	case token.Comment:
		return parseComment(s)
	case token.Let:
		return parseInitialisation(s)
	}

	err := state.Expected(label("top-level item"), tok)
	s.Record(err, s.Pos())
	return nil, err
}

// parseStatement dispatches among the statement variants in a fixed
// order: If, Function, While, let-Initialisation, const-Constant,
// return-Return, declare-Declaration, Comment, then the
// Assignment-vs-Expression pair.
func parseStatement(s *state.State) (ast.Statement[ast.Unit], error) {
	tok, ok := s.Peek()
	if !ok {
		return nil, state.EOF("statement")
	}

	switch tok.Kind {
	case token.If:
		return parseIfStatement(s)
	case token.Fn:
		return parseFunction(s, false)
	case token.While:
		return parseWhileLoop(s)
	case token.Let:
		return parseInitialisation(s)
	case token.Const:
		return parseConstant(s)
	case token.Return:
		return parseReturn(s)
	case token.Declare:
		return parseDeclaration(s)
	case token.Comment:
		return parseComment(s)
	}

	return parseAssignmentOrExpression(s)
}

func parseComment(s *state.State) (*ast.Comment[ast.Unit], error) {
	tok, err := consume(s, token.Comment, "comment")
	if err != nil {
		return nil, err
	}
	return &ast.Comment[ast.Unit]{Text: tok.Text, Pos: tok.Span}, nil
}

// parseIfStatement parses an If expression, then optionally consumes a
// trailing `;` when it appears in statement position.
func parseIfStatement(s *state.State) (*ast.If[ast.Unit], error) {
	ifExpr, err := parseIfExpr(s)
	if err != nil {
		return nil, err
	}
	if peekKind(s, token.Semicolon) {
		semi, _ := s.Next()
		ifExpr.Pos = ifExpr.Pos.Merge(semi.Span)
	}
	return ifExpr, nil
}

func parseWhileLoop(s *state.State) (*ast.WhileLoop[ast.Unit], error) {
	whileTok, err := consume(s, token.While, "while loop")
	if err != nil {
		return nil, err
	}
	cond, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	body, err := parseBlock(s)
	if err != nil {
		return nil, err
	}
	return &ast.WhileLoop[ast.Unit]{
		Condition: cond,
		Body:      *body,
		Pos:       whileTok.Span.Merge(body.GetSpan()),
	}, nil
}

// parseInitialisation is `let [mut] name [: T] = expr;`.
func parseInitialisation(s *state.State) (*ast.Initialisation[ast.Unit], error) {
	letTok, err := consume(s, token.Let, "let binding")
	if err != nil {
		return nil, err
	}

	mutable := false
	if peekKind(s, token.Mut) {
		s.Next()
		mutable = true
	}

	nameTok, err := consume(s, token.Ident, "let binding")
	if err != nil {
		return nil, err
	}

	var typeName ast.TypeName
	if peekKind(s, token.Colon) {
		s.Next()
		tn, err := parseTypeName(s)
		if err != nil {
			return nil, err
		}
		typeName = tn
	}

	if _, err := consume(s, token.Assign, "let binding"); err != nil {
		return nil, err
	}

	value, err := parseExpression(s)
	if err != nil {
		return nil, err
	}

	semi, err := consume(s, token.Semicolon, "let binding")
	if err != nil {
		return nil, err
	}

	return &ast.Initialisation[ast.Unit]{
		Id:       ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span},
		Mutable:  mutable,
		TypeName: typeName,
		Value:    value,
		Pos:      letTok.Span.Merge(semi.Span),
	}, nil
}

// parseConstant is `const name: T = expr;`.
func parseConstant(s *state.State) (*ast.Constant[ast.Unit], error) {
	constTok, err := consume(s, token.Const, "const binding")
	if err != nil {
		return nil, err
	}
	nameTok, err := consume(s, token.Ident, "const binding")
	if err != nil {
		return nil, err
	}
	if _, err := consume(s, token.Colon, "const binding"); err != nil {
		return nil, err
	}
	typeName, err := parseTypeName(s)
	if err != nil {
		return nil, err
	}
	if _, err := consume(s, token.Assign, "const binding"); err != nil {
		return nil, err
	}
	value, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	semi, err := consume(s, token.Semicolon, "const binding")
	if err != nil {
		return nil, err
	}

	return &ast.Constant[ast.Unit]{
		Id:       ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span},
		TypeName: typeName,
		Value:    value,
		Pos:      constTok.Span.Merge(semi.Span),
	}, nil
}

// parseDeclaration is `declare name: T;`.
func parseDeclaration(s *state.State) (*ast.Declaration[ast.Unit], error) {
	declTok, err := consume(s, token.Declare, "declare statement")
	if err != nil {
		return nil, err
	}
	nameTok, err := consume(s, token.Ident, "declare statement")
	if err != nil {
		return nil, err
	}
	if _, err := consume(s, token.Colon, "declare statement"); err != nil {
		return nil, err
	}
	typeName, err := parseTypeName(s)
	if err != nil {
		return nil, err
	}
	semi, err := consume(s, token.Semicolon, "declare statement")
	if err != nil {
		return nil, err
	}

	return &ast.Declaration[ast.Unit]{
		Id:       ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span},
		TypeName: typeName,
		Pos:      declTok.Span.Merge(semi.Span),
	}, nil
}

// parseStructDeclaration is `struct Name { field: T; ... }`.
func parseStructDeclaration(s *state.State) (*ast.StructDeclaration[ast.Unit], error) {
	structTok, err := consume(s, token.Struct, "struct declaration")
	if err != nil {
		return nil, err
	}
	nameTok, err := consume(s, token.Ident, "struct declaration")
	if err != nil {
		return nil, err
	}
	if _, err := consume(s, token.LBrace, "struct declaration"); err != nil {
		return nil, err
	}

	var fields []ast.StructFieldDecl
	for !peekKind(s, token.RBrace) {
		fieldName, err := consume(s, token.Ident, "struct field")
		if err != nil {
			return nil, err
		}
		if _, err := consume(s, token.Colon, "struct field"); err != nil {
			return nil, err
		}
		tn, err := parseTypeName(s)
		if err != nil {
			return nil, err
		}
		semi, err := consume(s, token.Semicolon, "struct field")
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructFieldDecl{
			Name:     fieldName.Text,
			TypeName: tn,
			Pos:      fieldName.Span.Merge(semi.Span),
		})
	}

	closeTok, err := consume(s, token.RBrace, "struct declaration")
	if err != nil {
		return nil, err
	}

	return &ast.StructDeclaration[ast.Unit]{
		Name:   ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span},
		Fields: fields,
		Pos:    structTok.Span.Merge(closeTok.Span),
	}, nil
}

func parseReturn(s *state.State) (*ast.Return[ast.Unit], error) {
	retTok, err := consume(s, token.Return, "return statement")
	if err != nil {
		return nil, err
	}
	value, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	semi, err := consume(s, token.Semicolon, "return statement")
	if err != nil {
		return nil, err
	}
	return &ast.Return[ast.Unit]{Expr: value, Pos: retTok.Span.Merge(semi.Span)}, nil
}

// parseAssignmentOrExpression parses Assignment behind a checkpoint (it
// conflicts with an identifier-starting expression), restoring on failure
// and falling through to a plain Expression/YieldingExpression.
func parseAssignmentOrExpression(s *state.State) (ast.Statement[ast.Unit], error) {
	cp := s.Checkpoint()
	if assign, err := tryParseAssignment(s); err == nil {
		return assign, nil
	}
	s.Restore(cp)

	expr, err := parseExpression(s)
	if err != nil {
		return nil, err
	}

	if peekKind(s, token.Semicolon) {
		semi, _ := s.Next()
		return &ast.ExpressionStatement[ast.Unit]{Expr: expr, Pos: expr.GetSpan().Merge(semi.Span)}, nil
	}
	return &ast.YieldingExpression[ast.Unit]{Expr: expr, Pos: expr.GetSpan()}, nil
}

func tryParseAssignment(s *state.State) (*ast.Assignment[ast.Unit], error) {
	nameTok, err := consume(s, token.Ident, "assignment")
	if err != nil {
		return nil, err
	}
	if _, err := consume(s, token.Assign, "assignment"); err != nil {
		return nil, err
	}
	value, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	semi, err := consume(s, token.Semicolon, "assignment")
	if err != nil {
		return nil, err
	}
	return &ast.Assignment[ast.Unit]{
		Id:    ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span},
		Value: value,
		Pos:   nameTok.Span.Merge(semi.Span),
	}, nil
}
