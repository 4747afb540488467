package parser

import (
	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/parser/comb"
	"github.com/whylang/whyc/internal/parser/state"
	"github.com/whylang/whyc/internal/token"
)

var binaryOps = map[token.Kind]ast.BinaryOp{
	token.Plus:  ast.Add,
	token.Minus: ast.Sub,
	token.Star:  ast.Mul,
	token.Eq:    ast.Equals,
	token.Lt:    ast.LessThan,
	token.Gt:    ast.GreaterThan,
	token.Le:    ast.LessEq,
	token.Ge:    ast.GreaterEq,
}

// parseExpression is the Pratt-style entry point: a
// leading-token-selected primary, postfix chaining, then an optional
// binary tail built right-associatively and immediately rebalanced for
// precedence.
func parseExpression(s *state.State) (ast.Expression[ast.Unit], error) {
	left, err := parsePostfixChain(s)
	if err != nil {
		return nil, err
	}

	tok, ok := s.Peek()
	if !ok {
		return left, nil
	}
	op, isBinary := binaryOps[tok.Kind]
	if !isBinary {
		return left, nil
	}
	s.Next()

	right, err := parseExpression(s)
	if err != nil {
		return nil, err
	}

	bin := &ast.Binary[ast.Unit]{
		Op:    op,
		Left:  left,
		Right: right,
		Pos:   left.GetSpan().Merge(right.GetSpan()),
	}
	return balance(bin), nil
}

// balance recursively rebalances a right-leaning Binary tree so that every
// node satisfies precedence(op) <= precedence(root-op-of-left), rotating
// right whenever the current operator's precedence is >= its right
// child's: equal precedence stays left-associative.
func balance(e ast.Expression[ast.Unit]) ast.Expression[ast.Unit] {
	bin, ok := e.(*ast.Binary[ast.Unit])
	if !ok {
		return e
	}

	bin.Left = balance(bin.Left)
	bin.Right = balance(bin.Right)

	rightBin, ok := bin.Right.(*ast.Binary[ast.Unit])
	if !ok || bin.Op.Precedence() < rightBin.Op.Precedence() {
		return bin
	}

	rotated := &ast.Binary[ast.Unit]{
		Op: rightBin.Op,
		Left: &ast.Binary[ast.Unit]{
			Op:    bin.Op,
			Left:  bin.Left,
			Right: rightBin.Left,
			Pos:   bin.Left.GetSpan().Merge(rightBin.Left.GetSpan()),
		},
		Right: rightBin.Right,
		Pos:   bin.Pos,
	}
	return balance(rotated)
}

// parsePostfixChain parses a primary then chains zero or more postfix
// operators (`(`, `[`, `.`), left-associatively.
func parsePostfixChain(s *state.State) (ast.Expression[ast.Unit], error) {
	expr, err := parsePrimary(s)
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := s.Peek()
		if !ok {
			return expr, nil
		}

		switch tok.Kind {
		case token.LParen:
			s.Next()
			args, err := parseArgList(s)
			if err != nil {
				return nil, err
			}
			closeTok, err := consume(s, token.RParen, "call arguments")
			if err != nil {
				return nil, err
			}
			expr = &ast.Postfix[ast.Unit]{
				Kind:   ast.Call,
				Target: expr,
				Args:   args,
				Pos:    expr.GetSpan().Merge(closeTok.Span),
			}

		case token.LBracket:
			s.Next()
			idx, err := parseExpression(s)
			if err != nil {
				return nil, err
			}
			closeTok, err := consume(s, token.RBracket, "index expression")
			if err != nil {
				return nil, err
			}
			expr = &ast.Postfix[ast.Unit]{
				Kind:   ast.Index,
				Target: expr,
				Index:  idx,
				Pos:    expr.GetSpan().Merge(closeTok.Span),
			}

		case token.Dot:
			s.Next()
			field, err := consume(s, token.Ident, "property access")
			if err != nil {
				return nil, err
			}
			expr = &ast.Postfix[ast.Unit]{
				Kind:     ast.PropertyAccess,
				Target:   expr,
				Field:    field.Text,
				FieldPos: field.Span,
				Pos:      expr.GetSpan().Merge(field.Span),
			}

		default:
			return expr, nil
		}
	}
}

// parseArgList reads a comma-separated, possibly empty argument list via
// comb.SepBy, stopping without consuming `)`.
func parseArgList(s *state.State) ([]ast.Expression[ast.Unit], error) {
	exprComb := comb.Wrap(func(s *state.State) (comb.Frag, error) {
		return parseExpression(s)
	})

	frags, err := comb.SepBy(exprComb, comb.Terminal(token.Comma)).Parse(s)
	if err != nil {
		return nil, err
	}

	args := make([]ast.Expression[ast.Unit], len(frags))
	for i, f := range frags {
		args[i] = f.(ast.Expression[ast.Unit])
	}
	return args, nil
}

// parsePrimary dispatches on the leading token: parenthesised, unary
// prefix, function/lambda, if, block, struct-init, array, literal,
// identifier.
func parsePrimary(s *state.State) (ast.Expression[ast.Unit], error) {
	tok, ok := s.Peek()
	if !ok {
		return nil, state.EOF("expression")
	}

	switch tok.Kind {
	case token.LParen:
		return parseParensExpr(s)
	case token.Minus:
		return parsePrefixExpr(s, ast.Neg)
	case token.Bang:
		return parsePrefixExpr(s, ast.Not)
	case token.Fn:
		return parseFunctionExpr(s)
	case token.Backslash:
		return parseLambda(s)
	case token.If:
		return parseIfExpr(s)
	case token.LBrace:
		blk, err := parseBlock(s)
		if err != nil {
			return nil, err
		}
		return blk, nil
	case token.LBracket:
		return parseArrayExpr(s)
	case token.Integer:
		s.Next()
		return &ast.Num[ast.Unit]{Kind: ast.IntegerNum, IntVal: tok.Int, Pos: tok.Span}, nil
	case token.Float:
		s.Next()
		return &ast.Num[ast.Unit]{Kind: ast.FloatNum, FltVal: tok.Float, Pos: tok.Span}, nil
	case token.Ident:
		if peekKindAt(s, 1, token.LBrace) {
			return parseStructInitialisation(s)
		}
		s.Next()
		return &ast.Id[ast.Unit]{Name: tok.Text, Pos: tok.Span}, nil
	}

	err := state.Expected(label("expression"), tok)
	s.Record(err, s.Pos())
	return nil, err
}

func parseParensExpr(s *state.State) (ast.Expression[ast.Unit], error) {
	open, err := consume(s, token.LParen, "parenthesised expression")
	if err != nil {
		return nil, err
	}
	inner, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	closeTok, err := consume(s, token.RParen, "parenthesised expression")
	if err != nil {
		return nil, err
	}
	return &ast.Parens[ast.Unit]{Inner: inner, Pos: open.Span.Merge(closeTok.Span)}, nil
}

func parsePrefixExpr(s *state.State, op ast.PrefixOp) (ast.Expression[ast.Unit], error) {
	opTok, _ := s.Next()
	operand, err := parsePostfixChain(s)
	if err != nil {
		return nil, err
	}
	return &ast.Prefix[ast.Unit]{Op: op, Operand: operand, Pos: opTok.Span.Merge(operand.GetSpan())}, nil
}

// parseArrayExpr parses `[e1, e2, ...]` or the default-filled form
// `[default; count]`.
func parseArrayExpr(s *state.State) (ast.Expression[ast.Unit], error) {
	open, err := consume(s, token.LBracket, "array literal")
	if err != nil {
		return nil, err
	}

	if peekKind(s, token.RBracket) {
		closeTok, _ := consume(s, token.RBracket, "array literal")
		return &ast.Array[ast.Unit]{Pos: open.Span.Merge(closeTok.Span)}, nil
	}

	first, err := parseExpression(s)
	if err != nil {
		return nil, err
	}

	if peekKind(s, token.Semicolon) {
		s.Next()
		count, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		closeTok, err := consume(s, token.RBracket, "array literal")
		if err != nil {
			return nil, err
		}
		return &ast.Array[ast.Unit]{Default: first, Count: count, Pos: open.Span.Merge(closeTok.Span)}, nil
	}

	elems := []ast.Expression[ast.Unit]{first}
	for peekKind(s, token.Comma) {
		s.Next()
		if peekKind(s, token.RBracket) {
			break
		}
		e, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}

	closeTok, err := consume(s, token.RBracket, "array literal")
	if err != nil {
		return nil, err
	}
	return &ast.Array[ast.Unit]{Elements: elems, Pos: open.Span.Merge(closeTok.Span)}, nil
}

// parseStructInitialisation is `Name { field: value, ... }`.
func parseStructInitialisation(s *state.State) (ast.Expression[ast.Unit], error) {
	nameTok, err := consume(s, token.Ident, "struct initialisation")
	if err != nil {
		return nil, err
	}
	name := ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span}

	if _, err := consume(s, token.LBrace, "struct initialisation"); err != nil {
		return nil, err
	}

	var fields []ast.StructFieldValue[ast.Unit]
	for !peekKind(s, token.RBrace) {
		fieldTok, err := consume(s, token.Ident, "struct field")
		if err != nil {
			return nil, err
		}
		if _, err := consume(s, token.Colon, "struct field"); err != nil {
			return nil, err
		}
		value, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructFieldValue[ast.Unit]{
			Name:  fieldTok.Text,
			Value: value,
			Pos:   fieldTok.Span.Merge(value.GetSpan()),
		})
		if peekKind(s, token.Comma) {
			s.Next()
			continue
		}
		break
	}

	closeTok, err := consume(s, token.RBrace, "struct initialisation")
	if err != nil {
		return nil, err
	}

	return &ast.StructInitialisation[ast.Unit]{
		Name:   name,
		Fields: fields,
		Pos:    nameTok.Span.Merge(closeTok.Span),
	}, nil
}

// parseIfExpr parses `if cond { ... } (else { ... })?`, usable both as an
// expression and, by its caller, as a statement.
func parseIfExpr(s *state.State) (*ast.If[ast.Unit], error) {
	ifTok, err := consume(s, token.If, "if expression")
	if err != nil {
		return nil, err
	}

	cond, err := parseExpression(s)
	if err != nil {
		return nil, err
	}

	then, err := parseBlock(s)
	if err != nil {
		return nil, err
	}

	end := then.GetSpan()
	var elseBlock *ast.Block[ast.Unit]
	if peekKind(s, token.Else) {
		s.Next()
		blk, err := parseBlock(s)
		if err != nil {
			return nil, err
		}
		elseBlock = blk
		end = blk.GetSpan()
	}

	return &ast.If[ast.Unit]{
		Condition: cond,
		Then:      *then,
		Else:      elseBlock,
		Pos:       ifTok.Span.Merge(end),
	}, nil
}

// parseBlock is `{ statements }`, read via comb.RepUntil: zero or more
// statements until the closing brace matches, which RepUntil itself
// consumes.
func parseBlock(s *state.State) (*ast.Block[ast.Unit], error) {
	open, err := consume(s, token.LBrace, "block")
	if err != nil {
		return nil, err
	}

	stmtComb := comb.Wrap(func(s *state.State) (comb.Frag, error) {
		if s.AtEOF() {
			return nil, state.EOF("block")
		}
		return parseStatement(s)
	})

	var closeSpan ast.Span
	endComb := comb.Wrap(func(s *state.State) (comb.Frag, error) {
		tok, err := consume(s, token.RBrace, "block")
		if err != nil {
			return nil, err
		}
		closeSpan = tok.Span
		return tok, nil
	})

	frags, err := comb.RepUntil(stmtComb, endComb).Parse(s)
	if err != nil {
		return nil, err
	}

	stmts := make([]ast.Statement[ast.Unit], 0, len(frags))
	for _, f := range frags {
		if stmt, ok := f.(ast.Statement[ast.Unit]); ok {
			stmts = append(stmts, stmt)
		}
	}

	return &ast.Block[ast.Unit]{Statements: stmts, Pos: open.Span.Merge(closeSpan)}, nil
}

// parseLambda is `\(params) => body`; parameter type annotations may be
// elided.
func parseLambda(s *state.State) (*ast.Lambda[ast.Unit], error) {
	slash, err := consume(s, token.Backslash, "lambda")
	if err != nil {
		return nil, err
	}
	if _, err := consume(s, token.LParen, "lambda parameters"); err != nil {
		return nil, err
	}

	var params []ast.LambdaParameter[ast.Unit]
	if !peekKind(s, token.RParen) {
		for {
			nameTok, err := consume(s, token.Ident, "lambda parameter")
			if err != nil {
				return nil, err
			}
			param := ast.LambdaParameter[ast.Unit]{
				Name: ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span},
				Pos:  nameTok.Span,
			}
			if peekKind(s, token.Colon) {
				s.Next()
				tn, err := parseTypeName(s)
				if err != nil {
					return nil, err
				}
				param.TypeName = tn
				param.Pos = param.Pos.Merge(tn.GetSpan())
			}
			params = append(params, param)
			if peekKind(s, token.Comma) {
				s.Next()
				continue
			}
			break
		}
	}

	if _, err := consume(s, token.RParen, "lambda parameters"); err != nil {
		return nil, err
	}
	if _, err := consume(s, token.FatArrow, "lambda"); err != nil {
		return nil, err
	}

	body, err := parseExpression(s)
	if err != nil {
		return nil, err
	}

	return &ast.Lambda[ast.Unit]{Parameters: params, Body: body, Pos: slash.Span.Merge(body.GetSpan())}, nil
}

// parseParameters parses a `(name: Type, ...)` list shared by top-level
// and anonymous Function declarations.
func parseParameters(s *state.State) ([]ast.Parameter[ast.Unit], error) {
	if _, err := consume(s, token.LParen, "function parameters"); err != nil {
		return nil, err
	}

	var params []ast.Parameter[ast.Unit]
	if !peekKind(s, token.RParen) {
		for {
			nameTok, err := consume(s, token.Ident, "function parameter")
			if err != nil {
				return nil, err
			}
			if _, err := consume(s, token.Colon, "function parameter"); err != nil {
				return nil, err
			}
			tn, err := parseTypeName(s)
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Parameter[ast.Unit]{
				Name:     ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span},
				TypeName: tn,
				Pos:      nameTok.Span.Merge(tn.GetSpan()),
			})
			if peekKind(s, token.Comma) {
				s.Next()
				continue
			}
			break
		}
	}

	if _, err := consume(s, token.RParen, "function parameters"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseFunctionExpr/parseFunction share the grammar
// `'fn' id? '(' params? ')' ':' ReturnType '{' statements '}'`; the name
// is required only at top level.
func parseFunctionExpr(s *state.State) (*ast.Function[ast.Unit], error) {
	return parseFunction(s, false)
}

func parseFunction(s *state.State, requireName bool) (*ast.Function[ast.Unit], error) {
	fnTok, err := consume(s, token.Fn, "function")
	if err != nil {
		return nil, err
	}

	var name *ast.Id[ast.Unit]
	if peekKind(s, token.Ident) {
		nameTok, _ := s.Next()
		name = &ast.Id[ast.Unit]{Name: nameTok.Text, Pos: nameTok.Span}
	} else if requireName {
		tok, _ := s.Peek()
		return nil, state.Expected(token.Ident, tok)
	}

	params, err := parseParameters(s)
	if err != nil {
		return nil, err
	}

	if _, err := consume(s, token.Colon, "function return type"); err != nil {
		return nil, err
	}
	ret, err := parseTypeName(s)
	if err != nil {
		return nil, err
	}

	body, err := parseBlock(s)
	if err != nil {
		return nil, err
	}

	return &ast.Function[ast.Unit]{
		Name:       name,
		Parameters: params,
		ReturnType: ret,
		Body:       body.Statements,
		Pos:        fnTok.Span.Merge(body.GetSpan()),
	}, nil
}
