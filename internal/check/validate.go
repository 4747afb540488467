package check

import (
	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/types"
)

// Validate walks a checked tree and confirms every cell landed on a
// concrete type, freezing the result into ValidatedTypeInfo. The first
// still-Unknown cell it finds aborts with UnresolvedType; this is where
// the genuinely unresolvable cases (a function whose Return stayed
// Unknown because its body never aliased a parameter cell directly, an
// empty array with nothing to infer an element type from) surface as a
// user-facing error rather than a panic deeper in the pipeline.
func Validate(prog ast.Program[TypeInfo]) (ast.Program[ValidatedTypeInfo], error) {
	v := &validator{}
	stmts := make([]ast.Statement[ValidatedTypeInfo], 0, len(prog.Statements))
	for _, s := range prog.Statements {
		vs, err := v.statement(s)
		if err != nil {
			return ast.Program[ValidatedTypeInfo]{}, err
		}
		stmts = append(stmts, vs)
	}
	return ast.Program[ValidatedTypeInfo]{Statements: stmts}, nil
}

type validator struct{}

func (v *validator) freeze(info TypeInfo, at ast.Span) (ValidatedTypeInfo, error) {
	if !info.Resolved() || types.ContainsUnknown(info.Type()) {
		return ValidatedTypeInfo{}, errUnresolvedType(at)
	}
	return ValidatedTypeInfo{Type: info.Type(), Context: info.Context}, nil
}

func (v *validator) id(n *ast.Id[TypeInfo]) (*ast.Id[ValidatedTypeInfo], error) {
	info, err := v.freeze(n.Info, n.Pos)
	if err != nil {
		return nil, err
	}
	return &ast.Id[ValidatedTypeInfo]{Name: n.Name, Info: info, Pos: n.Pos}, nil
}

func (v *validator) statement(stmt ast.Statement[TypeInfo]) (ast.Statement[ValidatedTypeInfo], error) {
	switch n := stmt.(type) {
	case *ast.Function[TypeInfo]:
		return v.function(n)
	case *ast.If[TypeInfo]:
		return v.ifNode(n)
	case *ast.WhileLoop[TypeInfo]:
		cond, err := v.expression(n.Condition)
		if err != nil {
			return nil, err
		}
		body, err := v.block(n.Body)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.WhileLoop[ValidatedTypeInfo]{Condition: cond, Body: body, Info: info, Pos: n.Pos}, nil

	case *ast.Initialisation[TypeInfo]:
		id, err := v.id(&n.Id)
		if err != nil {
			return nil, err
		}
		value, err := v.expression(n.Value)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Initialisation[ValidatedTypeInfo]{
			Id: *id, Mutable: n.Mutable, TypeName: n.TypeName, Value: value, Info: info, Pos: n.Pos,
		}, nil

	case *ast.Constant[TypeInfo]:
		id, err := v.id(&n.Id)
		if err != nil {
			return nil, err
		}
		value, err := v.expression(n.Value)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Constant[ValidatedTypeInfo]{Id: *id, TypeName: n.TypeName, Value: value, Info: info, Pos: n.Pos}, nil

	case *ast.Assignment[TypeInfo]:
		id, err := v.id(&n.Id)
		if err != nil {
			return nil, err
		}
		value, err := v.expression(n.Value)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment[ValidatedTypeInfo]{Id: *id, Value: value, Info: info, Pos: n.Pos}, nil

	case *ast.ExpressionStatement[TypeInfo]:
		e, err := v.expression(n.Expr)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement[ValidatedTypeInfo]{Expr: e, Info: info, Pos: n.Pos}, nil

	case *ast.YieldingExpression[TypeInfo]:
		e, err := v.expression(n.Expr)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.YieldingExpression[ValidatedTypeInfo]{Expr: e, Info: info, Pos: n.Pos}, nil

	case *ast.Return[TypeInfo]:
		e, err := v.expression(n.Expr)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Return[ValidatedTypeInfo]{Expr: e, Info: info, Pos: n.Pos}, nil

	case *ast.Declaration[TypeInfo]:
		id, err := v.id(&n.Id)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Declaration[ValidatedTypeInfo]{Id: *id, TypeName: n.TypeName, Info: info, Pos: n.Pos}, nil

	case *ast.StructDeclaration[TypeInfo]:
		name, err := v.id(&n.Name)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.StructDeclaration[ValidatedTypeInfo]{Name: *name, Fields: n.Fields, Info: info, Pos: n.Pos}, nil

	case *ast.Comment[TypeInfo]:
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Comment[ValidatedTypeInfo]{Text: n.Text, Info: info, Pos: n.Pos}, nil

	default:
		return nil, errUnresolvedType(stmt.GetSpan())
	}
}

func (v *validator) expression(expr ast.Expression[TypeInfo]) (ast.Expression[ValidatedTypeInfo], error) {
	switch n := expr.(type) {
	case *ast.Id[TypeInfo]:
		return v.id(n)

	case *ast.Num[TypeInfo]:
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Num[ValidatedTypeInfo]{Kind: n.Kind, IntVal: n.IntVal, FltVal: n.FltVal, Info: info, Pos: n.Pos}, nil

	case *ast.Function[TypeInfo]:
		return v.function(n)

	case *ast.Lambda[TypeInfo]:
		params := make([]ast.LambdaParameter[ValidatedTypeInfo], len(n.Parameters))
		for i, p := range n.Parameters {
			id, err := v.id(&p.Name)
			if err != nil {
				return nil, err
			}
			info, err := v.freeze(p.Info, p.Pos)
			if err != nil {
				return nil, err
			}
			params[i] = ast.LambdaParameter[ValidatedTypeInfo]{Name: *id, TypeName: p.TypeName, Info: info, Pos: p.Pos}
		}
		body, err := v.expression(n.Body)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Lambda[ValidatedTypeInfo]{Parameters: params, Body: body, Info: info, Pos: n.Pos}, nil

	case *ast.If[TypeInfo]:
		return v.ifNode(n)

	case *ast.Block[TypeInfo]:
		b, err := v.block(*n)
		if err != nil {
			return nil, err
		}
		return &b, nil

	case *ast.Parens[TypeInfo]:
		inner, err := v.expression(n.Inner)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Parens[ValidatedTypeInfo]{Inner: inner, Info: info, Pos: n.Pos}, nil

	case *ast.Postfix[TypeInfo]:
		target, err := v.expression(n.Target)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		out := &ast.Postfix[ValidatedTypeInfo]{Kind: n.Kind, Target: target, Field: n.Field, FieldPos: n.FieldPos, Info: info, Pos: n.Pos}
		if n.Kind == ast.Call {
			args := make([]ast.Expression[ValidatedTypeInfo], len(n.Args))
			for i, a := range n.Args {
				va, err := v.expression(a)
				if err != nil {
					return nil, err
				}
				args[i] = va
			}
			out.Args = args
		}
		if n.Kind == ast.Index {
			idx, err := v.expression(n.Index)
			if err != nil {
				return nil, err
			}
			out.Index = idx
		}
		return out, nil

	case *ast.Prefix[TypeInfo]:
		operand, err := v.expression(n.Operand)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Prefix[ValidatedTypeInfo]{Op: n.Op, Operand: operand, Info: info, Pos: n.Pos}, nil

	case *ast.Binary[TypeInfo]:
		left, err := v.expression(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := v.expression(n.Right)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Binary[ValidatedTypeInfo]{Op: n.Op, Left: left, Right: right, Info: info, Pos: n.Pos}, nil

	case *ast.Array[TypeInfo]:
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		out := &ast.Array[ValidatedTypeInfo]{Info: info, Pos: n.Pos}
		if n.Default != nil {
			def, err := v.expression(n.Default)
			if err != nil {
				return nil, err
			}
			count, err := v.expression(n.Count)
			if err != nil {
				return nil, err
			}
			out.Default, out.Count = def, count
			return out, nil
		}
		elems := make([]ast.Expression[ValidatedTypeInfo], len(n.Elements))
		for i, e := range n.Elements {
			ve, err := v.expression(e)
			if err != nil {
				return nil, err
			}
			elems[i] = ve
		}
		out.Elements = elems
		return out, nil

	case *ast.StructInitialisation[TypeInfo]:
		name, err := v.id(&n.Name)
		if err != nil {
			return nil, err
		}
		fields := make([]ast.StructFieldValue[ValidatedTypeInfo], len(n.Fields))
		for i, f := range n.Fields {
			value, err := v.expression(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.StructFieldValue[ValidatedTypeInfo]{Name: f.Name, Value: value, Pos: f.Pos}
		}
		info, err := v.freeze(n.Info, n.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.StructInitialisation[ValidatedTypeInfo]{Name: *name, Fields: fields, Info: info, Pos: n.Pos}, nil

	default:
		return nil, errUnresolvedType(expr.GetSpan())
	}
}

func (v *validator) ifNode(n *ast.If[TypeInfo]) (*ast.If[ValidatedTypeInfo], error) {
	cond, err := v.expression(n.Condition)
	if err != nil {
		return nil, err
	}
	then, err := v.block(n.Then)
	if err != nil {
		return nil, err
	}
	var elseBlk *ast.Block[ValidatedTypeInfo]
	if n.Else != nil {
		eb, err := v.block(*n.Else)
		if err != nil {
			return nil, err
		}
		elseBlk = &eb
	}
	info, err := v.freeze(n.Info, n.Pos)
	if err != nil {
		return nil, err
	}
	return &ast.If[ValidatedTypeInfo]{Condition: cond, Then: then, Else: elseBlk, Info: info, Pos: n.Pos}, nil
}

func (v *validator) block(b ast.Block[TypeInfo]) (ast.Block[ValidatedTypeInfo], error) {
	stmts := make([]ast.Statement[ValidatedTypeInfo], len(b.Statements))
	for i, s := range b.Statements {
		vs, err := v.statement(s)
		if err != nil {
			return ast.Block[ValidatedTypeInfo]{}, err
		}
		stmts[i] = vs
	}
	info, err := v.freeze(b.Info, b.Pos)
	if err != nil {
		return ast.Block[ValidatedTypeInfo]{}, err
	}
	return ast.Block[ValidatedTypeInfo]{Statements: stmts, Info: info, Pos: b.Pos}, nil
}

func (v *validator) function(n *ast.Function[TypeInfo]) (*ast.Function[ValidatedTypeInfo], error) {
	var name *ast.Id[ValidatedTypeInfo]
	if n.Name != nil {
		id, err := v.id(n.Name)
		if err != nil {
			return nil, err
		}
		name = id
	}

	params := make([]ast.Parameter[ValidatedTypeInfo], len(n.Parameters))
	for i, p := range n.Parameters {
		id, err := v.id(&p.Name)
		if err != nil {
			return nil, err
		}
		info, err := v.freeze(p.Info, p.Pos)
		if err != nil {
			return nil, err
		}
		params[i] = ast.Parameter[ValidatedTypeInfo]{Name: *id, TypeName: p.TypeName, Info: info, Pos: p.Pos}
	}

	body := make([]ast.Statement[ValidatedTypeInfo], len(n.Body))
	for i, s := range n.Body {
		vs, err := v.statement(s)
		if err != nil {
			return nil, err
		}
		body[i] = vs
	}

	info, err := v.freeze(n.Info, n.Pos)
	if err != nil {
		return nil, err
	}

	return &ast.Function[ValidatedTypeInfo]{
		Name: name, Parameters: params, ReturnType: n.ReturnType, Body: body, Info: info, Pos: n.Pos,
	}, nil
}
