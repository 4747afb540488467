package ast

// Revert rebuilds a tree with Unit metadata, discarding whatever metadata
// M the pipeline attached. Test suites use it to assert that a pass only
// changed metadata: reverting a checked tree must reproduce the parsed
// one node for node. Go methods cannot introduce a fresh type parameter,
// so these live as package-level functions rather than per-node methods.

// RevertProgram strips every statement of prog.
func RevertProgram[M any](prog Program[M]) Program[Unit] {
	stmts := make([]Statement[Unit], len(prog.Statements))
	for i, s := range prog.Statements {
		stmts[i] = RevertStatement(s)
	}
	return Program[Unit]{Statements: stmts}
}

// RevertStatement strips one statement and everything beneath it.
func RevertStatement[M any](stmt Statement[M]) Statement[Unit] {
	switch n := stmt.(type) {
	case *Function[M]:
		return revertFunction(n)
	case *If[M]:
		return revertIf(n)
	case *WhileLoop[M]:
		return &WhileLoop[Unit]{
			Condition: RevertExpression(n.Condition),
			Body:      revertBlock(n.Body),
			Pos:       n.Pos,
		}
	case *Initialisation[M]:
		return &Initialisation[Unit]{
			Id:       revertId(n.Id),
			Mutable:  n.Mutable,
			TypeName: n.TypeName,
			Value:    RevertExpression(n.Value),
			Pos:      n.Pos,
		}
	case *Constant[M]:
		return &Constant[Unit]{
			Id:       revertId(n.Id),
			TypeName: n.TypeName,
			Value:    RevertExpression(n.Value),
			Pos:      n.Pos,
		}
	case *Assignment[M]:
		return &Assignment[Unit]{Id: revertId(n.Id), Value: RevertExpression(n.Value), Pos: n.Pos}
	case *ExpressionStatement[M]:
		return &ExpressionStatement[Unit]{Expr: RevertExpression(n.Expr), Pos: n.Pos}
	case *YieldingExpression[M]:
		return &YieldingExpression[Unit]{Expr: RevertExpression(n.Expr), Pos: n.Pos}
	case *Return[M]:
		return &Return[Unit]{Expr: RevertExpression(n.Expr), Pos: n.Pos}
	case *Declaration[M]:
		return &Declaration[Unit]{Id: revertId(n.Id), TypeName: n.TypeName, Pos: n.Pos}
	case *StructDeclaration[M]:
		return &StructDeclaration[Unit]{Name: revertId(n.Name), Fields: n.Fields, Pos: n.Pos}
	case *Comment[M]:
		return &Comment[Unit]{Text: n.Text, Pos: n.Pos}
	default:
		panic("ast: RevertStatement on unhandled statement")
	}
}

// RevertExpression strips one expression and everything beneath it.
func RevertExpression[M any](expr Expression[M]) Expression[Unit] {
	switch n := expr.(type) {
	case *Id[M]:
		id := revertId(*n)
		return &id
	case *Num[M]:
		return &Num[Unit]{Kind: n.Kind, IntVal: n.IntVal, FltVal: n.FltVal, Pos: n.Pos}
	case *Function[M]:
		return revertFunction(n)
	case *Lambda[M]:
		params := make([]LambdaParameter[Unit], len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = LambdaParameter[Unit]{Name: revertId(p.Name), TypeName: p.TypeName, Pos: p.Pos}
		}
		return &Lambda[Unit]{Parameters: params, Body: RevertExpression(n.Body), Pos: n.Pos}
	case *If[M]:
		return revertIf(n)
	case *Block[M]:
		b := revertBlock(*n)
		return &b
	case *Parens[M]:
		return &Parens[Unit]{Inner: RevertExpression(n.Inner), Pos: n.Pos}
	case *Postfix[M]:
		out := &Postfix[Unit]{Kind: n.Kind, Target: RevertExpression(n.Target), Field: n.Field, FieldPos: n.FieldPos, Pos: n.Pos}
		if n.Args != nil {
			out.Args = make([]Expression[Unit], len(n.Args))
			for i, a := range n.Args {
				out.Args[i] = RevertExpression(a)
			}
		}
		if n.Index != nil {
			out.Index = RevertExpression(n.Index)
		}
		return out
	case *Prefix[M]:
		return &Prefix[Unit]{Op: n.Op, Operand: RevertExpression(n.Operand), Pos: n.Pos}
	case *Binary[M]:
		return &Binary[Unit]{Op: n.Op, Left: RevertExpression(n.Left), Right: RevertExpression(n.Right), Pos: n.Pos}
	case *Array[M]:
		out := &Array[Unit]{Pos: n.Pos}
		if n.Default != nil {
			out.Default = RevertExpression(n.Default)
			out.Count = RevertExpression(n.Count)
			return out
		}
		if n.Elements != nil {
			out.Elements = make([]Expression[Unit], len(n.Elements))
			for i, e := range n.Elements {
				out.Elements[i] = RevertExpression(e)
			}
		}
		return out
	case *StructInitialisation[M]:
		fields := make([]StructFieldValue[Unit], len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = StructFieldValue[Unit]{Name: f.Name, Value: RevertExpression(f.Value), Pos: f.Pos}
		}
		return &StructInitialisation[Unit]{Name: revertId(n.Name), Fields: fields, Pos: n.Pos}
	default:
		panic("ast: RevertExpression on unhandled expression")
	}
}

func revertId[M any](id Id[M]) Id[Unit] {
	return Id[Unit]{Name: id.Name, Pos: id.Pos}
}

func revertBlock[M any](b Block[M]) Block[Unit] {
	stmts := make([]Statement[Unit], len(b.Statements))
	for i, s := range b.Statements {
		stmts[i] = RevertStatement(s)
	}
	return Block[Unit]{Statements: stmts, Pos: b.Pos}
}

func revertIf[M any](n *If[M]) *If[Unit] {
	out := &If[Unit]{
		Condition: RevertExpression(n.Condition),
		Then:      revertBlock(n.Then),
		Pos:       n.Pos,
	}
	if n.Else != nil {
		eb := revertBlock(*n.Else)
		out.Else = &eb
	}
	return out
}

func revertFunction[M any](fn *Function[M]) *Function[Unit] {
	var name *Id[Unit]
	if fn.Name != nil {
		id := revertId(*fn.Name)
		name = &id
	}
	params := make([]Parameter[Unit], len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = Parameter[Unit]{Name: revertId(p.Name), TypeName: p.TypeName, Pos: p.Pos}
	}
	body := make([]Statement[Unit], len(fn.Body))
	for i, s := range fn.Body {
		body[i] = RevertStatement(s)
	}
	return &Function[Unit]{Name: name, Parameters: params, ReturnType: fn.ReturnType, Body: body, Pos: fn.Pos}
}
