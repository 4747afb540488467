package check

import (
	"fmt"

	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/scope"
	"github.com/whylang/whyc/internal/types"
)

// funcShape links a Function/Lambda's own signature cell back to the
// live parameter and return cells its body was checked against, so a
// later call site that refines the signature cell (via updateType) can
// push that refinement down into the parameters, and read the result of
// that push back out of the body. Deeper propagation into a body
// expression that merely *derives* from a parameter (rather than
// aliasing its cell directly, as a bare parameter reference does) is
// left unresolved, surfacing later as UnresolvedType at validation.
type funcShape struct {
	paramCells []*scope.Cell
	returnCell *scope.Cell
}

type checker struct {
	sc          *scope.Scope
	funcShapes  map[*scope.Cell]*funcShape
	returnStack []*scope.Cell
}

// Check runs a deep bottom-up pass over every top-level statement in
// prog, assuming sc has already been populated by Shallow. It rebuilds
// the tree with TypeInfo metadata; the first type error aborts the
// whole pass.
func Check(prog ast.Program[ast.Unit], sc *scope.Scope) (ast.Program[TypeInfo], error) {
	c := &checker{sc: sc, funcShapes: make(map[*scope.Cell]*funcShape)}

	stmts := make([]ast.Statement[TypeInfo], 0, len(prog.Statements))
	for _, s := range prog.Statements {
		cs, err := c.checkTopLevel(s)
		if err != nil {
			return ast.Program[TypeInfo]{}, err
		}
		stmts = append(stmts, cs)
	}
	return ast.Program[TypeInfo]{Statements: stmts}, nil
}

// updateType is the unification primitive: it unifies cell's current
// type with t and stores the (possibly more refined) result back. If
// cell is a Function signature with a recorded funcShape, it also pushes
// the refined parameter types down into the live parameter cells, so
// every aliased site (including a parameter's own Id references inside
// the body) observes the update.
// Afterwards the signature is re-read from the live cells: a body that
// aliases a parameter cell directly (a bare parameter reference) has its
// refinement flow back into the return position too.
func (c *checker) updateType(cell *scope.Cell, t types.Type) error {
	refined, err := types.Unify(cell.Get(), t)
	if err != nil {
		return err
	}
	cell.Set(refined)

	if shape, ok := c.funcShapes[cell]; ok && refined.Kind == types.Function {
		for i, pc := range shape.paramCells {
			if i >= len(refined.Params) {
				break
			}
			if err := c.updateType(pc, refined.Params[i]); err != nil {
				return err
			}
		}
		if shape.returnCell != nil && refined.Return != nil && refined.Return.Kind != types.Unknown {
			if err := c.updateType(shape.returnCell, *refined.Return); err != nil {
				return err
			}
		}

		params := make([]types.Type, len(shape.paramCells))
		for i, pc := range shape.paramCells {
			params[i] = pc.Get()
		}
		ret := types.NewUnknown()
		if shape.returnCell != nil {
			ret = shape.returnCell.Get()
		} else if refined.Return != nil {
			ret = *refined.Return
		}
		cell.Set(types.NewFunction(params, ret))
	}
	return nil
}

// ===== Top-level dispatch =====

// checkTopLevel handles the TopLevelStatement variants that Shallow
// already pre-registered (StructDeclaration, Declaration, Function,
// Constant), resolving their already-bound cell/type rather than
// re-registering; everything else (Initialisation, Comment) behaves
// exactly as it would nested, so it falls through to checkStatement.
func (c *checker) checkTopLevel(stmt ast.Statement[ast.Unit]) (ast.Statement[TypeInfo], error) {
	switch n := stmt.(type) {
	case *ast.StructDeclaration[ast.Unit]:
		return c.checkStructDeclarationTopLevel(n)
	case *ast.Declaration[ast.Unit]:
		return c.checkDeclarationTopLevel(n)
	case *ast.Function[ast.Unit]:
		return c.checkFunctionTopLevel(n)
	case *ast.Constant[ast.Unit]:
		return c.checkConstantTopLevel(n)
	default:
		return c.checkStatement(stmt)
	}
}

func (c *checker) checkStatement(stmt ast.Statement[ast.Unit]) (ast.Statement[TypeInfo], error) {
	switch n := stmt.(type) {
	case *ast.Function[ast.Unit]:
		return c.checkFunctionNested(n)
	case *ast.If[ast.Unit]:
		return c.checkIf(n)
	case *ast.WhileLoop[ast.Unit]:
		return c.checkWhile(n)
	case *ast.Initialisation[ast.Unit]:
		return c.checkInitialisation(n)
	case *ast.Constant[ast.Unit]:
		return c.checkConstantNested(n)
	case *ast.Assignment[ast.Unit]:
		return c.checkAssignment(n)
	case *ast.ExpressionStatement[ast.Unit]:
		return c.checkExpressionStatement(n)
	case *ast.YieldingExpression[ast.Unit]:
		return c.checkYieldingExpression(n)
	case *ast.Return[ast.Unit]:
		return c.checkReturn(n)
	case *ast.Declaration[ast.Unit]:
		return c.checkDeclarationNested(n)
	case *ast.StructDeclaration[ast.Unit]:
		return c.checkStructDeclarationTopLevel(n)
	case *ast.Comment[ast.Unit]:
		return c.checkComment(n), nil
	default:
		return nil, fmt.Errorf("check: unhandled statement %T", stmt)
	}
}

func (c *checker) checkExpression(expr ast.Expression[ast.Unit]) (ast.Expression[TypeInfo], error) {
	switch n := expr.(type) {
	case *ast.Id[ast.Unit]:
		return c.checkId(n)
	case *ast.Num[ast.Unit]:
		return c.checkNum(n), nil
	case *ast.Function[ast.Unit]:
		return c.checkFunctionNested(n)
	case *ast.Lambda[ast.Unit]:
		return c.checkLambda(n)
	case *ast.If[ast.Unit]:
		return c.checkIf(n)
	case *ast.Block[ast.Unit]:
		blk, err := c.checkBlockValue(*n)
		if err != nil {
			return nil, err
		}
		return &blk, nil
	case *ast.Parens[ast.Unit]:
		return c.checkParens(n)
	case *ast.Postfix[ast.Unit]:
		return c.checkPostfix(n)
	case *ast.Prefix[ast.Unit]:
		return c.checkPrefix(n)
	case *ast.Binary[ast.Unit]:
		return c.checkBinary(n)
	case *ast.Array[ast.Unit]:
		return c.checkArray(n)
	case *ast.StructInitialisation[ast.Unit]:
		return c.checkStructInitialisation(n)
	default:
		return nil, fmt.Errorf("check: unhandled expression %T", expr)
	}
}

func (c *checker) checkStatements(stmts []ast.Statement[ast.Unit]) ([]ast.Statement[TypeInfo], error) {
	out := make([]ast.Statement[TypeInfo], 0, len(stmts))
	for _, s := range stmts {
		cs, err := c.checkStatement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// checkBlockValue implements the Block contract: enter a
// frame, check statements in order, exit; the block's own cell is the
// trailing YieldingExpression's cell, or Void otherwise.
func (c *checker) checkBlockValue(b ast.Block[ast.Unit]) (ast.Block[TypeInfo], error) {
	c.sc.Enter()
	defer c.sc.Exit()

	stmts, err := c.checkStatements(b.Statements)
	if err != nil {
		return ast.Block[TypeInfo]{}, err
	}
	return ast.Block[TypeInfo]{Statements: stmts, Info: blockInfo(c.sc, stmts), Pos: b.Pos}, nil
}

func blockInfo(sc *scope.Scope, stmts []ast.Statement[TypeInfo]) TypeInfo {
	if len(stmts) > 0 {
		if y, ok := stmts[len(stmts)-1].(*ast.YieldingExpression[TypeInfo]); ok {
			return sharedInfo(sc, y.Info.Cell)
		}
	}
	return resolvedInfo(sc, types.NewVoid())
}

// ===== Leaves =====

func (c *checker) checkId(n *ast.Id[ast.Unit]) (*ast.Id[TypeInfo], error) {
	if cell, _, ok := c.sc.ResolveVariable(n.Name); ok {
		return &ast.Id[TypeInfo]{Name: n.Name, Info: sharedInfo(c.sc, cell), Pos: n.Pos}, nil
	}
	if t, ok := c.sc.ResolveConstant(n.Name); ok {
		return &ast.Id[TypeInfo]{Name: n.Name, Info: resolvedInfo(c.sc, t), Pos: n.Pos}, nil
	}
	return nil, errUndefinedVariable(n.Name, n.Pos)
}

func (c *checker) checkNum(n *ast.Num[ast.Unit]) *ast.Num[TypeInfo] {
	t := types.NewInteger()
	if n.Kind == ast.FloatNum {
		t = types.NewFloat()
	}
	return &ast.Num[TypeInfo]{Kind: n.Kind, IntVal: n.IntVal, FltVal: n.FltVal, Info: resolvedInfo(c.sc, t), Pos: n.Pos}
}

// ===== Unary/binary/grouping =====

func (c *checker) checkPrefix(n *ast.Prefix[ast.Unit]) (*ast.Prefix[TypeInfo], error) {
	operand, err := c.checkExpression(n.Operand)
	if err != nil {
		return nil, err
	}

	var info TypeInfo
	switch n.Op {
	case ast.Not:
		if operand.GetInfo().Resolved() && operand.GetInfo().Type().Kind != types.Boolean {
			return nil, errTypeMismatch(types.NewBoolean(), operand.GetInfo().Type(), operand.GetSpan())
		}
		info = resolvedInfo(c.sc, types.NewBoolean())
	default: // ast.Neg
		info = sharedInfo(c.sc, operand.GetInfo().Cell)
	}

	return &ast.Prefix[TypeInfo]{Op: n.Op, Operand: operand, Info: info, Pos: n.Pos}, nil
}

func (c *checker) checkBinary(n *ast.Binary[ast.Unit]) (*ast.Binary[TypeInfo], error) {
	left, err := c.checkExpression(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.checkExpression(n.Right)
	if err != nil {
		return nil, err
	}

	var info TypeInfo
	if left.GetInfo().Resolved() && right.GetInfo().Resolved() {
		if !types.Equal(left.GetInfo().Type(), right.GetInfo().Type()) {
			return nil, errTypeMismatch(left.GetInfo().Type(), right.GetInfo().Type(), right.GetSpan())
		}
		if n.Op.IsComparison() {
			info = resolvedInfo(c.sc, types.NewBoolean())
		} else {
			info = resolvedInfo(c.sc, left.GetInfo().Type())
		}
	} else {
		// One operand is still unresolved: leave this node unresolved too,
		// to be refined later by forward propagation.
		info = unresolvedInfo(c.sc)
	}

	return &ast.Binary[TypeInfo]{Op: n.Op, Left: left, Right: right, Info: info, Pos: n.Pos}, nil
}

func (c *checker) checkParens(n *ast.Parens[ast.Unit]) (*ast.Parens[TypeInfo], error) {
	inner, err := c.checkExpression(n.Inner)
	if err != nil {
		return nil, err
	}
	return &ast.Parens[TypeInfo]{Inner: inner, Info: sharedInfo(c.sc, inner.GetInfo().Cell), Pos: n.Pos}, nil
}

// ===== Aggregates =====

func (c *checker) checkArray(n *ast.Array[ast.Unit]) (*ast.Array[TypeInfo], error) {
	if n.Default != nil {
		def, err := c.checkExpression(n.Default)
		if err != nil {
			return nil, err
		}
		count, err := c.checkExpression(n.Count)
		if err != nil {
			return nil, err
		}
		if count.GetInfo().Resolved() && count.GetInfo().Type().Kind != types.Integer {
			return nil, errTypeMismatch(types.NewInteger(), count.GetInfo().Type(), count.GetSpan())
		}
		info := unresolvedInfo(c.sc)
		if def.GetInfo().Resolved() {
			info = resolvedInfo(c.sc, types.NewArray(def.GetInfo().Type()))
		}
		return &ast.Array[TypeInfo]{Default: def, Count: count, Info: info, Pos: n.Pos}, nil
	}

	if len(n.Elements) == 0 {
		return &ast.Array[TypeInfo]{Info: resolvedInfo(c.sc, types.NewArray(types.NewUnknown())), Pos: n.Pos}, nil
	}

	elems := make([]ast.Expression[TypeInfo], len(n.Elements))
	var elemType types.Type
	allResolved := true
	for i, e := range n.Elements {
		ce, err := c.checkExpression(e)
		if err != nil {
			return nil, err
		}
		elems[i] = ce
		if !ce.GetInfo().Resolved() {
			allResolved = false
			continue
		}
		if elemType.Kind == types.Void && i == 0 {
			elemType = ce.GetInfo().Type()
		} else if allResolved && !types.Equal(elemType, ce.GetInfo().Type()) {
			return nil, errTypeMismatch(elemType, ce.GetInfo().Type(), ce.GetSpan())
		}
	}

	info := unresolvedInfo(c.sc)
	if allResolved {
		info = resolvedInfo(c.sc, types.NewArray(elemType))
	}
	return &ast.Array[TypeInfo]{Elements: elems, Info: info, Pos: n.Pos}, nil
}

func (c *checker) checkStructInitialisation(n *ast.StructInitialisation[ast.Unit]) (*ast.StructInitialisation[TypeInfo], error) {
	st, ok := c.sc.ResolveNamedType(n.Name.Name)
	if !ok {
		return nil, errUndefinedType(n.Name.Name, n.Name.Pos)
	}

	provided := make(map[string]bool, len(n.Fields))
	fields := make([]ast.StructFieldValue[TypeInfo], len(n.Fields))
	for i, f := range n.Fields {
		decl, ok := st.Field(f.Name)
		if !ok {
			return nil, errUnknownField(st.Name, f.Name, f.Pos)
		}
		provided[f.Name] = true

		value, err := c.checkExpression(f.Value)
		if err != nil {
			return nil, err
		}
		if value.GetInfo().Resolved() {
			if !types.Equal(value.GetInfo().Type(), decl.Type) {
				return nil, errTypeMismatch(decl.Type, value.GetInfo().Type(), value.GetSpan())
			}
		} else if err := c.updateType(value.GetInfo().Cell, decl.Type); err != nil {
			return nil, errTypeMismatch(decl.Type, value.GetInfo().Type(), value.GetSpan())
		}

		fields[i] = ast.StructFieldValue[TypeInfo]{Name: f.Name, Value: value, Pos: f.Pos}
	}

	for _, f := range st.Fields {
		if !provided[f.Name] {
			return nil, errMissingField(st.Name, f.Name, n.Pos)
		}
	}

	return &ast.StructInitialisation[TypeInfo]{
		Name:   ast.Id[TypeInfo]{Name: n.Name.Name, Info: resolvedInfo(c.sc, st), Pos: n.Name.Pos},
		Fields: fields,
		Info:   resolvedInfo(c.sc, st),
		Pos:    n.Pos,
	}, nil
}

// ===== Postfix =====

func (c *checker) checkPostfix(n *ast.Postfix[ast.Unit]) (*ast.Postfix[TypeInfo], error) {
	target, err := c.checkExpression(n.Target)
	if err != nil {
		return nil, err
	}

	switch n.Kind {
	case ast.Call:
		return c.checkCall(n, target)
	case ast.Index:
		return c.checkIndex(n, target)
	case ast.PropertyAccess:
		return c.checkPropertyAccess(n, target)
	default:
		panic("check: unhandled postfix kind")
	}
}

func (c *checker) checkCall(n *ast.Postfix[ast.Unit], target ast.Expression[TypeInfo]) (*ast.Postfix[TypeInfo], error) {
	args := make([]ast.Expression[TypeInfo], len(n.Args))
	for i, a := range n.Args {
		ca, err := c.checkExpression(a)
		if err != nil {
			return nil, err
		}
		args[i] = ca
	}

	if !target.GetInfo().Resolved() {
		params := make([]types.Type, len(args))
		for i := range params {
			params[i] = types.NewUnknown()
		}
		shape := types.NewFunction(params, types.NewUnknown())
		if err := c.updateType(target.GetInfo().Cell, shape); err != nil {
			return nil, errTypeMismatch(shape, target.GetInfo().Type(), target.GetSpan())
		}
	}

	targetType := target.GetInfo().Cell.Get()
	if targetType.Kind != types.Function {
		return nil, errTypeMismatch(types.NewFunction(nil, types.NewUnknown()), targetType, target.GetSpan())
	}
	if len(targetType.Params) != len(args) {
		return nil, errWrongArity(len(targetType.Params), len(args), n.Pos)
	}

	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		paramType := targetType.Params[i]
		if a.GetInfo().Resolved() {
			if paramType.Kind != types.Unknown && !types.Equal(a.GetInfo().Type(), paramType) {
				return nil, errTypeMismatch(paramType, a.GetInfo().Type(), a.GetSpan())
			}
			argTypes[i] = a.GetInfo().Type()
		} else {
			if err := c.updateType(a.GetInfo().Cell, paramType); err != nil {
				return nil, errTypeMismatch(paramType, a.GetInfo().Type(), a.GetSpan())
			}
			argTypes[i] = a.GetInfo().Cell.Get()
		}
	}

	// Push the concrete argument types back through the signature cell:
	// a callee whose parameters were elided picks them up here, and the
	// funcShape refresh inside updateType carries a trivially-aliasing
	// body's refinement into the return position.
	callShape := types.NewFunction(argTypes, types.NewUnknown())
	if err := c.updateType(target.GetInfo().Cell, callShape); err != nil {
		return nil, errTypeMismatch(targetType, callShape, n.Pos)
	}
	targetType = target.GetInfo().Cell.Get()

	info := unresolvedInfo(c.sc)
	if retType := targetType.Return; retType != nil && retType.Kind != types.Unknown {
		info = resolvedInfo(c.sc, *retType)
	}

	return &ast.Postfix[TypeInfo]{Kind: ast.Call, Target: target, Args: args, Info: info, Pos: n.Pos}, nil
}

func (c *checker) checkIndex(n *ast.Postfix[ast.Unit], target ast.Expression[TypeInfo]) (*ast.Postfix[TypeInfo], error) {
	idx, err := c.checkExpression(n.Index)
	if err != nil {
		return nil, err
	}
	if idx.GetInfo().Resolved() && idx.GetInfo().Type().Kind != types.Integer {
		return nil, errTypeMismatch(types.NewInteger(), idx.GetInfo().Type(), idx.GetSpan())
	}

	info := unresolvedInfo(c.sc)
	if target.GetInfo().Resolved() {
		tt := target.GetInfo().Type()
		if tt.Kind != types.Array {
			return nil, errTypeMismatch(types.NewArray(types.NewUnknown()), tt, target.GetSpan())
		}
		info = resolvedInfo(c.sc, *tt.Element)
	}

	return &ast.Postfix[TypeInfo]{Kind: ast.Index, Target: target, Index: idx, Info: info, Pos: n.Pos}, nil
}

func (c *checker) checkPropertyAccess(n *ast.Postfix[ast.Unit], target ast.Expression[TypeInfo]) (*ast.Postfix[TypeInfo], error) {
	if !target.GetInfo().Resolved() {
		return nil, errUnresolvedType(target.GetSpan())
	}
	tt := target.GetInfo().Type()
	if tt.Kind != types.Struct {
		return nil, errTypeMismatch(types.NewStruct("<struct>", nil), tt, target.GetSpan())
	}
	// A struct field whose type is a later-declared struct still holds that
	// struct's Shallow placeholder; look the full struct up by name.
	if named, ok := c.sc.ResolveNamedType(tt.Name); ok && named.Kind == types.Struct {
		tt = named
	}
	field, ok := tt.Field(n.Field)
	if !ok {
		return nil, errUnknownField(tt.Name, n.Field, n.FieldPos)
	}

	return &ast.Postfix[TypeInfo]{
		Kind:     ast.PropertyAccess,
		Target:   target,
		Field:    n.Field,
		FieldPos: n.FieldPos,
		Info:     resolvedInfo(c.sc, field.Type),
		Pos:      n.Pos,
	}, nil
}

// ===== Control flow =====

func (c *checker) checkIf(n *ast.If[ast.Unit]) (*ast.If[TypeInfo], error) {
	cond, err := c.checkExpression(n.Condition)
	if err != nil {
		return nil, err
	}
	if cond.GetInfo().Resolved() && cond.GetInfo().Type().Kind != types.Boolean {
		return nil, errTypeMismatch(types.NewBoolean(), cond.GetInfo().Type(), cond.GetSpan())
	}

	then, err := c.checkBlockValue(n.Then)
	if err != nil {
		return nil, err
	}

	resultCell := then.Info.Cell
	var elseBlk *ast.Block[TypeInfo]
	if n.Else != nil {
		eb, err := c.checkBlockValue(*n.Else)
		if err != nil {
			return nil, err
		}
		elseBlk = &eb

		if then.Info.Resolved() && eb.Info.Resolved() {
			if !types.Equal(then.Info.Type(), eb.Info.Type()) {
				return nil, errTypeMismatch(then.Info.Type(), eb.Info.Type(), eb.GetSpan())
			}
		} else if !then.Info.Resolved() && eb.Info.Resolved() {
			resultCell = eb.Info.Cell
		}
	}

	return &ast.If[TypeInfo]{
		Condition: cond,
		Then:      then,
		Else:      elseBlk,
		Info:      sharedInfo(c.sc, resultCell),
		Pos:       n.Pos,
	}, nil
}

func (c *checker) checkWhile(n *ast.WhileLoop[ast.Unit]) (*ast.WhileLoop[TypeInfo], error) {
	cond, err := c.checkExpression(n.Condition)
	if err != nil {
		return nil, err
	}
	if cond.GetInfo().Resolved() && cond.GetInfo().Type().Kind != types.Boolean {
		return nil, errTypeMismatch(types.NewBoolean(), cond.GetInfo().Type(), cond.GetSpan())
	}

	body, err := c.checkBlockValue(n.Body)
	if err != nil {
		return nil, err
	}

	return &ast.WhileLoop[TypeInfo]{
		Condition: cond,
		Body:      body,
		Info:      resolvedInfo(c.sc, types.NewVoid()),
		Pos:       n.Pos,
	}, nil
}

// ===== Bindings =====

func (c *checker) checkInitialisation(n *ast.Initialisation[ast.Unit]) (*ast.Initialisation[TypeInfo], error) {
	value, err := c.checkExpression(n.Value)
	if err != nil {
		return nil, err
	}

	if n.TypeName != nil {
		declared, err := types.Resolve(n.TypeName, c.sc)
		if err != nil {
			return nil, errUndefinedType(nameOf(n.TypeName), n.TypeName.GetSpan())
		}
		if value.GetInfo().Resolved() {
			if !types.Equal(value.GetInfo().Type(), declared) {
				return nil, errTypeMismatch(declared, value.GetInfo().Type(), value.GetSpan())
			}
		} else if err := c.updateType(value.GetInfo().Cell, declared); err != nil {
			return nil, errTypeMismatch(declared, value.GetInfo().Type(), value.GetSpan())
		}
	}

	cell := value.GetInfo().Cell
	if err := c.sc.AddVariable(n.Id.Name, cell, n.Mutable); err != nil {
		return nil, errRedefinedConstant(n.Id.Name, n.Pos)
	}

	return &ast.Initialisation[TypeInfo]{
		Id:       ast.Id[TypeInfo]{Name: n.Id.Name, Info: sharedInfo(c.sc, cell), Pos: n.Id.Pos},
		Mutable:  n.Mutable,
		TypeName: n.TypeName,
		Value:    value,
		Info:     resolvedInfo(c.sc, types.NewVoid()),
		Pos:      n.Pos,
	}, nil
}

func (c *checker) checkConstantTopLevel(n *ast.Constant[ast.Unit]) (*ast.Constant[TypeInfo], error) {
	declared, ok := c.sc.ResolveConstant(n.Id.Name)
	if !ok {
		return nil, errUndefinedVariable(n.Id.Name, n.Pos)
	}
	return c.checkConstantBody(n, declared)
}

func (c *checker) checkConstantNested(n *ast.Constant[ast.Unit]) (*ast.Constant[TypeInfo], error) {
	declared, err := types.Resolve(n.TypeName, c.sc)
	if err != nil {
		return nil, errUndefinedType(nameOf(n.TypeName), n.TypeName.GetSpan())
	}
	checked, err := c.checkConstantBody(n, declared)
	if err != nil {
		return nil, err
	}
	if err := c.sc.AddConstant(n.Id.Name, declared); err != nil {
		return nil, errRedefinedConstant(n.Id.Name, n.Pos)
	}
	return checked, nil
}

func (c *checker) checkConstantBody(n *ast.Constant[ast.Unit], declared types.Type) (*ast.Constant[TypeInfo], error) {
	value, err := c.checkExpression(n.Value)
	if err != nil {
		return nil, err
	}
	if value.GetInfo().Resolved() {
		if !types.Equal(value.GetInfo().Type(), declared) {
			return nil, errTypeMismatch(declared, value.GetInfo().Type(), value.GetSpan())
		}
	} else if err := c.updateType(value.GetInfo().Cell, declared); err != nil {
		return nil, errTypeMismatch(declared, value.GetInfo().Type(), value.GetSpan())
	}

	return &ast.Constant[TypeInfo]{
		Id:       ast.Id[TypeInfo]{Name: n.Id.Name, Info: resolvedInfo(c.sc, declared), Pos: n.Id.Pos},
		TypeName: n.TypeName,
		Value:    value,
		Info:     resolvedInfo(c.sc, types.NewVoid()),
		Pos:      n.Pos,
	}, nil
}

func (c *checker) checkAssignment(n *ast.Assignment[ast.Unit]) (*ast.Assignment[TypeInfo], error) {
	cell, mutable, ok := c.sc.ResolveVariable(n.Id.Name)
	if !ok {
		if _, isConst := c.sc.ResolveConstant(n.Id.Name); isConst {
			return nil, errImmutableAssignment(n.Id.Name, n.Pos)
		}
		return nil, errUndefinedVariable(n.Id.Name, n.Pos)
	}
	if !mutable {
		return nil, errImmutableAssignment(n.Id.Name, n.Pos)
	}

	value, err := c.checkExpression(n.Value)
	if err != nil {
		return nil, err
	}
	if value.GetInfo().Resolved() {
		if err := c.updateType(cell, value.GetInfo().Type()); err != nil {
			return nil, errTypeMismatch(cell.Get(), value.GetInfo().Type(), value.GetSpan())
		}
	}

	return &ast.Assignment[TypeInfo]{
		Id:    ast.Id[TypeInfo]{Name: n.Id.Name, Info: sharedInfo(c.sc, cell), Pos: n.Id.Pos},
		Value: value,
		Info:  resolvedInfo(c.sc, types.NewVoid()),
		Pos:   n.Pos,
	}, nil
}

func (c *checker) checkDeclarationTopLevel(n *ast.Declaration[ast.Unit]) (*ast.Declaration[TypeInfo], error) {
	cell, _, ok := c.sc.ResolveVariable(n.Id.Name)
	if !ok {
		return nil, errUndefinedVariable(n.Id.Name, n.Pos)
	}
	return &ast.Declaration[TypeInfo]{
		Id:       ast.Id[TypeInfo]{Name: n.Id.Name, Info: sharedInfo(c.sc, cell), Pos: n.Id.Pos},
		TypeName: n.TypeName,
		Info:     resolvedInfo(c.sc, types.NewVoid()),
		Pos:      n.Pos,
	}, nil
}

func (c *checker) checkDeclarationNested(n *ast.Declaration[ast.Unit]) (*ast.Declaration[TypeInfo], error) {
	t, err := types.Resolve(n.TypeName, c.sc)
	if err != nil {
		return nil, errUndefinedType(nameOf(n.TypeName), n.TypeName.GetSpan())
	}
	cell := scope.NewResolvedCell(t)
	if err := c.sc.AddVariable(n.Id.Name, cell, false); err != nil {
		return nil, errRedefinedConstant(n.Id.Name, n.Pos)
	}
	return &ast.Declaration[TypeInfo]{
		Id:       ast.Id[TypeInfo]{Name: n.Id.Name, Info: sharedInfo(c.sc, cell), Pos: n.Id.Pos},
		TypeName: n.TypeName,
		Info:     resolvedInfo(c.sc, types.NewVoid()),
		Pos:      n.Pos,
	}, nil
}

func (c *checker) checkStructDeclarationTopLevel(n *ast.StructDeclaration[ast.Unit]) (*ast.StructDeclaration[TypeInfo], error) {
	st, ok := c.sc.ResolveNamedType(n.Name.Name)
	if !ok {
		return nil, errUndefinedType(n.Name.Name, n.Pos)
	}
	return &ast.StructDeclaration[TypeInfo]{
		Name:   ast.Id[TypeInfo]{Name: n.Name.Name, Info: resolvedInfo(c.sc, st), Pos: n.Name.Pos},
		Fields: n.Fields,
		Info:   resolvedInfo(c.sc, types.NewVoid()),
		Pos:    n.Pos,
	}, nil
}

// ===== Terminal statements =====

func (c *checker) checkReturn(n *ast.Return[ast.Unit]) (*ast.Return[TypeInfo], error) {
	value, err := c.checkExpression(n.Expr)
	if err != nil {
		return nil, err
	}

	if len(c.returnStack) > 0 {
		retCell := c.returnStack[len(c.returnStack)-1]
		if value.GetInfo().Resolved() {
			if err := c.updateType(retCell, value.GetInfo().Type()); err != nil {
				return nil, errTypeMismatch(retCell.Get(), value.GetInfo().Type(), value.GetSpan())
			}
		}
	}

	return &ast.Return[TypeInfo]{Expr: value, Info: sharedInfo(c.sc, value.GetInfo().Cell), Pos: n.Pos}, nil
}

func (c *checker) checkExpressionStatement(n *ast.ExpressionStatement[ast.Unit]) (*ast.ExpressionStatement[TypeInfo], error) {
	e, err := c.checkExpression(n.Expr)
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement[TypeInfo]{Expr: e, Info: resolvedInfo(c.sc, types.NewVoid()), Pos: n.Pos}, nil
}

func (c *checker) checkYieldingExpression(n *ast.YieldingExpression[ast.Unit]) (*ast.YieldingExpression[TypeInfo], error) {
	e, err := c.checkExpression(n.Expr)
	if err != nil {
		return nil, err
	}
	return &ast.YieldingExpression[TypeInfo]{Expr: e, Info: sharedInfo(c.sc, e.GetInfo().Cell), Pos: n.Pos}, nil
}

func (c *checker) checkComment(n *ast.Comment[ast.Unit]) *ast.Comment[TypeInfo] {
	return &ast.Comment[TypeInfo]{Text: n.Text, Info: resolvedInfo(c.sc, types.NewVoid()), Pos: n.Pos}
}

// ===== Functions and lambdas =====

// functionSignature and nameOf are defined in shallow.go and reused here
// for the nested/anonymous-function paths, which aren't Shallow-registered.

// checkFunctionTopLevel resolves the signature cell Shallow already
// registered for a named top-level function.
func (c *checker) checkFunctionTopLevel(fn *ast.Function[ast.Unit]) (*ast.Function[TypeInfo], error) {
	var sigCell *scope.Cell
	if fn.Name != nil {
		cell, _, ok := c.sc.ResolveVariable(fn.Name.Name)
		if !ok {
			return nil, errUndefinedVariable(fn.Name.Name, fn.Pos)
		}
		sigCell = cell
	}
	return c.checkFunctionBody(fn, sigCell)
}

// checkFunctionNested handles a Function appearing as a nested statement
// or in expression position: if named, it registers itself into the
// current frame first (permitting direct self-recursion), unlike a
// top-level function whose registration already happened in Shallow.
func (c *checker) checkFunctionNested(fn *ast.Function[ast.Unit]) (*ast.Function[TypeInfo], error) {
	var sigCell *scope.Cell
	if fn.Name != nil {
		sig, err := functionSignature(fn, c.sc)
		if err != nil {
			return nil, err
		}
		sigCell = scope.NewResolvedCell(sig)
		if err := c.sc.AddVariable(fn.Name.Name, sigCell, false); err != nil {
			return nil, errRedefinedConstant(fn.Name.Name, fn.Pos)
		}
	}
	return c.checkFunctionBody(fn, sigCell)
}

// checkFunctionBody checks fn's parameters and body in a fresh frame,
// given its already-resolved signature cell (nil for an anonymous
// function expression, in which case the signature is derived fresh).
func (c *checker) checkFunctionBody(fn *ast.Function[ast.Unit], sigCell *scope.Cell) (*ast.Function[TypeInfo], error) {
	var sig types.Type
	if sigCell != nil {
		sig = sigCell.Get()
	} else {
		s, err := functionSignature(fn, c.sc)
		if err != nil {
			return nil, err
		}
		sig = s
	}

	c.sc.Enter()
	defer c.sc.Exit()

	params := make([]ast.Parameter[TypeInfo], len(fn.Parameters))
	paramCells := make([]*scope.Cell, len(fn.Parameters))
	for i, p := range fn.Parameters {
		cell := scope.NewResolvedCell(sig.Params[i])
		paramCells[i] = cell
		if err := c.sc.AddVariable(p.Name.Name, cell, false); err != nil {
			return nil, errRedefinedConstant(p.Name.Name, p.Pos)
		}
		params[i] = ast.Parameter[TypeInfo]{
			Name:     ast.Id[TypeInfo]{Name: p.Name.Name, Info: sharedInfo(c.sc, cell), Pos: p.Name.Pos},
			TypeName: p.TypeName,
			Info:     sharedInfo(c.sc, cell),
			Pos:      p.Pos,
		}
	}

	returnCell := scope.NewResolvedCell(*sig.Return)
	c.returnStack = append(c.returnStack, returnCell)
	body, err := c.checkStatements(fn.Body)
	c.returnStack = c.returnStack[:len(c.returnStack)-1]
	if err != nil {
		return nil, err
	}

	if sigCell != nil {
		c.funcShapes[sigCell] = &funcShape{paramCells: paramCells, returnCell: returnCell}
	}

	var name *ast.Id[TypeInfo]
	info := resolvedInfo(c.sc, sig)
	if fn.Name != nil {
		info = sharedInfo(c.sc, sigCell)
		name = &ast.Id[TypeInfo]{Name: fn.Name.Name, Info: info, Pos: fn.Name.Pos}
	}

	return &ast.Function[TypeInfo]{
		Name:       name,
		Parameters: params,
		ReturnType: fn.ReturnType,
		Body:       body,
		Info:       info,
		Pos:        fn.Pos,
	}, nil
}

func (c *checker) checkLambda(n *ast.Lambda[ast.Unit]) (*ast.Lambda[TypeInfo], error) {
	c.sc.Enter()
	defer c.sc.Exit()

	params := make([]ast.LambdaParameter[TypeInfo], len(n.Parameters))
	paramCells := make([]*scope.Cell, len(n.Parameters))
	paramTypes := make([]types.Type, len(n.Parameters))
	for i, p := range n.Parameters {
		var cell *scope.Cell
		if p.TypeName != nil {
			t, err := types.Resolve(p.TypeName, c.sc)
			if err != nil {
				return nil, errUndefinedType(nameOf(p.TypeName), p.TypeName.GetSpan())
			}
			cell = scope.NewResolvedCell(t)
			paramTypes[i] = t
		} else {
			cell = scope.NewUnresolvedCell()
			paramTypes[i] = types.NewUnknown()
		}
		paramCells[i] = cell
		if err := c.sc.AddVariable(p.Name.Name, cell, false); err != nil {
			return nil, errRedefinedConstant(p.Name.Name, p.Pos)
		}
		params[i] = ast.LambdaParameter[TypeInfo]{
			Name:     ast.Id[TypeInfo]{Name: p.Name.Name, Info: sharedInfo(c.sc, cell), Pos: p.Name.Pos},
			TypeName: p.TypeName,
			Info:     sharedInfo(c.sc, cell),
			Pos:      p.Pos,
		}
	}

	body, err := c.checkExpression(n.Body)
	if err != nil {
		return nil, err
	}

	sig := types.NewFunction(paramTypes, body.GetInfo().Type())
	sigCell := scope.NewResolvedCell(sig)
	c.funcShapes[sigCell] = &funcShape{paramCells: paramCells, returnCell: body.GetInfo().Cell}

	return &ast.Lambda[TypeInfo]{Parameters: params, Body: body, Info: sharedInfo(c.sc, sigCell), Pos: n.Pos}, nil
}
