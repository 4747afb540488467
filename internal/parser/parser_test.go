package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whylang/whyc/internal/ast"
)

func TestParseLetInitialisation(t *testing.T) {
	prog, err := ParseFile("t.why", "let x = 42;")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	init, ok := prog.Statements[0].(*ast.Initialisation[ast.Unit])
	require.True(t, ok)
	assert.Equal(t, "x", init.Id.Name)
	assert.False(t, init.Mutable)
	assert.Nil(t, init.TypeName)

	num, ok := init.Value.(*ast.Num[ast.Unit])
	require.True(t, ok)
	assert.Equal(t, ast.IntegerNum, num.Kind)
	assert.Equal(t, uint64(42), num.IntVal)
}

func TestParseLetMutWithTypeAnnotation(t *testing.T) {
	prog, err := ParseFile("t.why", "let mut x: f64 = 42;")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	init, ok := prog.Statements[0].(*ast.Initialisation[ast.Unit])
	require.True(t, ok)
	assert.True(t, init.Mutable)
	require.NotNil(t, init.TypeName)

	lit, ok := init.TypeName.(*ast.LiteralType)
	require.True(t, ok)
	assert.Equal(t, "f64", lit.Name)
}

func TestParseBinaryPrecedenceBalancesMulTighterThanAdd(t *testing.T) {
	// `42 + 1337 * 2` must parse as `42 + (1337 * 2)`, i.e. the outer node
	// is the `+`.
	prog, err := ParseFile("t.why", "let x = 42 + 1337 * 2;")
	require.NoError(t, err)

	init := prog.Statements[0].(*ast.Initialisation[ast.Unit])
	outer, ok := init.Value.(*ast.Binary[ast.Unit])
	require.True(t, ok)
	assert.Equal(t, ast.Add, outer.Op)

	inner, ok := outer.Right.(*ast.Binary[ast.Unit])
	require.True(t, ok)
	assert.Equal(t, ast.Mul, inner.Op)
}

func TestParseComparisonIsBoolean(t *testing.T) {
	prog, err := ParseFile("t.why", "let x = 42 == 1337;")
	require.NoError(t, err)

	init := prog.Statements[0].(*ast.Initialisation[ast.Unit])
	bin, ok := init.Value.(*ast.Binary[ast.Unit])
	require.True(t, ok)
	assert.Equal(t, ast.Equals, bin.Op)
	assert.True(t, bin.Op.IsComparison())
}

func TestParseStructDeclarationAndInitialisation(t *testing.T) {
	src := `
struct Point {
    x: i64;
    y: i64;
}
let p = Point { x: 1, y: 2 };
`
	prog, err := ParseFile("t.why", src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	decl, ok := prog.Statements[0].(*ast.StructDeclaration[ast.Unit])
	require.True(t, ok)
	assert.Equal(t, "Point", decl.Name.Name)
	require.Len(t, decl.Fields, 2)
	assert.Equal(t, "x", decl.Fields[0].Name)
	assert.Equal(t, "y", decl.Fields[1].Name)

	init := prog.Statements[1].(*ast.Initialisation[ast.Unit])
	structInit, ok := init.Value.(*ast.StructInitialisation[ast.Unit])
	require.True(t, ok)
	assert.Equal(t, "Point", structInit.Name.Name)
	require.Len(t, structInit.Fields, 2)
}

func TestParseLambdaWithElidedParamType(t *testing.T) {
	prog, err := ParseFile("t.why", "let f = \\(bar) => bar;")
	require.NoError(t, err)

	init := prog.Statements[0].(*ast.Initialisation[ast.Unit])
	lambda, ok := init.Value.(*ast.Lambda[ast.Unit])
	require.True(t, ok)
	require.Len(t, lambda.Parameters, 1)
	assert.Equal(t, "bar", lambda.Parameters[0].Name.Name)
	assert.Nil(t, lambda.Parameters[0].TypeName)

	body, ok := lambda.Body.(*ast.Id[ast.Unit])
	require.True(t, ok)
	assert.Equal(t, "bar", body.Name)
}

func TestParseFunctionDeclaration(t *testing.T) {
	src := "fn add(a: i64, b: i64): i64 { a + b }"
	prog, err := ParseFile("t.why", src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	fn, ok := prog.Statements[0].(*ast.Function[ast.Unit])
	require.True(t, ok)
	require.NotNil(t, fn.Name)
	assert.Equal(t, "add", fn.Name.Name)
	require.Len(t, fn.Parameters, 2)
	assert.Equal(t, "a", fn.Parameters[0].Name.Name)
	require.Len(t, fn.Body, 1)

	_, ok = fn.Body[0].(*ast.YieldingExpression[ast.Unit])
	assert.True(t, ok)
}

func TestParseIfExpressionWithElse(t *testing.T) {
	prog, err := ParseFile("t.why", "let x = if (42 == 1337) { 1 } else { 2 };")
	require.NoError(t, err)

	init := prog.Statements[0].(*ast.Initialisation[ast.Unit])
	ifExpr, ok := init.Value.(*ast.If[ast.Unit])
	require.True(t, ok)
	require.NotNil(t, ifExpr.Else)
}

func TestParseArrayLiterals(t *testing.T) {
	elemList, err := ParseFile("t.why", "let xs = [1, 2, 3];")
	require.NoError(t, err)
	arr := elemList.Statements[0].(*ast.Initialisation[ast.Unit]).Value.(*ast.Array[ast.Unit])
	assert.Len(t, arr.Elements, 3)
	assert.Nil(t, arr.Default)

	defaultFill, err := ParseFile("t.why", "let xs = [0; 5];")
	require.NoError(t, err)
	arr2 := defaultFill.Statements[0].(*ast.Initialisation[ast.Unit]).Value.(*ast.Array[ast.Unit])
	assert.Nil(t, arr2.Elements)
	require.NotNil(t, arr2.Default)
	require.NotNil(t, arr2.Count)
}

func TestParseMissingSemicolonIsError(t *testing.T) {
	_, err := ParseFile("t.why", "let x = 42")
	require.Error(t, err)

	var parseErr *Error
	require.ErrorAs(t, err, &parseErr)
}
