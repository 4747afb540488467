package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/check"
	"github.com/whylang/whyc/internal/parser"
	"github.com/whylang/whyc/internal/scope"
	"github.com/whylang/whyc/internal/types"
)

// checkSource runs the full lex/parse/shallow/check pipeline, the shape
// cmd/whyc itself runs, returning the checked (but not yet validated)
// program.
func checkSource(t *testing.T, src string) (ast.Program[check.TypeInfo], *scope.Scope) {
	t.Helper()
	prog, err := parser.ParseFile("t.why", src)
	require.NoError(t, err)

	sc := scope.New()
	require.NoError(t, check.Shallow(prog, sc))

	checked, err := check.Check(prog, sc)
	require.NoError(t, err)
	return checked, sc
}

func TestCheckLetInfersIntegerFromLiteral(t *testing.T) {
	checked, _ := checkSource(t, "let x = 42;")
	init := checked.Statements[0].(*ast.Initialisation[check.TypeInfo])
	require.True(t, init.Id.Info.Resolved())
	assert.Equal(t, types.Integer, init.Id.Info.Type().Kind)
}

func TestCheckLetWithMismatchedAnnotationFails(t *testing.T) {
	prog, err := parser.ParseFile("t.why", "let x: f64 = 42;")
	require.NoError(t, err)

	sc := scope.New()
	require.NoError(t, check.Shallow(prog, sc))

	_, err = check.Check(prog, sc)
	require.Error(t, err)

	var typeErr *check.Error
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, check.TypeMismatch, typeErr.Kind)
}

func TestCheckAddYieldsOperandType(t *testing.T) {
	checked, _ := checkSource(t, "let x = 42 + 1337;")
	init := checked.Statements[0].(*ast.Initialisation[check.TypeInfo])
	value := init.Value.(*ast.Binary[check.TypeInfo])
	assert.Equal(t, types.Integer, value.Info.Type().Kind)
}

func TestCheckEqualsYieldsBoolean(t *testing.T) {
	checked, _ := checkSource(t, "let x = 42 == 1337;")
	init := checked.Statements[0].(*ast.Initialisation[check.TypeInfo])
	value := init.Value.(*ast.Binary[check.TypeInfo])
	assert.Equal(t, types.Boolean, value.Info.Type().Kind)
}

func TestCheckStructDeclarationAndInitialisation(t *testing.T) {
	src := `
struct Point {
    x: i64;
    y: i64;
}
let p = Point { x: 1, y: 2 };
`
	checked, _ := checkSource(t, src)
	init := checked.Statements[1].(*ast.Initialisation[check.TypeInfo])
	require.True(t, init.Id.Info.Resolved())
	assert.Equal(t, types.Struct, init.Id.Info.Type().Kind)
	assert.Equal(t, "Point", init.Id.Info.Type().Name)
}

func TestCheckStructInitialisationMissingFieldFails(t *testing.T) {
	src := `
struct Point {
    x: i64;
    y: i64;
}
let p = Point { x: 1 };
`
	prog, err := parser.ParseFile("t.why", src)
	require.NoError(t, err)
	sc := scope.New()
	require.NoError(t, check.Shallow(prog, sc))

	_, err = check.Check(prog, sc)
	require.Error(t, err)
	var typeErr *check.Error
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, check.MissingField, typeErr.Kind)
}

func TestCheckUndefinedVariableFails(t *testing.T) {
	prog, err := parser.ParseFile("t.why", "let x = y;")
	require.NoError(t, err)
	sc := scope.New()
	require.NoError(t, check.Shallow(prog, sc))

	_, err = check.Check(prog, sc)
	require.Error(t, err)
	var typeErr *check.Error
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, check.UndefinedVariable, typeErr.Kind)
}

func TestCheckAssignmentToImmutableBindingFails(t *testing.T) {
	prog, err := parser.ParseFile("t.why", "fn main(): void { let x = 42; x = 1337; }")
	require.NoError(t, err)
	sc := scope.New()
	require.NoError(t, check.Shallow(prog, sc))

	_, err = check.Check(prog, sc)
	require.Error(t, err)
	var typeErr *check.Error
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, check.ImmutableAssignment, typeErr.Kind)
}

func TestCheckAssignmentToMutableBindingSucceeds(t *testing.T) {
	checked, _ := checkSource(t, "fn main(): void { let mut x = 42; x = 1337; }")
	fn := checked.Statements[0].(*ast.Function[check.TypeInfo])
	assign := fn.Body[1].(*ast.Assignment[check.TypeInfo])
	assert.Equal(t, types.Integer, assign.Id.Info.Type().Kind)
}

// TestMutuallyRecursiveFunctionsResolveViaShallow exercises the
// forward-reference contract directly: `isOdd` calls `isEven`, declared
// later in the same file.
func TestMutuallyRecursiveFunctionsResolveViaShallow(t *testing.T) {
	src := `
fn isOdd(n: i64): bool {
    isEven(n)
}
fn isEven(n: i64): bool {
    isOdd(n)
}
`
	checked, _ := checkSource(t, src)
	require.Len(t, checked.Statements, 2)
	fn := checked.Statements[0].(*ast.Function[check.TypeInfo])
	require.True(t, fn.Info.Resolved())
	assert.Equal(t, types.Function, fn.Info.Type().Kind)
}

// TestLambdaAliasingParameterSharesCell covers a lambda whose body is
// exactly its own parameter: the lambda shares the parameter's cell, so
// a later call that refines the lambda's signature also refines the
// parameter in place.
func TestLambdaAliasingParameterSharesCell(t *testing.T) {
	src := `
let identity = \(bar) => bar;
let x = identity(42);
`
	checked, _ := checkSource(t, src)

	initLambda := checked.Statements[0].(*ast.Initialisation[check.TypeInfo])
	lambda := initLambda.Value.(*ast.Lambda[check.TypeInfo])

	initCall := checked.Statements[1].(*ast.Initialisation[check.TypeInfo])
	require.True(t, initCall.Id.Info.Resolved())
	assert.Equal(t, types.Integer, initCall.Id.Info.Type().Kind)

	// The parameter's own cell was refined in place by the call, since the
	// lambda's body aliases it directly.
	assert.True(t, lambda.Parameters[0].Info.Resolved())
	assert.Equal(t, types.Integer, lambda.Parameters[0].Info.Type().Kind)
	assert.Same(t, lambda.Parameters[0].Info.Cell, lambda.Body.GetInfo().Cell)
}
