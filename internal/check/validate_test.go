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

func validateSource(t *testing.T, src string) (ast.Program[check.ValidatedTypeInfo], error) {
	t.Helper()
	checked, _ := checkSource(t, src)
	return check.Validate(checked)
}

func TestValidateFreezesFullyResolvedProgram(t *testing.T) {
	validated, err := validateSource(t, "let x = 42; let y = x + 1;")
	require.NoError(t, err)
	require.Len(t, validated.Statements, 2)

	init := validated.Statements[0].(*ast.Initialisation[check.ValidatedTypeInfo])
	assert.Equal(t, types.Integer, init.Id.Info.Type.Kind)
	assert.Equal(t, types.Void, init.Info.Type.Kind)
}

func TestValidatePropagatedLambdaSignature(t *testing.T) {
	// The call refines the lambda's elided parameter, and the refreshed
	// signature flows it into the return position, so the whole program
	// freezes with no Unknown left anywhere.
	src := `
let identity = \(bar) => bar;
let x = identity(42);
`
	validated, err := validateSource(t, src)
	require.NoError(t, err)

	initLambda := validated.Statements[0].(*ast.Initialisation[check.ValidatedTypeInfo])
	lambda := initLambda.Value.(*ast.Lambda[check.ValidatedTypeInfo])

	sig := lambda.Info.Type
	require.Equal(t, types.Function, sig.Kind)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, types.Integer, sig.Params[0].Kind)
	assert.Equal(t, types.Integer, sig.Return.Kind)
}

func TestValidateUncalledUnannotatedLambdaFails(t *testing.T) {
	// Nothing ever pins down `bar`, so the lambda's signature keeps an
	// Unknown parameter and validation must reject it.
	_, err := validateSource(t, `let f = \(bar) => bar;`)
	require.Error(t, err)

	var typeErr *check.Error
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, check.UnresolvedType, typeErr.Kind)
}

func TestValidateEmptyArrayFailsOnUnknownElement(t *testing.T) {
	// `[]` resolves to an array type, but its element stays Unknown; an
	// Unknown subterm is as fatal as an unresolved cell.
	_, err := validateSource(t, "let xs = [];")
	require.Error(t, err)

	var typeErr *check.Error
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, check.UnresolvedType, typeErr.Kind)
}

func TestValidateErrorCarriesSpan(t *testing.T) {
	_, err := validateSource(t, "let xs = [];")
	require.Error(t, err)

	var typeErr *check.Error
	require.ErrorAs(t, err, &typeErr)
	assert.True(t, typeErr.Span().IsValid())
}

// TestCheckOnlyChangesMetadata reverts a checked tree back to Unit
// metadata and compares it against the parsed tree: the checker may
// rebuild nodes, but their structure and spans must survive untouched.
func TestCheckOnlyChangesMetadata(t *testing.T) {
	src := `
struct Point {
    x: i64;
    y: i64;
}
fn dist(p: Point): i64 {
    p.x + p.y
}
fn main(): void {
    let mut total = 0;
    total = dist(Point { x: 1, y: 2 });
}
`
	prog, err := parser.ParseFile("t.why", src)
	require.NoError(t, err)

	sc := scope.New()
	require.NoError(t, check.Shallow(prog, sc))
	checked, err := check.Check(prog, sc)
	require.NoError(t, err)

	assert.Equal(t, ast.RevertProgram(prog), ast.RevertProgram(checked))
}

func TestValidateOnlyChangesMetadata(t *testing.T) {
	src := "let x = 42; let y = x == 1337;"
	prog, err := parser.ParseFile("t.why", src)
	require.NoError(t, err)

	sc := scope.New()
	require.NoError(t, check.Shallow(prog, sc))
	checked, err := check.Check(prog, sc)
	require.NoError(t, err)
	validated, err := check.Validate(checked)
	require.NoError(t, err)

	assert.Equal(t, ast.RevertProgram(checked), ast.RevertProgram(validated))
}
