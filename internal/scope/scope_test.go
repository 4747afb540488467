package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whylang/whyc/internal/types"
)

func TestAddAndResolveVariable(t *testing.T) {
	s := New()
	cell := NewResolvedCell(types.NewInteger())

	require.NoError(t, s.AddVariable("x", cell, true))

	got, mutable, ok := s.ResolveVariable("x")
	require.True(t, ok)
	assert.True(t, mutable)
	assert.Same(t, cell, got)
}

func TestRedeclarationInSameFrameFails(t *testing.T) {
	s := New()
	require.NoError(t, s.AddVariable("x", NewUnresolvedCell(), true))

	err := s.AddVariable("x", NewUnresolvedCell(), false)
	require.Error(t, err)
	var redefined *RedefinedError
	require.ErrorAs(t, err, &redefined)
}

func TestConstAndLetShareNamespaceInOneFrame(t *testing.T) {
	s := New()
	require.NoError(t, s.AddConstant("PI", types.NewFloat()))

	err := s.AddVariable("PI", NewUnresolvedCell(), true)
	require.Error(t, err)
	var redefined *RedefinedError
	require.ErrorAs(t, err, &redefined)
}

func TestShadowingInNestedFrameSucceeds(t *testing.T) {
	s := New()
	outer := NewResolvedCell(types.NewInteger())
	require.NoError(t, s.AddVariable("x", outer, true))

	s.Enter()
	inner := NewResolvedCell(types.NewBoolean())
	require.NoError(t, s.AddVariable("x", inner, true))

	got, _, ok := s.ResolveVariable("x")
	require.True(t, ok)
	assert.Same(t, inner, got)

	s.Exit()
	got, _, ok = s.ResolveVariable("x")
	require.True(t, ok)
	assert.Same(t, outer, got)
}

func TestResolveVariableUndefined(t *testing.T) {
	s := New()
	_, _, ok := s.ResolveVariable("missing")
	assert.False(t, ok)
}

func TestUpdateVariableRefinesSharedCell(t *testing.T) {
	s := New()
	cell := NewUnresolvedCell()
	require.NoError(t, s.AddVariable("x", cell, true))

	require.NoError(t, s.UpdateVariable("x", types.NewInteger()))
	assert.True(t, types.Equal(types.NewInteger(), cell.Get()))

	alias, _, ok := s.ResolveVariable("x")
	require.True(t, ok)
	assert.Same(t, cell, alias)
	assert.True(t, types.Equal(types.NewInteger(), alias.Get()))
}

func TestUpdateVariableMismatchFails(t *testing.T) {
	s := New()
	require.NoError(t, s.AddVariable("x", NewResolvedCell(types.NewInteger()), true))

	err := s.UpdateVariable("x", types.NewBoolean())
	require.Error(t, err)
	var mismatch *types.MismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestUpdateVariableUndefinedName(t *testing.T) {
	s := New()
	err := s.UpdateVariable("ghost", types.NewInteger())
	require.Error(t, err)
	var undefined *UndefinedError
	require.ErrorAs(t, err, &undefined)
}

func TestNamedTypeResolution(t *testing.T) {
	s := New()
	fooType := types.NewStruct("Foo", []types.StructField{{Name: "bar", Type: types.NewInteger()}})
	require.NoError(t, s.AddNamedType("Foo", fooType))

	resolved, ok := s.ResolveNamedType("Foo")
	require.True(t, ok)
	assert.True(t, types.Equal(fooType, resolved))
}

func TestSnapshotSharesCellsAfterFurtherRefinement(t *testing.T) {
	s := New()
	cell := NewUnresolvedCell()
	require.NoError(t, s.AddVariable("x", cell, true))

	snap := s.Snapshot()

	require.NoError(t, s.UpdateVariable("x", types.NewInteger()))

	got, _, ok := snap.ResolveVariable("x")
	require.True(t, ok)
	assert.True(t, types.Equal(types.NewInteger(), got.Get()))
}
