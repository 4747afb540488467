// Package check implements a two-phase type checker: a shallow pass that
// pre-registers top-level names and signatures, a deep bottom-up pass that
// infers and unifies expression types through shared mutable cells, and a
// validator that freezes the result once every cell is resolved.
//
// A checker struct threads scope and inference state through a
// recursive tree walk, one method per node variant, rather than attaching
// a type-check method to each AST node type.
package check

import (
	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/scope"
	"github.com/whylang/whyc/internal/types"
)

// TypeInfo is the metadata every AST node carries once checked: a shared
// mutable Cell (multiple aliased sites point at the same one) plus a
// snapshot of the scope visible at the point the node was checked, used
// by downstream consumers to resolve names without re-walking the tree.
type TypeInfo struct {
	Cell    *scope.Cell
	Context scope.Snapshot
}

// Type returns the cell's current type (Unknown if still unresolved).
func (t TypeInfo) Type() types.Type { return t.Cell.Get() }

// Resolved reports whether the cell holds a concrete type.
func (t TypeInfo) Resolved() bool { return t.Cell.Resolved() }

// ValidatedTypeInfo is TypeInfo's frozen counterpart, produced only once
// the validator has confirmed every cell in the tree
// holds a concrete type, it carries a plain (non-shared) Type so no
// further mutation can occur.
type ValidatedTypeInfo struct {
	Type    types.Type
	Context scope.Snapshot
}

// Typed is satisfied by any checked AST node (ast.Statement[TypeInfo] or
// ast.Expression[TypeInfo]) structurally, letting shared helper code
// operate over either without per-node-type plumbing.
type Typed interface {
	ast.Node
	GetInfo() TypeInfo
}

func resolvedInfo(sc *scope.Scope, t types.Type) TypeInfo {
	return TypeInfo{Cell: scope.NewResolvedCell(t), Context: sc.Snapshot()}
}

func unresolvedInfo(sc *scope.Scope) TypeInfo {
	return TypeInfo{Cell: scope.NewUnresolvedCell(), Context: sc.Snapshot()}
}

func sharedInfo(sc *scope.Scope, cell *scope.Cell) TypeInfo {
	return TypeInfo{Cell: cell, Context: sc.Snapshot()}
}
