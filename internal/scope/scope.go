// Package scope implements the nested symbol table a type checker walks
// while resolving names: a stack of frames, each holding variables (bound
// to a shared mutable Cell), constants and named types kept in separate
// tables.
package scope

import (
	"fmt"

	"github.com/whylang/whyc/internal/types"
)

// Cell is the shared mutable inference primitive: every AST site bound
// to the same variable holds the identical *Cell, so
// mutating Type through any one of them is visible through all of them.
// nil Type means unresolved.
type Cell struct {
	Type *types.Type
}

// NewUnresolvedCell returns a fresh cell with no type yet.
func NewUnresolvedCell() *Cell { return &Cell{} }

// NewResolvedCell returns a fresh cell already holding t.
func NewResolvedCell(t types.Type) *Cell { return &Cell{Type: &t} }

// Get returns the cell's current type, or types.Unknown if unresolved,
// the sentinel Unify treats as "matches anything".
func (c *Cell) Get() types.Type {
	if c.Type == nil {
		return types.NewUnknown()
	}
	return *c.Type
}

// Resolved reports whether the cell holds a concrete (non-Unknown) type.
func (c *Cell) Resolved() bool {
	return c.Type != nil && c.Type.Kind != types.Unknown
}

// Set overwrites the cell's type unconditionally. It does no unification
// itself: its callers (UpdateVariable here, updateType in internal/check)
// run types.Unify first and store the refined result with Set.
func (c *Cell) Set(t types.Type) { c.Type = &t }

type binding struct {
	cell    *Cell
	mutable bool
}

type frame struct {
	variables  map[string]binding
	constants  map[string]types.Type
	namedTypes map[string]types.Type
}

func newFrame() *frame {
	return &frame{
		variables:  make(map[string]binding),
		constants:  make(map[string]types.Type),
		namedTypes: make(map[string]types.Type),
	}
}

// RedefinedError is returned when a name is bound twice in the same frame:
// a `const`/`declare` redeclaration, or `let` shadowing within one frame.
// The caller (internal/check) wraps it with a span into a TypeCheckError.
type RedefinedError struct {
	Name string
}

func (e *RedefinedError) Error() string {
	return fmt.Sprintf("%q is already defined in this scope", e.Name)
}

// UndefinedError is returned by the resolve_* operations when a name is
// not bound anywhere on the stack.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("%q is not defined", e.Name)
}

// Scope is a stack of frames, innermost last. A freshly constructed Scope
// has one (the global) frame already open.
type Scope struct {
	frames []*frame
}

// New returns a Scope with its global frame open.
func New() *Scope {
	return &Scope{frames: []*frame{newFrame()}}
}

// Enter pushes a fresh frame, e.g. on block/function entry.
func (s *Scope) Enter() {
	s.frames = append(s.frames, newFrame())
}

// Exit pops the innermost frame. Calling Exit on the last remaining frame
// is a programmer error (every Enter must be paired).
func (s *Scope) Exit() {
	if len(s.frames) == 1 {
		panic("scope: Exit called on the global frame")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *Scope) top() *frame { return s.frames[len(s.frames)-1] }

func (s *Scope) nameTakenInTop(name string) bool {
	top := s.top()
	if _, ok := top.variables[name]; ok {
		return true
	}
	if _, ok := top.constants[name]; ok {
		return true
	}
	return false
}

// AddVariable binds name to cell in the current frame. Fails with
// RedefinedError if name is already bound (as a variable or constant) in
// this same frame: `let` shadowing within one frame is rejected just like
// a `const`/`declare` redeclaration.
func (s *Scope) AddVariable(name string, cell *Cell, mutable bool) error {
	if s.nameTakenInTop(name) {
		return &RedefinedError{Name: name}
	}
	s.top().variables[name] = binding{cell: cell, mutable: mutable}
	return nil
}

// AddConstant binds name to a fixed Type in the current frame's constant
// table.
func (s *Scope) AddConstant(name string, t types.Type) error {
	if s.nameTakenInTop(name) {
		return &RedefinedError{Name: name}
	}
	s.top().constants[name] = t
	return nil
}

// AddNamedType registers a struct (or other) named type in the current
// frame, for later Literal TypeName resolution.
func (s *Scope) AddNamedType(name string, t types.Type) error {
	top := s.top()
	if _, ok := top.namedTypes[name]; ok {
		return &RedefinedError{Name: name}
	}
	top.namedTypes[name] = t
	return nil
}

// UpdateNamedType overwrites an already-registered named type in whichever
// frame holds it, used only by the shallow checker to fill in a struct's
// real fields after a forward-reference placeholder was registered by
// AddNamedType (see internal/check/shallow.go). Unlike
// AddVariable/AddConstant/AddNamedType this never fails on an existing
// binding; that is the point.
func (s *Scope) UpdateNamedType(name string, t types.Type) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i].namedTypes[name]; ok {
			s.frames[i].namedTypes[name] = t
			return
		}
	}
	s.top().namedTypes[name] = t
}

// ResolveVariable walks the frame stack innermost-first for a variable
// binding, returning its shared Cell and whether it is mutable.
func (s *Scope) ResolveVariable(name string) (*Cell, bool, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].variables[name]; ok {
			return b.cell, b.mutable, true
		}
	}
	return nil, false, false
}

// ResolveConstant walks the frame stack for a constant binding.
func (s *Scope) ResolveConstant(name string) (types.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i].constants[name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

// ResolveNamedType walks the frame stack for a named type, satisfying
// types.NamedTypeTable.
func (s *Scope) ResolveNamedType(name string) (types.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i].namedTypes[name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

// UpdateVariable performs a "unification-lite" refinement: unify the
// variable's current cell type with update, storing
// the (possibly more refined) result back into the shared cell so every
// aliased AST site observes it.
func (s *Scope) UpdateVariable(name string, update types.Type) error {
	cell, _, ok := s.ResolveVariable(name)
	if !ok {
		return &UndefinedError{Name: name}
	}

	refined, err := types.Unify(cell.Get(), update)
	if err != nil {
		return err
	}

	cell.Set(refined)
	return nil
}

// Snapshot is a copy of the current frame stack and of the bindings
// visible right now, used as a checked node's context snapshot:
// it shares the same *Cell pointers (so later refinement is still
// observable through the snapshot) but freezes which names are visible
// at the point of the snapshot.
type Snapshot struct {
	scope *Scope
}

// Snapshot captures the scope as it is at the moment of the call, for
// embedding into a checked node's TypeInformation.
func (s *Scope) Snapshot() Snapshot {
	frames := make([]*frame, len(s.frames))
	for i, f := range s.frames {
		cp := newFrame()
		for k, v := range f.variables {
			cp.variables[k] = v
		}
		for k, v := range f.constants {
			cp.constants[k] = v
		}
		for k, v := range f.namedTypes {
			cp.namedTypes[k] = v
		}
		frames[i] = cp
	}
	return Snapshot{scope: &Scope{frames: frames}}
}

// ResolveVariable on a Snapshot looks up a name as of snapshot time,
// sharing cells with the live scope.
func (sn Snapshot) ResolveVariable(name string) (*Cell, bool, bool) {
	return sn.scope.ResolveVariable(name)
}

// ResolveNamedType on a Snapshot mirrors Scope's, for downstream consumers
// (validator, future codegen) that only hold a TypeInformation.
func (sn Snapshot) ResolveNamedType(name string) (types.Type, bool) {
	return sn.scope.ResolveNamedType(name)
}
