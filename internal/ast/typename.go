package ast

// TypeName is the syntactic (unresolved) spelling of a type, produced by
// the parser; internal/types.Resolve turns one into a concrete Type
// against the scope's named-type table. TypeName carries no
// metadata parameter: it is pure syntax, never reinterpreted by the
// checker in place.
type TypeName interface {
	GetSpan() Span
	typeNameNode()
}

// LiteralType is a bare identifier type reference: `i64`, `bool`, or a
// user-defined struct name.
type LiteralType struct {
	Name string
	Pos  Span
}

func (t *LiteralType) GetSpan() Span { return t.Pos }
func (t *LiteralType) typeNameNode()  {}

// FnType is `(T, ...) -> T`.
type FnType struct {
	Params []TypeName
	Return TypeName
	Pos    Span
}

func (t *FnType) GetSpan() Span { return t.Pos }
func (t *FnType) typeNameNode()  {}

// TupleType is `(T, ...)` with no arrow.
type TupleType struct {
	Elements []TypeName
	Pos      Span
}

func (t *TupleType) GetSpan() Span { return t.Pos }
func (t *TupleType) typeNameNode()  {}

// ArrayType is `[T]`.
type ArrayType struct {
	Element TypeName
	Pos     Span
}

func (t *ArrayType) GetSpan() Span { return t.Pos }
func (t *ArrayType) typeNameNode()  {}

// ReferenceType is a `&T`-shaped indirection. The surface grammar gives it
// no dedicated syntax, so the parser never produces one directly; it exists
// so internal/types.Type's Reference variant has a syntactic counterpart to
// resolve from.
type ReferenceType struct {
	Inner TypeName
	Pos   Span
}

func (t *ReferenceType) GetSpan() Span { return t.Pos }
func (t *ReferenceType) typeNameNode()  {}
