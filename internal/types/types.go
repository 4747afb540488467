// Package types implements the resolved type lattice and the TypeName
// → Type conversion that turns parsed type syntax into it.
//
// Type is a closed Kind enum plus a single struct carrying every variant's
// payload, rather than one Go type per variant: this language has no
// generics, traits or effects to complicate that, so the flat
// representation stays simple.
package types

import (
	"fmt"
	"strings"
)

// Kind tags which variant of Type a value holds.
type Kind int

const (
	Void Kind = iota
	Integer
	FloatingPoint
	Boolean
	Unknown
	Function
	Array
	Tuple
	Struct
	Reference
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Integer:
		return "integer"
	case FloatingPoint:
		return "float"
	case Boolean:
		return "bool"
	case Unknown:
		return "unknown"
	case Function:
		return "function"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Struct:
		return "struct"
	case Reference:
		return "reference"
	default:
		return "?"
	}
}

// StructField is one ordered field of a resolved struct type, kept as a
// slice rather than a map so MissingField/UnknownField diagnostics can
// report fields in declaration order.
type StructField struct {
	Name string
	Type Type
}

// Type is the resolved type lattice. Every variant is represented by a
// zero-valued field group selected by Kind; Params/Return
// are populated only for Function, Element only for Array/Reference,
// Elements only for Tuple, and Name/Fields only for Struct.
type Type struct {
	Kind     Kind
	Params   []Type // Function
	Return   *Type  // Function
	Element  *Type  // Array, Reference
	Elements []Type // Tuple
	Name     string // Struct
	Fields   []StructField
}

func (t Type) String() string {
	switch t.Kind {
	case Function:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		ret := "void"
		if t.Return != nil {
			ret = t.Return.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), ret)
	case Array:
		return fmt.Sprintf("[%s]", t.Element.String())
	case Reference:
		return fmt.Sprintf("&%s", t.Element.String())
	case Tuple:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = e.String()
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	case Struct:
		return t.Name
	default:
		return t.Kind.String()
	}
}

// Constructors.

func NewVoid() Type          { return Type{Kind: Void} }
func NewInteger() Type       { return Type{Kind: Integer} }
func NewFloat() Type         { return Type{Kind: FloatingPoint} }
func NewBoolean() Type       { return Type{Kind: Boolean} }
func NewUnknown() Type       { return Type{Kind: Unknown} }
func NewArray(elem Type) Type {
	return Type{Kind: Array, Element: &elem}
}
func NewReference(inner Type) Type {
	return Type{Kind: Reference, Element: &inner}
}
func NewTuple(elems []Type) Type {
	return Type{Kind: Tuple, Elements: elems}
}
func NewFunction(params []Type, ret Type) Type {
	return Type{Kind: Function, Params: params, Return: &ret}
}
func NewStruct(name string, fields []StructField) Type {
	return Type{Kind: Struct, Name: name, Fields: fields}
}

// Equal is plain structural equality; Unknown is NOT treated as equal to
// anything here. That looseness belongs to Unify, used specifically
// during variable-update propagation.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Function:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(*a.Return, *b.Return)
	case Array, Reference:
		return Equal(*a.Element, *b.Element)
	case Tuple:
		if len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case Struct:
		return a.Name == b.Name
	default:
		return true
	}
}

// ContainsUnknown reports whether t has an Unknown anywhere in it, not
// just at the root: `[unknown]` or `(unknown) -> i64` are as unresolved
// as a bare Unknown for the validator's purposes.
func ContainsUnknown(t Type) bool {
	switch t.Kind {
	case Unknown:
		return true
	case Function:
		for _, p := range t.Params {
			if ContainsUnknown(p) {
				return true
			}
		}
		return t.Return != nil && ContainsUnknown(*t.Return)
	case Array, Reference:
		return t.Element != nil && ContainsUnknown(*t.Element)
	case Tuple:
		for _, e := range t.Elements {
			if ContainsUnknown(e) {
				return true
			}
		}
		return false
	case Struct:
		for _, f := range t.Fields {
			if ContainsUnknown(f.Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Field looks up a struct field by name in declaration order.
func (t Type) Field(name string) (StructField, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}
