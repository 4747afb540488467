package check

import (
	"fmt"

	"github.com/whylang/whyc/internal/position"
	"github.com/whylang/whyc/internal/types"
)

// ErrorKind tags which of the nine type-check failure kinds an Error
// carries.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota
	UndefinedType
	UndefinedVariable
	RedefinedConstant
	ImmutableAssignment
	WrongArity
	MissingField
	UnknownField
	UnresolvedType
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case UndefinedType:
		return "UndefinedType"
	case UndefinedVariable:
		return "UndefinedVariable"
	case RedefinedConstant:
		return "RedefinedConstant"
	case ImmutableAssignment:
		return "ImmutableAssignment"
	case WrongArity:
		return "WrongArity"
	case MissingField:
		return "MissingField"
	case UnknownField:
		return "UnknownField"
	case UnresolvedType:
		return "UnresolvedType"
	default:
		return "TypeCheckError"
	}
}

// Error is the single value type behind every type-check failure: all
// nine kinds share this shape (a Kind tag, a message, and a span), so
// callers switch on Kind rather than a type assertion per error struct.
type Error struct {
	Kind ErrorKind
	Msg  string
	At   position.Span
}

func (e *Error) Error() string { return e.Msg }

// Span satisfies internal/diagnostic.Spanned.
func (e *Error) Span() position.Span { return e.At }

func errTypeMismatch(expected, actual types.Type, at position.Span) *Error {
	return &Error{
		Kind: TypeMismatch,
		Msg:  fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual),
		At:   at,
	}
}

func errUndefinedType(name string, at position.Span) *Error {
	return &Error{Kind: UndefinedType, Msg: fmt.Sprintf("undefined type %q", name), At: at}
}

func errUndefinedVariable(name string, at position.Span) *Error {
	return &Error{Kind: UndefinedVariable, Msg: fmt.Sprintf("undefined variable %q", name), At: at}
}

func errRedefinedConstant(name string, at position.Span) *Error {
	return &Error{Kind: RedefinedConstant, Msg: fmt.Sprintf("%q is already defined in this scope", name), At: at}
}

func errImmutableAssignment(name string, at position.Span) *Error {
	return &Error{Kind: ImmutableAssignment, Msg: fmt.Sprintf("cannot assign to immutable binding %q", name), At: at}
}

func errWrongArity(expected, actual int, at position.Span) *Error {
	return &Error{
		Kind: WrongArity,
		Msg:  fmt.Sprintf("wrong number of arguments: expected %d, found %d", expected, actual),
		At:   at,
	}
}

func errMissingField(structName, field string, at position.Span) *Error {
	return &Error{
		Kind: MissingField,
		Msg:  fmt.Sprintf("missing field %q in initialisation of %q", field, structName),
		At:   at,
	}
}

func errUnknownField(structName, field string, at position.Span) *Error {
	return &Error{
		Kind: UnknownField,
		Msg:  fmt.Sprintf("%q has no field %q", structName, field),
		At:   at,
	}
}

func errUnresolvedType(at position.Span) *Error {
	return &Error{Kind: UnresolvedType, Msg: "could not infer a concrete type for this expression", At: at}
}
