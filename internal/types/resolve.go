package types

import (
	"fmt"

	"github.com/whylang/whyc/internal/ast"
)

// NamedTypeTable is the minimal surface internal/scope.Scope exposes to
// this package; kept as a one-method interface rather than an import of
// internal/scope so that types (a dependency of both scope and check)
// never depends on scope, avoiding an import cycle.
type NamedTypeTable interface {
	ResolveNamedType(name string) (Type, bool)
}

// builtins maps the fixed literal type spellings to their Type,
// independent of any scope.
var builtins = map[string]Type{
	"i64":  NewInteger(),
	"i32":  NewInteger(),
	"u64":  NewInteger(),
	"u32":  NewInteger(),
	"f64":  NewFloat(),
	"f32":  NewFloat(),
	"void": NewVoid(),
	"bool": NewBoolean(),
}

// UndefinedTypeError is returned when a Literal TypeName names neither a
// builtin nor a scope-registered named type.
type UndefinedTypeError struct {
	Name string
}

func (e *UndefinedTypeError) Error() string {
	return fmt.Sprintf("undefined type %q", e.Name)
}

// Resolve converts a parsed TypeName into a concrete Type, recursively
// resolving Fn/Tuple/Array/Reference children, and looking up Literal
// names first among the fixed builtins then in table.
func Resolve(tn ast.TypeName, table NamedTypeTable) (Type, error) {
	switch t := tn.(type) {
	case *ast.LiteralType:
		if builtin, ok := builtins[t.Name]; ok {
			return builtin, nil
		}
		if named, ok := table.ResolveNamedType(t.Name); ok {
			return named, nil
		}
		return Type{}, &UndefinedTypeError{Name: t.Name}

	case *ast.FnType:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			resolved, err := Resolve(p, table)
			if err != nil {
				return Type{}, err
			}
			params[i] = resolved
		}
		ret, err := Resolve(t.Return, table)
		if err != nil {
			return Type{}, err
		}
		return NewFunction(params, ret), nil

	case *ast.TupleType:
		elems := make([]Type, len(t.Elements))
		for i, e := range t.Elements {
			resolved, err := Resolve(e, table)
			if err != nil {
				return Type{}, err
			}
			elems[i] = resolved
		}
		return NewTuple(elems), nil

	case *ast.ArrayType:
		elem, err := Resolve(t.Element, table)
		if err != nil {
			return Type{}, err
		}
		return NewArray(elem), nil

	case *ast.ReferenceType:
		inner, err := Resolve(t.Inner, table)
		if err != nil {
			return Type{}, err
		}
		return NewReference(inner), nil

	default:
		return Type{}, fmt.Errorf("types.Resolve: unhandled TypeName %T", tn)
	}
}
