package check

import (
	"github.com/whylang/whyc/internal/ast"
	"github.com/whylang/whyc/internal/scope"
	"github.com/whylang/whyc/internal/types"
)

// Shallow runs a pre-pass over every top-level item, mutating sc in
// place so the deep checker (Check) can resolve forward
// references: mutually recursive functions, and structs referring to
// later-declared structs.
//
// It runs in three internal sub-passes so struct-name forward references
// resolve regardless of declaration order: (1) pre-register an empty
// placeholder Struct for every StructDeclaration so any TypeName can name
// it, (2) resolve and fill in every struct's real fields now that every
// struct name is visible, (3) resolve every Function/Constant/Declaration
// signature, which by now only ever needs fully-filled struct types. A
// struct field whose type is a later-declared struct keeps that struct's
// placeholder; the deep checker looks the full struct up by name when such
// a field is accessed.
func Shallow(prog ast.Program[ast.Unit], sc *scope.Scope) error {
	for _, stmt := range prog.Statements {
		if sd, ok := stmt.(*ast.StructDeclaration[ast.Unit]); ok {
			placeholder := types.NewStruct(sd.Name.Name, nil)
			if err := sc.AddNamedType(sd.Name.Name, placeholder); err != nil {
				return errRedefinedConstant(sd.Name.Name, sd.Pos)
			}
		}
	}

	for _, stmt := range prog.Statements {
		sd, ok := stmt.(*ast.StructDeclaration[ast.Unit])
		if !ok {
			continue
		}
		fields := make([]types.StructField, len(sd.Fields))
		for i, f := range sd.Fields {
			ft, err := types.Resolve(f.TypeName, sc)
			if err != nil {
				return errUndefinedType(nameOf(f.TypeName), f.TypeName.GetSpan())
			}
			fields[i] = types.StructField{Name: f.Name, Type: ft}
		}
		sc.UpdateNamedType(sd.Name.Name, types.NewStruct(sd.Name.Name, fields))
	}

	for _, stmt := range prog.Statements {
		switch n := stmt.(type) {
		case *ast.StructDeclaration[ast.Unit]:
			// handled above.

		case *ast.Declaration[ast.Unit]:
			t, err := types.Resolve(n.TypeName, sc)
			if err != nil {
				return errUndefinedType(nameOf(n.TypeName), n.TypeName.GetSpan())
			}
			if err := sc.AddVariable(n.Id.Name, scope.NewResolvedCell(t), false); err != nil {
				return errRedefinedConstant(n.Id.Name, n.Pos)
			}

		case *ast.Function[ast.Unit]:
			if n.Name == nil {
				continue
			}
			sig, err := functionSignature(n, sc)
			if err != nil {
				return err
			}
			if err := sc.AddVariable(n.Name.Name, scope.NewResolvedCell(sig), false); err != nil {
				return errRedefinedConstant(n.Name.Name, n.Pos)
			}

		case *ast.Constant[ast.Unit]:
			t, err := types.Resolve(n.TypeName, sc)
			if err != nil {
				return errUndefinedType(nameOf(n.TypeName), n.TypeName.GetSpan())
			}
			if err := sc.AddConstant(n.Id.Name, t); err != nil {
				return errRedefinedConstant(n.Id.Name, n.Pos)
			}

		case *ast.Initialisation[ast.Unit]:
			// A top-level `let` has no forward-reference concern: nothing
			// can call or read it before its own source position, so its
			// name is bound directly by the deep checker (Check) in
			// source order, the same as a nested `let`. Unlike
			// Declaration/Function/Constant, Shallow leaves it alone.

		case *ast.Comment[ast.Unit]:
			// no-op
		}
	}

	return nil
}

// functionSignature resolves a top-level Function's parameter and return
// TypeNames into a Function Type, registered so calls appearing earlier
// in source than the declaration still resolve.
func functionSignature(fn *ast.Function[ast.Unit], sc *scope.Scope) (types.Type, error) {
	params := make([]types.Type, len(fn.Parameters))
	for i, p := range fn.Parameters {
		t, err := types.Resolve(p.TypeName, sc)
		if err != nil {
			return types.Type{}, errUndefinedType(nameOf(p.TypeName), p.TypeName.GetSpan())
		}
		params[i] = t
	}
	ret, err := types.Resolve(fn.ReturnType, sc)
	if err != nil {
		return types.Type{}, errUndefinedType(nameOf(fn.ReturnType), fn.ReturnType.GetSpan())
	}
	return types.NewFunction(params, ret), nil
}

func nameOf(tn ast.TypeName) string {
	if lit, ok := tn.(*ast.LiteralType); ok {
		return lit.Name
	}
	return tn.GetSpan().String()
}
