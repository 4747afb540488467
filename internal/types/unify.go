package types

import "fmt"

// MismatchError is the structural "unification-lite" failure
// Scope.UpdateVariable returns: concrete-vs-different-concrete types
// never unify.
type MismatchError struct {
	Expected Type
	Actual   Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Actual)
}

// Unify reconciles a cell's current type with an incoming update: Unknown
// unifies with anything; a Function can only be refined by another
// Function (refining its params/return recursively, so
// a `Function{[Unknown], Unknown}` can still pick up concrete types field
// by field); any other concrete-vs-different-concrete pairing is a
// MismatchError. The returned Type is the most refined type known so far.
func Unify(current, update Type) (Type, error) {
	if current.Kind == Unknown {
		return update, nil
	}
	if update.Kind == Unknown {
		return current, nil
	}

	if current.Kind == Function && update.Kind == Function {
		if len(current.Params) != len(update.Params) {
			return Type{}, &MismatchError{Expected: current, Actual: update}
		}

		params := make([]Type, len(current.Params))
		for i := range params {
			p, err := Unify(current.Params[i], update.Params[i])
			if err != nil {
				return Type{}, &MismatchError{Expected: current, Actual: update}
			}
			params[i] = p
		}

		ret, err := Unify(*current.Return, *update.Return)
		if err != nil {
			return Type{}, &MismatchError{Expected: current, Actual: update}
		}

		return NewFunction(params, ret), nil
	}

	if !Equal(current, update) {
		return Type{}, &MismatchError{Expected: current, Actual: update}
	}

	return current, nil
}
