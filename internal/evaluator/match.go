package evaluator

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

// evalMatchExpression tries each arm in order. The first arm whose
// pattern matches and whose guard passes produces the result; no match
// raises MatchError.
func (e *Evaluator) evalMatchExpression(node *ast.MatchExpression, env *Environment) Object {
	subject := Force(e.Eval(node.Subject, env))
	if isError(subject) {
		return subject
	}

	for _, arm := range node.Arms {
		armEnv := NewEnclosedEnvironment(env)
		matched, errObj := e.matchPattern(arm.Pattern, subject, armEnv)
		if errObj != nil {
			return errObj
		}
		if !matched {
			continue
		}
		if arm.Guard != nil {
			guard := e.Eval(arm.Guard, armEnv)
			if isError(guard) {
				return guard
			}
			if !Truthy(guard) {
				continue
			}
		}
		return e.Eval(arm.Body, armEnv)
	}

	return NewErrorAt(MatchErrorKind, node,
		"no pattern matched value %s", subject.Inspect())
}

// matchPattern reports whether pattern matches subject, binding names
// into env as it goes. Bindings from a failed arm are discarded with the
// arm's scope.
func (e *Evaluator) matchPattern(pattern ast.Pattern, subject Object, env *Environment) (bool, Object) {
	switch pattern := pattern.(type) {
	case *ast.WildcardPattern:
		return true, nil

	case *ast.LiteralPattern:
		expected := e.Eval(pattern.Value, env)
		if isError(expected) {
			return false, expected
		}
		return Equals(expected, subject), nil

	case *ast.IdentifierPattern:
		if pattern.TypeName != "" && !typeMatches(pattern.TypeName, subject) {
			return false, nil
		}
		env.Set(pattern.Name.Value, subject)
		return true, nil

	case *ast.ArrayPattern:
		arr, ok := subject.(*Array)
		if !ok {
			return false, nil
		}
		if pattern.Rest == nil {
			if len(arr.Elements) != len(pattern.Elements) {
				return false, nil
			}
		} else if len(arr.Elements) < len(pattern.Elements) {
			return false, nil
		}
		for i, elemPattern := range pattern.Elements {
			matched, errObj := e.matchPattern(elemPattern, Force(arr.Elements[i]), env)
			if errObj != nil || !matched {
				return false, errObj
			}
		}
		if pattern.Rest != nil {
			rest := make([]Object, len(arr.Elements)-len(pattern.Elements))
			copy(rest, arr.Elements[len(pattern.Elements):])
			env.Set(pattern.Rest.Value, &Array{Elements: rest})
		}
		return true, nil

	case *ast.HashPattern:
		hash, ok := subject.(*Hash)
		if !ok {
			return false, nil
		}
		for _, entry := range pattern.Entries {
			key := e.Eval(entry.Key, env)
			if isError(key) {
				return false, key
			}
			value, found := hash.Get(key)
			if !found {
				return false, nil
			}
			matched, errObj := e.matchPattern(entry.Pattern, Force(value), env)
			if errObj != nil || !matched {
				return false, errObj
			}
		}
		return true, nil

	default:
		return false, NewError(EngineFaultKind, "unhandled pattern type %T", pattern)
	}
}

// typeMatches implements the name: Type filter. For instances the name
// may be any class in the inheritance chain or a declared interface.
func typeMatches(typeName string, subject Object) bool {
	if TypeName(subject) == typeName {
		return true
	}
	if typeName == "Error" && subject.Type() == ERROR_OBJ {
		return true
	}
	if inst, ok := subject.(*Instance); ok {
		for c := inst.Class; c != nil; c = c.Super {
			if c.Name == typeName {
				return true
			}
			for _, iface := range c.Interfaces {
				if iface == typeName {
					return true
				}
			}
		}
	}
	return false
}
