package evaluator

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

// Exported entry points for the bytecode backend. The compiler lowers
// most syntax to opcodes but shares one semantics implementation: member
// access, raising, freezing and type tests all route back through here
// so both execution engines agree on the fine print.

// ForeignFunction marks function objects owned by another execution
// engine. They type as Function and are invoked through the apply hook.
type ForeignFunction interface {
	Object
	ForeignFunction()
}

// IsError reports whether obj is a raised error signal.
func IsError(obj Object) bool {
	return isError(obj)
}

// Freeze marks a collection immutable, recursively.
func Freeze(obj Object) {
	freeze(obj)
}

// HashableKey reports whether obj may be used as a hash key.
func HashableKey(obj Object) bool {
	return hashableKey(obj)
}

// TypeMatches reports whether subject satisfies the named type, with
// class and interface names resolving through the inheritance chain.
func TypeMatches(typeName string, subject Object) bool {
	return typeMatches(typeName, subject)
}

// Raise turns a value into a raised error the way throw does: errors
// are re-raised, anything else is wrapped as RuntimeError with the
// original value as payload.
func Raise(value Object, line int) Object {
	value = Force(value)
	if err, ok := value.(*Error); ok {
		raised := err.AsRaised()
		if raised.Line == 0 {
			raised.Line = line
		}
		return raised
	}
	wrapped := NewError(RuntimeErrorKind, "%s", DisplayString(value))
	wrapped.Payload = value
	wrapped.Line = line
	return wrapped
}

// MemberGet resolves object.name from outside any class body.
func (e *Evaluator) MemberGet(object Object, name string, safe bool, env *Environment) Object {
	object = Force(object)
	if isError(object) {
		return object
	}
	if safe && object == NULL {
		return NULL
	}
	node := &ast.MemberExpression{Property: &ast.Identifier{Value: name}}
	switch recv := object.(type) {
	case *Instance:
		return e.instanceMember(recv, name, node, env)
	case *Class:
		return e.classMember(recv, name, node, env)
	case *Error:
		return errorMember(recv, name, node)
	default:
		return NewError(TypeErrorKind, "type %s has no member '%s'", TypeName(object), name)
	}
}

// MemberSet assigns object.name from outside any class body.
func (e *Evaluator) MemberSet(object Object, name string, value Object, env *Environment) Object {
	object = Force(object)
	if isError(object) {
		return object
	}
	node := &ast.MemberExpression{Property: &ast.Identifier{Value: name}}
	return e.setMember(object, node, value, env)
}

// ScopeResolve looks up a nested class through the '::' operator.
func ScopeResolve(left Object, name string) Object {
	left = Force(left)
	if isError(left) {
		return left
	}
	cls, ok := left.(*Class)
	if !ok {
		return NewError(TypeErrorKind, "'::' requires a class on the left, got %s", TypeName(left))
	}
	for c := cls; c != nil; c = c.Super {
		if inner, found := c.Nested[name]; found {
			return inner
		}
	}
	return NewError(NameErrorKind, "class %s has no nested class '%s'", cls.Name, name)
}
