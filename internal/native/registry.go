// Package native is the host boundary: every capability the host exposes
// to programs goes through a Registry of named functions. The engine has
// no other way to reach the outside world.
package native

import (
	"sort"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

type ArityKind int

const (
	// ArityFixed requires exactly N arguments.
	ArityFixed ArityKind = iota
	// ArityVariadic requires at least N arguments.
	ArityVariadic
)

type Arity struct {
	Kind ArityKind
	N    int
}

func Fixed(n int) Arity      { return Arity{Kind: ArityFixed, N: n} }
func Variadic(min int) Arity { return Arity{Kind: ArityVariadic, N: min} }

type Registry struct {
	fns map[string]*evaluator.Builtin
}

func NewRegistry() *Registry {
	return &Registry{fns: map[string]*evaluator.Builtin{}}
}

// Register adds a native function. The declared arity is enforced before
// fn runs; violations surface as TypeError in the program, never as a
// Go panic.
func (r *Registry) Register(name string, arity Arity, fn evaluator.BuiltinFunction) {
	r.fns[name] = &evaluator.Builtin{
		Name: name,
		Fn: func(args ...evaluator.Object) evaluator.Object {
			if errObj := checkArity(name, arity, len(args)); errObj != nil {
				return errObj
			}
			result := fn(args...)
			if result == nil {
				return evaluator.NULL
			}
			return result
		},
	}
}

func checkArity(name string, arity Arity, got int) evaluator.Object {
	switch arity.Kind {
	case ArityFixed:
		if got != arity.N {
			return evaluator.NewError(evaluator.TypeErrorKind,
				"%s expects %d arguments, got %d", name, arity.N, got)
		}
	case ArityVariadic:
		if got < arity.N {
			return evaluator.NewError(evaluator.TypeErrorKind,
				"%s expects at least %d arguments, got %d", name, arity.N, got)
		}
	}
	return nil
}

// Lookup returns the named function, or nil.
func (r *Registry) Lookup(name string) *evaluator.Builtin {
	return r.fns[name]
}

// Names lists registered functions in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InstallInto wires every registered function into an evaluator.
func (r *Registry) InstallInto(e *evaluator.Evaluator) {
	for _, b := range r.fns {
		e.RegisterBuiltin(b)
	}
}

// Merge copies other's functions into r, other winning on collisions.
func (r *Registry) Merge(other *Registry) {
	for name, b := range other.fns {
		r.fns[name] = b
	}
}
