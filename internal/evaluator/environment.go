package evaluator

// Environment is one lexical scope. Lookups walk outward through outer;
// closures capture the environment they were created in.
type Environment struct {
	store  map[string]Object
	consts map[string]bool
	outer  *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: map[string]Object{}, consts: map[string]bool{}}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return obj, ok
}

// Set defines or shadows name in this scope.
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// SetConst defines name as a const binding in this scope.
func (e *Environment) SetConst(name string, val Object) Object {
	e.store[name] = val
	e.consts[name] = true
	return val
}

// Update rebinds the nearest existing definition of name. It fails with
// ok=false when name is undefined, and reports constViolation when the
// binding it found is const.
func (e *Environment) Update(name string, val Object) (ok bool, constViolation bool) {
	for env := e; env != nil; env = env.outer {
		if _, exists := env.store[name]; exists {
			if env.consts[name] {
				return false, true
			}
			env.store[name] = val
			return true, false
		}
	}
	return false, false
}

// Has reports whether name is defined in this scope only.
func (e *Environment) Has(name string) bool {
	_, ok := e.store[name]
	return ok
}

// Names returns the bindings defined directly in this scope.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	return names
}
