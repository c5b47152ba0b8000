package evaluator

import (
	"fmt"
	"sync"
)

// ReturnValue, BreakSignal and ContinueSignal propagate non-local exits
// up through Eval. They never escape to user code.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType { return BREAK_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break" }

type ContinueSignal struct{}

func (cs *ContinueSignal) Type() ObjectType { return CONTINUE_OBJ }
func (cs *ContinueSignal) Inspect() string  { return "continue" }

// Error is both the propagation signal for raised conditions and the
// value a catch clause binds. Raised distinguishes the two states: only
// raised errors unwind, while error values built by the error builtin
// or bound by catch flow like ordinary data. Payload carries an optional
// user value from throw.
type Error struct {
	Kind    string
	Message string
	Line    int
	Column  int
	Payload Object
	Raised  bool
}

// AsValue returns a non-raised copy suitable for binding to user code.
func (e *Error) AsValue() *Error {
	clone := *e
	clone.Raised = false
	return &clone
}

// AsRaised returns a raised copy that unwinds until caught.
func (e *Error) AsRaised() *Error {
	clone := *e
	clone.Raised = true
	return &clone
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Future is a lazily forced asynchronous value. Resolve is called at
// most once; Force blocks until it finishes and caches the result.
type Future struct {
	Resolve func() Object

	once   sync.Once
	result Object
}

func (f *Future) Type() ObjectType { return FUTURE_OBJ }
func (f *Future) Inspect() string  { return "future" }

// Await forces the future. The result may itself be an *Error.
func (f *Future) Await() Object {
	f.once.Do(func() {
		f.result = f.Resolve()
		if f.result == nil {
			f.result = NULL
		}
	})
	return f.result
}

// Force collapses futures transparently: every operation that consumes
// a value calls it, so a Future behaves like its resolved value.
func Force(obj Object) Object {
	for {
		fut, ok := obj.(*Future)
		if !ok {
			return obj
		}
		obj = fut.Await()
	}
}
