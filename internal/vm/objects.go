package vm

import (
	"fmt"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

const (
	CompiledFunctionObj evaluator.ObjectType = "CompiledFunction"
	ClosureObj          evaluator.ObjectType = "Closure"
	AstNodeObj          evaluator.ObjectType = "AstNode"
)

// CompiledFunction is a function body lowered to bytecode. It lives in a
// chunk's constant pool and is wrapped in a Closure at runtime.
type CompiledFunction struct {
	Chunk        *Chunk
	NumParams    int
	Variadic     bool
	UpvalueCount int
	Name         string
}

func (f *CompiledFunction) Type() evaluator.ObjectType { return CompiledFunctionObj }
func (f *CompiledFunction) ForeignFunction()           {}
func (f *CompiledFunction) Inspect() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("fn %s/%d", name, f.NumParams)
}

// Upvalue is a captured variable. While the source slot is still on the
// stack, Location points into it; once the frame unwinds the value is
// closed over into Closed and Location points there instead.
type Upvalue struct {
	Location *evaluator.Object
	Closed   evaluator.Object
}

func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// Closure pairs a compiled function with its captured upvalues.
type Closure struct {
	Fn       *CompiledFunction
	Upvalues []*Upvalue
}

func (c *Closure) Type() evaluator.ObjectType { return ClosureObj }
func (c *Closure) ForeignFunction()           {}
func (c *Closure) Inspect() string            { return c.Fn.Inspect() }

// astNode smuggles an AST subtree through the constant pool for the
// evaluator fallback opcode.
type astNode struct {
	Node interface{}
}

func (n *astNode) Type() evaluator.ObjectType { return AstNodeObj }
func (n *astNode) Inspect() string            { return "<ast>" }

// iterator is the runtime object behind for-in loops. The next function
// walks a snapshot taken when iteration began so body mutations are safe.
type iterator struct {
	next func() (key, value evaluator.Object, ok bool)
}

func (it *iterator) Type() evaluator.ObjectType { return "Iterator" }
func (it *iterator) Inspect() string            { return "<iterator>" }
