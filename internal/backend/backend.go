// Package backend abstracts over the two execution engines. Both run the
// same parsed program against a shared global environment, so a host can
// switch engines without observable differences outside the documented
// destructuring fallback.
package backend

import (
	"fmt"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/pipeline"
	"github.com/solisoft/soli-lang-sub002/internal/vm"
)

// Backend executes a parsed program and reports the value of its last
// statement, or the error that terminated it.
type Backend interface {
	Name() string
	Run(program *ast.Program) (evaluator.Object, *evaluator.Error)
}

const (
	TreeWalkName = "treewalk"
	VMName       = "vm"
)

// New builds the named backend over a shared evaluator and globals pair.
func New(name string, eval *evaluator.Evaluator, globals *evaluator.Environment) (Backend, error) {
	switch name {
	case TreeWalkName:
		return NewTreeWalk(eval, globals), nil
	case VMName:
		return NewVM(eval, globals), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %q or %q)", name, TreeWalkName, VMName)
	}
}

// TreeWalk runs programs through the tree-walking interpreter.
type TreeWalk struct {
	eval    *evaluator.Evaluator
	globals *evaluator.Environment
}

func NewTreeWalk(eval *evaluator.Evaluator, globals *evaluator.Environment) *TreeWalk {
	return &TreeWalk{eval: eval, globals: globals}
}

func (b *TreeWalk) Name() string { return TreeWalkName }

func (b *TreeWalk) Run(program *ast.Program) (evaluator.Object, *evaluator.Error) {
	result := b.eval.Eval(program, b.globals)
	if err, ok := result.(*evaluator.Error); ok && evaluator.IsError(err) {
		return nil, err
	}
	return result, nil
}

// VM compiles programs to bytecode and runs them on the stack machine.
// The machine keeps the globals environment across Run calls, so a REPL
// can feed it one program per line.
type VM struct {
	machine *vm.VM
}

func NewVM(eval *evaluator.Evaluator, globals *evaluator.Environment) *VM {
	return &VM{machine: vm.New(eval, globals)}
}

func (b *VM) Name() string { return VMName }

func (b *VM) Run(program *ast.Program) (evaluator.Object, *evaluator.Error) {
	fn, err := vm.Compile(program)
	if err != nil {
		return nil, err
	}
	return b.machine.Run(fn)
}

// Processor adapts a Backend into the final pipeline stage. The program's
// value lands in ctx.Result; a runtime error lands there as a raised
// *evaluator.Error, keeping the evaluator's error-as-value convention.
type Processor struct {
	Backend Backend
}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.HasErrors() || ctx.AstRoot == nil {
		return ctx
	}
	program, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		return ctx
	}
	result, err := p.Backend.Run(program)
	if err != nil {
		ctx.Result = err
		return ctx
	}
	ctx.Result = result
	return ctx
}
