// Package embed is the host-facing API for running Soli code inside a Go
// program. An Engine owns one evaluator and one global environment; both
// backends run against that pair, so sources, compiled chunks and natives
// all see the same world.
package embed

import (
	"strings"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/backend"
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/lexer"
	"github.com/solisoft/soli-lang-sub002/internal/native"
	"github.com/solisoft/soli-lang-sub002/internal/parser"
	"github.com/solisoft/soli-lang-sub002/internal/pipeline"
	"github.com/solisoft/soli-lang-sub002/internal/vm"
)

// SourceError wraps lexer and parser diagnostics for a source unit.
type SourceError struct {
	Diagnostics []*diagnostics.Diagnostic
}

func (e *SourceError) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// RuntimeError wraps the language-level error that terminated a run.
type RuntimeError struct {
	Err *evaluator.Error
}

func (e *RuntimeError) Error() string { return e.Err.Inspect() }

// Engine runs Soli programs for a host application.
type Engine struct {
	eval    *evaluator.Evaluator
	globals *evaluator.Environment
	backend backend.Backend
	machine *vm.VM
	file    string
}

type Option func(*Engine) error

// WithRegistry installs the registry's native functions into the engine.
// May be given several times; later registries win on name collisions.
func WithRegistry(r *native.Registry) Option {
	return func(e *Engine) error {
		r.InstallInto(e.eval)
		return nil
	}
}

// WithBackend selects the engine used by RunSource: backend.VMName
// (default) or backend.TreeWalkName.
func WithBackend(name string) Option {
	return func(e *Engine) error {
		b, err := backend.New(name, e.eval, e.globals)
		if err != nil {
			return err
		}
		e.backend = b
		return nil
	}
}

// WithFileName sets the file name reported in diagnostics.
func WithFileName(name string) Option {
	return func(e *Engine) error {
		e.file = name
		return nil
	}
}

func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		eval:    evaluator.New(),
		globals: evaluator.NewEnvironment(),
		file:    "(embed)",
	}
	// The VM machine exists even for tree-walk engines so RunChunk works
	// and interpreted code can call previously compiled closures.
	e.machine = vm.New(e.eval, e.globals)
	e.backend = backend.NewVM(e.eval, e.globals)
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Globals exposes the engine's environment so hosts can pre-bind values.
func (e *Engine) Globals() *evaluator.Environment { return e.globals }

// Parse runs the source through the lexer and parser stages.
func (e *Engine) Parse(src string) (*ast.Program, error) {
	ctx := pipeline.NewContext(src, e.file)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if ctx.HasErrors() {
		return nil, &SourceError{Diagnostics: ctx.Errors}
	}
	return ctx.AstRoot.(*ast.Program), nil
}

// RunSource parses and executes src on the configured backend. The value
// of the last statement is returned; state persists across calls.
func (e *Engine) RunSource(src string) (evaluator.Object, error) {
	program, err := e.Parse(src)
	if err != nil {
		return nil, err
	}
	result, rerr := e.backend.Run(program)
	if rerr != nil {
		return nil, &RuntimeError{Err: rerr}
	}
	return result, nil
}

// Compile parses src and compiles it to a bytecode chunk without running
// it. Programs that need the interpreter fallback still compile; they
// just cannot be serialized with EncodeBundle.
func (e *Engine) Compile(src string) (*vm.CompiledFunction, error) {
	program, err := e.Parse(src)
	if err != nil {
		return nil, err
	}
	fn, cerr := vm.Compile(program)
	if cerr != nil {
		return nil, &RuntimeError{Err: cerr}
	}
	return fn, nil
}

// RunChunk executes a previously compiled chunk against the engine's
// globals.
func (e *Engine) RunChunk(fn *vm.CompiledFunction) (evaluator.Object, error) {
	result, rerr := e.machine.Run(fn)
	if rerr != nil {
		return nil, &RuntimeError{Err: rerr}
	}
	return result, nil
}

// Backend reports the name of the configured execution engine.
func (e *Engine) Backend() string { return e.backend.Name() }
