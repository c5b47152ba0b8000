package backend_test

import (
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/backend"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/lexer"
	"github.com/solisoft/soli-lang-sub002/internal/parser"
	"github.com/solisoft/soli-lang-sub002/internal/pipeline"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewContext(input, "test.soli")
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if ctx.HasErrors() {
		t.Fatalf("parse errors: %v", ctx.Errors)
	}
	return ctx.AstRoot.(*ast.Program)
}

func TestNewRejectsUnknownName(t *testing.T) {
	if _, err := backend.New("jit", evaluator.New(), evaluator.NewEnvironment()); err == nil {
		t.Fatal("expected error for unknown backend name")
	}
}

func TestBothBackendsAgree(t *testing.T) {
	src := `
fn square(x) { return x * x }
let total = 0
for v in [1, 2, 3] {
  total = total + square(v)
}
total
`
	for _, name := range []string{backend.TreeWalkName, backend.VMName} {
		b, err := backend.New(name, evaluator.New(), evaluator.NewEnvironment())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		result, rerr := b.Run(parse(t, src))
		if rerr != nil {
			t.Fatalf("%s: runtime error %s: %s", name, rerr.Kind, rerr.Message)
		}
		n, ok := result.(*evaluator.Integer)
		if !ok || n.Value != 14 {
			t.Errorf("%s: result = %s, want 14", name, result.Inspect())
		}
	}
}

func TestRunReportsRuntimeError(t *testing.T) {
	for _, name := range []string{backend.TreeWalkName, backend.VMName} {
		b, _ := backend.New(name, evaluator.New(), evaluator.NewEnvironment())
		_, err := b.Run(parse(t, `throw error("ValueError", "bad")`))
		if err == nil {
			t.Fatalf("%s: expected runtime error", name)
		}
		if err.Kind != evaluator.ValueErrorKind {
			t.Errorf("%s: kind = %s, want ValueError", name, err.Kind)
		}
	}
}

func TestVMBackendKeepsGlobalsAcrossRuns(t *testing.T) {
	b := backend.NewVM(evaluator.New(), evaluator.NewEnvironment())
	if _, err := b.Run(parse(t, "let counter = 10")); err != nil {
		t.Fatalf("first run: %s", err.Message)
	}
	result, err := b.Run(parse(t, "counter = counter + 5\ncounter"))
	if err != nil {
		t.Fatalf("second run: %s", err.Message)
	}
	if n := result.(*evaluator.Integer); n.Value != 15 {
		t.Errorf("counter = %d, want 15", n.Value)
	}
}

func TestProcessorStoresResult(t *testing.T) {
	ctx := pipeline.NewContext("2 + 3", "test.soli")
	b, _ := backend.New(backend.VMName, evaluator.New(), evaluator.NewEnvironment())
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&backend.Processor{Backend: b},
	).Run(ctx)
	n, ok := ctx.Result.(*evaluator.Integer)
	if !ok {
		t.Fatalf("Result is %T, want *Integer", ctx.Result)
	}
	if n.Value != 5 {
		t.Errorf("Result = %d, want 5", n.Value)
	}
}
