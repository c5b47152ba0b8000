package embed_test

import (
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/backend"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/native"
	"github.com/solisoft/soli-lang-sub002/pkg/embed"
)

func TestRunSourceKeepsState(t *testing.T) {
	e, err := embed.New()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.RunSource("let x = 40"); err != nil {
		t.Fatal(err)
	}
	result, err := e.RunSource("x + 2")
	if err != nil {
		t.Fatal(err)
	}
	if n := result.(*evaluator.Integer); n.Value != 42 {
		t.Errorf("x + 2 = %d, want 42", n.Value)
	}
}

func TestRunSourceReportsParseError(t *testing.T) {
	e, _ := embed.New()
	_, err := e.RunSource("let = 5")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if _, ok := err.(*embed.SourceError); !ok {
		t.Fatalf("error is %T, want *SourceError", err)
	}
}

func TestRunSourceReportsRuntimeError(t *testing.T) {
	e, _ := embed.New()
	_, err := e.RunSource(`throw error("KeyError", "missing")`)
	rerr, ok := err.(*embed.RuntimeError)
	if !ok {
		t.Fatalf("error is %T, want *RuntimeError", err)
	}
	if rerr.Err.Kind != evaluator.KeyErrorKind {
		t.Errorf("kind = %s, want KeyError", rerr.Err.Kind)
	}
}

func TestWithRegistry(t *testing.T) {
	reg := native.NewRegistry()
	reg.Register("answer", native.Fixed(0), func(args ...evaluator.Object) evaluator.Object {
		return &evaluator.Integer{Value: 42}
	})
	e, err := embed.New(embed.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	result, err := e.RunSource("answer()")
	if err != nil {
		t.Fatal(err)
	}
	if n := result.(*evaluator.Integer); n.Value != 42 {
		t.Errorf("answer() = %d, want 42", n.Value)
	}
}

func TestTreeWalkBackendOption(t *testing.T) {
	e, err := embed.New(embed.WithBackend(backend.TreeWalkName))
	if err != nil {
		t.Fatal(err)
	}
	if e.Backend() != backend.TreeWalkName {
		t.Fatalf("Backend() = %s", e.Backend())
	}
	result, err := e.RunSource("class Point {\n x: Int\n new(x) { this.x = x }\n}\nlet p = new Point(9)\np.x")
	if err != nil {
		t.Fatal(err)
	}
	if n := result.(*evaluator.Integer); n.Value != 9 {
		t.Errorf("p.x = %d, want 9", n.Value)
	}
}

func TestCompileAndRunChunk(t *testing.T) {
	e, _ := embed.New()
	fn, err := e.Compile("fn inc(n) { return n + 1 }\ninc(41)")
	if err != nil {
		t.Fatal(err)
	}
	result, err := e.RunChunk(fn)
	if err != nil {
		t.Fatal(err)
	}
	if n := result.(*evaluator.Integer); n.Value != 42 {
		t.Errorf("chunk result = %d, want 42", n.Value)
	}
}
