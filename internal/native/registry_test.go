package native_test

import (
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/native"
)

func TestFixedArityEnforced(t *testing.T) {
	reg := native.NewRegistry()
	reg.Register("pair", native.Fixed(2), func(args ...evaluator.Object) evaluator.Object {
		return &evaluator.Array{Elements: args}
	})

	fn := reg.Lookup("pair")
	if fn == nil {
		t.Fatal("pair not registered")
	}

	result := fn.Fn(&evaluator.Integer{Value: 1})
	err, ok := result.(*evaluator.Error)
	if !ok || err.Kind != evaluator.TypeErrorKind {
		t.Fatalf("1-arg call = %v, want TypeError", result)
	}

	result = fn.Fn(&evaluator.Integer{Value: 1}, &evaluator.Integer{Value: 2})
	if arr, ok := result.(*evaluator.Array); !ok || len(arr.Elements) != 2 {
		t.Fatalf("2-arg call = %v, want 2-element array", result)
	}
}

func TestVariadicArityEnforced(t *testing.T) {
	reg := native.NewRegistry()
	reg.Register("sum", native.Variadic(1), func(args ...evaluator.Object) evaluator.Object {
		total := int64(0)
		for _, a := range args {
			total += a.(*evaluator.Integer).Value
		}
		return &evaluator.Integer{Value: total}
	})

	fn := reg.Lookup("sum")
	if err, ok := fn.Fn().(*evaluator.Error); !ok || err.Kind != evaluator.TypeErrorKind {
		t.Fatal("0-arg call should be TypeError")
	}
	result := fn.Fn(&evaluator.Integer{Value: 2}, &evaluator.Integer{Value: 3})
	if n, ok := result.(*evaluator.Integer); !ok || n.Value != 5 {
		t.Fatalf("sum = %v, want 5", result)
	}
}

func TestNilResultBecomesNull(t *testing.T) {
	reg := native.NewRegistry()
	reg.Register("noop", native.Fixed(0), func(args ...evaluator.Object) evaluator.Object {
		return nil
	})
	if reg.Lookup("noop").Fn() != evaluator.NULL {
		t.Fatal("nil native result should surface as null")
	}
}

func TestInstallInto(t *testing.T) {
	reg := native.NewRegistry()
	reg.Register("answer", native.Fixed(0), func(args ...evaluator.Object) evaluator.Object {
		return &evaluator.Integer{Value: 42}
	})

	e := evaluator.New()
	reg.InstallInto(e)
	b, ok := e.Builtin("answer")
	if !ok {
		t.Fatal("answer not installed")
	}
	if n := b.Fn().(*evaluator.Integer); n.Value != 42 {
		t.Fatalf("answer = %d, want 42", n.Value)
	}
}
