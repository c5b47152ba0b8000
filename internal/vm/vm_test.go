package vm_test

import (
	"strings"
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/lexer"
	"github.com/solisoft/soli-lang-sub002/internal/parser"
	"github.com/solisoft/soli-lang-sub002/internal/pipeline"
	"github.com/solisoft/soli-lang-sub002/internal/vm"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewContext(input, "test.soli")
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if ctx.HasErrors() {
		var msgs []string
		for _, err := range ctx.Errors {
			msgs = append(msgs, err.Error())
		}
		t.Fatalf("parse errors:\n%s", strings.Join(msgs, "\n"))
	}
	return ctx.AstRoot.(*ast.Program)
}

func compileProgram(t *testing.T, input string) *vm.CompiledFunction {
	t.Helper()
	fn, err := vm.Compile(parseProgram(t, input))
	if err != nil {
		t.Fatalf("compile error: %s", err.Message)
	}
	return fn
}

func runVM(t *testing.T, input string) (evaluator.Object, *evaluator.Error) {
	t.Helper()
	fn := compileProgram(t, input)
	eval := evaluator.New()
	machine := vm.New(eval, evaluator.NewEnvironment())
	return machine.Run(fn)
}

func runValue(t *testing.T, input string) evaluator.Object {
	t.Helper()
	result, err := runVM(t, input)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s: %s", err.Kind, err.Message)
	}
	return result
}

func runError(t *testing.T, input string, kind string) *evaluator.Error {
	t.Helper()
	_, err := runVM(t, input)
	if err == nil {
		t.Fatalf("expected %s, program succeeded", kind)
	}
	if err.Kind != kind {
		t.Fatalf("kind = %s, want %s (message: %s)", err.Kind, kind, err.Message)
	}
	return err
}

func wantInteger(t *testing.T, obj evaluator.Object, expected int64) {
	t.Helper()
	result, ok := obj.(*evaluator.Integer)
	if !ok {
		t.Fatalf("object is %T (%s), want *Integer", obj, obj.Inspect())
	}
	if result.Value != expected {
		t.Errorf("value = %d, want %d", result.Value, expected)
	}
}

func wantString(t *testing.T, obj evaluator.Object, expected string) {
	t.Helper()
	result, ok := obj.(*evaluator.String)
	if !ok {
		t.Fatalf("object is %T (%s), want *String", obj, obj.Inspect())
	}
	if result.Value != expected {
		t.Errorf("value = %q, want %q", result.Value, expected)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2", 16},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"(5 + 10) * 2", 30},
		{"-7", -7},
		{"7 / 2", 3},
		{"7 % 3", 1},
	}
	for _, tt := range tests {
		wantInteger(t, runValue(t, tt.input), tt.expected)
	}
}

func TestGlobalBindings(t *testing.T) {
	wantInteger(t, runValue(t, "let a = 5\nlet b = a * 2\na = a + b\na"), 15)
}

func TestGlobalConstReassign(t *testing.T) {
	runError(t, "const x = 1\nx = 2", evaluator.ConstReassignErrorKind)
}

func TestLocalConstReassign(t *testing.T) {
	input := `
fn f() {
  const x = 5
  x = 6
  return x
}
f()
`
	runError(t, input, evaluator.ConstReassignErrorKind)
}

func TestConstFreezesCollections(t *testing.T) {
	runError(t, "const arr = [1, 2]\npush(arr, 3)", evaluator.ConstReassignErrorKind)
}

func TestUndefinedName(t *testing.T) {
	runError(t, "missing + 1", evaluator.NameErrorKind)
}

func TestBlockScoping(t *testing.T) {
	input := `
let x = 1
if true {
  let y = x + 1
  x = y * 2
}
x
`
	wantInteger(t, runValue(t, input), 4)
}

func TestUnlessStatement(t *testing.T) {
	input := `
let result = "a"
unless false {
  result = "b"
}
result
`
	wantString(t, runValue(t, input), "b")
}

func TestWhileWithBreakContinue(t *testing.T) {
	input := `
let total = 0
let i = 0
while i < 10 {
  i = i + 1
  continue if i % 2 == 0
  break if i > 7
  total = total + i
}
total
`
	wantInteger(t, runValue(t, input), 16)
}

func TestForInArray(t *testing.T) {
	input := `
let total = 0
for i, v in [10, 20, 30] {
  total = total + i + v
}
total
`
	wantInteger(t, runValue(t, input), 63)
}

func TestForInHash(t *testing.T) {
	input := `
let h = {a: 1, b: 2}
let s = ""
for k, v in h {
  s = s + k + str(v)
}
s
`
	wantString(t, runValue(t, input), "a1b2")
}

func TestForInString(t *testing.T) {
	input := `
let out = ""
for c in "abc" {
  out = c + out
}
out
`
	wantString(t, runValue(t, input), "cba")
}

func TestFunctionCalls(t *testing.T) {
	input := `
fn add(a, b) {
  return a + b
}
add(2, 3) * add(1, 1)
`
	wantInteger(t, runValue(t, input), 10)
}

func TestImplicitNullReturn(t *testing.T) {
	result := runValue(t, "fn f() { 1 }\nf()")
	if result != evaluator.NULL {
		t.Fatalf("object is %s, want null", result.Inspect())
	}
}

func TestArityError(t *testing.T) {
	runError(t, "fn f(a, b) { return a }\nf(1)", evaluator.TypeErrorKind)
}

func TestVariadicAndSpread(t *testing.T) {
	input := `
fn sum(first, ...rest) {
  let total = first
  for v in rest {
    total = total + v
  }
  return total
}
sum(1, 2, 3) + sum(...[10, 20, 30, 40])
`
	wantInteger(t, runValue(t, input), 106)
}

func TestClosureCounter(t *testing.T) {
	input := `
fn makeCounter() {
  let n = 0
  return fn() {
    n = n + 1
    return n
  }
}
let a = makeCounter()
let b = makeCounter()
a()
a()
a() + b()
`
	wantInteger(t, runValue(t, input), 4)
}

func TestClosuresCaptureLoopVariable(t *testing.T) {
	input := `
fn makeGetters() {
  let fns = []
  for v in [1, 2, 3] {
    push(fns, fn() { return v })
  }
  return fns
}
let fns = makeGetters()
fns[0]() + fns[1]() + fns[2]()
`
	wantInteger(t, runValue(t, input), 6)
}

func TestRecursion(t *testing.T) {
	input := `
fn fib(n) {
  return n if n < 2
  return fib(n - 1) + fib(n - 2)
}
fib(12)
`
	wantInteger(t, runValue(t, input), 144)
}

func TestNestedFunctionRecursion(t *testing.T) {
	input := `
fn outer() {
  fn fact(n) {
    if n < 2 { return 1 }
    return n * fact(n - 1)
  }
  return fact(5)
}
outer()
`
	wantInteger(t, runValue(t, input), 120)
}

func TestScriptResultOfTrailingDeclaration(t *testing.T) {
	for _, src := range []string{
		"5\nlet y = 1",
		"5\nfn f() { return 1 }",
		"5\nwhile false { 1 }",
		"5\nfor v in [1] { v }",
	} {
		if result := runValue(t, src); result != evaluator.NULL {
			t.Errorf("%q: object is %s, want null", src, result.Inspect())
		}
	}
}

func TestCallDepthLimit(t *testing.T) {
	runError(t, "fn f() { return f() }\nf()", evaluator.StackOverflowErrorKind)
}

func TestPipeAndTernary(t *testing.T) {
	input := `
fn double(x) { return x * 2 }
let v = 5 |> double
v > 9 ? "big" : "small"
`
	wantString(t, runValue(t, input), "big")
}

func TestLogicalOperators(t *testing.T) {
	wantString(t, runValue(t, `false || "fallback"`), "fallback")
	wantInteger(t, runValue(t, "let x = null\nx ?? 7"), 7)
	wantInteger(t, runValue(t, "0 ?? 7"), 0)
	result := runValue(t, `true && false`)
	if result != evaluator.FALSE {
		t.Fatalf("object is %s, want false", result.Inspect())
	}
}

func TestInterpolation(t *testing.T) {
	wantString(t, runValue(t, `"x is \(3 + 4)"`), "x is 7")
}

func TestSafeNavigationAndCoalesce(t *testing.T) {
	input := `
let h = {user: null}
h["user"]&.name ?? "anon"
`
	wantString(t, runValue(t, input), "anon")
}

func TestIndexing(t *testing.T) {
	wantInteger(t, runValue(t, "[1, 2, 3][-1]"), 3)
	runError(t, "[1, 2, 3][5]", evaluator.IndexErrorKind)
	result := runValue(t, `{a: 1}["missing"]`)
	if result != evaluator.NULL {
		t.Fatalf("missing key = %s, want null", result.Inspect())
	}
	wantInteger(t, runValue(t, "at([1, 2, 3], -1)"), 3)
	runError(t, "at([1, 2, 3], 3)", evaluator.IndexErrorKind)
}

func TestIndexAssignment(t *testing.T) {
	input := `
let arr = [1, 2, 3]
arr[1] = 20
arr[1] + arr[0]
`
	wantInteger(t, runValue(t, input), 21)
}

func TestCompoundAssignment(t *testing.T) {
	input := `
let h = {count: 1}
h["count"] += 4
h["count"]
`
	wantInteger(t, runValue(t, input), 5)
}

func TestTryCatchFinallyOrdering(t *testing.T) {
	input := `
let log = []
try {
  push(log, "try")
  throw error("TypeError", "boom")
  push(log, "unreached")
} catch (e: ValueError) {
  push(log, "wrong")
} catch (e: TypeError) {
  push(log, "caught " + e.kind)
} finally {
  push(log, "finally")
}
join(log, ";")
`
	wantString(t, runValue(t, input), "try;caught TypeError;finally")
}

func TestUncaughtErrorPropagates(t *testing.T) {
	err := runError(t, `throw error("ValueError", "nope")`, evaluator.ValueErrorKind)
	if err.Message != "nope" {
		t.Errorf("message = %q, want %q", err.Message, "nope")
	}
}

func TestThrowNonErrorWraps(t *testing.T) {
	input := `
let payload = null
try {
  throw 42
} catch (e) {
  payload = e.payload
}
payload
`
	wantInteger(t, runValue(t, input), 42)
}

func TestUnmatchedCatchRethrows(t *testing.T) {
	input := `
let out = ""
try {
  try {
    throw error("KeyError", "inner")
  } catch (e: TypeError) {
    out = "wrong"
  }
} catch (e) {
  out = "outer " + e.kind
}
out
`
	wantString(t, runValue(t, input), "outer KeyError")
}

func TestFinallyReplacesReturn(t *testing.T) {
	input := `
fn f() {
  try {
    return 1
  } finally {
    return 99
  }
}
f()
`
	wantInteger(t, runValue(t, input), 99)
}

func TestBreakRunsFinally(t *testing.T) {
	input := `
let log = []
while true {
  try {
    break
  } finally {
    push(log, "f")
  }
}
len(log)
`
	wantInteger(t, runValue(t, input), 1)
}

func TestErrorInCatchBodyRunsFinally(t *testing.T) {
	input := `
let log = []
try {
  try {
    throw error("TypeError", "one")
  } catch (e) {
    push(log, "catch")
    throw error("ValueError", "two")
  } finally {
    push(log, "finally")
  }
} catch (e) {
  push(log, "outer " + e.kind)
}
join(log, ";")
`
	wantString(t, runValue(t, input), "catch;finally;outer ValueError")
}

func TestErrorValueDoesNotRaise(t *testing.T) {
	input := `
let e = error("TypeError", "not raised")
e.kind
`
	wantString(t, runValue(t, input), "TypeError")
}

func TestMatchSimplePatterns(t *testing.T) {
	input := `
fn classify(x) {
  return match x {
    0 => "zero"
    n: Int if n < 0 => "negative"
    n: Int => "positive"
    s: String => "str:" + s
    true => "yes"
    _ => "other"
  }
}
join([classify(0), classify(-5), classify(3), classify("hi"), classify(true), classify(3.5)], ",")
`
	wantString(t, runValue(t, input), "zero,negative,positive,str:hi,yes,other")
}

func TestMatchNoArmRaises(t *testing.T) {
	runError(t, "match 99 {\n 1 => \"a\"\n}", evaluator.MatchErrorKind)
}

func TestDestructuringMatchFallsBack(t *testing.T) {
	input := `
let result = match [1, 2, 3] {
  [a, b, ...rest] => a + b + len(rest)
  _ => 0
}
result
`
	wantInteger(t, runValue(t, input), 4)
}

func TestFallbackFunctionCallableFromBytecode(t *testing.T) {
	input := `
fn firstTwo(arr) {
  return match arr {
    [a, b, ...rest] => [a, b]
    _ => []
  }
}
let pair = firstTwo([7, 8, 9])
pair[0] + pair[1]
`
	wantInteger(t, runValue(t, input), 15)
}

func TestClassesRunThroughInterpreter(t *testing.T) {
	input := `
class Animal {
  name: String

  new(name) {
    this.name = name
  }

  fn speak() {
    return "..."
  }

  fn intro() {
    return "\(this.name) says \(this.speak())"
  }
}

class Dog extends Animal {
  fn speak() {
    return "woof"
  }
}

let d = new Dog("rex")
d.intro()
`
	wantString(t, runValue(t, input), "rex says woof")
}

func TestInterpretedCodeCallsCompiledClosure(t *testing.T) {
	input := `
class Caller {
  fn invoke(f) {
    return f(10)
  }
}
fn double(x) { return x * 2 }
let c = new Caller()
c.invoke(double)
`
	wantInteger(t, runValue(t, input), 20)
}

func TestHashPreservesOrder(t *testing.T) {
	input := `
let h = {c: 1, a: 2, b: 3}
h["z"] = 4
join(keys(h), ",")
`
	wantString(t, runValue(t, input), "c,a,b,z")
}

func TestBackendEquivalence(t *testing.T) {
	programs := []string{
		"1 + 2 * 3 - 4 / 2",
		"0.10D + 0.20D",
		"7.5 + 2",
		`"abc" + "def"`,
		"[1, 2] + [3]",
		"let x = 10\nlet y = x * x\ny - x",
		"fn f(n) { return n * 3 }\nf(4) + f(5)",
		"let total = 0\nfor v in range(1, 6) { total = total + v }\ntotal",
		"let s = \"\"\nfor k, v in {x: 1, y: 2} { s = s + k }\ns",
		"match 5 {\n n: Int if n > 3 => \"big\"\n _ => \"small\"\n}",
		"let out = \"\"\ntry { throw error(\"KeyError\", \"k\") } catch (e) { out = e.kind }\nout",
		"fn make() {\n let n = 100\n return fn() { return n + 1 }\n}\nmake()()",
		"!null",
		"\"héllo\"[1]",
		"5\nlet y = 1",
		"fn outer() {\n fn twice(n) { return n < 1 ? 0 : 2 + twice(n - 1) }\n return twice(3)\n}\nouter()",
	}

	for _, src := range programs {
		program := parseProgram(t, src)

		interp := evaluator.New()
		expected := interp.Eval(program, evaluator.NewEnvironment())
		if evaluator.IsError(expected) {
			t.Fatalf("interpreter error for %q: %s", src, expected.Inspect())
		}

		fn, cerr := vm.Compile(program)
		if cerr != nil {
			t.Fatalf("compile error for %q: %s", src, cerr.Message)
		}
		eval := evaluator.New()
		machine := vm.New(eval, evaluator.NewEnvironment())
		got, rerr := machine.Run(fn)
		if rerr != nil {
			t.Fatalf("vm error for %q: %s: %s", src, rerr.Kind, rerr.Message)
		}

		if got.Inspect() != expected.Inspect() {
			t.Errorf("backend mismatch for %q: interpreter %s, vm %s",
				src, expected.Inspect(), got.Inspect())
		}
	}
}

func TestBundleRoundTrip(t *testing.T) {
	src := `
fn triple(x) { return x * 3 }
let parts = ["a", "b"]
"\(triple(7))-\(join(parts, ""))"
`
	fn := compileProgram(t, src)
	data, err := vm.EncodeBundle(fn)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := vm.DecodeBundle(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	eval := evaluator.New()
	machine := vm.New(eval, evaluator.NewEnvironment())
	result, rerr := machine.Run(decoded)
	if rerr != nil {
		t.Fatalf("run decoded: %s: %s", rerr.Kind, rerr.Message)
	}
	wantString(t, result, "21-ab")
}

func TestBundleRejectsInterpreterFallback(t *testing.T) {
	fn := compileProgram(t, "class C {}\nlet c = new C()")
	if _, err := vm.EncodeBundle(fn); err == nil {
		t.Fatal("expected encode to reject fallback constants")
	}
}

func TestDisassembleOutput(t *testing.T) {
	fn := compileProgram(t, "let x = 1\nx + 2")
	out := vm.Disassemble(fn.Chunk, "script")
	for _, want := range []string{"== script ==", "OP_CONSTANT", "OP_DEFINE_GLOBAL", "OP_ADD", "OP_RETURN"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}
