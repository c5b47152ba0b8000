package evaluator_test

import (
	"strings"
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/lexer"
	"github.com/solisoft/soli-lang-sub002/internal/parser"
	"github.com/solisoft/soli-lang-sub002/internal/pipeline"
)

func testEval(t *testing.T, input string) evaluator.Object {
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

	e := evaluator.New()
	env := evaluator.NewEnvironment()
	return e.Eval(ctx.AstRoot.(*ast.Program), env)
}

func testIntegerObject(t *testing.T, obj evaluator.Object, expected int64) {
	t.Helper()
	result, ok := obj.(*evaluator.Integer)
	if !ok {
		t.Fatalf("object is %T (%s), want *Integer", obj, obj.Inspect())
	}
	if result.Value != expected {
		t.Errorf("value = %d, want %d", result.Value, expected)
	}
}

func testStringObject(t *testing.T, obj evaluator.Object, expected string) {
	t.Helper()
	result, ok := obj.(*evaluator.String)
	if !ok {
		t.Fatalf("object is %T (%s), want *String", obj, obj.Inspect())
	}
	if result.Value != expected {
		t.Errorf("value = %q, want %q", result.Value, expected)
	}
}

func testBooleanObject(t *testing.T, obj evaluator.Object, expected bool) {
	t.Helper()
	result, ok := obj.(*evaluator.Boolean)
	if !ok {
		t.Fatalf("object is %T (%s), want *Boolean", obj, obj.Inspect())
	}
	if result.Value != expected {
		t.Errorf("value = %t, want %t", result.Value, expected)
	}
}

func testErrorKind(t *testing.T, obj evaluator.Object, kind string) *evaluator.Error {
	t.Helper()
	err, ok := obj.(*evaluator.Error)
	if !ok {
		t.Fatalf("object is %T (%s), want *Error", obj, obj.Inspect())
	}
	if err.Kind != kind {
		t.Errorf("kind = %s, want %s (message: %s)", err.Kind, kind, err.Message)
	}
	return err
}

func TestIntegerArithmetic(t *testing.T) {
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
		{"-7 / 2", -3},
		{"7 % 3", 1},
		{"0x10 + 0b1 + 0o7", 24},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestIntegerOverflowRaises(t *testing.T) {
	tests := []string{
		"9223372036854775807 + 1",
		"-9223372036854775807 - 2",
		"9223372036854775807 * 2",
	}
	for _, input := range tests {
		testErrorKind(t, testEval(t, input), evaluator.RuntimeErrorKind)
	}
}

func TestDivisionByZero(t *testing.T) {
	testErrorKind(t, testEval(t, "1 / 0"), evaluator.RuntimeErrorKind)
	testErrorKind(t, testEval(t, "1 % 0"), evaluator.RuntimeErrorKind)
}

func TestMixedNumericPromotion(t *testing.T) {
	result, ok := testEval(t, "1 + 2.5").(*evaluator.Float)
	if !ok {
		t.Fatalf("Int + Float did not produce Float")
	}
	if result.Value != 3.5 {
		t.Errorf("value = %g, want 3.5", result.Value)
	}
}

func TestDecimalExactness(t *testing.T) {
	result, ok := testEval(t, "0.10D + 0.20D").(*evaluator.Decimal)
	if !ok {
		t.Fatalf("decimal addition did not produce Decimal")
	}
	if got := result.Inspect(); got != "0.30D" {
		t.Errorf("0.10D + 0.20D = %s, want 0.30D", got)
	}

	testBooleanObject(t, testEval(t, "0.1D + 0.2D == 0.3D"), true)
	testBooleanObject(t, testEval(t, "1.50D == 1.5D"), true)
}

func TestDecimalFloatMixingIsTypeError(t *testing.T) {
	testErrorKind(t, testEval(t, "1.0D + 0.5"), evaluator.TypeErrorKind)
}

// Only false and null are falsy; 0 and "" are truthy.
func TestTruthiness(t *testing.T) {
	testIntegerObject(t, testEval(t, "let r = 0\nif 0 { r = 1 } else { r = 2 }\nr"), 1)
	testIntegerObject(t, testEval(t, "let r = 0\nif \"\" { r = 1 } else { r = 2 }\nr"), 1)
	testIntegerObject(t, testEval(t, "let r = 0\nif null { r = 1 } else { r = 2 }\nr"), 2)
	testIntegerObject(t, testEval(t, "let r = 0\nif false { r = 1 } else { r = 2 }\nr"), 2)
}

func TestLogicalOperators(t *testing.T) {
	testIntegerObject(t, testEval(t, "1 && 2"), 2)
	testBooleanObject(t, testEval(t, "false && crash()"), false)
	testIntegerObject(t, testEval(t, "0 || 5"), 0)
	testIntegerObject(t, testEval(t, "null ?? 5"), 5)
	testIntegerObject(t, testEval(t, "0 ?? 5"), 0)
	testBooleanObject(t, testEval(t, "false ?? true"), false)
}

func TestStringOperations(t *testing.T) {
	testStringObject(t, testEval(t, `"foo" + "bar"`), "foobar")
	testStringObject(t, testEval(t, `"héllo"[1]`), "é")
	testIntegerObject(t, testEval(t, `len("héllo")`), 5)
	testStringObject(t, testEval(t, "let a = 2\nlet b = 3\n"+`"sum = \(a + b)!"`), "sum = 5!")
}

func TestRawString(t *testing.T) {
	testStringObject(t, testEval(t, `[[no \(interp) or \n here]]`), `no \(interp) or \n here`)
}

func TestLetConstSemantics(t *testing.T) {
	testIntegerObject(t, testEval(t, "let a = 5\nlet b = a + 1\nb"), 6)
	testErrorKind(t, testEval(t, "const c = 1\nc = 2"), evaluator.ConstReassignErrorKind)
	testErrorKind(t, testEval(t, "const xs = [1]\nxs[0] = 2"), evaluator.ConstReassignErrorKind)
	testErrorKind(t, testEval(t, "const xs = [1]\npush(xs, 2)"), evaluator.ConstReassignErrorKind)
	testIntegerObject(t, testEval(t, "const xs = [1]\nlet ys = copy(xs)\npush(ys, 2)\nlen(ys)"), 2)
	testErrorKind(t, testEval(t, "x = 1"), evaluator.NameErrorKind)
	testErrorKind(t, testEval(t, "y + 1"), evaluator.NameErrorKind)
}

func TestClosuresCaptureEnvironment(t *testing.T) {
	input := `
fn makeCounter() {
    let count = 0
    return fn() {
        count = count + 1
        return count
    }
}
let c = makeCounter()
c()
c()
c()`
	testIntegerObject(t, testEval(t, input), 3)
}

func TestRecursion(t *testing.T) {
	input := `
fn fib(n) {
    return n if n < 2
    return fib(n - 1) + fib(n - 2)
}
fib(12)`
	testIntegerObject(t, testEval(t, input), 144)
}

func TestStackOverflowRaises(t *testing.T) {
	input := "fn loop() { return loop() }\nloop()"
	testErrorKind(t, testEval(t, input), evaluator.StackOverflowErrorKind)
}

func TestFunctionArity(t *testing.T) {
	testErrorKind(t, testEval(t, "fn f(a, b) { return a }\nf(1)"), evaluator.TypeErrorKind)
	testIntegerObject(t, testEval(t, "fn f(a, ...rest) { return len(rest) }\nf(1, 2, 3)"), 2)
	testIntegerObject(t, testEval(t, "fn f(a, b, c) { return a + b + c }\nf(...[1, 2, 3])"), 6)
}

func TestArraysAndHashes(t *testing.T) {
	testIntegerObject(t, testEval(t, "[1, 2, 3][1]"), 2)
	testIntegerObject(t, testEval(t, "[1, 2, 3][-1]"), 3)
	testErrorKind(t, testEval(t, "[1, 2, 3][5]"), evaluator.IndexErrorKind)
	testIntegerObject(t, testEval(t, `{a: 1, b: 2}["a"]`), 1)
	if obj := testEval(t, `{a: 1}["missing"]`); obj != evaluator.NULL {
		t.Errorf("missing hash key = %s, want null", obj.Inspect())
	}
	testErrorKind(t, testEval(t, `fetch({a: 1}, "missing")`), evaluator.KeyErrorKind)
	testErrorKind(t, testEval(t, "{[1]: 2}"), evaluator.TypeErrorKind)
}

func TestHashInsertionOrder(t *testing.T) {
	input := `
let h = {c: 1, a: 2, b: 3}
h["z"] = 4
join(keys(h), ",")`
	testStringObject(t, testEval(t, input), "c,a,b,z")
}

func TestWhileForBreakContinue(t *testing.T) {
	input := `
let total = 0
let i = 0
while i < 10 {
    i = i + 1
    continue if i % 2 == 0
    break if i > 7
    total = total + i
}
total`
	testIntegerObject(t, testEval(t, input), 16) // 1 + 3 + 5 + 7

	input = `
let total = 0
for i, v in [10, 20, 30] {
    total = total + i + v
}
total`
	testIntegerObject(t, testEval(t, input), 63)

	input = `
let out = ""
for k, v in {a: 1, b: 2} {
    out = out + k + str(v)
}
out`
	testStringObject(t, testEval(t, input), "a1b2")
}

func TestClassesAndInheritance(t *testing.T) {
	input := `
class Animal {
    name: String = ""
    new(name) {
        this.name = name
    }
    fn speak() {
        return "..."
    }
    fn describe() {
        return this.name + " says " + this.speak()
    }
}
class Dog extends Animal {
    new(name) {
        super.new(name)
    }
    fn speak() {
        return "woof"
    }
}
let d = new Dog("rex")
d.describe()`
	testStringObject(t, testEval(t, input), "rex says woof")
}

func TestSuperResolvesFromDefiningClass(t *testing.T) {
	// C.m calls super.m; the super chain must start above B, where the
	// calling method is defined, not above the receiver's class.
	input := `
class A {
    fn m() { return "A" }
}
class B extends A {
    fn m() { return "B+" + super.m() }
}
class C extends B {
}
let c = new C()
c.m()`
	testStringObject(t, testEval(t, input), "B+A")
}

func TestStaticMembersAndBlocks(t *testing.T) {
	input := `
class Counter {
    static total = 0
    static fn bump() {
        this.total = this.total + 1
        return this.total
    }
    static {
        Counter.total = 10
    }
}
Counter.bump()
Counter.bump()
Counter.total`
	testIntegerObject(t, testEval(t, input), 12)
}

func TestVisibility(t *testing.T) {
	input := `
class Vault {
    private secret = 42
    fn reveal() {
        return this.secret
    }
}
let v = new Vault()
v.reveal()`
	testIntegerObject(t, testEval(t, input), 42)

	input = `
class Vault {
    private secret = 42
}
let v = new Vault()
v.secret`
	testErrorKind(t, testEval(t, input), evaluator.TypeErrorKind)
}

func TestNestedClasses(t *testing.T) {
	input := `
class Outer {
    class Inner {
        fn tag() { return "inner" }
    }
}
let i = new Outer::Inner()
i.tag()`
	testStringObject(t, testEval(t, input), "inner")
}

func TestFieldDefaultsNotShared(t *testing.T) {
	input := `
class Box {
    items = []
}
let a = new Box()
let b = new Box()
push(a.items, 1)
len(b.items)`
	testIntegerObject(t, testEval(t, input), 0)
}

func TestThrowCatchFinally(t *testing.T) {
	input := `
let log = []
fn risky() {
    throw error("TypeError", "bad input")
}
try {
    risky()
    push(log, "unreached")
} catch (e: NameError) {
    push(log, "wrong handler")
} catch (e: TypeError) {
    push(log, "caught " + e.kind)
} finally {
    push(log, "finally")
}
join(log, ";")`
	testStringObject(t, testEval(t, input), "caught TypeError;finally")
}

func TestUncaughtErrorPropagates(t *testing.T) {
	input := `
fn inner() { throw error("ValueError", "boom") }
fn outer() { return inner() }
outer()`
	err := testErrorKind(t, testEval(t, input), evaluator.ValueErrorKind)
	if err.Message != "boom" {
		t.Errorf("message = %q, want boom", err.Message)
	}
}

func TestThrowNonErrorWraps(t *testing.T) {
	input := `
try {
    throw 42
} catch (e) {
    e.payload
}`
	testIntegerObject(t, testEval(t, input), 42)
}

func TestFinallyOverridesSignal(t *testing.T) {
	input := `
fn f() {
    try {
        throw error("ValueError", "first")
    } finally {
        return 99
    }
}
f()`
	testIntegerObject(t, testEval(t, input), 99)
}

func TestErrorValueDoesNotRaise(t *testing.T) {
	input := `
let e = error("KeyError", "stored, not thrown")
e.kind`
	testStringObject(t, testEval(t, input), "KeyError")
}

func TestRethrowFromCatch(t *testing.T) {
	input := `
try {
    try {
        throw error("ValueError", "inner")
    } catch (e) {
        throw e
    }
} catch (e) {
    e.message
}`
	testStringObject(t, testEval(t, input), "inner")
}

func TestMatchExpressions(t *testing.T) {
	input := `
fn classify(x) {
    return match x {
        0 => "zero"
        n: Int if n < 0 => "negative"
        n: Int => "positive"
        s: String => "string " + s
        [a, b] => "pair"
        [head, ...tail] => "list of " + str(len(tail) + 1)
        {name: n} => "named " + n
        _ => "other"
    }
}
join([classify(0), classify(-5), classify(3), classify("hi"),
      classify([1, 2]), classify([1, 2, 3]), classify({name: "ada"}),
      classify(true)], "|")`
	testStringObject(t, testEval(t, input),
		`zero|negative|positive|string hi|pair|list of 3|named ada|other`)
}

func TestMatchNoArmRaises(t *testing.T) {
	testErrorKind(t, testEval(t, "match 5 { 1 => 1 }"), evaluator.MatchErrorKind)
}

func TestMatchBindingsScopedToArm(t *testing.T) {
	input := `
match 5 { n => n }
n`
	testErrorKind(t, testEval(t, input), evaluator.NameErrorKind)
}

func TestTernaryAndPipe(t *testing.T) {
	testStringObject(t, testEval(t, `5 > 3 ? "yes" : "no"`), "yes")
	testIntegerObject(t, testEval(t, "fn double(x) { return x * 2 }\n5 |> double |> double"), 20)
	testIntegerObject(t, testEval(t, "fn add(a, b) { return a + b }\n5 |> add(3)"), 8)
}

func TestSafeNavigation(t *testing.T) {
	input := `
let x = null
x&.name`
	if obj := testEval(t, input); obj != evaluator.NULL {
		t.Errorf("null&.name = %s, want null", obj.Inspect())
	}
}

func TestPostfixModifiers(t *testing.T) {
	testIntegerObject(t, testEval(t, "let x = 1\nx = 2 if true\nx"), 2)
	testIntegerObject(t, testEval(t, "let x = 1\nx = 2 unless true\nx"), 1)
}

func TestBuiltins(t *testing.T) {
	testIntegerObject(t, testEval(t, "len([1, 2, 3])"), 3)
	testStringObject(t, testEval(t, "type(1.5)"), "Float")
	testStringObject(t, testEval(t, "type(1.5D)"), "Decimal")
	testBooleanObject(t, testEval(t, "contains([1, 2], 2)"), true)
	testIntegerObject(t, testEval(t, "len(range(5))"), 5)
	testIntegerObject(t, testEval(t, "range(2, 10, 3)[2]"), 8)
	testStringObject(t, testEval(t, `join(split("a,b,c", ","), "-")`), "a-b-c")
	testErrorKind(t, testEval(t, "len(1)"), evaluator.TypeErrorKind)
	testErrorKind(t, testEval(t, `int("abc")`), evaluator.ValueErrorKind)
	testErrorKind(t, testEval(t, `error("NotAKind", "x")`), evaluator.ValueErrorKind)
}

func TestAtBuiltin(t *testing.T) {
	testIntegerObject(t, testEval(t, "at([1, 2, 3], 1)"), 2)
	testIntegerObject(t, testEval(t, "at([1, 2, 3], -1)"), 3)
	testErrorKind(t, testEval(t, "at([1, 2, 3], 3)"), evaluator.IndexErrorKind)
	testErrorKind(t, testEval(t, "at({a: 1}, 0)"), evaluator.TypeErrorKind)
}
