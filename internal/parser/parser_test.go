package parser_test

import (
	"strings"
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
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
		var msgs []string
		for _, err := range ctx.Errors {
			msgs = append(msgs, err.Error())
		}
		t.Fatalf("parsing failed with errors:\n%s", strings.Join(msgs, "\n"))
	}
	prog, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		t.Fatalf("AstRoot is %T, want *ast.Program", ctx.AstRoot)
	}
	return prog
}

func parseErrors(t *testing.T, input string) []string {
	t.Helper()
	ctx := pipeline.NewContext(input, "test.soli")
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)

	var msgs []string
	for _, err := range ctx.Errors {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

func singleExpression(t *testing.T, input string) ast.Expression {
	t.Helper()
	prog := parse(t, input)
	if len(prog.Statements) != 1 {
		t.Fatalf("program has %d statements, want 1", len(prog.Statements))
	}
	es, ok := prog.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ExpressionStatement", prog.Statements[0])
	}
	return es.Expression
}

func TestLetStatements(t *testing.T) {
	prog := parse(t, "let x = 5\nconst y = 10")

	if len(prog.Statements) != 2 {
		t.Fatalf("program has %d statements, want 2", len(prog.Statements))
	}

	let := prog.Statements[0].(*ast.LetStatement)
	if let.Const {
		t.Errorf("let binding parsed as const")
	}
	if let.Name.Value != "x" {
		t.Errorf("name = %q, want x", let.Name.Value)
	}
	if lit, ok := let.Value.(*ast.IntegerLiteral); !ok || lit.Value != 5 {
		t.Errorf("value = %v, want IntegerLiteral(5)", let.Value)
	}

	cst := prog.Statements[1].(*ast.LetStatement)
	if !cst.Const {
		t.Errorf("const binding not marked Const")
	}
	if cst.Name.Value != "y" {
		t.Errorf("name = %q, want y", cst.Name.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		// Top-level operator of the resulting tree.
		topOp string
	}{
		{"1 + 2 * 3", "+"},
		{"1 * 2 + 3", "+"},
		{"a == b && c == d", "&&"},
		{"a && b || c", "||"},
		{"a ?? b || c", "??"},
		{"1 + 2 < 3 * 4", "<"},
	}
	for _, tt := range tests {
		expr := singleExpression(t, tt.input)
		infix, ok := expr.(*ast.InfixExpression)
		if !ok {
			t.Fatalf("%q: expr is %T, want *ast.InfixExpression", tt.input, expr)
		}
		if infix.Operator != tt.topOp {
			t.Errorf("%q: top operator = %q, want %q", tt.input, infix.Operator, tt.topOp)
		}
	}
}

func TestTernaryExpression(t *testing.T) {
	prog := parse(t, "a > 0 ? 1 : 2")
	tern := prog.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.TernaryExpression)
	if _, ok := tern.Condition.(*ast.InfixExpression); !ok {
		t.Errorf("condition is %T, want infix", tern.Condition)
	}
	if lit := tern.Then.(*ast.IntegerLiteral); lit.Value != 1 {
		t.Errorf("then = %d, want 1", lit.Value)
	}
	if lit := tern.Else.(*ast.IntegerLiteral); lit.Value != 2 {
		t.Errorf("else = %d, want 2", lit.Value)
	}
}

func TestAssignmentRightAssociative(t *testing.T) {
	expr := singleExpression(t, "a = b = 5")
	outer, ok := expr.(*ast.AssignExpression)
	if !ok {
		t.Fatalf("expr is %T, want *ast.AssignExpression", expr)
	}
	if _, ok := outer.Value.(*ast.AssignExpression); !ok {
		t.Errorf("a = b = 5 did not nest to the right: value is %T", outer.Value)
	}
}

func TestCompoundAssignOperators(t *testing.T) {
	for _, op := range []string{"+=", "-=", "*=", "/="} {
		expr := singleExpression(t, "x "+op+" 2")
		assign, ok := expr.(*ast.AssignExpression)
		if !ok {
			t.Fatalf("%s: expr is %T, want assignment", op, expr)
		}
		if assign.Operator != op {
			t.Errorf("operator = %q, want %q", assign.Operator, op)
		}
	}
}

func TestPipeDesugaring(t *testing.T) {
	expr := singleExpression(t, "x |> f(1)")
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expr is %T, want *ast.CallExpression", expr)
	}
	if len(call.Arguments) != 2 {
		t.Fatalf("call has %d args, want 2", len(call.Arguments))
	}
	if id, ok := call.Arguments[0].(*ast.Identifier); !ok || id.Value != "x" {
		t.Errorf("first argument = %v, want x", call.Arguments[0])
	}

	expr = singleExpression(t, "x |> f")
	call = expr.(*ast.CallExpression)
	if len(call.Arguments) != 1 {
		t.Fatalf("bare pipe call has %d args, want 1", len(call.Arguments))
	}

	// Chains apply left to right.
	expr = singleExpression(t, "x |> f |> g")
	call = expr.(*ast.CallExpression)
	if id := call.Function.(*ast.Identifier); id.Value != "g" {
		t.Errorf("outer call function = %q, want g", id.Value)
	}
	inner := call.Arguments[0].(*ast.CallExpression)
	if id := inner.Function.(*ast.Identifier); id.Value != "f" {
		t.Errorf("inner call function = %q, want f", id.Value)
	}
}

func TestFunctionLiteralAndVariadic(t *testing.T) {
	expr := singleExpression(t, "fn(a, b, ...rest) { return a }")
	fl, ok := expr.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expr is %T, want *ast.FunctionLiteral", expr)
	}
	if len(fl.Parameters) != 3 {
		t.Fatalf("got %d parameters, want 3", len(fl.Parameters))
	}
	if !fl.Variadic {
		t.Errorf("function with ...rest not marked variadic")
	}
	if fl.Parameters[2].Value != "rest" {
		t.Errorf("rest parameter = %q, want rest", fl.Parameters[2].Value)
	}
}

func TestArrowFunction(t *testing.T) {
	prog := parse(t, "let f = (a, b) -> a + b")
	fl := prog.Statements[0].(*ast.LetStatement).Value.(*ast.FunctionLiteral)
	if len(fl.Parameters) != 2 {
		t.Fatalf("got %d parameters, want 2", len(fl.Parameters))
	}
	ret, ok := fl.Body.Statements[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("arrow body statement is %T, want return", fl.Body.Statements[0])
	}
	if _, ok := ret.Value.(*ast.InfixExpression); !ok {
		t.Errorf("arrow body = %T, want infix expression", ret.Value)
	}
}

func TestCallWithSpread(t *testing.T) {
	expr := singleExpression(t, "f(1, ...args)")
	call := expr.(*ast.CallExpression)
	if len(call.Arguments) != 2 {
		t.Fatalf("call has %d args, want 2", len(call.Arguments))
	}
	if _, ok := call.Arguments[1].(*ast.SpreadExpression); !ok {
		t.Errorf("second argument is %T, want spread", call.Arguments[1])
	}
}

func TestHashLiteralShorthandKeys(t *testing.T) {
	expr := singleExpression(t, `{ name: "ada", "age": 36 }`)
	hash := expr.(*ast.HashLiteral)
	if len(hash.Pairs) != 2 {
		t.Fatalf("hash has %d pairs, want 2", len(hash.Pairs))
	}
	key0 := hash.Pairs[0].Key.(*ast.StringLiteral)
	if key0.Value != "name" {
		t.Errorf("shorthand key = %q, want name", key0.Value)
	}
}

func TestMemberAndIndexChain(t *testing.T) {
	expr := singleExpression(t, "a.b[0].c")
	outer, ok := expr.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expr is %T, want member expression", expr)
	}
	if outer.Property.Value != "c" {
		t.Errorf("outer property = %q, want c", outer.Property.Value)
	}
	idx, ok := outer.Object.(*ast.IndexExpression)
	if !ok {
		t.Fatalf("inner is %T, want index expression", outer.Object)
	}
	member := idx.Left.(*ast.MemberExpression)
	if member.Property.Value != "b" {
		t.Errorf("inner property = %q, want b", member.Property.Value)
	}
}

func TestSafeMemberAccess(t *testing.T) {
	expr := singleExpression(t, "user&.name")
	member := expr.(*ast.MemberExpression)
	if !member.Safe {
		t.Errorf("&. access not marked safe")
	}
}

func TestStringInterpolation(t *testing.T) {
	expr := singleExpression(t, `"sum = \(a + b)!"`)
	is, ok := expr.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("expr is %T, want interpolated string", expr)
	}
	if len(is.Parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(is.Parts))
	}
	if lit := is.Parts[0].(*ast.StringLiteral); lit.Value != "sum = " {
		t.Errorf("part 0 = %q", lit.Value)
	}
	if _, ok := is.Parts[1].(*ast.InfixExpression); !ok {
		t.Errorf("part 1 is %T, want infix expression", is.Parts[1])
	}
	if lit := is.Parts[2].(*ast.StringLiteral); lit.Value != "!" {
		t.Errorf("part 2 = %q", lit.Value)
	}
}

func TestIfUnlessStatements(t *testing.T) {
	prog := parse(t, "if a > 0 { b() } else if a < 0 { c() } else { d() }")
	stmt := prog.Statements[0].(*ast.IfStatement)
	if stmt.Negated {
		t.Errorf("if parsed as unless")
	}
	chained, ok := stmt.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("alternative is %T, want chained if", stmt.Alternative)
	}
	if _, ok := chained.Alternative.(*ast.BlockStatement); !ok {
		t.Errorf("final else is %T, want block", chained.Alternative)
	}

	prog = parse(t, "unless done { work() }")
	u := prog.Statements[0].(*ast.IfStatement)
	if !u.Negated {
		t.Errorf("unless not marked negated")
	}
}

func TestWhileAndForIn(t *testing.T) {
	prog := parse(t, "while i < 10 { i = i + 1 }")
	if _, ok := prog.Statements[0].(*ast.WhileStatement); !ok {
		t.Fatalf("statement is %T, want while", prog.Statements[0])
	}

	prog = parse(t, "for k, v in h { use(k, v) }")
	fs := prog.Statements[0].(*ast.ForInStatement)
	if fs.Key == nil || fs.Key.Value != "k" {
		t.Errorf("key = %v, want k", fs.Key)
	}
	if fs.Value.Value != "v" {
		t.Errorf("value = %q, want v", fs.Value.Value)
	}

	prog = parse(t, "for x in [1, 2] { use(x) }")
	fs = prog.Statements[0].(*ast.ForInStatement)
	if fs.Key != nil {
		t.Errorf("single-variable form bound a key")
	}
	if fs.Value.Value != "x" {
		t.Errorf("value = %q, want x", fs.Value.Value)
	}
}

func TestTryCatchFinally(t *testing.T) {
	prog := parse(t, `
try {
    risky()
} catch (e: TypeError) {
    handle(e)
} catch (e) {
    log(e)
} finally {
    cleanup()
}`)
	stmt := prog.Statements[0].(*ast.TryStatement)
	if len(stmt.Catches) != 2 {
		t.Fatalf("got %d catch clauses, want 2", len(stmt.Catches))
	}
	typed, ok := stmt.Catches[0].Pattern.(*ast.IdentifierPattern)
	if !ok || typed.TypeName != "TypeError" {
		t.Errorf("first catch filter = %v, want TypeError", stmt.Catches[0].Pattern)
	}
	if stmt.Catches[1].Pattern != nil {
		t.Errorf("bare catch has a pattern")
	}
	if stmt.Finally == nil {
		t.Errorf("finally block missing")
	}
}

func TestTryRequiresHandlerOrFinally(t *testing.T) {
	errs := parseErrors(t, "fn f() { try { g() } }")
	if len(errs) == 0 {
		t.Fatal("expected an error for try without catch or finally")
	}
}

func TestMatchExpression(t *testing.T) {
	prog := parse(t, `
let r = match x {
    0 => "zero"
    n: Int if n > 0 => "pos"
    [a, b, ...rest] => a
    {name: n} => n
    _ => "other"
}`)
	me := prog.Statements[0].(*ast.LetStatement).Value.(*ast.MatchExpression)
	if len(me.Arms) != 5 {
		t.Fatalf("got %d arms, want 5", len(me.Arms))
	}
	if _, ok := me.Arms[0].Pattern.(*ast.LiteralPattern); !ok {
		t.Errorf("arm 0 pattern is %T, want literal", me.Arms[0].Pattern)
	}
	typed := me.Arms[1].Pattern.(*ast.IdentifierPattern)
	if typed.TypeName != "Int" {
		t.Errorf("arm 1 type = %q, want Int", typed.TypeName)
	}
	if me.Arms[1].Guard == nil {
		t.Errorf("arm 1 guard missing")
	}
	arr := me.Arms[2].Pattern.(*ast.ArrayPattern)
	if len(arr.Elements) != 2 || arr.Rest == nil || arr.Rest.Value != "rest" {
		t.Errorf("arm 2 array pattern = %+v", arr)
	}
	hp := me.Arms[3].Pattern.(*ast.HashPattern)
	if len(hp.Entries) != 1 {
		t.Fatalf("arm 3 has %d entries, want 1", len(hp.Entries))
	}
	if _, ok := me.Arms[4].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("arm 4 pattern is %T, want wildcard", me.Arms[4].Pattern)
	}
}

func TestClassStatement(t *testing.T) {
	prog := parse(t, `
class Point extends Base implements Printable {
    x: Int = 0;
    y: Int = 0;
    static count = 0;
    private secret = 1;

    new(x, y) {
        this.x = x
        this.y = y
    }

    fn sum() {
        return this.x + this.y
    }

    static fn origin() {
        return new Point(0, 0)
    }

    static {
        Point.count = 0
    }

    class Inner {
        fn hello() { return 1 }
    }
}`)
	cls := prog.Statements[0].(*ast.ClassStatement)
	if cls.Name.Value != "Point" {
		t.Errorf("name = %q, want Point", cls.Name.Value)
	}
	if cls.SuperName == nil || cls.SuperName.Value != "Base" {
		t.Errorf("superclass = %v, want Base", cls.SuperName)
	}
	if len(cls.Interfaces) != 1 || cls.Interfaces[0].Value != "Printable" {
		t.Errorf("interfaces = %v, want [Printable]", cls.Interfaces)
	}
	if len(cls.Fields) != 4 {
		t.Fatalf("got %d fields, want 4", len(cls.Fields))
	}
	if !cls.Fields[2].Static {
		t.Errorf("count field not static")
	}
	if cls.Fields[3].Visibility != ast.VisPrivate {
		t.Errorf("secret field not private")
	}
	if cls.Constructor == nil || len(cls.Constructor.Parameters) != 2 {
		t.Fatalf("constructor = %v, want 2-parameter new", cls.Constructor)
	}
	if len(cls.Methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(cls.Methods))
	}
	if !cls.Methods[1].Static {
		t.Errorf("origin method not static")
	}
	if len(cls.StaticBlocks) != 1 {
		t.Errorf("got %d static blocks, want 1", len(cls.StaticBlocks))
	}
	if len(cls.NestedClasses) != 1 || cls.NestedClasses[0].Name.Value != "Inner" {
		t.Errorf("nested classes = %v, want [Inner]", cls.NestedClasses)
	}
}

func TestSuperRequiresMethod(t *testing.T) {
	prog := parse(t, `
class Dog extends Animal {
    fn speak() {
        return super.speak()
    }
    new(name) {
        super.new(name)
    }
}`)
	cls := prog.Statements[0].(*ast.ClassStatement)
	if cls.Constructor == nil {
		t.Fatal("constructor missing")
	}
}

func TestScopeResolution(t *testing.T) {
	expr := singleExpression(t, "Outer::Inner")
	sr, ok := expr.(*ast.ScopeResolution)
	if !ok {
		t.Fatalf("expr is %T, want scope resolution", expr)
	}
	if sr.Name.Value != "Inner" {
		t.Errorf("name = %q, want Inner", sr.Name.Value)
	}
}

func TestKeywordPlacementErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"return_top_level", "return 5"},
		{"break_outside_loop", "break"},
		{"continue_outside_loop", "continue"},
		{"this_outside_class", "this.x"},
		{"wildcard_outside_match", "let x = _"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errs := parseErrors(t, tt.input); len(errs) == 0 {
				t.Errorf("expected a diagnostic for %q", tt.input)
			}
		})
	}
}

func TestParseErrorRecovery(t *testing.T) {
	// One bad statement should not swallow the rest of the file.
	ctx := pipeline.NewContext("let = 5\nlet y = 2", "test.soli")
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)

	if !ctx.HasErrors() {
		t.Fatal("expected errors for malformed let")
	}
	prog := ctx.AstRoot.(*ast.Program)
	if len(prog.Statements) != 1 {
		t.Fatalf("recovered %d statements, want 1", len(prog.Statements))
	}
}
