package evaluator

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

// MaxEvalDepth bounds user-level call nesting before the interpreter
// reports a stack overflow instead of exhausting the Go stack.
const MaxEvalDepth = 3000

// ApplyHook lets another execution engine take over calls to function
// objects the evaluator does not know how to run itself.
type ApplyHook func(callee Object, args []Object) (Object, bool)

type Evaluator struct {
	builtins  map[string]*Builtin
	applyHook ApplyHook
	depth     int
}

func New() *Evaluator {
	e := &Evaluator{builtins: map[string]*Builtin{}}
	e.registerCoreBuiltins()
	return e
}

// RegisterBuiltin adds a native function, overriding any previous binding
// with the same name.
func (e *Evaluator) RegisterBuiltin(b *Builtin) {
	e.builtins[b.Name] = b
}

// SetApplyHook installs the foreign-function escape hatch used when the
// bytecode backend shares this evaluator.
func (e *Evaluator) SetApplyHook(hook ApplyHook) {
	e.applyHook = hook
}

// Builtin looks a native function up by name.
func (e *Evaluator) Builtin(name string) (*Builtin, bool) {
	b, ok := e.builtins[name]
	return b, ok
}

func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Program:
		return e.evalProgram(node, env)

	case *ast.LetStatement:
		return e.evalLetStatement(node, env)
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)
	case *ast.BlockStatement:
		return e.evalBlockStatement(node, NewEnclosedEnvironment(env))
	case *ast.IfStatement:
		return e.evalIfStatement(node, env)
	case *ast.WhileStatement:
		return e.evalWhileStatement(node, env)
	case *ast.ForInStatement:
		return e.evalForInStatement(node, env)
	case *ast.FunctionStatement:
		fn := e.makeFunction(node.Function, env)
		env.Set(node.Name.Value, fn)
		return NULL
	case *ast.ClassStatement:
		return e.evalClassStatement(node, env)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(node, env)
	case *ast.BreakStatement:
		return &BreakSignal{}
	case *ast.ContinueStatement:
		return &ContinueSignal{}
	case *ast.ThrowStatement:
		return e.evalThrowStatement(node, env)
	case *ast.TryStatement:
		return e.evalTryStatement(node, env)

	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}
	case *ast.DecimalLiteral:
		return &Decimal{Value: node.Value, Scale: node.Scale}
	case *ast.BooleanLiteral:
		return NativeBoolToBooleanObject(node.Value)
	case *ast.NullLiteral:
		return NULL
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.InterpolatedString:
		return e.evalInterpolatedString(node, env)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(node, env)
	case *ast.HashLiteral:
		return e.evalHashLiteral(node, env)
	case *ast.FunctionLiteral:
		return e.makeFunction(node, env)
	case *ast.PrefixExpression:
		return e.evalPrefixExpression(node, env)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.TernaryExpression:
		return e.evalTernaryExpression(node, env)
	case *ast.AssignExpression:
		return e.evalAssignExpression(node, env)
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(node, env)
	case *ast.ScopeResolution:
		return e.evalScopeResolution(node, env)
	case *ast.ThisExpression:
		return e.evalThisExpression(node, env)
	case *ast.SuperExpression:
		return e.evalSuperExpression(node, env)
	case *ast.MatchExpression:
		return e.evalMatchExpression(node, env)
	case *ast.SpreadExpression:
		return NewErrorAt(TypeErrorKind, node,
			"spread is only allowed in call arguments and array literals")

	default:
		return NewError(EngineFaultKind, "unhandled node type %T", node)
	}
}

func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range program.Statements {
		result = e.Eval(stmt, env)
		if isError(result) {
			return result
		}
		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *BreakSignal, *ContinueSignal:
			return NewError(EngineFaultKind, "loop signal escaped to top level")
		}
		if result == nil {
			result = NULL
		}
	}
	return result
}

// evalBlockStatement runs statements in the given environment. Signals
// propagate unchanged so the enclosing construct can handle them.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range block.Statements {
		result = e.Eval(stmt, env)
		if result == nil {
			result = NULL
			continue
		}
		if isSignal(result) {
			return result
		}
	}
	return result
}

func isSignal(obj Object) bool {
	if obj == nil {
		return false
	}
	if isError(obj) {
		return true
	}
	switch obj.Type() {
	case RETURN_VALUE_OBJ, BREAK_OBJ, CONTINUE_OBJ:
		return true
	}
	return false
}
