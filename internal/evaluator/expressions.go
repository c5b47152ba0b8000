package evaluator

import (
	"strings"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	if builtin, ok := e.builtins[node.Value]; ok {
		return builtin
	}
	return NewErrorAt(NameErrorKind, node, "undefined name '%s'", node.Value)
}

func (e *Evaluator) evalInterpolatedString(node *ast.InterpolatedString, env *Environment) Object {
	var out strings.Builder
	for _, part := range node.Parts {
		value := e.Eval(part, env)
		if isError(value) {
			return value
		}
		out.WriteString(DisplayString(value))
	}
	return &String{Value: out.String()}
}

func (e *Evaluator) evalArrayLiteral(node *ast.ArrayLiteral, env *Environment) Object {
	elements, errObj := e.evalExpressions(node.Elements, env)
	if errObj != nil {
		return errObj
	}
	return &Array{Elements: elements}
}

// evalExpressions evaluates a list, flattening ...spread of arrays.
func (e *Evaluator) evalExpressions(exprs []ast.Expression, env *Environment) ([]Object, Object) {
	var result []Object
	for _, expr := range exprs {
		if spread, ok := expr.(*ast.SpreadExpression); ok {
			value := Force(e.Eval(spread.Value, env))
			if isError(value) {
				return nil, value
			}
			arr, ok := value.(*Array)
			if !ok {
				return nil, NewErrorAt(TypeErrorKind, spread,
					"spread operand must be Array, got %s", TypeName(value))
			}
			result = append(result, arr.Elements...)
			continue
		}

		value := e.Eval(expr, env)
		if isError(value) {
			return nil, value
		}
		result = append(result, value)
	}
	return result, nil
}

func (e *Evaluator) evalHashLiteral(node *ast.HashLiteral, env *Environment) Object {
	hash := NewHash()
	for _, pair := range node.Pairs {
		key := Force(e.Eval(pair.Key, env))
		if isError(key) {
			return key
		}
		if !hashableKey(key) {
			return NewErrorAt(TypeErrorKind, pair.Key,
				"unusable as hash key: %s", TypeName(key))
		}
		value := e.Eval(pair.Value, env)
		if isError(value) {
			return value
		}
		hash.Set(key, value)
	}
	return hash
}

func (e *Evaluator) makeFunction(node *ast.FunctionLiteral, env *Environment) *Function {
	return &Function{
		Parameters: node.Parameters,
		Variadic:   node.Variadic,
		Body:       node.Body,
		Env:        env,
		Name:       node.Name,
	}
}

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, env *Environment) Object {
	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}
	result := UnaryOp(node.Operator, right)
	return e.positioned(result, node)
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	// Logical operators short-circuit and never evaluate the right side
	// eagerly.
	switch node.Operator {
	case "&&":
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		if !Truthy(left) {
			return left
		}
		return e.Eval(node.Right, env)
	case "||":
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		if Truthy(left) {
			return left
		}
		return e.Eval(node.Right, env)
	case "??":
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		if Force(left) != NULL {
			return left
		}
		return e.Eval(node.Right, env)
	}

	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return e.positioned(BinaryOp(node.Operator, left, right), node)
}

// positioned stamps source position onto errors produced by the shared
// operator helpers, which have no node context of their own.
func (e *Evaluator) positioned(result Object, node ast.Node) Object {
	if err, ok := result.(*Error); ok && err.Line == 0 {
		if tp, ok := node.(ast.TokenProvider); ok {
			tok := tp.GetToken()
			err.Line = tok.Line
			err.Column = tok.Column
		}
	}
	return result
}

func (e *Evaluator) evalTernaryExpression(node *ast.TernaryExpression, env *Environment) Object {
	cond := e.Eval(node.Condition, env)
	if isError(cond) {
		return cond
	}
	if Truthy(cond) {
		return e.Eval(node.Then, env)
	}
	return e.Eval(node.Else, env)
}

func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression, env *Environment) Object {
	value := e.Eval(node.Value, env)
	if isError(value) {
		return value
	}

	// Compound operators read the target first.
	if node.Operator != "=" {
		current := e.evalAssignTarget(node.Target, env)
		if isError(current) {
			return current
		}
		op := strings.TrimSuffix(node.Operator, "=")
		value = e.positioned(BinaryOp(op, current, value), node)
		if isError(value) {
			return value
		}
	}

	return e.assignTo(node.Target, value, env)
}

func (e *Evaluator) evalAssignTarget(target ast.Expression, env *Environment) Object {
	return e.Eval(target, env)
}

func (e *Evaluator) assignTo(target ast.Expression, value Object, env *Environment) Object {
	switch target := target.(type) {
	case *ast.Identifier:
		ok, constViolation := env.Update(target.Value, value)
		if constViolation {
			return NewErrorAt(ConstReassignErrorKind, target,
				"cannot reassign const '%s'", target.Value)
		}
		if !ok {
			return NewErrorAt(NameErrorKind, target,
				"undefined name '%s'", target.Value)
		}
		return value

	case *ast.IndexExpression:
		left := e.Eval(target.Left, env)
		if isError(left) {
			return left
		}
		index := e.Eval(target.Index, env)
		if isError(index) {
			return index
		}
		return e.positioned(IndexSet(left, index, value), target)

	case *ast.MemberExpression:
		object := Force(e.Eval(target.Object, env))
		if isError(object) {
			return object
		}
		return e.setMember(object, target, value, env)

	default:
		return NewErrorAt(TypeErrorKind, target, "invalid assignment target")
	}
}

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := e.Eval(node.Index, env)
	if isError(index) {
		return index
	}
	return e.positioned(IndexGet(left, index), node)
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	callee := e.Eval(node.Function, env)
	if isError(callee) {
		return callee
	}

	args, errObj := e.evalExpressions(node.Arguments, env)
	if errObj != nil {
		return errObj
	}

	return e.positioned(e.Apply(callee, args), node)
}

// Apply invokes any callable value with already-evaluated arguments.
// The bytecode backend reuses it for interpreter-routed functions and
// natives.
func (e *Evaluator) Apply(callee Object, args []Object) Object {
	callee = Force(callee)

	switch callee := callee.(type) {
	case *Function:
		return e.applyFunction(callee, nil, args)
	case *BoundMethod:
		return e.applyBoundMethod(callee, args)
	case *Builtin:
		result := callee.Fn(args...)
		if result == nil {
			return NULL
		}
		return result
	case *Class:
		return e.instantiate(callee, args)
	default:
		if e.applyHook != nil {
			if result, ok := e.applyHook(callee, args); ok {
				return result
			}
		}
		return newTypeError("type %s is not callable", TypeName(callee))
	}
}

// applyFunction binds arguments and runs the body. extra, when non-nil,
// pre-populates the call scope (this/super for methods).
func (e *Evaluator) applyFunction(fn *Function, extra map[string]Object, args []Object) Object {
	if e.depth >= MaxEvalDepth {
		return NewError(StackOverflowErrorKind, "call depth exceeded %d frames", MaxEvalDepth)
	}
	e.depth++
	defer func() { e.depth-- }()

	callEnv, errObj := bindArguments(fn, args)
	if errObj != nil {
		return errObj
	}
	for name, value := range extra {
		callEnv.Set(name, value)
	}

	result := e.evalBlockStatement(fn.Body, callEnv)
	if isError(result) {
		return result
	}
	switch result := result.(type) {
	case *ReturnValue:
		return result.Value
	case *BreakSignal, *ContinueSignal:
		return NewError(EngineFaultKind, "loop signal escaped function body")
	}
	// A function without an explicit return yields null.
	return NULL
}

// bindArguments checks arity and builds the call scope.
func bindArguments(fn *Function, args []Object) (*Environment, *Error) {
	env := NewEnclosedEnvironment(fn.Env)

	if fn.Variadic {
		fixed := len(fn.Parameters) - 1
		if len(args) < fixed {
			return nil, newTypeError("%s expects at least %d arguments, got %d",
				functionLabel(fn), fixed, len(args))
		}
		for i := 0; i < fixed; i++ {
			env.Set(fn.Parameters[i].Value, args[i])
		}
		rest := make([]Object, len(args)-fixed)
		copy(rest, args[fixed:])
		env.Set(fn.Parameters[fixed].Value, &Array{Elements: rest})
		return env, nil
	}

	if len(args) != len(fn.Parameters) {
		return nil, newTypeError("%s expects %d arguments, got %d",
			functionLabel(fn), len(fn.Parameters), len(args))
	}
	for i, param := range fn.Parameters {
		env.Set(param.Value, args[i])
	}
	return env, nil
}

func functionLabel(fn *Function) string {
	if fn.Name == "" {
		return "anonymous function"
	}
	return "function " + fn.Name
}
