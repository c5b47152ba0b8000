package evaluator

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

func (e *Evaluator) evalLetStatement(node *ast.LetStatement, env *Environment) Object {
	value := e.Eval(node.Value, env)
	if isError(value) {
		return value
	}
	if rv, ok := value.(*ReturnValue); ok {
		value = rv.Value
	}

	if node.Const {
		freeze(value)
		env.SetConst(node.Name.Value, value)
	} else {
		env.Set(node.Name.Value, value)
	}
	return NULL
}

// freeze marks collections bound by const immutable, recursively.
func freeze(obj Object) {
	switch o := obj.(type) {
	case *Array:
		if o.Frozen {
			return
		}
		o.Frozen = true
		for _, elem := range o.Elements {
			freeze(elem)
		}
	case *Hash:
		if o.Frozen {
			return
		}
		o.Frozen = true
		for _, pair := range o.Pairs {
			freeze(pair.Value)
		}
	}
}

func (e *Evaluator) evalReturnStatement(node *ast.ReturnStatement, env *Environment) Object {
	var value Object = NULL
	if node.Value != nil {
		value = e.Eval(node.Value, env)
		if isError(value) {
			return value
		}
	}
	return &ReturnValue{Value: value}
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	cond := e.Eval(node.Condition, env)
	if isError(cond) {
		return cond
	}

	take := Truthy(cond)
	if node.Negated {
		take = !take
	}

	if take {
		return e.Eval(node.Consequence, env)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, env)
	}
	return NULL
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, env *Environment) Object {
	for {
		cond := e.Eval(node.Condition, env)
		if isError(cond) {
			return cond
		}
		if !Truthy(cond) {
			return NULL
		}

		result := e.Eval(node.Body, env)
		if isError(result) {
			return result
		}
		switch result.(type) {
		case *ReturnValue:
			return result
		case *BreakSignal:
			return NULL
		case *ContinueSignal:
			// next iteration
		}
	}
}

func (e *Evaluator) evalForInStatement(node *ast.ForInStatement, env *Environment) Object {
	iterable := Force(e.Eval(node.Iterable, env))
	if isError(iterable) {
		return iterable
	}

	run := func(key, value Object) Object {
		loopEnv := NewEnclosedEnvironment(env)
		if node.Key != nil {
			loopEnv.Set(node.Key.Value, key)
		}
		loopEnv.Set(node.Value.Value, value)
		return e.evalBlockStatement(node.Body, loopEnv)
	}
	// control translates a body result into loop flow: done with an
	// escaping value, done quietly on break, or keep going.
	control := func(result Object) (bool, Object) {
		if isError(result) {
			return true, result
		}
		switch result.(type) {
		case *ReturnValue:
			return true, result
		case *BreakSignal:
			return true, NULL
		}
		return false, nil
	}

	switch subject := iterable.(type) {
	case *Array:
		for i, elem := range subject.Elements {
			if done, out := control(run(&Integer{Value: int64(i)}, elem)); done {
				return out
			}
		}
		return NULL
	case *Hash:
		// Iterate a snapshot of the order so body mutations are safe.
		order := make([]HashKey, len(subject.Order))
		copy(order, subject.Order)
		for _, hk := range order {
			pair, ok := subject.Pairs[hk]
			if !ok {
				continue
			}
			if done, out := control(run(pair.Key, pair.Value)); done {
				return out
			}
		}
		return NULL
	case *String:
		for i, r := range []rune(subject.Value) {
			if done, out := control(run(&Integer{Value: int64(i)}, &String{Value: string(r)})); done {
				return out
			}
		}
		return NULL
	default:
		return NewErrorAt(TypeErrorKind, node.Iterable,
			"type %s is not iterable", iterable.Type())
	}
}

func (e *Evaluator) evalThrowStatement(node *ast.ThrowStatement, env *Environment) Object {
	value := e.Eval(node.Value, env)
	if isError(value) {
		return value
	}
	value = Force(value)

	if err, ok := value.(*Error); ok {
		raised := err.AsRaised()
		if raised.Line == 0 {
			raised.Line = node.Token.Line
			raised.Column = node.Token.Column
		}
		return raised
	}
	// Any other value is wrapped so catch clauses always see an error.
	wrapped := NewErrorAt(RuntimeErrorKind, node, "%s", DisplayString(value))
	wrapped.Payload = value
	return wrapped
}

func (e *Evaluator) evalTryStatement(node *ast.TryStatement, env *Environment) Object {
	result := e.Eval(node.Body, env)

	if err, ok := result.(*Error); ok && err.Raised && err.Kind != EngineFaultKind {
		for _, clause := range node.Catches {
			if !catchMatches(clause, err) {
				continue
			}
			catchEnv := NewEnclosedEnvironment(env)
			catchEnv.Set(clause.Param.Value, err.AsValue())
			result = e.evalBlockStatement(clause.Body, catchEnv)
			break
		}
	}

	if node.Finally != nil {
		finallyResult := e.Eval(node.Finally, env)
		// A signal raised in finally replaces whatever was in flight.
		if isSignal(finallyResult) {
			return finallyResult
		}
	}
	return result
}

// catchMatches applies the optional type filter. An untyped catch
// handles everything.
func catchMatches(clause *ast.CatchClause, err *Error) bool {
	pat, ok := clause.Pattern.(*ast.IdentifierPattern)
	if !ok || pat.TypeName == "" {
		return true
	}
	return pat.TypeName == err.Kind
}
