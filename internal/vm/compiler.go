package vm

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

const maxLocals = 256

// Compiler lowers an AST to bytecode, one instance per function body.
// Constructs the bytecode cannot express directly (class declarations,
// destructuring matches) are embedded as AST constants and handed to the
// interpreting engine at runtime through OP_EVAL_NODE.
type Compiler struct {
	enclosing *Compiler
	chunk     *Chunk
	locals    []local
	upvalues  []upvalueRef

	scopeDepth int
	loops      []*loopInfo
	tries      []*tryInfo

	line int
	err  *evaluator.Error
}

// Compile lowers a whole program to a script-level function.
func Compile(program *ast.Program) (*CompiledFunction, *evaluator.Error) {
	c := &Compiler{chunk: NewChunk()}
	for _, stmt := range program.Statements {
		c.compileStatement(stmt)
		if c.err != nil {
			return nil, c.err
		}
	}
	c.emitOp(OP_NULL)
	c.emitOp(OP_RETURN)
	if c.err != nil {
		return nil, c.err
	}
	return &CompiledFunction{Chunk: c.chunk, Name: "(script)"}, nil
}

func (c *Compiler) fail(format string, args ...interface{}) {
	if c.err == nil {
		err := evaluator.NewError(evaluator.EngineFaultKind, format, args...)
		err.Line = c.line
		c.err = err
	}
}

// needsFallback reports whether a subtree uses constructs the bytecode
// backend delegates to the interpreter.
func needsFallback(node ast.Node) bool {
	if ast.ContainsDestructuringMatch(node) {
		return true
	}
	found := false
	ast.Walk(node, func(n ast.Node) bool {
		if _, ok := n.(*ast.ClassStatement); ok {
			found = true
		}
		return !found
	})
	return found
}

// emitEvalNode embeds an AST subtree in the constant pool and emits the
// interpreter-fallback opcode. The result of the evaluation is pushed.
func (c *Compiler) emitEvalNode(node ast.Node) {
	idx := c.makeConstant(&astNode{Node: node})
	c.emitOp(OP_EVAL_NODE)
	c.emitU16(idx)
}

func (c *Compiler) compileStatement(stmt ast.Statement) {
	if c.err != nil {
		return
	}
	c.setLine(stmt)

	// Statements containing interpreter-only constructs are delegated
	// whole. Only done at script top level, where the interpreter and
	// the VM share the global environment; anything deeper is reached
	// through a delegated ancestor.
	if c.enclosing == nil && c.scopeDepth == 0 && needsFallback(stmt) {
		c.emitEvalNode(stmt)
		c.emitOp(OP_POP)
		return
	}

	switch s := stmt.(type) {
	case *ast.LetStatement:
		c.compileLet(s)
	case *ast.FunctionStatement:
		c.compileFunctionStatement(s)
	case *ast.ExpressionStatement:
		c.compileExpression(s.Expression)
		c.emitOp(OP_POP)
	case *ast.BlockStatement:
		c.beginScope()
		for _, inner := range s.Statements {
			c.compileStatement(inner)
		}
		c.endScope()
	case *ast.IfStatement:
		c.compileIf(s)
	case *ast.WhileStatement:
		c.compileWhile(s)
	case *ast.ForInStatement:
		c.compileForIn(s)
	case *ast.ReturnStatement:
		if s.Value != nil {
			c.compileExpression(s.Value)
		} else {
			c.emitOp(OP_NULL)
		}
		c.emitReturn()
	case *ast.BreakStatement:
		loop := c.currentLoop()
		if loop == nil {
			return
		}
		c.unwindTries(loop.tryDepth)
		c.discardLocals(loop.breakLocals)
		loop.breakJumps = append(loop.breakJumps, c.emitJump(OP_JUMP))
	case *ast.ContinueStatement:
		loop := c.currentLoop()
		if loop == nil {
			return
		}
		c.unwindTries(loop.tryDepth)
		c.discardLocals(loop.continueLocals)
		c.emitLoop(loop.start)
	case *ast.ThrowStatement:
		c.compileExpression(s.Value)
		c.emitOp(OP_THROW)
	case *ast.TryStatement:
		c.compileTry(s)
	default:
		c.fail("cannot compile statement %T", stmt)
	}

	// Declarations and loops evaluate to null, so a script ending in one
	// yields null rather than the value of an earlier expression.
	if c.enclosing == nil && c.scopeDepth == 0 {
		switch stmt.(type) {
		case *ast.LetStatement, *ast.FunctionStatement,
			*ast.WhileStatement, *ast.ForInStatement:
			c.emitOp(OP_NULL)
			c.emitOp(OP_POP)
		}
	}
}

func (c *Compiler) currentLoop() *loopInfo {
	if len(c.loops) == 0 {
		c.fail("loop jump outside loop")
		return nil
	}
	return c.loops[len(c.loops)-1]
}

func (c *Compiler) compileLet(s *ast.LetStatement) {
	if s.Value != nil {
		c.compileExpression(s.Value)
	} else {
		c.emitOp(OP_NULL)
	}
	if s.Const {
		c.emitOp(OP_FREEZE)
	}

	if c.enclosing == nil && c.scopeDepth == 0 {
		idx := c.nameConstant(s.Name.Value)
		if s.Const {
			c.emitOp(OP_DEFINE_GLOBAL_CONST)
		} else {
			c.emitOp(OP_DEFINE_GLOBAL)
		}
		c.emitU16(idx)
		return
	}

	if slot := c.localInCurrentScope(s.Name.Value); slot >= 0 {
		// Redeclaration in the same block rebinds the existing slot.
		c.emitOp(OP_SET_LOCAL)
		c.emitByte(byte(slot))
		c.emitOp(OP_POP)
		c.locals[slot].isConst = c.locals[slot].isConst || s.Const
		return
	}
	c.addLocal(s.Name.Value, s.Const)
}

// compileFunctionStatement binds a function declaration under its name.
// Inside a function body the slot is declared before the literal is
// compiled, so the body can capture its own binding and recurse; the
// OP_CLOSURE push then lands in that very slot.
func (c *Compiler) compileFunctionStatement(s *ast.FunctionStatement) {
	fn := s.Function
	if fn.Name == "" {
		fn = &ast.FunctionLiteral{
			Token:      s.Function.Token,
			Name:       s.Name.Value,
			Parameters: s.Function.Parameters,
			Variadic:   s.Function.Variadic,
			Body:       s.Function.Body,
		}
	}

	if c.enclosing == nil && c.scopeDepth == 0 {
		c.compileFunctionLiteral(fn)
		idx := c.nameConstant(s.Name.Value)
		c.emitOp(OP_DEFINE_GLOBAL)
		c.emitU16(idx)
		return
	}

	if slot := c.localInCurrentScope(s.Name.Value); slot >= 0 {
		c.compileFunctionLiteral(fn)
		c.emitOp(OP_SET_LOCAL)
		c.emitByte(byte(slot))
		c.emitOp(OP_POP)
		return
	}

	c.addLocal(s.Name.Value, false)
	c.compileFunctionLiteral(fn)
}

func (c *Compiler) compileIf(s *ast.IfStatement) {
	c.compileExpression(s.Condition)
	if s.Negated {
		c.emitOp(OP_BANG)
	}
	elseJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.compileStatement(s.Consequence)
	if s.Alternative != nil {
		endJump := c.emitJump(OP_JUMP)
		c.patchJump(elseJump)
		c.compileStatement(s.Alternative)
		c.patchJump(endJump)
	} else {
		c.patchJump(elseJump)
	}
}

func (c *Compiler) compileWhile(s *ast.WhileStatement) {
	loop := &loopInfo{
		start:          len(c.chunk.Code),
		continueLocals: len(c.locals),
		breakLocals:    len(c.locals),
		tryDepth:       len(c.tries),
	}
	c.loops = append(c.loops, loop)

	c.compileExpression(s.Condition)
	exitJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.compileStatement(s.Body)
	c.emitLoop(loop.start)
	c.patchJump(exitJump)

	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.loops = c.loops[:len(c.loops)-1]
}

func (c *Compiler) compileForIn(s *ast.ForInStatement) {
	c.compileExpression(s.Iterable)
	c.emitOp(OP_ITER_NEW)

	c.beginScope()
	breakLocals := len(c.locals)
	c.addLocal("(iter)", false)

	loop := &loopInfo{
		start:          len(c.chunk.Code),
		continueLocals: len(c.locals),
		breakLocals:    breakLocals,
		tryDepth:       len(c.tries),
	}
	c.loops = append(c.loops, loop)

	// Each pass either pushes the next key and value or exits the loop.
	c.emitOp(OP_ITER_NEXT)
	exitJump := len(c.chunk.Code)
	c.emitU16(0xffff)

	c.beginScope()
	keyName := "(key)"
	if s.Key != nil {
		keyName = s.Key.Value
	}
	c.addLocal(keyName, false)
	c.addLocal(s.Value.Value, false)
	c.compileStatement(s.Body)
	c.endScope()
	c.emitLoop(loop.start)

	c.patchJump(exitJump)
	c.endScope() // pops the iterator

	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.loops = c.loops[:len(c.loops)-1]
}

// emitReturn tears down any active try handlers, running their finally
// blocks with the return value parked in a hidden slot so finally code
// sees the stack layout it was compiled against.
func (c *Compiler) emitReturn() {
	if len(c.tries) > 0 {
		slot := c.addLocal("(ret)", false)
		c.unwindTries(0)
		c.emitOp(OP_GET_LOCAL)
		c.emitByte(byte(slot))
		c.locals = c.locals[:len(c.locals)-1]
	}
	c.emitOp(OP_RETURN)
}

func (c *Compiler) compileTry(s *ast.TryStatement) {
	c.emitOp(OP_SETUP_TRY)
	handlerJump := len(c.chunk.Code)
	c.emitU16(0xffff)

	c.tries = append(c.tries, &tryInfo{finally: s.Finally})
	c.compileStatement(s.Body)
	c.tries = c.tries[:len(c.tries)-1]

	c.emitOp(OP_POP_TRY)
	if s.Finally != nil {
		c.compileStatement(s.Finally)
	}
	endJumps := []int{c.emitJump(OP_JUMP)}

	// Handler: entered with the error value on top of the stack, which
	// becomes a hidden local so inlined finally code stays slot-aligned.
	c.patchJump(handlerJump)
	c.beginScope()
	base := len(c.locals)
	errSlot := c.addLocal("(err)", false)

	if len(s.Catches) > 0 {
		// Engine faults bypass catch clauses entirely.
		c.emitOp(OP_GET_LOCAL)
		c.emitByte(byte(errSlot))
		c.emitOp(OP_ERROR_KIND)
		c.emitConstant(&evaluator.String{Value: evaluator.EngineFaultKind})
		c.emitOp(OP_EQ)
		notFault := c.emitJump(OP_JUMP_IF_FALSE)
		if s.Finally != nil {
			c.compileStatement(s.Finally)
		}
		c.emitOp(OP_GET_LOCAL)
		c.emitByte(byte(errSlot))
		c.emitOp(OP_THROW)
		c.patchJump(notFault)

		for _, clause := range s.Catches {
			skip := -1
			if kind := catchKind(clause); kind != "" {
				c.emitOp(OP_GET_LOCAL)
				c.emitByte(byte(errSlot))
				c.emitOp(OP_ERROR_KIND)
				c.emitConstant(&evaluator.String{Value: kind})
				c.emitOp(OP_EQ)
				skip = c.emitJump(OP_JUMP_IF_FALSE)
			}

			// Bind the error under the clause's name and run the body.
			// With a finally block present the body runs under its own
			// handler so finally executes even when the body raises.
			c.emitOp(OP_GET_LOCAL)
			c.emitByte(byte(errSlot))
			c.beginScope()
			c.addLocal(clause.Param.Value, false)

			protectJump := -1
			if s.Finally != nil {
				c.emitOp(OP_SETUP_TRY)
				protectJump = len(c.chunk.Code)
				c.emitU16(0xffff)
				c.tries = append(c.tries, &tryInfo{finally: s.Finally})
			}
			c.compileStatement(clause.Body)
			if s.Finally != nil {
				c.tries = c.tries[:len(c.tries)-1]
				c.emitOp(OP_POP_TRY)

				done := c.emitJump(OP_JUMP)
				c.patchJump(protectJump)
				inner := c.addLocal("(err2)", false)
				c.compileStatement(s.Finally)
				c.emitOp(OP_GET_LOCAL)
				c.emitByte(byte(inner))
				c.emitOp(OP_THROW)
				c.locals = c.locals[:len(c.locals)-1]
				c.patchJump(done)
			}
			c.endScope()

			if s.Finally != nil {
				c.compileStatement(s.Finally)
			}
			c.discardLocals(base)
			endJumps = append(endJumps, c.emitJump(OP_JUMP))

			if skip >= 0 {
				c.patchJump(skip)
			}
		}
	}

	// No clause handled it: run finally and rethrow.
	if s.Finally != nil {
		c.compileStatement(s.Finally)
	}
	c.emitOp(OP_GET_LOCAL)
	c.emitByte(byte(errSlot))
	c.emitOp(OP_THROW)
	c.endScopeNoEmit(base)

	for _, j := range endJumps {
		c.patchJump(j)
	}
}

func catchKind(clause *ast.CatchClause) string {
	if pat, ok := clause.Pattern.(*ast.IdentifierPattern); ok {
		return pat.TypeName
	}
	return ""
}
