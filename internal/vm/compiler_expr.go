package vm

import (
	"strings"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

var binaryOpcodes = map[string]Opcode{
	"+":  OP_ADD,
	"-":  OP_SUB,
	"*":  OP_MUL,
	"/":  OP_DIV,
	"%":  OP_MOD,
	"==": OP_EQ,
	"!=": OP_NOT_EQ,
	"<":  OP_LT,
	">":  OP_GT,
	"<=": OP_LT_EQ,
	">=": OP_GT_EQ,
}

func (c *Compiler) compileExpression(expr ast.Expression) {
	if c.err != nil {
		return
	}
	c.setLine(expr)

	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		c.emitConstant(&evaluator.Integer{Value: e.Value})
	case *ast.FloatLiteral:
		c.emitConstant(&evaluator.Float{Value: e.Value})
	case *ast.DecimalLiteral:
		c.emitConstant(&evaluator.Decimal{Value: e.Value, Scale: e.Scale})
	case *ast.BooleanLiteral:
		if e.Value {
			c.emitOp(OP_TRUE)
		} else {
			c.emitOp(OP_FALSE)
		}
	case *ast.NullLiteral:
		c.emitOp(OP_NULL)
	case *ast.StringLiteral:
		c.emitConstant(&evaluator.String{Value: e.Value})
	case *ast.InterpolatedString:
		for _, part := range e.Parts {
			c.compileExpression(part)
		}
		c.emitOp(OP_INTERP)
		c.emitByte(byte(len(e.Parts)))
	case *ast.Identifier:
		c.compileIdentifier(e)
	case *ast.ArrayLiteral:
		c.compileElements(e.Elements)
	case *ast.HashLiteral:
		for _, pair := range e.Pairs {
			c.compileExpression(pair.Key)
			c.compileExpression(pair.Value)
		}
		c.emitOp(OP_HASH)
		c.emitByte(byte(len(e.Pairs)))
	case *ast.FunctionLiteral:
		c.compileFunctionLiteral(e)
	case *ast.PrefixExpression:
		c.compileExpression(e.Right)
		c.setLine(e)
		if e.Operator == "!" {
			c.emitOp(OP_BANG)
		} else {
			c.emitOp(OP_MINUS)
		}
	case *ast.InfixExpression:
		c.compileInfix(e)
	case *ast.TernaryExpression:
		c.compileExpression(e.Condition)
		elseJump := c.emitJump(OP_JUMP_IF_FALSE)
		c.compileExpression(e.Then)
		endJump := c.emitJump(OP_JUMP)
		c.patchJump(elseJump)
		c.compileExpression(e.Else)
		c.patchJump(endJump)
	case *ast.AssignExpression:
		c.compileAssign(e)
	case *ast.CallExpression:
		c.compileCall(e)
	case *ast.IndexExpression:
		c.compileExpression(e.Left)
		c.compileExpression(e.Index)
		c.setLine(e)
		c.emitOp(OP_INDEX)
	case *ast.MemberExpression:
		c.compileExpression(e.Object)
		c.setLine(e)
		if e.Safe {
			c.emitOp(OP_SAFE_MEMBER)
		} else {
			c.emitOp(OP_GET_MEMBER)
		}
		c.emitU16(c.nameConstant(e.Property.Value))
	case *ast.ScopeResolution:
		c.compileExpression(e.Left)
		c.setLine(e)
		c.emitOp(OP_SCOPE_RES)
		c.emitU16(c.nameConstant(e.Name.Value))
	case *ast.MatchExpression:
		c.compileMatch(e)
	default:
		c.fail("cannot compile expression %T", expr)
	}
}

func (c *Compiler) compileIdentifier(e *ast.Identifier) {
	if slot := c.resolveLocal(e.Value); slot >= 0 {
		c.emitOp(OP_GET_LOCAL)
		c.emitByte(byte(slot))
		return
	}
	if up := c.resolveUpvalue(e.Value); up >= 0 {
		c.emitOp(OP_GET_UPVALUE)
		c.emitByte(byte(up))
		return
	}
	c.emitOp(OP_GET_GLOBAL)
	c.emitU16(c.nameConstant(e.Value))
}

// compileElements builds an array from a literal's element list, folding
// spread segments in with runtime concatenation.
func (c *Compiler) compileElements(elements []ast.Expression) {
	run := 0
	emitted := false
	flush := func() {
		c.emitOp(OP_ARRAY)
		c.emitByte(byte(run))
		run = 0
		if emitted {
			c.emitOp(OP_ARRAY_CONCAT)
		}
		emitted = true
	}

	for _, elem := range elements {
		if spread, ok := elem.(*ast.SpreadExpression); ok {
			flush()
			c.compileExpression(spread.Value)
			c.emitOp(OP_ARRAY_CONCAT)
			continue
		}
		if run == 255 {
			flush()
		}
		c.compileExpression(elem)
		run++
	}
	if run > 0 || !emitted {
		flush()
	}
}

func hasSpread(args []ast.Expression) bool {
	for _, arg := range args {
		if _, ok := arg.(*ast.SpreadExpression); ok {
			return true
		}
	}
	return false
}

func (c *Compiler) compileCall(e *ast.CallExpression) {
	c.compileExpression(e.Function)
	if hasSpread(e.Arguments) {
		c.compileElements(e.Arguments)
		c.setLine(e)
		c.emitOp(OP_CALL_ARRAY)
		return
	}
	if len(e.Arguments) > 255 {
		c.fail("too many call arguments")
		return
	}
	for _, arg := range e.Arguments {
		c.compileExpression(arg)
	}
	c.setLine(e)
	c.emitOp(OP_CALL)
	c.emitByte(byte(len(e.Arguments)))
}

func (c *Compiler) compileInfix(e *ast.InfixExpression) {
	switch e.Operator {
	case "&&":
		c.compileExpression(e.Left)
		end := c.emitJump(OP_JUMP_IF_FALSE_KEEP)
		c.emitOp(OP_POP)
		c.compileExpression(e.Right)
		c.patchJump(end)
		return
	case "||":
		c.compileExpression(e.Left)
		end := c.emitJump(OP_JUMP_IF_TRUE_KEEP)
		c.emitOp(OP_POP)
		c.compileExpression(e.Right)
		c.patchJump(end)
		return
	case "??":
		c.compileExpression(e.Left)
		end := c.emitJump(OP_JUMP_IF_NOT_NULL_KEEP)
		c.emitOp(OP_POP)
		c.compileExpression(e.Right)
		c.patchJump(end)
		return
	}

	c.compileExpression(e.Left)
	c.compileExpression(e.Right)
	c.setLine(e)
	c.emitBinary(e.Operator)
}

func (c *Compiler) emitBinary(operator string) {
	op, ok := binaryOpcodes[operator]
	if !ok {
		c.fail("unknown binary operator %q", operator)
		return
	}
	c.emitOp(op)
}

func (c *Compiler) compileAssign(e *ast.AssignExpression) {
	op := strings.TrimSuffix(e.Operator, "=")

	switch target := e.Target.(type) {
	case *ast.Identifier:
		if op != "" {
			c.compileIdentifier(target)
			c.compileExpression(e.Value)
			c.emitBinary(op)
		} else {
			c.compileExpression(e.Value)
		}
		c.setLine(e)
		c.storeIdentifier(target)

	case *ast.IndexExpression:
		c.compileExpression(target.Left)
		c.compileExpression(target.Index)
		if op != "" {
			c.compileExpression(target)
			c.compileExpression(e.Value)
			c.emitBinary(op)
		} else {
			c.compileExpression(e.Value)
		}
		c.setLine(e)
		c.emitOp(OP_SET_INDEX)

	case *ast.MemberExpression:
		c.compileExpression(target.Object)
		if op != "" {
			c.compileExpression(target)
			c.compileExpression(e.Value)
			c.emitBinary(op)
		} else {
			c.compileExpression(e.Value)
		}
		c.setLine(e)
		c.emitOp(OP_SET_MEMBER)
		c.emitU16(c.nameConstant(target.Property.Value))

	default:
		c.fail("invalid assignment target %T", e.Target)
	}
}

// storeIdentifier writes the value on top of the stack into a binding,
// leaving the value in place as the expression result.
func (c *Compiler) storeIdentifier(target *ast.Identifier) {
	if slot := c.resolveLocal(target.Value); slot >= 0 {
		if c.locals[slot].isConst {
			err := evaluator.NewError(evaluator.ConstReassignErrorKind,
				"cannot reassign const '%s'", target.Value)
			err.Line = c.line
			c.emitConstant(err.AsValue())
			c.emitOp(OP_THROW)
			return
		}
		c.emitOp(OP_SET_LOCAL)
		c.emitByte(byte(slot))
		return
	}
	if up := c.resolveUpvalue(target.Value); up >= 0 {
		c.emitOp(OP_SET_UPVALUE)
		c.emitByte(byte(up))
		return
	}
	c.emitOp(OP_SET_GLOBAL)
	c.emitU16(c.nameConstant(target.Value))
}

func (c *Compiler) compileFunctionLiteral(e *ast.FunctionLiteral) {
	// Bodies that use interpreter-only constructs become interpreted
	// closures over the global environment.
	if needsFallback(e.Body) {
		c.emitEvalNode(e)
		return
	}
	if len(e.Parameters) > 255 {
		c.fail("too many parameters")
		return
	}

	sub := &Compiler{
		enclosing:  c,
		chunk:      NewChunk(),
		scopeDepth: 1,
		line:       c.line,
	}
	for _, param := range e.Parameters {
		sub.addLocal(param.Value, false)
	}
	sub.compileStatement(e.Body)
	sub.emitOp(OP_NULL)
	sub.emitOp(OP_RETURN)
	if sub.err != nil && c.err == nil {
		c.err = sub.err
	}

	fn := &CompiledFunction{
		Chunk:        sub.chunk,
		NumParams:    len(e.Parameters),
		Variadic:     e.Variadic,
		UpvalueCount: len(sub.upvalues),
		Name:         e.Name,
	}
	idx := c.makeConstant(fn)
	c.emitOp(OP_CLOSURE)
	c.emitU16(idx)
	for _, up := range sub.upvalues {
		if up.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(byte(up.index))
	}
}

func (c *Compiler) compileMatch(e *ast.MatchExpression) {
	c.compileExpression(e.Subject)
	c.beginScope()
	subjectSlot := c.addLocal("(subject)", false)

	var endJumps []int
	for _, arm := range e.Arms {
		c.setLine(arm.Pattern)
		patternFail := -1

		switch pat := arm.Pattern.(type) {
		case *ast.WildcardPattern:
			// always matches
		case *ast.LiteralPattern:
			c.emitOp(OP_GET_LOCAL)
			c.emitByte(byte(subjectSlot))
			c.compileExpression(pat.Value)
			c.emitOp(OP_EQ)
			patternFail = c.emitJump(OP_JUMP_IF_FALSE)
		case *ast.IdentifierPattern:
			if pat.TypeName != "" {
				c.emitOp(OP_GET_LOCAL)
				c.emitByte(byte(subjectSlot))
				c.emitOp(OP_TYPE_MATCH)
				c.emitU16(c.nameConstant(pat.TypeName))
				patternFail = c.emitJump(OP_JUMP_IF_FALSE)
			}
		default:
			c.fail("cannot compile pattern %T", arm.Pattern)
			return
		}

		// Bind the subject under the pattern name for guard and body.
		bound := false
		guardFail := -1
		if pat, ok := arm.Pattern.(*ast.IdentifierPattern); ok {
			c.emitOp(OP_GET_LOCAL)
			c.emitByte(byte(subjectSlot))
			c.addLocal(pat.Name.Value, false)
			bound = true
		}
		if arm.Guard != nil {
			c.compileExpression(arm.Guard)
			guardFail = c.emitJump(OP_JUMP_IF_FALSE)
		}

		c.compileExpression(arm.Body)
		c.emitOp(OP_SET_LOCAL)
		c.emitByte(byte(subjectSlot))
		c.emitOp(OP_POP)
		if bound {
			c.emitOp(OP_POP)
			c.locals = c.locals[:len(c.locals)-1]
		}
		endJumps = append(endJumps, c.emitJump(OP_JUMP))

		if guardFail >= 0 {
			c.patchJump(guardFail)
			if bound {
				c.emitOp(OP_POP)
			}
		}
		if patternFail >= 0 {
			c.patchJump(patternFail)
		}
	}

	// No arm matched.
	c.emitOp(OP_GET_LOCAL)
	c.emitByte(byte(subjectSlot))
	c.emitOp(OP_MATCH_FAIL)

	for _, j := range endJumps {
		c.patchJump(j)
	}
	// The subject slot now holds the arm result and is the expression value.
	c.endScopeNoEmit(subjectSlot)
}
