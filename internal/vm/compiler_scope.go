package vm

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

// local is a compile-time stack slot. Slots are addressed relative to the
// enclosing call frame's base.
type local struct {
	name       string
	depth      int
	isConst    bool
	isCaptured bool
}

// upvalueRef describes where a captured variable comes from: a local slot
// of the immediately enclosing function, or one of its own upvalues.
type upvalueRef struct {
	index   int
	isLocal bool
}

// loopInfo tracks the jump targets and cleanup depths of one active loop.
type loopInfo struct {
	start          int
	breakJumps     []int
	continueLocals int
	breakLocals    int
	tryDepth       int
}

// tryInfo is one active try statement. break, continue and return compile
// handler teardown and the finally block inline before leaving it.
type tryInfo struct {
	finally *ast.BlockStatement
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope pops the locals of the closing scope, closing any that a
// nested closure captured.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		if c.locals[len(c.locals)-1].isCaptured {
			c.emitOp(OP_CLOSE_UPVALUE)
		} else {
			c.emitOp(OP_POP)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// endScopeNoEmit drops scope bookkeeping without emitting pops, for paths
// where the runtime stack was already unwound or the slot is the result.
func (c *Compiler) endScopeNoEmit(target int) {
	c.scopeDepth--
	c.locals = c.locals[:target]
}

// addLocal registers the value currently on top of the stack as a named
// slot. Nothing is emitted; the value simply stays where it is.
func (c *Compiler) addLocal(name string, isConst bool) int {
	if len(c.locals) >= maxLocals {
		c.fail("too many local variables in one function")
	}
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth, isConst: isConst})
	return len(c.locals) - 1
}

// localInCurrentScope finds a slot declared at the current depth, for
// let redeclaration in the same block.
func (c *Compiler) localInCurrentScope(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth < c.scopeDepth {
			break
		}
		if c.locals[i].name == name {
			return i
		}
	}
	return -1
}

func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveUpvalue walks outward through enclosing functions looking for
// name, threading an upvalue chain back down to this one.
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if slot := c.enclosing.resolveLocal(name); slot >= 0 {
		c.enclosing.locals[slot].isCaptured = true
		return c.addUpvalue(slot, true)
	}
	if up := c.enclosing.resolveUpvalue(name); up >= 0 {
		return c.addUpvalue(up, false)
	}
	return -1
}

func (c *Compiler) addUpvalue(index int, isLocal bool) int {
	for i, up := range c.upvalues {
		if up.index == index && up.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxLocals {
		c.fail("too many captured variables in one function")
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(c.upvalues) - 1
}

// discardLocals emits pops down to target without touching compile-time
// state. Used on branch exits (break, continue) where the scope stays
// open for the fall-through path.
func (c *Compiler) discardLocals(target int) {
	for i := len(c.locals) - 1; i >= target; i-- {
		if c.locals[i].isCaptured {
			c.emitOp(OP_CLOSE_UPVALUE)
		} else {
			c.emitOp(OP_POP)
		}
	}
}

// unwindTries tears down try handlers entered since depth, running each
// finally block on the way out. Restores the compile-time stack afterward
// since the fall-through path is still inside those trys.
func (c *Compiler) unwindTries(depth int) {
	saved := c.tries
	for i := len(saved) - 1; i >= depth; i-- {
		c.emitOp(OP_POP_TRY)
		c.tries = saved[:i]
		if saved[i].finally != nil {
			c.compileStatement(saved[i].finally)
		}
	}
	c.tries = saved
}

func (c *Compiler) emitOp(op Opcode) {
	c.chunk.WriteOp(op, c.line)
}

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.line)
}

func (c *Compiler) emitU16(v int) {
	c.chunk.Write(byte(v>>8), c.line)
	c.chunk.Write(byte(v&0xff), c.line)
}

func (c *Compiler) makeConstant(obj evaluator.Object) int {
	idx := c.chunk.AddConstant(obj)
	if idx > 0xffff {
		c.fail("constant pool overflow")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(obj evaluator.Object) {
	idx := c.makeConstant(obj)
	c.emitOp(OP_CONSTANT)
	c.emitU16(idx)
}

func (c *Compiler) nameConstant(name string) int {
	return c.makeConstant(&evaluator.String{Value: name})
}

// emitJump writes op with a placeholder forward offset and returns the
// operand position for patchJump.
func (c *Compiler) emitJump(op Opcode) int {
	c.emitOp(op)
	c.emitU16(0xffff)
	return len(c.chunk.Code) - 2
}

func (c *Compiler) patchJump(operandPos int) {
	jump := len(c.chunk.Code) - operandPos - 2
	if jump > 0xffff {
		c.fail("jump distance too large")
		return
	}
	c.chunk.Code[operandPos] = byte(jump >> 8)
	c.chunk.Code[operandPos+1] = byte(jump & 0xff)
}

// emitLoop writes a backward jump to start.
func (c *Compiler) emitLoop(start int) {
	c.emitOp(OP_LOOP)
	jump := len(c.chunk.Code) - start + 2
	if jump > 0xffff {
		c.fail("loop body too large")
		return
	}
	c.emitU16(jump)
}

func (c *Compiler) setLine(tp ast.TokenProvider) {
	if line := tp.GetToken().Line; line > 0 {
		c.line = line
	}
}
