package vm

import (
	"strings"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

const (
	// MaxFrames bounds call nesting before the VM raises StackOverflowError.
	MaxFrames = 1024
	// StackSize is the fixed operand stack size. The stack is never
	// reallocated so upvalue pointers into it stay valid.
	StackSize = 16384
)

// CallFrame is one function activation: the running closure, its
// instruction pointer and the stack slot its locals start at.
type CallFrame struct {
	closure *Closure
	ip      int
	base    int
}

// tryFrame is a registered catch handler. Raising unwinds to the newest
// one: the stack is truncated to stackDepth, the error value is pushed
// and execution resumes at catchIP inside frame frameIdx.
type tryFrame struct {
	catchIP    int
	stackDepth int
	frameIdx   int
}

// VM executes compiled chunks. It shares the global environment and the
// builtin table with an interpreting evaluator, which also serves class
// declarations and destructuring matches through OP_EVAL_NODE.
type VM struct {
	eval    *evaluator.Evaluator
	globals *evaluator.Environment

	stack  []evaluator.Object
	sp     int
	frames []CallFrame
	tries  []tryFrame

	openUpvalues map[int]*Upvalue
	lastPopped   evaluator.Object
	script       bool
}

// New builds a VM around an evaluator and a global environment shared
// with it. It also registers itself as the evaluator's apply hook so
// interpreted code can call back into compiled closures.
func New(eval *evaluator.Evaluator, globals *evaluator.Environment) *VM {
	vm := &VM{
		eval:         eval,
		globals:      globals,
		stack:        make([]evaluator.Object, StackSize),
		frames:       make([]CallFrame, 0, 64),
		openUpvalues: map[int]*Upvalue{},
	}
	eval.SetApplyHook(vm.applyForeign)
	return vm
}

// Run executes a compiled script and returns the value of its last
// expression statement, or the raised error that escaped all handlers.
func (vm *VM) Run(fn *CompiledFunction) (evaluator.Object, *evaluator.Error) {
	vm.sp = 0
	vm.frames = vm.frames[:0]
	vm.tries = vm.tries[:0]
	vm.openUpvalues = map[int]*Upvalue{}
	vm.lastPopped = evaluator.NULL
	vm.script = true

	vm.frames = append(vm.frames, CallFrame{closure: &Closure{Fn: fn}})
	return vm.execute()
}

// applyForeign serves evaluator-side calls to compiled closures by
// running them on a fresh VM that shares globals and builtins. Raised
// errors come back as error objects and propagate normally.
func (vm *VM) applyForeign(callee evaluator.Object, args []evaluator.Object) (evaluator.Object, bool) {
	closure, ok := evaluator.Force(callee).(*Closure)
	if !ok {
		if fn, isFn := evaluator.Force(callee).(*CompiledFunction); isFn {
			closure = &Closure{Fn: fn}
		} else {
			return nil, false
		}
	}
	sub := &VM{
		eval:         vm.eval,
		globals:      vm.globals,
		stack:        make([]evaluator.Object, StackSize),
		frames:       make([]CallFrame, 0, 8),
		openUpvalues: map[int]*Upvalue{},
		lastPopped:   evaluator.NULL,
	}
	result, err := sub.runClosure(closure, args)
	if err != nil {
		return err, true
	}
	return result, true
}

// runClosure executes a single closure call to completion.
func (vm *VM) runClosure(closure *Closure, args []evaluator.Object) (evaluator.Object, *evaluator.Error) {
	vm.push(closure)
	for _, arg := range args {
		vm.push(arg)
	}
	if err := vm.callClosure(closure, len(args)); err != nil {
		return nil, err
	}
	return vm.execute()
}

func (vm *VM) push(obj evaluator.Object) {
	vm.stack[vm.sp] = obj
	vm.sp++
}

func (vm *VM) pop() evaluator.Object {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) evaluator.Object {
	return vm.stack[vm.sp-1-distance]
}

// raise unwinds to the innermost try handler. It reports false when no
// handler is registered and the error escapes the VM.
func (vm *VM) raise(err *evaluator.Error, line int) bool {
	if err.Line == 0 {
		err.Line = line
	}
	if len(vm.tries) == 0 {
		return false
	}
	tf := vm.tries[len(vm.tries)-1]
	vm.tries = vm.tries[:len(vm.tries)-1]

	vm.closeUpvalues(tf.stackDepth)
	vm.frames = vm.frames[:tf.frameIdx+1]
	vm.sp = tf.stackDepth
	vm.push(err.AsValue())
	vm.frames[tf.frameIdx].ip = tf.catchIP
	return true
}

func (vm *VM) captureUpvalue(slot int) *Upvalue {
	if up, ok := vm.openUpvalues[slot]; ok {
		return up
	}
	up := &Upvalue{Location: &vm.stack[slot]}
	vm.openUpvalues[slot] = up
	return up
}

func (vm *VM) closeUpvalues(from int) {
	for slot, up := range vm.openUpvalues {
		if slot >= from {
			up.Close()
			delete(vm.openUpvalues, slot)
		}
	}
}

// callClosure checks arity, packs variadic rest arguments and pushes a
// new frame. The callee sits just below the arguments on the stack. A
// non-nil error means the call could not start.
func (vm *VM) callClosure(closure *Closure, argc int) *evaluator.Error {
	fn := closure.Fn
	if fn.Variadic {
		fixed := fn.NumParams - 1
		if argc < fixed {
			return evaluator.NewError(evaluator.TypeErrorKind,
				"%s expects at least %d arguments, got %d", compiledLabel(fn), fixed, argc)
		}
		rest := make([]evaluator.Object, argc-fixed)
		copy(rest, vm.stack[vm.sp-(argc-fixed):vm.sp])
		vm.sp -= argc - fixed
		vm.push(&evaluator.Array{Elements: rest})
		argc = fn.NumParams
	} else if argc != fn.NumParams {
		return evaluator.NewError(evaluator.TypeErrorKind,
			"%s expects %d arguments, got %d", compiledLabel(fn), fn.NumParams, argc)
	}

	if len(vm.frames) >= MaxFrames {
		return evaluator.NewError(evaluator.StackOverflowErrorKind,
			"call depth exceeded %d frames", MaxFrames)
	}
	if vm.sp+maxLocals >= StackSize {
		return evaluator.NewError(evaluator.StackOverflowErrorKind, "value stack overflow")
	}
	vm.frames = append(vm.frames, CallFrame{closure: closure, base: vm.sp - argc})
	return nil
}

func compiledLabel(fn *CompiledFunction) string {
	if fn.Name == "" {
		return "anonymous function"
	}
	return "function " + fn.Name
}

// dispatchCall invokes the callee sitting under argc arguments. Compiled
// closures get a frame; every other callable is served by the evaluator.
func (vm *VM) dispatchCall(argc int) *evaluator.Error {
	callee := evaluator.Force(vm.stack[vm.sp-argc-1])
	if closure, ok := callee.(*Closure); ok {
		return vm.callClosure(closure, argc)
	}

	args := make([]evaluator.Object, argc)
	copy(args, vm.stack[vm.sp-argc:vm.sp])
	vm.sp -= argc + 1
	result := vm.eval.Apply(callee, args)
	if err, ok := result.(*evaluator.Error); ok && evaluator.IsError(result) {
		return err
	}
	vm.push(result)
	return nil
}

func (vm *VM) dropFrameTries() {
	idx := len(vm.frames) - 1
	for len(vm.tries) > 0 && vm.tries[len(vm.tries)-1].frameIdx >= idx {
		vm.tries = vm.tries[:len(vm.tries)-1]
	}
}

// asError extracts a raised error from an evaluator helper result.
func asError(obj evaluator.Object) *evaluator.Error {
	if err, ok := obj.(*evaluator.Error); ok && evaluator.IsError(obj) {
		return err
	}
	return nil
}

// execute is the dispatch loop. Opcodes that fail produce a language
// level error which either transfers control to a try handler or ends
// the run.
func (vm *VM) execute() (evaluator.Object, *evaluator.Error) {
	for {
		frame := &vm.frames[len(vm.frames)-1]
		code := frame.closure.Fn.Chunk.Code
		constants := frame.closure.Fn.Chunk.Constants

		opIP := frame.ip
		line := frame.closure.Fn.Chunk.Line(opIP)
		op := Opcode(code[frame.ip])
		frame.ip++

		var raised *evaluator.Error

		switch op {
		case OP_CONSTANT:
			idx := readUint16(code, frame.ip)
			frame.ip += 2
			vm.push(constants[idx])

		case OP_NULL:
			vm.push(evaluator.NULL)
		case OP_TRUE:
			vm.push(evaluator.TRUE)
		case OP_FALSE:
			vm.push(evaluator.FALSE)
		case OP_POP:
			vm.lastPopped = vm.pop()
		case OP_DUP:
			vm.push(vm.peek(0))

		case OP_GET_LOCAL:
			slot := int(code[frame.ip])
			frame.ip++
			vm.push(vm.stack[frame.base+slot])
		case OP_SET_LOCAL:
			slot := int(code[frame.ip])
			frame.ip++
			vm.stack[frame.base+slot] = vm.peek(0)

		case OP_GET_GLOBAL:
			name := constantName(constants, code, frame.ip)
			frame.ip += 2
			value, ok := vm.globals.Get(name)
			if !ok {
				if builtin, found := vm.eval.Builtin(name); found {
					value, ok = builtin, true
				}
			}
			if !ok {
				raised = evaluator.NewError(evaluator.NameErrorKind, "undefined name '%s'", name)
			} else {
				vm.push(value)
			}
		case OP_SET_GLOBAL:
			name := constantName(constants, code, frame.ip)
			frame.ip += 2
			ok, constViolation := vm.globals.Update(name, vm.peek(0))
			if constViolation {
				raised = evaluator.NewError(evaluator.ConstReassignErrorKind,
					"cannot reassign const '%s'", name)
			} else if !ok {
				raised = evaluator.NewError(evaluator.NameErrorKind, "undefined name '%s'", name)
			}
		case OP_DEFINE_GLOBAL:
			name := constantName(constants, code, frame.ip)
			frame.ip += 2
			vm.globals.Set(name, vm.pop())
		case OP_DEFINE_GLOBAL_CONST:
			name := constantName(constants, code, frame.ip)
			frame.ip += 2
			vm.globals.SetConst(name, vm.pop())

		case OP_GET_UPVALUE:
			idx := int(code[frame.ip])
			frame.ip++
			vm.push(*frame.closure.Upvalues[idx].Location)
		case OP_SET_UPVALUE:
			idx := int(code[frame.ip])
			frame.ip++
			*frame.closure.Upvalues[idx].Location = vm.peek(0)

		case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD,
			OP_EQ, OP_NOT_EQ, OP_LT, OP_GT, OP_LT_EQ, OP_GT_EQ:
			right := vm.pop()
			left := vm.pop()
			result := evaluator.BinaryOp(binaryOperators[op], left, right)
			if raised = asError(result); raised == nil {
				vm.push(result)
			}

		case OP_MINUS, OP_BANG:
			operator := "-"
			if op == OP_BANG {
				operator = "!"
			}
			result := evaluator.UnaryOp(operator, vm.pop())
			if raised = asError(result); raised == nil {
				vm.push(result)
			}

		case OP_JUMP:
			frame.ip += readUint16(code, frame.ip) + 2
		case OP_JUMP_IF_FALSE:
			offset := readUint16(code, frame.ip)
			frame.ip += 2
			if !evaluator.Truthy(vm.pop()) {
				frame.ip += offset
			}
		case OP_JUMP_IF_FALSE_KEEP:
			offset := readUint16(code, frame.ip)
			frame.ip += 2
			if !evaluator.Truthy(vm.peek(0)) {
				frame.ip += offset
			}
		case OP_JUMP_IF_TRUE_KEEP:
			offset := readUint16(code, frame.ip)
			frame.ip += 2
			if evaluator.Truthy(vm.peek(0)) {
				frame.ip += offset
			}
		case OP_JUMP_IF_NOT_NULL_KEEP:
			offset := readUint16(code, frame.ip)
			frame.ip += 2
			if evaluator.Force(vm.peek(0)) != evaluator.NULL {
				frame.ip += offset
			}
		case OP_LOOP:
			frame.ip -= readUint16(code, frame.ip) - 2

		case OP_CALL:
			argc := int(code[frame.ip])
			frame.ip++
			raised = vm.dispatchCall(argc)
		case OP_CALL_ARRAY:
			pack, ok := evaluator.Force(vm.pop()).(*evaluator.Array)
			if !ok {
				return nil, engineFault("call argument pack is not an array")
			}
			for _, arg := range pack.Elements {
				vm.push(arg)
			}
			raised = vm.dispatchCall(len(pack.Elements))

		case OP_RETURN:
			result := vm.pop()
			base := frame.base
			vm.closeUpvalues(base)
			vm.dropFrameTries()
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				if vm.script {
					return vm.lastPopped, nil
				}
				return result, nil
			}
			vm.sp = base - 1
			vm.push(result)

		case OP_CLOSURE:
			idx := readUint16(code, frame.ip)
			frame.ip += 2
			fn := constants[idx].(*CompiledFunction)
			closure := &Closure{Fn: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := code[frame.ip] == 1
				index := int(code[frame.ip+1])
				frame.ip += 2
				if isLocal {
					closure.Upvalues[i] = vm.captureUpvalue(frame.base + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			vm.push(closure)
		case OP_CLOSE_UPVALUE:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case OP_ARRAY:
			n := int(code[frame.ip])
			frame.ip++
			elements := make([]evaluator.Object, n)
			copy(elements, vm.stack[vm.sp-n:vm.sp])
			vm.sp -= n
			vm.push(&evaluator.Array{Elements: elements})
		case OP_ARRAY_CONCAT:
			right := evaluator.Force(vm.pop())
			left, ok := vm.pop().(*evaluator.Array)
			if !ok {
				return nil, engineFault("spread concat applied to a non-array")
			}
			arr, ok := right.(*evaluator.Array)
			if !ok {
				raised = evaluator.NewError(evaluator.TypeErrorKind,
					"spread operand must be Array, got %s", evaluator.TypeName(right))
			} else {
				merged := make([]evaluator.Object, 0, len(left.Elements)+len(arr.Elements))
				merged = append(merged, left.Elements...)
				merged = append(merged, arr.Elements...)
				vm.push(&evaluator.Array{Elements: merged})
			}

		case OP_HASH:
			n := int(code[frame.ip])
			frame.ip++
			hash := evaluator.NewHash()
			base := vm.sp - n*2
			for i := 0; i < n; i++ {
				key := evaluator.Force(vm.stack[base+i*2])
				if !evaluator.HashableKey(key) {
					raised = evaluator.NewError(evaluator.TypeErrorKind,
						"unusable as hash key: %s", evaluator.TypeName(key))
					break
				}
				hash.Set(key, vm.stack[base+i*2+1])
			}
			vm.sp = base
			if raised == nil {
				vm.push(hash)
			}

		case OP_INDEX:
			index := vm.pop()
			left := vm.pop()
			result := evaluator.IndexGet(left, index)
			if raised = asError(result); raised == nil {
				vm.push(result)
			}
		case OP_SET_INDEX:
			value := vm.pop()
			index := vm.pop()
			left := vm.pop()
			result := evaluator.IndexSet(left, index, value)
			if raised = asError(result); raised == nil {
				vm.push(value)
			}

		case OP_GET_MEMBER, OP_SAFE_MEMBER:
			name := constantName(constants, code, frame.ip)
			frame.ip += 2
			result := vm.eval.MemberGet(vm.pop(), name, op == OP_SAFE_MEMBER, vm.globals)
			if raised = asError(result); raised == nil {
				vm.push(result)
			}
		case OP_SET_MEMBER:
			name := constantName(constants, code, frame.ip)
			frame.ip += 2
			value := vm.pop()
			result := vm.eval.MemberSet(vm.pop(), name, value, vm.globals)
			if raised = asError(result); raised == nil {
				vm.push(value)
			}
		case OP_SCOPE_RES:
			name := constantName(constants, code, frame.ip)
			frame.ip += 2
			result := evaluator.ScopeResolve(vm.pop(), name)
			if raised = asError(result); raised == nil {
				vm.push(result)
			}

		case OP_INTERP:
			n := int(code[frame.ip])
			frame.ip++
			var sb strings.Builder
			for i := vm.sp - n; i < vm.sp; i++ {
				sb.WriteString(evaluator.DisplayString(vm.stack[i]))
			}
			vm.sp -= n
			vm.push(&evaluator.String{Value: sb.String()})

		case OP_FREEZE:
			evaluator.Freeze(vm.peek(0))
		case OP_TYPE_MATCH:
			name := constantName(constants, code, frame.ip)
			frame.ip += 2
			subject := evaluator.Force(vm.pop())
			vm.push(evaluator.NativeBoolToBooleanObject(evaluator.TypeMatches(name, subject)))
		case OP_ERROR_KIND:
			obj := evaluator.Force(vm.pop())
			if err, ok := obj.(*evaluator.Error); ok {
				vm.push(&evaluator.String{Value: err.Kind})
			} else {
				vm.push(&evaluator.String{Value: evaluator.TypeName(obj)})
			}

		case OP_ITER_NEW:
			it, err := newIterator(evaluator.Force(vm.pop()))
			if err != nil {
				raised = err
			} else {
				vm.push(it)
			}
		case OP_ITER_NEXT:
			offset := readUint16(code, frame.ip)
			frame.ip += 2
			it := vm.peek(0).(*iterator)
			key, value, ok := it.next()
			if ok {
				vm.push(key)
				vm.push(value)
			} else {
				frame.ip += offset
			}

		case OP_SETUP_TRY:
			offset := readUint16(code, frame.ip)
			frame.ip += 2
			vm.tries = append(vm.tries, tryFrame{
				catchIP:    frame.ip + offset,
				stackDepth: vm.sp,
				frameIdx:   len(vm.frames) - 1,
			})
		case OP_POP_TRY:
			vm.tries = vm.tries[:len(vm.tries)-1]
		case OP_THROW:
			result := evaluator.Raise(vm.pop(), line)
			raised = asError(result)
			if raised == nil {
				return nil, engineFault("throw produced a non-error")
			}
		case OP_MATCH_FAIL:
			subject := vm.pop()
			raised = evaluator.NewError(evaluator.MatchErrorKind,
				"no pattern matched value %s", subject.Inspect())

		case OP_EVAL_NODE:
			idx := readUint16(code, frame.ip)
			frame.ip += 2
			node := constants[idx].(*astNode).Node.(ast.Node)
			result := vm.eval.Eval(node, vm.globals)
			if result == nil {
				result = evaluator.NULL
			}
			if raised = asError(result); raised == nil {
				vm.push(result)
			}

		default:
			return nil, engineFault("unknown opcode %d at %d", op, opIP)
		}

		if raised != nil {
			if !vm.raise(raised, line) {
				return nil, raised
			}
		}
	}
}

func newIterator(iterable evaluator.Object) (*iterator, *evaluator.Error) {
	switch subject := iterable.(type) {
	case *evaluator.Array:
		elements := subject.Elements
		i := 0
		return &iterator{next: func() (evaluator.Object, evaluator.Object, bool) {
			if i >= len(elements) {
				return nil, nil, false
			}
			key := &evaluator.Integer{Value: int64(i)}
			value := elements[i]
			i++
			return key, value, true
		}}, nil
	case *evaluator.Hash:
		order := make([]evaluator.HashKey, len(subject.Order))
		copy(order, subject.Order)
		i := 0
		return &iterator{next: func() (evaluator.Object, evaluator.Object, bool) {
			for i < len(order) {
				pair, ok := subject.Pairs[order[i]]
				i++
				if !ok {
					continue
				}
				return pair.Key, pair.Value, true
			}
			return nil, nil, false
		}}, nil
	case *evaluator.String:
		runes := []rune(subject.Value)
		i := 0
		return &iterator{next: func() (evaluator.Object, evaluator.Object, bool) {
			if i >= len(runes) {
				return nil, nil, false
			}
			key := &evaluator.Integer{Value: int64(i)}
			value := &evaluator.String{Value: string(runes[i])}
			i++
			return key, value, true
		}}, nil
	default:
		return nil, evaluator.NewError(evaluator.TypeErrorKind,
			"type %s is not iterable", iterable.Type())
	}
}

func constantName(constants []evaluator.Object, code []byte, ip int) string {
	return constants[readUint16(code, ip)].(*evaluator.String).Value
}

func engineFault(format string, args ...interface{}) *evaluator.Error {
	return evaluator.NewError(evaluator.EngineFaultKind, format, args...)
}
