package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders a chunk as human-readable assembly, one
// instruction per line. Nested compiled functions are appended after
// the chunk that references them.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	var nested []*CompiledFunction

	fmt.Fprintf(&sb, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = disassembleInstruction(&sb, chunk, offset, &nested)
	}
	for _, fn := range nested {
		sb.WriteString("\n")
		sb.WriteString(Disassemble(fn.Chunk, fn.Inspect()))
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int, nested *[]*CompiledFunction) int {
	fmt.Fprintf(sb, "%04d ", offset)
	if offset > 0 && chunk.Line(offset) == chunk.Line(offset-1) {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", chunk.Line(offset))
	}

	op := Opcode(chunk.Code[offset])
	switch op {
	case OP_CONSTANT, OP_GET_GLOBAL, OP_SET_GLOBAL, OP_DEFINE_GLOBAL,
		OP_DEFINE_GLOBAL_CONST, OP_GET_MEMBER, OP_SAFE_MEMBER, OP_SET_MEMBER,
		OP_SCOPE_RES, OP_TYPE_MATCH, OP_EVAL_NODE:
		idx := readUint16(chunk.Code, offset+1)
		fmt.Fprintf(sb, "%-24s %4d ", op, idx)
		if idx < len(chunk.Constants) {
			fmt.Fprintf(sb, "(%s)", chunk.Constants[idx].Inspect())
		}
		sb.WriteString("\n")
		return offset + 3

	case OP_CLOSURE:
		idx := readUint16(chunk.Code, offset+1)
		fn := chunk.Constants[idx].(*CompiledFunction)
		*nested = append(*nested, fn)
		fmt.Fprintf(sb, "%-24s %4d (%s)\n", op, idx, fn.Inspect())
		next := offset + 3
		for i := 0; i < fn.UpvalueCount; i++ {
			kind := "upvalue"
			if chunk.Code[next] == 1 {
				kind = "local"
			}
			fmt.Fprintf(sb, "%04d    |   %s %d\n", next, kind, chunk.Code[next+1])
			next += 2
		}
		return next

	case OP_JUMP, OP_JUMP_IF_FALSE, OP_JUMP_IF_FALSE_KEEP,
		OP_JUMP_IF_TRUE_KEEP, OP_JUMP_IF_NOT_NULL_KEEP, OP_SETUP_TRY, OP_ITER_NEXT:
		jump := readUint16(chunk.Code, offset+1)
		fmt.Fprintf(sb, "%-24s %4d -> %d\n", op, jump, offset+3+jump)
		return offset + 3

	case OP_LOOP:
		jump := readUint16(chunk.Code, offset+1)
		fmt.Fprintf(sb, "%-24s %4d -> %d\n", op, jump, offset+3-jump)
		return offset + 3

	case OP_GET_LOCAL, OP_SET_LOCAL, OP_GET_UPVALUE, OP_SET_UPVALUE,
		OP_CALL, OP_ARRAY, OP_HASH, OP_INTERP:
		fmt.Fprintf(sb, "%-24s %4d\n", op, chunk.Code[offset+1])
		return offset + 2

	default:
		fmt.Fprintf(sb, "%s\n", op)
		return offset + 1
	}
}
