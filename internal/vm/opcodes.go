package vm

// Opcode is one byte of instruction stream. Operands follow inline:
// u16 for constant indices and jump offsets, u8 for slots and counts.
type Opcode byte

const (
	OP_CONSTANT Opcode = iota
	OP_NULL
	OP_TRUE
	OP_FALSE
	OP_POP
	OP_DUP

	OP_GET_LOCAL
	OP_SET_LOCAL
	OP_GET_GLOBAL
	OP_SET_GLOBAL
	OP_DEFINE_GLOBAL
	OP_DEFINE_GLOBAL_CONST
	OP_GET_UPVALUE
	OP_SET_UPVALUE

	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_EQ
	OP_NOT_EQ
	OP_LT
	OP_GT
	OP_LT_EQ
	OP_GT_EQ

	OP_MINUS
	OP_BANG

	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_JUMP_IF_FALSE_KEEP
	OP_JUMP_IF_TRUE_KEEP
	OP_JUMP_IF_NOT_NULL_KEEP
	OP_LOOP

	OP_CALL
	OP_CALL_ARRAY
	OP_RETURN
	OP_CLOSURE
	OP_CLOSE_UPVALUE

	OP_ARRAY
	OP_ARRAY_CONCAT
	OP_HASH
	OP_INDEX
	OP_SET_INDEX
	OP_GET_MEMBER
	OP_SAFE_MEMBER
	OP_SET_MEMBER
	OP_SCOPE_RES
	OP_INTERP

	OP_FREEZE
	OP_TYPE_MATCH
	OP_ERROR_KIND

	OP_ITER_NEW
	OP_ITER_NEXT

	OP_SETUP_TRY
	OP_POP_TRY
	OP_THROW
	OP_MATCH_FAIL

	OP_EVAL_NODE
)

// binaryOperators maps arithmetic and comparison opcodes to the operator
// strings the shared evaluator helpers understand.
var binaryOperators = map[Opcode]string{
	OP_ADD:    "+",
	OP_SUB:    "-",
	OP_MUL:    "*",
	OP_DIV:    "/",
	OP_MOD:    "%",
	OP_EQ:     "==",
	OP_NOT_EQ: "!=",
	OP_LT:     "<",
	OP_GT:     ">",
	OP_LT_EQ:  "<=",
	OP_GT_EQ:  ">=",
}

var opcodeNames = map[Opcode]string{
	OP_CONSTANT:              "OP_CONSTANT",
	OP_NULL:                  "OP_NULL",
	OP_TRUE:                  "OP_TRUE",
	OP_FALSE:                 "OP_FALSE",
	OP_POP:                   "OP_POP",
	OP_DUP:                   "OP_DUP",
	OP_GET_LOCAL:             "OP_GET_LOCAL",
	OP_SET_LOCAL:             "OP_SET_LOCAL",
	OP_GET_GLOBAL:            "OP_GET_GLOBAL",
	OP_SET_GLOBAL:            "OP_SET_GLOBAL",
	OP_DEFINE_GLOBAL:         "OP_DEFINE_GLOBAL",
	OP_DEFINE_GLOBAL_CONST:   "OP_DEFINE_GLOBAL_CONST",
	OP_GET_UPVALUE:           "OP_GET_UPVALUE",
	OP_SET_UPVALUE:           "OP_SET_UPVALUE",
	OP_ADD:                   "OP_ADD",
	OP_SUB:                   "OP_SUB",
	OP_MUL:                   "OP_MUL",
	OP_DIV:                   "OP_DIV",
	OP_MOD:                   "OP_MOD",
	OP_EQ:                    "OP_EQ",
	OP_NOT_EQ:                "OP_NOT_EQ",
	OP_LT:                    "OP_LT",
	OP_GT:                    "OP_GT",
	OP_LT_EQ:                 "OP_LT_EQ",
	OP_GT_EQ:                 "OP_GT_EQ",
	OP_MINUS:                 "OP_MINUS",
	OP_BANG:                  "OP_BANG",
	OP_JUMP:                  "OP_JUMP",
	OP_JUMP_IF_FALSE:         "OP_JUMP_IF_FALSE",
	OP_JUMP_IF_FALSE_KEEP:    "OP_JUMP_IF_FALSE_KEEP",
	OP_JUMP_IF_TRUE_KEEP:     "OP_JUMP_IF_TRUE_KEEP",
	OP_JUMP_IF_NOT_NULL_KEEP: "OP_JUMP_IF_NOT_NULL_KEEP",
	OP_LOOP:                  "OP_LOOP",
	OP_CALL:                  "OP_CALL",
	OP_CALL_ARRAY:            "OP_CALL_ARRAY",
	OP_RETURN:                "OP_RETURN",
	OP_CLOSURE:               "OP_CLOSURE",
	OP_CLOSE_UPVALUE:         "OP_CLOSE_UPVALUE",
	OP_ARRAY:                 "OP_ARRAY",
	OP_ARRAY_CONCAT:          "OP_ARRAY_CONCAT",
	OP_HASH:                  "OP_HASH",
	OP_INDEX:                 "OP_INDEX",
	OP_SET_INDEX:             "OP_SET_INDEX",
	OP_GET_MEMBER:            "OP_GET_MEMBER",
	OP_SAFE_MEMBER:           "OP_SAFE_MEMBER",
	OP_SET_MEMBER:            "OP_SET_MEMBER",
	OP_SCOPE_RES:             "OP_SCOPE_RES",
	OP_INTERP:                "OP_INTERP",
	OP_FREEZE:                "OP_FREEZE",
	OP_TYPE_MATCH:            "OP_TYPE_MATCH",
	OP_ERROR_KIND:            "OP_ERROR_KIND",
	OP_ITER_NEW:              "OP_ITER_NEW",
	OP_ITER_NEXT:             "OP_ITER_NEXT",
	OP_SETUP_TRY:             "OP_SETUP_TRY",
	OP_POP_TRY:               "OP_POP_TRY",
	OP_THROW:                 "OP_THROW",
	OP_MATCH_FAIL:            "OP_MATCH_FAIL",
	OP_EVAL_NODE:             "OP_EVAL_NODE",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}
