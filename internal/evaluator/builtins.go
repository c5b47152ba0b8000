package evaluator

import (
	"math/big"
	"strconv"
	"strings"
)

// registerCoreBuiltins installs the natives every engine carries,
// independent of any host-provided registry.
func (e *Evaluator) registerCoreBuiltins() {
	core := []*Builtin{
		{Name: "len", Fn: builtinLen},
		{Name: "type", Fn: builtinType},
		{Name: "str", Fn: builtinStr},
		{Name: "int", Fn: builtinInt},
		{Name: "float", Fn: builtinFloat},
		{Name: "decimal", Fn: builtinDecimal},
		{Name: "push", Fn: builtinPush},
		{Name: "pop", Fn: builtinPop},
		{Name: "first", Fn: builtinFirst},
		{Name: "last", Fn: builtinLast},
		{Name: "keys", Fn: builtinKeys},
		{Name: "values", Fn: builtinValues},
		{Name: "delete", Fn: builtinDelete},
		{Name: "fetch", Fn: builtinFetch},
		{Name: "at", Fn: builtinAt},
		{Name: "contains", Fn: builtinContains},
		{Name: "copy", Fn: builtinCopy},
		{Name: "range", Fn: builtinRange},
		{Name: "split", Fn: builtinSplit},
		{Name: "join", Fn: builtinJoin},
		{Name: "trim", Fn: builtinTrim},
		{Name: "error", Fn: builtinError},
	}
	for _, b := range core {
		e.builtins[b.Name] = b
	}
}

func wrongArgCount(name string, want string, got int) *Error {
	return newTypeError("%s expects %s arguments, got %d", name, want, got)
}

func builtinLen(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("len", "1", len(args))
	}
	switch arg := Force(args[0]).(type) {
	case *String:
		return &Integer{Value: int64(len([]rune(arg.Value)))}
	case *Array:
		return &Integer{Value: int64(len(arg.Elements))}
	case *Hash:
		return &Integer{Value: int64(len(arg.Pairs))}
	default:
		return newTypeError("len does not support %s", TypeName(arg))
	}
}

func builtinType(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("type", "1", len(args))
	}
	return &String{Value: TypeName(args[0])}
}

func builtinStr(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("str", "1", len(args))
	}
	return &String{Value: DisplayString(args[0])}
}

func builtinInt(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("int", "1", len(args))
	}
	switch arg := Force(args[0]).(type) {
	case *Integer:
		return arg
	case *Float:
		return &Integer{Value: int64(arg.Value)}
	case *Decimal:
		quo := new(big.Rat).Set(arg.Value)
		return &Integer{Value: quo.Num().Int64() / quo.Denom().Int64()}
	case *Boolean:
		if arg.Value {
			return &Integer{Value: 1}
		}
		return &Integer{Value: 0}
	case *String:
		v, err := strconv.ParseInt(strings.TrimSpace(arg.Value), 10, 64)
		if err != nil {
			return NewError(ValueErrorKind, "cannot convert %q to Int", arg.Value)
		}
		return &Integer{Value: v}
	default:
		return newTypeError("int does not support %s", TypeName(arg))
	}
}

func builtinFloat(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("float", "1", len(args))
	}
	switch arg := Force(args[0]).(type) {
	case *Float:
		return arg
	case *Integer:
		return &Float{Value: float64(arg.Value)}
	case *Decimal:
		f, _ := arg.Value.Float64()
		return &Float{Value: f}
	case *String:
		v, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64)
		if err != nil {
			return NewError(ValueErrorKind, "cannot convert %q to Float", arg.Value)
		}
		return &Float{Value: v}
	default:
		return newTypeError("float does not support %s", TypeName(arg))
	}
}

func builtinDecimal(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("decimal", "1", len(args))
	}
	switch arg := Force(args[0]).(type) {
	case *Decimal:
		return arg
	case *Integer:
		return &Decimal{Value: new(big.Rat).SetInt64(arg.Value), Scale: 0}
	case *String:
		text := strings.TrimSpace(strings.TrimSuffix(arg.Value, "D"))
		rat, ok := new(big.Rat).SetString(text)
		if !ok {
			return NewError(ValueErrorKind, "cannot convert %q to Decimal", arg.Value)
		}
		scale := 0
		if dot := strings.IndexByte(text, '.'); dot >= 0 {
			scale = len(text) - dot - 1
		}
		return &Decimal{Value: rat, Scale: scale}
	default:
		return newTypeError("decimal does not support %s", TypeName(arg))
	}
}

func builtinPush(args ...Object) Object {
	if len(args) < 2 {
		return wrongArgCount("push", "at least 2", len(args))
	}
	arr, ok := Force(args[0]).(*Array)
	if !ok {
		return newTypeError("push expects an Array, got %s", TypeName(args[0]))
	}
	if arr.Frozen {
		return NewError(ConstReassignErrorKind, "cannot modify a frozen array")
	}
	arr.Elements = append(arr.Elements, args[1:]...)
	return arr
}

func builtinPop(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("pop", "1", len(args))
	}
	arr, ok := Force(args[0]).(*Array)
	if !ok {
		return newTypeError("pop expects an Array, got %s", TypeName(args[0]))
	}
	if arr.Frozen {
		return NewError(ConstReassignErrorKind, "cannot modify a frozen array")
	}
	if len(arr.Elements) == 0 {
		return NewError(IndexErrorKind, "pop from empty array")
	}
	last := arr.Elements[len(arr.Elements)-1]
	arr.Elements = arr.Elements[:len(arr.Elements)-1]
	return last
}

func builtinFirst(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("first", "1", len(args))
	}
	arr, ok := Force(args[0]).(*Array)
	if !ok {
		return newTypeError("first expects an Array, got %s", TypeName(args[0]))
	}
	if len(arr.Elements) == 0 {
		return NULL
	}
	return arr.Elements[0]
}

func builtinLast(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("last", "1", len(args))
	}
	arr, ok := Force(args[0]).(*Array)
	if !ok {
		return newTypeError("last expects an Array, got %s", TypeName(args[0]))
	}
	if len(arr.Elements) == 0 {
		return NULL
	}
	return arr.Elements[len(arr.Elements)-1]
}

func builtinKeys(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("keys", "1", len(args))
	}
	hash, ok := Force(args[0]).(*Hash)
	if !ok {
		return newTypeError("keys expects a Hash, got %s", TypeName(args[0]))
	}
	keys := make([]Object, 0, len(hash.Order))
	for _, hk := range hash.Order {
		keys = append(keys, hash.Pairs[hk].Key)
	}
	return &Array{Elements: keys}
}

func builtinValues(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("values", "1", len(args))
	}
	hash, ok := Force(args[0]).(*Hash)
	if !ok {
		return newTypeError("values expects a Hash, got %s", TypeName(args[0]))
	}
	values := make([]Object, 0, len(hash.Order))
	for _, hk := range hash.Order {
		values = append(values, hash.Pairs[hk].Value)
	}
	return &Array{Elements: values}
}

func builtinDelete(args ...Object) Object {
	if len(args) != 2 {
		return wrongArgCount("delete", "2", len(args))
	}
	hash, ok := Force(args[0]).(*Hash)
	if !ok {
		return newTypeError("delete expects a Hash, got %s", TypeName(args[0]))
	}
	if hash.Frozen {
		return NewError(ConstReassignErrorKind, "cannot modify a frozen hash")
	}
	return NativeBoolToBooleanObject(hash.Delete(Force(args[1])))
}

// fetch is the strict counterpart of indexing: a missing key raises
// KeyError instead of yielding null.
func builtinFetch(args ...Object) Object {
	if len(args) != 2 {
		return wrongArgCount("fetch", "2", len(args))
	}
	hash, ok := Force(args[0]).(*Hash)
	if !ok {
		return newTypeError("fetch expects a Hash, got %s", TypeName(args[0]))
	}
	key := Force(args[1])
	if value, found := hash.Get(key); found {
		return value
	}
	return NewError(KeyErrorKind, "key %s not found", key.Inspect())
}

// at is the strict array accessor. Negative indexes count from the end,
// as with bracket indexing.
func builtinAt(args ...Object) Object {
	if len(args) != 2 {
		return wrongArgCount("at", "2", len(args))
	}
	arr, ok := Force(args[0]).(*Array)
	if !ok {
		return newTypeError("at expects an Array, got %s", TypeName(args[0]))
	}
	idx, ok := Force(args[1]).(*Integer)
	if !ok {
		return newTypeError("at index must be INTEGER, got %s", TypeName(args[1]))
	}
	i := normalizeIndex(idx.Value, len(arr.Elements))
	if i < 0 {
		return NewError(IndexErrorKind, "index %d out of bounds for length %d",
			idx.Value, len(arr.Elements))
	}
	return arr.Elements[i]
}

func builtinContains(args ...Object) Object {
	if len(args) != 2 {
		return wrongArgCount("contains", "2", len(args))
	}
	needle := Force(args[1])
	switch subject := Force(args[0]).(type) {
	case *Array:
		for _, elem := range subject.Elements {
			if Equals(elem, needle) {
				return TRUE
			}
		}
		return FALSE
	case *Hash:
		_, found := subject.Get(needle)
		return NativeBoolToBooleanObject(found)
	case *String:
		s, ok := needle.(*String)
		if !ok {
			return newTypeError("contains on String expects a String, got %s", TypeName(needle))
		}
		return NativeBoolToBooleanObject(strings.Contains(subject.Value, s.Value))
	default:
		return newTypeError("contains does not support %s", TypeName(subject))
	}
}

// copy returns an unfrozen shallow copy, the escape hatch for data bound
// by const.
func builtinCopy(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("copy", "1", len(args))
	}
	switch subject := Force(args[0]).(type) {
	case *Array:
		elems := make([]Object, len(subject.Elements))
		copy(elems, subject.Elements)
		return &Array{Elements: elems}
	case *Hash:
		out := NewHash()
		for _, hk := range subject.Order {
			pair := subject.Pairs[hk]
			out.Set(pair.Key, pair.Value)
		}
		return out
	default:
		return args[0]
	}
}

func builtinRange(args ...Object) Object {
	if len(args) < 1 || len(args) > 3 {
		return wrongArgCount("range", "1 to 3", len(args))
	}
	bounds := make([]int64, 0, 3)
	for _, arg := range args {
		n, ok := Force(arg).(*Integer)
		if !ok {
			return newTypeError("range expects Int arguments, got %s", TypeName(arg))
		}
		bounds = append(bounds, n.Value)
	}

	start, stop, step := int64(0), bounds[0], int64(1)
	if len(bounds) >= 2 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) == 3 {
		step = bounds[2]
	}
	if step == 0 {
		return NewError(ValueErrorKind, "range step cannot be zero")
	}

	var elems []Object
	if step > 0 {
		for v := start; v < stop; v += step {
			elems = append(elems, &Integer{Value: v})
		}
	} else {
		for v := start; v > stop; v += step {
			elems = append(elems, &Integer{Value: v})
		}
	}
	return &Array{Elements: elems}
}

func builtinSplit(args ...Object) Object {
	if len(args) != 2 {
		return wrongArgCount("split", "2", len(args))
	}
	s, ok := Force(args[0]).(*String)
	if !ok {
		return newTypeError("split expects a String, got %s", TypeName(args[0]))
	}
	sep, ok := Force(args[1]).(*String)
	if !ok {
		return newTypeError("split separator must be String, got %s", TypeName(args[1]))
	}
	parts := strings.Split(s.Value, sep.Value)
	elems := make([]Object, len(parts))
	for i, part := range parts {
		elems[i] = &String{Value: part}
	}
	return &Array{Elements: elems}
}

func builtinJoin(args ...Object) Object {
	if len(args) != 2 {
		return wrongArgCount("join", "2", len(args))
	}
	arr, ok := Force(args[0]).(*Array)
	if !ok {
		return newTypeError("join expects an Array, got %s", TypeName(args[0]))
	}
	sep, ok := Force(args[1]).(*String)
	if !ok {
		return newTypeError("join separator must be String, got %s", TypeName(args[1]))
	}
	parts := make([]string, len(arr.Elements))
	for i, elem := range arr.Elements {
		parts[i] = DisplayString(elem)
	}
	return &String{Value: strings.Join(parts, sep.Value)}
}

func builtinTrim(args ...Object) Object {
	if len(args) != 1 {
		return wrongArgCount("trim", "1", len(args))
	}
	s, ok := Force(args[0]).(*String)
	if !ok {
		return newTypeError("trim expects a String, got %s", TypeName(args[0]))
	}
	return &String{Value: strings.TrimSpace(s.Value)}
}

// error constructs an error value without raising it; throw does the
// raising. A one-argument call makes a RuntimeError.
func builtinError(args ...Object) Object {
	switch len(args) {
	case 1:
		msg, ok := Force(args[0]).(*String)
		if !ok {
			return newTypeError("error expects String arguments, got %s", TypeName(args[0]))
		}
		return &Error{Kind: RuntimeErrorKind, Message: msg.Value}
	case 2:
		kind, ok := Force(args[0]).(*String)
		if !ok {
			return newTypeError("error kind must be String, got %s", TypeName(args[0]))
		}
		if !KnownErrorKind(kind.Value) {
			return NewError(ValueErrorKind, "unknown error kind %q", kind.Value)
		}
		msg, ok := Force(args[1]).(*String)
		if !ok {
			return newTypeError("error message must be String, got %s", TypeName(args[1]))
		}
		return &Error{Kind: kind.Value, Message: msg.Value}
	default:
		return wrongArgCount("error", "1 or 2", len(args))
	}
}
