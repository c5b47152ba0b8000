package evaluator

import (
	"math"
	"math/big"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func NativeBoolToBooleanObject(v bool) *Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

// Truthy implements conditional semantics: only false and null are falsy.
func Truthy(obj Object) bool {
	obj = Force(obj)
	switch obj {
	case FALSE, NULL:
		return false
	}
	switch o := obj.(type) {
	case *Boolean:
		return o.Value
	case *Null:
		return false
	}
	return true
}

// BinaryOp applies an infix operator to two already-forced operands.
// It returns an *Error object on type mismatch or arithmetic failure.
// The logical operators (&&, ||, ??) short-circuit in the backends and
// never reach here.
func BinaryOp(op string, left, right Object) Object {
	left = Force(left)
	right = Force(right)

	switch op {
	case "==":
		return NativeBoolToBooleanObject(Equals(left, right))
	case "!=":
		return NativeBoolToBooleanObject(!Equals(left, right))
	}

	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return integerBinaryOp(op, left.(*Integer), right.(*Integer))
	case left.Type() == DECIMAL_OBJ || right.Type() == DECIMAL_OBJ:
		return decimalBinaryOp(op, left, right)
	case isNumeric(left) && isNumeric(right):
		return floatBinaryOp(op, toFloat(left), toFloat(right))
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return stringBinaryOp(op, left.(*String), right.(*String))
	case left.Type() == ARRAY_OBJ && right.Type() == ARRAY_OBJ && op == "+":
		l, r := left.(*Array), right.(*Array)
		elems := make([]Object, 0, len(l.Elements)+len(r.Elements))
		elems = append(elems, l.Elements...)
		elems = append(elems, r.Elements...)
		return &Array{Elements: elems}
	default:
		return newTypeError("unsupported operand types for %s: %s and %s",
			op, left.Type(), right.Type())
	}
}

func isNumeric(obj Object) bool {
	t := obj.Type()
	return t == INTEGER_OBJ || t == FLOAT_OBJ
}

func toFloat(obj Object) float64 {
	switch o := obj.(type) {
	case *Integer:
		return float64(o.Value)
	case *Float:
		return o.Value
	}
	return math.NaN()
}

func integerBinaryOp(op string, left, right *Integer) Object {
	a, b := left.Value, right.Value
	switch op {
	case "+":
		sum := a + b
		if (sum > a) != (b > 0) {
			return NewError(RuntimeErrorKind, "integer overflow: %d + %d", a, b)
		}
		return &Integer{Value: sum}
	case "-":
		diff := a - b
		if (diff < a) != (b > 0) {
			return NewError(RuntimeErrorKind, "integer overflow: %d - %d", a, b)
		}
		return &Integer{Value: diff}
	case "*":
		if a != 0 && b != 0 {
			prod := a * b
			if prod/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
				return NewError(RuntimeErrorKind, "integer overflow: %d * %d", a, b)
			}
			return &Integer{Value: prod}
		}
		return &Integer{Value: 0}
	case "/":
		if b == 0 {
			return NewError(RuntimeErrorKind, "division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return NewError(RuntimeErrorKind, "integer overflow: %d / %d", a, b)
		}
		return &Integer{Value: a / b}
	case "%":
		if b == 0 {
			return NewError(RuntimeErrorKind, "division by zero")
		}
		return &Integer{Value: a % b}
	case "<":
		return NativeBoolToBooleanObject(a < b)
	case ">":
		return NativeBoolToBooleanObject(a > b)
	case "<=":
		return NativeBoolToBooleanObject(a <= b)
	case ">=":
		return NativeBoolToBooleanObject(a >= b)
	default:
		return newTypeError("unknown operator: INTEGER %s INTEGER", op)
	}
}

func floatBinaryOp(op string, a, b float64) Object {
	switch op {
	case "+":
		return &Float{Value: a + b}
	case "-":
		return &Float{Value: a - b}
	case "*":
		return &Float{Value: a * b}
	case "/":
		if b == 0 {
			return NewError(RuntimeErrorKind, "division by zero")
		}
		return &Float{Value: a / b}
	case "%":
		if b == 0 {
			return NewError(RuntimeErrorKind, "division by zero")
		}
		return &Float{Value: math.Mod(a, b)}
	case "<":
		return NativeBoolToBooleanObject(a < b)
	case ">":
		return NativeBoolToBooleanObject(a > b)
	case "<=":
		return NativeBoolToBooleanObject(a <= b)
	case ">=":
		return NativeBoolToBooleanObject(a >= b)
	default:
		return newTypeError("unknown operator: FLOAT %s FLOAT", op)
	}
}

// decimalBinaryOp handles any pair where at least one side is Decimal.
// Ints widen exactly; mixing Decimal with Float is a type error because
// the float's binary representation would poison exactness.
func decimalBinaryOp(op string, left, right Object) Object {
	la, ls, ok := toRat(left)
	if !ok {
		return newTypeError("cannot mix %s with DECIMAL; convert explicitly", left.Type())
	}
	ra, rs, ok := toRat(right)
	if !ok {
		return newTypeError("cannot mix %s with DECIMAL; convert explicitly", right.Type())
	}

	maxScale := ls
	if rs > maxScale {
		maxScale = rs
	}

	out := new(big.Rat)
	switch op {
	case "+":
		out.Add(la, ra)
		return &Decimal{Value: out, Scale: maxScale}
	case "-":
		out.Sub(la, ra)
		return &Decimal{Value: out, Scale: maxScale}
	case "*":
		out.Mul(la, ra)
		return &Decimal{Value: out, Scale: ls + rs}
	case "/":
		if ra.Sign() == 0 {
			return NewError(RuntimeErrorKind, "division by zero")
		}
		out.Quo(la, ra)
		// Quotients may not terminate; widen the display scale so short
		// results stay exact and long ones show enough digits.
		return &Decimal{Value: out, Scale: maxScale + 6}
	case "<":
		return NativeBoolToBooleanObject(la.Cmp(ra) < 0)
	case ">":
		return NativeBoolToBooleanObject(la.Cmp(ra) > 0)
	case "<=":
		return NativeBoolToBooleanObject(la.Cmp(ra) <= 0)
	case ">=":
		return NativeBoolToBooleanObject(la.Cmp(ra) >= 0)
	default:
		return newTypeError("unknown operator: DECIMAL %s DECIMAL", op)
	}
}

func toRat(obj Object) (*big.Rat, int, bool) {
	switch o := obj.(type) {
	case *Decimal:
		return o.Value, o.Scale, true
	case *Integer:
		return new(big.Rat).SetInt64(o.Value), 0, true
	}
	return nil, 0, false
}

func stringBinaryOp(op string, left, right *String) Object {
	switch op {
	case "+":
		return &String{Value: left.Value + right.Value}
	case "<":
		return NativeBoolToBooleanObject(left.Value < right.Value)
	case ">":
		return NativeBoolToBooleanObject(left.Value > right.Value)
	case "<=":
		return NativeBoolToBooleanObject(left.Value <= right.Value)
	case ">=":
		return NativeBoolToBooleanObject(left.Value >= right.Value)
	default:
		return newTypeError("unknown operator: STRING %s STRING", op)
	}
}

// UnaryOp applies a prefix operator.
func UnaryOp(op string, operand Object) Object {
	operand = Force(operand)
	switch op {
	case "!":
		return NativeBoolToBooleanObject(!Truthy(operand))
	case "-":
		switch o := operand.(type) {
		case *Integer:
			if o.Value == math.MinInt64 {
				return NewError(RuntimeErrorKind, "integer overflow: -%d", o.Value)
			}
			return &Integer{Value: -o.Value}
		case *Float:
			return &Float{Value: -o.Value}
		case *Decimal:
			return &Decimal{Value: new(big.Rat).Neg(o.Value), Scale: o.Scale}
		}
		return newTypeError("unsupported operand type for -: %s", operand.Type())
	default:
		return newTypeError("unknown prefix operator: %s", op)
	}
}

// Equals implements == semantics: structural over primitives, arrays and
// hashes, identity over functions, classes and instances.
func Equals(a, b Object) bool {
	a = Force(a)
	b = Force(b)

	switch av := a.(type) {
	case *Integer:
		switch bv := b.(type) {
		case *Integer:
			return av.Value == bv.Value
		case *Float:
			return float64(av.Value) == bv.Value
		case *Decimal:
			return new(big.Rat).SetInt64(av.Value).Cmp(bv.Value) == 0
		}
		return false
	case *Float:
		switch bv := b.(type) {
		case *Integer:
			return av.Value == float64(bv.Value)
		case *Float:
			return av.Value == bv.Value
		}
		return false
	case *Decimal:
		switch bv := b.(type) {
		case *Decimal:
			return av.Value.Cmp(bv.Value) == 0
		case *Integer:
			return av.Value.Cmp(new(big.Rat).SetInt64(bv.Value)) == 0
		}
		return false
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equals(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Hash:
		bv, ok := b.(*Hash)
		if !ok || len(av.Pairs) != len(bv.Pairs) {
			return false
		}
		for key, pair := range av.Pairs {
			other, exists := bv.Pairs[key]
			if !exists || !Equals(pair.Value, other.Value) {
				return false
			}
		}
		return true
	case *Error:
		bv, ok := b.(*Error)
		return ok && av == bv
	default:
		return a == b
	}
}

// IndexGet implements subject[index] for arrays, hashes and strings.
// Array indices may be negative to count from the end. A missing hash
// key yields null.
func IndexGet(left, index Object) Object {
	left = Force(left)
	index = Force(index)

	switch subject := left.(type) {
	case *Array:
		idx, ok := index.(*Integer)
		if !ok {
			return newTypeError("array index must be INTEGER, got %s", index.Type())
		}
		i := normalizeIndex(idx.Value, len(subject.Elements))
		if i < 0 {
			return NewError(IndexErrorKind, "index %d out of bounds for length %d",
				idx.Value, len(subject.Elements))
		}
		return subject.Elements[i]
	case *Hash:
		if !hashableKey(index) {
			return newTypeError("unusable as hash key: %s", index.Type())
		}
		if value, ok := subject.Get(index); ok {
			return value
		}
		return NULL
	case *String:
		idx, ok := index.(*Integer)
		if !ok {
			return newTypeError("string index must be INTEGER, got %s", index.Type())
		}
		runes := []rune(subject.Value)
		i := normalizeIndex(idx.Value, len(runes))
		if i < 0 {
			return NewError(IndexErrorKind, "index %d out of bounds for length %d",
				idx.Value, len(runes))
		}
		return &String{Value: string(runes[i])}
	default:
		return newTypeError("type %s does not support indexing", left.Type())
	}
}

// IndexSet implements subject[index] = value, respecting frozen
// collections created by const bindings.
func IndexSet(left, index, value Object) Object {
	left = Force(left)
	index = Force(index)

	switch subject := left.(type) {
	case *Array:
		if subject.Frozen {
			return NewError(ConstReassignErrorKind, "cannot modify a frozen array")
		}
		idx, ok := index.(*Integer)
		if !ok {
			return newTypeError("array index must be INTEGER, got %s", index.Type())
		}
		i := normalizeIndex(idx.Value, len(subject.Elements))
		if i < 0 {
			return NewError(IndexErrorKind, "index %d out of bounds for length %d",
				idx.Value, len(subject.Elements))
		}
		subject.Elements[i] = value
		return value
	case *Hash:
		if subject.Frozen {
			return NewError(ConstReassignErrorKind, "cannot modify a frozen hash")
		}
		if !subject.Set(index, value) {
			return newTypeError("unusable as hash key: %s", index.Type())
		}
		return value
	default:
		return newTypeError("type %s does not support index assignment", left.Type())
	}
}

func normalizeIndex(idx int64, length int) int {
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return -1
	}
	return int(idx)
}

// hashableKey restricts hash keys to the primitive value types.
func hashableKey(obj Object) bool {
	switch obj.Type() {
	case INTEGER_OBJ, FLOAT_OBJ, STRING_OBJ, BOOLEAN_OBJ:
		return true
	}
	return false
}

// DisplayString renders a value for interpolation and print: strings
// appear without quotes, everything else uses Inspect.
func DisplayString(obj Object) string {
	obj = Force(obj)
	if s, ok := obj.(*String); ok {
		return s.Value
	}
	return obj.Inspect()
}

// TypeName maps runtime types to the names surfaced to user programs,
// which typed patterns and the type builtin use.
func TypeName(obj Object) string {
	switch obj := Force(obj).(type) {
	case *Integer:
		return "Int"
	case *Float:
		return "Float"
	case *Decimal:
		return "Decimal"
	case *Boolean:
		return "Bool"
	case *Null:
		return "Null"
	case *String:
		return "String"
	case *Array:
		return "Array"
	case *Hash:
		return "Hash"
	case *Function, *Builtin, *BoundMethod:
		return "Function"
	case ForeignFunction:
		return "Function"
	case *Class:
		return "Class"
	case *Instance:
		return obj.Class.Name
	case *Error:
		return obj.Kind
	default:
		return string(obj.Type())
	}
}
