package evaluator

import (
	"fmt"
	"hash/fnv"
	"math/big"
	"sort"
	"strings"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	DECIMAL_OBJ  = "DECIMAL"
	BOOLEAN_OBJ  = "BOOLEAN"
	NULL_OBJ     = "NULL"
	STRING_OBJ   = "STRING"
	ARRAY_OBJ    = "ARRAY"
	HASH_OBJ     = "HASH"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	CLASS_OBJ    = "CLASS"
	INSTANCE_OBJ = "INSTANCE"
	ERROR_OBJ    = "ERROR"
	FUTURE_OBJ   = "FUTURE"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
	BREAK_OBJ        = "BREAK"
	CONTINUE_OBJ     = "CONTINUE"
)

// Object is the runtime representation of every value.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Hashable objects may be used as hash keys.
type Hashable interface {
	HashKey() HashKey
}

type HashKey struct {
	Type  ObjectType
	Value uint64
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return fmt.Sprintf("%d", i.Value) }
func (i *Integer) HashKey() HashKey {
	return HashKey{Type: i.Type(), Value: uint64(i.Value)}
}

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	s := fmt.Sprintf("%g", f.Value)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
func (f *Float) HashKey() HashKey {
	h := fnv.New64a()
	fmt.Fprintf(h, "%g", f.Value)
	return HashKey{Type: f.Type(), Value: h.Sum64()}
}

// Decimal is an exact rational with a display scale, so 1.50D keeps its
// trailing zero through arithmetic that preserves scale.
type Decimal struct {
	Value *big.Rat
	Scale int
}

func (d *Decimal) Type() ObjectType { return DECIMAL_OBJ }
func (d *Decimal) Inspect() string  { return d.Value.FloatString(d.Scale) + "D" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) HashKey() HashKey {
	if b.Value {
		return HashKey{Type: b.Type(), Value: 1}
	}
	return HashKey{Type: b.Type(), Value: 0}
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return fmt.Sprintf("%q", s.Value) }
func (s *String) HashKey() HashKey {
	h := fnv.New64a()
	h.Write([]byte(s.Value))
	return HashKey{Type: s.Type(), Value: h.Sum64()}
}

type Array struct {
	Elements []Object
	Frozen   bool
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, e := range a.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(e.Inspect())
	}
	out.WriteString("]")
	return out.String()
}

type HashPair struct {
	Key   Object
	Value Object
}

// Hash preserves insertion order: Pairs maps hash keys to entries while
// Order remembers first-insertion sequence.
type Hash struct {
	Pairs  map[HashKey]HashPair
	Order  []HashKey
	Frozen bool
}

func NewHash() *Hash {
	return &Hash{Pairs: map[HashKey]HashPair{}}
}

func (h *Hash) Type() ObjectType { return HASH_OBJ }
func (h *Hash) Inspect() string {
	var out strings.Builder
	out.WriteString("{")
	for i, key := range h.Order {
		pair := h.Pairs[key]
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(pair.Key.Inspect())
		out.WriteString(": ")
		out.WriteString(pair.Value.Inspect())
	}
	out.WriteString("}")
	return out.String()
}

// Set inserts or updates a pair, keeping first-insertion order.
func (h *Hash) Set(key Object, value Object) bool {
	hashable, ok := key.(Hashable)
	if !ok {
		return false
	}
	hk := hashable.HashKey()
	if _, exists := h.Pairs[hk]; !exists {
		h.Order = append(h.Order, hk)
	}
	h.Pairs[hk] = HashPair{Key: key, Value: value}
	return true
}

// Get looks a key up. The second result is false when absent or the key
// type is not hashable.
func (h *Hash) Get(key Object) (Object, bool) {
	hashable, ok := key.(Hashable)
	if !ok {
		return nil, false
	}
	pair, exists := h.Pairs[hashable.HashKey()]
	if !exists {
		return nil, false
	}
	return pair.Value, true
}

// Delete removes a key, preserving the order of the remaining entries.
func (h *Hash) Delete(key Object) bool {
	hashable, ok := key.(Hashable)
	if !ok {
		return false
	}
	hk := hashable.HashKey()
	if _, exists := h.Pairs[hk]; !exists {
		return false
	}
	delete(h.Pairs, hk)
	for i, k := range h.Order {
		if k == hk {
			h.Order = append(h.Order[:i], h.Order[i+1:]...)
			break
		}
	}
	return true
}

type Function struct {
	Parameters []*ast.Identifier
	Variadic   bool
	Body       *ast.BlockStatement
	Env        *Environment
	Name       string
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	var params []string
	for _, p := range f.Parameters {
		params = append(params, p.Value)
	}
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("fn %s(%s)", name, strings.Join(params, ", "))
}

// BuiltinFunction is the signature every native function implements.
type BuiltinFunction func(args ...Object) Object

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return fmt.Sprintf("builtin %s", b.Name) }

func sortedNames(m map[string]Object) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
