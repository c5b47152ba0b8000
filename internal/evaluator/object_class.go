package evaluator

import (
	"fmt"
	"strings"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

// Method wraps a function with its declaration attributes.
type Method struct {
	Fn         *Function
	Static     bool
	Visibility ast.Visibility
}

// FieldTemplate describes one declared field; defaults are re-evaluated
// per instance so mutable defaults are not shared.
type FieldTemplate struct {
	Name       string
	Default    ast.Expression
	Static     bool
	Visibility ast.Visibility
}

// Class is a first-class value. Calling it constructs an instance.
type Class struct {
	Name        string
	Super       *Class
	Interfaces  []string
	Fields      []*FieldTemplate
	Constructor *Function
	Methods     map[string]*Method
	Statics     map[string]Object // static fields, mutated in place
	Nested      map[string]*Class
	Env         *Environment // captured declaration scope
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string {
	if c.Super != nil {
		return fmt.Sprintf("class %s extends %s", c.Name, c.Super.Name)
	}
	return fmt.Sprintf("class %s", c.Name)
}

// FindMethod walks the inheritance chain from c upward.
func (c *Class) FindMethod(name string) (*Method, *Class) {
	for cls := c; cls != nil; cls = cls.Super {
		if m, ok := cls.Methods[name]; ok {
			return m, cls
		}
	}
	return nil, nil
}

// FindStatic resolves a static field through the chain.
func (c *Class) FindStatic(name string) (Object, *Class, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if v, ok := cls.Statics[name]; ok {
			return v, cls, true
		}
	}
	return nil, nil, false
}

// IsSubclassOf reports whether c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cls := c; cls != nil; cls = cls.Super {
		if cls == other {
			return true
		}
	}
	return false
}

type Instance struct {
	Class  *Class
	Fields map[string]Object
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string {
	var parts []string
	for _, name := range sortedNames(i.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", name, i.Fields[name].Inspect()))
	}
	return fmt.Sprintf("%s{%s}", i.Class.Name, strings.Join(parts, ", "))
}

// BoundMethod pairs a method with its receiver. DefiningClass anchors
// super resolution: a super call searches above it, not above the
// receiver's dynamic class.
type BoundMethod struct {
	Receiver      *Instance
	Method        *Function
	DefiningClass *Class
}

func (bm *BoundMethod) Type() ObjectType { return FUNCTION_OBJ }
func (bm *BoundMethod) Inspect() string {
	return fmt.Sprintf("bound %s.%s", bm.Receiver.Class.Name, bm.Method.Name)
}
