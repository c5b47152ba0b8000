package evaluator

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

// Reserved environment keys used inside method bodies. thisKey holds the
// receiver; classKey holds the class whose body lexically contains the
// running method, which anchors super resolution.
const (
	thisKey  = "this"
	classKey = "__class__"
)

func (e *Evaluator) evalClassStatement(node *ast.ClassStatement, env *Environment) Object {
	cls, errObj := e.buildClass(node, env)
	if errObj != nil {
		return errObj
	}
	env.Set(cls.Name, cls)
	return NULL
}

func (e *Evaluator) buildClass(node *ast.ClassStatement, env *Environment) (*Class, Object) {
	cls := &Class{
		Name:    node.Name.Value,
		Methods: map[string]*Method{},
		Statics: map[string]Object{},
		Nested:  map[string]*Class{},
		Env:     env,
	}

	if node.SuperName != nil {
		parent, ok := env.Get(node.SuperName.Value)
		if !ok {
			return nil, NewErrorAt(NameErrorKind, node.SuperName,
				"undefined name '%s'", node.SuperName.Value)
		}
		superClass, ok := Force(parent).(*Class)
		if !ok {
			return nil, NewErrorAt(TypeErrorKind, node.SuperName,
				"superclass must be a class, got %s", TypeName(parent))
		}
		cls.Super = superClass
	}

	for _, iface := range node.Interfaces {
		cls.Interfaces = append(cls.Interfaces, iface.Value)
	}

	for _, field := range node.Fields {
		tmpl := &FieldTemplate{
			Name:       field.Name.Value,
			Default:    field.Default,
			Static:     field.Static,
			Visibility: field.Visibility,
		}
		if field.Static {
			value := Object(NULL)
			if field.Default != nil {
				value = e.Eval(field.Default, env)
				if isError(value) {
					return nil, value
				}
			}
			cls.Statics[tmpl.Name] = value
			continue
		}
		cls.Fields = append(cls.Fields, tmpl)
	}

	if node.Constructor != nil {
		cls.Constructor = e.makeFunction(node.Constructor, env)
	}
	for _, decl := range node.Methods {
		cls.Methods[decl.Name.Value] = &Method{
			Fn:         e.makeFunction(decl.Function, env),
			Static:     decl.Static,
			Visibility: decl.Visibility,
		}
	}

	for _, nested := range node.NestedClasses {
		inner, errObj := e.buildClass(nested, env)
		if errObj != nil {
			return nil, errObj
		}
		cls.Nested[inner.Name] = inner
	}

	// Static blocks run once, after the class is fully assembled, with
	// this bound to the class object.
	for _, block := range node.StaticBlocks {
		blockEnv := NewEnclosedEnvironment(env)
		blockEnv.Set(thisKey, cls)
		blockEnv.Set(classKey, cls)
		blockEnv.Set(cls.Name, cls)
		result := e.evalBlockStatement(block, blockEnv)
		if isError(result) {
			return nil, result
		}
	}

	return cls, nil
}

// instantiate builds an instance: fields from the whole chain are
// initialized root-first, then the nearest constructor runs.
func (e *Evaluator) instantiate(cls *Class, args []Object) Object {
	inst := &Instance{Class: cls, Fields: map[string]Object{}}

	var chain []*Class
	for c := cls; c != nil; c = c.Super {
		chain = append([]*Class{c}, chain...)
	}
	for _, c := range chain {
		for _, tmpl := range c.Fields {
			value := Object(NULL)
			if tmpl.Default != nil {
				value = e.Eval(tmpl.Default, c.Env)
				if isError(value) {
					return value
				}
			}
			inst.Fields[tmpl.Name] = value
		}
	}

	ctor, owner := findConstructor(cls)
	if ctor == nil {
		if len(args) != 0 {
			return newTypeError("class %s takes no constructor arguments, got %d",
				cls.Name, len(args))
		}
		return inst
	}

	result := e.applyFunction(ctor, map[string]Object{
		thisKey:  inst,
		classKey: owner,
	}, args)
	if isError(result) {
		return result
	}
	return inst
}

func findConstructor(cls *Class) (*Function, *Class) {
	for c := cls; c != nil; c = c.Super {
		if c.Constructor != nil {
			return c.Constructor, c
		}
	}
	return nil, nil
}

func (e *Evaluator) applyBoundMethod(bm *BoundMethod, args []Object) Object {
	return e.applyFunction(bm.Method, map[string]Object{
		thisKey:  bm.Receiver,
		classKey: bm.DefiningClass,
	}, args)
}

func (e *Evaluator) evalThisExpression(node *ast.ThisExpression, env *Environment) Object {
	if this, ok := env.Get(thisKey); ok {
		return this
	}
	return NewErrorAt(RuntimeErrorKind, node, "'this' is not bound here")
}

func (e *Evaluator) evalSuperExpression(node *ast.SuperExpression, env *Environment) Object {
	thisObj, ok := env.Get(thisKey)
	if !ok {
		return NewErrorAt(RuntimeErrorKind, node, "'super' is not bound here")
	}
	inst, ok := thisObj.(*Instance)
	if !ok {
		return NewErrorAt(RuntimeErrorKind, node, "'super' requires an instance receiver")
	}
	defObj, ok := env.Get(classKey)
	if !ok {
		return NewErrorAt(RuntimeErrorKind, node, "'super' is not bound here")
	}
	defClass := defObj.(*Class)
	if defClass.Super == nil {
		return NewErrorAt(TypeErrorKind, node,
			"class %s has no superclass", defClass.Name)
	}

	// super.new chains the nearest ancestor constructor.
	if node.Method.Value == "new" {
		ctor, owner := findConstructor(defClass.Super)
		if ctor == nil {
			return NewErrorAt(TypeErrorKind, node,
				"no ancestor of %s defines a constructor", defClass.Name)
		}
		return &BoundMethod{Receiver: inst, Method: ctor, DefiningClass: owner}
	}

	method, owner := defClass.Super.FindMethod(node.Method.Value)
	if method == nil {
		return NewErrorAt(NameErrorKind, node,
			"undefined method '%s' on superclass of %s", node.Method.Value, defClass.Name)
	}
	return &BoundMethod{Receiver: inst, Method: method.Fn, DefiningClass: owner}
}

func (e *Evaluator) evalScopeResolution(node *ast.ScopeResolution, env *Environment) Object {
	left := Force(e.Eval(node.Left, env))
	if isError(left) {
		return left
	}
	cls, ok := left.(*Class)
	if !ok {
		return NewErrorAt(TypeErrorKind, node,
			"'::' requires a class on the left, got %s", TypeName(left))
	}
	for c := cls; c != nil; c = c.Super {
		if inner, found := c.Nested[node.Name.Value]; found {
			return inner
		}
	}
	return NewErrorAt(NameErrorKind, node,
		"class %s has no nested class '%s'", cls.Name, node.Name.Value)
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, env *Environment) Object {
	object := Force(e.Eval(node.Object, env))
	if isError(object) {
		return object
	}

	if node.Safe && object == NULL {
		return NULL
	}

	name := node.Property.Value
	switch recv := object.(type) {
	case *Instance:
		return e.instanceMember(recv, name, node, env)
	case *Class:
		return e.classMember(recv, name, node, env)
	case *Error:
		return errorMember(recv, name, node)
	default:
		return NewErrorAt(TypeErrorKind, node,
			"type %s has no member '%s'", TypeName(object), name)
	}
}

func (e *Evaluator) instanceMember(inst *Instance, name string, node *ast.MemberExpression, env *Environment) Object {
	if value, ok := inst.Fields[name]; ok {
		if errObj := e.checkFieldAccess(inst.Class, name, node, env); errObj != nil {
			return errObj
		}
		return value
	}

	if method, owner := inst.Class.FindMethod(name); method != nil {
		if errObj := e.checkAccess(method.Visibility, owner, node, env); errObj != nil {
			return errObj
		}
		if method.Static {
			return staticMethodValue(method, owner)
		}
		return &BoundMethod{Receiver: inst, Method: method.Fn, DefiningClass: owner}
	}

	if value, _, ok := inst.Class.FindStatic(name); ok {
		return value
	}

	return NewErrorAt(NameErrorKind, node,
		"%s has no member '%s'", inst.Class.Name, name)
}

func (e *Evaluator) classMember(cls *Class, name string, node *ast.MemberExpression, env *Environment) Object {
	if value, _, ok := cls.FindStatic(name); ok {
		return value
	}
	if method, owner := cls.FindMethod(name); method != nil && method.Static {
		return staticMethodValue(method, owner)
	}
	return NewErrorAt(NameErrorKind, node,
		"class %s has no static member '%s'", cls.Name, name)
}

// staticMethodValue rebinds a static method so this refers to its class.
func staticMethodValue(method *Method, owner *Class) Object {
	env := NewEnclosedEnvironment(method.Fn.Env)
	env.Set(thisKey, owner)
	env.Set(classKey, owner)
	return &Function{
		Parameters: method.Fn.Parameters,
		Variadic:   method.Fn.Variadic,
		Body:       method.Fn.Body,
		Env:        env,
		Name:       method.Fn.Name,
	}
}

func errorMember(err *Error, name string, node ast.Node) Object {
	switch name {
	case "kind":
		return &String{Value: err.Kind}
	case "message":
		return &String{Value: err.Message}
	case "line":
		return &Integer{Value: int64(err.Line)}
	case "payload":
		if err.Payload == nil {
			return NULL
		}
		return err.Payload
	default:
		return NewErrorAt(NameErrorKind, node, "error values have no member '%s'", name)
	}
}

// checkFieldAccess enforces field visibility declared anywhere in the
// receiver's chain.
func (e *Evaluator) checkFieldAccess(cls *Class, name string, node *ast.MemberExpression, env *Environment) Object {
	for c := cls; c != nil; c = c.Super {
		for _, tmpl := range c.Fields {
			if tmpl.Name == name {
				return e.checkAccess(tmpl.Visibility, c, node, env)
			}
		}
	}
	return nil
}

// checkAccess enforces private/protected member rules based on the class
// context the current code runs in.
func (e *Evaluator) checkAccess(vis ast.Visibility, owner *Class, node *ast.MemberExpression, env *Environment) Object {
	if vis == ast.VisPublic {
		return nil
	}

	var current *Class
	if obj, ok := env.Get(classKey); ok {
		current, _ = obj.(*Class)
	}

	switch vis {
	case ast.VisPrivate:
		if current == owner {
			return nil
		}
		return NewErrorAt(TypeErrorKind, node,
			"member '%s' of %s is private", node.Property.Value, owner.Name)
	case ast.VisProtected:
		if current != nil && current.IsSubclassOf(owner) {
			return nil
		}
		return NewErrorAt(TypeErrorKind, node,
			"member '%s' of %s is protected", node.Property.Value, owner.Name)
	}
	return nil
}

func (e *Evaluator) setMember(object Object, node *ast.MemberExpression, value Object, env *Environment) Object {
	name := node.Property.Value
	switch recv := object.(type) {
	case *Instance:
		if _, ok := recv.Fields[name]; ok {
			if errObj := e.checkFieldAccess(recv.Class, name, node, env); errObj != nil {
				return errObj
			}
		}
		recv.Fields[name] = value
		return value
	case *Class:
		if _, owner, ok := recv.FindStatic(name); ok {
			owner.Statics[name] = value
			return value
		}
		recv.Statics[name] = value
		return value
	default:
		return NewErrorAt(TypeErrorKind, node,
			"cannot assign member '%s' on %s", name, TypeName(object))
	}
}
