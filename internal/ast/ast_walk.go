package ast

// Walk calls fn for node and, when fn returns true, recurses into its
// children. Nil children are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *LetStatement:
		Walk(n.Value, fn)
	case *ExpressionStatement:
		Walk(n.Expression, fn)
	case *BlockStatement:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *IfStatement:
		Walk(n.Condition, fn)
		Walk(n.Consequence, fn)
		if n.Alternative != nil {
			Walk(n.Alternative, fn)
		}
	case *WhileStatement:
		Walk(n.Condition, fn)
		Walk(n.Body, fn)
	case *ForInStatement:
		Walk(n.Iterable, fn)
		Walk(n.Body, fn)
	case *FunctionStatement:
		Walk(n.Function, fn)
	case *ClassStatement:
		for _, f := range n.Fields {
			if f.Default != nil {
				Walk(f.Default, fn)
			}
		}
		if n.Constructor != nil {
			Walk(n.Constructor, fn)
		}
		for _, m := range n.Methods {
			Walk(m.Function, fn)
		}
		for _, b := range n.StaticBlocks {
			Walk(b, fn)
		}
		for _, nc := range n.NestedClasses {
			Walk(nc, fn)
		}
	case *TryStatement:
		Walk(n.Body, fn)
		for _, c := range n.Catches {
			Walk(c.Body, fn)
		}
		if n.Finally != nil {
			Walk(n.Finally, fn)
		}
	case *ThrowStatement:
		Walk(n.Value, fn)
	case *ReturnStatement:
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	case *InterpolatedString:
		for _, p := range n.Parts {
			Walk(p, fn)
		}
	case *ArrayLiteral:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	case *HashLiteral:
		for _, pair := range n.Pairs {
			Walk(pair.Key, fn)
			Walk(pair.Value, fn)
		}
	case *FunctionLiteral:
		Walk(n.Body, fn)
	case *PrefixExpression:
		Walk(n.Right, fn)
	case *InfixExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *TernaryExpression:
		Walk(n.Condition, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)
	case *AssignExpression:
		Walk(n.Target, fn)
		Walk(n.Value, fn)
	case *CallExpression:
		Walk(n.Function, fn)
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *SpreadExpression:
		Walk(n.Value, fn)
	case *IndexExpression:
		Walk(n.Left, fn)
		Walk(n.Index, fn)
	case *MemberExpression:
		Walk(n.Object, fn)
	case *ScopeResolution:
		Walk(n.Left, fn)
	case *MatchExpression:
		Walk(n.Subject, fn)
		for _, arm := range n.Arms {
			if arm.Guard != nil {
				Walk(arm.Guard, fn)
			}
			Walk(arm.Body, fn)
		}
	}
}
