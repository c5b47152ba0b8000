package ast

import (
	"math/big"

	"github.com/solisoft/soli-lang-sub002/internal/token"
)

// IntegerLiteral represents an integer literal.
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

// FloatLiteral represents a floating point literal.
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

// DecimalLiteral represents a D-suffixed exact decimal literal, e.g. 1.50D.
// Scale is the number of digits after the point in the source text; it
// drives display so 1.50D prints as "1.50", not "1.5" or "3/2".
type DecimalLiteral struct {
	Token token.Token
	Value *big.Rat
	Scale int
}

func (dl *DecimalLiteral) expressionNode()      {}
func (dl *DecimalLiteral) TokenLiteral() string { return dl.Token.Lexeme }
func (dl *DecimalLiteral) GetToken() token.Token {
	if dl == nil {
		return token.Token{}
	}
	return dl.Token
}

// BooleanLiteral represents true/false.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Lexeme }
func (b *BooleanLiteral) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}

// NullLiteral represents the null literal.
type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return n.Token.Lexeme }
func (n *NullLiteral) GetToken() token.Token {
	if n == nil {
		return token.Token{}
	}
	return n.Token
}

// StringLiteral represents a plain string (double-quoted or raw).
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// InterpolatedString represents a string with embedded \(...) expressions.
// Parts alternates StringLiteral chunks with arbitrary expressions.
type InterpolatedString struct {
	Token token.Token
	Parts []Expression
}

func (is *InterpolatedString) expressionNode()      {}
func (is *InterpolatedString) TokenLiteral() string { return is.Token.Lexeme }
func (is *InterpolatedString) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// ArrayLiteral represents [1, 2, 3]. Elements may include SpreadExpression.
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token {
	if al == nil {
		return token.Token{}
	}
	return al.Token
}

// HashPair is one key: value entry of a hash literal.
type HashPair struct {
	Key   Expression
	Value Expression
}

// HashLiteral represents { "a": 1, b: 2 }. Pairs is a slice, not a map,
// because hashes preserve insertion order.
type HashLiteral struct {
	Token token.Token
	Pairs []HashPair
}

func (hl *HashLiteral) expressionNode()      {}
func (hl *HashLiteral) TokenLiteral() string { return hl.Token.Lexeme }
func (hl *HashLiteral) GetToken() token.Token {
	if hl == nil {
		return token.Token{}
	}
	return hl.Token
}

// FunctionLiteral represents fn(a, b) { ... } and the arrow shorthand
// (a, b) -> expr. Name is set when the literal comes from a declaration.
type FunctionLiteral struct {
	Token      token.Token
	Name       string
	Parameters []*Identifier
	Variadic   bool // last parameter declared as rest: fn(a, ...rest)
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

// PrefixExpression represents !x and -x.
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

// InfixExpression represents a binary operation, including && || ??.
type InfixExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// TernaryExpression represents cond ? then : else.
type TernaryExpression struct {
	Token     token.Token
	Condition Expression
	Then      Expression
	Else      Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Lexeme }
func (te *TernaryExpression) GetToken() token.Token {
	if te == nil {
		return token.Token{}
	}
	return te.Token
}

// AssignExpression represents target = value and the compound forms
// (+=, -=, *=, /=). Target is an Identifier, IndexExpression or
// MemberExpression.
type AssignExpression struct {
	Token    token.Token
	Operator string // "=", "+=", "-=", "*=", "/="
	Target   Expression
	Value    Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token {
	if ae == nil {
		return token.Token{}
	}
	return ae.Token
}

// CallExpression represents f(a, b). Arguments may include SpreadExpression.
type CallExpression struct {
	Token     token.Token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// SpreadExpression represents ...expr in call arguments and array literals.
type SpreadExpression struct {
	Token token.Token
	Value Expression
}

func (se *SpreadExpression) expressionNode()      {}
func (se *SpreadExpression) TokenLiteral() string { return se.Token.Lexeme }
func (se *SpreadExpression) GetToken() token.Token {
	if se == nil {
		return token.Token{}
	}
	return se.Token
}

// IndexExpression represents left[index].
type IndexExpression struct {
	Token token.Token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// MemberExpression represents obj.name and the null-safe obj&.name.
type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Property *Identifier
	Safe     bool // &. : yields null when Object evaluates to null
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

// ScopeResolution represents Outer::Inner nested-class access.
type ScopeResolution struct {
	Token token.Token
	Left  Expression
	Name  *Identifier
}

func (sr *ScopeResolution) expressionNode()      {}
func (sr *ScopeResolution) TokenLiteral() string { return sr.Token.Lexeme }
func (sr *ScopeResolution) GetToken() token.Token {
	if sr == nil {
		return token.Token{}
	}
	return sr.Token
}

// ThisExpression represents `this` inside methods.
type ThisExpression struct {
	Token token.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) TokenLiteral() string { return te.Token.Lexeme }
func (te *ThisExpression) GetToken() token.Token {
	if te == nil {
		return token.Token{}
	}
	return te.Token
}

// SuperExpression represents super.method, valid only as a call target
// inside methods. Resolution starts above the method's defining class.
type SuperExpression struct {
	Token  token.Token
	Method *Identifier
}

func (se *SuperExpression) expressionNode()      {}
func (se *SuperExpression) TokenLiteral() string { return se.Token.Lexeme }
func (se *SuperExpression) GetToken() token.Token {
	if se == nil {
		return token.Token{}
	}
	return se.Token
}

// MatchExpression represents match subject { pattern => expr, ... }.
type MatchExpression struct {
	Token   token.Token
	Subject Expression
	Arms    []*MatchArm
}

func (me *MatchExpression) expressionNode()      {}
func (me *MatchExpression) TokenLiteral() string { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

// MatchArm is one pattern [if guard] => body arm.
type MatchArm struct {
	Token   token.Token
	Pattern Pattern
	Guard   Expression // nil when absent
	Body    Expression
}
