package ast

import (
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

// Pattern is the interface of match-arm patterns.
type Pattern interface {
	patternNode()
	GetToken() token.Token
}

// LiteralPattern matches when the subject equals a literal value.
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (lp *LiteralPattern) patternNode() {}
func (lp *LiteralPattern) GetToken() token.Token {
	if lp == nil {
		return token.Token{}
	}
	return lp.Token
}

// IdentifierPattern binds the subject to a name. With TypeName set
// (name: Type) it only matches subjects of that runtime type.
type IdentifierPattern struct {
	Token    token.Token
	Name     *Identifier
	TypeName string // "" for an untyped binding
}

func (ip *IdentifierPattern) patternNode() {}
func (ip *IdentifierPattern) GetToken() token.Token {
	if ip == nil {
		return token.Token{}
	}
	return ip.Token
}

// ArrayPattern destructures an array: [a, b] or [head, ...tail].
// Rest is nil when no rest element is present; then the lengths must
// match exactly.
type ArrayPattern struct {
	Token    token.Token
	Elements []Pattern
	Rest     *Identifier
}

func (ap *ArrayPattern) patternNode() {}
func (ap *ArrayPattern) GetToken() token.Token {
	if ap == nil {
		return token.Token{}
	}
	return ap.Token
}

// HashPatternEntry is one key: pattern pair of a hash pattern.
type HashPatternEntry struct {
	Key     Expression // StringLiteral or Identifier shorthand key
	Pattern Pattern
}

// HashPattern destructures a hash: {name: n, "age": a}. All listed keys
// must be present; extra keys in the subject are ignored.
type HashPattern struct {
	Token   token.Token
	Entries []HashPatternEntry
}

func (hp *HashPattern) patternNode() {}
func (hp *HashPattern) GetToken() token.Token {
	if hp == nil {
		return token.Token{}
	}
	return hp.Token
}

// WildcardPattern is _, which matches anything and binds nothing.
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode() {}
func (wp *WildcardPattern) GetToken() token.Token {
	if wp == nil {
		return token.Token{}
	}
	return wp.Token
}

// Destructuring reports whether p (recursively) contains an array or hash
// pattern. Compilers that cannot express destructuring binds directly use
// this to route the surrounding code to the interpreting backend.
func Destructuring(p Pattern) bool {
	switch p.(type) {
	case *ArrayPattern, *HashPattern:
		return true
	default:
		return false
	}
}

// ContainsDestructuringMatch walks a subtree looking for a match expression
// with at least one destructuring arm.
func ContainsDestructuringMatch(node Node) bool {
	found := false
	Walk(node, func(n Node) bool {
		if found {
			return false
		}
		if me, ok := n.(*MatchExpression); ok {
			for _, arm := range me.Arms {
				if Destructuring(arm.Pattern) {
					found = true
					return false
				}
			}
		}
		return true
	})
	return found
}
