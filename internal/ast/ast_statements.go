package ast

import (
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

// LetStatement represents let x = expr and const x = expr.
type LetStatement struct {
	Token token.Token
	Const bool
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token {
	if ls == nil {
		return token.Token{}
	}
	return ls.Token
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// BlockStatement represents { stmt* }.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// IfStatement represents if/else chains and unless. Negated is set for
// unless, which runs Consequence when the condition is falsy.
type IfStatement struct {
	Token       token.Token
	Negated     bool
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *BlockStatement or chained *IfStatement, nil when absent
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// WhileStatement represents while cond { ... }.
type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

// ForInStatement represents for v in iterable and for k, v in iterable.
// Key is nil in the single-variable form.
type ForInStatement struct {
	Token    token.Token
	Key      *Identifier
	Value    *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForInStatement) statementNode()       {}
func (fs *ForInStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *ForInStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// FunctionStatement represents a named top-level or nested fn declaration.
type FunctionStatement struct {
	Token    token.Token
	Name     *Identifier
	Function *FunctionLiteral
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// Visibility of a class member.
type Visibility int

const (
	VisPublic Visibility = iota
	VisPrivate
	VisProtected
)

// FieldDecl is one field declaration in a class body:
// name: Type = default;
type FieldDecl struct {
	Token      token.Token
	Name       *Identifier
	TypeName   string // annotation text, informational only
	Default    Expression
	Static     bool
	Visibility Visibility
}

// MethodDecl is one method declaration in a class body.
type MethodDecl struct {
	Token      token.Token
	Name       *Identifier
	Function   *FunctionLiteral
	Static     bool
	Visibility Visibility
}

// ClassStatement represents a class declaration with optional superclass,
// interface list, fields, constructor, methods, static initializer blocks
// and nested classes.
type ClassStatement struct {
	Token         token.Token
	Name          *Identifier
	SuperName     *Identifier // nil when no extends clause
	Interfaces    []*Identifier
	Fields        []*FieldDecl
	Constructor   *FunctionLiteral // nil when the class has no new(...)
	Methods       []*MethodDecl
	StaticBlocks  []*BlockStatement
	NestedClasses []*ClassStatement
}

func (cs *ClassStatement) statementNode()       {}
func (cs *ClassStatement) TokenLiteral() string { return cs.Token.Lexeme }
func (cs *ClassStatement) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}

// CatchClause is the catch (name) { ... } part of a try statement.
// Pattern is nil for a bare catch-all binding; when set, the clause only
// handles errors the pattern matches.
type CatchClause struct {
	Token   token.Token
	Param   *Identifier
	Pattern Pattern
	Body    *BlockStatement
}

// TryStatement represents try { } catch (e) { } finally { }.
// At least one of Catches and Finally is present.
type TryStatement struct {
	Token   token.Token
	Body    *BlockStatement
	Catches []*CatchClause
	Finally *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Lexeme }
func (ts *TryStatement) GetToken() token.Token {
	if ts == nil {
		return token.Token{}
	}
	return ts.Token
}

// ThrowStatement represents throw expr.
type ThrowStatement struct {
	Token token.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Lexeme }
func (ts *ThrowStatement) GetToken() token.Token {
	if ts == nil {
		return token.Token{}
	}
	return ts.Token
}

// ReturnStatement represents return [expr].
type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// BreakStatement represents break inside loops.
type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// ContinueStatement represents continue inside loops.
type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}
