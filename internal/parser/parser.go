package parser

import (
	"fmt"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/pipeline"
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

// Operator precedence levels, lowest binds weakest.
const (
	LOWEST = iota
	ASSIGN
	TERNARY
	COALESCE
	OR
	AND
	EQUALITY
	RELATIONAL
	PIPE
	SUM
	PRODUCT
	PREFIX
	POSTFIX
)

// MaxRecursionDepth caps expression nesting to keep pathological input
// from blowing the Go stack.
const MaxRecursionDepth = 512

var precedences = map[token.TokenType]int{
	token.ASSIGN:          ASSIGN,
	token.PLUS_ASSIGN:     ASSIGN,
	token.MINUS_ASSIGN:    ASSIGN,
	token.ASTERISK_ASSIGN: ASSIGN,
	token.SLASH_ASSIGN:    ASSIGN,
	token.QUESTION:        TERNARY,
	token.NULL_COALESCE:   COALESCE,
	token.OR:              OR,
	token.AND:             AND,
	token.EQ:              EQUALITY,
	token.NOT_EQ:          EQUALITY,
	token.LT:              RELATIONAL,
	token.GT:              RELATIONAL,
	token.LTE:             RELATIONAL,
	token.GTE:             RELATIONAL,
	token.PIPE_GT:         PIPE,
	token.PLUS:            SUM,
	token.MINUS:           SUM,
	token.ASTERISK:        PRODUCT,
	token.SLASH:           PRODUCT,
	token.PERCENT:         PRODUCT,
	token.LPAREN:          POSTFIX,
	token.LBRACKET:        POSTFIX,
	token.DOT:             POSTFIX,
	token.SAFE_DOT:        POSTFIX,
	token.COLON_COLON:     POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	ctx *pipeline.Context

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth               int
	inRecursionRecovery bool
	classDepth          int
	funcDepth           int
	loopDepth           int
}

func New(tokens []token.Token, ctx *pipeline.Context) *Parser {
	p := &Parser{tokens: tokens, ctx: ctx}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{}
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.DECIMAL, p.parseDecimalLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.RAW_STRING, p.parseStringLiteral)
	p.registerPrefix(token.ISTRING_START, p.parseInterpolatedString)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NULL, p.parseNullLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseHashLiteral)
	p.registerPrefix(token.FN, p.parseFunctionLiteral)
	p.registerPrefix(token.THIS, p.parseThisExpression)
	p.registerPrefix(token.SUPER, p.parseSuperExpression)
	p.registerPrefix(token.NEW, p.parseNewExpression)
	p.registerPrefix(token.MATCH, p.parseMatchExpression)
	p.registerPrefix(token.ELLIPSIS, p.parseSpreadExpression)
	p.registerPrefix(token.UNDERSCORE, p.parseUnderscoreExpression)

	p.infixParseFns = map[token.TokenType]infixParseFn{}
	for _, t := range []token.TokenType{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.EQ, token.NOT_EQ, token.LT, token.GT, token.LTE, token.GTE,
		token.AND, token.OR, token.NULL_COALESCE,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(token.QUESTION, p.parseTernaryExpression)
	p.registerInfix(token.PIPE_GT, p.parsePipeExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.DOT, p.parseMemberExpression)
	p.registerInfix(token.SAFE_DOT, p.parseMemberExpression)
	p.registerInfix(token.COLON_COLON, p.parseScopeResolution)
	p.registerInfix(token.ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.PLUS_ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.MINUS_ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.ASTERISK_ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.SLASH_ASSIGN, p.parseAssignExpression)

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[t] = fn
}

func (p *Parser) registerInfix(t token.TokenType, fn infixParseFn) {
	p.infixParseFns[t] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF, Line: p.curToken.Line}
	}
}

// peekAhead returns the nth token after peekToken without consuming.
func (p *Parser) peekAhead(n int) token.Token {
	idx := p.pos + n - 1
	if idx < len(p.tokens) {
		return p.tokens[idx]
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP001,
		p.peekToken,
		fmt.Sprintf("expected '%s', got '%s'", t, p.peekToken.Type),
	))
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP002,
		p.curToken,
		fmt.Sprintf("unexpected token '%s'", t),
	))
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// skipToStatementBoundary advances past the rest of the current statement
// so one syntax error does not cascade into dozens.
func (p *Parser) skipToStatementBoundary() {
	for !p.curTokenIs(token.NEWLINE) &&
		!p.curTokenIs(token.SEMICOLON) &&
		!p.curTokenIs(token.RBRACE) &&
		!p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
			p.endOfStatement()
		} else {
			p.skipToStatementBoundary()
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET, token.CONST:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.IF, token.UNLESS:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForInStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.CLASS:
		return p.parseClassStatement()
	case token.FN:
		// A named fn at statement position is a declaration; an anonymous
		// fn falls through to the expression path.
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// endOfStatement checks that the statement is properly terminated and
// reports a diagnostic when it is not. The terminator itself is left for
// the main loop to consume.
func (p *Parser) endOfStatement() {
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.SEMICOLON) ||
		p.peekTokenIs(token.EOF) || p.peekTokenIs(token.RBRACE) {
		return
	}
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP003,
		p.peekToken,
		fmt.Sprintf("expected end of statement, got '%s'", p.peekToken.Type),
	))
	p.skipToStatementBoundary()
}
