package parser

import (
	"fmt"
	"math/big"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		if !p.inRecursionRecovery {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP006,
				p.curToken,
				"expression too complex: recursion depth limit exceeded",
			))
			p.inRecursionRecovery = true
		}
		p.skipToStatementBoundary()
		p.inRecursionRecovery = false
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		nextExp := infix(leftExp)
		if nextExp == nil {
			return nil
		}
		leftExp = nextExp
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}
	v, ok := p.curToken.Literal.(int64)
	if !ok {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP002, p.curToken,
			fmt.Sprintf("could not parse %q as integer", p.curToken.Lexeme),
		))
		return nil
	}
	lit.Value = v
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}
	v, ok := p.curToken.Literal.(float64)
	if !ok {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP002, p.curToken,
			fmt.Sprintf("could not parse %q as float", p.curToken.Lexeme),
		))
		return nil
	}
	lit.Value = v
	return lit
}

func (p *Parser) parseDecimalLiteral() ast.Expression {
	lit := &ast.DecimalLiteral{Token: p.curToken}
	v, ok := p.curToken.Literal.(*big.Rat)
	if !ok {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP002, p.curToken,
			fmt.Sprintf("could not parse %q as decimal", p.curToken.Lexeme),
		))
		return nil
	}
	lit.Value = v
	lit.Scale = decimalScale(p.curToken.Lexeme)
	return lit
}

// decimalScale counts digits between the point and the D suffix.
func decimalScale(lexeme string) int {
	dot := -1
	for i, r := range lexeme {
		if r == '.' {
			dot = i
		}
	}
	if dot < 0 {
		return 0
	}
	scale := 0
	for _, r := range lexeme[dot+1:] {
		if r < '0' || r > '9' {
			break
		}
		scale++
	}
	return scale
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

// parseInterpolatedString stitches the lexer's chunk/expression token
// sequence back into a single expression.
func (p *Parser) parseInterpolatedString() ast.Expression {
	is := &ast.InterpolatedString{Token: p.curToken}

	for {
		if chunk, _ := p.curToken.Literal.(string); chunk != "" {
			is.Parts = append(is.Parts, &ast.StringLiteral{Token: p.curToken, Value: chunk})
		}
		if p.curTokenIs(token.ISTRING_END) {
			return is
		}

		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		is.Parts = append(is.Parts, expr)

		if p.peekTokenIs(token.ISTRING_MID) || p.peekTokenIs(token.ISTRING_END) {
			p.nextToken()
			continue
		}
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005, p.peekToken,
			"unterminated string interpolation",
		))
		return nil
	}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	p.skipNewlines()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseTernaryExpression(left ast.Expression) ast.Expression {
	expression := &ast.TernaryExpression{Token: p.curToken, Condition: left}

	p.nextToken()
	expression.Then = p.parseExpression(LOWEST)
	if expression.Then == nil {
		return nil
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	// TERNARY - 1 keeps chained ternaries right-associative.
	expression.Else = p.parseExpression(TERNARY - 1)
	if expression.Else == nil {
		return nil
	}
	return expression
}

// parsePipeExpression desugars x |> f(a) into f(x, a) and x |> f into f(x).
func (p *Parser) parsePipeExpression(left ast.Expression) ast.Expression {
	pipeTok := p.curToken
	p.nextToken()
	p.skipNewlines()

	right := p.parseExpression(PIPE)
	if right == nil {
		return nil
	}

	if call, ok := right.(*ast.CallExpression); ok {
		call.Arguments = append([]ast.Expression{left}, call.Arguments...)
		return call
	}
	return &ast.CallExpression{
		Token:     pipeTok,
		Function:  right,
		Arguments: []ast.Expression{left},
	}
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.IndexExpression, *ast.MemberExpression:
	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005, p.curToken, "invalid assignment target",
		))
		return nil
	}

	expression := &ast.AssignExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Target:   left,
	}
	p.nextToken()
	p.skipNewlines()
	// ASSIGN - 1 keeps a = b = c right-associative.
	expression.Value = p.parseExpression(ASSIGN - 1)
	if expression.Value == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	if p.isArrowFunctionAhead() {
		return p.parseArrowFunction()
	}

	p.nextToken()
	p.skipNewlines()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

// isArrowFunctionAhead reports whether the current '(' opens an arrow
// function parameter list: '(' [ident [, ident]* [, ...ident]] ')' '->'.
func (p *Parser) isArrowFunctionAhead() bool {
	i := 0
	next := func() token.Token {
		t := p.peekAheadFrom(i)
		i++
		return t
	}
	for {
		t := next()
		switch t.Type {
		case token.RPAREN:
			return next().Type == token.ARROW
		case token.IDENT, token.COMMA, token.ELLIPSIS:
			// still a plausible parameter list
		default:
			return false
		}
	}
}

// peekAheadFrom indexes tokens relative to curToken: 0 is peekToken.
func (p *Parser) peekAheadFrom(n int) token.Token {
	if n == 0 {
		return p.peekToken
	}
	return p.peekAhead(n)
}

func (p *Parser) parseArrowFunction() ast.Expression {
	fl := &ast.FunctionLiteral{Token: p.curToken}

	var ok bool
	fl.Parameters, fl.Variadic, ok = p.parseFunctionParameters()
	if !ok {
		return nil
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()

	p.funcDepth++
	body := p.parseExpression(LOWEST)
	p.funcDepth--
	if body == nil {
		return nil
	}
	fl.Body = &ast.BlockStatement{
		Token: fl.Token,
		Statements: []ast.Statement{
			&ast.ReturnStatement{Token: body.GetToken(), Value: body},
		},
	}
	return fl
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	fl := &ast.FunctionLiteral{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	var ok bool
	fl.Parameters, fl.Variadic, ok = p.parseFunctionParameters()
	if !ok {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.funcDepth++
	savedLoop := p.loopDepth
	p.loopDepth = 0
	fl.Body = p.parseBlockStatement()
	p.loopDepth = savedLoop
	p.funcDepth--
	if fl.Body == nil {
		return nil
	}
	return fl
}

// parseFunctionParameters parses the list after '('. curToken must be
// LPAREN on entry; curToken is RPAREN on exit. A final ...name parameter
// collects extra arguments into an array.
func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool, bool) {
	var params []*ast.Identifier
	variadic := false

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, false, true
	}

	for {
		p.nextToken()
		p.skipNewlines()

		if p.curTokenIs(token.ELLIPSIS) {
			variadic = true
			if !p.expectPeek(token.IDENT) {
				return nil, false, false
			}
		} else if !p.curTokenIs(token.IDENT) {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP001, p.curToken,
				fmt.Sprintf("expected parameter name, got '%s'", p.curToken.Type),
			))
			return nil, false, false
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})

		if variadic {
			break
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false, false
	}
	return params, variadic, true
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	return call
}

// parseExpressionList parses comma-separated expressions up to end.
// curToken must be the opening bracket on entry; curToken is end on exit.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	var list []ast.Expression

	p.skipPeekNewlines()
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	for {
		p.nextToken()
		p.skipNewlines()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil, false
		}
		list = append(list, exp)

		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.skipPeekNewlines()
		if p.peekTokenIs(end) { // trailing comma
			break
		}
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseSpreadExpression() ast.Expression {
	se := &ast.SpreadExpression{Token: p.curToken}
	p.nextToken()
	se.Value = p.parseExpression(PREFIX)
	if se.Value == nil {
		return nil
	}
	return se
}

func (p *Parser) parseUnderscoreExpression() ast.Expression {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP002, p.curToken,
		"wildcard '_' is only allowed in match patterns",
	))
	return nil
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elements
	return array
}

func (p *Parser) parseHashLiteral() ast.Expression {
	hash := &ast.HashLiteral{Token: p.curToken}

	p.skipPeekNewlines()
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return hash
	}

	for {
		p.nextToken()
		p.skipNewlines()

		var key ast.Expression
		// A bare identifier key is shorthand for its name as a string.
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
			key = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Lexeme}
		} else {
			key = p.parseExpression(LOWEST)
			if key == nil {
				return nil
			}
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		p.skipNewlines()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		hash.Pairs = append(hash.Pairs, ast.HashPair{Key: key, Value: value})

		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RBRACE) { // trailing comma
			break
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return hash
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{
		Token:  p.curToken,
		Object: left,
		Safe:   p.curTokenIs(token.SAFE_DOT),
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Property = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return exp
}

func (p *Parser) parseScopeResolution(left ast.Expression) ast.Expression {
	exp := &ast.ScopeResolution{Token: p.curToken, Left: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return exp
}

func (p *Parser) parseThisExpression() ast.Expression {
	if p.classDepth == 0 {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP004, p.curToken, "'this' is only allowed inside class bodies",
		))
	}
	return &ast.ThisExpression{Token: p.curToken}
}

func (p *Parser) parseSuperExpression() ast.Expression {
	if p.classDepth == 0 {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP004, p.curToken, "'super' is only allowed inside class bodies",
		))
	}
	exp := &ast.SuperExpression{Token: p.curToken}
	if !p.expectPeek(token.DOT) {
		return nil
	}
	// super.new(...) chains the parent constructor.
	if p.peekTokenIs(token.IDENT) || p.peekTokenIs(token.NEW) {
		p.nextToken()
	} else {
		p.peekError(token.IDENT)
		return nil
	}
	exp.Method = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return exp
}

// parseNewExpression parses new Expr(args). Class objects are callable,
// so the keyword reduces to the constructor call it introduces.
func (p *Parser) parseNewExpression() ast.Expression {
	newTok := p.curToken
	p.nextToken()

	exp := p.parseExpression(PREFIX)
	if exp == nil {
		return nil
	}
	if _, ok := exp.(*ast.CallExpression); !ok {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005, newTok,
			"expected a constructor call after 'new'",
		))
		return nil
	}
	return exp
}
