package parser

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{
		Token: p.curToken,
		Const: p.curTokenIs(token.CONST),
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	if fl, ok := stmt.Value.(*ast.FunctionLiteral); ok && fl.Name == "" {
		fl.Name = stmt.Name.Value
	}

	return p.wrapPostfix(stmt)
}

func (p *Parser) parseReturnStatement() ast.Statement {
	if p.funcDepth == 0 {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP004,
			p.curToken,
			"return is only allowed inside function bodies",
		))
	}
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.SEMICOLON) ||
		p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) ||
		p.peekTokenIs(token.IF) || p.peekTokenIs(token.UNLESS) {
		return p.wrapPostfix(stmt)
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return p.wrapPostfix(stmt)
}

func (p *Parser) parseBreakStatement() ast.Statement {
	if p.loopDepth == 0 {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP004, p.curToken, "break is only allowed inside loops",
		))
	}
	return p.wrapPostfix(&ast.BreakStatement{Token: p.curToken})
}

func (p *Parser) parseContinueStatement() ast.Statement {
	if p.loopDepth == 0 {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP004, p.curToken, "continue is only allowed inside loops",
		))
	}
	return p.wrapPostfix(&ast.ContinueStatement{Token: p.curToken})
}

func (p *Parser) parseThrowStatement() ast.Statement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return p.wrapPostfix(stmt)
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{
		Token:   p.curToken,
		Negated: p.curTokenIs(token.UNLESS),
	}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()
	if stmt.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken() // consume 'else'
		if p.peekTokenIs(token.IF) || p.peekTokenIs(token.UNLESS) {
			p.nextToken()
			alt := p.parseIfStatement()
			if alt == nil {
				return nil
			}
			stmt.Alternative = alt
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			stmt.Alternative = p.parseBlockStatement()
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.loopDepth++
	stmt.Body = p.parseBlockStatement()
	p.loopDepth--
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseForInStatement() ast.Statement {
	stmt := &ast.ForInStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	first := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Key = first
		stmt.Value = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	} else {
		stmt.Value = first
	}

	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.loopDepth++
	stmt.Body = p.parseBlockStatement()
	p.loopDepth--
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseTryStatement() ast.Statement {
	stmt := &ast.TryStatement{Token: p.curToken}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}

	for p.peekTokenIs(token.CATCH) {
		p.nextToken()
		clause := p.parseCatchClause()
		if clause == nil {
			return nil
		}
		stmt.Catches = append(stmt.Catches, clause)
	}

	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Finally = p.parseBlockStatement()
		if stmt.Finally == nil {
			return nil
		}
	}

	if len(stmt.Catches) == 0 && stmt.Finally == nil {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005,
			stmt.Token,
			"try requires at least one catch or finally clause",
		))
		return nil
	}
	return stmt
}

// parseCatchClause parses catch (e) { ... } with an optional type filter:
// catch (e: TypeError) { ... }.
func (p *Parser) parseCatchClause() *ast.CatchClause {
	clause := &ast.CatchClause{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	clause.Param = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		clause.Pattern = &ast.IdentifierPattern{
			Token:    clause.Param.Token,
			Name:     clause.Param,
			TypeName: p.curToken.Lexeme,
		}
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	clause.Body = p.parseBlockStatement()
	if clause.Body == nil {
		return nil
	}
	return clause
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	stmt := &ast.FunctionStatement{Token: p.curToken}
	fnTok := p.curToken

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	fl := &ast.FunctionLiteral{Token: fnTok, Name: stmt.Name.Value}
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
	stmt.Function = fl
	return stmt
}

// parseBlockStatement parses { stmt* }. curToken must be LBRACE on entry;
// curToken is RBRACE on exit.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}

	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
			p.endOfStatement()
		} else {
			p.skipToStatementBoundary()
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.RBRACE) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001, p.curToken, "expected '}' to close block",
		))
		return nil
	}
	return block
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return p.wrapPostfix(stmt)
}

// wrapPostfix applies the trailing if/unless modifier. The modifier only
// counts when the keyword sits on the same source line as the statement's
// last token; an if on the next line starts a new statement.
func (p *Parser) wrapPostfix(stmt ast.Statement) ast.Statement {
	if !p.peekTokenIs(token.IF) && !p.peekTokenIs(token.UNLESS) {
		return stmt
	}
	if p.peekToken.Line != p.curToken.Line {
		return stmt
	}
	p.nextToken()
	wrapped := &ast.IfStatement{
		Token:   p.curToken,
		Negated: p.curTokenIs(token.UNLESS),
	}
	p.nextToken()
	wrapped.Condition = p.parseExpression(LOWEST)
	if wrapped.Condition == nil {
		return nil
	}
	wrapped.Consequence = &ast.BlockStatement{
		Token:      stmt.GetToken(),
		Statements: []ast.Statement{stmt},
	}
	return wrapped
}
