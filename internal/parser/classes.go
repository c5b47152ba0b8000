package parser

import (
	"fmt"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

func (p *Parser) parseClassStatement() ast.Statement {
	stmt := &ast.ClassStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.SuperName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	}

	if p.peekTokenIs(token.IMPLEMENTS) {
		p.nextToken()
		for {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			stmt.Interfaces = append(stmt.Interfaces,
				&ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	p.classDepth++
	ok := p.parseClassBody(stmt)
	p.classDepth--
	if !ok {
		return nil
	}
	return stmt
}

// parseClassBody fills in the members between the braces. curToken must be
// LBRACE on entry; curToken is RBRACE on successful exit.
func (p *Parser) parseClassBody(cls *ast.ClassStatement) bool {
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		if !p.parseClassMember(cls) {
			return false
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.RBRACE) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001, p.curToken,
			fmt.Sprintf("expected '}' to close class %s", cls.Name.Value),
		))
		return false
	}
	return true
}

func (p *Parser) parseClassMember(cls *ast.ClassStatement) bool {
	static := false
	visibility := ast.VisPublic

	for {
		switch p.curToken.Type {
		case token.STATIC:
			// static { ... } is an initializer block, not a modifier.
			if p.peekTokenIs(token.LBRACE) {
				if static || visibility != ast.VisPublic {
					p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
						diagnostics.ErrP005, p.curToken,
						"static initializer blocks take no modifiers",
					))
					return false
				}
				p.nextToken()
				block := p.parseBlockStatement()
				if block == nil {
					return false
				}
				cls.StaticBlocks = append(cls.StaticBlocks, block)
				return true
			}
			static = true
			p.nextToken()
			continue
		case token.PRIVATE:
			visibility = ast.VisPrivate
			p.nextToken()
			continue
		case token.PROTECTED:
			visibility = ast.VisProtected
			p.nextToken()
			continue
		}
		break
	}

	switch p.curToken.Type {
	case token.NEW:
		return p.parseConstructor(cls, static)
	case token.FN:
		return p.parseMethod(cls, static, visibility)
	case token.CLASS:
		nested := p.parseClassStatement()
		if nested == nil {
			return false
		}
		cls.NestedClasses = append(cls.NestedClasses, nested.(*ast.ClassStatement))
		return true
	case token.IDENT:
		return p.parseField(cls, static, visibility)
	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP002, p.curToken,
			fmt.Sprintf("unexpected token '%s' in class body", p.curToken.Type),
		))
		return false
	}
}

func (p *Parser) parseConstructor(cls *ast.ClassStatement, static bool) bool {
	if static {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005, p.curToken, "constructors cannot be static",
		))
		return false
	}
	if cls.Constructor != nil {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005, p.curToken,
			fmt.Sprintf("class %s already has a constructor", cls.Name.Value),
		))
		return false
	}

	fl := &ast.FunctionLiteral{Token: p.curToken, Name: "new"}
	if !p.expectPeek(token.LPAREN) {
		return false
	}
	var ok bool
	fl.Parameters, fl.Variadic, ok = p.parseFunctionParameters()
	if !ok {
		return false
	}
	if !p.expectPeek(token.LBRACE) {
		return false
	}
	p.funcDepth++
	fl.Body = p.parseBlockStatement()
	p.funcDepth--
	if fl.Body == nil {
		return false
	}
	cls.Constructor = fl
	return true
}

func (p *Parser) parseMethod(cls *ast.ClassStatement, static bool, visibility ast.Visibility) bool {
	decl := &ast.MethodDecl{Token: p.curToken, Static: static, Visibility: visibility}

	if !p.expectPeek(token.IDENT) {
		return false
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	fl := &ast.FunctionLiteral{Token: decl.Token, Name: decl.Name.Value}
	if !p.expectPeek(token.LPAREN) {
		return false
	}
	var ok bool
	fl.Parameters, fl.Variadic, ok = p.parseFunctionParameters()
	if !ok {
		return false
	}
	if !p.expectPeek(token.LBRACE) {
		return false
	}
	p.funcDepth++
	fl.Body = p.parseBlockStatement()
	p.funcDepth--
	if fl.Body == nil {
		return false
	}
	decl.Function = fl
	cls.Methods = append(cls.Methods, decl)
	return true
}

// parseField parses name[: Type][= default] terminated by ';' or newline.
func (p *Parser) parseField(cls *ast.ClassStatement, static bool, visibility ast.Visibility) bool {
	decl := &ast.FieldDecl{
		Token:      p.curToken,
		Name:       &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		Static:     static,
		Visibility: visibility,
	}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return false
		}
		decl.TypeName = p.curToken.Lexeme
	}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		decl.Default = p.parseExpression(LOWEST)
		if decl.Default == nil {
			return false
		}
	}

	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	} else if !p.peekTokenIs(token.RBRACE) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP003, p.peekToken,
			fmt.Sprintf("expected end of field declaration, got '%s'", p.peekToken.Type),
		))
		return false
	}

	cls.Fields = append(cls.Fields, decl)
	return true
}
