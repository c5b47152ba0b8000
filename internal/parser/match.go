package parser

import (
	"fmt"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

// parseMatchExpression parses
//
//	match subject {
//	    pattern [if guard] => body
//	    ...
//	}
//
// Arms are separated by newlines or commas.
func (p *Parser) parseMatchExpression() ast.Expression {
	me := &ast.MatchExpression{Token: p.curToken}

	p.nextToken()
	me.Subject = p.parseExpression(LOWEST)
	if me.Subject == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		arm := p.parseMatchArm()
		if arm == nil {
			return nil
		}
		me.Arms = append(me.Arms, arm)

		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
		p.skipNewlines()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001, p.curToken, "expected '}' to close match expression",
		))
		return nil
	}
	if len(me.Arms) == 0 {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005, me.Token, "match expression requires at least one arm",
		))
		return nil
	}
	return me
}

func (p *Parser) parseMatchArm() *ast.MatchArm {
	arm := &ast.MatchArm{Token: p.curToken}

	arm.Pattern = p.parsePattern()
	if arm.Pattern == nil {
		return nil
	}

	if p.peekTokenIs(token.IF) {
		p.nextToken() // consume 'if'
		p.nextToken()
		arm.Guard = p.parseExpression(LOWEST)
		if arm.Guard == nil {
			return nil
		}
	}

	if !p.expectPeek(token.FAT_ARROW) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()
	arm.Body = p.parseExpression(LOWEST)
	if arm.Body == nil {
		return nil
	}
	return arm
}

// parsePattern parses one match pattern with curToken at its first token.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Type {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Token: p.curToken}

	case token.INT, token.FLOAT, token.DECIMAL, token.STRING, token.RAW_STRING,
		token.TRUE, token.FALSE, token.NULL:
		return p.parseLiteralPattern()

	case token.MINUS:
		return p.parseLiteralPattern()

	case token.IDENT:
		pat := &ast.IdentifierPattern{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			pat.TypeName = p.curToken.Lexeme
		}
		return pat

	case token.LBRACKET:
		return p.parseArrayPattern()

	case token.LBRACE:
		return p.parseHashPattern()

	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP002, p.curToken,
			fmt.Sprintf("unexpected token '%s' in pattern", p.curToken.Type),
		))
		return nil
	}
}

func (p *Parser) parseLiteralPattern() ast.Pattern {
	tok := p.curToken
	var value ast.Expression
	switch p.curToken.Type {
	case token.INT:
		value = p.parseIntegerLiteral()
	case token.FLOAT:
		value = p.parseFloatLiteral()
	case token.DECIMAL:
		value = p.parseDecimalLiteral()
	case token.STRING, token.RAW_STRING:
		value = p.parseStringLiteral()
	case token.TRUE, token.FALSE:
		value = p.parseBooleanLiteral()
	case token.NULL:
		value = p.parseNullLiteral()
	case token.MINUS:
		value = p.parsePrefixExpression()
	}
	if value == nil {
		return nil
	}
	return &ast.LiteralPattern{Token: tok, Value: value}
}

// parseArrayPattern parses [p1, p2] and [head, ...tail].
func (p *Parser) parseArrayPattern() ast.Pattern {
	pat := &ast.ArrayPattern{Token: p.curToken}

	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return pat
	}

	for {
		p.nextToken()
		p.skipNewlines()

		if p.curTokenIs(token.ELLIPSIS) {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			pat.Rest = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
			break
		}

		elem := p.parsePattern()
		if elem == nil {
			return nil
		}
		pat.Elements = append(pat.Elements, elem)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return pat
}

// parseHashPattern parses {key: pat, "lit": pat, shorthand}. A bare
// identifier entry binds the value at that key to the same name.
func (p *Parser) parseHashPattern() ast.Pattern {
	pat := &ast.HashPattern{Token: p.curToken}

	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return pat
	}

	for {
		p.nextToken()
		p.skipNewlines()

		var key ast.Expression
		switch {
		case p.curTokenIs(token.IDENT):
			key = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Lexeme}
		case p.curTokenIs(token.STRING):
			key = p.parseStringLiteral()
		default:
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP002, p.curToken,
				fmt.Sprintf("expected hash pattern key, got '%s'", p.curToken.Type),
			))
			return nil
		}

		entry := ast.HashPatternEntry{Key: key}
		if p.peekTokenIs(token.COLON) {
			p.nextToken() // consume ':'
			p.nextToken()
			entry.Pattern = p.parsePattern()
			if entry.Pattern == nil {
				return nil
			}
		} else {
			// Shorthand: {name} binds subject["name"] to name.
			sl, ok := key.(*ast.StringLiteral)
			if !ok {
				p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
					diagnostics.ErrP001, p.peekToken, "expected ':' after hash pattern key",
				))
				return nil
			}
			entry.Pattern = &ast.IdentifierPattern{
				Token: sl.Token,
				Name:  &ast.Identifier{Token: sl.Token, Value: sl.Value},
			}
		}
		pat.Entries = append(pat.Entries, entry)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return pat
}
