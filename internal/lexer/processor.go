package lexer

import (
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/pipeline"
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

// LexerProcessor is the pipeline stage wrapping the lexer. It tokenizes the
// whole source up front; ILLEGAL tokens become LexError diagnostics but do
// not abort the stage, so later errors are still reported.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	l := New(ctx.Source)

	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			msg, _ := tok.Literal.(string)
			if msg == "" {
				msg = "unexpected character " + tok.Lexeme
			}
			code := diagnostics.ErrL002
			if msg == "unterminated string literal" || msg == "unterminated raw string literal" {
				code = diagnostics.ErrL001
			}
			d := diagnostics.NewError(code, tok, "%s", msg)
			d.File = ctx.FilePath
			ctx.Errors = append(ctx.Errors, d)
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	ctx.Tokens = tokens
	return ctx
}
