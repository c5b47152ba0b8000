package parser

import (
	"github.com/solisoft/soli-lang-sub002/internal/ast"
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/pipeline"
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Tokens == nil {
		err := diagnostics.NewError("P000", token.Token{}, "parser: token stream is nil")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	parser := New(ctx.Tokens, ctx)
	ctx.AstRoot = parser.ParseProgram()

	if prog, ok := ctx.AstRoot.(*ast.Program); ok {
		prog.File = ctx.FilePath
	}

	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}

	return ctx
}
