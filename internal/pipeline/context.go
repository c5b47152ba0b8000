package pipeline

import (
	"github.com/solisoft/soli-lang-sub002/internal/diagnostics"
	"github.com/solisoft/soli-lang-sub002/internal/token"
)

// Processor is one stage of the pipeline (lexer, parser, backend).
type Processor interface {
	Process(ctx *Context) *Context
}

// Context carries the intermediate artifacts between stages. AstRoot is
// declared as interface{} so the package does not depend on the ast package.
type Context struct {
	Source   string
	FilePath string

	Tokens  []token.Token
	AstRoot interface{}
	Result  interface{}

	Errors []*diagnostics.Diagnostic
}

func NewContext(source, filePath string) *Context {
	return &Context{Source: source, FilePath: filePath}
}

// HasErrors reports whether any stage recorded an error-severity diagnostic.
func (c *Context) HasErrors() bool {
	for _, d := range c.Errors {
		if d.Severity == diagnostics.SeverityError {
			return true
		}
	}
	return false
}
