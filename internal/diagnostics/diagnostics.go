// Package diagnostics defines the error type shared by all pipeline stages.
package diagnostics

import (
	"fmt"

	"github.com/solisoft/soli-lang-sub002/internal/token"
)

// Stable diagnostic codes. L-codes come from the lexer, P-codes from the
// parser.
const (
	ErrL001 = "L001" // unterminated string
	ErrL002 = "L002" // unknown character
	ErrL003 = "L003" // malformed number
	ErrP001 = "P001" // expected a specific token
	ErrP002 = "P002" // unexpected token
	ErrP003 = "P003" // missing statement terminator
	ErrP004 = "P004" // keyword outside its valid context
	ErrP005 = "P005" // malformed construct
	ErrP006 = "P006" // expression too deeply nested
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is a positioned error from the lexer or parser.
type Diagnostic struct {
	Code     string
	Message  string
	File     string
	Line     int
	Column   int
	Severity Severity
}

func (d *Diagnostic) Error() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", d.File, d.Line, d.Column, d.Code, d.Message)
	}
	return fmt.Sprintf("%d:%d: [%s] %s", d.Line, d.Column, d.Code, d.Message)
}

// NewError builds an error-severity diagnostic positioned at tok.
func NewError(code string, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}
