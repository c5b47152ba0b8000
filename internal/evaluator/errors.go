package evaluator

import (
	"fmt"

	"github.com/solisoft/soli-lang-sub002/internal/ast"
)

// Closed set of error kinds. Every raised condition carries exactly one
// of these, and catch type filters match against them.
const (
	LexErrorKind           = "LexError"
	ParseErrorKind         = "ParseError"
	NameErrorKind          = "NameError"
	TypeErrorKind          = "TypeError"
	KeyErrorKind           = "KeyError"
	IndexErrorKind         = "IndexError"
	ConstReassignErrorKind = "ConstReassignError"
	ValueErrorKind         = "ValueError"
	MatchErrorKind         = "MatchError"
	StackOverflowErrorKind = "StackOverflowError"
	RuntimeErrorKind       = "RuntimeError"
	EngineFaultKind        = "EngineFault"
)

var errorKinds = map[string]bool{
	LexErrorKind:           true,
	ParseErrorKind:         true,
	NameErrorKind:          true,
	TypeErrorKind:          true,
	KeyErrorKind:           true,
	IndexErrorKind:         true,
	ConstReassignErrorKind: true,
	ValueErrorKind:         true,
	MatchErrorKind:         true,
	StackOverflowErrorKind: true,
	RuntimeErrorKind:       true,
	EngineFaultKind:        true,
}

// KnownErrorKind reports whether name is one of the defined kinds.
func KnownErrorKind(name string) bool { return errorKinds[name] }

func NewError(kind string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Raised: true}
}

// NewErrorAt positions the error at a node's token.
func NewErrorAt(kind string, node ast.Node, format string, args ...interface{}) *Error {
	err := NewError(kind, format, args...)
	if tp, ok := node.(ast.TokenProvider); ok {
		tok := tp.GetToken()
		err.Line = tok.Line
		err.Column = tok.Column
	}
	return err
}

func newTypeError(format string, args ...interface{}) *Error {
	return NewError(TypeErrorKind, format, args...)
}

// isError reports a raised error in flight. Error values that were never
// thrown flow like ordinary data.
func isError(obj Object) bool {
	err, ok := obj.(*Error)
	return ok && err.Raised
}
