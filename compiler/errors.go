package compiler

import (
	"fmt"

	"github.com/Manyfestation/silverscript/ast"
)

// Error is a compile failure, carrying the offending source span when
// one can be derived from the tree.
type Error struct {
	Msg  string
	Span *ast.Span
}

func (e Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("compile error at %s: %s", e.Span, e.Msg)
	}
	return "compile error: " + e.Msg
}

func errorf(span ast.Span, format string, args ...interface{}) error {
	s := span
	return Error{Msg: fmt.Sprintf(format, args...), Span: &s}
}

func errorNoSpan(format string, args ...interface{}) error {
	return Error{Msg: fmt.Sprintf(format, args...)}
}
