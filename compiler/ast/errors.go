package ast

import (
	"fmt"

	"github.com/slowlang/teal/compiler/tp"
)

type (
	// TypeError is an operand of the wrong stack type.
	TypeError struct {
		Node     Expr
		Expected tp.Type
		Actual   tp.Type
	}

	// InputError is a structurally invalid expression.
	InputError struct {
		Node Expr
		Msg  string
	}
)

func NewTypeError(x Expr, exp, act tp.Type) TypeError {
	return TypeError{Node: x, Expected: exp, Actual: act}
}

func NewInputError(x Expr, format string, args ...any) InputError {
	return InputError{Node: x, Msg: fmt.Sprintf(format, args...)}
}

func (e TypeError) Error() string {
	return fmt.Sprintf("%v%T: type mismatch: expected %v, got %v", where(e.Node), e.Node, e.Expected, e.Actual)
}

func (e InputError) Error() string {
	if e.Node == nil {
		return e.Msg
	}

	return fmt.Sprintf("%v%T: %v", where(e.Node), e.Node, e.Msg)
}

func where(x Expr) string {
	if x == nil || x.Src() == 0 {
		return ""
	}

	return fmt.Sprintf("%v: ", x.Src())
}
