package ast

import (
	"strings"
	"sync"

	"tlog.app/go/loc"

	"github.com/slowlang/teal/compiler/tp"
)

type (
	Param struct {
		Name string

		// ByRef params get a DynamicScratchVar aliasing the caller's slot.
		ByRef bool
	}

	// Subroutine is defined once and emitted once per program
	// no matter how many times it is called.
	Subroutine struct {
		Name    string
		Params  []Param
		Returns tp.Type

		Body func(args ...Var) Expr

		pc loc.PC

		once sync.Once
		decl *Declaration
	}

	// Declaration is an evaluated subroutine body.
	Declaration struct {
		Sub  *Subroutine
		Args []Var

		// Body stores incoming arguments and then runs the user body.
		Body Expr
	}

	// Call invokes a subroutine. Args are Expr for value params
	// and Var for by-ref params.
	Call struct {
		base

		Sub  *Subroutine
		Args []any
	}
)

func NewSubroutine(name string, returns tp.Type, params []Param, body func(args ...Var) Expr) *Subroutine {
	return &Subroutine{
		Name:    name,
		Params:  params,
		Returns: returns,
		Body:    body,
		pc:      loc.Caller(1),
	}
}

// Call builds a call expression. Arguments are checked at compile time.
func (s *Subroutine) Call(args ...any) *Call {
	return &Call{base: at(), Sub: s, Args: args}
}

// Declaration evaluates the body. It's done once per subroutine.
func (s *Subroutine) Declaration() *Declaration {
	s.once.Do(func() {
		d := &Declaration{Sub: s}

		for _, p := range s.Params {
			if p.ByRef {
				d.Args = append(d.Args, NewDynamicScratchVar(tp.Any))
			} else {
				d.Args = append(d.Args, NewScratchVar(tp.Any))
			}
		}

		var body []Expr

		for i := len(d.Args) - 1; i >= 0; i-- {
			body = append(body, d.Args[i].storeStack())
		}

		body = append(body, s.Body(d.Args...))

		d.Body = &Seq{base: base{pc: s.pc}, Exprs: body}

		s.decl = d
	})

	return s.decl
}

// HasByRef reports whether any param is passed by reference.
func (s *Subroutine) HasByRef() bool {
	for _, p := range s.Params {
		if p.ByRef {
			return true
		}
	}

	return false
}

func (s *Subroutine) Src() loc.PC { return s.pc }

func (s *Subroutine) String() string {
	var b strings.Builder

	b.WriteString(s.Name)
	b.WriteByte('(')

	for i, p := range s.Params {
		if i != 0 {
			b.WriteString(", ")
		}

		if p.ByRef {
			b.WriteByte('*')
		}

		b.WriteString(p.Name)
	}

	b.WriteByte(')')

	return b.String()
}

func (x *Call) Type() tp.Type   { return x.Sub.Returns }
func (x *Call) HasReturn() bool { return false }
