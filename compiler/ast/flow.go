package ast

import (
	"github.com/slowlang/teal/compiler/tp"
)

type (
	Seq struct {
		base

		Exprs []Expr
	}

	If struct {
		base

		Cond Expr
		Then Expr
		Else Expr
	}

	Cond struct {
		base

		Arms []CondArm
	}

	CondArm struct {
		Cond  Expr
		Value Expr
	}

	While struct {
		base

		Cond Expr
		Do   Expr
	}

	For struct {
		base

		Init Expr
		Cond Expr
		Step Expr
		Do   Expr
	}

	Break struct {
		base
	}

	Continue struct {
		base
	}

	// Return leaves the current subroutine, or ends the program.
	Return struct {
		base

		Value Expr
	}

	Assert struct {
		base

		Conds []Expr
	}

	Err struct {
		base
	}

	Pop struct {
		base

		Value Expr
	}
)

func Do(xs ...Expr) *Seq {
	return &Seq{base: at(), Exprs: xs}
}

// IfThen is an If without an else branch; then must not leave a value.
func IfThen(cond, then Expr) *If {
	return &If{base: at(), Cond: cond, Then: then}
}

func IfElse(cond, then, els Expr) *If {
	return &If{base: at(), Cond: cond, Then: then, Else: els}
}

func Switch(arms ...CondArm) *Cond {
	return &Cond{base: at(), Arms: arms}
}

func Arm(cond, value Expr) CondArm {
	return CondArm{Cond: cond, Value: value}
}

func Loop(cond, do Expr) *While {
	return &While{base: at(), Cond: cond, Do: do}
}

func ForLoop(init, cond, step, do Expr) *For {
	return &For{base: at(), Init: init, Cond: cond, Step: step, Do: do}
}

func BreakLoop() *Break {
	return &Break{base: at()}
}

func ContinueLoop() *Continue {
	return &Continue{base: at()}
}

// Ret returns v from the current subroutine or program. v may be nil.
func Ret(v Expr) *Return {
	return &Return{base: at(), Value: v}
}

func Approve() *Return {
	return &Return{base: at(), Value: &IntLit{base: at(), Value: 1}}
}

func Reject() *Return {
	return &Return{base: at(), Value: &IntLit{base: at(), Value: 0}}
}

func Require(conds ...Expr) *Assert {
	return &Assert{base: at(), Conds: conds}
}

func Fail() *Err {
	return &Err{base: at()}
}

func Discard(v Expr) *Pop {
	return &Pop{base: at(), Value: v}
}

func (x *Seq) Type() tp.Type {
	if len(x.Exprs) == 0 {
		return tp.None
	}

	return x.Exprs[len(x.Exprs)-1].Type()
}

func (x *Seq) HasReturn() bool {
	for _, e := range x.Exprs {
		if e.HasReturn() {
			return true
		}
	}

	return false
}

func (x *If) Type() tp.Type {
	switch {
	case x.Else == nil:
		return x.Then.Type()
	case x.Then.HasReturn() && !x.Else.HasReturn():
		return x.Else.Type()
	default:
		return x.Then.Type()
	}
}

func (x *If) HasReturn() bool {
	return x.Else != nil && x.Then.HasReturn() && x.Else.HasReturn()
}

func (x *Cond) Type() tp.Type {
	for _, a := range x.Arms {
		if !a.Value.HasReturn() {
			return a.Value.Type()
		}
	}

	if len(x.Arms) != 0 {
		return x.Arms[0].Value.Type()
	}

	return tp.None
}

func (x *Cond) HasReturn() bool {
	for _, a := range x.Arms {
		if !a.Value.HasReturn() {
			return false
		}
	}

	return len(x.Arms) != 0
}

func (x *While) Type() tp.Type    { return tp.None }
func (x *For) Type() tp.Type      { return tp.None }
func (x *Break) Type() tp.Type    { return tp.None }
func (x *Continue) Type() tp.Type { return tp.None }
func (x *Return) Type() tp.Type   { return tp.None }
func (x *Assert) Type() tp.Type   { return tp.None }
func (x *Err) Type() tp.Type      { return tp.None }
func (x *Pop) Type() tp.Type      { return tp.None }

func (x *While) HasReturn() bool    { return false }
func (x *For) HasReturn() bool      { return false }
func (x *Break) HasReturn() bool    { return false }
func (x *Continue) HasReturn() bool { return false }
func (x *Return) HasReturn() bool   { return true }
func (x *Assert) HasReturn() bool   { return false }
func (x *Err) HasReturn() bool      { return true }
func (x *Pop) HasReturn() bool      { return false }
