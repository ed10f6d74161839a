package front

import (
	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

func (c *Compiler) lowerSeq(x *ast.Seq) (start, end *ir.Block, err error) {
	if len(x.Exprs) == 0 {
		b := ir.NewBlock()
		return b, b, nil
	}

	for i, e := range x.Exprs {
		if i+1 < len(x.Exprs) && e.Type() != tp.None {
			return nil, nil, ast.NewInputError(e, "non-final expression in a sequence must not leave a value, got %v", e.Type())
		}

		s, t, err := c.lower(e)
		if err != nil {
			return nil, nil, err
		}

		if start == nil {
			start = s
		} else {
			end.SetNext(s)
		}

		end = t
	}

	return start, end, nil
}

func (c *Compiler) lowerIf(x *ast.If) (start, end *ir.Block, err error) {
	err = requireType(x.Cond, tp.Uint64)
	if err != nil {
		return
	}

	if x.Else == nil {
		if t := x.Then.Type(); t != tp.None {
			return nil, nil, ast.NewTypeError(x.Then, tp.None, t)
		}
	} else if !x.Then.HasReturn() && !x.Else.HasReturn() && x.Then.Type() != x.Else.Type() {
		return nil, nil, ast.NewTypeError(x.Else, x.Then.Type(), x.Else.Type())
	}

	start, condEnd, err := c.lower(x.Cond)
	if err != nil {
		return
	}

	br := ir.NewCondBlock()
	condEnd.SetNext(br)

	thenStart, thenEnd, err := c.lower(x.Then)
	if err != nil {
		return
	}

	end = ir.NewBlock()

	if !x.Then.HasReturn() {
		thenEnd.SetNext(end)
	}

	if x.Else == nil {
		br.SetBranches(thenStart, end)

		return start, end, nil
	}

	elseStart, elseEnd, err := c.lower(x.Else)
	if err != nil {
		return
	}

	if !x.Else.HasReturn() {
		elseEnd.SetNext(end)
	}

	br.SetBranches(thenStart, elseStart)

	return start, end, nil
}

// lowerCond tests arms in order and fails if none matches.
func (c *Compiler) lowerCond(x *ast.Cond) (start, end *ir.Block, err error) {
	if len(x.Arms) == 0 {
		return nil, nil, ast.NewInputError(x, "cond without arms")
	}

	t := x.Type()
	end = ir.NewBlock()

	var prev *ir.Block

	for _, a := range x.Arms {
		err = requireType(a.Cond, tp.Uint64)
		if err != nil {
			return
		}

		if !a.Value.HasReturn() && a.Value.Type() != t {
			return nil, nil, ast.NewTypeError(a.Value, t, a.Value.Type())
		}

		cs, ce, err := c.lower(a.Cond)
		if err != nil {
			return nil, nil, err
		}

		vs, ve, err := c.lower(a.Value)
		if err != nil {
			return nil, nil, err
		}

		br := ir.NewCondBlock()
		ce.SetNext(br)
		br.True = vs

		if !a.Value.HasReturn() {
			ve.SetNext(end)
		}

		if start == nil {
			start = cs
		} else {
			prev.False = cs
		}

		prev = br
	}

	prev.False = ir.NewBlock(ir.Ins(ir.OpErr))

	return start, end, nil
}

func (c *Compiler) lowerWhile(x *ast.While) (start, end *ir.Block, err error) {
	err = requireType(x.Cond, tp.Uint64)
	if err != nil {
		return
	}

	if t := x.Do.Type(); t != tp.None {
		return nil, nil, ast.NewTypeError(x.Do, tp.None, t)
	}

	start, condEnd, err := c.lower(x.Cond)
	if err != nil {
		return
	}

	br := ir.NewCondBlock()
	condEnd.SetNext(br)

	l := c.enterLoop()

	doStart, doEnd, err := c.lower(x.Do)
	if err != nil {
		return
	}

	c.exitLoop()

	doEnd.SetNext(start)

	end = ir.NewBlock()
	br.SetBranches(doStart, end)

	l.link(end, start)

	return start, end, nil
}

func (c *Compiler) lowerFor(x *ast.For) (start, end *ir.Block, err error) {
	for _, e := range []ast.Expr{x.Init, x.Step, x.Do} {
		if t := e.Type(); t != tp.None {
			return nil, nil, ast.NewTypeError(e, tp.None, t)
		}
	}

	err = requireType(x.Cond, tp.Uint64)
	if err != nil {
		return
	}

	start, initEnd, err := c.lower(x.Init)
	if err != nil {
		return
	}

	condStart, condEnd, err := c.lower(x.Cond)
	if err != nil {
		return
	}

	initEnd.SetNext(condStart)

	br := ir.NewCondBlock()
	condEnd.SetNext(br)

	l := c.enterLoop()

	doStart, doEnd, err := c.lower(x.Do)
	if err != nil {
		return
	}

	c.exitLoop()

	stepStart, stepEnd, err := c.lower(x.Step)
	if err != nil {
		return
	}

	doEnd.SetNext(stepStart)
	stepEnd.SetNext(condStart)

	end = ir.NewBlock()
	br.SetBranches(doStart, end)

	l.link(end, stepStart)

	return start, end, nil
}

func (c *Compiler) lowerBreak(x *ast.Break) (start, end *ir.Block, err error) {
	if len(c.loops) == 0 {
		return nil, nil, ast.NewInputError(x, "break is only allowed in a loop")
	}

	b := ir.NewBlock()

	l := c.loops[len(c.loops)-1]
	l.breaks = append(l.breaks, b)

	return b, b, nil
}

func (c *Compiler) lowerContinue(x *ast.Continue) (start, end *ir.Block, err error) {
	if len(c.loops) == 0 {
		return nil, nil, ast.NewInputError(x, "continue is only allowed in a loop")
	}

	b := ir.NewBlock()

	l := c.loops[len(c.loops)-1]
	l.conts = append(l.conts, b)

	return b, b, nil
}

func (c *Compiler) lowerReturn(x *ast.Return) (start, end *ir.Block, err error) {
	if c.sub == nil {
		if x.Value == nil {
			return nil, nil, ast.NewInputError(x, "return from the main program must have a value")
		}

		return c.chain(x, []ast.Expr{x.Value}, []tp.Type{tp.Uint64}, ir.Ins(ir.OpReturn))
	}

	want := c.sub.Returns

	switch {
	case want == tp.None && x.Value != nil:
		return nil, nil, ast.NewInputError(x, "subroutine %v does not return a value", c.sub.Name)
	case want == tp.None:
		return c.leaf(ir.Ins(ir.OpRetSub))
	case x.Value == nil:
		return nil, nil, ast.NewInputError(x, "subroutine %v must return a value of type %v", c.sub.Name, want)
	}

	return c.chain(x, []ast.Expr{x.Value}, []tp.Type{want}, ir.Ins(ir.OpRetSub))
}

func (c *Compiler) lowerAssert(x *ast.Assert) (start, end *ir.Block, err error) {
	if len(x.Conds) == 0 {
		return nil, nil, ast.NewInputError(x, "assert without conditions")
	}

	for _, cond := range x.Conds {
		var s, e *ir.Block

		if c.Version >= ir.OpAssert.MinVersion {
			s, e, err = c.chain(x, []ast.Expr{cond}, []tp.Type{tp.Uint64}, ir.Ins(ir.OpAssert))
		} else {
			s, e, err = c.assertBranch(cond)
		}

		if err != nil {
			return nil, nil, err
		}

		if start == nil {
			start = s
		} else {
			end.SetNext(s)
		}

		end = e
	}

	return start, end, nil
}

func (c *Compiler) assertBranch(cond ast.Expr) (start, end *ir.Block, err error) {
	err = requireType(cond, tp.Uint64)
	if err != nil {
		return
	}

	start, condEnd, err := c.lower(cond)
	if err != nil {
		return
	}

	br := ir.NewCondBlock()
	condEnd.SetNext(br)

	end = ir.NewBlock()
	br.SetBranches(end, ir.NewBlock(ir.Ins(ir.OpErr)))

	return start, end, nil
}

func (c *Compiler) enterLoop() *loop {
	l := &loop{}
	c.loops = append(c.loops, l)

	return l
}

func (c *Compiler) exitLoop() {
	c.loops = c.loops[:len(c.loops)-1]
}

func (l *loop) link(brk, cont *ir.Block) {
	for _, b := range l.breaks {
		b.SetNext(brk)
	}

	for _, b := range l.conts {
		b.SetNext(cont)
	}
}
