package front

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

type (
	Options struct {
		Version int
		Mode    ir.Mode
	}

	// Unit is a lowered main program or subroutine.
	Unit struct {
		Sub *ast.Subroutine

		Entry *ir.Block
		End   *ir.Block
	}

	// Compiler lowers one unit into a block graph.
	Compiler struct {
		Options

		sub   *ast.Subroutine
		loops []*loop
	}

	loop struct {
		breaks []*ir.Block
		conts  []*ir.Block
	}
)

func New(opts Options) *Compiler {
	return &Compiler{Options: opts}
}

// Lower lowers the main program if sub is nil or the subroutine body otherwise.
func (c *Compiler) Lower(ctx context.Context, sub *ast.Subroutine, body ast.Expr) (u *Unit, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "lower", "unit", unitName(sub))
	defer tr.Finish("err", &err)

	c.sub = sub
	c.loops = c.loops[:0]

	body, err = c.implicitReturn(body)
	if err != nil {
		return nil, err
	}

	start, end, err := c.lower(body)
	if err != nil {
		return nil, err
	}

	if len(c.loops) != 0 {
		panic("unbalanced loops")
	}

	if tr.If("dump_blocks") {
		ir.Iterate(start, func(b *ir.Block) {
			tr.Printw("block", "ptr", tlog.FormatNext("%p"), b, "block", b, "ops", b.Ops)
		})
	}

	return &Unit{Sub: sub, Entry: start, End: end}, nil
}

func (c *Compiler) implicitReturn(body ast.Expr) (ast.Expr, error) {
	if body.HasReturn() {
		return body, nil
	}

	if c.sub != nil && c.sub.Returns == tp.None {
		if t := body.Type(); t != tp.None {
			return nil, ast.NewTypeError(body, tp.None, t)
		}

		return &ast.Seq{Exprs: []ast.Expr{body, &ast.Return{}}}, nil
	}

	return &ast.Return{Value: body}, nil
}

func (c *Compiler) lower(x ast.Expr) (start, end *ir.Block, err error) {
	switch x := x.(type) {
	case *ast.IntLit:
		return c.leaf(ir.Ins(ir.OpInt, x.Value))
	case *ast.TmplLit:
		if !ast.ValidTmpl(x.Name) {
			return nil, nil, ast.NewInputError(x, "invalid template variable name: %q", x.Name)
		}

		if x.T == tp.Bytes {
			return c.leaf(ir.Ins(ir.OpByte, ir.Tmpl(x.Name)))
		}

		return c.leaf(ir.Ins(ir.OpInt, ir.Tmpl(x.Name)))
	case *ast.BytesLit:
		if x.Err != nil {
			return nil, nil, ast.NewInputError(x, "bad bytes literal %v: %v", x.Lit.Text, x.Err)
		}

		return c.leaf(ir.Ins(ir.OpByte, x.Lit))
	case *ast.Op:
		return c.lowerOp(x)
	case *ast.Seq:
		return c.lowerSeq(x)
	case *ast.If:
		return c.lowerIf(x)
	case *ast.Cond:
		return c.lowerCond(x)
	case *ast.While:
		return c.lowerWhile(x)
	case *ast.For:
		return c.lowerFor(x)
	case *ast.Break:
		return c.lowerBreak(x)
	case *ast.Continue:
		return c.lowerContinue(x)
	case *ast.Return:
		return c.lowerReturn(x)
	case *ast.Assert:
		return c.lowerAssert(x)
	case *ast.Err:
		return c.leaf(ir.Ins(ir.OpErr))
	case *ast.Pop:
		return c.chain(x, []ast.Expr{x.Value}, []tp.Type{tp.Any}, ir.Ins(ir.OpPop))
	case *ast.ScratchLoad:
		return c.lowerLoad(x)
	case *ast.ScratchStore:
		return c.lowerStore(x)
	case *ast.ScratchStackStore:
		return c.leaf(ir.Ins(ir.OpStore, x.Slot))
	case *ast.ScratchIndex:
		return c.leaf(ir.Ins(ir.OpInt, x.Slot))
	case *ast.Substring:
		return c.lowerSubstring(x)
	case *ast.Extract:
		return c.lowerExtract(x)
	case *ast.Suffix:
		return c.lowerSuffix(x)
	case *ast.Call:
		return c.lowerCall(x)
	default:
		return nil, nil, errors.New("unsupported node: %T", x)
	}
}

func (c *Compiler) leaf(ins ir.Instr) (start, end *ir.Block, err error) {
	err = c.check(nil, ins.Op)
	if err != nil {
		return
	}

	b := ir.NewBlock(ins)

	return b, b, nil
}

func (c *Compiler) lowerOp(x *ast.Op) (start, end *ir.Block, err error) {
	if len(x.Args) != len(x.Op.In) {
		return nil, nil, ast.NewInputError(x, "op %v takes %d arguments, got %d", x.Op, len(x.Op.In), len(x.Args))
	}

	if x.Op.Imm >= 0 && len(x.Imm) != x.Op.Imm {
		return nil, nil, ast.NewInputError(x, "op %v takes %d immediate arguments, got %d", x.Op, x.Op.Imm, len(x.Imm))
	}

	if x.Op == ir.OpEq || x.Op == ir.OpNeq {
		l, r := x.Args[0].Type(), x.Args[1].Type()

		if l != tp.Any && r != tp.Any && l != r {
			return nil, nil, ast.NewTypeError(x.Args[1], l, r)
		}
	}

	ins := ir.Instr{Op: x.Op, Args: x.Imm, Src: x.Src()}

	return c.chain(x, x.Args, x.Op.In, ins)
}

// chain evaluates args left to right and then runs ins.
func (c *Compiler) chain(x ast.Expr, args []ast.Expr, want []tp.Type, ins ir.Instr) (start, end *ir.Block, err error) {
	err = c.check(x, ins.Op)
	if err != nil {
		return
	}

	for i, a := range args {
		err = requireType(a, want[i])
		if err != nil {
			return nil, nil, err
		}

		s, e, err := c.lower(a)
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

	b := ir.NewBlock(ins)

	if start == nil {
		return b, b, nil
	}

	end.SetNext(b)

	return start, b, nil
}

func (c *Compiler) check(x ast.Expr, o *ir.Op) error {
	err := o.Check(c.Version, c.Mode)
	if err != nil && x != nil && x.Src() != 0 {
		return errors.Wrap(err, "%v", x.Src())
	}

	return err
}

// requireType checks a value of type want can be taken from x.
func requireType(x ast.Expr, want tp.Type) error {
	got := x.Type()

	if got == tp.None || !got.Satisfies(want) {
		return ast.NewTypeError(x, want, got)
	}

	return nil
}

func unitName(s *ast.Subroutine) string {
	if s == nil {
		return "main"
	}

	return fmt.Sprintf("%v", s)
}
