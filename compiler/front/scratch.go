package front

import (
	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

func (c *Compiler) lowerLoad(x *ast.ScratchLoad) (start, end *ir.Block, err error) {
	if x.Index == nil {
		return c.leaf(ir.Ins(ir.OpLoad, x.Slot))
	}

	return c.chain(x, []ast.Expr{x.Index}, []tp.Type{tp.Uint64}, ir.Ins(ir.OpLoads))
}

func (c *Compiler) lowerStore(x *ast.ScratchStore) (start, end *ir.Block, err error) {
	if t := x.Value.Type(); t == tp.None || !t.Satisfies(x.T) {
		return nil, nil, ast.NewTypeError(x.Value, x.T, t)
	}

	if x.Index == nil {
		return c.chain(x, []ast.Expr{x.Value}, []tp.Type{tp.Any}, ir.Ins(ir.OpStore, x.Slot))
	}

	return c.chain(x, []ast.Expr{x.Index, x.Value}, []tp.Type{tp.Uint64, tp.Any}, ir.Ins(ir.OpStores))
}

func (c *Compiler) lowerCall(x *ast.Call) (start, end *ir.Block, err error) {
	sub := x.Sub

	if len(x.Args) != len(sub.Params) {
		return nil, nil, ast.NewInputError(x, "subroutine %v takes %d arguments, got %d", sub.Name, len(sub.Params), len(x.Args))
	}

	args := make([]ast.Expr, len(x.Args))
	want := make([]tp.Type, len(x.Args))

	for i, a := range x.Args {
		p := sub.Params[i]

		switch a := a.(type) {
		case ast.Var:
			if !p.ByRef {
				return nil, nil, ast.NewInputError(x, "argument %v of %v is passed by value, got a scratch variable", p.Name, sub.Name)
			}

			args[i] = a.Index()
			want[i] = tp.Uint64
		case ast.Expr:
			if p.ByRef {
				return nil, nil, ast.NewInputError(x, "argument %v of %v is passed by reference, got %T", p.Name, sub.Name, a)
			}

			args[i] = a
			want[i] = tp.Any
		default:
			return nil, nil, ast.NewInputError(x, "argument %v of %v: unsupported type %T", p.Name, sub.Name, a)
		}
	}

	return c.chain(x, args, want, ir.Instr{Op: ir.OpCallSub, Args: []any{sub}, Src: x.Src()})
}
