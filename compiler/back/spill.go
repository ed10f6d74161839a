package back

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

// spill saves local slots on the stack around calls which can reenter the unit.
// Arguments already pushed for the call are kept on top of the stack.
func spill(version int, u *unit, reentry mapset.Set[*ast.Subroutine], local []*ir.Slot) {
	if len(local) == 0 || reentry.Cardinality() == 0 {
		return
	}

	cover := version >= ir.OpCover.MinVersion
	k := len(local)

	var r []ir.Line

	for _, l := range u.lines {
		x, ok := l.(ir.Instr)
		if !ok || !x.Is(ir.OpCallSub) {
			r = append(r, l)
			continue
		}

		callee, ok := x.Args[0].(*ast.Subroutine)
		if !ok || !reentry.Contains(callee) {
			r = append(r, l)
			continue
		}

		n := len(callee.Params)
		ret := callee.Returns != tp.None
		dig := !cover && n > 1

		for _, s := range local {
			r = append(r, ir.Ins(ir.OpLoad, s))

			switch {
			case n == 0 || dig:
			case cover:
				r = append(r, ir.Ins(ir.OpCover, n))
			default:
				r = append(r, ir.Ins(ir.OpSwap))
			}
		}

		if dig {
			for i := 0; i < n; i++ {
				r = append(r, ir.Ins(ir.OpDig, k+n-1))
			}
		}

		r = append(r, x)

		if cover && ret {
			r = append(r, ir.Ins(ir.OpCover, k))
		}

		for i := k - 1; i >= 0; i-- {
			if !cover && ret {
				r = append(r, ir.Ins(ir.OpSwap))
			}

			r = append(r, ir.Ins(ir.OpStore, local[i]))
		}

		if dig {
			for i := 0; i < n; i++ {
				if ret {
					r = append(r, ir.Ins(ir.OpSwap))
				}

				r = append(r, ir.Ins(ir.OpPop))
			}
		}
	}

	u.lines = r
}
