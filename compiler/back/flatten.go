package back

import (
	"fmt"

	"github.com/slowlang/teal/compiler/ir"
)

// Flatten lays out ordered blocks as a list of lines.
// Branches are added where a successor does not directly follow,
// labels are added only to blocks being jumped to.
func Flatten(order []*ir.Block) []ir.Line {
	index := make(map[*ir.Block]int, len(order))

	for i, b := range order {
		index[b] = i
	}

	refs := make([]int, len(order))
	code := make([][]ir.Line, len(order))

	jump := func(o *ir.Op, to *ir.Block) ir.Instr {
		j := index[to]
		refs[j]++

		return ir.Ins(o, label(j))
	}

	for i, b := range order {
		for _, x := range b.Ops {
			code[i] = append(code[i], x)
		}

		if b.IsTerminal() {
			continue
		}

		if b.Kind == ir.Simple {
			if index[b.Next] != i+1 {
				code[i] = append(code[i], jump(ir.OpB, b.Next))
			}

			continue
		}

		switch {
		case index[b.False] == i+1:
			code[i] = append(code[i], jump(ir.OpBnz, b.True))
		case index[b.True] == i+1:
			code[i] = append(code[i], jump(ir.OpBz, b.False))
		default:
			code[i] = append(code[i], jump(ir.OpBnz, b.True), jump(ir.OpB, b.False))
		}
	}

	var r []ir.Line

	for i, c := range code {
		if refs[i] != 0 {
			r = append(r, ir.Label{Name: string(label(i))})
		}

		r = append(r, c...)
	}

	return r
}

func label(i int) ir.LabelRef {
	return ir.LabelRef(fmt.Sprintf("l%d", i))
}
