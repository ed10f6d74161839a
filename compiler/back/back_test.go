package back

import (
	"context"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/front"
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

func TestFlattenBranches(t *testing.T) {
	a := ir.NewCondBlock(ir.Ins(ir.OpInt, uint64(1)))
	b := ir.NewBlock(ir.Ins(ir.OpInt, uint64(2)))
	c := ir.NewBlock(ir.Ins(ir.OpInt, uint64(3)))
	end := ir.NewBlock(ir.Ins(ir.OpReturn))

	a.SetBranches(b, c)
	b.SetNext(end)
	c.SetNext(end)

	lines := Flatten([]*ir.Block{a, b, c, end})

	assert.Equal(t, []ir.Line{
		ir.Ins(ir.OpInt, uint64(1)),
		ir.Ins(ir.OpBz, ir.LabelRef("l2")),
		ir.Ins(ir.OpInt, uint64(2)),
		ir.Ins(ir.OpB, ir.LabelRef("l3")),
		ir.Label{Name: "l2"},
		ir.Ins(ir.OpInt, uint64(3)),
		ir.Label{Name: "l3"},
		ir.Ins(ir.OpReturn),
	}, lines)

	lines = Flatten([]*ir.Block{a, end, b, c})

	assert.Equal(t, []ir.Line{
		ir.Ins(ir.OpInt, uint64(1)),
		ir.Ins(ir.OpBnz, ir.LabelRef("l2")),
		ir.Ins(ir.OpB, ir.LabelRef("l3")),
		ir.Label{Name: "l1"},
		ir.Ins(ir.OpReturn),
		ir.Label{Name: "l2"},
		ir.Ins(ir.OpInt, uint64(2)),
		ir.Ins(ir.OpB, ir.LabelRef("l1")),
		ir.Label{Name: "l3"},
		ir.Ins(ir.OpInt, uint64(3)),
		ir.Ins(ir.OpB, ir.LabelRef("l1")),
	}, lines)
}

func slotUnit(sub *ast.Subroutine, slots ...*ir.Slot) *unit {
	u := &unit{sub: sub}

	for _, s := range slots {
		u.lines = append(u.lines, ir.Ins(ir.OpLoad, s))
	}

	return u
}

func TestAssignSlots(t *testing.T) {
	a := ast.NewSubroutine("a", tp.None, nil, nil)
	b := ast.NewSubroutine("b", tp.None, nil, nil)

	s0 := ir.NewSlot()
	s1 := ir.NewSlot()
	r1 := ir.NewReservedSlot(1)
	s2 := ir.NewSlot()
	shared := ir.NewSlot()

	r, err := AssignSlots([]*unit{
		slotUnit(nil, s0, shared),
		slotUnit(a, s1, r1, shared),
		slotUnit(b, s2),
	})
	require.NoError(t, err)

	assert.Equal(t, map[*ir.Slot]int{s0: 0, r1: 1, s1: 2, s2: 3, shared: 4}, r.IDs)

	assert.Equal(t, []*ir.Slot{s1}, r.Local[a])
	assert.Equal(t, []*ir.Slot{s2}, r.Local[b])
	assert.Nil(t, r.Local[nil])
}

func TestAssignSlotsErrors(t *testing.T) {
	_, err := AssignSlots([]*unit{slotUnit(nil, ir.NewReservedSlot(5), ir.NewReservedSlot(5))})
	assert.Error(t, err)

	_, err = AssignSlots([]*unit{slotUnit(nil, ir.NewReservedSlot(256))})
	assert.Error(t, err)

	var many []*ir.Slot

	for i := 0; i < ir.NumSlots; i++ {
		many = append(many, ir.NewSlot())
	}

	_, err = AssignSlots([]*unit{slotUnit(nil, many...)})
	assert.NoError(t, err)

	_, err = AssignSlots([]*unit{slotUnit(nil, append(many, ir.NewSlot())...)})
	assert.Error(t, err)
}

func TestSpillDig(t *testing.T) {
	callee := ast.NewSubroutine("g", tp.Uint64, []ast.Param{{Name: "x"}, {Name: "y"}}, nil)
	s1, s2 := ir.NewSlot(), ir.NewSlot()

	u := &unit{lines: []ir.Line{
		ir.Ins(ir.OpInt, uint64(1)),
		ir.Ins(ir.OpInt, uint64(2)),
		ir.Ins(ir.OpCallSub, callee),
	}}

	spill(4, u, mapset.NewThreadUnsafeSet(callee), []*ir.Slot{s1, s2})

	assert.Equal(t, []ir.Line{
		ir.Ins(ir.OpInt, uint64(1)),
		ir.Ins(ir.OpInt, uint64(2)),
		ir.Ins(ir.OpLoad, s1),
		ir.Ins(ir.OpLoad, s2),
		ir.Ins(ir.OpDig, 3),
		ir.Ins(ir.OpDig, 3),
		ir.Ins(ir.OpCallSub, callee),
		ir.Ins(ir.OpSwap),
		ir.Ins(ir.OpStore, s2),
		ir.Ins(ir.OpSwap),
		ir.Ins(ir.OpStore, s1),
		ir.Ins(ir.OpSwap),
		ir.Ins(ir.OpPop),
		ir.Ins(ir.OpSwap),
		ir.Ins(ir.OpPop),
	}, u.lines)
}

func TestSpillCoverNoReturn(t *testing.T) {
	callee := ast.NewSubroutine("g", tp.None, []ast.Param{{Name: "x"}, {Name: "y"}}, nil)
	other := ast.NewSubroutine("h", tp.None, nil, nil)
	s1, s2 := ir.NewSlot(), ir.NewSlot()

	u := &unit{lines: []ir.Line{
		ir.Ins(ir.OpCallSub, other),
		ir.Ins(ir.OpCallSub, callee),
	}}

	spill(5, u, mapset.NewThreadUnsafeSet(callee), []*ir.Slot{s1, s2})

	assert.Equal(t, []ir.Line{
		ir.Ins(ir.OpCallSub, other),
		ir.Ins(ir.OpLoad, s1),
		ir.Ins(ir.OpCover, 2),
		ir.Ins(ir.OpLoad, s2),
		ir.Ins(ir.OpCover, 2),
		ir.Ins(ir.OpCallSub, callee),
		ir.Ins(ir.OpStore, s2),
		ir.Ins(ir.OpStore, s1),
	}, u.lines)
}

func TestLink(t *testing.T) {
	ctx := context.Background()

	sub := ast.NewSubroutine("one", tp.Uint64, nil, func(args ...ast.Var) ast.Expr {
		return ast.Int(1)
	})

	fc := front.New(front.Options{Version: 4, Mode: ir.ModeAny})

	main, err := fc.Lower(ctx, nil, sub.Call())
	require.NoError(t, err)

	one, err := fc.Lower(ctx, sub, sub.Declaration().Body)
	require.NoError(t, err)

	lines, err := Link(ctx, 4, []*front.Unit{main, one}, nil)
	require.NoError(t, err)

	assert.Equal(t, []ir.Line{
		ir.Instr{Op: ir.OpCallSub, Args: []any{ir.LabelRef("one_0")}, Src: main.Entry.Ops[0].Src},
		ir.Ins(ir.OpReturn),
		ir.Label{Name: "one_0", Comment: "one"},
		ir.Ins(ir.OpInt, uint64(1)),
		ir.Ins(ir.OpRetSub),
	}, lines)

	_, err = Link(ctx, 4, []*front.Unit{main}, nil)
	assert.Error(t, err)

	_, err = Link(ctx, 4, []*front.Unit{one}, nil)
	assert.Error(t, err)
}
