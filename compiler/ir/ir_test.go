package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	a := NewBlock(Ins(OpInt, uint64(1)))
	b := NewBlock(Ins(OpInt, uint64(2)))
	c := NewBlock(Ins(OpAdd), Ins(OpReturn))

	a.SetNext(b)
	b.SetNext(c)

	start := Normalize(a)

	assert.Same(t, c, start)
	assert.Equal(t, []Instr{Ins(OpInt, uint64(1)), Ins(OpInt, uint64(2)), Ins(OpAdd), Ins(OpReturn)}, start.Ops)
	assert.Len(t, Reachable(start), 1)
}

func TestNormalizeKeepsJoins(t *testing.T) {
	cond := NewCondBlock(Ins(OpInt, uint64(1)))
	l := NewBlock(Ins(OpInt, uint64(2)))
	r := NewBlock(Ins(OpInt, uint64(3)))
	join := NewBlock()
	ret := NewBlock(Ins(OpReturn))

	cond.SetBranches(l, r)
	l.SetNext(join)
	r.SetNext(join)
	join.SetNext(ret)

	start := Normalize(cond)
	assert.Same(t, cond, start)

	assert.Len(t, Reachable(start), 4)
	assert.Same(t, ret, l.Next)
	assert.Same(t, ret, r.Next)

	require.NoError(t, Validate(start))

	order := Order(start, ret)
	assert.Equal(t, []*Block{cond, r, l, ret}, order)
}

func TestNormalizeLoopEntry(t *testing.T) {
	head := NewCondBlock(Ins(OpInt, uint64(1)))
	body := NewBlock(Ins(OpInt, uint64(2)), Ins(OpPop))
	end := NewBlock(Ins(OpInt, uint64(1)), Ins(OpReturn))

	head.SetBranches(body, end)
	body.SetNext(head)

	start := Normalize(head)

	assert.Same(t, head, start)
	assert.Len(t, head.Ops, 1)
	assert.Len(t, Reachable(start), 3)
}

func TestTerminal(t *testing.T) {
	assert.True(t, NewBlock().IsTerminal())
	assert.True(t, NewBlock(Ins(OpErr)).IsTerminal())

	b := NewBlock(Ins(OpRetSub))
	b.SetNext(NewBlock(Ins(OpInt, uint64(1))))

	assert.True(t, b.IsTerminal())
	assert.Len(t, Reachable(b), 1)

	c := NewCondBlock()
	assert.False(t, c.IsTerminal())
	assert.Error(t, Validate(c))

	assert.Panics(t, func() { c.SetNext(b) })
	assert.Panics(t, func() { b.SetBranches(b, b) })
}

func TestOpCheck(t *testing.T) {
	assert.NoError(t, OpLog.Check(5, ModeApplication))

	err := OpLog.Check(4, ModeApplication)
	assert.Equal(t, VersionError{Op: "log", Min: 5, Version: 4}, err)
	assert.EqualError(t, err, "program version 4 too low to use op log: requires version 5")

	err = OpLog.Check(5, ModeSignature)
	assert.Equal(t, ModeError{Op: "log", Mode: ModeSignature}, err)

	assert.NoError(t, OpArg.Check(2, ModeAny))

	o, ok := Lookup("extract_uint16")
	assert.True(t, ok)
	assert.Same(t, OpExtract2, o)

	_, ok = Lookup("nope")
	assert.False(t, ok)

	assert.NotEmpty(t, Ops())
}

func TestSlots(t *testing.T) {
	a, b := NewSlot(), NewReservedSlot(3)

	assert.Less(t, a.Seq(), b.Seq())

	x := Ins(OpStore, a)
	assert.Equal(t, []*Slot{a}, x.Slots())
	assert.Nil(t, Ins(OpAdd).Slots())

	assert.Equal(t, Bytes{Value: []byte{0xab}, Text: "0xab"}, HexBytes([]byte{0xab}))
}
