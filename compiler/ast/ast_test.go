package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/teal/compiler/tp"
)

func TestSeqType(t *testing.T) {
	assert.Equal(t, tp.None, Do().Type())
	assert.Equal(t, tp.Uint64, Do(Discard(Int(1)), Int(2)).Type())
	assert.Equal(t, tp.Bytes, Do(Bytes("a")).Type())

	assert.False(t, Do(Int(1)).HasReturn())
	assert.True(t, Do(Discard(Int(1)), Approve()).HasReturn())
}

func TestIfHasReturn(t *testing.T) {
	assert.False(t, IfThen(Int(1), Approve()).HasReturn())
	assert.False(t, IfElse(Int(1), Approve(), Discard(Int(0))).HasReturn())
	assert.True(t, IfElse(Int(1), Approve(), Reject()).HasReturn())

	x := IfElse(Int(1), Fail(), Bytes("x"))
	assert.Equal(t, tp.Bytes, x.Type())
}

func TestCondType(t *testing.T) {
	x := Switch(
		Arm(Int(0), Fail()),
		Arm(Int(1), Int(5)),
	)

	assert.Equal(t, tp.Uint64, x.Type())
	assert.False(t, x.HasReturn())

	y := Switch(Arm(Int(1), Approve()), Arm(Int(1), Reject()))
	assert.True(t, y.HasReturn())
}

func TestOps(t *testing.T) {
	x := Add(Int(1), Int(2))
	assert.Equal(t, tp.Uint64, x.Type())
	assert.Len(t, Children(x), 2)

	c := Concat(Bytes("a"), Bytes("b"), Bytes("c"))
	assert.Equal(t, tp.Bytes, c.Type())

	top := c.(*Op)
	require.Len(t, top.Args, 2)
	assert.IsType(t, &Op{}, top.Args[0])

	assert.Equal(t, tp.Uint64, SetBit(Int(0), Int(3), Int(1)).Type())
	assert.Equal(t, tp.Bytes, SetBit(Bytes("\x00"), Int(3), Int(1)).Type())

	assert.Panics(t, func() { And() })
}

func TestTmpl(t *testing.T) {
	assert.True(t, ValidTmpl("TMPL_AMOUNT"))
	assert.True(t, ValidTmpl("TMPL_A_1"))
	assert.False(t, ValidTmpl("TMPL_"))
	assert.False(t, ValidTmpl("AMOUNT"))
	assert.False(t, ValidTmpl("TMPL_lower"))
}

func TestBytesLiterals(t *testing.T) {
	assert.Equal(t, `"a\"b\n"`, Bytes("a\"b\n").Lit.Text)
	assert.Equal(t, "0x0102", BytesHex([]byte{1, 2}).Lit.Text)

	b := BytesBase64("AQI=")
	require.NoError(t, b.Err)
	assert.Equal(t, []byte{1, 2}, b.Lit.Value)

	b = BytesBase64("!!")
	assert.Error(t, b.Err)
}

func TestScratchVar(t *testing.T) {
	v := NewScratchVar(tp.Uint64)

	l := v.Load().(*ScratchLoad)
	assert.Equal(t, v.Slot, l.Slot)
	assert.Equal(t, tp.Uint64, l.Type())

	s := v.Store(Int(1)).(*ScratchStore)
	assert.Equal(t, tp.None, s.Type())
	assert.Equal(t, v.Slot, s.Slot)

	r := NewScratchVarAt(tp.Bytes, 10)
	assert.True(t, r.Slot.Reserved)
	assert.Equal(t, 10, r.Slot.Requested)

	assert.Less(t, v.Slot.Seq(), r.Slot.Seq())
}

func TestDynamicScratchVar(t *testing.T) {
	v := NewScratchVar(tp.Uint64)
	d := NewDynamicScratchVar(tp.Uint64)

	set := d.SetIndex(v).(*ScratchStore)
	assert.Equal(t, d.IndexVar.Slot, set.Slot)
	assert.IsType(t, &ScratchIndex{}, set.Value)

	l := d.Load().(*ScratchLoad)
	assert.Nil(t, l.Slot)
	require.IsType(t, &ScratchLoad{}, l.Index)
	assert.Equal(t, d.IndexVar.Slot, l.Index.(*ScratchLoad).Slot)

	st := d.Store(Int(3)).(*ScratchStore)
	assert.Nil(t, st.Slot)
	assert.NotNil(t, st.Index)
}

func TestSubroutineDeclaration(t *testing.T) {
	calls := 0

	sub := NewSubroutine("swap", tp.None, []Param{{Name: "a", ByRef: true}, {Name: "b"}}, func(args ...Var) Expr {
		calls++

		return args[0].Store(args[1].Load())
	})

	d := sub.Declaration()
	assert.Same(t, d, sub.Declaration())
	assert.Equal(t, 1, calls)

	require.Len(t, d.Args, 2)
	assert.IsType(t, &DynamicScratchVar{}, d.Args[0])
	assert.IsType(t, &ScratchVar{}, d.Args[1])

	seq := d.Body.(*Seq)
	require.Len(t, seq.Exprs, 3)

	// args are stored last first
	assert.Equal(t, d.Args[1].(*ScratchVar).Slot, seq.Exprs[0].(*ScratchStackStore).Slot)
	assert.Equal(t, d.Args[0].(*DynamicScratchVar).IndexVar.Slot, seq.Exprs[1].(*ScratchStackStore).Slot)

	assert.True(t, sub.HasByRef())
	assert.Equal(t, "swap(*a, b)", sub.String())
}

func TestWalkSkipsSubroutineBodies(t *testing.T) {
	inner := NewSubroutine("inner", tp.Uint64, nil, func(args ...Var) Expr {
		return Int(1)
	})

	v := NewScratchVar(tp.Uint64)

	x := Do(
		v.Store(inner.Call()),
		IfElse(v.Load(), Approve(), Reject()),
	)

	var calls, nodes int

	Walk(x, func(x Expr) bool {
		nodes++

		if _, ok := x.(*Call); ok {
			calls++
		}

		return true
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 9, nodes)
}

func TestErrors(t *testing.T) {
	x := Int(1)

	err := NewTypeError(x, tp.Bytes, tp.Uint64)
	assert.Contains(t, err.Error(), "*ast.IntLit")
	assert.Contains(t, err.Error(), "expected bytes, got uint64")

	ierr := NewInputError(nil, "bad %v", 1)
	assert.Equal(t, "bad 1", ierr.Error())
}
