package constants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/teal/compiler/ir"
)

func str(s string) ir.Bytes {
	return ir.Bytes{Value: []byte(s), Text: `"` + s + `"`}
}

func TestOptimize(t *testing.T) {
	ctx := context.Background()

	lines := []ir.Line{
		ir.Ins(ir.OpInt, uint64(5)),
		ir.Ins(ir.OpInt, uint64(1)),
		ir.Ins(ir.OpByte, str("a")),
		ir.Label{Name: "main_l1"},
		ir.Ins(ir.OpInt, uint64(1)),
		ir.Ins(ir.OpInt, uint64(7)),
		ir.Ins(ir.OpByte, str("a")),
		ir.Ins(ir.OpInt, uint64(7)),
		ir.Ins(ir.OpInt, uint64(1)),
		ir.Ins(ir.OpByte, str("b")),
		ir.Ins(ir.OpInt, ir.Tmpl("TMPL_X")),
	}

	r, err := Optimize(ctx, lines)
	require.NoError(t, err)

	exp := []ir.Line{
		ir.Instr{Op: ir.OpIntcBlock, Args: []any{uint64(1), uint64(7)}},
		ir.Instr{Op: ir.OpBytecBlock, Args: []any{ir.HexBytes([]byte("a"))}},
		ir.Instr{Op: ir.OpPushInt, Args: []any{uint64(5)}, Comment: "5"},
		ir.Instr{Op: ir.OpIntc0, Comment: "1"},
		ir.Instr{Op: ir.OpBytec0, Comment: `"a"`},
		ir.Label{Name: "main_l1"},
		ir.Instr{Op: ir.OpIntc0, Comment: "1"},
		ir.Instr{Op: ir.OpIntc1, Comment: "7"},
		ir.Instr{Op: ir.OpBytec0, Comment: `"a"`},
		ir.Instr{Op: ir.OpIntc1, Comment: "7"},
		ir.Instr{Op: ir.OpIntc0, Comment: "1"},
		ir.Instr{Op: ir.OpPushBytes, Args: []any{ir.HexBytes([]byte("b"))}, Comment: `"b"`},
		ir.Instr{Op: ir.OpPushInt, Args: []any{ir.Tmpl("TMPL_X")}, Comment: "TMPL_X"},
	}

	assert.Equal(t, exp, r)

	again, err := Optimize(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, r, again)
}

func TestOptimizeIndexed(t *testing.T) {
	var lines []ir.Line

	for v := uint64(0); v < 6; v++ {
		lines = append(lines, ir.Ins(ir.OpInt, v), ir.Ins(ir.OpInt, v))
	}

	r, err := Optimize(context.Background(), lines)
	require.NoError(t, err)

	require.Len(t, r, 13)
	assert.Equal(t, []any{uint64(0), uint64(1), uint64(2), uint64(3), uint64(4), uint64(5)}, r[0].(ir.Instr).Args)

	assert.Equal(t, ir.OpIntc3, r[7].(ir.Instr).Op)
	assert.Equal(t, ir.Instr{Op: ir.OpIntc, Args: []any{4}, Comment: "4"}, r[9])
	assert.Equal(t, ir.Instr{Op: ir.OpIntc, Args: []any{5}, Comment: "5"}, r[12])
}

func TestOptimizeTemplatesSeparate(t *testing.T) {
	lines := []ir.Line{
		ir.Ins(ir.OpByte, ir.Tmpl("TMPL_A")),
		ir.Ins(ir.OpByte, str("TMPL_A")),
		ir.Ins(ir.OpByte, ir.Tmpl("TMPL_A")),
	}

	r, err := Optimize(context.Background(), lines)
	require.NoError(t, err)

	assert.Equal(t, ir.Instr{Op: ir.OpBytecBlock, Args: []any{ir.Tmpl("TMPL_A")}}, r[0])
	assert.Equal(t, ir.OpBytec0, r[1].(ir.Instr).Op)
	assert.Equal(t, ir.OpPushBytes, r[2].(ir.Instr).Op)
}

func TestOptimizeFrequencyOrder(t *testing.T) {
	lines := []ir.Line{
		ir.Ins(ir.OpInt, uint64(10)),
		ir.Ins(ir.OpInt, uint64(20)),
		ir.Ins(ir.OpInt, uint64(20)),
		ir.Ins(ir.OpInt, uint64(10)),
		ir.Ins(ir.OpInt, uint64(20)),
		ir.Ins(ir.OpInt, uint64(30)),
		ir.Ins(ir.OpInt, uint64(30)),
	}

	r, err := Optimize(context.Background(), lines)
	require.NoError(t, err)

	assert.Equal(t, []any{uint64(20), uint64(10), uint64(30)}, r[0].(ir.Instr).Args)
}
