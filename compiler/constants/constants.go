package constants

import (
	"container/heap"
	"context"
	"encoding/hex"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/teal/compiler/ir"
)

type (
	constant struct {
		key   string
		value any // uint64, ir.Bytes or ir.Tmpl
		freq  int
		first int
	}

	// byFreq pops the most frequent constant first, then the one seen first.
	byFreq []*constant

	pool struct {
		index map[string]*constant
		order []*constant
	}
)

var (
	intRefs  = []*ir.Op{ir.OpIntc0, ir.OpIntc1, ir.OpIntc2, ir.OpIntc3}
	byteRefs = []*ir.Op{ir.OpBytec0, ir.OpBytec1, ir.OpBytec2, ir.OpBytec3}
)

// Optimize moves int and byte literals used more than once into constant blocks
// and turns the rest into push instructions.
// The result pushes the same values in the same order.
func Optimize(ctx context.Context, lines []ir.Line) (r []ir.Line, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "constants")
	defer tr.Finish("err", &err)

	ints := newPool()
	bytes := newPool()

	for _, l := range lines {
		x, ok := l.(ir.Instr)
		if !ok {
			continue
		}

		switch x.Op {
		case ir.OpInt:
			k, v, err := intKey(x)
			if err != nil {
				return nil, err
			}

			ints.add(k, v)
		case ir.OpByte:
			k, v, err := bytesKey(x)
			if err != nil {
				return nil, err
			}

			bytes.add(k, v)
		}
	}

	intBlock := ints.block()
	byteBlock := bytes.block()

	tr.Printw("constant pools", "ints", len(ints.order), "int_block", len(intBlock), "bytes", len(bytes.order), "byte_block", len(byteBlock))

	r = make([]ir.Line, 0, len(lines)+2)

	if len(intBlock) != 0 {
		r = append(r, ir.Instr{Op: ir.OpIntcBlock, Args: values(intBlock)})
	}

	if len(byteBlock) != 0 {
		r = append(r, ir.Instr{Op: ir.OpBytecBlock, Args: values(byteBlock)})
	}

	for _, l := range lines {
		x, ok := l.(ir.Instr)
		if !ok {
			r = append(r, l)
			continue
		}

		switch x.Op {
		case ir.OpInt:
			k, _, _ := intKey(x)
			x = ref(x, ints.index[k], intBlock, ir.OpPushInt, ir.OpIntc, intRefs)
		case ir.OpByte:
			k, _, _ := bytesKey(x)
			x = ref(x, bytes.index[k], byteBlock, ir.OpPushBytes, ir.OpBytec, byteRefs)
		}

		r = append(r, x)
	}

	return r, nil
}

func ref(x ir.Instr, c *constant, block []*constant, push, indexed *ir.Op, short []*ir.Op) ir.Instr {
	comment := text(x.Args[0])

	if c.freq == 1 {
		return ir.Instr{Op: push, Args: []any{c.value}, Comment: comment, Src: x.Src}
	}

	i := 0
	for block[i] != c {
		i++
	}

	if i < len(short) {
		return ir.Instr{Op: short[i], Comment: comment, Src: x.Src}
	}

	return ir.Instr{Op: indexed, Args: []any{i}, Comment: comment, Src: x.Src}
}

func intKey(x ir.Instr) (string, any, error) {
	if len(x.Args) != 1 {
		return "", nil, errors.New("int: expected one argument, got %d", len(x.Args))
	}

	switch v := x.Args[0].(type) {
	case uint64:
		return "i" + strconv.FormatUint(v, 10), v, nil
	case int:
		return "i" + strconv.Itoa(v), uint64(v), nil
	case ir.Tmpl:
		return "t" + string(v), v, nil
	default:
		return "", nil, errors.New("int: unsupported argument: %T", v)
	}
}

func bytesKey(x ir.Instr) (string, any, error) {
	if len(x.Args) != 1 {
		return "", nil, errors.New("byte: expected one argument, got %d", len(x.Args))
	}

	switch v := x.Args[0].(type) {
	case ir.Bytes:
		h := ir.HexBytes(v.Value)

		return "b" + hex.EncodeToString(v.Value), h, nil
	case ir.Tmpl:
		return "t" + string(v), v, nil
	default:
		return "", nil, errors.New("byte: unsupported argument: %T", v)
	}
}

func text(a any) string {
	switch a := a.(type) {
	case ir.Bytes:
		return a.Text
	case ir.Tmpl:
		return string(a)
	case uint64:
		return strconv.FormatUint(a, 10)
	case int:
		return strconv.Itoa(a)
	default:
		return ""
	}
}

func newPool() *pool {
	return &pool{index: map[string]*constant{}}
}

func (p *pool) add(k string, v any) {
	c, ok := p.index[k]
	if !ok {
		c = &constant{key: k, value: v, first: len(p.order)}

		p.index[k] = c
		p.order = append(p.order, c)
	}

	c.freq++
}

// block returns constants used more than once, most frequent first.
func (p *pool) block() (r []*constant) {
	h := make(byFreq, 0, len(p.order))

	for _, c := range p.order {
		if c.freq > 1 {
			h = append(h, c)
		}
	}

	heap.Init(&h)

	for h.Len() != 0 {
		r = append(r, heap.Pop(&h).(*constant))
	}

	return r
}

func values(cs []*constant) []any {
	r := make([]any, len(cs))

	for i, c := range cs {
		r[i] = c.value
	}

	return r
}

func (h byFreq) Len() int { return len(h) }

func (h byFreq) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq > h[j].freq
	}

	return h[i].first < h[j].first
}

func (h byFreq) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *byFreq) Push(x any) { *h = append(*h, x.(*constant)) }

func (h *byFreq) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]

	return x
}
