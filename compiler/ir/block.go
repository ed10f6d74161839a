package ir

import (
	mapset "github.com/deckarep/golang-set/v2"
	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	// Block is a basic block: straight-line code and a successor descriptor.
	// Simple blocks fall through to Next (nil is the end of the unit),
	// conditional blocks pop a uint64 and continue at True or False.
	Block struct {
		Kind Kind
		Ops  []Instr

		Next        *Block
		True, False *Block

		incoming []*Block
	}
)

const (
	Simple Kind = iota
	Conditional
)

func NewBlock(ops ...Instr) *Block {
	return &Block{Kind: Simple, Ops: ops}
}

func NewCondBlock(ops ...Instr) *Block {
	return &Block{Kind: Conditional, Ops: ops}
}

func (b *Block) SetNext(n *Block) {
	if b.Kind != Simple {
		panic("set next on conditional block")
	}

	b.Next = n
}

func (b *Block) SetBranches(t, f *Block) {
	if b.Kind != Conditional {
		panic("set branches on simple block")
	}

	b.True, b.False = t, f
}

func (b *Block) Outgoing() []*Block {
	switch b.Kind {
	case Conditional:
		return []*Block{b.True, b.False}
	default:
		if b.Next == nil {
			return nil
		}

		return []*Block{b.Next}
	}
}

func (b *Block) replaceOutgoing(old, new *Block) {
	switch b.Kind {
	case Conditional:
		if b.True == old {
			b.True = new
		}
		if b.False == old {
			b.False = new
		}
	default:
		if b.Next == old {
			b.Next = new
		}
	}
}

// IsTerminal reports whether control never leaves the block through a successor.
func (b *Block) IsTerminal() bool {
	for _, x := range b.Ops {
		switch x.Op {
		case OpReturn, OpRetSub, OpErr:
			return true
		}
	}

	return b.Kind == Simple && b.Next == nil
}

// Iterate visits blocks reachable from start breadth first.
func Iterate(start *Block, f func(b *Block)) {
	seen := mapset.NewThreadUnsafeSet[*Block]()
	q := []*Block{start}

	seen.Add(start)

	for len(q) != 0 {
		b := q[0]
		q = q[1:]

		f(b)

		if b.IsTerminal() {
			continue
		}

		for _, n := range b.Outgoing() {
			if n == nil || !seen.Add(n) {
				continue
			}

			q = append(q, n)
		}
	}
}

func Reachable(start *Block) (r []*Block) {
	Iterate(start, func(b *Block) {
		r = append(r, b)
	})

	return r
}

// Validate checks the successor descriptors of all reachable blocks.
func Validate(start *Block) (err error) {
	Iterate(start, func(b *Block) {
		if err != nil || b.IsTerminal() {
			return
		}

		if b.Kind == Conditional && (b.True == nil || b.False == nil) {
			err = errors.New("conditional block without branch target")
		}
	})

	return err
}

// Normalize merges every block into its successor when it is the only way in.
// It returns the new entry block.
func Normalize(start *Block) *Block {
	order := Reachable(start)

	for _, b := range order {
		b.incoming = b.incoming[:0]
	}

	for _, b := range order {
		if b.IsTerminal() {
			continue
		}

		for _, n := range b.Outgoing() {
			n.incoming = append(n.incoming, b)
		}
	}

	for _, b := range order {
		if b == start || len(b.incoming) != 1 {
			continue
		}

		prev := b.incoming[0]
		if prev == b || prev.Kind != Simple || prev.Next != b {
			continue
		}

		b.Ops = append(prev.Ops[:len(prev.Ops):len(prev.Ops)], b.Ops...)
		b.incoming = prev.incoming

		for _, in := range prev.incoming {
			in.replaceOutgoing(prev, b)
		}

		if prev == start {
			start = b
		}
	}

	return start
}

// Order lays blocks out depth first from start, taking the false branch first.
// end is moved to the back.
func Order(start, end *Block) []*Block {
	seen := mapset.NewThreadUnsafeSet[*Block]()
	stack := []*Block{start}

	var order []*Block

	for len(stack) != 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !seen.Add(b) {
			continue
		}

		order = append(order, b)

		if !b.IsTerminal() {
			stack = append(stack, b.Outgoing()...)
		}
	}

	for i, b := range order {
		if b != end {
			continue
		}

		order = append(order[:i], order[i+1:]...)
		order = append(order, b)

		break
	}

	return order
}

func (b *Block) TlogAppend(buf []byte) []byte {
	var e tlwire.Encoder

	buf = e.AppendMap(buf, 3)

	buf = e.AppendKeyInt(buf, "kind", int(b.Kind))
	buf = e.AppendKeyInt(buf, "ops", len(b.Ops))
	buf = e.AppendKeyInt(buf, "out", len(b.Outgoing()))

	return buf
}
