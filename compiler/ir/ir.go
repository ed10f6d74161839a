package ir

import (
	"encoding/hex"
	"sync/atomic"

	"tlog.app/go/loc"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Line is an element of a flattened program: Instr or Label.
	Line interface {
		line()
	}

	Instr struct {
		Op   *Op
		Args []any

		Comment string

		Src loc.PC
	}

	Label struct {
		Name    string
		Comment string
	}

	LabelRef string

	// Tmpl is a template placeholder substituted after compilation.
	Tmpl string

	// Bytes is a byte string literal with its source text form.
	Bytes struct {
		Value []byte
		Text  string
	}

	// Slot is a scratch space location identified by pointer.
	// Its index is assigned once for the whole program.
	Slot struct {
		Requested int
		Reserved  bool

		seq int64
	}
)

const NumSlots = 256

var slotSeq atomic.Int64

func NewSlot() *Slot {
	return &Slot{seq: slotSeq.Add(1)}
}

func NewReservedSlot(id int) *Slot {
	return &Slot{
		Requested: id,
		Reserved:  true,
		seq:       slotSeq.Add(1),
	}
}

// Seq is the slot creation order.
func (s *Slot) Seq() int64 { return s.seq }

func Ins(o *Op, args ...any) Instr {
	return Instr{Op: o, Args: args}
}

func HexBytes(v []byte) Bytes {
	return Bytes{Value: v, Text: "0x" + hex.EncodeToString(v)}
}

func (Instr) line() {}
func (Label) line() {}

func (x Instr) Is(o *Op) bool { return x.Op == o }

// Slots returns scratch slots referenced by the instruction arguments.
func (x Instr) Slots() (r []*Slot) {
	for _, a := range x.Args {
		if s, ok := a.(*Slot); ok {
			r = append(r, s)
		}
	}

	return r
}

func (x Instr) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)

	b = e.AppendString(b, "op")
	b = e.AppendString(b, x.Op.Name)

	b = e.AppendKeyInt(b, "args", len(x.Args))

	return b
}
