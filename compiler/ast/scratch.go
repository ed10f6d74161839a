package ast

import (
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

type (
	// ScratchLoad reads a scratch slot.
	// Index selects the slot at runtime when set.
	ScratchLoad struct {
		base

		Slot  *ir.Slot
		Index Expr
		T     tp.Type
	}

	ScratchStore struct {
		base

		Slot  *ir.Slot
		Index Expr
		Value Expr

		// T is the storage type Value must satisfy.
		T tp.Type
	}

	// ScratchStackStore stores the value on top of the stack.
	ScratchStackStore struct {
		base

		Slot *ir.Slot
	}

	// ScratchIndex pushes the slot index.
	ScratchIndex struct {
		base

		Slot *ir.Slot
	}

	// Var is a scratch variable. It is either backed by a slot of its own
	// or refers to one indirectly.
	Var interface {
		Load() Expr
		Store(v Expr) Expr
		Index() Expr
		StorageType() tp.Type

		storeStack() Expr
	}

	ScratchVar struct {
		T    tp.Type
		Slot *ir.Slot
	}

	// DynamicScratchVar holds the index of another slot
	// and reads and writes that slot.
	DynamicScratchVar struct {
		T        tp.Type
		IndexVar *ScratchVar
	}
)

func NewScratchVar(t tp.Type) *ScratchVar {
	return &ScratchVar{T: t, Slot: ir.NewSlot()}
}

// NewScratchVarAt reserves slot id for the variable.
func NewScratchVarAt(t tp.Type, id int) *ScratchVar {
	return &ScratchVar{T: t, Slot: ir.NewReservedSlot(id)}
}

func (v *ScratchVar) StorageType() tp.Type { return v.T }

func (v *ScratchVar) Load() Expr {
	return &ScratchLoad{base: at(), Slot: v.Slot, T: v.T}
}

func (v *ScratchVar) Store(x Expr) Expr {
	return &ScratchStore{base: at(), Slot: v.Slot, Value: x, T: v.T}
}

func (v *ScratchVar) Index() Expr {
	return &ScratchIndex{base: at(), Slot: v.Slot}
}

func (v *ScratchVar) storeStack() Expr {
	return &ScratchStackStore{base: at(), Slot: v.Slot}
}

func NewDynamicScratchVar(t tp.Type) *DynamicScratchVar {
	return &DynamicScratchVar{T: t, IndexVar: NewScratchVar(tp.Uint64)}
}

func (v *DynamicScratchVar) StorageType() tp.Type { return v.T }

// SetIndex makes v refer to the slot of x.
func (v *DynamicScratchVar) SetIndex(x *ScratchVar) Expr {
	return v.IndexVar.Store(x.Index())
}

func (v *DynamicScratchVar) Load() Expr {
	return &ScratchLoad{base: at(), Index: v.IndexVar.Load(), T: v.T}
}

func (v *DynamicScratchVar) Store(x Expr) Expr {
	return &ScratchStore{base: at(), Index: v.IndexVar.Load(), Value: x, T: v.T}
}

// Index is the index of the referenced slot.
func (v *DynamicScratchVar) Index() Expr {
	return v.IndexVar.Load()
}

func (v *DynamicScratchVar) storeStack() Expr {
	return v.IndexVar.storeStack()
}

func (x *ScratchLoad) Type() tp.Type       { return x.T }
func (x *ScratchStore) Type() tp.Type      { return tp.None }
func (x *ScratchStackStore) Type() tp.Type { return tp.None }
func (x *ScratchIndex) Type() tp.Type      { return tp.Uint64 }

func (x *ScratchLoad) HasReturn() bool       { return false }
func (x *ScratchStore) HasReturn() bool      { return false }
func (x *ScratchStackStore) HasReturn() bool { return false }
func (x *ScratchIndex) HasReturn() bool      { return false }
