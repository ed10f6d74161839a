package abi

import (
	"github.com/slowlang/teal/compiler/ast"
)

// Element is an element of a tuple or an array selected by a static or runtime index.
type Element struct {
	Value *Value
	Type  TypeSpec

	index int
	at    ast.Expr
}

// Element selects element i. The index is checked when the length is known.
func (v *Value) Element(i int) (*Element, error) {
	if t, ok := v.Spec.(TupleType); ok {
		if i < 0 || i >= len(t.Elems) {
			return nil, ast.NewInputError(nil, "index %d out of bounds for %v", i, t)
		}

		return &Element{Value: v, Type: t.Elems[i], index: i}, nil
	}

	elem, n, ok := elemOf(v.Spec)
	if !ok {
		return nil, ast.NewInputError(nil, "%v has no elements", v.Spec)
	}

	if i < 0 || n >= 0 && i >= n {
		return nil, ast.NewInputError(nil, "index %d out of bounds for %v", i, v.Spec)
	}

	return &Element{Value: v, Type: elem, index: i}, nil
}

// ElementAt selects an array element by a runtime index.
// The index expression is evaluated more than once so it must have no side effects.
func (v *Value) ElementAt(i ast.Expr) (*Element, error) {
	if c, ok := ast.ConstUint(i); ok && c <= uint64(maxOffset) {
		return v.Element(int(c))
	}

	elem, _, ok := elemOf(v.Spec)
	if !ok {
		return nil, ast.NewInputError(i, "%v can't be indexed at runtime", v.Spec)
	}

	return &Element{Value: v, Type: elem, index: -1, at: i}, nil
}

// Store decodes the element into out.
func (e *Element) Store(out *Value) (ast.Expr, error) {
	if !Equal(e.Type, out.Spec) {
		return nil, TypeError{Expected: e.Type, Actual: out.Spec}
	}

	if t, ok := e.Value.Spec.(TupleType); ok {
		return indexTuple(t.Elems, e.Value.Var.Load, e.index, out)
	}

	return e.indexArray(out)
}

func indexTuple(types []TypeSpec, enc func() ast.Expr, i int, out *Value) (ast.Expr, error) {
	fs, _, err := Layout(types)
	if err != nil {
		return nil, err
	}

	f := fs[i]

	switch {
	case f.Bit >= 0:
		return out.decodeBit(enc(), ast.Int(uint64(f.Bit))), nil
	case f.Type.IsDynamic():
		r := Range{Start: ast.ExtractUint16(enc(), ast.Int(uint64(f.Offset)))}

		if j := nextDynamic(fs, i); j >= 0 {
			r.End = ast.ExtractUint16(enc(), ast.Int(uint64(fs[j].Offset)))
		}

		return out.Decode(enc(), r)
	}

	start := ast.Int(uint64(f.Offset))
	length := ast.Int(uint64(f.Size))
	last := i+1 == len(fs) && !hasDynamic(fs)

	switch {
	case last && f.Offset == 0:
		return out.Decode(enc(), Range{})
	case last:
		return out.Decode(enc(), Range{Start: start})
	case f.Offset == 0:
		return out.Decode(enc(), Range{Length: length})
	}

	return out.Decode(enc(), Range{Start: start, Length: length})
}

func (e *Element) indexArray(out *Value) (ast.Expr, error) {
	enc := e.Value.Var.Load

	_, n, _ := elemOf(e.Value.Spec)

	prefix := 0
	if n < 0 {
		prefix = OffsetSize
	}

	idx := e.at
	if idx == nil {
		idx = ast.Int(uint64(e.index))
	}

	if isBool(e.Type) {
		return out.decodeBit(enc(), addConst(idx, prefix*8)), nil
	}

	if !e.Type.IsDynamic() {
		size, err := e.Type.ByteLengthStatic()
		if err != nil {
			return nil, err
		}

		return out.Decode(enc(), Range{
			Start:  addConst(mulConst(idx, size), prefix),
			Length: ast.Int(uint64(size)),
		})
	}

	// dynamic elements: offsets in the head are relative to the end of the length prefix
	start := addConst(ast.ExtractUint16(enc(), addConst(mulConst(idx, OffsetSize), prefix)), prefix)
	next := addConst(ast.ExtractUint16(enc(), addConst(mulConst(idx, OffsetSize), prefix+OffsetSize)), prefix)

	var end ast.Expr

	switch {
	case e.at == nil && n >= 0 && e.index+1 == n:
		end = ast.Len(enc())
	case e.at == nil && n >= 0:
		end = next
	default:
		length, err := e.Value.Length()
		if err != nil {
			return nil, err
		}

		end = ast.IfElse(ast.Eq(addConst(idx, 1), length), ast.Len(enc()), next)
	}

	return out.Decode(enc(), Range{Start: start, End: end})
}
