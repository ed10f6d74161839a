package abi

import (
	"fmt"

	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/tp"
)

type (
	// Value is an ABI value kept in a scratch slot.
	// Bool, byte and uint<N <= 64> keep their stack value,
	// every other type keeps its encoding.
	Value struct {
		Spec TypeSpec
		Var  *ast.ScratchVar
	}

	// Range selects a part of an encoding.
	// Nil Start is 0. End and Length are mutually exclusive.
	Range struct {
		Start  ast.Expr
		End    ast.Expr
		Length ast.Expr
	}

	// TypeError is a value of one ABI type used where another is expected.
	TypeError struct {
		Expected TypeSpec
		Actual   TypeSpec
	}
)

func newValue(t TypeSpec) *Value {
	return &Value{Spec: t, Var: ast.NewScratchVar(t.StorageType())}
}

// Stored is the slot content.
func (v *Value) Stored() ast.Expr {
	return v.Var.Load()
}

// Get is the value in its most usable stack form.
// Strings lose their length prefix.
func (v *Value) Get() ast.Expr {
	if _, ok := v.Spec.(StringType); ok {
		return ast.SuffixBytes(v.Var.Load(), ast.Int(OffsetSize))
	}

	return v.Var.Load()
}

// Encode is the encoding of the value.
func (v *Value) Encode() ast.Expr {
	switch t := v.Spec.(type) {
	case BoolType:
		return ast.SetBit(ast.BytesHex([]byte{0}), ast.Int(0), v.Var.Load())
	case ByteType:
		return ast.SetByte(ast.BytesHex([]byte{0}), ast.Int(0), v.Var.Load())
	case UintType:
		switch {
		case t.N == 8:
			return ast.SetByte(ast.BytesHex([]byte{0}), ast.Int(0), v.Var.Load())
		case t.N < 64:
			return ast.ExtractBytes(ast.Itob(v.Var.Load()), ast.Int(uint64(8-t.N/8)), ast.Int(uint64(t.N/8)))
		case t.N == 64:
			return ast.Itob(v.Var.Load())
		}
	}

	return v.Var.Load()
}

// Decode stores the value encoded in the r part of encoded.
func (v *Value) Decode(encoded ast.Expr, r Range) (ast.Expr, error) {
	if r.End != nil && r.Length != nil {
		return nil, ast.NewInputError(r.End, "end and length are mutually exclusive")
	}

	start := r.Start
	if start == nil {
		start = ast.Int(0)
	}

	switch t := v.Spec.(type) {
	case BoolType:
		return v.decodeBit(encoded, mulConst(start, 8)), nil
	case ByteType:
		return v.Var.Store(ast.GetByte(encoded, start)), nil
	case UintType:
		var x ast.Expr

		switch t.N {
		case 8:
			x = ast.GetByte(encoded, start)
		case 16:
			x = ast.ExtractUint16(encoded, start)
		case 32:
			x = ast.ExtractUint32(encoded, start)
		case 64:
			x = ast.ExtractUint64(encoded, start)
		default:
			x = ast.ExtractBytes(encoded, start, ast.Int(uint64(t.N/8)))

			if t.N < 64 {
				x = ast.Btoi(x)
			}
		}

		return v.Var.Store(x), nil
	}

	return v.Var.Store(substring(encoded, r)), nil
}

func (v *Value) decodeBit(encoded, bit ast.Expr) ast.Expr {
	return v.Var.Store(ast.GetBit(encoded, bit))
}

// Set stores a stack value.
// Bool, byte and uint values take their stack value, uint<N> is checked to fit N bits.
// Strings take the raw bytes, addresses take exactly 32 bytes.
func (v *Value) Set(x ast.Expr) (ast.Expr, error) {
	st := v.Spec.StorageType()

	switch v.Spec.(type) {
	case StringType, AddressType:
		st = tp.Bytes
	case StaticArrayType, DynamicArrayType, TupleType:
		return nil, ast.NewInputError(x, "%v can't be set from a stack value, decode it instead", v.Spec)
	}

	if !x.Type().Satisfies(st) {
		return nil, ast.NewTypeError(x, st, x.Type())
	}

	load := v.Var.Load

	switch t := v.Spec.(type) {
	case StringType:
		return ast.Do(
			v.Var.Store(x),
			v.Var.Store(ast.Concat(uint16Bytes(ast.Len(load())), load())),
		), nil
	case AddressType:
		return ast.Do(
			v.Var.Store(x),
			ast.Require(ast.Eq(ast.Len(load()), ast.Int(AddressLength))),
		), nil
	case ByteType:
		return ast.Do(
			v.Var.Store(x),
			ast.Require(ast.Lt(load(), ast.Int(1<<8))),
		), nil
	case UintType:
		switch {
		case t.N < 64:
			return ast.Do(
				v.Var.Store(x),
				ast.Require(ast.Lt(load(), ast.Int(1<<t.N))),
			), nil
		case t.N > 64:
			n := ast.Int(uint64(t.N / 8))

			return ast.Do(
				v.Var.Store(x),
				ast.Require(ast.Le(ast.Len(load()), n)),
				v.Var.Store(ast.BytesOr(ast.BytesZero(ast.Int(uint64(t.N/8))), load())),
			), nil
		}
	}

	return v.Var.Store(x), nil
}

// SetValue copies o which must be of the same type.
func (v *Value) SetValue(o *Value) (ast.Expr, error) {
	if !Equal(v.Spec, o.Spec) {
		return nil, TypeError{Expected: v.Spec, Actual: o.Spec}
	}

	return v.Var.Store(o.Var.Load()), nil
}

// SetValues stores the encoding of vals as the elements of a tuple or array.
func (v *Value) SetValues(vals ...*Value) (ast.Expr, error) {
	if t, ok := v.Spec.(TupleType); ok {
		if len(vals) != len(t.Elems) {
			return nil, ast.NewInputError(nil, "%v: expected %d elements, got %d", t, len(t.Elems), len(vals))
		}

		for i, x := range vals {
			if !Equal(t.Elems[i], x.Spec) {
				return nil, TypeError{Expected: t.Elems[i], Actual: x.Spec}
			}
		}

		return v.Var.Store(encodeList(vals)), nil
	}

	elem, n, ok := elemOf(v.Spec)
	if !ok {
		return nil, ast.NewInputError(nil, "%v has no elements", v.Spec)
	}

	if n >= 0 && len(vals) != n {
		return nil, ast.NewInputError(nil, "%v: expected %d elements, got %d", v.Spec, n, len(vals))
	}

	if n < 0 && len(vals) > maxOffset {
		return nil, ast.NewInputError(nil, "%v: too many elements: %d", v.Spec, len(vals))
	}

	for _, x := range vals {
		if !Equal(elem, x.Spec) {
			return nil, TypeError{Expected: elem, Actual: x.Spec}
		}
	}

	enc := encodeList(vals)

	if n < 0 {
		enc = ast.Concat(uint16Bytes(ast.Int(uint64(len(vals)))), enc)
	}

	return v.Var.Store(enc), nil
}

// Length is the number of elements of an array.
func (v *Value) Length() (ast.Expr, error) {
	_, n, ok := elemOf(v.Spec)

	switch {
	case !ok:
		return nil, ast.NewInputError(nil, "%v has no length", v.Spec)
	case n >= 0:
		return ast.Int(uint64(n)), nil
	}

	return ast.ExtractUint16(v.Var.Load(), ast.Int(0)), nil
}

// encodeList concatenates the head and tail of vals.
func encodeList(vals []*Value) ast.Expr {
	types := make([]TypeSpec, len(vals))

	for i, x := range vals {
		types[i] = x.Spec
	}

	fs, head, err := Layout(types)
	if err != nil {
		panic(err) // element types are static or dynamic, never invalid
	}

	var parts, tail, lens []ast.Expr

	for i := 0; i < len(fs); i++ {
		f := fs[i]

		switch {
		case f.Bit >= 0:
			var acc ast.Expr = ast.BytesHex(make([]byte, f.Size))

			j := i
			for ; j < len(fs) && fs[j].Bit >= 0; j++ {
				acc = ast.SetBit(acc, ast.Int(uint64(fs[j].Bit-f.Bit)), vals[j].Var.Load())
			}

			parts = append(parts, acc)
			i = j - 1
		case f.Type.IsDynamic():
			off := ast.Expr(ast.Int(uint64(head)))

			for _, l := range lens {
				off = ast.Add(off, l)
			}

			parts = append(parts, uint16Bytes(off))
			tail = append(tail, vals[i].Encode())
			lens = append(lens, ast.Len(vals[i].Encode()))
		default:
			parts = append(parts, vals[i].Encode())
		}
	}

	parts = append(parts, tail...)

	if len(parts) == 0 {
		return ast.Bytes("")
	}

	return ast.Concat(parts...)
}

func substring(encoded ast.Expr, r Range) ast.Expr {
	start := r.Start
	if start == nil {
		start = ast.Int(0)
	}

	switch {
	case r.Length != nil:
		return ast.ExtractBytes(encoded, start, r.Length)
	case r.End != nil:
		return ast.Substr(encoded, start, r.End)
	case r.Start != nil:
		return ast.SuffixBytes(encoded, start)
	}

	return encoded
}

// uint16Bytes is the 2 byte big endian encoding of x.
func uint16Bytes(x ast.Expr) ast.Expr {
	if c, ok := ast.ConstUint(x); ok && c <= maxOffset {
		return ast.BytesHex([]byte{byte(c >> 8), byte(c)})
	}

	return ast.ExtractBytes(ast.Itob(x), ast.Int(6), ast.Int(2))
}

func addConst(x ast.Expr, c int) ast.Expr {
	if c == 0 {
		return x
	}

	if v, ok := ast.ConstUint(x); ok {
		return ast.Int(v + uint64(c))
	}

	return ast.Add(x, ast.Int(uint64(c)))
}

func mulConst(x ast.Expr, c int) ast.Expr {
	if c == 1 {
		return x
	}

	if v, ok := ast.ConstUint(x); ok {
		return ast.Int(v * uint64(c))
	}

	return ast.Mul(x, ast.Int(uint64(c)))
}

func (e TypeError) Error() string {
	return fmt.Sprintf("abi type mismatch: expected %v, got %v", e.Expected, e.Actual)
}
