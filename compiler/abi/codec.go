package abi

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"tlog.app/go/errors"
)

// Host values:
//
//	bool                   bool
//	uint<N>                uint64 for N <= 64, *big.Int otherwise (any unsigned or *big.Int accepted)
//	byte                   byte
//	address                [32]byte (or []byte of length 32)
//	string                 string
//	T[N], T[], (T1,...,Tn) []any (or []byte for byte arrays)

const maxOffset = 0xffff

var ErrNonCanonical = errors.New("non-canonical encoding")

func Encode(t TypeSpec, v any) ([]byte, error) {
	return appendValue(nil, t, v)
}

// Decode parses an encoding of t.
// The encoding must be the one Encode produces for the result.
func Decode(t TypeSpec, b []byte) (v any, err error) {
	v, err = decodeValue(t, b)
	if err != nil {
		return nil, err
	}

	enc, err := Encode(t, v)
	if err != nil {
		return nil, errors.Wrap(err, "reencode")
	}

	if !bytes.Equal(enc, b) {
		return nil, ErrNonCanonical
	}

	return v, nil
}

func appendValue(b []byte, t TypeSpec, v any) ([]byte, error) {
	switch t := t.(type) {
	case BoolType:
		x, ok := v.(bool)
		if !ok {
			return nil, valueError(t, v)
		}

		if x {
			return append(b, 0x80), nil
		}

		return append(b, 0), nil
	case UintType:
		return appendUint(b, t, v)
	case ByteType:
		x, ok := v.(byte)
		if !ok {
			return nil, valueError(t, v)
		}

		return append(b, x), nil
	case AddressType:
		switch x := v.(type) {
		case [AddressLength]byte:
			return append(b, x[:]...), nil
		case []byte:
			if len(x) == AddressLength {
				return append(b, x...), nil
			}
		}

		return nil, valueError(t, v)
	case StringType:
		x, ok := v.(string)
		if !ok {
			return nil, valueError(t, v)
		}

		if len(x) > maxOffset {
			return nil, errors.New("string too long: %d", len(x))
		}

		b = binary.BigEndian.AppendUint16(b, uint16(len(x)))

		return append(b, x...), nil
	case StaticArrayType:
		l, err := listOf(t, t.Elem, v)
		if err != nil {
			return nil, err
		}

		if len(l) != t.N {
			return nil, errors.New("%v: expected %d elements, got %d", t, t.N, len(l))
		}

		return appendList(b, repeat(t.Elem, t.N), l)
	case DynamicArrayType:
		l, err := listOf(t, t.Elem, v)
		if err != nil {
			return nil, err
		}

		if len(l) > maxOffset {
			return nil, errors.New("%v: too many elements: %d", t, len(l))
		}

		b = binary.BigEndian.AppendUint16(b, uint16(len(l)))

		return appendList(b, repeat(t.Elem, len(l)), l)
	case TupleType:
		l, ok := v.([]any)
		if !ok {
			return nil, valueError(t, v)
		}

		if len(l) != len(t.Elems) {
			return nil, errors.New("%v: expected %d elements, got %d", t, len(t.Elems), len(l))
		}

		return appendList(b, t.Elems, l)
	}

	panic(t)
}

func appendList(b []byte, types []TypeSpec, vals []any) (_ []byte, err error) {
	fs, head, err := Layout(types)
	if err != nil {
		return nil, err
	}

	st := len(b)
	b = append(b, make([]byte, head)...)

	for i, f := range fs {
		switch {
		case f.Bit >= 0:
			x, ok := vals[i].(bool)
			if !ok {
				return nil, errors.Wrap(valueError(f.Type, vals[i]), "element %d", i)
			}

			if x {
				b[st+f.Bit/8] |= 0x80 >> (f.Bit % 8)
			}
		case f.Type.IsDynamic():
			off := len(b) - st
			if off > maxOffset {
				return nil, errors.New("element %d: offset overflow: %d", i, off)
			}

			binary.BigEndian.PutUint16(b[st+f.Offset:], uint16(off))

			b, err = appendValue(b, f.Type, vals[i])
			if err != nil {
				return nil, errors.Wrap(err, "element %d", i)
			}
		default:
			enc, err := Encode(f.Type, vals[i])
			if err != nil {
				return nil, errors.Wrap(err, "element %d", i)
			}

			copy(b[st+f.Offset:], enc)
		}
	}

	return b, nil
}

func appendUint(b []byte, t UintType, v any) ([]byte, error) {
	var x big.Int

	switch v := v.(type) {
	case uint64:
		x.SetUint64(v)
	case uint:
		x.SetUint64(uint64(v))
	case uint32:
		x.SetUint64(uint64(v))
	case uint16:
		x.SetUint64(uint64(v))
	case uint8:
		x.SetUint64(uint64(v))
	case int:
		x.SetInt64(int64(v))
	case *big.Int:
		x.Set(v)
	default:
		return nil, valueError(t, v)
	}

	if x.Sign() < 0 || x.BitLen() > t.N {
		return nil, errors.New("%v: value out of range: %v", t, &x)
	}

	return append(b, x.FillBytes(make([]byte, t.N/8))...), nil
}

func listOf(t, elem TypeSpec, v any) ([]any, error) {
	switch v := v.(type) {
	case []any:
		return v, nil
	case []byte:
		if _, ok := elem.(ByteType); !ok {
			break
		}

		l := make([]any, len(v))
		for i, c := range v {
			l[i] = c
		}

		return l, nil
	}

	return nil, valueError(t, v)
}

func decodeValue(t TypeSpec, b []byte) (any, error) {
	switch t := t.(type) {
	case BoolType:
		if len(b) != 1 {
			return nil, lengthError(t, 1, len(b))
		}

		switch b[0] {
		case 0x80:
			return true, nil
		case 0:
			return false, nil
		}

		return nil, errors.New("bad bool: %#x", b[0])
	case UintType:
		if len(b) != t.N/8 {
			return nil, lengthError(t, t.N/8, len(b))
		}

		if t.N > 64 {
			return new(big.Int).SetBytes(b), nil
		}

		var x uint64
		for _, c := range b {
			x = x<<8 | uint64(c)
		}

		return x, nil
	case ByteType:
		if len(b) != 1 {
			return nil, lengthError(t, 1, len(b))
		}

		return b[0], nil
	case AddressType:
		if len(b) != AddressLength {
			return nil, lengthError(t, AddressLength, len(b))
		}

		return [AddressLength]byte(b), nil
	case StringType:
		n, err := lengthPrefix(t, b)
		if err != nil {
			return nil, err
		}

		if len(b) != OffsetSize+n {
			return nil, lengthError(t, OffsetSize+n, len(b))
		}

		return string(b[OffsetSize:]), nil
	case StaticArrayType:
		return decodeList(repeat(t.Elem, t.N), b)
	case DynamicArrayType:
		n, err := lengthPrefix(t, b)
		if err != nil {
			return nil, err
		}

		return decodeList(repeat(t.Elem, n), b[OffsetSize:])
	case TupleType:
		return decodeList(t.Elems, b)
	}

	panic(t)
}

func decodeList(types []TypeSpec, b []byte) ([]any, error) {
	fs, head, err := Layout(types)
	if err != nil {
		return nil, err
	}

	if len(b) < head {
		return nil, errors.New("head: expected %d bytes, got %d", head, len(b))
	}

	if !hasDynamic(fs) && len(b) != head {
		return nil, errors.New("%d trailing bytes", len(b)-head)
	}

	res := make([]any, len(fs))

	for i, f := range fs {
		switch {
		case f.Bit >= 0:
			res[i] = b[f.Bit/8]&(0x80>>(f.Bit%8)) != 0
		case f.Type.IsDynamic():
			st := int(binary.BigEndian.Uint16(b[f.Offset:]))
			end := len(b)

			if j := nextDynamic(fs, i); j >= 0 {
				end = int(binary.BigEndian.Uint16(b[fs[j].Offset:]))
			}

			if st < head || st > end || end > len(b) {
				return nil, errors.New("element %d: bad offsets: [%d:%d] of %d", i, st, end, len(b))
			}

			res[i], err = decodeValue(f.Type, b[st:end])
			if err != nil {
				return nil, errors.Wrap(err, "element %d", i)
			}
		default:
			res[i], err = decodeValue(f.Type, b[f.Offset:f.Offset+f.Size])
			if err != nil {
				return nil, errors.Wrap(err, "element %d", i)
			}
		}
	}

	return res, nil
}

func lengthPrefix(t TypeSpec, b []byte) (int, error) {
	if len(b) < OffsetSize {
		return 0, errors.New("%v: no length prefix", t)
	}

	return int(binary.BigEndian.Uint16(b)), nil
}

func valueError(t TypeSpec, v any) error {
	return errors.New("%v: unexpected value %T", t, v)
}

func lengthError(t TypeSpec, exp, act int) error {
	return errors.New("%v: expected %d bytes, got %d", t, exp, act)
}
