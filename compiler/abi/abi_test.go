package abi

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTupleUints(t *testing.T) {
	tt := Tuple(Uint8, Uint16, Uint32)

	l, err := tt.ByteLengthStatic()
	require.NoError(t, err)
	assert.Equal(t, 7, l)

	b, err := Encode(tt, []any{uint64(1), uint64(2), uint64(3)})
	require.NoError(t, err)
	assert.Equal(t, "01000200000003", hex.EncodeToString(b))

	v, err := Decode(tt, b)
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(2), uint64(3)}, v)
}

func TestBoolSequenceLength(t *testing.T) {
	for n := 0; n < 40; n++ {
		exp := n / 8
		if n%8 != 0 {
			exp++
		}

		assert.Equal(t, exp, BoolSequenceLength(n), "n=%d", n)
	}
}

func TestBoolPacking(t *testing.T) {
	bools := func(n int) []any {
		l := make([]any, n)
		for i := range l {
			l[i] = i%2 == 0
		}

		return l
	}

	b, err := Encode(StaticArray(Bool, 8), bools(8))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, b)

	b, err = Encode(StaticArray(Bool, 9), bools(9))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0x80}, b)

	l, err := StaticArray(Bool, 10).ByteLengthStatic()
	require.NoError(t, err)
	assert.Equal(t, 2, l)

	tt := Tuple(Uint8, Bool, Bool, Uint8, Bool)

	l, err = tt.ByteLengthStatic()
	require.NoError(t, err)
	assert.Equal(t, 4, l)

	b, err = Encode(tt, []any{uint64(1), false, true, uint64(2), true})
	require.NoError(t, err)
	assert.Equal(t, "01400280", hex.EncodeToString(b))
}

func TestLayout(t *testing.T) {
	fs, head, err := Layout([]TypeSpec{Uint64, DynamicArray(Uint64), Uint64, DynamicArray(Uint16)})
	require.NoError(t, err)

	assert.Equal(t, 20, head)
	assert.Equal(t, []Field{
		{Type: Uint64, Offset: 0, Bit: -1, Size: 8},
		{Type: DynamicArray(Uint64), Offset: 8, Bit: -1, Size: 2},
		{Type: Uint64, Offset: 10, Bit: -1, Size: 8},
		{Type: DynamicArray(Uint16), Offset: 18, Bit: -1, Size: 2},
	}, fs)

	fs, head, err = Layout(repeat(Bool, 10))
	require.NoError(t, err)

	assert.Equal(t, 2, head)
	assert.Equal(t, 9, fs[9].Bit)
	assert.Equal(t, 1, fs[9].Offset)
	assert.Equal(t, 2, fs[0].Size)
	assert.Equal(t, 0, fs[9].Size)
}

func TestTupleOffsets(t *testing.T) {
	tt := Tuple(Uint64, DynamicArray(Uint64), Uint64, DynamicArray(Uint16))

	b, err := Encode(tt, []any{
		uint64(1),
		[]any{uint64(2), uint64(3), uint64(4)},
		uint64(5),
		[]any{uint64(6)},
	})
	require.NoError(t, err)

	assert.Equal(t, "0014", hex.EncodeToString(b[8:10]))
	assert.Equal(t, 20+2+3*8, int(b[18])<<8|int(b[19]))
	assert.Len(t, b, 20+2+3*8+2+2)
}

func TestByteLengthStatic(t *testing.T) {
	l, err := Tuple().ByteLengthStatic()
	require.NoError(t, err)
	assert.Equal(t, 0, l)

	for _, tt := range []TypeSpec{
		DynamicArray(Uint64),
		DynamicArray(Bool),
		DynamicArray(Tuple()),
		String,
		StaticArray(String, 2),
		Tuple(Bool, String),
	} {
		_, err := tt.ByteLengthStatic()

		var dl DynamicLengthError
		assert.ErrorAs(t, err, &dl, "%v", tt)
		assert.True(t, tt.IsDynamic(), "%v", tt)
	}

	l, err = Address.ByteLengthStatic()
	require.NoError(t, err)
	assert.Equal(t, 32, l)
}

func TestStringArray(t *testing.T) {
	b, err := Encode(StaticArray(String, 2), []any{"a", "bc"})
	require.NoError(t, err)
	assert.Equal(t, "0004000700016100026263", hex.EncodeToString(b))

	b, err = Encode(DynamicArray(Byte), []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "00026869", hex.EncodeToString(b))
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		T string
		V any
	}{
		{T: "bool", V: true},
		{T: "bool", V: false},
		{T: "uint64", V: uint64(1) << 63},
		{T: "uint16", V: uint64(65535)},
		{T: "uint24", V: uint64(1 << 20)},
		{T: "byte", V: byte(7)},
		{T: "address", V: [32]byte{1, 2, 3}},
		{T: "string", V: "hello"},
		{T: "string", V: ""},
		{T: "bool[3]", V: []any{true, false, true}},
		{T: "uint8[]", V: []any{uint64(1), uint64(2)}},
		{T: "byte[]", V: []any{}},
		{T: "()", V: []any{}},
		{T: "string[2]", V: []any{"a", "bc"}},
		{T: "(uint64,string,bool,bool,uint16[])", V: []any{uint64(5), "abc", true, false, []any{uint64(1)}}},
		{T: "(bool,(string,byte))[]", V: []any{[]any{true, []any{"x", byte(1)}}, []any{false, []any{"", byte(2)}}}},
		{T: "uint32[2][]", V: []any{[]any{uint64(1), uint64(2)}}},
	} {
		tt := MustParse(tc.T)

		b, err := Encode(tt, tc.V)
		require.NoError(t, err, "%v", tc.T)

		v, err := Decode(tt, b)
		require.NoError(t, err, "%v", tc.T)
		assert.Equal(t, tc.V, v, "%v", tc.T)

		b2, err := Encode(tt, v)
		require.NoError(t, err, "%v", tc.T)
		assert.Equal(t, b, b2, "%v", tc.T)
	}
}

func TestBigUint(t *testing.T) {
	tt := MustParse("uint256")

	x, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	b, err := Encode(tt, x)
	require.NoError(t, err)
	assert.Len(t, b, 32)

	v, err := Decode(tt, b)
	require.NoError(t, err)
	assert.Equal(t, 0, x.Cmp(v.(*big.Int)))

	_, err = Encode(Uint8, uint64(256))
	assert.Error(t, err)

	_, err = Encode(Uint8, -1)
	assert.Error(t, err)
}

func TestDecodeStrict(t *testing.T) {
	_, err := Decode(Bool, []byte{1})
	assert.Error(t, err)

	_, err = Decode(Uint8, []byte{1, 2})
	assert.Error(t, err)

	_, err = Decode(StaticArray(Bool, 3), []byte{0x10})
	assert.ErrorIs(t, err, ErrNonCanonical)

	_, err = Decode(String, []byte{0, 3, 'a'})
	assert.Error(t, err)

	// offset points before the end of the head
	_, err = Decode(StaticArray(String, 2), []byte{0, 2, 0, 4, 0, 0})
	assert.Error(t, err)

	_, err = Encode(StaticArray(Uint8, 2), []any{uint64(1)})
	assert.Error(t, err)

	_, err = Encode(Tuple(Bool), []any{1})
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	ctx := context.Background()

	for _, s := range []string{
		"bool",
		"uint512",
		"address[]",
		"(uint64,uint64[],bool[3],(byte,address),string)[2][]",
		"()",
		"((),())",
	} {
		tt, err := ParseType(ctx, s)
		require.NoError(t, err, "%v", s)
		assert.Equal(t, s, tt.String())
	}

	tt, err := ParseType(ctx, "(uint8,string)[4]")
	require.NoError(t, err)
	assert.Equal(t, StaticArray(Tuple(Uint8, String), 4), tt)

	for _, s := range []string{"uint7", "uint", "uint1024", "(uint8", "(uint8,", "uint8[", "uint8[3", "", ","} {
		_, err := ParseType(ctx, s)
		assert.Error(t, err, "%q", s)
	}

	_, err = ParseType(ctx, "foo")

	var te TypeExpectedError
	assert.ErrorAs(t, err, &te)

	_, err = ParseType(ctx, "uint8x")

	var pe PartialReadError
	if assert.ErrorAs(t, err, &pe) {
		assert.Equal(t, 5, pe.End)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(MustParse("(uint8,bool[2])"), Tuple(Uint8, StaticArray(Bool, 2))))
	assert.False(t, Equal(Byte, Uint8))
	assert.False(t, Equal(Address, StaticArray(Byte, 32)))
}
