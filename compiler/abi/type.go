package abi

import (
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/slowlang/teal/compiler/tp"
)

type (
	// TypeSpec describes an ABI type.
	// The set of specs is closed: only this package implements it.
	TypeSpec interface {
		IsDynamic() bool
		ByteLengthStatic() (int, error)
		StorageType() tp.Type
		String() string

		// NewInstance allocates a value of the type in a fresh scratch slot.
		NewInstance() *Value

		typeSpec()
	}

	BoolType struct{}

	UintType struct {
		N int
	}

	ByteType struct{}

	// AddressType is byte[32].
	AddressType struct{}

	// StringType is byte[] holding utf-8 text.
	StringType struct{}

	StaticArrayType struct {
		Elem TypeSpec
		N    int
	}

	DynamicArrayType struct {
		Elem TypeSpec
	}

	TupleType struct {
		Elems []TypeSpec
	}

	DynamicLengthError struct {
		Type TypeSpec
	}
)

const AddressLength = 32

var (
	Bool    = BoolType{}
	Byte    = ByteType{}
	Address = AddressType{}
	String  = StringType{}

	Uint8  = UintType{N: 8}
	Uint16 = UintType{N: 16}
	Uint32 = UintType{N: 32}
	Uint64 = UintType{N: 64}
)

func NewUint(n int) (UintType, error) {
	if n < 8 || n > 512 || n%8 != 0 {
		return UintType{}, errors.New("bad uint size: %d", n)
	}

	return UintType{N: n}, nil
}

func StaticArray(elem TypeSpec, n int) StaticArrayType {
	return StaticArrayType{Elem: elem, N: n}
}

func DynamicArray(elem TypeSpec) DynamicArrayType {
	return DynamicArrayType{Elem: elem}
}

func Tuple(elems ...TypeSpec) TupleType {
	return TupleType{Elems: elems}
}

// Equal compares types structurally.
func Equal(a, b TypeSpec) bool {
	return a.String() == b.String()
}

func (BoolType) typeSpec()         {}
func (UintType) typeSpec()         {}
func (ByteType) typeSpec()         {}
func (AddressType) typeSpec()      {}
func (StringType) typeSpec()       {}
func (StaticArrayType) typeSpec()  {}
func (DynamicArrayType) typeSpec() {}
func (TupleType) typeSpec()        {}

func (t BoolType) NewInstance() *Value         { return newValue(t) }
func (t UintType) NewInstance() *Value         { return newValue(t) }
func (t ByteType) NewInstance() *Value         { return newValue(t) }
func (t AddressType) NewInstance() *Value      { return newValue(t) }
func (t StringType) NewInstance() *Value       { return newValue(t) }
func (t StaticArrayType) NewInstance() *Value  { return newValue(t) }
func (t DynamicArrayType) NewInstance() *Value { return newValue(t) }
func (t TupleType) NewInstance() *Value        { return newValue(t) }

func (BoolType) IsDynamic() bool          { return false }
func (UintType) IsDynamic() bool          { return false }
func (ByteType) IsDynamic() bool          { return false }
func (AddressType) IsDynamic() bool       { return false }
func (StringType) IsDynamic() bool        { return true }
func (t StaticArrayType) IsDynamic() bool { return t.Elem.IsDynamic() }
func (DynamicArrayType) IsDynamic() bool  { return true }

func (t TupleType) IsDynamic() bool {
	for _, e := range t.Elems {
		if e.IsDynamic() {
			return true
		}
	}

	return false
}

func (BoolType) ByteLengthStatic() (int, error)    { return 1, nil }
func (t UintType) ByteLengthStatic() (int, error)  { return t.N / 8, nil }
func (ByteType) ByteLengthStatic() (int, error)    { return 1, nil }
func (AddressType) ByteLengthStatic() (int, error) { return AddressLength, nil }

func (t StringType) ByteLengthStatic() (int, error) {
	return 0, DynamicLengthError{Type: t}
}

func (t StaticArrayType) ByteLengthStatic() (int, error) {
	if t.IsDynamic() {
		return 0, DynamicLengthError{Type: t}
	}

	if _, ok := t.Elem.(BoolType); ok {
		return BoolSequenceLength(t.N), nil
	}

	l, err := t.Elem.ByteLengthStatic()
	if err != nil {
		return 0, err
	}

	return t.N * l, nil
}

func (t DynamicArrayType) ByteLengthStatic() (int, error) {
	return 0, DynamicLengthError{Type: t}
}

func (t TupleType) ByteLengthStatic() (int, error) {
	if t.IsDynamic() {
		return 0, DynamicLengthError{Type: t}
	}

	_, l, err := Layout(t.Elems)

	return l, err
}

func (BoolType) StorageType() tp.Type { return tp.Uint64 }
func (ByteType) StorageType() tp.Type { return tp.Uint64 }

func (t UintType) StorageType() tp.Type {
	if t.N > 64 {
		return tp.Bytes
	}

	return tp.Uint64
}

func (AddressType) StorageType() tp.Type      { return tp.Bytes }
func (StringType) StorageType() tp.Type       { return tp.Bytes }
func (StaticArrayType) StorageType() tp.Type  { return tp.Bytes }
func (DynamicArrayType) StorageType() tp.Type { return tp.Bytes }
func (TupleType) StorageType() tp.Type        { return tp.Bytes }

func (BoolType) String() string    { return "bool" }
func (t UintType) String() string  { return "uint" + strconv.Itoa(t.N) }
func (ByteType) String() string    { return "byte" }
func (AddressType) String() string { return "address" }
func (StringType) String() string  { return "string" }

func (t StaticArrayType) String() string {
	return t.Elem.String() + "[" + strconv.Itoa(t.N) + "]"
}

func (t DynamicArrayType) String() string {
	return t.Elem.String() + "[]"
}

func (t TupleType) String() string {
	var b strings.Builder

	b.WriteByte('(')

	for i, e := range t.Elems {
		if i != 0 {
			b.WriteByte(',')
		}

		b.WriteString(e.String())
	}

	b.WriteByte(')')

	return b.String()
}

func (e DynamicLengthError) Error() string {
	return "type " + e.Type.String() + " is dynamic"
}

// elemOf returns the element type and the static length of array-like types.
// n is -1 for dynamic lengths.
func elemOf(t TypeSpec) (elem TypeSpec, n int, ok bool) {
	switch t := t.(type) {
	case StaticArrayType:
		return t.Elem, t.N, true
	case DynamicArrayType:
		return t.Elem, -1, true
	case AddressType:
		return Byte, AddressLength, true
	case StringType:
		return Byte, -1, true
	}

	return nil, 0, false
}
