package tp

type (
	// Type is a stack type of a value an expression leaves on the stack.
	Type int
)

const (
	Uint64 Type = iota
	Bytes
	Any
	None
)

func (t Type) String() string {
	switch t {
	case Uint64:
		return "uint64"
	case Bytes:
		return "bytes"
	case Any:
		return "any"
	case None:
		return "none"
	default:
		return "Type(?)"
	}
}

// Satisfies reports whether a value of type t can be used where want is expected.
// Any accepts every value type, and a value of type Any is accepted by every value type.
// None never satisfies anything but None.
func (t Type) Satisfies(want Type) bool {
	switch {
	case t == want:
		return true
	case t == None || want == None:
		return false
	case t == Any || want == Any:
		return true
	}

	return false
}

func (t Type) IsValue() bool {
	return t != None
}
