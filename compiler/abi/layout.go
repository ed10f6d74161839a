package abi

import "tlog.app/go/errors"

// Field is the place of one element in the head of a tuple or array encoding.
type Field struct {
	Type TypeSpec

	// Offset is the head byte holding the element,
	// or the offset slot of a dynamic element.
	Offset int

	// Bit is the absolute bit of a bool element, -1 otherwise.
	Bit int

	// Size is the number of head bytes the element takes.
	// A run of bools is accounted to its first element.
	Size int
}

// OffsetSize is the byte width of offsets and lengths.
const OffsetSize = 2

func BoolSequenceLength(n int) int {
	return (n + 7) / 8
}

// Layout places types one after another the way tuples and arrays are encoded.
// Consecutive bools share bytes, dynamic elements take an offset slot.
func Layout(types []TypeSpec) (fs []Field, head int, err error) {
	fs = make([]Field, len(types))

	for i := 0; i < len(types); {
		if isBool(types[i]) {
			j := i
			for j < len(types) && isBool(types[j]) {
				j++
			}

			for k := i; k < j; k++ {
				p := k - i

				fs[k] = Field{Type: types[k], Offset: head + p/8, Bit: head*8 + p}
			}

			n := BoolSequenceLength(j - i)

			fs[i].Size = n
			head += n
			i = j

			continue
		}

		f := Field{Type: types[i], Offset: head, Bit: -1, Size: OffsetSize}

		if !types[i].IsDynamic() {
			f.Size, err = types[i].ByteLengthStatic()
			if err != nil {
				return nil, 0, errors.Wrap(err, "element %d", i)
			}
		}

		fs[i] = f
		head += f.Size
		i++
	}

	return fs, head, nil
}

// nextDynamic returns the index of the first dynamic field after i or -1.
func nextDynamic(fs []Field, i int) int {
	for j := i + 1; j < len(fs); j++ {
		if fs[j].Type.IsDynamic() {
			return j
		}
	}

	return -1
}

func hasDynamic(fs []Field) bool {
	return nextDynamic(fs, -1) >= 0
}

func isBool(t TypeSpec) bool {
	_, ok := t.(BoolType)
	return ok
}

func repeat(t TypeSpec, n int) []TypeSpec {
	l := make([]TypeSpec, n)

	for i := range l {
		l[i] = t
	}

	return l
}
