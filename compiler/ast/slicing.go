package ast

import "github.com/slowlang/teal/compiler/tp"

type (
	// Substring is Base[Start:End].
	Substring struct {
		base

		Base, Start, End Expr
	}

	// Extract is Base[Start:Start+Length].
	Extract struct {
		base

		Base, Start, Length Expr
	}

	// Suffix is Base[Start:].
	Suffix struct {
		base

		Base, Start Expr
	}
)

func Substr(b, start, end Expr) *Substring {
	return &Substring{base: at(), Base: b, Start: start, End: end}
}

func ExtractBytes(b, start, length Expr) *Extract {
	return &Extract{base: at(), Base: b, Start: start, Length: length}
}

func SuffixBytes(b, start Expr) *Suffix {
	return &Suffix{base: at(), Base: b, Start: start}
}

func (x *Substring) Type() tp.Type { return tp.Bytes }
func (x *Extract) Type() tp.Type   { return tp.Bytes }
func (x *Suffix) Type() tp.Type    { return tp.Bytes }

func (x *Substring) HasReturn() bool { return false }
func (x *Extract) HasReturn() bool   { return false }
func (x *Suffix) HasReturn() bool    { return false }

// ConstUint returns the value of a literal uint64 expression.
func ConstUint(x Expr) (uint64, bool) {
	l, ok := x.(*IntLit)
	if !ok {
		return 0, false
	}

	return l.Value, true
}
