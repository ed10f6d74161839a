package abi

import (
	"context"
	"fmt"
	"strconv"

	"tlog.app/go/errors"
)

type (
	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (t TypeSpec, i int, err error)
	}

	// Basic is one of bool, byte, address, string or uint<N>.
	Basic struct{}

	// ArrayOf is Of followed by any number of [N] and [] suffixes.
	ArrayOf struct {
		Of Parser
	}

	// TupleOf is a parenthesized comma separated list of Elem.
	TupleOf struct {
		Elem Parser
	}

	AnyOf []Parser

	typeParser struct{}

	TypeExpectedError struct {
		Pos int
	}

	PartialReadError struct {
		End int
	}
)

// Grammar parses any type string.
var Grammar Parser = typeParser{}

func ParseType(ctx context.Context, s string) (t TypeSpec, err error) {
	t, i, err := Grammar.Parse(ctx, []byte(s), 0)
	if err != nil {
		return nil, errors.Wrap(err, "parse %q", s)
	}

	if i != len(s) {
		return nil, errors.Wrap(PartialReadError{End: i}, "parse %q", s)
	}

	return t, nil
}

// MustParse is ParseType for static type strings.
func MustParse(s string) TypeSpec {
	t, err := ParseType(context.Background(), s)
	if err != nil {
		panic(err)
	}

	return t
}

func (typeParser) Parse(ctx context.Context, b []byte, st int) (TypeSpec, int, error) {
	return ArrayOf{
		Of: AnyOf{
			TupleOf{Elem: typeParser{}},
			Basic{},
		},
	}.Parse(ctx, b, st)
}

func (Basic) Parse(ctx context.Context, b []byte, st int) (t TypeSpec, i int, err error) {
	i = st

	for i < len(b) && b[i] >= 'a' && b[i] <= 'z' {
		i++
	}

	switch string(b[st:i]) {
	case "bool":
		return Bool, i, nil
	case "byte":
		return Byte, i, nil
	case "address":
		return Address, i, nil
	case "string":
		return String, i, nil
	case "uint":
	default:
		return nil, st, TypeExpectedError{Pos: st}
	}

	n, i, err := number(b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "uint size")
	}

	t, err = NewUint(n)
	if err != nil {
		return nil, i, err
	}

	return t, i, nil
}

func (p ArrayOf) Parse(ctx context.Context, b []byte, st int) (t TypeSpec, i int, err error) {
	t, i, err = p.Of.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	for i < len(b) && b[i] == '[' {
		i++

		if i < len(b) && b[i] == ']' {
			t = DynamicArray(t)
			i++

			continue
		}

		var n int

		n, i, err = number(b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "array length")
		}

		if i == len(b) || b[i] != ']' {
			return nil, i, errors.New("] expected at %d", i)
		}

		t = StaticArray(t, n)
		i++
	}

	return t, i, nil
}

func (p TupleOf) Parse(ctx context.Context, b []byte, st int) (t TypeSpec, i int, err error) {
	i = st

	if i == len(b) || b[i] != '(' {
		return nil, st, TypeExpectedError{Pos: st}
	}

	i++

	var elems []TypeSpec

	if i < len(b) && b[i] == ')' {
		return Tuple(), i + 1, nil
	}

	for {
		var e TypeSpec

		e, i, err = p.Elem.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "element %d", len(elems))
		}

		elems = append(elems, e)

		if i == len(b) {
			return nil, i, errors.New(", or ) expected at %d", i)
		}

		switch b[i] {
		case ',':
			i++
		case ')':
			return Tuple(elems...), i + 1, nil
		default:
			return nil, i, errors.New(", or ) expected at %d", i)
		}
	}
}

func (p AnyOf) Parse(ctx context.Context, b []byte, st int) (_ TypeSpec, i int, err error) {
	for _, r := range p {
		t, j, e := r.Parse(ctx, b, st)
		if e == nil {
			return t, j, nil
		}
		if j == st {
			continue
		}
		if err == nil {
			i = j
			err = errors.Wrap(e, "%T", r)
		}
	}

	if err != nil {
		return
	}

	return nil, st, TypeExpectedError{Pos: st}
}

func number(b []byte, st int) (n int, i int, err error) {
	i = st

	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}

	if i == st {
		return 0, st, errors.New("number expected at %d", st)
	}

	n, err = strconv.Atoi(string(b[st:i]))
	if err != nil {
		return 0, st, err
	}

	return n, i, nil
}

func (e TypeExpectedError) Error() string {
	return fmt.Sprintf("type expected at %d", e.Pos)
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("partial read: unexpected input at %d", e.End)
}
