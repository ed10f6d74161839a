package ast

import "fmt"

// Children returns the direct subexpressions of x in evaluation order.
// Subroutine bodies are not children of calls.
func Children(x Expr) []Expr {
	switch x := x.(type) {
	case *IntLit, *TmplLit, *BytesLit, *Break, *Continue, *Err, *ScratchStackStore, *ScratchIndex:
		return nil
	case *Op:
		return x.Args
	case *Seq:
		return x.Exprs
	case *If:
		return nonNil(x.Cond, x.Then, x.Else)
	case *Cond:
		r := make([]Expr, 0, 2*len(x.Arms))

		for _, a := range x.Arms {
			r = append(r, a.Cond, a.Value)
		}

		return r
	case *While:
		return []Expr{x.Cond, x.Do}
	case *For:
		return []Expr{x.Init, x.Cond, x.Step, x.Do}
	case *Return:
		return nonNil(x.Value)
	case *Assert:
		return x.Conds
	case *Pop:
		return []Expr{x.Value}
	case *ScratchLoad:
		return nonNil(x.Index)
	case *ScratchStore:
		return nonNil(x.Index, x.Value)
	case *Substring:
		return []Expr{x.Base, x.Start, x.End}
	case *Extract:
		return []Expr{x.Base, x.Start, x.Length}
	case *Suffix:
		return []Expr{x.Base, x.Start}
	case *Call:
		var r []Expr

		for _, a := range x.Args {
			switch a := a.(type) {
			case Expr:
				r = append(r, a)
			case Var:
				r = append(r, a.Index())
			}
		}

		return r
	default:
		panic(fmt.Sprintf("unsupported node: %T", x))
	}
}

// Walk calls f for x and its subexpressions, parents first.
// f returns false to skip the children.
func Walk(x Expr, f func(x Expr) bool) {
	if x == nil || !f(x) {
		return
	}

	for _, c := range Children(x) {
		Walk(c, f)
	}
}

func nonNil(xs ...Expr) []Expr {
	r := xs[:0]

	for _, x := range xs {
		if x != nil {
			r = append(r, x)
		}
	}

	return r
}
