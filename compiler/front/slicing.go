package front

import (
	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

var (
	sliceArgs = []tp.Type{tp.Bytes, tp.Uint64, tp.Uint64}
)

// lowerSubstring picks the shortest encoding the version allows.
func (c *Compiler) lowerSubstring(x *ast.Substring) (start, end *ir.Block, err error) {
	s, sok := ast.ConstUint(x.Start)
	e, eok := ast.ConstUint(x.End)

	if sok && eok {
		if e < s {
			return nil, nil, ast.NewInputError(x, "substring end %d is less than start %d", e, s)
		}

		l := e - s

		if c.Version >= ir.OpExtract.MinVersion && s < 256 && l > 0 && l < 256 {
			return c.chain(x, []ast.Expr{x.Base}, []tp.Type{tp.Bytes}, ir.Ins(ir.OpExtract, s, l))
		}

		if s < 256 && e < 256 {
			return c.chain(x, []ast.Expr{x.Base}, []tp.Type{tp.Bytes}, ir.Ins(ir.OpSubstring, s, e))
		}
	}

	return c.chain(x, []ast.Expr{x.Base, x.Start, x.End}, sliceArgs, ir.Ins(ir.OpSubstring3))
}

func (c *Compiler) lowerExtract(x *ast.Extract) (start, end *ir.Block, err error) {
	s, sok := ast.ConstUint(x.Start)
	l, lok := ast.ConstUint(x.Length)

	if c.Version < ir.OpExtract.MinVersion {
		if sok && lok && s+l < 256 {
			return c.chain(x, []ast.Expr{x.Base}, []tp.Type{tp.Bytes}, ir.Ins(ir.OpSubstring, s, s+l))
		}

		return c.chain(x, []ast.Expr{x.Base, x.Start, ast.Add(x.Start, x.Length)}, sliceArgs, ir.Ins(ir.OpSubstring3))
	}

	if sok && lok && s < 256 && l > 0 && l < 256 {
		return c.chain(x, []ast.Expr{x.Base}, []tp.Type{tp.Bytes}, ir.Ins(ir.OpExtract, s, l))
	}

	return c.chain(x, []ast.Expr{x.Base, x.Start, x.Length}, sliceArgs, ir.Ins(ir.OpExtract3))
}

// lowerSuffix uses extract with zero length which reads to the end,
// otherwise the length is computed at runtime.
func (c *Compiler) lowerSuffix(x *ast.Suffix) (start, end *ir.Block, err error) {
	s, ok := ast.ConstUint(x.Start)

	if ok && s < 256 && c.Version >= ir.OpExtract.MinVersion {
		return c.chain(x, []ast.Expr{x.Base}, []tp.Type{tp.Bytes}, ir.Ins(ir.OpExtract, s, uint64(0)))
	}

	if c.Version < ir.OpDig.MinVersion {
		return c.chain(x, []ast.Expr{x.Base, x.Start, ast.Len(x.Base)}, sliceArgs, ir.Ins(ir.OpSubstring3))
	}

	err = requireType(x.Base, tp.Bytes)
	if err != nil {
		return
	}

	err = requireType(x.Start, tp.Uint64)
	if err != nil {
		return
	}

	err = c.check(x, ir.OpSubstring3)
	if err != nil {
		return
	}

	bs, be, err := c.lower(x.Base)
	if err != nil {
		return
	}

	ss, se, err := c.lower(x.Start)
	if err != nil {
		return
	}

	be.SetNext(ss)

	// the length of base is taken from the copy under start
	end = ir.NewBlock(ir.Ins(ir.OpDig, 1), ir.Ins(ir.OpLen), ir.Ins(ir.OpSubstring3))
	se.SetNext(end)

	return bs, end, nil
}
