package ast

import (
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

// NewOp applies o to args. Arguments are checked against the op signature at compile time.
func NewOp(o *ir.Op, imm []any, args ...Expr) *Op {
	return &Op{
		base: at(),
		Op:   o,
		Imm:  imm,
		Args: args,
		Out:  o.Out,
	}
}

func op(o *ir.Op, args ...Expr) *Op {
	return &Op{base: base{pc: callerPC()}, Op: o, Args: args, Out: o.Out}
}

func Add(l, r Expr) Expr   { return op(ir.OpAdd, l, r) }
func Minus(l, r Expr) Expr { return op(ir.OpMinus, l, r) }
func Mul(l, r Expr) Expr   { return op(ir.OpMul, l, r) }
func Div(l, r Expr) Expr   { return op(ir.OpDiv, l, r) }
func Mod(l, r Expr) Expr   { return op(ir.OpMod, l, r) }
func Exp(l, r Expr) Expr   { return op(ir.OpExp, l, r) }
func Shl(l, r Expr) Expr   { return op(ir.OpShl, l, r) }
func Shr(l, r Expr) Expr   { return op(ir.OpShr, l, r) }

func Eq(l, r Expr) Expr  { return op(ir.OpEq, l, r) }
func Neq(l, r Expr) Expr { return op(ir.OpNeq, l, r) }
func Lt(l, r Expr) Expr  { return op(ir.OpLt, l, r) }
func Gt(l, r Expr) Expr  { return op(ir.OpGt, l, r) }
func Le(l, r Expr) Expr  { return op(ir.OpLe, l, r) }
func Ge(l, r Expr) Expr  { return op(ir.OpGe, l, r) }

func Not(x Expr) Expr    { return op(ir.OpNot, x) }
func BitNot(x Expr) Expr { return op(ir.OpBitNot, x) }

func BitOr(l, r Expr) Expr  { return op(ir.OpBitOr, l, r) }
func BitAnd(l, r Expr) Expr { return op(ir.OpBitAnd, l, r) }
func BitXor(l, r Expr) Expr { return op(ir.OpBitXor, l, r) }

func Len(x Expr) Expr  { return op(ir.OpLen, x) }
func Itob(x Expr) Expr { return op(ir.OpItob, x) }
func Btoi(x Expr) Expr { return op(ir.OpBtoi, x) }

func Sha256(x Expr) Expr     { return op(ir.OpSha256, x) }
func Keccak256(x Expr) Expr  { return op(ir.OpKeccak256, x) }
func Sha512_256(x Expr) Expr { return op(ir.OpSha512_256, x) }

func GetByte(x, i Expr) Expr    { return op(ir.OpGetByte, x, i) }
func SetByte(x, i, v Expr) Expr { return op(ir.OpSetByte, x, i, v) }
func GetBit(x, i Expr) Expr     { return op(ir.OpGetBit, x, i) }

// SetBit keeps the stack type of x.
func SetBit(x, i, v Expr) Expr {
	r := op(ir.OpSetBit, x, i, v)
	r.Out = x.Type()

	return r
}

func ExtractUint16(x, i Expr) Expr { return op(ir.OpExtract2, x, i) }
func ExtractUint32(x, i Expr) Expr { return op(ir.OpExtract4, x, i) }
func ExtractUint64(x, i Expr) Expr { return op(ir.OpExtract8, x, i) }

func BytesZero(n Expr) Expr     { return op(ir.OpBZero, n) }
func BytesOr(l, r Expr) Expr    { return op(ir.OpBOr, l, r) }
func BytesAdd(l, r Expr) Expr   { return op(ir.OpBAdd, l, r) }
func BytesEq(l, r Expr) Expr    { return op(ir.OpBEq, l, r) }
func Replace(x, i, v Expr) Expr { return op(ir.OpReplace3, x, i, v) }

func Log(x Expr) Expr                 { return op(ir.OpLog, x) }
func AppGlobalGet(k Expr) Expr        { return op(ir.OpAppGlobGet, k) }
func AppGlobalPut(k, v Expr) Expr     { return op(ir.OpAppGlobPut, k, v) }
func AppGlobalDel(k Expr) Expr        { return op(ir.OpAppGlobDel, k) }
func AppLocalGet(acc, k Expr) Expr    { return op(ir.OpAppLocalGet, acc, k) }
func AppLocalPut(acc, k, v Expr) Expr { return op(ir.OpAppLocalPut, acc, k, v) }

// Txn reads a field of the current transaction.
func Txn(field string, t tp.Type) Expr {
	r := op(ir.OpTxn)
	r.Imm = []any{field}
	r.Out = t

	return r
}

// Global reads a global field.
func Global(field string, t tp.Type) Expr {
	r := op(ir.OpGlobal)
	r.Imm = []any{field}
	r.Out = t

	return r
}

// Concat joins byte strings left to right.
func Concat(xs ...Expr) Expr {
	return fold(ir.OpConcat, xs)
}

func And(xs ...Expr) Expr {
	return fold(ir.OpAnd, xs)
}

func Or(xs ...Expr) Expr {
	return fold(ir.OpOr, xs)
}

func fold(o *ir.Op, xs []Expr) Expr {
	if len(xs) == 0 {
		panic("no arguments for " + o.Name)
	}

	pc := callerPC()

	r := xs[0]

	for _, x := range xs[1:] {
		r = &Op{base: base{pc: pc}, Op: o, Args: []Expr{r, x}, Out: o.Out}
	}

	return r
}
