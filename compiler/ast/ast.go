package ast

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"tlog.app/go/loc"

	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/tp"
)

type (
	// Expr is an immutable typed expression. Nodes are compared by identity.
	// The set of node kinds is closed: only this package implements Expr.
	Expr interface {
		Type() tp.Type
		HasReturn() bool
		Src() loc.PC

		node()
	}

	base struct {
		pc loc.PC
	}

	IntLit struct {
		base

		Value uint64
	}

	TmplLit struct {
		base

		Name string
		T    tp.Type
	}

	BytesLit struct {
		base

		Lit ir.Bytes
		Err error
	}

	// Op applies a primitive op to its stack arguments.
	Op struct {
		base

		Op   *ir.Op
		Imm  []any
		Args []Expr

		Out tp.Type
	}
)

func at() base {
	return base{pc: loc.Caller(2)}
}

// callerPC is the pc of whoever called the exported constructor.
func callerPC() loc.PC {
	return loc.Caller(3)
}

func (b base) Src() loc.PC { return b.pc }
func (base) node()         {}

func Int(v uint64) *IntLit {
	return &IntLit{base: at(), Value: v}
}

func TmplInt(name string) *TmplLit {
	return &TmplLit{base: at(), Name: name, T: tp.Uint64}
}

func TmplBytes(name string) *TmplLit {
	return &TmplLit{base: at(), Name: name, T: tp.Bytes}
}

// Bytes is a byte string literal written as a quoted TEAL string.
func Bytes(s string) *BytesLit {
	return &BytesLit{
		base: at(),
		Lit:  ir.Bytes{Value: []byte(s), Text: quote(s)},
	}
}

func BytesHex(v []byte) *BytesLit {
	return &BytesLit{base: at(), Lit: ir.HexBytes(v)}
}

func BytesBase64(s string) *BytesLit {
	v, err := base64.StdEncoding.DecodeString(s)

	return &BytesLit{
		base: at(),
		Lit:  ir.Bytes{Value: v, Text: "base64(" + s + ")"},
		Err:  err,
	}
}

func BytesBase32(s string) *BytesLit {
	v, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(s, "="))

	return &BytesLit{
		base: at(),
		Lit:  ir.Bytes{Value: v, Text: "base32(" + s + ")"},
		Err:  err,
	}
}

func (x *IntLit) Type() tp.Type   { return tp.Uint64 }
func (x *TmplLit) Type() tp.Type  { return x.T }
func (x *BytesLit) Type() tp.Type { return tp.Bytes }
func (x *Op) Type() tp.Type       { return x.Out }

func (x *IntLit) HasReturn() bool   { return false }
func (x *TmplLit) HasReturn() bool  { return false }
func (x *BytesLit) HasReturn() bool { return false }
func (x *Op) HasReturn() bool       { return false }

// ValidTmpl reports whether name is a valid template variable name.
func ValidTmpl(name string) bool {
	rest, ok := strings.CutPrefix(name, "TMPL_")
	if !ok || rest == "" {
		return false
	}

	for _, c := range rest {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}

	return true
}

func quote(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			b.WriteString(`\x`)
			b.WriteString(hex.EncodeToString([]byte{c}))
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte('"')

	return b.String()
}
