package ir

import (
	"fmt"

	"github.com/slowlang/teal/compiler/tp"
)

type (
	Mode uint8

	// Op is a TEAL opcode or assembler pseudo-op.
	Op struct {
		Name       string
		MinVersion int
		Mode       Mode

		In  []tp.Type
		Out tp.Type

		// Imm is the number of immediate arguments; -1 means variadic.
		Imm int
	}

	VersionError struct {
		Op      string
		Min     int
		Version int
	}

	ModeError struct {
		Op   string
		Mode Mode
	}
)

const (
	ModeSignature Mode = 1 << iota
	ModeApplication

	ModeAny = ModeSignature | ModeApplication
)

const (
	MinVersion = 2
	MaxVersion = 8
)

var (
	tu = tp.Uint64
	tb = tp.Bytes
	ta = tp.Any
	tn = tp.None
)

var (
	OpErr        = op("err", 1, ModeAny, tn, 0)
	OpSha256     = op("sha256", 1, ModeAny, tb, 0, tb)
	OpKeccak256  = op("keccak256", 1, ModeAny, tb, 0, tb)
	OpSha512_256 = op("sha512_256", 1, ModeAny, tb, 0, tb)
	OpEd25519    = op("ed25519verify", 1, ModeAny, tu, 0, tb, tb, tb)

	OpAdd    = op("+", 1, ModeAny, tu, 0, tu, tu)
	OpMinus  = op("-", 1, ModeAny, tu, 0, tu, tu)
	OpDiv    = op("/", 1, ModeAny, tu, 0, tu, tu)
	OpMul    = op("*", 1, ModeAny, tu, 0, tu, tu)
	OpLt     = op("<", 1, ModeAny, tu, 0, tu, tu)
	OpGt     = op(">", 1, ModeAny, tu, 0, tu, tu)
	OpLe     = op("<=", 1, ModeAny, tu, 0, tu, tu)
	OpGe     = op(">=", 1, ModeAny, tu, 0, tu, tu)
	OpAnd    = op("&&", 1, ModeAny, tu, 0, tu, tu)
	OpOr     = op("||", 1, ModeAny, tu, 0, tu, tu)
	OpEq     = op("==", 1, ModeAny, tu, 0, ta, ta)
	OpNeq    = op("!=", 1, ModeAny, tu, 0, ta, ta)
	OpNot    = op("!", 1, ModeAny, tu, 0, tu)
	OpLen    = op("len", 1, ModeAny, tu, 0, tb)
	OpItob   = op("itob", 1, ModeAny, tb, 0, tu)
	OpBtoi   = op("btoi", 1, ModeAny, tu, 0, tb)
	OpMod    = op("%", 1, ModeAny, tu, 0, tu, tu)
	OpBitOr  = op("|", 1, ModeAny, tu, 0, tu, tu)
	OpBitAnd = op("&", 1, ModeAny, tu, 0, tu, tu)
	OpBitXor = op("^", 1, ModeAny, tu, 0, tu, tu)
	OpBitNot = op("~", 1, ModeAny, tu, 0, tu)

	OpIntcBlock  = op("intcblock", 1, ModeAny, tn, -1)
	OpIntc       = op("intc", 1, ModeAny, tu, 1)
	OpIntc0      = op("intc_0", 1, ModeAny, tu, 0)
	OpIntc1      = op("intc_1", 1, ModeAny, tu, 0)
	OpIntc2      = op("intc_2", 1, ModeAny, tu, 0)
	OpIntc3      = op("intc_3", 1, ModeAny, tu, 0)
	OpBytecBlock = op("bytecblock", 1, ModeAny, tn, -1)
	OpBytec      = op("bytec", 1, ModeAny, tb, 1)
	OpBytec0     = op("bytec_0", 1, ModeAny, tb, 0)
	OpBytec1     = op("bytec_1", 1, ModeAny, tb, 0)
	OpBytec2     = op("bytec_2", 1, ModeAny, tb, 0)
	OpBytec3     = op("bytec_3", 1, ModeAny, tb, 0)

	OpArg    = op("arg", 1, ModeSignature, tb, 1)
	OpTxn    = op("txn", 1, ModeAny, ta, 1)
	OpGlobal = op("global", 1, ModeAny, ta, 1)
	OpGtxn   = op("gtxn", 1, ModeAny, ta, 2)
	OpLoad   = op("load", 1, ModeAny, ta, 1)
	OpStore  = op("store", 1, ModeAny, tn, 1, ta)
	OpBnz    = op("bnz", 1, ModeAny, tn, 1, tu)
	OpPop    = op("pop", 1, ModeAny, tn, 0, ta)
	OpDup    = op("dup", 1, ModeAny, ta, 0, ta)

	OpInt  = op("int", 1, ModeAny, tu, 1)
	OpByte = op("byte", 1, ModeAny, tb, 1)
	OpAddr = op("addr", 1, ModeAny, tb, 1)

	OpTxna        = op("txna", 2, ModeAny, ta, 2)
	OpGtxna       = op("gtxna", 2, ModeAny, ta, 3)
	OpBz          = op("bz", 2, ModeAny, tn, 1, tu)
	OpB           = op("b", 2, ModeAny, tn, 1)
	OpReturn      = op("return", 2, ModeAny, tn, 0, tu)
	OpDup2        = op("dup2", 2, ModeAny, tn, 0, ta, ta)
	OpConcat      = op("concat", 2, ModeAny, tb, 0, tb, tb)
	OpSubstring   = op("substring", 2, ModeAny, tb, 2, tb)
	OpSubstring3  = op("substring3", 2, ModeAny, tb, 0, tb, tu, tu)
	OpBalance     = op("balance", 2, ModeApplication, tu, 0, ta)
	OpAppOptedIn  = op("app_opted_in", 2, ModeApplication, tu, 0, ta, tu)
	OpAppLocalGet = op("app_local_get", 2, ModeApplication, ta, 0, ta, tb)
	OpAppGlobGet  = op("app_global_get", 2, ModeApplication, ta, 0, tb)
	OpAppLocalPut = op("app_local_put", 2, ModeApplication, tn, 0, ta, tb, ta)
	OpAppGlobPut  = op("app_global_put", 2, ModeApplication, tn, 0, tb, ta)
	OpAppLocalDel = op("app_local_del", 2, ModeApplication, tn, 0, ta, tb)
	OpAppGlobDel  = op("app_global_del", 2, ModeApplication, tn, 0, tb)

	OpAssert     = op("assert", 3, ModeAny, tn, 0, tu)
	OpDig        = op("dig", 3, ModeAny, ta, 1)
	OpSwap       = op("swap", 3, ModeAny, tn, 0)
	OpSelect     = op("select", 3, ModeAny, ta, 0, ta, ta, tu)
	OpGetBit     = op("getbit", 3, ModeAny, tu, 0, ta, tu)
	OpSetBit     = op("setbit", 3, ModeAny, ta, 0, ta, tu, tu)
	OpGetByte    = op("getbyte", 3, ModeAny, tu, 0, tb, tu)
	OpSetByte    = op("setbyte", 3, ModeAny, tb, 0, tb, tu, tu)
	OpMinBalance = op("min_balance", 3, ModeApplication, tu, 0, ta)
	OpPushBytes  = op("pushbytes", 3, ModeAny, tb, 1)
	OpPushInt    = op("pushint", 3, ModeAny, tu, 1)

	OpCallSub = op("callsub", 4, ModeAny, ta, 1)
	OpRetSub  = op("retsub", 4, ModeAny, tn, 0)
	OpShl     = op("shl", 4, ModeAny, tu, 0, tu, tu)
	OpShr     = op("shr", 4, ModeAny, tu, 0, tu, tu)
	OpSqrt    = op("sqrt", 4, ModeAny, tu, 0, tu)
	OpBitLen  = op("bitlen", 4, ModeAny, tu, 0, ta)
	OpExp     = op("exp", 4, ModeAny, tu, 0, tu, tu)
	OpBAdd    = op("b+", 4, ModeAny, tb, 0, tb, tb)
	OpBMinus  = op("b-", 4, ModeAny, tb, 0, tb, tb)
	OpBDiv    = op("b/", 4, ModeAny, tb, 0, tb, tb)
	OpBMul    = op("b*", 4, ModeAny, tb, 0, tb, tb)
	OpBLt     = op("b<", 4, ModeAny, tu, 0, tb, tb)
	OpBGt     = op("b>", 4, ModeAny, tu, 0, tb, tb)
	OpBLe     = op("b<=", 4, ModeAny, tu, 0, tb, tb)
	OpBGe     = op("b>=", 4, ModeAny, tu, 0, tb, tb)
	OpBEq     = op("b==", 4, ModeAny, tu, 0, tb, tb)
	OpBNeq    = op("b!=", 4, ModeAny, tu, 0, tb, tb)
	OpBMod    = op("b%", 4, ModeAny, tb, 0, tb, tb)
	OpBOr     = op("b|", 4, ModeAny, tb, 0, tb, tb)
	OpBAnd    = op("b&", 4, ModeAny, tb, 0, tb, tb)
	OpBXor    = op("b^", 4, ModeAny, tb, 0, tb, tb)
	OpBNot    = op("b~", 4, ModeAny, tb, 0, tb)
	OpBZero   = op("bzero", 4, ModeAny, tb, 0, tu)

	OpCover    = op("cover", 5, ModeAny, tn, 1)
	OpUncover  = op("uncover", 5, ModeAny, tn, 1)
	OpExtract  = op("extract", 5, ModeAny, tb, 2, tb)
	OpExtract3 = op("extract3", 5, ModeAny, tb, 0, tb, tu, tu)
	OpExtract2 = op("extract_uint16", 5, ModeAny, tu, 0, tb, tu)
	OpExtract4 = op("extract_uint32", 5, ModeAny, tu, 0, tb, tu)
	OpExtract8 = op("extract_uint64", 5, ModeAny, tu, 0, tb, tu)
	OpLoads    = op("loads", 5, ModeAny, ta, 0, tu)
	OpStores   = op("stores", 5, ModeAny, tn, 0, tu, ta)
	OpLog      = op("log", 5, ModeApplication, tn, 0, tb)

	OpDivw  = op("divw", 6, ModeAny, tu, 0, tu, tu, tu)
	OpBSqrt = op("bsqrt", 6, ModeAny, tb, 0, tb)

	OpReplace2 = op("replace2", 7, ModeAny, tb, 1, tb, tb)
	OpReplace3 = op("replace3", 7, ModeAny, tb, 0, tb, tu, tb)
	OpSha3_256 = op("sha3_256", 7, ModeAny, tb, 0, tb)

	OpBury = op("bury", 8, ModeAny, tn, 1)
	OpPopN = op("popn", 8, ModeAny, tn, 1)
	OpDupN = op("dupn", 8, ModeAny, tn, 1)
)

var (
	ops    []*Op
	byName = map[string]*Op{}
)

func op(name string, v int, m Mode, out tp.Type, imm int, in ...tp.Type) *Op {
	o := &Op{
		Name:       name,
		MinVersion: v,
		Mode:       m,
		In:         in,
		Out:        out,
		Imm:        imm,
	}

	ops = append(ops, o)
	byName[name] = o

	return o
}

// Ops returns all known ops in table order.
func Ops() []*Op {
	return append([]*Op{}, ops...)
}

func Lookup(name string) (*Op, bool) {
	o, ok := byName[name]
	return o, ok
}

func (o *Op) String() string { return o.Name }

// Check verifies the op can be used in a program of the given version and mode.
func (o *Op) Check(version int, mode Mode) error {
	if o.MinVersion > version {
		return VersionError{Op: o.Name, Min: o.MinVersion, Version: version}
	}

	if mode&o.Mode == 0 {
		return ModeError{Op: o.Name, Mode: mode}
	}

	return nil
}

func (m Mode) String() string {
	switch m {
	case ModeSignature:
		return "signature"
	case ModeApplication:
		return "application"
	case ModeAny:
		return "any"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (e VersionError) Error() string {
	return fmt.Sprintf("program version %d too low to use op %v: requires version %d", e.Version, e.Op, e.Min)
}

func (e ModeError) Error() string {
	return fmt.Sprintf("op %v is not available in %v mode", e.Op, e.Mode)
}
