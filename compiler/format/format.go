package format

import (
	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/teal/compiler/ir"
)

// Format renders a linked program as TEAL assembly text.
func Format(b []byte, version int, lines []ir.Line) (_ []byte, err error) {
	b = hfmt.Appendf(b, "#pragma version %d", version)

	for i, l := range lines {
		b = append(b, '\n')

		b, err = formatLine(b, l)
		if err != nil {
			return nil, errors.Wrap(err, "line %d", i)
		}
	}

	return b, nil
}

func formatLine(b []byte, l ir.Line) (_ []byte, err error) {
	switch l := l.(type) {
	case ir.Label:
		if l.Comment != "" {
			b = hfmt.Appendf(b, "// %s\n", l.Comment)
		}

		return hfmt.Appendf(b, "%s:", l.Name), nil
	case ir.Instr:
		b = append(b, l.Op.Name...)

		for _, a := range l.Args {
			b = append(b, ' ')

			b, err = formatArg(b, a)
			if err != nil {
				return nil, errors.Wrap(err, "%v", l.Op)
			}
		}

		if l.Comment != "" {
			b = hfmt.Appendf(b, " // %s", l.Comment)
		}

		return b, nil
	default:
		return nil, errors.New("unsupported line: %T", l)
	}
}

func formatArg(b []byte, a any) ([]byte, error) {
	switch a := a.(type) {
	case uint64, int:
		return hfmt.Appendf(b, "%d", a), nil
	case string:
		return append(b, a...), nil
	case ir.LabelRef:
		return append(b, a...), nil
	case ir.Tmpl:
		return append(b, a...), nil
	case ir.Bytes:
		return append(b, a.Text...), nil
	default:
		return nil, errors.New("unresolved argument: %T", a)
	}
}
