package back

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/teal/compiler/analyze"
	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/front"
	"github.com/slowlang/teal/compiler/ir"
)

// Link flattens the main program and subroutines into one program.
// units[0] is the main program, the rest are subroutines in the order they are emitted.
// Scratch slots and subroutine references are resolved.
func Link(ctx context.Context, version int, units []*front.Unit, g *analyze.Graph) (lines []ir.Line, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "link", "units", len(units))
	defer tr.Finish("err", &err)

	if len(units) == 0 || units[0].Sub != nil {
		return nil, errors.New("main program expected first")
	}

	us := make([]*unit, len(units))

	for i, fu := range units {
		entry := ir.Normalize(fu.Entry)
		fu.Entry = entry

		err = ir.Validate(entry)
		if err != nil {
			return nil, errors.Wrap(err, "%v", unitLabel(fu.Sub, i-1))
		}

		us[i] = &unit{
			sub:   fu.Sub,
			lines: Flatten(ir.Order(entry, fu.End)),
		}
	}

	slots, err := AssignSlots(us)
	if err != nil {
		return nil, errors.Wrap(err, "assign slots")
	}

	if tr.If("dump_slots") {
		for s, id := range slots.IDs {
			tr.Printw("slot", "id", id, "seq", s.Seq(), "reserved", s.Reserved)
		}
	}

	if g != nil {
		for _, u := range us[1:] {
			spill(version, u, g.RecursionPoints(u.sub), slots.Local[u.sub])
		}
	}

	labels := map[*ast.Subroutine]ir.LabelRef{}

	for i, u := range us[1:] {
		labels[u.sub] = ir.LabelRef(unitLabel(u.sub, i))
	}

	for i, u := range us {
		prefix := "main_"

		if u.sub != nil {
			prefix = string(labels[u.sub]) + "_"

			lines = append(lines, ir.Label{Name: string(labels[u.sub]), Comment: u.sub.Name})
		}

		for _, l := range u.lines {
			l, err = resolve(l, prefix, slots, labels)
			if err != nil {
				return nil, errors.Wrap(err, "%v", unitLabel(u.sub, i-1))
			}

			lines = append(lines, l)
		}
	}

	tr.Printw("linked", "lines", len(lines), "slots", len(slots.IDs))

	return lines, nil
}

func resolve(l ir.Line, prefix string, slots *Slots, labels map[*ast.Subroutine]ir.LabelRef) (ir.Line, error) {
	switch l := l.(type) {
	case ir.Label:
		l.Name = prefix + l.Name

		return l, nil
	case ir.Instr:
		if len(l.Args) == 0 {
			return l, nil
		}

		args := make([]any, len(l.Args))

		for i, a := range l.Args {
			switch a := a.(type) {
			case ir.LabelRef:
				args[i] = ir.LabelRef(prefix) + a
			case *ir.Slot:
				args[i] = uint64(slots.IDs[a])
			case *ast.Subroutine:
				ref, ok := labels[a]
				if !ok {
					return nil, errors.New("undeclared subroutine: %v", a.Name)
				}

				args[i] = ref
			default:
				args[i] = a
			}
		}

		l.Args = args

		return l, nil
	default:
		return nil, errors.New("unexpected line: %T", l)
	}
}

func unitLabel(s *ast.Subroutine, i int) string {
	if s == nil {
		return "main"
	}

	return fmt.Sprintf("%s_%d", s.Name, i)
}
