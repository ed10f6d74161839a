package back

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"tlog.app/go/errors"

	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/ir"
	"github.com/slowlang/teal/compiler/set"
)

type (
	// Slots is the scratch slot assignment of a program.
	Slots struct {
		IDs map[*ir.Slot]int

		// Local slots are used by one subroutine only, ordered by id.
		Local map[*ast.Subroutine][]*ir.Slot
	}

	unit struct {
		sub   *ast.Subroutine
		lines []ir.Line
	}
)

// AssignSlots gives every slot referenced by units an id.
// Reserved slots keep the requested id, others get the smallest free one in creation order.
func AssignSlots(units []*unit) (*Slots, error) {
	users := map[*ir.Slot]mapset.Set[*ast.Subroutine]{}
	var all []*ir.Slot

	for _, u := range units {
		for _, l := range u.lines {
			x, ok := l.(ir.Instr)
			if !ok {
				continue
			}

			for _, s := range x.Slots() {
				us, ok := users[s]
				if !ok {
					us = mapset.NewThreadUnsafeSet[*ast.Subroutine]()
					users[s] = us

					all = append(all, s)
				}

				us.Add(u.sub)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Seq() < all[j].Seq()
	})

	r := &Slots{
		IDs:   make(map[*ir.Slot]int, len(all)),
		Local: map[*ast.Subroutine][]*ir.Slot{},
	}

	used := set.MakeBitmap(ir.NumSlots)

	for _, s := range all {
		if !s.Reserved {
			continue
		}

		if s.Requested < 0 || s.Requested >= ir.NumSlots {
			return nil, errors.New("invalid scratch slot id: %d", s.Requested)
		}

		if used.IsSet(s.Requested) {
			return nil, errors.New("scratch slot id %d has been requested multiple times", s.Requested)
		}

		used.Set(s.Requested)
		r.IDs[s] = s.Requested
	}

	next := 0

	for _, s := range all {
		if s.Reserved {
			continue
		}

		next = used.NextClear(next)
		if next >= ir.NumSlots {
			return nil, errors.New("too many scratch slots in use: %d requested", len(all))
		}

		used.Set(next)
		r.IDs[s] = next
	}

	for _, s := range all {
		us := users[s]

		if s.Reserved || us.Cardinality() != 1 {
			continue
		}

		sub := us.ToSlice()[0]
		if sub == nil {
			continue
		}

		r.Local[sub] = append(r.Local[sub], s)
	}

	for _, l := range r.Local {
		sort.Slice(l, func(i, j int) bool {
			return r.IDs[l[i]] < r.IDs[l[j]]
		})
	}

	return r, nil
}
