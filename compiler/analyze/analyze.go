package analyze

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"tlog.app/go/tlog"

	"github.com/slowlang/teal/compiler/ast"
)

type (
	// Graph is the subroutine call graph of a program.
	// The nil key stands for the main program.
	Graph struct {
		// Subs in discovery order.
		Subs []*ast.Subroutine

		calls map[*ast.Subroutine]mapset.Set[*ast.Subroutine]
		index map[*ast.Subroutine]int
	}

	// CyclicByRefError is a subroutine with by-ref params that can call itself.
	CyclicByRefError struct {
		Sub  *ast.Subroutine
		Path []*ast.Subroutine
	}
)

// Analyze builds the call graph reachable from root
// and checks that no subroutine with by-ref params is recursive.
func Analyze(ctx context.Context, root ast.Expr) (g *Graph, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "analyze call graph")
	defer tr.Finish("err", &err)

	g = Build(root)

	if tr.If("dump_call_graph") {
		for _, s := range append([]*ast.Subroutine{nil}, g.Subs...) {
			tr.Printw("calls", "sub", name(s), "callees", names(g.Callees(s)))
		}
	}

	for _, s := range g.Subs {
		if !s.HasByRef() {
			continue
		}

		path := g.FindRecursivePath(s)
		if path == nil {
			continue
		}

		return g, CyclicByRefError{Sub: s, Path: path}
	}

	return g, nil
}

// Build walks root and all reachable subroutine bodies.
func Build(root ast.Expr) *Graph {
	g := &Graph{
		calls: map[*ast.Subroutine]mapset.Set[*ast.Subroutine]{},
		index: map[*ast.Subroutine]int{},
	}

	q := []*ast.Subroutine{nil}

	for len(q) != 0 {
		s := q[0]
		q = q[1:]

		body := root
		if s != nil {
			body = s.Declaration().Body
		}

		callees := mapset.NewThreadUnsafeSet[*ast.Subroutine]()
		g.calls[s] = callees

		ast.Walk(body, func(x ast.Expr) bool {
			c, ok := x.(*ast.Call)
			if !ok {
				return true
			}

			callees.Add(c.Sub)

			if _, ok := g.index[c.Sub]; !ok {
				g.index[c.Sub] = len(g.Subs)
				g.Subs = append(g.Subs, c.Sub)

				q = append(q, c.Sub)
			}

			return true
		})
	}

	return g
}

// Callees of s in discovery order.
func (g *Graph) Callees(s *ast.Subroutine) []*ast.Subroutine {
	set, ok := g.calls[s]
	if !ok {
		return nil
	}

	r := set.ToSlice()

	sort.Slice(r, func(i, j int) bool {
		return g.index[r[i]] < g.index[r[j]]
	})

	return r
}

// Reachable returns subroutines reachable from s by one or more calls.
func (g *Graph) Reachable(s *ast.Subroutine) mapset.Set[*ast.Subroutine] {
	seen := mapset.NewThreadUnsafeSet[*ast.Subroutine]()
	q := g.Callees(s)

	for len(q) != 0 {
		x := q[0]
		q = q[1:]

		if !seen.Add(x) {
			continue
		}

		q = append(q, g.Callees(x)...)
	}

	return seen
}

// RecursionPoints returns callees of s from which s can be reached again.
func (g *Graph) RecursionPoints(s *ast.Subroutine) mapset.Set[*ast.Subroutine] {
	r := mapset.NewThreadUnsafeSet[*ast.Subroutine]()

	for _, c := range g.Callees(s) {
		if c == s || g.Reachable(c).Contains(s) {
			r.Add(c)
		}
	}

	return r
}

// FindRecursivePath returns a call path from s back to s or nil.
func (g *Graph) FindRecursivePath(s *ast.Subroutine) []*ast.Subroutine {
	visited := mapset.NewThreadUnsafeSet[*ast.Subroutine]()
	var path []*ast.Subroutine

	var dfs func(x *ast.Subroutine) bool

	dfs = func(x *ast.Subroutine) bool {
		if !visited.Add(x) {
			return false
		}

		path = append(path, x)

		for _, y := range g.Callees(x) {
			if y == s {
				path = append(path, y)
				return true
			}

			if dfs(y) {
				return true
			}
		}

		path = path[:len(path)-1]

		return false
	}

	if !dfs(s) {
		return nil
	}

	return path
}

func (e CyclicByRefError) Error() string {
	return fmt.Sprintf("ScratchVar arguments not allowed in recursive subroutines, but a recursive call-path was detected: %v", strings.Join(names(e.Path), "-->"))
}

func name(s *ast.Subroutine) string {
	if s == nil {
		return "main"
	}

	return s.Name + "()"
}

func names(ss []*ast.Subroutine) []string {
	r := make([]string, len(ss))

	for i, s := range ss {
		r[i] = name(s)
	}

	return r
}
