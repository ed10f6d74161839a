package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/teal/compiler/analyze"
	"github.com/slowlang/teal/compiler/ast"
	"github.com/slowlang/teal/compiler/back"
	"github.com/slowlang/teal/compiler/constants"
	"github.com/slowlang/teal/compiler/format"
	"github.com/slowlang/teal/compiler/front"
	"github.com/slowlang/teal/compiler/ir"
)

type (
	Options struct {
		Version int

		// Mode defaults to ir.ModeAny.
		Mode ir.Mode

		// AssembleConstants pools repeated literals in constant blocks.
		AssembleConstants bool
	}
)

// Compile compiles the program rooted at root into TEAL assembly.
func Compile(ctx context.Context, root ast.Expr, opts Options) (string, error) {
	lines, err := CompileLines(ctx, root, opts)
	if err != nil {
		return "", err
	}

	b, err := format.Format(nil, opts.Version, lines)
	if err != nil {
		return "", errors.Wrap(err, "format")
	}

	return string(b), nil
}

// CompileLines is Compile without the final text rendering.
func CompileLines(ctx context.Context, root ast.Expr, opts Options) (lines []ir.Line, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "version", opts.Version, "mode", opts.Mode)
	defer tr.Finish("err", &err)

	if opts.Version < ir.MinVersion || opts.Version > ir.MaxVersion {
		return nil, errors.New("unsupported program version: %d (supported %d..%d)", opts.Version, ir.MinVersion, ir.MaxVersion)
	}

	if opts.Mode == 0 {
		opts.Mode = ir.ModeAny
	}

	if opts.AssembleConstants && opts.Version < ir.OpPushInt.MinVersion {
		return nil, errors.New("constant assembly requires program version %d or higher, got %d", ir.OpPushInt.MinVersion, opts.Version)
	}

	g, err := analyze.Analyze(ctx, root)
	if err != nil {
		return nil, err
	}

	fc := front.New(front.Options{Version: opts.Version, Mode: opts.Mode})

	units := make([]*front.Unit, 0, len(g.Subs)+1)

	u, err := fc.Lower(ctx, nil, root)
	if err != nil {
		return nil, errors.Wrap(err, "main")
	}

	units = append(units, u)

	for _, s := range g.Subs {
		u, err = fc.Lower(ctx, s, s.Declaration().Body)
		if err != nil {
			return nil, errors.Wrap(err, "subroutine %v", s.Name)
		}

		units = append(units, u)
	}

	lines, err = back.Link(ctx, opts.Version, units, g)
	if err != nil {
		return nil, errors.Wrap(err, "link")
	}

	if opts.AssembleConstants {
		lines, err = constants.Optimize(ctx, lines)
		if err != nil {
			return nil, errors.Wrap(err, "constants")
		}
	}

	for _, l := range lines {
		x, ok := l.(ir.Instr)
		if !ok {
			continue
		}

		err = x.Op.Check(opts.Version, opts.Mode)
		if err != nil {
			return nil, err
		}
	}

	return lines, nil
}
