package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/teal/compiler/abi"
	"github.com/slowlang/teal/compiler/ir"
)

func main() {
	abiCmd := &cli.Command{
		Name:        "abi",
		Description: "print encoding layout of abi types",
		Action:      abiAct,
		Args:        cli.Args{},
	}

	decodeCmd := &cli.Command{
		Name:        "decode",
		Description: "decode hex encoded value: decode <type> <hex>",
		Action:      decodeAct,
		Args:        cli.Args{},
	}

	opsCmd := &cli.Command{
		Name:        "ops",
		Description: "print ops available in program version: ops [version]",
		Action:      opsAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "tealc",
		Description: "tealc inspects abi encodings and the teal op table",
		Commands: []*cli.Command{
			abiCmd,
			decodeCmd,
			opsCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func abiAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		t, err := abi.ParseType(ctx, a)
		if err != nil {
			return err
		}

		err = printLayout(t)
		if err != nil {
			return errors.Wrap(err, "layout %v", a)
		}
	}

	return nil
}

func printLayout(t abi.TypeSpec) error {
	var elems []abi.TypeSpec

	switch t := t.(type) {
	case abi.TupleType:
		elems = t.Elems
	case abi.StaticArrayType:
		for i := 0; i < t.N; i++ {
			elems = append(elems, t.Elem)
		}
	default:
		elems = []abi.TypeSpec{t}
	}

	fs, head, err := abi.Layout(elems)
	if err != nil {
		return err
	}

	fmt.Printf("%v  dynamic: %v  head: %d\n", t, t.IsDynamic(), head)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Type", "Offset", "Bit", "Size", "Dynamic"})

	for i, f := range fs {
		bit := ""
		if f.Bit >= 0 {
			bit = strconv.Itoa(f.Bit)
		}

		table.Append([]string{
			strconv.Itoa(i),
			f.Type.String(),
			strconv.Itoa(f.Offset),
			bit,
			strconv.Itoa(f.Size),
			strconv.FormatBool(f.Type.IsDynamic()),
		})
	}

	table.Render()

	return nil
}

func decodeAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) != 2 {
		return errors.New("expected type and hex value")
	}

	t, err := abi.ParseType(ctx, c.Args[0])
	if err != nil {
		return err
	}

	b, err := hex.DecodeString(strings.TrimPrefix(c.Args[1], "0x"))
	if err != nil {
		return errors.Wrap(err, "decode hex")
	}

	v, err := abi.Decode(t, b)
	if err != nil {
		return errors.Wrap(err, "decode %v", t)
	}

	fmt.Printf("%v\n", v)

	return nil
}

func opsAct(c *cli.Command) (err error) {
	ver := ir.MaxVersion

	if len(c.Args) != 0 {
		ver, err = strconv.Atoi(c.Args[0])
		if err != nil {
			return errors.Wrap(err, "parse version")
		}
	}

	if ver < ir.MinVersion || ver > ir.MaxVersion {
		return errors.New("unsupported program version: %d (supported %d..%d)", ver, ir.MinVersion, ir.MaxVersion)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Op", "Version", "Mode", "In", "Out", "Imm"})

	for _, o := range ir.Ops() {
		if o.Check(ver, ir.ModeAny) != nil {
			continue
		}

		in := make([]string, len(o.In))
		for i, t := range o.In {
			in[i] = t.String()
		}

		table.Append([]string{
			o.Name,
			strconv.Itoa(o.MinVersion),
			o.Mode.String(),
			strings.Join(in, ","),
			o.Out.String(),
			strconv.Itoa(o.Imm),
		})
	}

	table.Render()

	return nil
}
