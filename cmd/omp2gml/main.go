package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/omp2gml/compiler"
	"github.com/slowlang/omp2gml/compiler/lower"
)

func main() {
	lowerCmd := &cli.Command{
		Name:        "lower",
		Description: "lower clang json dumps of OpenMP C programs to GML json",
		Action:      lowerAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "", "output file, stdout if empty"),
			cli.NewFlag("keep-system", false, "keep implicit declarations and declarations from included files"),
			cli.NewFlag("indent", false, "indent json output"),
		},
	}

	recodeCmd := &cli.Command{
		Name:        "recode",
		Description: "decode GML json and encode it again to FILE" + compiler.RecodeSuffix,
		Action:      recodeAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("indent", false, "indent json output"),
		},
	}

	filterCmd := &cli.Command{
		Name:        "filter",
		Description: "strip diagnostic keys from a clang json dump",
		Usage:       "IN OUT",
		Action:      filterAct,
		Args:        cli.Args{},
	}

	printCmd := &cli.Command{
		Name:        "print",
		Description: "print GML json as ML text",
		Action:      printAct,
		Args:        cli.Args{},
	}

	checkCmd := &cli.Command{
		Name:        "check",
		Description: "verify futures are forced after they are spawned and only once",
		Action:      checkAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "omp2gml",
		Description: "omp2gml converts OpenMP task parallel C into GML",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("v", "", "verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			lowerCmd,
			recodeCmd,
			filterCmd,
			printCmd,
			checkCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("v"))

	return nil
}

func lowerAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	out := c.String("output")

	if out != "" && len(c.Args) > 1 {
		return errors.New("single input expected with --output, got %d", len(c.Args))
	}

	opts := compiler.Options{
		Options: lower.Options{
			KeepSystem: c.Bool("keep-system"),
		},
		Indent: c.Bool("indent"),
	}

	for _, a := range c.Args {
		obj, err := compiler.LowerFile(ctx, a, opts)
		if err != nil {
			return errors.Wrap(err, "lower %v", a)
		}

		if out != "" {
			err = os.WriteFile(out, append(obj, '\n'), 0o644)
			if err != nil {
				return errors.Wrap(err, "write output")
			}

			continue
		}

		fmt.Printf("%s\n", obj)
	}

	return nil
}

func recodeAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	opts := compiler.Options{
		Indent: c.Bool("indent"),
	}

	for _, a := range c.Args {
		out, err := compiler.RecodeFile(ctx, a, opts)
		if err != nil {
			return errors.Wrap(err, "recode %v", a)
		}

		fmt.Printf("recoded %v to %v\n", a, out)
	}

	return nil
}

func filterAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) != 2 {
		return errors.New("usage: filter IN OUT")
	}

	err = compiler.FilterFile(ctx, c.Args[0], c.Args[1])
	if err != nil {
		return errors.Wrap(err, "filter %v", c.Args[0])
	}

	fmt.Printf("filtered json written to %v\n", c.Args[1])

	return nil
}

func printAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := compiler.PrintFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "print %v", a)
		}

		fmt.Printf("%s", text)
	}

	return nil
}

func checkAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		st, err := compiler.CheckFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "check %v", a)
		}

		fmt.Printf("%v: ok, %d futures, %d forced\n", a, st.Futures, st.Forced)
	}

	return nil
}
