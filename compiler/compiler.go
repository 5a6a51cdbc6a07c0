package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/omp2gml/compiler/ast"
	"github.com/slowlang/omp2gml/compiler/check"
	"github.com/slowlang/omp2gml/compiler/clang"
	"github.com/slowlang/omp2gml/compiler/codec"
	"github.com/slowlang/omp2gml/compiler/format"
	"github.com/slowlang/omp2gml/compiler/lower"
)

type (
	Options struct {
		lower.Options

		// Indent pretty prints json output.
		Indent bool
	}
)

// RecodeSuffix is appended to the input name to get the recode output name.
const RecodeSuffix = "2"

// LowerFile lowers a clang json dump into an encoded GML program.
func LowerFile(ctx context.Context, name string, opts Options) (obj []byte, err error) {
	text, err := readFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return Lower(ctx, text, opts)
}

func Lower(ctx context.Context, text []byte, opts Options) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lower", "size", len(text))
	defer tr.Finish("err", &err)

	p, err := LowerProgram(ctx, text, opts.Options)
	if err != nil {
		return nil, err
	}

	return encode(p, opts.Indent)
}

// LowerProgram parses a dump and lowers it.
func LowerProgram(ctx context.Context, text []byte, opts lower.Options) (p ast.Program, err error) {
	nodes, err := clang.Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "parse dump")
	}

	p, err = lower.New(opts).Program(ctx, nodes)
	if err != nil {
		return nil, errors.Wrap(err, "lower")
	}

	return p, nil
}

// RecodeFile decodes a GML program and writes it encoded again
// next to the input, returning the output name.
func RecodeFile(ctx context.Context, name string, opts Options) (out string, err error) {
	text, err := readFile(ctx, name)
	if err != nil {
		return "", err
	}

	obj, err := Recode(ctx, text, opts)
	if err != nil {
		return "", err
	}

	out = name + RecodeSuffix

	err = writeFile(ctx, out, obj)
	if err != nil {
		return "", err
	}

	return out, nil
}

func Recode(ctx context.Context, text []byte, opts Options) (obj []byte, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "recode", "size", len(text))
	defer tr.Finish("err", &err)

	p, err := codec.DecodeProgram(text)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	tr.Printw("program decoded", "decls", len(p))

	return encode(p, opts.Indent)
}

// FilterFile writes the dump without diagnostic keys.
func FilterFile(ctx context.Context, name, out string) (err error) {
	text, err := readFile(ctx, name)
	if err != nil {
		return err
	}

	obj, err := clang.Filter(text)
	if err != nil {
		return errors.Wrap(err, "filter")
	}

	var b bytes.Buffer

	err = json.Indent(&b, obj, "", "  ")
	if err != nil {
		return errors.Wrap(err, "indent")
	}

	b.WriteByte('\n')

	return writeFile(ctx, out, b.Bytes())
}

// PrintFile renders an encoded GML program as ML text.
func PrintFile(ctx context.Context, name string) (text []byte, err error) {
	p, err := decodeFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return format.Format(ctx, nil, p)
}

// CheckFile verifies futures of an encoded GML program.
func CheckFile(ctx context.Context, name string) (st check.Stats, err error) {
	p, err := decodeFile(ctx, name)
	if err != nil {
		return st, err
	}

	return check.Program(ctx, p)
}

func decodeFile(ctx context.Context, name string) (ast.Program, error) {
	text, err := readFile(ctx, name)
	if err != nil {
		return nil, err
	}

	p, err := codec.DecodeProgram(text)
	if err != nil {
		return nil, errors.Wrap(err, "decode %v", name)
	}

	return p, nil
}

func encode(p ast.Program, indent bool) (obj []byte, err error) {
	if indent {
		obj, err = codec.MarshalIndent(p)
	} else {
		obj, err = codec.EncodeProgram(p)
	}

	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}

	return obj, nil
}

func readFile(ctx context.Context, name string) ([]byte, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return text, nil
}

func writeFile(ctx context.Context, name string, data []byte) error {
	err := os.WriteFile(name, data, 0o644)
	if err != nil {
		return errors.Wrap(err, "write file")
	}

	tlog.SpanFromContext(ctx).Printw("write file", "size", len(data), "name", name)

	return nil
}
