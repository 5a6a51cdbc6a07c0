package lower

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/omp2gml/compiler/ast"
	"github.com/slowlang/omp2gml/compiler/clang"
)

type (
	Options struct {
		// KeepSystem lowers implicit declarations and declarations
		// from included files too.
		KeepSystem bool
	}

	// Converter lowers one dump at a time.
	// It holds the open task between a spawn and its taskwait,
	// so a Converter must not be shared between goroutines.
	Converter struct {
		Options

		task     *task
		spawning *task // body of this task is being converted
		futures  int
	}

	task struct {
		future  string
		capture string
	}
)

func New(opts Options) *Converter {
	return &Converter{Options: opts}
}

// Program lowers top level nodes in order.
// TranslationUnitDecl nodes are replaced by their children.
func (c *Converter) Program(ctx context.Context, nodes []*clang.Node) (p ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lower: program", "nodes", len(nodes))
	defer tr.Finish("err", &err)

	var files clang.Files

	for i, n := range flatten(nodes) {
		if n == nil {
			continue
		}

		included := files.Decl(n)

		if !c.KeepSystem && (n.IsImplicit || included) {
			continue
		}

		d, err := c.Decl(ctx, n)
		if err != nil {
			return nil, errors.Wrap(err, "inner[%d] %v %v", i, n.Kind, n.Name)
		}

		p = append(p, d)
	}

	tr.Printw("program lowered", "decls", len(p), "futures", c.futures)

	return p, nil
}

// Decl lowers one top level declaration.
// Kinds other than FunctionDecl become placeholder expressions.
func (c *Converter) Decl(ctx context.Context, n *clang.Node) (*ast.Decl, error) {
	if n == nil {
		return nil, errors.Wrap(ErrMalformed, "missing declaration")
	}

	switch n.Kind {
	case "FunctionDecl":
		return c.function(ctx, n)
	default:
		return ast.D(ast.DExp{Expr: c.unhandled(n)}), nil
	}
}

func (c *Converter) function(ctx context.Context, n *clang.Node) (d *ast.Decl, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lower function", "name", n.Name)
	defer tr.Finish("err", &err)

	var params []*clang.Node
	body := -1

	for i, x := range n.Inner {
		if x == nil {
			continue
		}

		switch x.Kind {
		case "ParmVarDecl":
			params = append(params, x)
		case "CompoundStmt":
			body = i
		}
	}

	if body == -1 {
		return ast.D(ast.DExternal{ID: ast.Id{Name: n.Name}}), nil
	}

	if len(params) > 1 {
		return nil, errors.Wrap(ErrUnsupportedArity, "function with %d parameters", len(params))
	}

	arg := "_"
	if len(params) == 1 && params[0].Name != "" {
		arg = params[0].Name
	}

	c.task, c.spawning = nil, nil

	e, err := c.block(ctx, n.Inner[body])
	if err != nil {
		return nil, errors.Wrap(err, "inner[%d] CompoundStmt", body)
	}

	fn := ast.E(ast.EFunc{
		Recursive: ast.Recursive,
		Name:      n.Name,
		Arg:       arg,
		Body:      e,
	})

	return ast.D(ast.DVal{Name: n.Name, Expr: fn}), nil
}

func flatten(nodes []*clang.Node) (r []*clang.Node) {
	for _, n := range nodes {
		if n != nil && n.Kind == "TranslationUnitDecl" {
			r = append(r, n.Inner...)
			continue
		}

		r = append(r, n)
	}

	return r
}
