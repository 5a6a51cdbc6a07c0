package check

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/omp2gml/compiler/ast"
	"github.com/slowlang/omp2gml/compiler/set"
)

type (
	// Stats describes a checked program.
	Stats struct {
		Futures int
		Forced  int
	}

	checker struct {
		scope   []bound
		futures []string

		forced set.Bits[int]
	}

	// bound is a name in scope, future is -1 for names bound to other values.
	bound struct {
		name   string
		future int
	}
)

var (
	ErrUnknownFuture = errors.New("force of unknown future")
	ErrForcedTwice   = errors.New("future forced twice")
	ErrMissingExpr   = errors.New("missing expression")
)

// Program verifies that every force of a named future refers to
// a future bound by an enclosing let and that no evaluation path
// forces the same future twice.
func Program(ctx context.Context, p ast.Program) (st Stats, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "check: program", "decls", len(p))
	defer tr.Finish("err", &err)

	c := newChecker()

	for i, d := range p {
		c.reset()

		err = c.decl(d)
		if err != nil {
			return st, errors.Wrap(err, "decl[%d]", i)
		}

		st.Futures += len(c.futures)
		st.Forced += c.forced.Size()

		if l := c.unforced(); len(l) != 0 {
			tr.Printw("futures never forced", "i", i, "futures", l)
		}

		if tr.If("check_forced") {
			tr.Printw("decl checked", "i", i, "futures", c.futures, "forced", c.forced)
		}
	}

	tr.Printw("program checked", "futures", st.Futures, "forced", st.Forced)

	return st, nil
}

// Expr verifies a single expression the same way as Program.
func Expr(e *ast.Expr) error {
	c := newChecker()

	return c.expr(e)
}

func newChecker() *checker {
	return &checker{forced: set.MakeBits(0)}
}

func (c *checker) reset() {
	c.scope = c.scope[:0]
	c.futures = c.futures[:0]
	c.forced.Reset()
}

// unforced lists futures no evaluation path forces.
func (c *checker) unforced() (r []string) {
	left := set.MakeBits(0)

	for i := range c.futures {
		left.Set(i)
	}

	c.forced.Range(func(i int) bool {
		left.Clear(i)
		return true
	})

	left.Range(func(i int) bool {
		r = append(r, c.futures[i])
		return true
	})

	return r
}

func (c *checker) decl(d *ast.Decl) error {
	if d == nil {
		return errors.New("missing declaration")
	}

	switch x := d.Desc.(type) {
	case ast.DVal:
		err := c.expr(x.Expr)
		if err != nil {
			return errors.Wrap(err, "val %v", x.Name)
		}

		return nil
	case ast.DExp:
		return c.expr(x.Expr)
	case ast.DExtType, ast.DExtRecType, ast.DExternal, ast.DTypeDef:
		return nil
	default:
		panic(x)
	}
}

func (c *checker) expr(e *ast.Expr) (err error) {
	if e == nil || e.Desc == nil {
		return ErrMissingExpr
	}

	switch x := e.Desc.(type) {
	case ast.ELet:
		err = c.expr(x.Value)
		if err != nil {
			return err
		}

		future := -1

		if _, ok := x.Value.Desc.(ast.EFuture); ok {
			future = len(c.futures)
			c.futures = append(c.futures, x.Name)
		}

		return c.scoped(x.Body, bound{name: x.Name, future: future})
	case ast.EFunc:
		return c.scoped(x.Body, bound{name: x.Name, future: -1}, bound{name: x.Arg, future: -1})
	case ast.EForce:
		v, ok := x.Expr.Desc.(ast.EVar)
		if !ok {
			return c.expr(x.Expr)
		}

		return c.force(v.ID)
	case ast.EIf:
		err = c.expr(x.Cond)
		if err != nil {
			return err
		}

		if x.Else == nil {
			return c.branches(x.Then)
		}

		return c.branches(x.Then, x.Else)
	case ast.EMatch:
		err = c.expr(x.Scrutinee)
		if err != nil {
			return err
		}

		l := make([]*ast.Expr, len(x.Cases))
		for i, cs := range x.Cases {
			l[i] = cs.Body
		}

		return c.branches(l...)
	case ast.ETry:
		return c.branches(x.Try, x.Catch)
	case ast.EVar, ast.EConst, ast.EInfixop, ast.ELetTuple, ast.ELetRecord, ast.EApp,
		ast.ETuple, ast.ERef, ast.EDeref, ast.EUpdate, ast.EFuture, ast.EPar, ast.EAnnot, ast.ENewVert:
		for _, s := range ast.Children(x) {
			err = c.expr(s)
			if err != nil {
				return err
			}
		}

		return nil
	default:
		panic(x)
	}
}

func (c *checker) scoped(e *ast.Expr, bs ...bound) error {
	l := len(c.scope)
	c.scope = append(c.scope, bs...)

	err := c.expr(e)

	c.scope = c.scope[:l]

	return err
}

// branches checks alternatives each from the same state,
// a future is forced after them if any of them forced it.
func (c *checker) branches(l ...*ast.Expr) error {
	start := c.forced.Copy()
	res := c.forced.Copy()

	for _, e := range l {
		c.forced = start.Copy()

		err := c.expr(e)
		if err != nil {
			return err
		}

		res.Merge(c.forced)
	}

	c.forced = res

	return nil
}

func (c *checker) force(id ast.LongID) error {
	name, ok := id.(ast.Id)
	if !ok {
		return errors.Wrap(ErrUnknownFuture, "%v", id)
	}

	for i := len(c.scope) - 1; i >= 0; i-- {
		b := c.scope[i]
		if b.name != name.Name {
			continue
		}

		if b.future < 0 {
			break
		}

		if c.forced.IsSet(b.future) {
			return errors.Wrap(ErrForcedTwice, "%v", name)
		}

		c.forced.Set(b.future)

		return nil
	}

	return errors.Wrap(ErrUnknownFuture, "%v", name)
}
