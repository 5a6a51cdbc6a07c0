package lower

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/omp2gml/compiler/ast"
	"github.com/slowlang/omp2gml/compiler/clang"
)

type (
	// binding is one statement of a block turned into let name = value.
	binding struct {
		name  string
		value *ast.Expr

		// value of a plain statement, the block evaluates to it
		// if it is the last one
		tail bool
	}
)

// FuturePrefix starts every synthetic future name.
const FuturePrefix = "__future"

// block collapses a compound statement into nested lets.
// Statements are converted in source order, the task slot depends on it.
func (c *Converter) block(ctx context.Context, n *clang.Node) (*ast.Expr, error) {
	bs, err := c.statements(ctx, n.Inner)
	if err != nil {
		return nil, err
	}

	return fold(bs, nil), nil
}

// statements converts a statement list.
// The task slot must be left as it was found:
// a future is bound inside the list, so it can't be forced outside of it.
func (c *Converter) statements(ctx context.Context, l []*clang.Node) (bs []binding, err error) {
	outer := c.task

	for i, s := range l {
		b, err := c.statement(ctx, s)
		if err != nil {
			return nil, errors.Wrap(err, "inner[%d] %v", i, kind(s))
		}

		bs = append(bs, b...)
	}

	switch {
	case c.task == outer:
	case outer == nil:
		return nil, errors.Wrap(ErrTaskContext, "task %v is never awaited in its block", c.task.future)
	default:
		return nil, errors.Wrap(ErrTaskContext, "task %v is awaited outside of its block", outer.future)
	}

	return bs, nil
}

func (c *Converter) statement(ctx context.Context, n *clang.Node) ([]binding, error) {
	switch {
	case n == nil:
		return nil, errors.Wrap(ErrMalformed, "missing statement")
	case n.Kind == "DeclStmt":
		return c.declStmt(ctx, n)
	case n.IsAssign():
		name, value, err := c.assign(ctx, n)
		if err != nil {
			return nil, err
		}

		return []binding{{name: name, value: value}}, nil
	case n.Kind == "OMPTaskDirective":
		b, err := c.spawn(ctx, n)
		if err != nil {
			return nil, err
		}

		return []binding{b}, nil
	case n.Kind == "OMPTaskwaitDirective":
		b, err := c.wait(ctx)
		if err != nil {
			return nil, err
		}

		return []binding{b}, nil
	}

	e, err := c.Expr(ctx, n)
	if err != nil {
		return nil, err
	}

	return []binding{{name: "_", value: e, tail: true}}, nil
}

// declStmt binds initialized variables.
// Declarations without initializer have nothing to bind and are dropped.
func (c *Converter) declStmt(ctx context.Context, n *clang.Node) (bs []binding, err error) {
	for i, d := range n.Inner {
		if d == nil || d.Kind != "VarDecl" || d.Init == "" || len(d.Inner) == 0 {
			continue
		}

		j := len(d.Inner) - 1

		e, err := c.child(ctx, d, j)
		if err != nil {
			return nil, errors.Wrap(err, "inner[%d] VarDecl %v", i, d.Name)
		}

		bs = append(bs, binding{name: d.Name, value: e})
	}

	return bs, nil
}

// assign lowers target = value into its parts.
func (c *Converter) assign(ctx context.Context, n *clang.Node) (name string, value *ast.Expr, err error) {
	if len(n.Inner) != 2 {
		return "", nil, errors.Wrap(ErrMalformed, "assignment with %d operands", len(n.Inner))
	}

	lhs := n.Child(0).Unwrap()

	if lhs == nil || lhs.Kind != "DeclRefExpr" || lhs.RefName() == "" {
		return "", nil, errors.Wrap(ErrUnsupportedTarget, "%v", kind(lhs))
	}

	value, err = c.child(ctx, n, 1)
	if err != nil {
		return "", nil, err
	}

	return lhs.RefName(), value, nil
}

func (c *Converter) spawn(ctx context.Context, n *clang.Node) (binding, error) {
	if c.spawning != nil {
		return binding{}, errors.Wrap(ErrTaskContext, "task inside of task %v body", c.spawning.future)
	}

	if c.task != nil {
		return binding{}, errors.Wrap(ErrTaskContext, "task spawned while %v is open", c.task.future)
	}

	body := taskBody(n)
	if body == nil {
		return binding{}, errors.Wrap(ErrMalformed, "task without body")
	}

	t := &task{
		future: fmt.Sprintf("%s%d", FuturePrefix, c.futures),
	}

	c.futures++
	c.spawning = t

	capture, value, err := c.taskValue(ctx, body)
	c.spawning = nil
	if err != nil {
		return binding{}, errors.Wrap(err, "task body %v", body.Kind)
	}

	t.capture = capture
	c.task = t

	tlog.SpanFromContext(ctx).Printw("task spawned", "future", t.future, "capture", t.capture)

	return binding{
		name:  t.future,
		value: ast.E(ast.EFuture{Expr: value}),
	}, nil
}

func (c *Converter) wait(ctx context.Context) (binding, error) {
	if c.spawning != nil {
		return binding{}, errors.Wrap(ErrTaskContext, "taskwait inside of task %v body", c.spawning.future)
	}

	t := c.task
	if t == nil {
		return binding{}, errors.Wrap(ErrTaskContext, "taskwait without an open task")
	}

	c.task = nil

	tlog.SpanFromContext(ctx).Printw("task awaited", "future", t.future, "capture", t.capture)

	return binding{
		name:  t.capture,
		value: ast.E(ast.EForce{Expr: ast.Var(t.future)}),
	}, nil
}

// taskValue splits a task body into the variable it assigns
// and the expression computing it.
// A body without a final assignment is captured as _.
func (c *Converter) taskValue(ctx context.Context, n *clang.Node) (capture string, value *ast.Expr, err error) {
	if n.IsAssign() {
		return c.assign(ctx, n)
	}

	last := len(n.Inner) - 1

	if n.Kind != "CompoundStmt" || last < 0 || !n.Inner[last].IsAssign() {
		value, err = c.Expr(ctx, n)

		return "_", value, err
	}

	bs, err := c.statements(ctx, n.Inner[:last])
	if err != nil {
		return "", nil, err
	}

	capture, value, err = c.assign(ctx, n.Inner[last])
	if err != nil {
		return "", nil, errors.Wrap(err, "inner[%d] BinaryOperator", last)
	}

	return capture, fold(bs, value), nil
}

// taskBody finds the statement a task directive runs.
func taskBody(n *clang.Node) *clang.Node {
	for _, x := range n.Inner {
		switch {
		case x == nil:
		case x.Kind == "CapturedStmt":
			s := x.Child(0)
			if s != nil && s.Kind == "CapturedDecl" {
				s = s.Child(0)
			}

			return s
		case strings.HasSuffix(x.Kind, "Clause"):
		default:
			return x
		}
	}

	return nil
}

// fold nests bindings right to left around tail.
// With nil tail the last plain statement is the value, or unit.
func fold(bs []binding, tail *ast.Expr) *ast.Expr {
	if tail == nil {
		tail = ast.UnitValue()

		if l := len(bs); l != 0 && bs[l-1].tail {
			tail = bs[l-1].value
			bs = bs[:l-1]
		}
	}

	for i := len(bs) - 1; i >= 0; i-- {
		tail = ast.Let(bs[i].name, bs[i].value, tail)
	}

	return tail
}

func kind(n *clang.Node) string {
	if n == nil {
		return "<nil>"
	}

	return n.Kind
}
