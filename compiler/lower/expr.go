package lower

import (
	"context"
	"encoding/json"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/omp2gml/compiler/ast"
	"github.com/slowlang/omp2gml/compiler/clang"
)

// Expr lowers a statement or expression node.
func (c *Converter) Expr(ctx context.Context, n *clang.Node) (*ast.Expr, error) {
	if n == nil {
		return nil, errors.Wrap(ErrMalformed, "missing node")
	}

	switch n.Kind {
	case "IntegerLiteral", "StringLiteral", "CharacterLiteral", "CXXBoolLiteralExpr":
		return literal(n)
	case "DeclRefExpr":
		name := n.RefName()
		if name == "" {
			return nil, errors.Wrap(ErrMalformed, "reference without declaration name")
		}

		return ast.Var(name), nil
	case "ImplicitCastExpr":
		if len(n.Inner) != 1 {
			return nil, errors.Wrap(ErrMalformed, "cast with %d children", len(n.Inner))
		}

		return c.child(ctx, n, 0)
	case "BinaryOperator":
		return c.binary(ctx, n)
	case "CallExpr":
		return c.call(ctx, n)
	case "IfStmt":
		return c.ifStmt(ctx, n)
	case "ReturnStmt":
		if len(n.Inner) == 0 {
			return ast.UnitValue(), nil
		}

		return c.child(ctx, n, 0)
	case "CompoundStmt":
		return c.block(ctx, n)
	case "OMPTaskDirective", "OMPTaskwaitDirective":
		// a spawn or taskwait has no block to share its future with
		return nil, errors.Wrap(ErrTaskContext, "%v outside of a block", n.Kind)
	default:
		return c.unhandled(n), nil
	}
}

func (c *Converter) child(ctx context.Context, n *clang.Node, i int) (*ast.Expr, error) {
	x := n.Child(i)
	if x == nil {
		return nil, errors.Wrap(ErrMalformed, "%v: missing inner[%d]", n.Kind, i)
	}

	e, err := c.Expr(ctx, x)
	if err != nil {
		return nil, errors.Wrap(err, "inner[%d] %v", i, x.Kind)
	}

	return e, nil
}

func (c *Converter) binary(ctx context.Context, n *clang.Node) (*ast.Expr, error) {
	op, err := Operator(n.Opcode)
	if err != nil {
		return nil, err
	}

	if len(n.Inner) != 2 {
		return nil, errors.Wrap(ErrMalformed, "binary operator with %d operands", len(n.Inner))
	}

	l, err := c.child(ctx, n, 0)
	if err != nil {
		return nil, err
	}

	r, err := c.child(ctx, n, 1)
	if err != nil {
		return nil, err
	}

	return ast.Infix(op, l, r), nil
}

func (c *Converter) call(ctx context.Context, n *clang.Node) (*ast.Expr, error) {
	if len(n.Inner) == 0 {
		return nil, errors.Wrap(ErrMalformed, "call without callee")
	}

	if args := len(n.Inner) - 1; args > 1 {
		return nil, errors.Wrap(ErrUnsupportedArity, "call with %d arguments", args)
	}

	fn, err := c.child(ctx, n, 0)
	if err != nil {
		return nil, err
	}

	arg := ast.UnitValue()

	if len(n.Inner) == 2 {
		arg, err = c.child(ctx, n, 1)
		if err != nil {
			return nil, err
		}
	}

	return ast.App(fn, arg), nil
}

func (c *Converter) ifStmt(ctx context.Context, n *clang.Node) (*ast.Expr, error) {
	if l := len(n.Inner); l < 2 || l > 3 {
		return nil, errors.Wrap(ErrMalformed, "if with %d children", l)
	}

	cond, err := c.child(ctx, n, 0)
	if err != nil {
		return nil, err
	}

	then, err := c.child(ctx, n, 1)
	if err != nil {
		return nil, err
	}

	var els *ast.Expr

	if len(n.Inner) == 3 {
		els, err = c.child(ctx, n, 2)
		if err != nil {
			return nil, err
		}
	}

	return ast.E(ast.EIf{Cond: cond, Then: then, Else: els}), nil
}

func (c *Converter) unhandled(n *clang.Node) *ast.Expr {
	tlog.V("unhandled").Printw("unhandled node", "kind", n.Kind, "from", loc.Caller(1))

	return ast.Unhandled(n.Kind, n.Raw)
}

func literal(n *clang.Node) (_ *ast.Expr, err error) {
	var v ast.Const

	switch n.Kind {
	case "IntegerLiteral":
		var x int64

		x, err = integer(n.Value)
		v = ast.Num{Value: x}
	case "StringLiteral":
		var s string

		err = json.Unmarshal(n.Value, &s)
		v = ast.String{Value: s}
	case "CharacterLiteral":
		var s string

		s, err = character(n.Value)
		v = ast.Char{Value: s}
	case "CXXBoolLiteralExpr":
		var b bool

		err = json.Unmarshal(n.Value, &b)
		v = ast.Bool{Value: b}
	default:
		panic(n.Kind)
	}

	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "%v value %s: %v", n.Kind, n.Value, err)
	}

	return ast.E(ast.EConst{Value: v}), nil
}

// integer parses "42" as clang writes it, or a bare number.
func integer(raw json.RawMessage) (int64, error) {
	var s string

	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}

	var x int64

	err := json.Unmarshal(raw, &x)

	return x, err
}

// character keeps a string value as is.
// Clang writes the code point as a number, that becomes the character itself.
func character(raw json.RawMessage) (string, error) {
	var s string

	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var x int32

	err := json.Unmarshal(raw, &x)
	if err != nil {
		return "", err
	}

	return string(rune(x)), nil
}
