package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/omp2gml/compiler/ast"
)

// Format appends ML text of a program, declaration or expression to b.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	switch x := x.(type) {
	case ast.Program:
		return formatProgram(ctx, b, x)
	case *ast.Decl:
		return formatDecl(b, x)
	case *ast.Expr:
		return formatExpr(b, x, 0)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatProgram(ctx context.Context, b []byte, p ast.Program) (_ []byte, err error) {
	for i, d := range p {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = formatDecl(b, d)
		if err != nil {
			return nil, errors.Wrap(err, "decl[%d]", i)
		}
	}

	return b, nil
}

func formatDecl(b []byte, d *ast.Decl) (_ []byte, err error) {
	if d == nil {
		return nil, errors.New("missing declaration")
	}

	switch x := d.Desc.(type) {
	case ast.DVal:
		if f, ok := x.Expr.Desc.(ast.EFunc); ok && f.Name == x.Name {
			b = append(b, "let "...)

			if f.Recursive == ast.Recursive {
				b = append(b, "rec "...)
			}

			b = app(b, 0, "%s %s =", x.Name, f.Arg)

			b, err = formatBody(b, f.Body, 0)
			if err != nil {
				return nil, errors.Wrap(err, "val %v", x.Name)
			}

			break
		}

		b = app(b, 0, "let %s =", x.Name)

		b, err = formatBody(b, x.Expr, 0)
		if err != nil {
			return nil, errors.Wrap(err, "val %v", x.Name)
		}
	case ast.DExp:
		b = append(b, "let _ ="...)

		b, err = formatBody(b, x.Expr, 0)
		if err != nil {
			return nil, errors.Wrap(err, "exp")
		}
	case ast.DExtType:
		b = app(b, 0, "type %s", x.Name)
	case ast.DExtRecType:
		b = app(b, 0, "type %s = {", x.Name)

		for i, f := range x.Fields {
			if i != 0 {
				b = append(b, ';')
			}

			b = app(b, 0, " %v : %s", f.ID, raw(f.Type))
		}

		b = append(b, " }"...)
	case ast.DExternal:
		b = app(b, 0, "external %v", x.ID)

		if x.Type != nil {
			b = app(b, 0, " : %s", raw(x.Type))
		}
	case ast.DTypeDef:
		b = app(b, 0, "type %s %s = %s", raw(x.Params), x.Name, raw(x.Constructors))
	default:
		panic(x)
	}

	b = append(b, '\n')

	return b, nil
}

func formatExpr(b []byte, x *ast.Expr, d int) (_ []byte, err error) {
	if x == nil {
		return nil, errors.New("missing expression")
	}

	switch e := x.Desc.(type) {
	case ast.EVar:
		b = append(b, e.ID.String()...)
	case ast.EConst:
		b = formatConst(b, e.Value)
	case ast.EInfixop:
		b = append(b, '(')

		b, err = formatExpr(b, e.Left, d)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %s ", e.Op.Symbol())

		b, err = formatExpr(b, e.Right, d)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		b = append(b, ')')
	case ast.EFunc:
		b = app(b, 0, "fun %s ->", e.Arg)

		b, err = formatBody(b, e.Body, d)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", e.Name)
		}
	case ast.EIf:
		b = append(b, "if "...)

		b, err = formatExpr(b, e.Cond, d)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, " then"...)

		b, err = formatBody(b, e.Then, d)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		if e.Else == nil {
			break
		}

		if multiline(e.Then) {
			b = append(b, '\n')
			b = app(b, d, "else")
		} else {
			b = append(b, " else"...)
		}

		b, err = formatBody(b, e.Else, d)
		if err != nil {
			return nil, errors.Wrap(err, "else")
		}
	case ast.ELet:
		return formatLet(b, e.Name, e.Value, e.Body, d)
	case ast.ELetTuple:
		return formatLet(b, string(raw(e.Pattern)), e.Value, e.Body, d)
	case ast.ELetRecord:
		return formatLet(b, string(raw(e.Fields)), e.Value, e.Body, d)
	case ast.EApp:
		b, err = formatAtom(b, e.Fn, d)
		if err != nil {
			return nil, errors.Wrap(err, "fn")
		}

		b = append(b, ' ')

		b, err = formatAtom(b, e.Arg, d)
		if err != nil {
			return nil, errors.Wrap(err, "arg")
		}
	case ast.EMatch:
		b = append(b, "match "...)

		b, err = formatExpr(b, e.Scrutinee, d)
		if err != nil {
			return nil, errors.Wrap(err, "scrutinee")
		}

		b = append(b, " with"...)

		for i, c := range e.Cases {
			b = app(b, 0, "\n")
			b = app(b, d, "| %s ->", raw(c.Pattern))

			b, err = formatBody(b, c.Body, d)
			if err != nil {
				return nil, errors.Wrap(err, "case[%d]", i)
			}
		}
	case ast.ETuple:
		return formatList(b, e.Items, ", ", d)
	case ast.EPar:
		return formatList(b, e.Items, " || ", d)
	case ast.ERef:
		return formatPrefix(b, "ref ", e.Value, d)
	case ast.EDeref:
		return formatPrefix(b, "!", e.Value, d)
	case ast.EUpdate:
		b, err = formatAtom(b, e.Target, d)
		if err != nil {
			return nil, errors.Wrap(err, "target")
		}

		b = append(b, " := "...)

		b, err = formatExpr(b, e.Value, d)
		if err != nil {
			return nil, errors.Wrap(err, "value")
		}
	case ast.EFuture:
		return formatPrefix(b, "future ", e.Expr, d)
	case ast.EForce:
		return formatPrefix(b, "force ", e.Expr, d)
	case ast.ETry:
		b = append(b, "try"...)

		b, err = formatBody(b, e.Try, d)
		if err != nil {
			return nil, errors.Wrap(err, "try")
		}

		b = append(b, " with"...)

		b, err = formatBody(b, e.Catch, d)
		if err != nil {
			return nil, errors.Wrap(err, "catch")
		}
	case ast.EAnnot:
		b = append(b, '(')

		b, err = formatExpr(b, e.Expr, d)
		if err != nil {
			return nil, errors.Wrap(err, "annot")
		}

		b = app(b, 0, " : %s)", raw(e.Ann))
	case ast.ENewVert:
		return formatPrefix(b, "newvert ", e.Expr, d)
	default:
		panic(e)
	}

	return b, nil
}

// formatLet writes a binding and continues with its body on the next line
// at the same depth, so block chains read top to bottom.
func formatLet(b []byte, name string, value, body *ast.Expr, d int) (_ []byte, err error) {
	b = app(b, 0, "let %s =", name)

	b, err = formatBody(b, value, d)
	if err != nil {
		return nil, errors.Wrap(err, "let %v", name)
	}

	if multiline(value) {
		b = app(b, 0, "\n")
		b = app(b, d, "in\n")
	} else {
		b = append(b, " in\n"...)
	}

	b = app(b, d, "")

	return formatExpr(b, body, d)
}

// formatBody puts multiline expressions on their own lines one level deeper.
func formatBody(b []byte, x *ast.Expr, d int) ([]byte, error) {
	if !multiline(x) {
		b = append(b, ' ')

		return formatExpr(b, x, d)
	}

	b = append(b, '\n')
	b = app(b, d+1, "")

	return formatExpr(b, x, d+1)
}

func formatAtom(b []byte, x *ast.Expr, d int) (_ []byte, err error) {
	if x != nil && atomic(x.Desc) {
		return formatExpr(b, x, d)
	}

	b = append(b, '(')

	b, err = formatExpr(b, x, d)
	if err != nil {
		return nil, err
	}

	b = append(b, ')')

	return b, nil
}

func formatPrefix(b []byte, prefix string, x *ast.Expr, d int) ([]byte, error) {
	b = append(b, prefix...)

	return formatAtom(b, x, d)
}

func formatList(b []byte, l []*ast.Expr, sep string, d int) (_ []byte, err error) {
	b = append(b, '(')

	for i, x := range l {
		if i != 0 {
			b = append(b, sep...)
		}

		b, err = formatExpr(b, x, d)
		if err != nil {
			return nil, errors.Wrap(err, "item[%d]", i)
		}
	}

	b = append(b, ')')

	return b, nil
}

func formatConst(b []byte, c ast.Const) []byte {
	switch c := c.(type) {
	case ast.Num:
		return hfmt.Appendf(b, "%d", c.Value)
	case ast.String:
		return hfmt.Appendf(b, "%q", c.Value)
	case ast.Char:
		return hfmt.Appendf(b, "'%s'", c.Value)
	case ast.Bool:
		return hfmt.Appendf(b, "%v", c.Value)
	case ast.Unit:
		return append(b, "()"...)
	case ast.Futref:
		return hfmt.Appendf(b, "<futref %s>", raw(c.Value))
	default:
		panic(c)
	}
}

func multiline(x *ast.Expr) bool {
	if x == nil {
		return false
	}

	switch x.Desc.(type) {
	case ast.ELet, ast.ELetTuple, ast.ELetRecord, ast.EMatch:
		return true
	}

	return false
}

func atomic(d ast.ExprDesc) bool {
	switch d.(type) {
	case ast.EVar, ast.EConst, ast.EInfixop, ast.ETuple, ast.EPar, ast.EAnnot:
		return true
	}

	return false
}

func raw(r ast.Raw) []byte {
	if r == nil {
		return []byte("_")
	}

	return ast.Compact(r)
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"

	for d > len(tabs) {
		b = append(b, tabs...)
		d -= len(tabs)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)

	return b
}
