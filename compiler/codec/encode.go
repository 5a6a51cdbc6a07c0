package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"tlog.app/go/errors"

	"github.com/slowlang/omp2gml/compiler/ast"
)

type (
	// out builds the positional arguments of one tagged array.
	// The first error sticks.
	out struct {
		path string
		a    []any

		err error
	}

	wireExprOut struct {
		EDesc []any   `json:"edesc"`
		ELoc  ast.Raw `json:"eloc,omitempty"`
		ETyp  ast.Raw `json:"etyp,omitempty"`
		EGr   ast.Raw `json:"egr,omitempty"`
	}

	wireDeclOut struct {
		DDesc []any   `json:"ddesc"`
		DLoc  ast.Raw `json:"dloc,omitempty"`
		DInfo ast.Raw `json:"dinfo,omitempty"`
	}
)

var null = json.RawMessage("null")

func EncodeProgram(p ast.Program) ([]byte, error) {
	v, err := programValue(p)
	if err != nil {
		return nil, err
	}

	return marshal(v, false)
}

func EncodeDecl(d *ast.Decl) ([]byte, error) {
	v, err := declValue(d, "")
	if err != nil {
		return nil, err
	}

	return marshal(v, false)
}

func EncodeExpr(e *ast.Expr) ([]byte, error) {
	v, err := exprValue(e, "")
	if err != nil {
		return nil, err
	}

	return marshal(v, false)
}

func EncodeLongID(id ast.LongID) ([]byte, error) {
	v, err := longIDValue(id, "")
	if err != nil {
		return nil, err
	}

	return marshal(v, false)
}

func EncodeConst(c ast.Const) ([]byte, error) {
	v, err := constValue(c, "")
	if err != nil {
		return nil, err
	}

	return marshal(v, false)
}

// MarshalIndent encodes a program the way EncodeProgram does, indented.
func MarshalIndent(p ast.Program) ([]byte, error) {
	v, err := programValue(p)
	if err != nil {
		return nil, err
	}

	return marshal(v, true)
}

func programValue(p ast.Program) ([]any, error) {
	l := make([]any, 0, len(p))

	for i, d := range p {
		v, err := declValue(d, elem("", i))
		if err != nil {
			return nil, err
		}

		l = append(l, v)
	}

	return l, nil
}

func exprValue(e *ast.Expr, p string) (any, error) {
	if e == nil {
		return nil, malformed(p, "nil expression")
	}

	o := &out{path: field(p, "edesc")}

	switch d := e.Desc.(type) {
	case ast.EVar:
		o.tag("EVar").longID(d.ID)
	case ast.EConst:
		o.tag("EConst").constant(d.Value)
	case ast.EInfixop:
		o.tag("EInfixop").op(d.Op).expr(d.Left).expr(d.Right)
	case ast.EFunc:
		o.tag("EFunc").recursive(d.Recursive).str(d.Name).str(d.Arg).
			raw(d.ArgType).raw(d.RetType).raw(d.UF).raw(d.UT).
			expr(d.Body)
	case ast.EIf:
		o.tag("EIf").expr(d.Cond).expr(d.Then).optExpr(d.Else)
	case ast.ELet:
		o.tag("ELet").str(d.Name).raw(d.Ann).expr(d.Value).expr(d.Body)
	case ast.ELetTuple:
		o.tag("ELetTuple").raw(d.Pattern).raw(d.Ann).expr(d.Value).expr(d.Body)
	case ast.ELetRecord:
		o.tag("ELetRecord").raw(d.Fields).raw(d.Ann).expr(d.Value).expr(d.Body)
	case ast.EApp:
		o.tag("EApp").expr(d.Fn).raw(d.V1).raw(d.V2).expr(d.Arg)
	case ast.EMatch:
		o.tag("EMatch").expr(d.Scrutinee).cases(d.Cases)
	case ast.ETuple:
		o.tag("ETuple").exprs(d.Items)
	case ast.ERef:
		o.tag("ERef").expr(d.Value)
	case ast.EDeref:
		o.tag("EDeref").expr(d.Value)
	case ast.EUpdate:
		o.tag("EUpdate").expr(d.Target).expr(d.Value)
	case ast.EFuture:
		o.tag("EFuture").raw(d.V).expr(d.Expr)
	case ast.EForce:
		o.tag("EForce").expr(d.Expr)
	case ast.EPar:
		o.tag("EPar").exprs(d.Items)
	case ast.ETry:
		o.tag("ETry").expr(d.Try).expr(d.Catch)
	case ast.EAnnot:
		o.tag("EAnnot").expr(d.Expr).raw(d.Ann)
	case ast.ENewVert:
		o.tag("ENewVert").expr(d.Expr)
	default:
		return nil, &UnknownTagError{Catalogue: catExpr, Tag: fmt.Sprintf("%T", d), Path: elem(o.path, 0)}
	}

	if o.err != nil {
		return nil, o.err
	}

	return wireExprOut{
		EDesc: o.a,
		ELoc:  e.Loc,
		ETyp:  e.Typ,
		EGr:   e.Gr,
	}, nil
}

func declValue(x *ast.Decl, p string) (any, error) {
	if x == nil {
		return nil, malformed(p, "nil declaration")
	}

	o := &out{path: field(p, "ddesc")}

	switch d := x.Desc.(type) {
	case ast.DVal:
		o.tag("DVal").str(d.Name).raw(d.Type).expr(d.Expr)
	case ast.DExp:
		o.tag("DExp").expr(d.Expr)
	case ast.DExtType:
		o.tag("DExtType").str(d.Name)
	case ast.DExtRecType:
		o.tag("DExtRecType").str(d.Name).recFields(d.Fields)
	case ast.DExternal:
		o.tag("DExternal").longID(d.ID).raw(d.Type)
	case ast.DTypeDef:
		o.tag("DTypeDef").raw(d.Params).str(d.Name).raw(d.Constructors)
	default:
		return nil, &UnknownTagError{Catalogue: catDecl, Tag: fmt.Sprintf("%T", d), Path: elem(o.path, 0)}
	}

	if o.err != nil {
		return nil, o.err
	}

	return wireDeclOut{
		DDesc: o.a,
		DLoc:  x.Loc,
		DInfo: x.Info,
	}, nil
}

func longIDValue(id ast.LongID, p string) (any, error) {
	o := &out{path: p}

	switch id := id.(type) {
	case ast.Id:
		o.tag("Id").str(id.Name)
	case ast.ModID:
		o.tag("Modid").str(id.Module).longID(id.Rest)
	default:
		return nil, &UnknownTagError{Catalogue: catID, Tag: fmt.Sprintf("%T", id), Path: elem(p, 0)}
	}

	return o.a, o.err
}

func constValue(c ast.Const, p string) (any, error) {
	o := &out{path: p}

	switch c := c.(type) {
	case ast.Num:
		o.tag("Num").add(c.Value)
	case ast.String:
		o.tag("String").str(c.Value)
	case ast.Char:
		o.tag("Char").str(c.Value)
	case ast.Bool:
		o.tag("Bool").add(c.Value)
	case ast.Unit:
		o.tag("Unit")
	case ast.Futref:
		o.tag("Futref").raw(c.Value)
	default:
		return nil, &UnknownTagError{Catalogue: catConst, Tag: fmt.Sprintf("%T", c), Path: elem(p, 0)}
	}

	return o.a, o.err
}

func (o *out) add(v any) *out {
	o.a = append(o.a, v)
	return o
}

func (o *out) next() string {
	return elem(o.path, len(o.a))
}

func (o *out) fail(err error) {
	if o.err == nil {
		o.err = err
	}
}

func (o *out) tag(t string) *out { return o.add(t) }

func (o *out) str(s string) *out { return o.add(s) }

// raw writes an opaque argument. nil writes null.
func (o *out) raw(r ast.Raw) *out {
	if r == nil {
		return o.add(null)
	}

	return o.add(r)
}

func (o *out) expr(e *ast.Expr) *out {
	v, err := exprValue(e, o.next())
	o.fail(err)

	return o.add(v)
}

func (o *out) optExpr(e *ast.Expr) *out {
	if e == nil {
		return o.add(null)
	}

	return o.expr(e)
}

func (o *out) exprs(l []*ast.Expr) *out {
	p := o.next()
	r := make([]any, 0, len(l))

	for j, e := range l {
		v, err := exprValue(e, elem(p, j))
		o.fail(err)

		r = append(r, v)
	}

	return o.add(r)
}

func (o *out) cases(l []ast.MatchCase) *out {
	p := o.next()
	r := make([]any, 0, len(l))

	for j, c := range l {
		v, err := exprValue(c.Body, elem(elem(p, j), 1))
		o.fail(err)

		r = append(r, []any{rawOrNull(c.Pattern), v})
	}

	return o.add(r)
}

func (o *out) recFields(l []ast.RecField) *out {
	p := o.next()
	r := make([]any, 0, len(l))

	for j, f := range l {
		v, err := longIDValue(f.ID, elem(elem(p, j), 0))
		o.fail(err)

		r = append(r, []any{v, rawOrNull(f.Type)})
	}

	return o.add(r)
}

func (o *out) longID(id ast.LongID) *out {
	v, err := longIDValue(id, o.next())
	o.fail(err)

	return o.add(v)
}

func (o *out) constant(c ast.Const) *out {
	v, err := constValue(c, o.next())
	o.fail(err)

	return o.add(v)
}

func (o *out) op(op ast.InfixOp) *out {
	if !op.Valid() {
		o.fail(&UnknownTagError{Catalogue: catOp, Tag: string(op), Path: elem(o.next(), 0)})
	}

	return o.add([]string{string(op)})
}

func (o *out) recursive(r ast.IsRecursive) *out {
	if r == ast.NotRecursive {
		return o.add(null)
	}

	if !r.Valid() {
		o.fail(&UnknownTagError{Catalogue: catRec, Tag: string(r), Path: elem(o.next(), 0)})
	}

	return o.add([]string{string(r)})
}

func rawOrNull(r ast.Raw) any {
	if r == nil {
		return null
	}

	return r
}

func marshal(v any, indent bool) ([]byte, error) {
	var b bytes.Buffer

	e := json.NewEncoder(&b)
	e.SetEscapeHTML(false)

	if indent {
		e.SetIndent("", "  ")
	}

	err := e.Encode(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}

	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}
