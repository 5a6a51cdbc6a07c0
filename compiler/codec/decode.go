package codec

import (
	"bytes"
	"encoding/json"

	"tlog.app/go/errors"

	"github.com/slowlang/omp2gml/compiler/ast"
)

type (
	// args reads the positional arguments of one tagged array.
	// The first error sticks, later reads are no-ops.
	args struct {
		path string
		tag  string
		a    []json.RawMessage

		err error
	}

	wireExprIn struct {
		EDesc []json.RawMessage `json:"edesc"`
		ELoc  json.RawMessage   `json:"eloc"`
		ETyp  json.RawMessage   `json:"etyp"`
		EGr   json.RawMessage   `json:"egr"`
	}

	wireDeclIn struct {
		DDesc []json.RawMessage `json:"ddesc"`
		DLoc  json.RawMessage   `json:"dloc"`
		DInfo json.RawMessage   `json:"dinfo"`
	}
)

const (
	catExpr  = "expression"
	catDecl  = "declaration"
	catID    = "identifier"
	catConst = "constant"
	catOp    = "infix operator"
	catRec   = "recursion flag"
)

func DecodeProgram(data []byte) (ast.Program, error) {
	var l []json.RawMessage

	err := json.Unmarshal(data, &l)
	if err != nil {
		return nil, errors.Wrap(err, "program")
	}

	if l == nil {
		return nil, malformed("", "program is not an array")
	}

	var p ast.Program

	for i, raw := range l {
		d, err := decodeDecl(raw, elem("", i))
		if err != nil {
			return nil, err
		}

		p = append(p, d)
	}

	return p, nil
}

func DecodeDecl(data []byte) (*ast.Decl, error) {
	return decodeDecl(data, "")
}

func DecodeExpr(data []byte) (*ast.Expr, error) {
	return decodeExpr(data, "")
}

func DecodeLongID(data []byte) (ast.LongID, error) {
	return decodeLongID(data, "")
}

func DecodeConst(data []byte) (ast.Const, error) {
	return decodeConst(data, "")
}

func decodeExpr(data json.RawMessage, p string) (*ast.Expr, error) {
	var w wireExprIn

	err := unmarshalStrict(data, &w)
	if err != nil {
		return nil, malformed(p, "expression: %v", err)
	}

	a, err := newArgs(w.EDesc, field(p, "edesc"), catExpr)
	if err != nil {
		return nil, err
	}

	var d ast.ExprDesc

	switch a.tag {
	case "EVar":
		a.arity(1)
		d = ast.EVar{ID: a.longID(1)}
	case "EConst":
		a.arity(1)
		d = ast.EConst{Value: a.constant(1)}
	case "EInfixop":
		a.arity(3)
		d = ast.EInfixop{Op: a.op(1), Left: a.expr(2), Right: a.expr(3)}
	case "EFunc":
		a.arity(8)
		d = ast.EFunc{
			Recursive: a.recursive(1),
			Name:      a.str(2),
			Arg:       a.str(3),
			ArgType:   a.raw(4),
			RetType:   a.raw(5),
			UF:        a.raw(6),
			UT:        a.raw(7),
			Body:      a.expr(8),
		}
	case "EIf":
		a.arity(3)
		d = ast.EIf{Cond: a.expr(1), Then: a.expr(2), Else: a.optExpr(3)}
	case "ELet":
		a.arity(4)
		d = ast.ELet{Name: a.str(1), Ann: a.raw(2), Value: a.expr(3), Body: a.expr(4)}
	case "ELetTuple":
		a.arity(4)
		d = ast.ELetTuple{Pattern: a.raw(1), Ann: a.raw(2), Value: a.expr(3), Body: a.expr(4)}
	case "ELetRecord":
		a.arity(4)
		d = ast.ELetRecord{Fields: a.raw(1), Ann: a.raw(2), Value: a.expr(3), Body: a.expr(4)}
	case "EApp":
		a.arity(4)
		d = ast.EApp{Fn: a.expr(1), V1: a.raw(2), V2: a.raw(3), Arg: a.expr(4)}
	case "EMatch":
		a.arity(2)
		d = ast.EMatch{Scrutinee: a.expr(1), Cases: a.cases(2)}
	case "ETuple":
		a.arity(1)
		d = ast.ETuple{Items: a.exprs(1)}
	case "ERef":
		a.arity(1)
		d = ast.ERef{Value: a.expr(1)}
	case "EDeref":
		a.arity(1)
		d = ast.EDeref{Value: a.expr(1)}
	case "EUpdate":
		a.arity(2)
		d = ast.EUpdate{Target: a.expr(1), Value: a.expr(2)}
	case "EFuture":
		a.arity(2)
		d = ast.EFuture{V: a.raw(1), Expr: a.expr(2)}
	case "EForce":
		a.arity(1)
		d = ast.EForce{Expr: a.expr(1)}
	case "EPar":
		a.arity(1)
		d = ast.EPar{Items: a.exprs(1)}
	case "ETry":
		a.arity(2)
		d = ast.ETry{Try: a.expr(1), Catch: a.expr(2)}
	case "EAnnot":
		a.arity(2)
		d = ast.EAnnot{Expr: a.expr(1), Ann: a.raw(2)}
	case "ENewVert":
		a.arity(1)
		d = ast.ENewVert{Expr: a.expr(1)}
	default:
		return nil, &UnknownTagError{Catalogue: catExpr, Tag: a.tag, Path: elem(a.path, 0)}
	}

	if a.err != nil {
		return nil, a.err
	}

	return &ast.Expr{
		Desc: d,
		Loc:  meta(w.ELoc),
		Typ:  meta(w.ETyp),
		Gr:   meta(w.EGr),
	}, nil
}

func decodeDecl(data json.RawMessage, p string) (*ast.Decl, error) {
	var w wireDeclIn

	err := unmarshalStrict(data, &w)
	if err != nil {
		return nil, malformed(p, "declaration: %v", err)
	}

	a, err := newArgs(w.DDesc, field(p, "ddesc"), catDecl)
	if err != nil {
		return nil, err
	}

	var d ast.DeclDesc

	switch a.tag {
	case "DVal":
		a.arity(3)
		d = ast.DVal{Name: a.str(1), Type: a.raw(2), Expr: a.expr(3)}
	case "DExp":
		a.arity(1)
		d = ast.DExp{Expr: a.expr(1)}
	case "DExtType":
		a.arity(1)
		d = ast.DExtType{Name: a.str(1)}
	case "DExtRecType":
		a.arity(2)
		d = ast.DExtRecType{Name: a.str(1), Fields: a.recFields(2)}
	case "DExternal":
		a.arity(2)
		d = ast.DExternal{ID: a.longID(1), Type: a.raw(2)}
	case "DTypeDef":
		a.arity(3)
		d = ast.DTypeDef{Params: a.raw(1), Name: a.str(2), Constructors: a.raw(3)}
	default:
		return nil, &UnknownTagError{Catalogue: catDecl, Tag: a.tag, Path: elem(a.path, 0)}
	}

	if a.err != nil {
		return nil, a.err
	}

	return &ast.Decl{
		Desc: d,
		Loc:  meta(w.DLoc),
		Info: meta(w.DInfo),
	}, nil
}

// unmarshalStrict rejects object keys v has no field for,
// they would be lost on reencoding.
func unmarshalStrict(data []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()

	return d.Decode(v)
}

func decodeLongID(data json.RawMessage, p string) (ast.LongID, error) {
	a, err := decodeTagged(data, p, catID)
	if err != nil {
		return nil, err
	}

	var id ast.LongID

	switch a.tag {
	case "Id":
		a.arity(1)
		id = ast.Id{Name: a.str(1)}
	case "Modid":
		a.arity(2)
		id = ast.ModID{Module: a.str(1), Rest: a.longID(2)}
	default:
		return nil, &UnknownTagError{Catalogue: catID, Tag: a.tag, Path: elem(p, 0)}
	}

	if a.err != nil {
		return nil, a.err
	}

	return id, nil
}

func decodeConst(data json.RawMessage, p string) (ast.Const, error) {
	a, err := decodeTagged(data, p, catConst)
	if err != nil {
		return nil, err
	}

	var c ast.Const

	switch a.tag {
	case "Num":
		a.arity(1)

		var v int64
		a.value(1, &v)

		c = ast.Num{Value: v}
	case "String":
		a.arity(1)
		c = ast.String{Value: a.str(1)}
	case "Char":
		a.arity(1)
		c = ast.Char{Value: a.str(1)}
	case "Bool":
		a.arity(1)

		var v bool
		a.value(1, &v)

		c = ast.Bool{Value: v}
	case "Unit":
		a.arity(0)
		c = ast.Unit{}
	case "Futref":
		a.arity(1)
		c = ast.Futref{Value: a.raw(1)}
	default:
		return nil, &UnknownTagError{Catalogue: catConst, Tag: a.tag, Path: elem(p, 0)}
	}

	if a.err != nil {
		return nil, a.err
	}

	return c, nil
}

func decodeTagged(data json.RawMessage, p, cat string) (*args, error) {
	var l []json.RawMessage

	err := json.Unmarshal(data, &l)
	if err != nil {
		return nil, malformed(p, "%s: %v", cat, err)
	}

	return newArgs(l, p, cat)
}

func newArgs(l []json.RawMessage, p, cat string) (*args, error) {
	if len(l) == 0 {
		return nil, malformed(p, "%s: missing tag", cat)
	}

	a := &args{path: p, a: l}

	err := json.Unmarshal(l[0], &a.tag)
	if err != nil {
		return nil, malformed(elem(p, 0), "%s tag is not a string", cat)
	}

	return a, nil
}

func (a *args) arity(n int) {
	if a.err != nil || len(a.a)-1 == n {
		return
	}

	a.err = errors.Wrap(ErrArity, "%v %v: want %d, got %d", where(a.path), a.tag, n, len(a.a)-1)
}

// ok checks that argument i exists; arity must have been checked before.
func (a *args) ok(i int) bool {
	return a.err == nil && i < len(a.a)
}

func (a *args) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

func (a *args) value(i int, v any) {
	if !a.ok(i) {
		return
	}

	err := json.Unmarshal(a.a[i], v)
	if err != nil {
		a.fail(malformed(elem(a.path, i), "%v", err))
	}
}

func (a *args) str(i int) (s string) {
	if !a.ok(i) {
		return ""
	}

	if isNull(a.a[i]) {
		a.fail(malformed(elem(a.path, i), "string expected, got null"))
		return ""
	}

	a.value(i, &s)

	return s
}

// raw reads an opaque argument. null reads as nil.
func (a *args) raw(i int) ast.Raw {
	if !a.ok(i) || isNull(a.a[i]) {
		return nil
	}

	return ast.Compact(a.a[i])
}

func (a *args) expr(i int) *ast.Expr {
	if !a.ok(i) {
		return nil
	}

	if isNull(a.a[i]) {
		a.fail(malformed(elem(a.path, i), "expression expected, got null"))
		return nil
	}

	e, err := decodeExpr(a.a[i], elem(a.path, i))
	a.fail(err)

	return e
}

func (a *args) optExpr(i int) *ast.Expr {
	if !a.ok(i) || isNull(a.a[i]) {
		return nil
	}

	return a.expr(i)
}

func (a *args) list(i int) []json.RawMessage {
	if !a.ok(i) {
		return nil
	}

	var l []json.RawMessage

	a.value(i, &l)

	if a.err == nil && l == nil {
		a.fail(malformed(elem(a.path, i), "array expected"))
	}

	return l
}

func (a *args) exprs(i int) (r []*ast.Expr) {
	p := elem(a.path, i)

	for j, x := range a.list(i) {
		e, err := decodeExpr(x, elem(p, j))
		if err != nil {
			a.fail(err)
			return nil
		}

		r = append(r, e)
	}

	return r
}

func (a *args) pairs(i int) (r [][2]json.RawMessage) {
	p := elem(a.path, i)

	for j, x := range a.list(i) {
		var pair []json.RawMessage

		err := json.Unmarshal(x, &pair)
		if err != nil || len(pair) != 2 {
			a.fail(malformed(elem(p, j), "pair expected"))
			return nil
		}

		r = append(r, [2]json.RawMessage{pair[0], pair[1]})
	}

	return r
}

func (a *args) cases(i int) (r []ast.MatchCase) {
	p := elem(a.path, i)

	for j, pair := range a.pairs(i) {
		body, err := decodeExpr(pair[1], elem(elem(p, j), 1))
		if err != nil {
			a.fail(err)
			return nil
		}

		r = append(r, ast.MatchCase{
			Pattern: nullable(pair[0]),
			Body:    body,
		})
	}

	return r
}

func (a *args) recFields(i int) (r []ast.RecField) {
	p := elem(a.path, i)

	for j, pair := range a.pairs(i) {
		id, err := decodeLongID(pair[0], elem(elem(p, j), 0))
		if err != nil {
			a.fail(err)
			return nil
		}

		r = append(r, ast.RecField{
			ID:   id,
			Type: nullable(pair[1]),
		})
	}

	return r
}

func (a *args) longID(i int) ast.LongID {
	if !a.ok(i) {
		return nil
	}

	id, err := decodeLongID(a.a[i], elem(a.path, i))
	a.fail(err)

	return id
}

func (a *args) constant(i int) ast.Const {
	if !a.ok(i) {
		return nil
	}

	c, err := decodeConst(a.a[i], elem(a.path, i))
	a.fail(err)

	return c
}

// op reads an operator wrapped in a one element array: ["Plus"].
func (a *args) op(i int) ast.InfixOp {
	if !a.ok(i) {
		return ""
	}

	var l []string

	err := json.Unmarshal(a.a[i], &l)
	if err != nil || len(l) != 1 {
		a.fail(malformed(elem(a.path, i), "operator expected"))
		return ""
	}

	op := ast.InfixOp(l[0])
	if !op.Valid() {
		a.fail(&UnknownTagError{Catalogue: catOp, Tag: l[0], Path: elem(elem(a.path, i), 0)})
		return ""
	}

	return op
}

// recursive reads ["Recursive"], ["Terminal"] or null.
func (a *args) recursive(i int) ast.IsRecursive {
	if !a.ok(i) || isNull(a.a[i]) {
		return ast.NotRecursive
	}

	var l []string

	err := json.Unmarshal(a.a[i], &l)
	if err != nil || len(l) != 1 {
		a.fail(malformed(elem(a.path, i), "recursion flag expected"))
		return ast.NotRecursive
	}

	r := ast.IsRecursive(l[0])
	if !r.Valid() {
		a.fail(&UnknownTagError{Catalogue: catRec, Tag: l[0], Path: elem(elem(a.path, i), 0)})
		return ast.NotRecursive
	}

	return r
}

func meta(m json.RawMessage) ast.Raw {
	if m == nil {
		return nil
	}

	return ast.Compact(m)
}

func nullable(m json.RawMessage) ast.Raw {
	if isNull(m) {
		return nil
	}

	return ast.Compact(m)
}

func isNull(m json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(m), []byte("null"))
}
