package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Equal reports whether two expressions are structurally equal.
// Metadata compares by compacted JSON, nil is distinct from null.
// Opaque argument positions treat nil and null as the same value,
// as the wire has no way to tell them apart.
// Empty and nil sequences are equal.
func Equal(a, b *Expr) bool {
	if a == nil || b == nil {
		return a == b
	}

	return rawEqual(a.Loc, b.Loc) &&
		rawEqual(a.Typ, b.Typ) &&
		rawEqual(a.Gr, b.Gr) &&
		descEqual(a.Desc, b.Desc)
}

func DeclEqual(a, b *Decl) bool {
	if a == nil || b == nil {
		return a == b
	}

	if !rawEqual(a.Loc, b.Loc) || !rawEqual(a.Info, b.Info) {
		return false
	}

	switch x := a.Desc.(type) {
	case DVal:
		y, ok := b.Desc.(DVal)
		return ok && x.Name == y.Name && argEqual(x.Type, y.Type) && Equal(x.Expr, y.Expr)
	case DExp:
		y, ok := b.Desc.(DExp)
		return ok && Equal(x.Expr, y.Expr)
	case DExtType:
		y, ok := b.Desc.(DExtType)
		return ok && x.Name == y.Name
	case DExtRecType:
		y, ok := b.Desc.(DExtRecType)
		if !ok || x.Name != y.Name || len(x.Fields) != len(y.Fields) {
			return false
		}

		for i := range x.Fields {
			if !LongIDEqual(x.Fields[i].ID, y.Fields[i].ID) || !argEqual(x.Fields[i].Type, y.Fields[i].Type) {
				return false
			}
		}

		return true
	case DExternal:
		y, ok := b.Desc.(DExternal)
		return ok && LongIDEqual(x.ID, y.ID) && argEqual(x.Type, y.Type)
	case DTypeDef:
		y, ok := b.Desc.(DTypeDef)
		return ok && x.Name == y.Name && argEqual(x.Params, y.Params) && argEqual(x.Constructors, y.Constructors)
	case nil:
		return b.Desc == nil
	default:
		panic(fmt.Sprintf("unexpected declaration: %T", x))
	}
}

func ProgramEqual(a, b Program) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !DeclEqual(a[i], b[i]) {
			return false
		}
	}

	return true
}

func LongIDEqual(a, b LongID) bool {
	switch x := a.(type) {
	case Id:
		y, ok := b.(Id)
		return ok && x == y
	case ModID:
		y, ok := b.(ModID)
		return ok && x.Module == y.Module && LongIDEqual(x.Rest, y.Rest)
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("unexpected identifier: %T", x))
	}
}

func ConstEqual(a, b Const) bool {
	switch x := a.(type) {
	case Num, String, Char, Bool, Unit:
		return a == b
	case Futref:
		y, ok := b.(Futref)
		return ok && argEqual(x.Value, y.Value)
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("unexpected constant: %T", x))
	}
}

func descEqual(a, b ExprDesc) bool {
	switch x := a.(type) {
	case EVar:
		y, ok := b.(EVar)
		return ok && LongIDEqual(x.ID, y.ID)
	case EConst:
		y, ok := b.(EConst)
		return ok && ConstEqual(x.Value, y.Value)
	case EInfixop:
		y, ok := b.(EInfixop)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case EFunc:
		y, ok := b.(EFunc)
		return ok && x.Recursive == y.Recursive && x.Name == y.Name && x.Arg == y.Arg &&
			argEqual(x.ArgType, y.ArgType) && argEqual(x.RetType, y.RetType) &&
			argEqual(x.UF, y.UF) && argEqual(x.UT, y.UT) &&
			Equal(x.Body, y.Body)
	case EIf:
		y, ok := b.(EIf)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.Then, y.Then) && Equal(x.Else, y.Else)
	case ELet:
		y, ok := b.(ELet)
		return ok && x.Name == y.Name && argEqual(x.Ann, y.Ann) && Equal(x.Value, y.Value) && Equal(x.Body, y.Body)
	case ELetTuple:
		y, ok := b.(ELetTuple)
		return ok && argEqual(x.Pattern, y.Pattern) && argEqual(x.Ann, y.Ann) && Equal(x.Value, y.Value) && Equal(x.Body, y.Body)
	case ELetRecord:
		y, ok := b.(ELetRecord)
		return ok && argEqual(x.Fields, y.Fields) && argEqual(x.Ann, y.Ann) && Equal(x.Value, y.Value) && Equal(x.Body, y.Body)
	case EApp:
		y, ok := b.(EApp)
		return ok && Equal(x.Fn, y.Fn) && argEqual(x.V1, y.V1) && argEqual(x.V2, y.V2) && Equal(x.Arg, y.Arg)
	case EMatch:
		y, ok := b.(EMatch)
		if !ok || !Equal(x.Scrutinee, y.Scrutinee) || len(x.Cases) != len(y.Cases) {
			return false
		}

		for i := range x.Cases {
			if !argEqual(x.Cases[i].Pattern, y.Cases[i].Pattern) || !Equal(x.Cases[i].Body, y.Cases[i].Body) {
				return false
			}
		}

		return true
	case ETuple:
		y, ok := b.(ETuple)
		return ok && listEqual(x.Items, y.Items)
	case ERef:
		y, ok := b.(ERef)
		return ok && Equal(x.Value, y.Value)
	case EDeref:
		y, ok := b.(EDeref)
		return ok && Equal(x.Value, y.Value)
	case EUpdate:
		y, ok := b.(EUpdate)
		return ok && Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case EFuture:
		y, ok := b.(EFuture)
		return ok && argEqual(x.V, y.V) && Equal(x.Expr, y.Expr)
	case EForce:
		y, ok := b.(EForce)
		return ok && Equal(x.Expr, y.Expr)
	case EPar:
		y, ok := b.(EPar)
		return ok && listEqual(x.Items, y.Items)
	case ETry:
		y, ok := b.(ETry)
		return ok && Equal(x.Try, y.Try) && Equal(x.Catch, y.Catch)
	case EAnnot:
		y, ok := b.(EAnnot)
		return ok && Equal(x.Expr, y.Expr) && argEqual(x.Ann, y.Ann)
	case ENewVert:
		y, ok := b.(ENewVert)
		return ok && Equal(x.Expr, y.Expr)
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("unexpected expression: %T", x))
	}
}

func listEqual(a, b []*Expr) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

func rawEqual(a, b Raw) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return bytes.Equal(Compact(a), Compact(b))
}

func argEqual(a, b Raw) bool {
	return rawEqual(nullToNil(a), nullToNil(b))
}

func nullToNil(r Raw) Raw {
	if r != nil && bytes.Equal(Compact(r), []byte("null")) {
		return nil
	}

	return r
}

// Compact returns r without insignificant whitespace.
// Invalid JSON is returned as is.
func Compact(r Raw) Raw {
	if r == nil {
		return nil
	}

	var b bytes.Buffer

	err := json.Compact(&b, r)
	if err != nil {
		return r
	}

	return b.Bytes()
}
