package ast

import "fmt"

// Children returns direct subexpressions in wire order.
// An absent else branch is skipped.
func Children(d ExprDesc) []*Expr {
	switch d := d.(type) {
	case EVar, EConst:
		return nil
	case EInfixop:
		return []*Expr{d.Left, d.Right}
	case EFunc:
		return []*Expr{d.Body}
	case EIf:
		if d.Else == nil {
			return []*Expr{d.Cond, d.Then}
		}

		return []*Expr{d.Cond, d.Then, d.Else}
	case ELet:
		return []*Expr{d.Value, d.Body}
	case ELetTuple:
		return []*Expr{d.Value, d.Body}
	case ELetRecord:
		return []*Expr{d.Value, d.Body}
	case EApp:
		return []*Expr{d.Fn, d.Arg}
	case EMatch:
		l := make([]*Expr, 0, 1+len(d.Cases))
		l = append(l, d.Scrutinee)

		for _, c := range d.Cases {
			l = append(l, c.Body)
		}

		return l
	case ETuple:
		return d.Items
	case ERef:
		return []*Expr{d.Value}
	case EDeref:
		return []*Expr{d.Value}
	case EUpdate:
		return []*Expr{d.Target, d.Value}
	case EFuture:
		return []*Expr{d.Expr}
	case EForce:
		return []*Expr{d.Expr}
	case EPar:
		return d.Items
	case ETry:
		return []*Expr{d.Try, d.Catch}
	case EAnnot:
		return []*Expr{d.Expr}
	case ENewVert:
		return []*Expr{d.Expr}
	default:
		panic(fmt.Sprintf("unexpected expression: %T", d))
	}
}

// Walk visits e and its subexpressions in pre-order.
// Children of a node are skipped if f returns false.
func Walk(e *Expr, f func(e *Expr) bool) {
	if e == nil || !f(e) {
		return
	}

	for _, c := range Children(e.Desc) {
		Walk(c, f)
	}
}

// WalkProgram walks every expression of every declaration in order.
func WalkProgram(p Program, f func(e *Expr) bool) {
	for _, d := range p {
		switch d := d.Desc.(type) {
		case DVal:
			Walk(d.Expr, f)
		case DExp:
			Walk(d.Expr, f)
		case DExtType, DExtRecType, DExternal, DTypeDef:
		default:
			panic(fmt.Sprintf("unexpected declaration: %T", d))
		}
	}
}
