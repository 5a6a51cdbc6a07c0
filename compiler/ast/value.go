package ast

import (
	"encoding/json"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Raw is an opaque JSON payload. It is never interpreted, only carried.
	// nil means absent.
	Raw = json.RawMessage

	LongID interface {
		longID()
		String() string
	}

	Id struct {
		Name string
	}

	ModID struct {
		Module string
		Rest   LongID
	}

	Const interface {
		constant()
	}

	Num struct {
		Value int64
	}

	String struct {
		Value string
	}

	Char struct {
		Value string
	}

	Bool struct {
		Value bool
	}

	Unit struct{}

	// Futref is a reference to a running future.
	// It is produced by evaluators, never by lowering.
	Futref struct {
		Value Raw
	}

	InfixOp string

	IsRecursive string
)

const (
	Plus   InfixOp = "Plus"
	Minus  InfixOp = "Minus"
	Times  InfixOp = "Times"
	Div    InfixOp = "Div"
	Lt     InfixOp = "Lt"
	Le     InfixOp = "Le"
	Gt     InfixOp = "Gt"
	Ge     InfixOp = "Ge"
	Eq     InfixOp = "Eq"
	Ne     InfixOp = "Ne"
	And    InfixOp = "And"
	Or     InfixOp = "Or"
	Concat InfixOp = "Concat"
)

const (
	NotRecursive IsRecursive = ""
	Recursive    IsRecursive = "Recursive"
	Terminal     IsRecursive = "Terminal"
)

var InfixOps = []InfixOp{Plus, Minus, Times, Div, Lt, Le, Gt, Ge, Eq, Ne, And, Or, Concat}

func (Id) longID()    {}
func (ModID) longID() {}

func (Num) constant()    {}
func (String) constant() {}
func (Char) constant()   {}
func (Bool) constant()   {}
func (Unit) constant()   {}
func (Futref) constant() {}

func (x Id) String() string { return x.Name }

func (x ModID) String() string {
	if x.Rest == nil {
		return x.Module + "."
	}

	return x.Module + "." + x.Rest.String()
}

func (x Id) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, x.Name)
}

func (x ModID) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, x.String())
}

func (op InfixOp) Valid() bool {
	for _, x := range InfixOps {
		if op == x {
			return true
		}
	}

	return false
}

func (r IsRecursive) Valid() bool {
	return r == Recursive || r == Terminal
}

// Symbol is the operator as written in GML source.
func (op InfixOp) Symbol() string {
	switch op {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Times:
		return "*"
	case Div:
		return "/"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case Eq:
		return "="
	case Ne:
		return "<>"
	case And:
		return "&&"
	case Or:
		return "||"
	case Concat:
		return "^"
	}

	return string(op)
}
