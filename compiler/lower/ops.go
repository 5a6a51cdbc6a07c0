package lower

import (
	"tlog.app/go/errors"

	"github.com/slowlang/omp2gml/compiler/ast"
)

// Dumps spell opcodes either way depending on the node, so both map
// to the same operator.
var operators = map[string]ast.InfixOp{
	"+":   ast.Plus,
	"Add": ast.Plus,

	"-":   ast.Minus,
	"Sub": ast.Minus,

	"*":   ast.Times,
	"Mul": ast.Times,

	"/":   ast.Div,
	"Div": ast.Div,

	"<":    ast.Lt,
	"Less": ast.Lt,

	"<=":        ast.Le,
	"LessEqual": ast.Le,

	">":       ast.Gt,
	"Greater": ast.Gt,

	">=":           ast.Ge,
	"GreaterEqual": ast.Ge,

	"==":    ast.Eq,
	"Equal": ast.Eq,

	"!=":       ast.Ne,
	"NotEqual": ast.Ne,

	"&&":   ast.And,
	"LAnd": ast.And,

	"||":  ast.Or,
	"LOr": ast.Or,

	"^": ast.Concat,
}

// Operator maps a binary operator opcode to its infix operator.
// Assignment is not an operator, see Converter.
func Operator(opcode string) (ast.InfixOp, error) {
	if opcode == "=" {
		return "", ErrAssignment
	}

	op, ok := operators[opcode]
	if !ok {
		return "", errors.Wrap(ErrUnsupportedOperator, "opcode %q", opcode)
	}

	return op, nil
}
