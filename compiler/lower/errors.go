package lower

import "tlog.app/go/errors"

var (
	ErrTaskContext         = errors.New("task context violation")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrUnsupportedArity    = errors.New("unsupported arity")
	ErrUnsupportedTarget   = errors.New("unsupported assignment target")
	ErrAssignment          = errors.New("assignment outside of a block")
	ErrMalformed           = errors.New("malformed node")
)
