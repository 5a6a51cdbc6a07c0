package codec

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	// UnknownTagError is returned for a tag outside its closed catalogue.
	UnknownTagError struct {
		Catalogue string
		Tag       string
		Path      string
	}
)

var (
	ErrArity     = errors.New("wrong number of arguments")
	ErrMalformed = errors.New("malformed node")
)

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown %s tag %q at %s", e.Catalogue, e.Tag, where(e.Path))
}

func where(p string) string {
	if p == "" {
		return "root"
	}

	return p
}

func malformed(p string, f string, args ...any) error {
	return errors.Wrap(ErrMalformed, "%v: %v", where(p), fmt.Sprintf(f, args...))
}

func elem(p string, i int) string {
	return fmt.Sprintf("%s[%d]", p, i)
}

func field(p, name string) string {
	if p == "" {
		return name
	}

	return p + "." + name
}
