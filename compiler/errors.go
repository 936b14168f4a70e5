package compiler

import (
	"errors"
	"fmt"
)

// Error classes reported by the compiler. Test them with errors.Is.
var (
	ErrInputUnavailable = errors.New("could not open file")
	ErrMalformedOperand = errors.New("missing operand")
	ErrInvalidCharacter = errors.New("invalid character")
	ErrUnresolvedSkip   = errors.New("unresolved skip target")
	ErrBackendCompile   = errors.New("compile failed")
)

// Error is a failure attached to a source position.
type Error struct {
	Index  int
	Err    error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("index %d: %v", e.Index, e.Err)
	}

	return fmt.Sprintf("index %d: %v %s", e.Index, e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorAt(index int, err error, detail string) *Error {
	return &Error{Index: index, Err: err, Detail: detail}
}
