package helper

import "fmt"

// Error wraps an underlying error with the operation that failed.
type Error struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("error in %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the name of the failed operation.
func NewError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
