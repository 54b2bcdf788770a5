package store

import "errors"

// ErrUnavailable matches every error returned by a failed store read or write.
// Use errors.Is(err, store.ErrUnavailable).
var ErrUnavailable = errors.New("store unavailable")

// Error records the store operation that failed and why.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrUnavailable.
func (e *Error) Is(target error) bool {
	return target == ErrUnavailable
}

func opError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
