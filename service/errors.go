package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the target form does not exist.
	ErrNotFound = errors.New("form not found")
	// ErrNotOwner means the requester does not own the target form.
	ErrNotOwner = errors.New("not the form owner")
)

// ValidationError rejects a request before any storage mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a pre-storage validation rejection.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
