package cli

import (
	"errors"
)

// silentError marks a failure whose details were already rendered
type silentError struct {
	err error
}

func (e *silentError) Error() string { return e.err.Error() }
func (e *silentError) Unwrap() error { return e.err }

// Silent wraps err so main exits non-zero without printing it again
func Silent(err error) error {
	return &silentError{err: err}
}

// IsSilent reports whether err was already reported to the user
func IsSilent(err error) bool {
	var s *silentError
	return errors.As(err, &s)
}
