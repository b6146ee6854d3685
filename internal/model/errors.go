package model

import (
	"errors"
	"fmt"
)

// ErrBaselineOutOfRange is returned when the baseline index does not name a result set.
var ErrBaselineOutOfRange = errors.New("baseline index out of range")

// InsufficientInputError rejects comparisons over fewer than two result sets.
type InsufficientInputError struct {
	Got int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("comparison needs at least 2 result sets, got %d", e.Got)
}

// SourceFetchError reports that rows for a stored report could not be loaded.
// It is distinct from an empty result: the data never arrived.
type SourceFetchError struct {
	Handle string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Handle, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// IsSourceFetchError reports whether err wraps a *SourceFetchError.
func IsSourceFetchError(err error) bool {
	var sfe *SourceFetchError
	return errors.As(err, &sfe)
}
