package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyGroup         = errors.New("group has no members")
	ErrMissingCoordinates = errors.New("no group member has usable coordinates")
)

// CandidateSourceError is returned when a candidate source call fails.
// StatusCode is zero for transport failures.
type CandidateSourceError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *CandidateSourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("candidate source %s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("candidate source %s: %v", e.Source, e.Err)
}

func (e *CandidateSourceError) Unwrap() error { return e.Err }

func IsCandidateSourceError(err error) bool {
	var target *CandidateSourceError
	return errors.As(err, &target)
}
