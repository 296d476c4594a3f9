package model

import (
	"errors"
	"fmt"
)

// ErrProfileUnavailable is matched by every error that aborts a whole assembly
var ErrProfileUnavailable = errors.New("could not produce a profile")

// DataFormatError reports a candidate that is not JSON or does not fit the schema
type DataFormatError struct {
	Err error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("invalid data format received from analysis: %v", e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

func (e *DataFormatError) Is(target error) bool { return target == ErrProfileUnavailable }

// ValidationError reports a structurally required field missing from the candidate
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("candidate is missing required field %q", e.Field)
}

func (e *ValidationError) Is(target error) bool { return target == ErrProfileUnavailable }

// URLParseError reports a single citation URL that cannot be parsed.
// It never aborts an assembly; the citation is dropped.
type URLParseError struct {
	URL string
	Err error
}

func (e *URLParseError) Error() string {
	return fmt.Sprintf("parse citation URL %q: %v", e.URL, e.Err)
}

func (e *URLParseError) Unwrap() error { return e.Err }
