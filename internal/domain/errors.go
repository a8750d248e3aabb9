package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Callers classify with errors.Is
// and extract payload details with errors.As on the typed events below.
var (
	ErrParse      = errors.New("parse failure")
	ErrValidation = errors.New("validation failure")
	ErrTransport  = errors.New("transport failure")
)

// ParseError carries the offending raw line for diagnostics.
type ParseError struct {
	ConnectionID string
	Raw          string
	Reason       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %q", ErrParse, e.Reason, e.Raw)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ValidationError reports a reading rejected by the sanity envelope.
type ValidationError struct {
	Reading Reading
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: sensor=%q value=%.2f", ErrValidation, e.Reason, e.Reading.SensorID, e.Reading.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
