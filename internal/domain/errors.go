package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingLandmark    = errors.New("missing landmark")
	ErrTruncatedRecord    = errors.New("record truncated by end of input")
	ErrShortField         = errors.New("field shorter than layout window")
	ErrEmptyLocation      = errors.New("empty location")
	ErrInvalidTemperature = errors.New("invalid temperature")
)

// ParseError reports a raw field the reading builder could not accept.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MalformedRecordError reports one skipped feed record. It never aborts a scan.
type MalformedRecordError struct {
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Reason returns a short label for the failure, suitable as a metric label.
func (e *MalformedRecordError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrMissingLandmark):
		return "missing_landmark"
	case errors.Is(e.Err, ErrTruncatedRecord):
		return "truncated"
	case errors.Is(e.Err, ErrShortField):
		return "short_field"
	case errors.Is(e.Err, ErrEmptyLocation):
		return "empty_location"
	case errors.Is(e.Err, ErrInvalidTemperature):
		return "invalid_temperature"
	default:
		return "unknown"
	}
}
