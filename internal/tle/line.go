package tle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedLine is wrapped by every ParseError.
var ErrMalformedLine = errors.New("malformed TLE line")

const (
	inclinationField  = 2
	eccentricityField = 4
)

// ParseError reports a line 2 that cannot yield orbital elements. It points at
// bad upstream data, so callers should not retry.
type ParseError struct {
	Line   string
	Field  int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field >= 0 {
		return fmt.Sprintf("parse TLE line 2 field %d: %s: %q", e.Field, e.Reason, e.Line)
	}
	return fmt.Sprintf("parse TLE line 2: %s: %q", e.Reason, e.Line)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedLine, e.Err}
	}
	return []error{ErrMalformedLine}
}

// ParseLine2 extracts inclination and eccentricity from the second line of a
// TLE. Fields are whitespace-delimited; field 2 is the inclination in degrees
// and field 4 is the eccentricity with its implied leading decimal point.
func ParseLine2(line2 string) (Elements, error) {
	fields := strings.Fields(line2)
	if len(fields) <= eccentricityField {
		return Elements{}, &ParseError{
			Line:   line2,
			Field:  -1,
			Reason: fmt.Sprintf("expected at least %d fields, got %d", eccentricityField+1, len(fields)),
		}
	}

	inclination, err := strconv.ParseFloat(fields[inclinationField], 64)
	if err != nil {
		return Elements{}, &ParseError{Line: line2, Field: inclinationField, Reason: "invalid inclination", Err: err}
	}

	raw := fields[eccentricityField]
	if !allDigits(raw) {
		return Elements{}, &ParseError{Line: line2, Field: eccentricityField, Reason: "invalid eccentricity"}
	}
	eccentricity, err := strconv.ParseFloat("0."+raw, 64)
	if err != nil {
		return Elements{}, &ParseError{Line: line2, Field: eccentricityField, Reason: "invalid eccentricity", Err: err}
	}

	return Elements{Inclination: inclination, Eccentricity: eccentricity}, nil
}

// allDigits rejects signs and exponents that ParseFloat would otherwise
// accept after the "0." prefix.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
