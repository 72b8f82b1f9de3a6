package property

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is returned when a raw value cannot be cast to the property's value type.
	ErrTypeMismatch = errors.New("value type mismatch")
	// ErrParse is returned when text cannot be parsed into the property's value type.
	ErrParse = errors.New("unable to parse value")
)

// CastError describes a failed cast of a raw value.
type CastError struct {
	TypeName string
	Value    any
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot cast %v (%T) to %s", e.Value, e.Value, e.TypeName)
}

func (e *CastError) Unwrap() error {
	return ErrTypeMismatch
}

// ParseError describes text that a value type rejected.
type ParseError struct {
	TypeName string
	Text     string
	Reason   string
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot parse %q as %s", e.Text, e.TypeName)
	}
	return fmt.Sprintf("cannot parse %q as %s: %s", e.Text, e.TypeName, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}
