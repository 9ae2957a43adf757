package metrics

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports a caller defect such as empty or non-covering bands.
	ErrConfiguration = errors.New("metrics: invalid configuration")
	// ErrInvalidRange reports a record built with negative or non-finite values.
	ErrInvalidRange = errors.New("metrics: value out of range")
)

// ConfigurationError describes why a band set or option set was rejected.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("metrics: invalid configuration: %s", e.Reason)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// RangeError describes an input field holding a value outside its domain.
type RangeError struct {
	Field string
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("metrics: %s out of range: %v", e.Field, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidRange.
func (e *RangeError) Unwrap() error { return ErrInvalidRange }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func rangeError(field string, value float64) error {
	return &RangeError{Field: field, Value: value}
}
