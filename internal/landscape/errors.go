package landscape

import (
	"errors"
	"fmt"
)

var (
	// ErrShape indicates a buffer whose length does not match the dimension
	// it is used with. It is always a caller programming error.
	ErrShape = errors.New("landscape: buffer length mismatch")

	// ErrConfiguration indicates invalid construction parameters.
	ErrConfiguration = errors.New("landscape: invalid configuration")
)

// ShapeError wraps ErrShape with the operation and the offending lengths.
type ShapeError struct {
	Op   string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected length %d, got %d", e.Op, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// ConfigError wraps ErrConfiguration with the parameter at fault.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// CheckLen returns a *ShapeError when len(buf) != want.
func CheckLen(op string, want int, buf []float64) error {
	if len(buf) != want {
		return &ShapeError{Op: op, Want: want, Got: len(buf)}
	}
	return nil
}

// Configf builds a *ConfigError with a formatted reason.
func Configf(param, format string, args ...any) error {
	return &ConfigError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
