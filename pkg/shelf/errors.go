package shelf

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateConfig means the dimensions cannot produce positive,
	// finite geometry (thickness too large, too many partitions, NaN).
	ErrDegenerateConfig = errors.New("degenerate configuration")
	// ErrInvalidCount means a level or division count is below 1.
	ErrInvalidCount = errors.New("invalid count")
	// ErrUnknownMaterial means the material is not in the preset table.
	ErrUnknownMaterial = errors.New("unknown material")
)

// ConfigError describes one rejected configuration field.
type ConfigError struct {
	Kind   error // one of the sentinels above
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s = %v: %s", e.Kind, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Kind
}

func degenerate(field string, value any, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: ErrDegenerateConfig, Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}
