package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks malformed filter input. It is raised before any
	// projection runs.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrSchemaViolation marks a record that cannot enter the dataset store.
	ErrSchemaViolation = errors.New("schema violation")
)

// ParamError names the rejected filter field. It unwraps to
// ErrInvalidParameter.
type ParamError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParamError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// SchemaError reports the offending row (1-based, header excluded) and field.
type SchemaError struct {
	Row    int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation at row %d, field %s: %s", e.Row, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }
