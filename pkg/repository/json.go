package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON adapts a typed value to a jsonb column. It implements driver.Valuer
// for writes and sql.Scanner for reads so domain structs never pass through
// untyped maps.
type JSON[T any] struct {
	V T
}

// NewJSON wraps v for use as a query argument.
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{V: v}
}

// Value marshals the wrapped value.
func (j JSON[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.V)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return string(data), nil
}

// Scan unmarshals a jsonb column into the wrapped value. NULL leaves the zero value.
func (j *JSON[T]) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.V = zero
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan json column: unsupported type %T", src)
	}

	if err := json.Unmarshal(data, &j.V); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}
