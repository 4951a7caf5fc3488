package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state field for partial updates: absent, explicit null, or a value.
// A zero price or an empty string sent by the client is a value, not "absent".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional that was explicitly set to null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked when the key is present in the payload
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes the value, or null when absent or explicitly null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// HasValue reports whether a non-null value was provided
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Apply overwrites *dst when a non-null value was provided
func (o Optional[T]) Apply(dst *T) {
	if o.HasValue() {
		*dst = o.Value
	}
}

// ApplyNullable overwrites *dst with the value, or clears it on explicit null
func (o Optional[T]) ApplyNullable(dst **T) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}
