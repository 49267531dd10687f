// Package patch provides a three-state optional value for partial updates:
// a field can be absent (leave as is), explicitly null (clear) or carry a value.
package patch

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	value   T
	present bool
	null    bool
}

// Set returns a field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, present: true}
}

// Null returns a field that is present but explicitly cleared.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// Absent returns a field that was not supplied. It equals the zero value.
func Absent[T any]() Field[T] {
	return Field[T]{}
}

func (f Field[T]) IsPresent() bool {
	return f.present
}

func (f Field[T]) IsNull() bool {
	return f.present && f.null
}

// Value returns the carried value and true, or the zero value and false when
// the field is absent or null.
func (f Field[T]) Value() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Ptr returns nil for null, a pointer to the value otherwise. Callers check
// IsPresent first.
func (f Field[T]) Ptr() *T {
	if v, ok := f.Value(); ok {
		return &v
	}
	return nil
}

// Apply overwrites *dst when the field is present. Null clears to nil.
func Apply[T any](f Field[T], dst **T) {
	if !f.present {
		return
	}
	*dst = f.Ptr()
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// what distinguishes absent from null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if v, ok := f.Value(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}
