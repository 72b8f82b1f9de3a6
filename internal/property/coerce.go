package property

import (
	"errors"
	"fmt"
)

// Coerce produces a typed value for p from whatever a source delivered.
// Text goes through the value type's parser; other values are cast, and scalars
// of the wrong kind (a YAML integer for a string property, say) fall back to
// being formatted and parsed.
func Coerce(p Property, raw any) (any, error) {
	if text, ok := raw.(string); ok {
		return p.ParseValue(text)
	}
	v, err := p.CastValue(raw)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, ErrTypeMismatch) && isScalar(raw) {
		return p.ParseValue(fmt.Sprint(raw))
	}
	return nil, err
}

// CoerceValue is the typed form of Coerce for callers that hold the value type.
func CoerceValue[T any](vt ValueType[T], raw any) (T, error) {
	if text, ok := raw.(string); ok {
		return vt.Parse(text)
	}
	v, err := vt.Cast(raw)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, ErrTypeMismatch) && isScalar(raw) {
		return vt.Parse(fmt.Sprint(raw))
	}
	var zero T
	return zero, err
}

func isScalar(v any) bool {
	switch v.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
