// Package valuemap resolves the values of registered properties from a chain of
// loaders and keeps them, immutable, for the life of the application.
package valuemap

import (
	"context"
	"errors"
	"fmt"

	"github.com/eugenenazirov/proppoint/internal/loader"
	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

// ErrRequired is returned when a required property has neither a value nor a default.
var ErrRequired = errors.New("required property has no value")

// SourceDefault is reported by Source for values that came from a declaration default.
const SourceDefault = "default"

// RequiredError names a required property left without a value.
type RequiredError struct {
	Name string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, ErrRequired)
}

func (e *RequiredError) Unwrap() error {
	return ErrRequired
}

type entry struct {
	value  any
	source string
	name   string
}

// ValueMap holds the values explicitly provided by loaders. It is read-only once
// Resolve returns and safe for concurrent use.
type ValueMap struct {
	values map[property.Property]entry
}

var _ registry.Values = (*ValueMap)(nil)

// Resolve runs loaders in precedence order: the first loader to provide a value for
// a property wins. Every loader runs even if an earlier one failed, so that all
// problems are reported at once.
func Resolve(ctx context.Context, cfg registry.Configuration, loaders ...loader.Loader) (*ValueMap, error) {
	m := &ValueMap{values: make(map[property.Property]entry)}

	var errs []error
	for _, l := range loaders {
		values, err := l.Load(ctx, cfg)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			errs = append(errs, err)
		}
		for _, v := range values {
			if _, set := m.values[v.Property]; set {
				continue
			}
			m.values[v.Property] = entry{value: v.Value, source: l.Name(), name: v.Name}
		}
	}

	for _, p := range cfg.Properties() {
		if !p.Required() {
			continue
		}
		if _, ok := m.Value(p); ok {
			continue
		}
		name, _ := cfg.CanonicalName(p)
		errs = append(errs, &RequiredError{Name: name})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// Empty returns a ValueMap where every property takes its default.
func Empty() *ValueMap {
	return &ValueMap{values: map[property.Property]entry{}}
}

// Value returns the explicit value for p, falling back to its declared default.
func (m *ValueMap) Value(p property.Property) (any, bool) {
	if e, ok := m.values[p]; ok {
		return e.value, true
	}
	if p == nil {
		return nil, false
	}
	return p.DefaultValue()
}

// ExplicitValue returns only a value provided by a loader.
func (m *ValueMap) ExplicitValue(p property.Property) (any, bool) {
	e, ok := m.values[p]
	return e.value, ok
}

// Source reports which loader supplied p's value, SourceDefault for defaults,
// and false when there is no value at all.
func (m *ValueMap) Source(p property.Property) (string, bool) {
	if e, ok := m.values[p]; ok {
		return e.source, true
	}
	if p == nil {
		return "", false
	}
	if _, ok := p.DefaultValue(); ok {
		return SourceDefault, true
	}
	return "", false
}

// SourceName returns the name the source used to set p, which may be an alias.
func (m *ValueMap) SourceName(p property.Property) (string, bool) {
	e, ok := m.values[p]
	return e.name, ok
}

// Len returns the number of explicitly provided values.
func (m *ValueMap) Len() int {
	return len(m.values)
}

// Get returns p's value with its declared Go type.
func Get[T any](m *ValueMap, p *property.Point[T]) (T, bool) {
	var zero T
	if p == nil {
		return zero, false
	}
	raw, ok := m.Value(p)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// GetOr returns p's value, or fallback when it has none.
func GetOr[T any](m *ValueMap, p *property.Point[T], fallback T) T {
	if v, ok := Get(m, p); ok {
		return v
	}
	return fallback
}
