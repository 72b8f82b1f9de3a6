// Package loader reads raw values from outside sources (command line, environment,
// files, in-memory maps) and maps them onto registered properties.
package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

var (
	// ErrUnknownName is returned by strict loaders for names that match no property.
	ErrUnknownName = errors.New("unknown property name")
	// ErrDuplicateValue is returned when one source sets the same property twice.
	ErrDuplicateValue = errors.New("property set more than once")
	// ErrAmbiguousName is returned when a source name matches more than one property.
	ErrAmbiguousName = errors.New("name matches more than one property")
	// ErrMissingValue is returned when a non-flag property is named without a value.
	ErrMissingValue = errors.New("missing value")
)

// Value is one property value found by a loader.
type Value struct {
	Property property.Property
	// Name is the name the source used, which may be an alias.
	Name string
	// Raw is the value as the source delivered it.
	Raw any
	// Value is Raw coerced to the property's Go type.
	Value any
}

// Loader reads values for properties registered in cfg.
type Loader interface {
	Name() string
	Load(ctx context.Context, cfg registry.Configuration) ([]Value, error)
}

// ValueError ties a problem to the loader and the source name that caused it.
type ValueError struct {
	Loader string
	Name   string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Loader, e.Name, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// collector accumulates values and problems for one Load call.
type collector struct {
	loader string
	values []Value
	index  map[property.Property]int
	errs   []error
}

func newCollector(loader string) *collector {
	return &collector{loader: loader, index: make(map[property.Property]int)}
}

func (c *collector) add(p property.Property, name string, raw any) {
	if _, dup := c.index[p]; dup {
		c.fail(name, ErrDuplicateValue)
		return
	}
	v, err := property.Coerce(p, raw)
	if err != nil {
		c.fail(name, err)
		return
	}
	c.index[p] = len(c.values)
	c.values = append(c.values, Value{Property: p, Name: name, Raw: raw, Value: v})
}

func (c *collector) fail(name string, err error) {
	c.errs = append(c.errs, &ValueError{Loader: c.loader, Name: name, Err: err})
}

func (c *collector) result() ([]Value, error) {
	if len(c.errs) > 0 {
		return c.values, errors.Join(c.errs...)
	}
	return c.values, nil
}
