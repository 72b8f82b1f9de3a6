package loader

import (
	"context"
	"strings"

	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

// KeyValue reads name=value pairs, typically the positional command line arguments.
// A bare name sets a flag property to true. Every name must match a property.
type KeyValue struct {
	name  string
	pairs []string
}

// NewKeyValue creates a loader over pairs. name identifies the source in errors.
func NewKeyValue(name string, pairs []string) *KeyValue {
	return &KeyValue{name: name, pairs: append([]string(nil), pairs...)}
}

func (l *KeyValue) Name() string { return l.name }

func (l *KeyValue) Load(ctx context.Context, cfg registry.Configuration) ([]Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := newCollector(l.name)
	for _, pair := range l.pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, text, hasValue := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		p, ok := cfg.Property(key)
		if !ok {
			c.fail(key, ErrUnknownName)
			continue
		}
		if !hasValue && p.TypeName() != (property.FlagType{}).Name() {
			c.fail(key, ErrMissingValue)
			continue
		}
		c.add(p, key, strings.TrimSpace(text))
	}
	return c.result()
}
