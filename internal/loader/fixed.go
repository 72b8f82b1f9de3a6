package loader

import (
	"context"
	"sort"

	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

// Fixed serves values from an in-memory map, for tests and for embedding
// applications that already hold their settings.
type Fixed struct {
	name     string
	values   map[string]any
	uriStyle bool
}

// FixedOption configures a Fixed loader.
type FixedOption func(*Fixed)

// URIStyle makes the loader also accept slash delimited names (app/server/port),
// as used by directory style sources. The registry itself never resolves such names,
// so the translation happens here.
func URIStyle() FixedOption {
	return func(l *Fixed) {
		l.uriStyle = true
	}
}

// NewFixed creates a loader over values keyed by property name.
func NewFixed(name string, values map[string]any, opts ...FixedOption) *Fixed {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	l := &Fixed{name: name, values: copied}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Fixed) Name() string { return l.name }

func (l *Fixed) Load(ctx context.Context, cfg registry.Configuration) ([]Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var uriIndex map[string]property.Property
	if l.uriStyle {
		uriIndex = buildURIIndex(cfg)
	}

	names := make([]string, 0, len(l.values))
	for name := range l.values {
		names = append(names, name)
	}
	sort.Strings(names)

	c := newCollector(l.name)
	for _, name := range names {
		p, ok := cfg.Property(name)
		if !ok && uriIndex != nil {
			p, ok = uriIndex[cfg.NamingStrategy().InKey(name)]
		}
		if !ok {
			c.fail(name, ErrUnknownName)
			continue
		}
		c.add(p, name, l.values[name])
	}
	return c.result()
}

func buildURIIndex(cfg registry.Configuration) map[string]property.Property {
	strategy := cfg.NamingStrategy()
	index := make(map[string]property.Property)
	for _, p := range cfg.Properties() {
		for _, name := range cfg.Aliases(p) {
			if name.In {
				index[strategy.InKey(strategy.URIName(name.Name))] = p
			}
		}
	}
	return index
}
