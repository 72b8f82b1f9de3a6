package loader

import (
	"context"
	"os"
	"strings"

	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

// Env reads environment variables. A variable matches a property when its name
// (after the optional prefix is removed) equals one of the property's in-names,
// either literally or in environment form (app.server.port -> APP_SERVER_PORT).
// Unmatched variables are ignored. A variable whose environment form fits more
// than one property (app.read-timeout and app.read_timeout) fails with ErrAmbiguousName.
type Env struct {
	prefix  string
	environ func() []string
}

// EnvOption configures an Env loader.
type EnvOption func(*Env)

// WithPrefix only considers variables starting with prefix, e.g. "PROPSERVER_".
func WithPrefix(prefix string) EnvOption {
	return func(l *Env) {
		l.prefix = prefix
	}
}

// WithEnviron replaces os.Environ, primarily for tests.
func WithEnviron(environ []string) EnvOption {
	return func(l *Env) {
		vars := append([]string(nil), environ...)
		l.environ = func() []string { return vars }
	}
}

// NewEnv creates an environment loader.
func NewEnv(opts ...EnvOption) *Env {
	l := &Env{environ: os.Environ}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Env) Name() string { return "env" }

func (l *Env) Load(ctx context.Context, cfg registry.Configuration) ([]Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	strategy := cfg.NamingStrategy()
	index := make(map[string]property.Property)
	ambiguous := make(map[string]struct{})
	claim := func(key string, p property.Property) {
		if prev, ok := index[key]; ok && prev != p {
			ambiguous[key] = struct{}{}
			return
		}
		index[key] = p
	}
	for _, p := range cfg.Properties() {
		for _, name := range cfg.Aliases(p) {
			if !name.In {
				continue
			}
			claim(strategy.InKey(name.Name), p)
			claim(strategy.InKey(EnvName(name.Name)), p)
		}
	}

	c := newCollector(l.Name())
	for _, kv := range l.environ() {
		key, text, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, l.prefix) {
			continue
		}
		name := strings.TrimPrefix(key, l.prefix)
		if _, clash := ambiguous[strategy.InKey(name)]; clash {
			c.fail(key, ErrAmbiguousName)
			continue
		}
		p, ok := index[strategy.InKey(name)]
		if !ok {
			continue
		}
		c.add(p, key, text)
	}
	return c.result()
}

// EnvName converts a classpath style name to its environment variable form.
func EnvName(name string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(name))
}
