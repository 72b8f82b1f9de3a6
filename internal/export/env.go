package export

import (
	"context"
	"fmt"
	"os"

	"github.com/eugenenazirov/proppoint/internal/loader"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

// Env sets an environment variable for every out-name, so that child processes
// see the resolved configuration. Private values are exported unredacted.
type Env struct {
	prefix string
	setenv func(key, value string) error
}

// EnvOption configures an Env exporter.
type EnvOption func(*Env)

// WithEnvPrefix prepends prefix to every variable name.
func WithEnvPrefix(prefix string) EnvOption {
	return func(e *Env) {
		e.prefix = prefix
	}
}

// WithSetenv replaces os.Setenv.
func WithSetenv(setenv func(key, value string) error) EnvOption {
	return func(e *Env) {
		e.setenv = setenv
	}
}

// NewEnv creates an environment exporter.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{setenv: os.Setenv}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Env) Name() string { return "env" }

func (e *Env) Export(ctx context.Context, cfg registry.Configuration, group *registry.Group, values registry.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, entry := range Collect(cfg, group, values) {
		key := e.prefix + loader.EnvName(entry.Name)
		if err := e.setenv(key, entry.Text); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
