package application

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/eugenenazirov/proppoint/internal/config"
	"github.com/eugenenazirov/proppoint/internal/declare"
	"github.com/eugenenazirov/proppoint/internal/export"
	"github.com/eugenenazirov/proppoint/internal/loader"
	"github.com/eugenenazirov/proppoint/internal/logging"
	"github.com/eugenenazirov/proppoint/internal/registry"
	"github.com/eugenenazirov/proppoint/internal/valuemap"
)

// DefaultEnvPrefix scopes the environment variables read by the server.
const DefaultEnvPrefix = "PROPSERVER_"

// Options lists the inputs of Bootstrap.
type Options struct {
	// Args are name=value pairs (or bare flag names) from the command line.
	Args []string
	// ConfigFile is an optional YAML values file.
	ConfigFile string
	// TOMLConfigFile is an optional TOML values file.
	TOMLConfigFile string
	// DeclarationFiles add user groups and properties.
	DeclarationFiles []string
	// EnvPrefix defaults to DefaultEnvPrefix.
	EnvPrefix string
	// Environ replaces os.Environ when non-nil.
	Environ []string
	// Level, when set, receives the resolved log.level.
	Level *zap.AtomicLevel
	Logger *zap.Logger
	// Stdout receives yaml exports when export.dir is empty. Defaults to os.Stdout.
	Stdout io.Writer
}

// State is the frozen configuration and its resolved values.
type State struct {
	Registry   *registry.Registry
	Values     *valuemap.ValueMap
	Properties *config.Properties
	Config     config.Config
	Metrics    *export.Prometheus
	Declared   []declare.Registered

	yaml *yamlTarget
}

// Close flushes exporters that buffer output.
func (s *State) Close() error {
	if s == nil || s.yaml == nil {
		return nil
	}
	return s.yaml.Close()
}

// Bootstrap declares the server settings and every declaration file, freezes the
// registry and resolves values with precedence CLI > env > YAML > TOML > defaults.
func Bootstrap(ctx context.Context, opts Options) (*State, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	state := &State{
		Properties: config.NewProperties(),
		Metrics:    export.NewPrometheus("proppoint"),
		yaml:       &yamlTarget{stdout: stdout},
	}
	logExporter := export.NewLog(logger)
	exporters := map[string]registry.Exporter{
		"log":        logExporter,
		"env":        export.NewEnv(),
		"yaml":       state.yaml,
		"prometheus": state.Metrics,
	}

	b := registry.NewBuilder()
	state.Properties.Register(b).
		Export(state.Properties.Group, logExporter).
		Export(state.Properties.Group, state.Metrics)

	for _, path := range opts.DeclarationFiles {
		f, err := declare.Load(path)
		if err != nil {
			return nil, err
		}
		registered, err := f.Register(b, exporters)
		if err != nil {
			return nil, fmt.Errorf("declaration file %s: %w", path, err)
		}
		state.Declared = append(state.Declared, registered...)
	}

	reg, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build configuration: %w", err)
	}
	state.Registry = reg

	envOpts := []loader.EnvOption{loader.WithPrefix(prefix)}
	if opts.Environ != nil {
		envOpts = append(envOpts, loader.WithEnviron(opts.Environ))
	}
	values, err := valuemap.Resolve(ctx, reg,
		loader.NewKeyValue("cli", opts.Args),
		loader.NewEnv(envOpts...),
		loader.NewYAMLFile(opts.ConfigFile, loader.Required()),
		loader.NewTOMLFile(opts.TOMLConfigFile, loader.Required()),
	)
	if err != nil {
		return nil, fmt.Errorf("resolve properties: %w", err)
	}
	state.Values = values

	cfg, err := state.Properties.Load(values)
	if err != nil {
		return nil, fmt.Errorf("server configuration: %w", err)
	}
	state.Config = cfg
	state.yaml.dir = cfg.ExportDir

	if opts.Level != nil {
		if err := logging.SetLevel(*opts.Level, cfg.LogLevel); err != nil {
			return nil, err
		}
	}

	logger.Info("configuration resolved",
		zap.Int("properties", len(reg.Properties())),
		zap.Int("groups", len(reg.PropertyGroups())),
		zap.Int("explicit_values", values.Len()),
	)
	return state, nil
}

// yamlTarget picks the YAML destination on first export, once export.dir is known.
type yamlTarget struct {
	stdout io.Writer
	dir    string

	once sync.Once
	exp  *export.YAML
}

func (y *yamlTarget) Name() string { return "yaml" }

func (y *yamlTarget) Export(ctx context.Context, cfg registry.Configuration, group *registry.Group, values registry.Values) error {
	y.once.Do(func() {
		if y.dir != "" {
			y.exp = export.NewYAMLDir(y.dir)
			return
		}
		y.exp = export.NewYAML(y.stdout)
	})
	return y.exp.Export(ctx, cfg, group, values)
}

func (y *yamlTarget) Close() error {
	if y.exp == nil {
		return nil
	}
	return y.exp.Close()
}
