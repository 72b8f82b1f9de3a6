package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
	"github.com/eugenenazirov/proppoint/internal/valuemap"
)

const (
	// GroupName prefixes every server setting.
	GroupName = "server"

	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
)

// LogLevels lists the accepted values of log.level.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config aggregates the server's runtime settings once values are resolved.
type Config struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	LogLevel             string
	EnableMetrics        bool
	ExportDir            string
}

// Properties declares the server's own settings in an internal group, so they are
// loaded, inspected and exported like any user property.
type Properties struct {
	Group *registry.Group

	Port                 *property.Point[string]
	ShutdownGracePeriod  *property.Point[time.Duration]
	ReadHeaderTimeout    *property.Point[time.Duration]
	WriteTimeout         *property.Point[time.Duration]
	IdleTimeout          *property.Point[time.Duration]
	EnableRequestLogging *property.FlagPoint
	RateLimitRPS         *property.Point[float64]
	RateLimitBurst       *property.Point[int]
	LogLevel             *property.Point[string]
	EnableMetrics        *property.FlagPoint
	ExportDir            *property.Point[string]
}

// NewProperties declares the server settings with their defaults.
func NewProperties() *Properties {
	d := Default()
	return &Properties{
		Group: registry.NewInternalGroup(GroupName, "Settings of the property server itself"),
		Port: property.NewString(
			property.WithDefault(d.Port),
			property.WithDesc("TCP port the HTTP server listens on"),
			property.WithInAlias("port"),
		),
		ShutdownGracePeriod: property.NewDuration(
			property.WithDefault(d.ShutdownGracePeriod),
			property.WithDesc("Time allowed for in-flight requests on shutdown"),
		),
		ReadHeaderTimeout: property.NewDuration(
			property.WithDefault(d.ReadHeaderTimeout),
			property.WithDesc("Maximum time to read request headers"),
		),
		WriteTimeout: property.NewDuration(
			property.WithDefault(d.WriteTimeout),
			property.WithDesc("Maximum time to write a response"),
		),
		IdleTimeout: property.NewDuration(
			property.WithDefault(d.IdleTimeout),
			property.WithDesc("Keep-alive idle timeout"),
		),
		EnableRequestLogging: property.NewFlag(
			property.WithDefault(d.EnableRequestLogging),
			property.WithDesc("Log every HTTP request"),
		),
		RateLimitRPS: property.NewFloat(
			property.WithDefault(d.RateLimitRPS),
			property.WithDesc("Sustained requests per second per client, 0 disables limiting"),
		),
		RateLimitBurst: property.NewInt(
			property.WithDefault(d.RateLimitBurst),
			property.WithDesc("Request burst allowed per client"),
		),
		LogLevel: property.NewEnum(LogLevels,
			property.WithName("log.level"),
			property.WithDefault(d.LogLevel),
			property.WithDesc("Minimum level of emitted log lines"),
		),
		EnableMetrics: property.NewFlag(
			property.WithDefault(d.EnableMetrics),
			property.WithDesc("Serve exported property gauges on /metrics"),
		),
		ExportDir: property.NewString(
			property.WithName("export.dir"),
			property.WithDesc("Directory receiving one YAML file per group bound to the yaml exporter"),
			property.WithHelp("When empty the yaml exporter writes to standard output."),
		),
	}
}

// Register adds the server settings to b.
func (p *Properties) Register(b *registry.Builder) *registry.Builder {
	return b.
		Add(p.Group, "port", p.Port).
		Add(p.Group, "shutdown_grace_period", p.ShutdownGracePeriod).
		Add(p.Group, "read_header_timeout", p.ReadHeaderTimeout).
		Add(p.Group, "write_timeout", p.WriteTimeout).
		Add(p.Group, "idle_timeout", p.IdleTimeout).
		Add(p.Group, "enable_request_logging", p.EnableRequestLogging).
		Add(p.Group, "rate_limit.rps", p.RateLimitRPS).
		Add(p.Group, "rate_limit.burst", p.RateLimitBurst).
		Add(p.Group, "log_level", p.LogLevel).
		Add(p.Group, "enable_metrics", p.EnableMetrics).
		Add(p.Group, "export_dir", p.ExportDir)
}

// Load reads the resolved settings out of values and validates them.
func (p *Properties) Load(values *valuemap.ValueMap) (Config, error) {
	d := Default()
	cfg := Config{
		Port:                 valuemap.GetOr(values, p.Port, d.Port),
		ShutdownGracePeriod:  valuemap.GetOr(values, p.ShutdownGracePeriod, d.ShutdownGracePeriod),
		ReadHeaderTimeout:    valuemap.GetOr(values, p.ReadHeaderTimeout, d.ReadHeaderTimeout),
		WriteTimeout:         valuemap.GetOr(values, p.WriteTimeout, d.WriteTimeout),
		IdleTimeout:          valuemap.GetOr(values, p.IdleTimeout, d.IdleTimeout),
		EnableRequestLogging: valuemap.GetOr(values, p.EnableRequestLogging, d.EnableRequestLogging),
		RateLimitRPS:         valuemap.GetOr(values, p.RateLimitRPS, d.RateLimitRPS),
		RateLimitBurst:       valuemap.GetOr(values, p.RateLimitBurst, d.RateLimitBurst),
		LogLevel:             valuemap.GetOr(values, p.LogLevel, d.LogLevel),
		EnableMetrics:        valuemap.GetOr(values, p.EnableMetrics, d.EnableMetrics),
		ExportDir:            valuemap.GetOr(values, p.ExportDir, d.ExportDir),
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns a Config with default values.
func Default() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             defaultLogLevel,
		EnableMetrics:        true,
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("server.port must be a number between 0 and 65535, got %q", cfg.Port)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("server.rate_limit.rps must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("server.rate_limit.burst must be >= 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return fmt.Errorf("server.shutdown_grace_period must be positive")
	}
	return nil
}
