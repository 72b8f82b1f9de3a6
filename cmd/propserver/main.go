package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/proppoint/internal/application"
	"github.com/eugenenazirov/proppoint/internal/logging"
)

var signalNotify = signal.Notify

type cliOptions struct {
	configFile       string
	tomlConfigFile   string
	declarationFiles []string
	envPrefix        string
	properties       []string
}

func newCLI() (*kingpin.Application, *cliOptions) {
	opts := &cliOptions{}
	app := kingpin.New("propserver", "Property server - resolves declared configuration properties and serves them over HTTP")
	app.Flag("config", "Path to YAML values file").StringVar(&opts.configFile)
	app.Flag("toml-config", "Path to TOML values file (lower precedence than --config)").StringVar(&opts.tomlConfigFile)
	app.Flag("declare", "Path to a YAML declaration file; repeatable").StringsVar(&opts.declarationFiles)
	app.Flag("env-prefix", "Prefix of environment variables holding property values").Default(application.DefaultEnvPrefix).StringVar(&opts.envPrefix)
	app.Arg("properties", "Property values as name=value, or a bare flag name").StringsVar(&opts.properties)
	return app, opts
}

func main() {
	kingpinApp, cli := newCLI()
	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	logger, level, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()
	state, err := application.Bootstrap(ctx, application.Options{
		Args:             cli.properties,
		ConfigFile:       cli.configFile,
		TOMLConfigFile:   cli.tomlConfigFile,
		DeclarationFiles: cli.declarationFiles,
		EnvPrefix:        cli.envPrefix,
		Level:            &level,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	app, err := application.New(state, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(ctx); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), state.Config.ShutdownGracePeriod, logger)
	if err := app.Close(); err != nil {
		logger.Warn("flushing exports failed", zap.Error(err))
	}
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
