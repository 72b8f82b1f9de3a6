package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/eugenenazirov/proppoint/internal/registry"
)

// Log writes one structured log line per exported name.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log exporter. A nil logger discards output.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Export(ctx context.Context, cfg registry.Configuration, group *registry.Group, values registry.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, e := range Collect(cfg, group, values) {
		l.logger.Info("property",
			zap.String("group", e.Group),
			zap.String("name", e.Name),
			zap.String("type", e.Property.TypeName()),
			zap.String("value", e.Display()),
		)
	}
	return nil
}
