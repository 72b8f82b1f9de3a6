// Package export publishes resolved property values once startup has completed.
// Each exporter is bound to groups through the registry's export groups.
package export

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

// Redacted replaces the text of private values wherever they leave the process.
const Redacted = "******"

// Entry is one exported name with its value.
type Entry struct {
	Property  property.Property
	Group     string
	Name      string
	Canonical string
	Value     any
	Text      string
	Private   bool
}

// Display returns the entry's text, redacted for private properties.
func (e Entry) Display() string {
	if e.Private {
		return Redacted
	}
	return e.Text
}

// ExportError reports a failed exporter run for a group.
type ExportError struct {
	Exporter string
	Group    string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s via %s: %v", e.Group, e.Exporter, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Collect lists every out-name of the group's properties that has a value, in
// registration order. The canonical name always comes before out aliases.
func Collect(cfg registry.Configuration, group *registry.Group, values registry.Values) []Entry {
	entries := make([]Entry, 0)
	for _, p := range cfg.PropertiesForGroup(group) {
		v, ok := values.Value(p)
		if !ok {
			continue
		}
		canonical, _ := cfg.CanonicalName(p)
		text := p.FormatValue(v)
		for _, name := range cfg.Aliases(p) {
			if !name.Out {
				continue
			}
			entries = append(entries, Entry{
				Property:  p,
				Group:     group.Name(),
				Name:      name.Name,
				Canonical: canonical,
				Value:     v,
				Text:      text,
				Private:   p.Private(),
			})
		}
	}
	return entries
}

// Run executes every export group in registration order. A failing exporter does
// not stop later ones; all failures are returned together.
func Run(ctx context.Context, cfg registry.Configuration, values registry.Values, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var errs []error
	for _, eg := range cfg.ExportGroups() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := eg.Exporter.Export(ctx, cfg, eg.Group, values); err != nil {
			logger.Error("property export failed",
				zap.String("group", eg.Group.Name()),
				zap.String("exporter", eg.Exporter.Name()),
				zap.Error(err),
			)
			errs = append(errs, &ExportError{Exporter: eg.Exporter.Name(), Group: eg.Group.Name(), Err: err})
			continue
		}
		logger.Debug("property group exported",
			zap.String("group", eg.Group.Name()),
			zap.String("exporter", eg.Exporter.Name()),
		)
	}
	return errors.Join(errs...)
}
