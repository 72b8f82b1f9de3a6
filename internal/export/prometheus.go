package export

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eugenenazirov/proppoint/internal/registry"
)

// Prometheus exposes numeric, boolean and duration values as gauges in its own
// registry. Private properties and text values are skipped.
type Prometheus struct {
	registry *prometheus.Registry
	values   *prometheus.GaugeVec
}

// NewPrometheus creates the exporter. namespace defaults to "proppoint".
func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = "proppoint"
	}

	reg := prometheus.NewRegistry()
	values := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "property_value",
			Help:      "Resolved value of a configuration property. Booleans are 1 or 0, durations are seconds.",
		},
		[]string{"group", "name"},
	)
	reg.MustRegister(values)

	return &Prometheus{registry: reg, values: values}
}

func (p *Prometheus) Name() string { return "prometheus" }

func (p *Prometheus) Export(ctx context.Context, cfg registry.Configuration, group *registry.Group, values registry.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, e := range Collect(cfg, group, values) {
		if e.Private {
			continue
		}
		v, ok := gaugeValue(e.Value)
		if !ok {
			continue
		}
		p.values.WithLabelValues(e.Group, e.Name).Set(v)
	}
	return nil
}

// Gatherer exposes the exporter's registry.
func (p *Prometheus) Gatherer() prometheus.Gatherer {
	return p.registry
}

// Handler serves the exporter's registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func gaugeValue(v any) (float64, bool) {
	switch val := v.(type) {
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case time.Duration:
		return val.Seconds(), true
	default:
		return 0, false
	}
}
