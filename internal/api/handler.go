package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// maskedValue replaces the value of private properties in responses.
const maskedValue = "******"

// Values is the read side of resolved property values.
type Values interface {
	Value(p property.Property) (any, bool)
	Source(p property.Property) (string, bool)
}

// Handler serves read-only views of a configuration and its resolved values.
type Handler struct {
	cfg    registry.Configuration
	values Values

	clock     func() time.Time
	startedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(cfg registry.Configuration, values Values, opts ...HandlerOption) *Handler {
	h := &Handler{
		cfg:    cfg,
		values: values,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:     "ok",
		Timestamp:  h.clock(),
		StartedAt:  h.startedAt,
		Properties: len(h.cfg.Properties()),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	_ = r
	props := h.cfg.Properties()
	resp := propertiesResponse{Properties: make([]propertyResponse, 0, len(props))}
	for _, p := range props {
		resp.Properties = append(resp.Properties, h.describe(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, ok := h.cfg.Property(name)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown property", "no property is named "+name,
			"Use a canonical name or in-alias in classpath style, e.g. server.port")
		return
	}
	writeJSON(w, http.StatusOK, h.describe(p))
}

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	_ = r
	exporters := make(map[*registry.Group][]string)
	for _, eg := range h.cfg.ExportGroups() {
		exporters[eg.Group] = append(exporters[eg.Group], eg.Exporter.Name())
	}

	groups := h.cfg.PropertyGroups()
	resp := groupsResponse{
		ContainsUserGroups: h.cfg.ContainsUserGroups(),
		Groups:             make([]groupResponse, 0, len(groups)),
	}
	for _, g := range groups {
		members := h.cfg.PropertiesForGroup(g)
		names := make([]string, 0, len(members))
		for _, p := range members {
			name, _ := h.cfg.CanonicalName(p)
			names = append(names, name)
		}
		resp.Groups = append(resp.Groups, groupResponse{
			Name:        g.Name(),
			Description: g.Description(),
			User:        g.IsUser(),
			Properties:  names,
			Exporters:   exporters[g],
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) describe(p property.Property) propertyResponse {
	name, _ := h.cfg.CanonicalName(p)
	resp := propertyResponse{
		Name:        name,
		Type:        p.TypeName(),
		PointType:   p.PointType().String(),
		Description: p.ShortDesc(),
		Help:        p.HelpText(),
		Required:    p.Required(),
		Private:     p.Private(),
	}
	if g, ok := h.cfg.GroupForProperty(p); ok {
		resp.Group = g.Name()
	}
	for _, alias := range h.cfg.Aliases(p) {
		if alias.Canonical {
			continue
		}
		resp.Aliases = append(resp.Aliases, aliasResponse{Name: alias.Name, In: alias.In, Out: alias.Out})
	}
	if v, ok := h.values.Value(p); ok {
		text := p.FormatValue(v)
		if p.Private() {
			text = maskedValue
		}
		resp.Value = &text
		resp.Source, _ = h.values.Source(p)
	}
	return resp
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type aliasResponse struct {
	Name string `json:"name"`
	In   bool   `json:"in"`
	Out  bool   `json:"out"`
}

type propertyResponse struct {
	Name        string          `json:"name"`
	Group       string          `json:"group,omitempty"`
	Type        string          `json:"type"`
	PointType   string          `json:"pointType"`
	Description string          `json:"description,omitempty"`
	Help        string          `json:"help,omitempty"`
	Required    bool            `json:"required"`
	Private     bool            `json:"private"`
	Aliases     []aliasResponse `json:"aliases,omitempty"`
	Value       *string         `json:"value,omitempty"`
	Source      string          `json:"source,omitempty"`
}

type propertiesResponse struct {
	Properties []propertyResponse `json:"properties"`
}

type groupResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	User        bool     `json:"user"`
	Properties  []string `json:"properties"`
	Exporters   []string `json:"exporters,omitempty"`
}

type groupsResponse struct {
	ContainsUserGroups bool            `json:"containsUserGroups"`
	Groups             []groupResponse `json:"groups"`
}

type healthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	StartedAt  time.Time `json:"startedAt"`
	Properties int       `json:"properties"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}
