package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/proppoint/internal/export"
	"github.com/eugenenazirov/proppoint/internal/loader"
	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
	"github.com/eugenenazirov/proppoint/internal/valuemap"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestConfiguration(t *testing.T) (*registry.Registry, *valuemap.ValueMap) {
	t.Helper()

	billing := registry.NewGroup("billing", "Billing settings")
	internal := registry.NewInternalGroup("server", "")
	reg, err := registry.NewBuilder().
		Add(billing, "enabled", property.NewFlag(property.WithDesc("Turns billing on"))).
		Add(billing, "api-key", property.NewString(property.Private())).
		Add(billing, "timeout", property.NewDuration(
			property.WithDefault(30*time.Second),
			property.WithInAlias("billing.wait"),
			property.WithOutAlias("BILLING_TIMEOUT"),
		)).
		Add(billing, "region", property.NewString()).
		Add(internal, "port", property.NewString(property.WithDefault("8080"))).
		AddGroup(registry.NewGroup("empty", "")).
		Export(billing, export.NewLog(nil)).
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	values, err := valuemap.Resolve(context.Background(), reg,
		loader.NewKeyValue("cli", []string{"billing.enabled", "billing.api-key=secret"}))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	return reg, values
}

func setupTestRouter(t *testing.T) (http.Handler, *controllableClock) {
	t.Helper()

	reg, values := newTestConfiguration(t)
	clock := newControllableClock(time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC))

	handler := NewHandler(reg, values, WithClock(clock.Now))
	logger := zaptest.NewLogger(t)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	if got := requestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %s", got)
	}
}


func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t)
	started := clock.Now()
	clock.Advance(time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status     string    `json:"status"`
		Timestamp  time.Time `json:"timestamp"`
		StartedAt  time.Time `json:"startedAt"`
		Properties int       `json:"properties"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", clock.Now(), body.Timestamp)
	}
	if !body.StartedAt.Equal(started) {
		t.Fatalf("expected startedAt %s, got %s", started, body.StartedAt)
	}
	if body.Properties != 5 {
		t.Fatalf("expected 5 properties, got %d", body.Properties)
	}
}

type propertyBody struct {
	Name      string  `json:"name"`
	Group     string  `json:"group"`
	Type      string  `json:"type"`
	PointType string  `json:"pointType"`
	Private   bool    `json:"private"`
	Value     *string `json:"value"`
	Source    string  `json:"source"`
	Aliases   []struct {
		Name string `json:"name"`
		In   bool   `json:"in"`
		Out  bool   `json:"out"`
	} `json:"aliases"`
}

func TestListProperties(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Properties []propertyBody `json:"properties"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := []string{"billing.enabled", "billing.api-key", "billing.timeout", "billing.region", "server.port"}
	if len(body.Properties) != len(want) {
		t.Fatalf("expected %d properties, got %d", len(want), len(body.Properties))
	}
	for i, name := range want {
		if body.Properties[i].Name != name {
			t.Fatalf("expected %s at position %d, got %s", name, i, body.Properties[i].Name)
		}
	}

	enabled := body.Properties[0]
	if enabled.Type != "flag" || enabled.Value == nil || *enabled.Value != "true" || enabled.Source != "cli" {
		t.Fatalf("unexpected flag entry %+v", enabled)
	}
	if region := body.Properties[3]; region.Value != nil {
		t.Fatalf("expected unset property to have no value, got %q", *region.Value)
	}
}

func TestGetPropertyMasksPrivateValues(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties/billing.api-key", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body propertyBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Private || body.Value == nil || *body.Value != maskedValue {
		t.Fatalf("expected masked value, got %+v", body)
	}
}

func TestGetPropertyByAlias(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties/BILLING.WAIT", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body propertyBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Name != "billing.timeout" || body.Source != valuemap.SourceDefault || *body.Value != "30s" {
		t.Fatalf("unexpected property %+v", body)
	}
	if len(body.Aliases) != 2 || !body.Aliases[0].In || body.Aliases[0].Out || body.Aliases[1].In || !body.Aliases[1].Out {
		t.Fatalf("unexpected aliases %+v", body.Aliases)
	}
}

func TestGetPropertyNotFound(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := []string{
		"/api/properties/nope",
		"/api/properties/BILLING_TIMEOUT",
		"/api/properties/billing/timeout",
	}
	for _, path := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", path, rec.Code)
		}
	}
}

func TestListGroups(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		ContainsUserGroups bool `json:"containsUserGroups"`
		Groups             []struct {
			Name       string   `json:"name"`
			User       bool     `json:"user"`
			Properties []string `json:"properties"`
			Exporters  []string `json:"exporters"`
		} `json:"groups"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !body.ContainsUserGroups || len(body.Groups) != 3 {
		t.Fatalf("unexpected groups %+v", body)
	}
	billing := body.Groups[0]
	if billing.Name != "billing" || !billing.User || len(billing.Properties) != 4 || len(billing.Exporters) != 1 || billing.Exporters[0] != "log" {
		t.Fatalf("unexpected billing group %+v", billing)
	}
	if server := body.Groups[1]; server.User || len(server.Properties) != 1 {
		t.Fatalf("unexpected server group %+v", server)
	}
	if empty := body.Groups[2]; empty.Name != "empty" || len(empty.Properties) != 0 {
		t.Fatalf("unexpected empty group %+v", empty)
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/properties", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}
}
