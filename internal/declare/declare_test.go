package declare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eugenenazirov/proppoint/internal/export"
	"github.com/eugenenazirov/proppoint/internal/loader"
	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
	"github.com/eugenenazirov/proppoint/internal/valuemap"
)

const sample = `
groups:
  - name: billing
    description: Billing service settings
    exports: [log]
    properties:
      - key: enabled
        type: flag
        description: Turns billing on
      - key: timeout
        type: duration
        default: 30s
      - key: retries
        type: int
        default: 3
        aliases:
          - name: billing.attempts
            out: false
      - key: mode
        type: enum
        values: [live, sandbox]
        default: sandbox
      - key: api-key
        private: true
        required: true
  - name: search
    properties:
      - name: search.url
        help: Base URL of the search cluster
        aliases:
          - name: SEARCH_URL
`

func TestParseAndRegister(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(f.Groups) != 2 || len(f.Groups[0].Properties) != 5 {
		t.Fatalf("unexpected file %+v", f)
	}

	logExp := export.NewLog(nil)
	b := registry.NewBuilder()
	registered, err := f.Register(b, map[string]registry.Exporter{"log": logExp})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(registered) != 6 {
		t.Fatalf("expected 6 registered properties, got %d", len(registered))
	}
	if !reg.ContainsUserGroups() {
		t.Fatalf("expected declared groups to be user groups")
	}
	if exports := reg.ExportGroups(); len(exports) != 1 || exports[0].Exporter != logExp {
		t.Fatalf("unexpected export groups %v", exports)
	}

	enabled, ok := reg.Property("billing.enabled")
	if !ok || enabled.TypeName() != "flag" || enabled.ShortDesc() != "Turns billing on" {
		t.Fatalf("unexpected enabled property %v", enabled)
	}
	timeout, _ := reg.Property("billing.timeout")
	if v, _ := timeout.DefaultValue(); v != 30*time.Second {
		t.Fatalf("expected 30s default, got %v", v)
	}
	retries, ok := reg.Property("billing.attempts")
	if !ok {
		t.Fatalf("expected in-only alias to resolve")
	}
	for _, name := range reg.Aliases(retries) {
		if name.Name == "billing.attempts" && name.Out {
			t.Fatalf("expected alias to be in-only")
		}
	}
	url, ok := reg.Property("search_url")
	if !ok || url.HelpText() != "Base URL of the search cluster" {
		t.Fatalf("expected explicit name with alias, got %v", url)
	}
	if name, _ := reg.CanonicalName(url); name != "search.url" {
		t.Fatalf("expected canonical name search.url, got %s", name)
	}
}

func TestDeclaredPropertiesResolve(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	b := registry.NewBuilder()
	if _, err := f.Register(b, map[string]registry.Exporter{"log": export.NewLog(nil)}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	_, err = valuemap.Resolve(context.Background(), reg)
	var reqErr *valuemap.RequiredError
	if !errors.As(err, &reqErr) || reqErr.Name != "billing.api-key" {
		t.Fatalf("expected billing.api-key to be required, got %v", err)
	}

	values, err := valuemap.Resolve(context.Background(), reg, loader.NewKeyValue("cli", []string{
		"billing.api-key=k",
		"billing.mode=live",
		"billing.enabled",
	}))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	mode, _ := reg.Property("billing.mode")
	if v, _ := values.Value(mode); v != "live" {
		t.Fatalf("expected live, got %v", v)
	}

	if _, err := valuemap.Resolve(context.Background(), reg, loader.NewKeyValue("cli", []string{
		"billing.api-key=k",
		"billing.mode=staging",
	})); !errors.Is(err, property.ErrParse) {
		t.Fatalf("expected enum to reject staging, got %v", err)
	}
}

func TestParseProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown field", doc: "groups:\n  - name: a\n    colour: red\n"},
		{name: "group without name", doc: "groups:\n  - description: x\n"},
		{name: "duplicate group", doc: "groups:\n  - name: a\n  - name: a\n"},
		{name: "property without key", doc: "groups:\n  - name: a\n    properties:\n      - type: int\n"},
		{name: "unknown type", doc: "groups:\n  - name: a\n    properties:\n      - key: b\n        type: uuid\n"},
		{name: "enum without values", doc: "groups:\n  - name: a\n    properties:\n      - key: b\n        type: enum\n"},
		{name: "directionless alias", doc: "groups:\n  - name: a\n    properties:\n      - key: b\n        aliases:\n          - name: c\n            in: false\n            out: false\n"},
		{name: "malformed", doc: "groups: [\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); !errors.Is(err, ErrInvalidDeclaration) {
				t.Fatalf("expected ErrInvalidDeclaration, got %v", err)
			}
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	t.Parallel()

	f, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(f.Groups) != 0 {
		t.Fatalf("expected no groups")
	}
}

func TestRegisterProblems(t *testing.T) {
	t.Parallel()

	doc := `
groups:
  - name: a
    exports: [carrier-pigeon]
    properties:
      - key: port
        type: int
        default: eighty
`
	f, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	_, err = f.Register(registry.NewBuilder(), nil)
	if !errors.Is(err, ErrInvalidDeclaration) || !errors.Is(err, property.ErrParse) {
		t.Fatalf("expected bad default to be reported, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "declare.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if f.Groups[1].Name != "search" {
		t.Fatalf("unexpected groups %+v", f.Groups)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
