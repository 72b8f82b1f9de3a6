package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/proppoint/internal/registry"
)

// YAML writes each exported group as a flat YAML document of name: value pairs.
// Private values are redacted.
type YAML struct {
	mu  sync.Mutex
	w   io.Writer
	enc *yaml.Encoder
	dir string
}

// NewYAML writes documents to w, separated by "---" when several groups share it.
func NewYAML(w io.Writer) *YAML {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAML{w: w, enc: enc}
}

// NewYAMLDir writes one <group>.yaml file per group into dir.
func NewYAMLDir(dir string) *YAML {
	return &YAML{dir: dir}
}

func (y *YAML) Name() string { return "yaml" }

func (y *YAML) Export(ctx context.Context, cfg registry.Configuration, group *registry.Group, values registry.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := make(map[string]string)
	for _, e := range Collect(cfg, group, values) {
		doc[e.Name] = e.Display()
	}

	if y.dir != "" {
		return writeYAMLFile(filepath.Join(y.dir, group.Name()+".yaml"), doc)
	}

	y.mu.Lock()
	defer y.mu.Unlock()
	if err := y.enc.Encode(doc); err != nil {
		return fmt.Errorf("encode group %s: %w", group.Name(), err)
	}
	return nil
}

// Close flushes buffered output of a writer backed exporter.
func (y *YAML) Close() error {
	if y.enc == nil {
		return nil
	}
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.enc.Close()
}

func writeYAMLFile(path string, doc map[string]string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
