package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/eugenenazirov/proppoint/internal/registry"
)

// decodeFunc turns file contents into a (possibly nested) map.
type decodeFunc func(data []byte) (map[string]any, error)

// fileLoader reads one structured document. Nested maps are flattened into dot
// separated names; every resulting name must match a property.
type fileLoader struct {
	name     string
	path     string
	required bool
	decode   decodeFunc
}

// FileOption configures a file based loader.
type FileOption func(*fileLoader)

// Required makes a missing file an error instead of an empty source.
func Required() FileOption {
	return func(l *fileLoader) {
		l.required = true
	}
}

func newFileLoader(name, path string, decode decodeFunc, opts ...FileOption) *fileLoader {
	l := &fileLoader{name: name, path: path, decode: decode}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *fileLoader) Name() string { return l.name }

// Path returns the file the loader reads.
func (l *fileLoader) Path() string { return l.path }

func (l *fileLoader) Load(ctx context.Context, cfg registry.Configuration) ([]Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !l.required {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: read file: %w", l.name, err)
	}

	doc, err := l.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: parse %s: %w", l.name, l.path, err)
	}

	flat := make(map[string]any)
	dups := make(map[string]struct{})
	flatten("", doc, flat, dups)

	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)

	c := newCollector(l.name)
	for _, name := range names {
		if _, dup := dups[name]; dup {
			c.fail(name, ErrDuplicateValue)
			continue
		}
		p, ok := cfg.Property(name)
		if !ok {
			c.fail(name, ErrUnknownName)
			continue
		}
		c.add(p, name, flat[name])
	}
	return c.result()
}

// flatten records in dups every name reached twice, e.g. a dotted key that is
// also spelled as nested maps.
func flatten(prefix string, node map[string]any, out map[string]any, dups map[string]struct{}) {
	for key, value := range node {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			flatten(name, child, out, dups)
			continue
		}
		if _, seen := out[name]; seen {
			dups[name] = struct{}{}
			continue
		}
		out[name] = value
	}
}
