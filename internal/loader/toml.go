package loader

import (
	"github.com/pelletier/go-toml/v2"
)

// TOMLFile loads property values from a TOML document. Tables map to name prefixes.
type TOMLFile struct {
	*fileLoader
}

// NewTOMLFile creates a TOML loader for path. A missing file is skipped unless Required is given.
func NewTOMLFile(path string, opts ...FileOption) *TOMLFile {
	return &TOMLFile{fileLoader: newFileLoader("toml", path, decodeTOML, opts...)}
}

func decodeTOML(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
