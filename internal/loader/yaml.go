package loader

import (
	"gopkg.in/yaml.v3"
)

// YAMLFile loads property values from a YAML document. Both nested and flat keys work:
//
//	app:
//	  server:
//	    port: 8080
//	feature.enabled: true
type YAMLFile struct {
	*fileLoader
}

// NewYAMLFile creates a YAML loader for path. A missing file is skipped unless Required is given.
func NewYAMLFile(path string, opts ...FileOption) *YAMLFile {
	return &YAMLFile{fileLoader: newFileLoader("yaml", path, decodeYAML, opts...)}
}

func decodeYAML(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
