// Package declare reads property declarations from YAML files so that a server can
// host configuration for applications that do not link this module.
package declare

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/proppoint/internal/property"
	"github.com/eugenenazirov/proppoint/internal/registry"
)

// ErrInvalidDeclaration is wrapped by every problem found in a declaration file.
var ErrInvalidDeclaration = errors.New("invalid declaration")

// Property type names accepted in declaration files.
const (
	TypeFlag     = "flag"
	TypeBool     = "bool"
	TypeString   = "string"
	TypeInt      = "int"
	TypeFloat    = "float"
	TypeDuration = "duration"
	TypeEnum     = "enum"
)

var knownTypes = []string{TypeFlag, TypeBool, TypeString, TypeInt, TypeFloat, TypeDuration, TypeEnum}

// File is a parsed declaration file.
type File struct {
	Groups []Group `yaml:"groups"`
}

// Group declares a user group and its properties.
type Group struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Exports     []string   `yaml:"exports"`
	Properties  []Property `yaml:"properties"`
}

// Property declares a single property. Type defaults to string.
type Property struct {
	Key         string   `yaml:"key"`
	Type        string   `yaml:"type"`
	Name        string   `yaml:"name"`
	Default     any      `yaml:"default"`
	Required    bool     `yaml:"required"`
	Description string   `yaml:"description"`
	Help        string   `yaml:"help"`
	Private     bool     `yaml:"private"`
	Aliases     []Alias  `yaml:"aliases"`
	Values      []string `yaml:"values"`
}

// Alias declares an alternate name. With neither in nor out set it works both ways.
type Alias struct {
	Name string `yaml:"name"`
	In   *bool  `yaml:"in"`
	Out  *bool  `yaml:"out"`
}

// Registered is a property created from a declaration.
type Registered struct {
	Group    *registry.Group
	Key      string
	Property property.Property
}

// Load reads and parses the declaration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read declaration file %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("declaration file %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a declaration document and checks its structure. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeclaration, err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(f.Groups))
	for i, g := range f.Groups {
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("%w: group #%d has no name", ErrInvalidDeclaration, i+1))
			continue
		}
		if _, dup := seen[g.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: group %q declared twice", ErrInvalidDeclaration, g.Name))
		}
		seen[g.Name] = struct{}{}

		for j, p := range g.Properties {
			if p.Key == "" && p.Name == "" {
				errs = append(errs, fmt.Errorf("%w: group %q property #%d needs a key or a name", ErrInvalidDeclaration, g.Name, j+1))
				continue
			}
			if p.Type != "" && !slices.Contains(knownTypes, p.Type) {
				errs = append(errs, fmt.Errorf("%w: %s: unknown type %q", ErrInvalidDeclaration, p.label(g.Name), p.Type))
			}
			if p.Type == TypeEnum && len(p.Values) == 0 {
				errs = append(errs, fmt.Errorf("%w: %s: enum needs values", ErrInvalidDeclaration, p.label(g.Name)))
			}
			for _, a := range p.Aliases {
				if a.Name == "" {
					errs = append(errs, fmt.Errorf("%w: %s: alias without a name", ErrInvalidDeclaration, p.label(g.Name)))
				}
				if a.In != nil && a.Out != nil && !*a.In && !*a.Out {
					errs = append(errs, fmt.Errorf("%w: %s: alias %q is neither in nor out", ErrInvalidDeclaration, p.label(g.Name), a.Name))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Register adds every declared group and property to b and binds each group to the
// exporters it lists. exporters maps exporter names to instances.
func (f *File) Register(b *registry.Builder, exporters map[string]registry.Exporter) ([]Registered, error) {
	var (
		registered []Registered
		errs       []error
	)
	for _, gd := range f.Groups {
		g := registry.NewGroup(gd.Name, gd.Description)
		b.AddGroup(g)

		for _, pd := range gd.Properties {
			p, err := pd.build()
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidDeclaration, pd.label(gd.Name), err))
				continue
			}
			b.Add(g, pd.Key, p)
			registered = append(registered, Registered{Group: g, Key: pd.Key, Property: p})
		}

		for _, name := range gd.Exports {
			exp, ok := exporters[name]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: group %q: unknown exporter %q", ErrInvalidDeclaration, gd.Name, name))
				continue
			}
			b.Export(g, exp)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return registered, nil
}

func (d Property) label(group string) string {
	if d.Name != "" {
		return d.Name
	}
	return group + "." + d.Key
}

func (d Property) build() (property.Property, error) {
	switch d.Type {
	case TypeFlag:
		return buildPoint[bool](property.FlagType{}, d)
	case TypeBool:
		return buildPoint[bool](property.BoolType{}, d)
	case TypeString, "":
		return buildPoint[string](property.StringType{}, d)
	case TypeInt:
		return buildPoint[int](property.IntType{}, d)
	case TypeFloat:
		return buildPoint[float64](property.FloatType{}, d)
	case TypeDuration:
		return buildPoint[time.Duration](property.DurationType{}, d)
	case TypeEnum:
		return buildPoint[string](property.EnumType{Allowed: slices.Clone(d.Values)}, d)
	default:
		return nil, fmt.Errorf("unknown type %q", d.Type)
	}
}

func buildPoint[T any](vt property.ValueType[T], d Property) (*property.Point[T], error) {
	opts := []property.Option{
		property.WithDesc(d.Description),
		property.WithHelp(d.Help),
	}
	if d.Name != "" {
		opts = append(opts, property.WithName(d.Name))
	}
	if d.Required {
		opts = append(opts, property.Required())
	}
	if d.Private {
		opts = append(opts, property.Private())
	}
	for _, a := range d.Aliases {
		in := a.In == nil || *a.In
		out := a.Out == nil || *a.Out
		switch {
		case in && out:
			opts = append(opts, property.WithAliases(a.Name))
		case in:
			opts = append(opts, property.WithInAlias(a.Name))
		case out:
			opts = append(opts, property.WithOutAlias(a.Name))
		}
	}
	if d.Default != nil {
		v, err := property.CoerceValue(vt, d.Default)
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		opts = append(opts, property.WithDefault(v))
	}
	return property.NewPoint(vt, opts...), nil
}
