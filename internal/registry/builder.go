package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/eugenenazirov/proppoint/internal/naming"
	"github.com/eugenenazirov/proppoint/internal/property"
)

// Builder collects declarations at startup and produces a frozen Registry.
// A Builder is not safe for concurrent use.
type Builder struct {
	strategy naming.Strategy
	entries  []entry
	groups   []*Group
	groupSet map[*Group]struct{}
	exports  []ExportGroup
	errs     []error
}

type entry struct {
	group *Group
	key   string
	prop  property.Property
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNamingStrategy overrides the default case insensitive naming strategy.
func WithNamingStrategy(s naming.Strategy) BuilderOption {
	return func(b *Builder) {
		if s != nil {
			b.strategy = s
		}
	}
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		strategy: naming.CaseInsensitive(),
		groupSet: make(map[*Group]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add registers p under key within group. group may be nil for an ungrouped property,
// in which case key (or the property's explicit name) is used as is.
func (b *Builder) Add(group *Group, key string, p property.Property) *Builder {
	if group != nil {
		b.addGroup(group)
	}
	b.entries = append(b.entries, entry{group: group, key: key, prop: p})
	return b
}

// AddGroup registers a group even if it ends up with no properties.
func (b *Builder) AddGroup(g *Group) *Builder {
	if g == nil {
		b.errs = append(b.errs, fmt.Errorf("add group: %w", ErrNilGroup))
		return b
	}
	b.addGroup(g)
	return b
}

// Export binds group to exporter. The group must be registered by the time Build runs.
func (b *Builder) Export(group *Group, exporter Exporter) *Builder {
	b.exports = append(b.exports, ExportGroup{Group: group, Exporter: exporter})
	return b
}

// Build validates every registration and returns the frozen registry. All problems
// are reported together.
func (b *Builder) Build() (*Registry, error) {
	errs := slices.Clone(b.errs)

	reg := &Registry{
		strategy: b.strategy,
		names:    make(map[property.Property][]naming.EffectiveName, len(b.entries)),
		groupOf:  make(map[property.Property]*Group, len(b.entries)),
		groups:   slices.Clone(b.groups),
		members:  make(map[*Group][]property.Property, len(b.groups)),
		inIndex:  make(map[string]property.Property),
	}

	seen := make(map[property.Property]struct{}, len(b.entries))
	claimed := make(map[string]property.Property)

	for _, e := range b.entries {
		if isNilProperty(e.prop) {
			errs = append(errs, fmt.Errorf("register %q: %w", e.key, ErrNilProperty))
			continue
		}
		groupName := ""
		if e.group != nil {
			groupName = e.group.Name()
		}
		names := b.strategy.Names(groupName, e.key, e.prop)
		canonical := names[0].Name

		if _, dup := seen[e.prop]; dup {
			errs = append(errs, fmt.Errorf("register %q: %w", canonical, ErrDuplicateProperty))
			continue
		}
		seen[e.prop] = struct{}{}

		if problems := b.checkNames(names, e.prop, claimed, reg); len(problems) > 0 {
			errs = append(errs, problems...)
			continue
		}

		for _, name := range names {
			key := b.strategy.InKey(name.Name)
			claimed[key] = e.prop
			if name.In {
				reg.inIndex[key] = e.prop
			}
		}
		reg.properties = append(reg.properties, e.prop)
		reg.names[e.prop] = names
		if e.group != nil {
			reg.groupOf[e.prop] = e.group
			reg.members[e.group] = append(reg.members[e.group], e.prop)
		}
	}

	for _, eg := range b.exports {
		switch {
		case eg.Group == nil:
			errs = append(errs, fmt.Errorf("export: %w", ErrNilGroup))
		case eg.Exporter == nil:
			errs = append(errs, fmt.Errorf("export group %q: %w", eg.Group.Name(), ErrNilExporter))
		default:
			if _, ok := b.groupSet[eg.Group]; !ok {
				errs = append(errs, fmt.Errorf("export group %q to %s: %w", eg.Group.Name(), eg.Exporter.Name(), ErrUnknownGroup))
				continue
			}
			reg.exports = append(reg.exports, eg)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

func (b *Builder) checkNames(names []naming.EffectiveName, p property.Property, claimed map[string]property.Property, reg *Registry) []error {
	var errs []error
	canonical := names[0].Name
	for _, name := range names {
		if err := naming.Validate(name.Name); err != nil {
			errs = append(errs, fmt.Errorf("register %q: %w", canonical, err))
			continue
		}
		other, ok := claimed[b.strategy.InKey(name.Name)]
		if ok && other != p {
			existing, _ := reg.CanonicalName(other)
			errs = append(errs, &NameConflictError{Name: name.Name, Existing: existing, Incoming: canonical})
		}
	}
	return errs
}

func (b *Builder) addGroup(g *Group) {
	if _, ok := b.groupSet[g]; ok {
		return
	}
	b.groupSet[g] = struct{}{}
	b.groups = append(b.groups, g)
}

// isNilProperty also catches a nil *Point stored in the interface.
func isNilProperty(p property.Property) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
