package registry

import (
	"slices"
	"strings"

	"github.com/eugenenazirov/proppoint/internal/naming"
	"github.com/eugenenazirov/proppoint/internal/property"
)

// Configuration describes every declared property: how each is named, how they
// are grouped and how groups are exported. It never holds resolved values.
type Configuration interface {
	// Aliases returns every name (canonical first, then in and out aliases in
	// declaration order) recognised for p. Unregistered properties yield an empty slice.
	Aliases(p property.Property) []naming.EffectiveName
	// CanonicalName returns the primary name of a registered property.
	CanonicalName(p property.Property) (string, bool)
	// GroupForProperty returns the group containing p. Ungrouped properties report false.
	GroupForProperty(p property.Property) (*Group, bool)
	// Properties returns all registered properties in registration order.
	Properties() []property.Property
	// ContainsUserGroups reports whether any registered group comes from application code.
	ContainsUserGroups() bool
	// PropertiesForGroup returns the group's properties in registration order.
	PropertiesForGroup(g *Group) []property.Property
	// PropertyGroups returns all registered groups, including empty ones.
	PropertyGroups() []*Group
	// Property finds a property by canonical name or in-alias. Only classpath
	// style (dot-delimited) names are recognised; URI style names never match.
	Property(classpathStyleName string) (property.Property, bool)
	// ExportGroups returns the export bindings in registration order.
	ExportGroups() []ExportGroup
	// NamingStrategy returns the strategy used for every property in this configuration.
	NamingStrategy() naming.Strategy
}

// Registry is the immutable Configuration produced by Builder.Build.
// It is safe for concurrent use without synchronisation.
type Registry struct {
	strategy   naming.Strategy
	properties []property.Property
	names      map[property.Property][]naming.EffectiveName
	groupOf    map[property.Property]*Group
	groups     []*Group
	members    map[*Group][]property.Property
	inIndex    map[string]property.Property
	exports    []ExportGroup
}

var _ Configuration = (*Registry)(nil)

func (r *Registry) Aliases(p property.Property) []naming.EffectiveName {
	names, ok := r.names[p]
	if !ok {
		return []naming.EffectiveName{}
	}
	return slices.Clone(names)
}

func (r *Registry) CanonicalName(p property.Property) (string, bool) {
	names, ok := r.names[p]
	if !ok {
		return "", false
	}
	return names[0].Name, true
}

func (r *Registry) GroupForProperty(p property.Property) (*Group, bool) {
	g, ok := r.groupOf[p]
	return g, ok
}

func (r *Registry) Properties() []property.Property {
	return cloneProperties(r.properties)
}

func (r *Registry) ContainsUserGroups() bool {
	for _, g := range r.groups {
		if g.IsUser() {
			return true
		}
	}
	return false
}

func (r *Registry) PropertiesForGroup(g *Group) []property.Property {
	return cloneProperties(r.members[g])
}

func (r *Registry) PropertyGroups() []*Group {
	if len(r.groups) == 0 {
		return []*Group{}
	}
	return slices.Clone(r.groups)
}

func (r *Registry) Property(classpathStyleName string) (property.Property, bool) {
	if strings.Contains(classpathStyleName, "/") {
		return nil, false
	}
	p, ok := r.inIndex[r.strategy.InKey(classpathStyleName)]
	return p, ok
}

func (r *Registry) ExportGroups() []ExportGroup {
	if len(r.exports) == 0 {
		return []ExportGroup{}
	}
	return slices.Clone(r.exports)
}

func (r *Registry) NamingStrategy() naming.Strategy {
	return r.strategy
}

// Len returns the number of registered properties.
func (r *Registry) Len() int {
	return len(r.properties)
}

func cloneProperties(src []property.Property) []property.Property {
	if len(src) == 0 {
		return []property.Property{}
	}
	return slices.Clone(src)
}
