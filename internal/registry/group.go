package registry

import (
	"context"

	"github.com/eugenenazirov/proppoint/internal/property"
)

// Group is a logical collection of properties, typically one per declaring unit.
// Groups are compared by identity.
type Group struct {
	name string
	desc string
	user bool
}

// NewGroup creates a group owned by application code.
func NewGroup(name, desc string) *Group {
	return &Group{name: name, desc: desc, user: true}
}

// NewInternalGroup creates a group owned by the framework itself.
func NewInternalGroup(name, desc string) *Group {
	return &Group{name: name, desc: desc}
}

// Name is the prefix used to derive canonical names of the group's properties.
func (g *Group) Name() string { return g.name }

// Description returns the human readable summary of the group.
func (g *Group) Description() string { return g.desc }

// IsUser reports whether the group originates from application code.
func (g *Group) IsUser() bool { return g.user }

// Values gives exporters read access to resolved values.
type Values interface {
	Value(p property.Property) (any, bool)
}

// Exporter publishes a group's resolved values outside the framework once
// startup has completed.
type Exporter interface {
	Name() string
	Export(ctx context.Context, cfg Configuration, group *Group, values Values) error
}

// ExportGroup binds a group to the exporter that publishes it.
type ExportGroup struct {
	Group    *Group
	Exporter Exporter
}
