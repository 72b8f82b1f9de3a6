// Package naming derives canonical names and aliases for declared properties.
package naming

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/eugenenazirov/proppoint/internal/property"
)

// ErrInvalidName is returned when a name is not a dot-delimited classpath style name.
var ErrInvalidName = errors.New("invalid property name")

// EffectiveName is one name a configuration recognises for a property.
type EffectiveName struct {
	Name string
	// In names are accepted when reading values.
	In bool
	// Out names are used when exporting values.
	Out bool
	// Canonical marks the primary name. It is always both In and Out.
	Canonical bool
}

// Strategy converts a property's declared identity into names. Implementations
// must be deterministic and free of side effects.
type Strategy interface {
	// Names returns the canonical name first, followed by the declared aliases in
	// declaration order. groupName is empty for ungrouped properties.
	Names(groupName, key string, p property.Property) []EffectiveName
	// InKey normalises an incoming name for comparison against in-names.
	InKey(name string) string
	// URIName converts a classpath style name (a.b.c) to URI style (a/b/c).
	URIName(name string) string
}

type caseSensitive struct{}

type caseInsensitive struct{}

// Default returns a case sensitive strategy.
func Default() Strategy {
	return caseSensitive{}
}

// CaseInsensitive returns a strategy that matches incoming names regardless of case.
// Exported names keep the case they were declared with.
func CaseInsensitive() Strategy {
	return caseInsensitive{}
}

func (caseSensitive) Names(groupName, key string, p property.Property) []EffectiveName {
	return buildNames(groupName, key, p, func(s string) string { return s })
}

func (caseSensitive) InKey(name string) string { return name }

func (caseSensitive) URIName(name string) string { return uriName(name) }

func (caseInsensitive) Names(groupName, key string, p property.Property) []EffectiveName {
	return buildNames(groupName, key, p, strings.ToLower)
}

func (caseInsensitive) InKey(name string) string { return strings.ToLower(name) }

func (caseInsensitive) URIName(name string) string { return uriName(name) }

// CanonicalName applies the canonical naming rule: an explicit name wins,
// otherwise the key is qualified by the group name.
func CanonicalName(groupName, key string, p property.Property) string {
	if explicit := p.ExplicitName(); explicit != "" {
		return explicit
	}
	if groupName == "" {
		return key
	}
	if key == "" {
		return groupName
	}
	return groupName + "." + key
}

// Validate reports whether name is a usable classpath style name.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q is URI style", ErrInvalidName, name)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	}
	for _, segment := range strings.Split(name, ".") {
		if segment == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidName, name)
		}
	}
	return nil
}

func buildNames(groupName, key string, p property.Property, fold func(string) string) []EffectiveName {
	canonical := CanonicalName(groupName, key, p)
	aliases := p.Aliases()

	names := make([]EffectiveName, 0, len(aliases)+1)
	names = append(names, EffectiveName{Name: canonical, In: true, Out: true, Canonical: true})

	seen := map[string]int{fold(canonical): 0}
	for _, alias := range aliases {
		if !alias.In && !alias.Out {
			continue
		}
		// Repeated aliases merge their directions into the first occurrence.
		if idx, ok := seen[fold(alias.Name)]; ok {
			names[idx].In = names[idx].In || alias.In
			names[idx].Out = names[idx].Out || alias.Out
			continue
		}
		seen[fold(alias.Name)] = len(names)
		names = append(names, EffectiveName{Name: alias.Name, In: alias.In, Out: alias.Out})
	}
	return names
}

func uriName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
