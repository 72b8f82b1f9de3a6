// Package registry holds the static property configuration: every declared
// property, its names, its group and the export bindings of its group.
//
// Declarations are collected with a Builder during startup. Build validates them
// (name uniqueness, classpath style names, export bindings) and returns a Registry
// that is never modified afterwards, so it can be shared between goroutines
// freely. Resolved values live elsewhere; the same Registry can back any number of
// value maps.
package registry
