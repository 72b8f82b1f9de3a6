// Package property declares strongly typed configuration properties.
//
// A declaration is a *Point[T] built with functional options; the value type it
// carries decides how text is parsed and how already-typed values are cast.
// Declarations hold metadata only. Names are assigned by a registry and values
// are resolved by loaders.
package property
