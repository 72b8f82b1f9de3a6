// Package application wires the property server together. Bootstrap declares the
// server's own settings next to the groups read from declaration files, freezes the
// registry and resolves values; New builds the HTTP surface over the result and
// Start publishes every export group before serving.
package application
