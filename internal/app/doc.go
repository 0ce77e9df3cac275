// Package app contains the core application logic. It wires the registry,
// the importer and the probe together behind one App, decoupled from any
// specific entrypoint like a CLI.
package app
