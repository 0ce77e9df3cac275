// Package registry is the catalogue of Go-native dependencies that module
// scripts can import.
//
// Each dependency package under modules/ implements Module and registers a
// Builder under its import name (e.g. "os", "h5py"). The importer asks the
// registry for a builder when a name is not cached, builds the dependency
// for the current run and binds its Value and Functions into the importing
// script. The registry also defines the Dependency interface that every
// resolved module satisfies, whether it was built from Go, loaded from a
// script on disk, or substituted by an import hook.
package registry
