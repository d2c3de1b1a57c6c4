// Package version reports the restkit library version.
//
// The version is read from the embedding binary's build information, so a
// program depending on restkit reports the module version it was built
// against. Builds of restkit itself report "dev" unless Version is set
// with -ldflags.
package version
