// Package catalog stores normalized schema documents on the filesystem.
//
// The catalog root holds exactly two levels of subdirectory, group/version/,
// with leaf files named {kind}.json. Every scanning operation depends on that
// three-level layout; paths of any other depth are not schema documents.
package catalog
