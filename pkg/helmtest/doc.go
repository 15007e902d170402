// Package helmtest provides chart fixtures for tests: gzipped tar archives
// built from in-memory file maps, and an in-process chart repository that
// serves them behind a generated index.
package helmtest
