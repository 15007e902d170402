// Package paths provides utilities for working with file and URL paths.
//
// This package implements path resolution with repository boundary checks,
// cacheable temporary path generation for fetched artifacts, and discovery of
// catalog and git repository roots.
package paths
