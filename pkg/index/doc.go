// Package index renders the catalog into the schemas-index.json document
// that the web interface loads: per-group version listings with source
// attribution and aggregate stats.
package index
