// Package catalogtui renders catalog operations as terminal UIs: a
// multi-source progress view for extraction and backfill, and a spinner for
// single actions. [CatalogTUI] wraps a [Commander] so commands can run with
// or without the UI behind one surface.
package catalogtui
