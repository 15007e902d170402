// Package catalogcmd orchestrates catalog operations over the configured
// sources. It serves as the core implementation for the crdcat commands,
// fanning extraction out to bounded workers, broadcasting progress events,
// and aggregating per-source outcomes.
package catalogcmd
