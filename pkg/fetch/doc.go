// Package fetch selects which upstream versions a backfill run visits.
//
// Upstream version tags come from Helm repository indexes and GitHub release
// listings, which mix strict semver with looser schemes like `release-1.0`
// or date stamps. Ordering is semver where both sides parse, with a stable
// component-wise fallback otherwise. Pre-release versions always order below
// the release they precede.
package fetch
