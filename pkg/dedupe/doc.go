// Package dedupe resolves duplicate schema documents across sources.
//
// Multiple upstream projects bundle identical copies of third-party CRDs. The
// resolver groups catalog entries by API path, buckets each group by content
// hash, and keeps the highest-priority source for identical content. Groups
// whose sources disagree on content are reported and never reduced.
package dedupe
