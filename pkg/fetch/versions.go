package fetch

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SortVersions returns versions ordered newest first. The input slice is not
// modified.
func SortVersions(versions []string) []string {
	keys := make(map[string]key, len(versions))
	for _, v := range versions {
		keys[v] = parseKey(v)
	}

	sorted := slices.Clone(versions)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return compareKeys(keys[b], keys[a])
	})

	return sorted
}

// FilterMin drops versions older than minVersion. A version equal to
// minVersion is kept.
func FilterMin(versions []string, minVersion string) []string {
	minKey := parseKey(minVersion)

	kept := make([]string, 0, len(versions))
	for _, v := range versions {
		if compareKeys(parseKey(v), minKey) >= 0 {
			kept = append(kept, v)
		}
	}

	return kept
}

// Limit caps versions at the first n entries. Zero or negative n means no
// limit.
func Limit(versions []string, n int) []string {
	if n <= 0 || len(versions) <= n {
		return versions
	}

	return versions[:n]
}

// key orders a version tag. Tags that parse as semver compare by semver
// precedence; everything else falls back to component-wise comparison.
type key struct {
	sv    *semver.Version
	parts []part
}

func parseKey(version string) key {
	v := strings.TrimPrefix(version, "v")
	v = strings.TrimPrefix(v, "release-")

	k := key{parts: parseParts(v)}
	if sv, err := semver.NewVersion(v); err == nil {
		k.sv = sv
	}

	return k
}

func compareKeys(a, b key) int {
	if a.sv != nil && b.sv != nil {
		if c := a.sv.Compare(b.sv); c != 0 {
			return c
		}
	}

	return compareParts(a.parts, b.parts)
}

// Component kind ranks, ascending. Pre-release keywords order below numeric
// components, so at the same position 1.2.rc1 < 1.2.0.
const (
	rankAlpha = iota
	rankBeta
	rankRC
	rankNumeric
	rankOther
)

type part struct {
	rank int
	num  int
	str  string
}

func (p part) preRelease() bool {
	return p.rank <= rankRC
}

func parseParts(v string) []part {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})

	parts := make([]part, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, parsePart(f))
	}

	return parts
}

func parsePart(s string) part {
	if n, err := strconv.Atoi(s); err == nil {
		return part{rank: rankNumeric, num: n}
	}

	switch {
	case strings.Contains(s, "alpha"):
		return part{rank: rankAlpha, str: s}
	case strings.Contains(s, "beta"):
		return part{rank: rankBeta, str: s}
	case strings.Contains(s, "rc"):
		return part{rank: rankRC, str: s}
	}

	return part{rank: rankOther, str: s}
}

// compareParts compares component-wise. When one version is a prefix of the
// other, the longer one is newer unless its first extra component is a
// pre-release keyword: 1.2 < 1.2.0, but 1.2.0.rc1 < 1.2.0.
func compareParts(a, b []part) int {
	n := min(len(a), len(b))
	for i := range n {
		if c := comparePart(a[i], b[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(a) > n:
		return compareExtra(a[n])
	case len(b) > n:
		return -compareExtra(b[n])
	}

	return 0
}

func comparePart(a, b part) int {
	if c := cmp.Compare(a.rank, b.rank); c != 0 {
		return c
	}
	if a.rank == rankNumeric {
		return cmp.Compare(a.num, b.num)
	}

	return strings.Compare(a.str, b.str)
}

func compareExtra(p part) int {
	if p.preRelease() {
		return -1
	}

	return 1
}
