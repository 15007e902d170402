package fetch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/k8s-schemas/crdcat/pkg/fetch"
)

func TestSortVersions(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		versions []string
		want     []string
	}{
		"semver": {
			versions: []string{"1.0.0", "1.2.0", "1.1.0"},
			want:     []string{"1.2.0", "1.1.0", "1.0.0"},
		},
		"numeric components compare numerically": {
			versions: []string{"v1.9.0", "v1.10.0", "v1.9.1"},
			want:     []string{"v1.10.0", "v1.9.1", "v1.9.0"},
		},
		"pre-releases order below the release": {
			versions: []string{"1.2.0-rc.1", "1.2.0", "1.2.0-alpha.1", "1.2.0-beta.2"},
			want:     []string{"1.2.0", "1.2.0-rc.1", "1.2.0-beta.2", "1.2.0-alpha.1"},
		},
		"release prefix": {
			versions: []string{"release-1.2", "release-1.10", "release-1.9"},
			want:     []string{"release-1.10", "release-1.9", "release-1.2"},
		},
		"date tags": {
			versions: []string{"2024-01-15", "2023-12-01", "2024-02-01"},
			want:     []string{"2024-02-01", "2024-01-15", "2023-12-01"},
		},
		"longer version is newer": {
			versions: []string{"1.2", "1.2.0"},
			want:     []string{"1.2.0", "1.2"},
		},
		"dotted pre-release is older than its base": {
			versions: []string{"1.2.0.rc1", "1.2.0"},
			want:     []string{"1.2.0", "1.2.0.rc1"},
		},
		"pre-release keyword is older than a numeric component": {
			versions: []string{"1.2.alpha", "1.2.3"},
			want:     []string{"1.2.3", "1.2.alpha"},
		},
		"unparseable tags stay deterministic": {
			versions: []string{"1.0.0", "not-a-version"},
			want:     []string{"not-a-version", "1.0.0"},
		},
		"mixed prefixes": {
			versions: []string{"release-1.2", "v1.3", "1.1.5"},
			want:     []string{"v1.3", "release-1.2", "1.1.5"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, fetch.SortVersions(tc.versions))
		})
	}
}

func TestSortVersions_InputUnmodified(t *testing.T) {
	t.Parallel()

	versions := []string{"1.0.0", "2.0.0", "1.5.0"}

	sorted := fetch.SortVersions(versions)

	assert.Equal(t, []string{"2.0.0", "1.5.0", "1.0.0"}, sorted)
	assert.Equal(t, []string{"1.0.0", "2.0.0", "1.5.0"}, versions)
}

func TestFilterMin(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		versions   []string
		minVersion string
		want       []string
	}{
		"minimum is inclusive": {
			versions:   []string{"1.0.0", "1.1.0", "1.2.0"},
			minVersion: "1.1.0",
			want:       []string{"1.1.0", "1.2.0"},
		},
		"prefixes do not affect the cutoff": {
			versions:   []string{"v1.0.0", "v1.2.0"},
			minVersion: "1.1.0",
			want:       []string{"v1.2.0"},
		},
		"pre-release of the minimum is dropped": {
			versions:   []string{"1.1.0-rc.1", "1.1.0", "1.2.0"},
			minVersion: "1.1.0",
			want:       []string{"1.1.0", "1.2.0"},
		},
		"all older": {
			versions:   []string{"0.9.0", "0.9.5"},
			minVersion: "1.0.0",
			want:       []string{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, fetch.FilterMin(tc.versions, tc.minVersion))
		})
	}
}

func TestLimit(t *testing.T) {
	t.Parallel()

	versions := []string{"3.0.0", "2.0.0", "1.0.0"}

	tcs := map[string]struct {
		n    int
		want []string
	}{
		"caps at n": {
			n:    2,
			want: []string{"3.0.0", "2.0.0"},
		},
		"zero means no limit": {
			n:    0,
			want: []string{"3.0.0", "2.0.0", "1.0.0"},
		},
		"negative means no limit": {
			n:    -1,
			want: []string{"3.0.0", "2.0.0", "1.0.0"},
		},
		"larger than the slice": {
			n:    10,
			want: []string{"3.0.0", "2.0.0", "1.0.0"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, fetch.Limit(versions, tc.n))
		})
	}
}
