package catalogcmd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
	"github.com/k8s-schemas/crdcat/pkg/github"
)

func TestBackfill(t *testing.T) {
	t.Parallel()

	sourcesDir := t.TempDir()
	writeSourceConfig(t, sourcesDir, "github", "backup-operator", "source.yaml",
		"repository: example/backup-operator\nversion: v1.1.0\nassets:\n  - crds.yaml\n")
	writeSourceConfig(t, sourcesDir, "url", "alert-operator", "source.yaml",
		"url: \"https://example.com/crds/{version}/manifest.yaml\"\nversion: v0.9.0\n")

	fake := &fakeGitHub{
		tags: []string{"v0.9.0", "v1.1.0", "v1.0.0"},
		downloads: map[string][]byte{
			github.ReleaseAssetURL("example/backup-operator", "v1.1.0", "crds.yaml"): []byte(backupCRD),
			github.ReleaseAssetURL("example/backup-operator", "v1.0.0", "crds.yaml"): []byte(backupCRD),
		},
	}

	store := newStore(t)

	cat := catalogcmd.NewCatalog(store, sourcesDir, catalogcmd.WithGitHubClient(fake))

	summary, err := cat.Backfill(t.Context(), catalogcmd.BackfillOptions{MinVersion: "v1.0.0"})
	require.NoError(t, err)
	require.Len(t, summary.Sources, 2)

	backup := summary.Sources[0]
	assert.Equal(t, "backup-operator", backup.Name)
	assert.Equal(t, 2, backup.Found)
	assert.Equal(t, 2, backup.Processed)
	assert.Equal(t, 2, backup.Schemas)

	// URL sources have no version discovery and are skipped.
	alert := summary.Sources[1]
	assert.Equal(t, "alert-operator", alert.Name)
	assert.Equal(t, 0, alert.Found)

	out := summary.String()
	assert.Contains(t, out, "BACKFILL SUMMARY")
	assert.Contains(t, out, "backup-operator: 2/2 versions, 2 schemas")
	assert.Contains(t, out, "Total: 2/2 versions, 2 schemas")

	_, err = store.Read(backupGVK)
	require.NoError(t, err)
}

func TestBackfill_MaxVersions(t *testing.T) {
	t.Parallel()

	sourcesDir := t.TempDir()
	writeSourceConfig(t, sourcesDir, "github", "backup-operator", "source.yaml",
		"repository: example/backup-operator\nversion: v1.1.0\nassets:\n  - crds.yaml\n")

	// Only the newest release is wired up; the cap has to stop discovery from
	// reaching the older ones.
	fake := &fakeGitHub{
		tags: []string{"v0.9.0", "v1.1.0", "v1.0.0"},
		downloads: map[string][]byte{
			github.ReleaseAssetURL("example/backup-operator", "v1.1.0", "crds.yaml"): []byte(backupCRD),
		},
	}

	cat := catalogcmd.NewCatalog(newStore(t), sourcesDir, catalogcmd.WithGitHubClient(fake))

	summary, err := cat.Backfill(t.Context(), catalogcmd.BackfillOptions{MaxVersions: 1}, "backup-operator")
	require.NoError(t, err)
	require.Len(t, summary.Sources, 1)

	assert.Equal(t, 1, summary.Sources[0].Found)
	assert.Equal(t, 1, summary.Sources[0].Processed)
	assert.Equal(t, 1, summary.Sources[0].Schemas)
}

func TestBackfill_VersionFailure(t *testing.T) {
	t.Parallel()

	sourcesDir := t.TempDir()
	writeSourceConfig(t, sourcesDir, "github", "backup-operator", "source.yaml",
		"repository: example/backup-operator\nversion: v1.1.0\nassets:\n  - crds.yaml\n")

	fake := &fakeGitHub{
		tags: []string{"v1.1.0", "v1.0.0"},
		downloads: map[string][]byte{
			github.ReleaseAssetURL("example/backup-operator", "v1.1.0", "crds.yaml"): []byte(backupCRD),
		},
	}

	cat := catalogcmd.NewCatalog(newStore(t), sourcesDir, catalogcmd.WithGitHubClient(fake))

	summary, err := cat.Backfill(t.Context(), catalogcmd.BackfillOptions{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "version v1.0.0")

	require.Len(t, summary.Sources, 1)

	src := summary.Sources[0]
	assert.Equal(t, 2, src.Found)
	assert.Equal(t, 1, src.Processed)
	assert.Equal(t, 1, src.Schemas)
}
