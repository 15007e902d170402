package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/internal/version"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, version.Revision)
}

func TestGetUserAgent(t *testing.T) {
	t.Parallel()

	require.Contains(t, version.GetUserAgent(), "crdcat/")
}
