package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/source"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		name    string
		wantErr string
	}{
		"simple": {
			name: "flux",
		},
		"hyphenated": {
			name: "cert-manager",
		},
		"digits": {
			name: "ack-s3",
		},
		"uppercase": {
			name:    "CertManager",
			wantErr: `did you mean "cert-manager"?`,
		},
		"underscores": {
			name:    "cert_manager",
			wantErr: `did you mean "cert-manager"?`,
		},
		"leading hyphen": {
			name:    "-cert-manager",
			wantErr: "invalid source name",
		},
		"empty": {
			name:    "",
			wantErr: "invalid source name",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := source.ValidateName(tc.name)
			if tc.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, source.ErrInvalidName)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	sources := []source.Source{
		{Name: "cert-manager", Type: source.TypeHelm, Version: "v1.14.0"},
		{Name: "flux", Type: source.TypeGitHub, Version: "v2.2.0"},
	}

	got, err := source.Get(sources, "flux")
	require.NoError(t, err)
	assert.Equal(t, source.TypeGitHub, got.Type)

	_, err = source.Get(sources, "missing")
	require.ErrorIs(t, err, source.ErrNotFound)
}

func TestSource_String(t *testing.T) {
	t.Parallel()

	s := source.Source{Name: "cert-manager", Version: "v1.14.0"}
	assert.Equal(t, "cert-manager@v1.14.0", s.String())
}
