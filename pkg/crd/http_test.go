package crd_test

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/crd"
	"github.com/k8s-schemas/crdcat/pkg/kube"
)

// MockHTTPClient implements the HTTPDoer interface for testing
type MockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u
}

func TestFromURL(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupMock func(t *testing.T) *MockHTTPClient
		validate  func(t *testing.T, crds []kube.Object, err error)
		url       string
	}{
		"successful request": {
			url: "https://example.com/crds.yaml",
			setupMock: func(t *testing.T) *MockHTTPClient {
				t.Helper()

				return &MockHTTPClient{
					DoFunc: func(_ *http.Request) (*http.Response, error) {
						return &http.Response{
							StatusCode: http.StatusOK,
							Body:       io.NopCloser(strings.NewReader(widgetCRD)),
						}, nil
					},
				}
			},
			validate: func(t *testing.T, crds []kube.Object, err error) {
				t.Helper()
				require.NoError(t, err)
				require.Len(t, crds, 1)
				assert.Equal(t, "widgets.example.io", crds[0].GetName())
			},
		},
		"http request error": {
			url: "https://example.com/error",
			setupMock: func(t *testing.T) *MockHTTPClient {
				t.Helper()

				return &MockHTTPClient{
					DoFunc: func(_ *http.Request) (*http.Response, error) {
						return nil, errors.New("connection refused")
					},
				}
			},
			validate: func(t *testing.T, crds []kube.Object, err error) {
				t.Helper()
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
				assert.Nil(t, crds)
			},
		},
		"non-2xx status": {
			url: "https://example.com/missing.yaml",
			setupMock: func(t *testing.T) *MockHTTPClient {
				t.Helper()

				return &MockHTTPClient{
					DoFunc: func(_ *http.Request) (*http.Response, error) {
						return &http.Response{
							StatusCode: http.StatusNotFound,
							Status:     "404 Not Found",
							Body:       io.NopCloser(strings.NewReader("not found")),
						}, nil
					},
				}
			},
			validate: func(t *testing.T, crds []kube.Object, err error) {
				t.Helper()
				require.ErrorIs(t, err, crd.ErrHTTPStatus)
				assert.Nil(t, crds)
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			client := tc.setupMock(t)

			crds, err := crd.FromURL(t.Context(), client, mustParseURL(t, tc.url))
			tc.validate(t, crds, err)
		})
	}
}

func TestFromURLs(t *testing.T) {
	t.Parallel()

	t.Run("aggregates multiple urls", func(t *testing.T) {
		t.Parallel()

		client := &MockHTTPClient{
			DoFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader(widgetCRD)),
				}, nil
			},
		}

		crds, err := crd.FromURLs(t.Context(), client,
			mustParseURL(t, "https://example.com/a.yaml"),
			mustParseURL(t, "https://example.com/b.yaml"),
		)
		require.NoError(t, err)
		assert.Len(t, crds, 2)
	})

	t.Run("no urls", func(t *testing.T) {
		t.Parallel()

		_, err := crd.FromURLs(t.Context(), &MockHTTPClient{})
		require.Error(t, err)
	})
}
