package github

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v53/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a Client at a fake API server.
func newTestClient(t *testing.T, srv *httptest.Server, token string) *Client {
	t.Helper()

	api := gh.NewClient(srv.Client())

	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)

	api.BaseURL = base

	return &Client{api: api, httpc: srv.Client(), token: token}
}

func TestListYAMLFiles(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget-operator/contents/config/crd", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v1.2.3", r.URL.Query().Get("ref"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name": "bases", "path": "config/crd/bases", "type": "dir"},
			{"name": "kustomization.yaml", "path": "config/crd/kustomization.yaml", "type": "file"},
			{"name": "README.md", "path": "config/crd/README.md", "type": "file"}
		]`)
	})
	mux.HandleFunc("/repos/acme/widget-operator/contents/config/crd/bases", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name": "widgets.yaml", "path": "config/crd/bases/widgets.yaml", "type": "file"},
			{"name": "gadgets.yml", "path": "config/crd/bases/gadgets.yml", "type": "file"}
		]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, "")

	files, err := c.ListYAMLFiles(t.Context(), "acme/widget-operator", "v1.2.3", "config/crd/")
	require.NoError(t, err)

	// Depth-first in listing order, non-YAML entries dropped.
	assert.Equal(t, []string{
		"config/crd/bases/widgets.yaml",
		"config/crd/bases/gadgets.yml",
		"config/crd/kustomization.yaml",
	}, files)
}

func TestListContentsOnFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name": "crds.yaml", "path": "deploy/crds.yaml", "type": "file"}`)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, "")

	_, err := c.ListContents(t.Context(), "acme/widget-operator", "", "deploy/crds.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestListReleaseTags(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget-operator/releases", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/widget-operator/releases?page=2>; rel="next"`, srv.URL))
			fmt.Fprint(w, `[{"tag_name": "v1.1.0"}, {"tag_name": "v1.0.0"}, {"id": 42}]`)
		default:
			fmt.Fprint(w, `[{"tag_name": "v0.9.0"}]`)
		}
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, "")

	tags, err := c.ListReleaseTags(t.Context(), "acme/widget-operator")
	require.NoError(t, err)

	// Pagination is followed; releases without a tag are skipped.
	assert.Equal(t, []string{"v1.1.0", "v1.0.0", "v0.9.0"}, tags)
}

func TestListReleaseTagsInvalidRepo(t *testing.T) {
	t.Parallel()

	c := &Client{}

	_, err := c.ListReleaseTags(t.Context(), "just-a-name")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRepo)
}

func TestDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token sekrit", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		if r.URL.Path != "/crds.yaml" {
			http.NotFound(w, r)

			return
		}

		fmt.Fprint(w, "kind: CustomResourceDefinition\n")
	}))
	t.Cleanup(srv.Close)

	c := &Client{httpc: srv.Client(), token: "sekrit"}

	data, err := c.Download(t.Context(), srv.URL+"/crds.yaml")
	require.NoError(t, err)
	assert.Equal(t, "kind: CustomResourceDefinition\n", string(data))

	_, err = c.Download(t.Context(), srv.URL+"/missing.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPStatus)
}

func TestNewClient(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "sekrit")

	c := NewClient()
	assert.Equal(t, "sekrit", c.token)

	t.Setenv("GITHUB_TOKEN", "")

	c = NewClient()
	assert.Empty(t, c.token)
}

func TestSplitRepo(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		repo      string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		"owner and name": {
			repo:      "cert-manager/cert-manager",
			wantOwner: "cert-manager",
			wantName:  "cert-manager",
		},
		"no separator": {
			repo:    "cert-manager",
			wantErr: true,
		},
		"empty owner": {
			repo:    "/cert-manager",
			wantErr: true,
		},
		"empty name": {
			repo:    "cert-manager/",
			wantErr: true,
		},
		"extra segment": {
			repo:    "cert-manager/cert-manager/deploy",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			owner, repoName, err := splitRepo(tc.repo)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRepo)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantOwner, owner)
			assert.Equal(t, tc.wantName, repoName)
		})
	}
}
