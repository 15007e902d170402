package helmtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Chart is a chart fixture served by a [Repo]. Files are archived under the
// paths given, so entries should be prefixed with the chart name the way
// packaged charts are.
type Chart struct {
	Files   map[string]string
	Name    string
	Version string
}

// Repo is an in-process chart repository serving registered charts and an
// index generated from them.
type Repo struct {
	srv    *httptest.Server
	charts []Chart
}

// NewRepo starts a chart repository serving the given charts. The server is
// closed when the test finishes.
func NewRepo(t *testing.T, charts ...Chart) *Repo {
	t.Helper()

	r := &Repo{charts: charts}

	mux := http.NewServeMux()
	mux.HandleFunc("/index.yaml", r.serveIndex)

	for _, c := range charts {
		archive := Archive(t, c.Files)

		mux.HandleFunc(fmt.Sprintf("/%s-%s.tgz", c.Name, c.Version), func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(archive)
		})
	}

	r.srv = httptest.NewServer(mux)
	t.Cleanup(r.srv.Close)

	return r
}

// URL returns the repository base URL.
func (r *Repo) URL() string {
	return r.srv.URL
}

// Close shuts the repository down before the test finishes, for exercising
// offline behavior.
func (r *Repo) Close() {
	r.srv.Close()
}

func (r *Repo) serveIndex(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	byName := map[string][]Chart{}

	for _, c := range r.charts {
		if _, ok := byName[c.Name]; !ok {
			names = append(names, c.Name)
		}

		byName[c.Name] = append(byName[c.Name], c)
	}

	fmt.Fprintln(w, "apiVersion: v1")
	fmt.Fprintln(w, "entries:")

	for _, name := range names {
		fmt.Fprintf(w, "  %s:\n", name)

		for _, c := range byName[name] {
			fmt.Fprintf(w, "    - name: %s\n", c.Name)
			fmt.Fprintf(w, "      version: %s\n", c.Version)
			fmt.Fprintln(w, "      apiVersion: v2")
			fmt.Fprintf(w, "      urls: [%s/%s-%s.tgz]\n", r.srv.URL, c.Name, c.Version)
		}
	}
}
