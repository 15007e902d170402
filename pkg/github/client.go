package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	gh "github.com/google/go-github/v53/github"

	"github.com/k8s-schemas/crdcat/internal/version"
)

var (
	// ErrInvalidRepo indicates a repository reference that is not in
	// "owner/name" form.
	ErrInvalidRepo = errors.New("repository must be in owner/name form")

	// ErrHTTPStatus indicates a non-2xx response on a download.
	ErrHTTPStatus = errors.New("unexpected http status")
)

// Client wraps the GitHub API for content discovery, release listing and
// raw downloads.
type Client struct {
	api   *gh.Client
	httpc *http.Client
	token string
}

// NewClient returns a client for the public GitHub API, authenticated via
// the GITHUB_TOKEN environment variable when it is set.
func NewClient() *Client {
	token := os.Getenv("GITHUB_TOKEN")

	api := gh.NewClient(nil)
	if token != "" {
		api = gh.NewTokenClient(context.Background(), token)
	}

	return &Client{
		api:   api,
		httpc: http.DefaultClient,
		token: token,
	}
}

// Download fetches the given URL and returns the response body. The auth
// token is sent along when configured, so raw-content and release-asset
// downloads from private repositories work the same as API calls.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("User-Agent", version.GetUserAgent())

	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned %s", ErrHTTPStatus, rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return data, nil
}

func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}

	return owner, name, nil
}
