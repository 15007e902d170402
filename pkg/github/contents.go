package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v53/github"
)

// Entry types as reported by the contents API.
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Entry is one item of a repository directory listing.
type Entry struct {
	Name string
	Path string
	Type string
}

// ListContents returns the direct children of a repository directory at the
// given ref. An empty ref means the default branch.
func (c *Client) ListContents(ctx context.Context, repo, ref, path string) ([]Entry, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &gh.RepositoryContentGetOptions{Ref: ref}

	_, dir, _, err := c.api.Repositories.GetContents(ctx, owner, name, path, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s contents at %q: %w", repo, path, err)
	}

	if dir == nil {
		return nil, fmt.Errorf("%s in %s is not a directory", path, repo)
	}

	entries := make([]Entry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, Entry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Type: item.GetType(),
		})
	}

	return entries, nil
}

// ListYAMLFiles walks the repository tree under path at the given ref and
// returns the paths of all YAML files, depth-first in listing order.
func (c *Client) ListYAMLFiles(ctx context.Context, repo, ref, path string) ([]string, error) {
	entries, err := c.ListContents(ctx, repo, ref, strings.TrimSuffix(path, "/"))
	if err != nil {
		return nil, err
	}

	files := []string{}

	for _, e := range entries {
		switch {
		case e.Type == TypeFile && isYAML(e.Name):
			files = append(files, e.Path)
		case e.Type == TypeDir:
			nested, err := c.ListYAMLFiles(ctx, repo, ref, e.Path)
			if err != nil {
				return nil, err
			}

			files = append(files, nested...)
		}
	}

	return files, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
