package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v53/github"
)

const (
	releasePageSize = 100

	// Listing stops after this many pages. Backfills cap the versions they
	// process far below 2000 releases.
	maxReleasePages = 20
)

// ListReleaseTags returns the tag names of the repository's releases,
// newest first as reported by the API.
func (c *Client) ListReleaseTags(ctx context.Context, repo string) ([]string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	tags := []string{}
	opts := &gh.ListOptions{PerPage: releasePageSize}

	for page := 0; page < maxReleasePages; page++ {
		releases, resp, err := c.api.Repositories.ListReleases(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("list releases for %s: %w", repo, err)
		}

		for _, rel := range releases {
			if tag := rel.GetTagName(); tag != "" {
				tags = append(tags, tag)
			}
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return tags, nil
}
