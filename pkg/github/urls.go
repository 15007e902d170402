package github

import (
	"fmt"
	"strings"
)

// RawFileURL returns the raw content URL for a file in the repository at
// the given ref.
func RawFileURL(repo, ref, path string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", repo, ref, path)
}

// ReleaseAssetURL returns the download URL for an asset attached to the
// release tagged tag.
func ReleaseAssetURL(repo, tag, asset string) string {
	return fmt.Sprintf("https://github.com/%s/releases/download/%s/%s", repo, tag, asset)
}

// AssetURL resolves a source asset reference: names containing a path
// separator are files in the repository tree, bare names are release
// assets.
func AssetURL(repo, version, asset string) string {
	if strings.Contains(asset, "/") {
		return RawFileURL(repo, version, asset)
	}

	return ReleaseAssetURL(repo, version, asset)
}
