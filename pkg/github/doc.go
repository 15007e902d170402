// Package github reads CRD manifests and release metadata from GitHub
// repositories: directory discovery through the contents API, release tag
// listing, and raw-file or release-asset downloads.
package github
