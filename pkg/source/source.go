package source

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/iancoleman/strcase"
)

// Type identifies how a source's CRDs are obtained.
type Type string

const (
	TypeHelm   Type = "helm"
	TypeGitHub Type = "github"
	TypeURL    Type = "url"
)

var (
	ErrInvalidName = errors.New("invalid source name")
	ErrNotFound    = errors.New("source not found")
)

// Source names are lowercase words joined by single hyphens, so they can be
// used verbatim as directory names and provenance sourceName values.
var nameRegexp = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Source describes one upstream provider of CRDs. Name and Version feed
// provenance; the remaining fields depend on Type.
type Source struct {
	// Name is the source directory name, used as the provenance sourceName.
	Name string `json:"name" jsonschema:"minLength=1,pattern=^[a-z0-9]+(-[a-z0-9]+)*$,description=Source name in lowercase-hyphen form."`
	// Type selects how CRDs are fetched.
	Type Type `json:"type" jsonschema:"enum=helm,enum=github,enum=url,description=How CRDs are fetched."`
	// Version is the upstream version to extract, used as the provenance sourceVersion.
	Version string `json:"version" jsonschema:"minLength=1,description=Upstream version to extract."`

	// Registry is the Helm repository URL, or an oci:// reference.
	Registry string `json:"registry,omitempty" jsonschema:"description=Helm repository URL or oci:// reference."`
	// Chart is the Helm chart name.
	Chart string `json:"chart,omitempty" jsonschema:"description=Helm chart name."`
	// Values are Helm values applied when rendering the chart.
	Values map[string]any `json:"values,omitempty" jsonschema:"description=Helm values applied when rendering the chart."`

	// Repo is the owner/name of a GitHub repository.
	Repo string `json:"repository,omitempty" jsonschema:"description=GitHub repository as owner/name."`
	// CRDPath is a directory within the repository to discover CRD manifests in.
	CRDPath string `json:"crdPath,omitempty" jsonschema:"description=Repository directory to discover CRD manifests in."`
	// Assets are release asset names or repository file paths to download.
	Assets []string `json:"assets,omitempty" jsonschema:"description=Release asset names or repository file paths."`

	// URL is a direct manifest URL, or a manifest path under the sources
	// directory; {version} is replaced with Version.
	URL string `json:"url,omitempty" jsonschema:"description=Manifest URL or a path under the sources directory; {version} is replaced with the version."`
}

// String renders the source as name@version for logs.
func (s Source) String() string {
	return s.Name + "@" + s.Version
}

// ValidateName checks that name is usable as a source name, suggesting the
// kebab-case form when it is not.
func ValidateName(name string) error {
	if nameRegexp.MatchString(name) {
		return nil
	}

	suggestion := strcase.ToKebab(name)
	if suggestion != "" && suggestion != name && nameRegexp.MatchString(suggestion) {
		return fmt.Errorf("%w: %q (did you mean %q?)", ErrInvalidName, name, suggestion)
	}

	return fmt.Errorf("%w: %q", ErrInvalidName, name)
}

// Get finds a source by name.
func Get(sources []Source, name string) (Source, error) {
	for _, s := range sources {
		if s.Name == name {
			return s, nil
		}
	}

	return Source{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}
