package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"sigs.k8s.io/yaml"
)

var ErrInvalidConfig = errors.New("invalid source config")

// Resource URLs in kustomization configs:
// https://github.com/{owner/repo}//{path}?ref={version}
var kustomizeResourceRegexp = regexp.MustCompile(`^https://github\.com/([^/]+/[^/]+)//(.+)\?ref=(.+)`)

// flexString decodes YAML scalars that may be written unquoted, like
// version: 1.2, as their string form.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v any

	err := json.Unmarshal(data, &v)
	if err != nil {
		return err //nolint:wrapcheck // Wrapped by the caller.
	}

	switch t := v.(type) {
	case string:
		*s = flexString(t)
	case float64:
		*s = flexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*s = flexString(strconv.FormatBool(t))
	default:
		return fmt.Errorf("%w: expected scalar, got %T", ErrInvalidConfig, v)
	}

	return nil
}

type helmReleaseConfig struct {
	Repository string         `json:"repository"`
	Chart      string         `json:"chart"`
	Version    flexString     `json:"version"`
	Values     map[string]any `json:"values,omitempty"`
}

type kustomizationConfig struct {
	Resources []string `json:"resources"`
}

type githubConfig struct {
	Repository string     `json:"repository"`
	Version    flexString `json:"version"`
	Assets     []string   `json:"assets,omitempty"`
}

type urlConfig struct {
	URL     string     `json:"url"`
	Version flexString `json:"version"`
}

type loader struct {
	subdir   string
	fileName string
	parse    func(name string, data []byte) (Source, error)
}

func loaders() []loader {
	return []loader{
		{subdir: "helm", fileName: "helmrelease.yaml", parse: parseHelmRelease},
		{subdir: "kustomize", fileName: "kustomization.yaml", parse: parseKustomization},
		{subdir: "github", fileName: "source.yaml", parse: parseGitHub},
		{subdir: "url", fileName: "source.yaml", parse: parseURL},
	}
}

// Load reads every source under dir, scanning the type directories in order
// (helm, kustomize, github, url) and the entries within each in lexical
// order. Entries that are not directories and directories without a config
// file are skipped. A config that fails to parse or validate becomes a
// per-source error; loading continues and the valid sources are still
// returned.
func Load(dir string) ([]Source, error) {
	var (
		sources []Source
		merr    *multierror.Error
	)

	for _, l := range loaders() {
		subdirPath := filepath.Join(dir, l.subdir)

		dirEntries, err := os.ReadDir(subdirPath)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("read sources directory: %w", err)
		}

		for _, de := range dirEntries {
			if !de.IsDir() {
				continue
			}

			name := de.Name()

			data, err := os.ReadFile(filepath.Join(subdirPath, name, l.fileName)) //nolint:gosec // G304: path is derived from the sources root.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("source %s/%s: %w", l.subdir, name, err))

				continue
			}

			src, err := loadSource(l, name, data)
			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("source %s/%s: %w", l.subdir, name, err))

				continue
			}

			sources = append(sources, src)
		}
	}

	return sources, merr.ErrorOrNil()
}

func loadSource(l loader, name string, data []byte) (Source, error) {
	err := ValidateName(name)
	if err != nil {
		return Source{}, err
	}

	return l.parse(name, data)
}

func parseHelmRelease(name string, data []byte) (Source, error) {
	var cfg helmReleaseConfig

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.Repository == "" || cfg.Chart == "" || cfg.Version == "" {
		return Source{}, fmt.Errorf("%w: repository, chart, and version are required", ErrInvalidConfig)
	}

	return Source{
		Name:     name,
		Type:     TypeHelm,
		Version:  string(cfg.Version),
		Registry: cfg.Repository,
		Chart:    cfg.Chart,
		Values:   cfg.Values,
	}, nil
}

func parseKustomization(name string, data []byte) (Source, error) {
	var cfg kustomizationConfig

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if len(cfg.Resources) == 0 {
		return Source{}, fmt.Errorf("%w: resources must name a github CRD directory", ErrInvalidConfig)
	}

	m := kustomizeResourceRegexp.FindStringSubmatch(cfg.Resources[0])
	if m == nil {
		return Source{}, fmt.Errorf("%w: resource %q is not a github.com//path?ref= URL", ErrInvalidConfig, cfg.Resources[0])
	}

	return Source{
		Name:    name,
		Type:    TypeGitHub,
		Version: m[3],
		Repo:    m[1],
		CRDPath: m[2],
	}, nil
}

func parseGitHub(name string, data []byte) (Source, error) {
	var cfg githubConfig

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.Repository == "" || cfg.Version == "" {
		return Source{}, fmt.Errorf("%w: repository and version are required", ErrInvalidConfig)
	}

	return Source{
		Name:    name,
		Type:    TypeGitHub,
		Version: string(cfg.Version),
		Repo:    cfg.Repository,
		Assets:  cfg.Assets,
	}, nil
}

func parseURL(name string, data []byte) (Source, error) {
	var cfg urlConfig

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.URL == "" || cfg.Version == "" {
		return Source{}, fmt.Errorf("%w: url and version are required", ErrInvalidConfig)
	}

	return Source{
		Name:    name,
		Type:    TypeURL,
		Version: string(cfg.Version),
		URL:     cfg.URL,
	}, nil
}
