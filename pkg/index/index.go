package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/k8s-schemas/crdcat/pkg/catalog"
)

// Entry is one schema in the index. Source and SourceVersion are null when
// the document carries no provenance.
type Entry struct {
	Kind          string  `json:"kind"`
	Source        *string `json:"source"`
	SourceVersion *string `json:"sourceVersion"`
}

// Stats summarizes the catalog for the index header.
type Stats struct {
	TotalSchemas int `json:"totalSchemas"`
	TotalGroups  int `json:"totalGroups"`
	TotalSources int `json:"totalSources"`
}

// Version is one API version of a group with its schemas sorted by kind.
type Version struct {
	Name    string
	Entries []Entry
}

// Group is one API group with its versions sorted newest first.
type Group struct {
	Name     string
	Versions []Version
}

// Groups marshals as a nested JSON object in slice order. A plain map would
// re-sort version keys ascending; readers expect them descending.
type Groups []Group

// MarshalJSON renders group → version → entries preserving order.
func (g Groups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, grp := range g {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeKey(&buf, grp.Name); err != nil {
			return nil, err
		}

		buf.WriteByte('{')

		for j, v := range grp.Versions {
			if j > 0 {
				buf.WriteByte(',')
			}

			if err := writeKey(&buf, v.Name); err != nil {
				return nil, err
			}

			entries, err := json.Marshal(v.Entries)
			if err != nil {
				return nil, fmt.Errorf("marshal entries for %s/%s: %w", grp.Name, v.Name, err)
			}

			buf.Write(entries)
		}

		buf.WriteByte('}')
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("marshal key %q: %w", key, err)
	}

	buf.Write(k)
	buf.WriteByte(':')

	return nil
}

// Index is the schemas-index.json document.
type Index struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Stats       Stats     `json:"stats"`
	Groups      Groups    `json:"groups"`
}

// Generate scans the catalog and builds its index: groups ascending,
// versions descending in plain string order, kinds ascending. Sources are
// counted once per distinct name; entries without provenance contribute
// null source fields and no source count.
func Generate(ctx context.Context, store *catalog.Store) (*Index, error) {
	entries, err := store.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}

	byGroup := map[string]map[string][]Entry{}
	sources := map[string]struct{}{}

	for _, e := range entries {
		ie := Entry{Kind: e.Kind}

		if e.Source != catalog.UnknownSource {
			ie.Source = &e.Source
			sources[e.Source] = struct{}{}
		}

		if e.SourceVersion != catalog.UnknownSource {
			ie.SourceVersion = &e.SourceVersion
		}

		versions, ok := byGroup[e.Group]
		if !ok {
			versions = map[string][]Entry{}
			byGroup[e.Group] = versions
		}

		versions[e.Version] = append(versions[e.Version], ie)
	}

	groupNames := make([]string, 0, len(byGroup))
	for name := range byGroup {
		groupNames = append(groupNames, name)
	}

	slices.Sort(groupNames)

	groups := make(Groups, 0, len(groupNames))

	for _, name := range groupNames {
		versionNames := make([]string, 0, len(byGroup[name]))
		for version := range byGroup[name] {
			versionNames = append(versionNames, version)
		}

		slices.SortFunc(versionNames, func(a, b string) int {
			return strings.Compare(b, a)
		})

		versions := make([]Version, 0, len(versionNames))

		for _, version := range versionNames {
			es := byGroup[name][version]
			slices.SortFunc(es, func(a, b Entry) int {
				return strings.Compare(a.Kind, b.Kind)
			})

			versions = append(versions, Version{Name: version, Entries: es})
		}

		groups = append(groups, Group{Name: name, Versions: versions})
	}

	return &Index{
		GeneratedAt: time.Now().UTC(),
		Stats: Stats{
			TotalSchemas: len(entries),
			TotalGroups:  len(byGroup),
			TotalSources: len(sources),
		},
		Groups: groups,
	}, nil
}

// Write renders idx with two-space indentation to the reserved index
// filename at the store root and returns the written path.
func Write(store *catalog.Store, idx *Index) (string, error) {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal index: %w", err)
	}

	data = append(data, '\n')

	err = os.MkdirAll(store.Root(), 0o750)
	if err != nil {
		return "", fmt.Errorf("create catalog root: %w", err)
	}

	path := filepath.Join(store.Root(), catalog.IndexFileName)

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return "", fmt.Errorf("write index: %w", err)
	}

	return path, nil
}
