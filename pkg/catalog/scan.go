package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/k8s-schemas/crdcat/pkg/schema"
)

// UnknownSource is reported for entries whose provenance does not name a
// source.
const UnknownSource = "unknown"

// Entry is one schema document found by Scan. Root is the catalog root the
// entry was scanned from, so entries from different catalogs can be told
// apart when they share a RelPath.
type Entry struct {
	Schema        schema.Schema
	Root          string
	Path          string
	RelPath       string
	Group         string
	Version       string
	Kind          string
	Hash          string
	Source        string
	SourceVersion string
}

// APIPath returns the group/version/kind identity of the entry.
func (e Entry) APIPath() string {
	return e.Group + "/" + e.Version + "/" + e.Kind
}

// GVK returns the identity of the entry as a GVK. Kind carries the
// lower-cased file stem; original casing lives in the schema body.
func (e Entry) GVK() schema.GVK {
	return schema.GVK{Group: e.Group, Version: e.Version, Kind: e.Kind}
}

// Scan walks the catalog and returns every schema document in lexical path
// order. Reserved filenames and paths that are not exactly three levels deep
// are skipped, as is any file that does not parse as a JSON object; malformed
// documents are logged. Each entry carries the content hash and the source
// named by its provenance, defaulting to [UnknownSource].
func (s *Store) Scan(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	err := filepath.Walk(s.root,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return fmt.Errorf("walk catalog: %w", err)
			}

			if err := ctx.Err(); err != nil {
				return fmt.Errorf("scan canceled: %w", err)
			}

			if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
				return nil
			}

			if IsReservedFileName(info.Name()) {
				return nil
			}

			relPath, err := filepath.Rel(s.root, path)
			if err != nil {
				return fmt.Errorf("relativize %s: %w", path, err)
			}
			relPath = filepath.ToSlash(relPath)

			parts := strings.Split(relPath, "/")
			if len(parts) != 3 {
				slog.Debug("skipping file outside group/version/kind layout",
					slog.String("path", relPath),
				)

				return nil
			}

			entry, ok := s.readEntry(path, relPath, parts)
			if ok {
				entries = append(entries, entry)
			}

			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("scan catalog %s: %w", s.root, err)
	}

	return entries, nil
}

func (s *Store) readEntry(path, relPath string, parts []string) (Entry, bool) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from walking the catalog root.
	if err != nil {
		slog.Warn("failed to read schema file",
			slog.String("path", relPath),
			slog.Any("err", err),
		)

		return Entry{}, false
	}

	doc, err := schema.Decode(data)
	if err != nil {
		slog.Warn("invalid JSON in schema file",
			slog.String("path", relPath),
			slog.Any("err", err),
		)

		return Entry{}, false
	}

	hash, err := doc.Hash()
	if err != nil {
		slog.Warn("failed to hash schema file",
			slog.String("path", relPath),
			slog.Any("err", err),
		)

		return Entry{}, false
	}

	entry := Entry{
		Schema:        doc,
		Root:          s.root,
		Path:          path,
		RelPath:       relPath,
		Group:         parts[0],
		Version:       parts[1],
		Kind:          strings.TrimSuffix(parts[2], ".json"),
		Hash:          hash,
		Source:        UnknownSource,
		SourceVersion: UnknownSource,
	}

	prov, ok := doc.Provenance()
	if ok {
		if prov.SourceName != "" {
			entry.Source = prov.SourceName
		}

		if prov.SourceVersion != "" {
			entry.SourceVersion = prov.SourceVersion
		}
	}

	return entry, true
}
