package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/k8s-schemas/crdcat/pkg/paths"
	"github.com/k8s-schemas/crdcat/pkg/schema"
)

// Reserved filenames that live alongside schema documents but are not
// schema documents themselves.
const (
	IndexFileName         = "schemas-index.json"
	LegacyIndexFileName   = "index.json"
	SourcesSchemaFileName = "sources.schema.json"
)

var (
	ErrInvalidGVK = errors.New("invalid group/version/kind")
	ErrNotFound   = errors.New("schema not found")
)

var reservedFileNames = map[string]struct{}{
	IndexFileName:         {},
	LegacyIndexFileName:   {},
	SourcesSchemaFileName: {},
}

// IsReservedFileName reports whether name is a reserved catalog filename
// rather than a schema document.
func IsReservedFileName(name string) bool {
	_, ok := reservedFileNames[name]

	return ok
}

// Store reads and writes schema documents under a catalog root directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory. The directory does
// not need to exist yet; Write creates it on demand.
func NewStore(root string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog root: %w", err)
	}

	return &Store{root: absRoot}, nil
}

// Root returns the absolute catalog root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the absolute path where the schema for gvk is stored.
func (s *Store) Path(gvk schema.GVK) string {
	return filepath.Join(s.root, filepath.FromSlash(gvk.Path()))
}

// Write persists doc at the canonical path for gvk, creating parent
// directories as needed, and returns the written path. A gvk with any empty
// component is rejected, since it would break the three-level layout.
func (s *Store) Write(gvk schema.GVK, doc schema.Schema) (string, error) {
	if gvk.Group == "" || gvk.Version == "" || gvk.Kind == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidGVK, gvk.String())
	}

	data, err := doc.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal schema %q: %w", gvk.String(), err)
	}

	path := s.Path(gvk)

	err = os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return "", fmt.Errorf("create schema directory: %w", err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return "", fmt.Errorf("write schema file: %w", err)
	}

	return path, nil
}

// Read loads the schema stored for gvk.
func (s *Store) Read(gvk schema.GVK) (schema.Schema, error) {
	path := s.Path(gvk)

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is derived from the catalog root.
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, gvk.String())
		}

		return nil, fmt.Errorf("read schema file: %w", err)
	}

	doc, err := schema.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return doc, nil
}

// Delete removes the schema document at relPath, a path relative to the
// catalog root. The path is resolved with symlinks followed and must stay
// inside the root.
func (s *Store) Delete(relPath string) error {
	resolved, err := paths.ResolveFileOrDirectoryPath(s.root, s.root, relPath)
	if err != nil {
		return fmt.Errorf("resolve delete path: %w", err)
	}

	if resolved.String() == s.root {
		return fmt.Errorf("%w: %s", paths.ErrResolvedToRepoRoot, relPath)
	}

	err = os.Remove(resolved.String())
	if err != nil {
		return fmt.Errorf("delete schema file: %w", err)
	}

	return nil
}
