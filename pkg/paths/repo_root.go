package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileNotFound indicates a file wasn't found in the searched paths.
var ErrFileNotFound = errors.New("file not found")

// SourcesDirName is the subdirectory of a catalog root that holds source
// declarations.
const SourcesDirName = "sources"

// FindCatalogRoot returns the closest (innermost) catalog root for the
// provided path by searching bottom-up from path toward /. A catalog root is
// identified by a `sources` subdirectory. If no catalog root is found, it
// returns an error.
func FindCatalogRoot(path string) (string, error) {
	f, err := findClosestFile("/", path, func(s string) (bool, error) {
		checkPath := filepath.Join(s, SourcesDirName)
		fi, err := os.Lstat(checkPath)
		if err != nil {
			return false, fmt.Errorf("%s: %w", checkPath, err)
		}

		return fi.IsDir(), nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", SourcesDirName, err)
	}

	return f, nil
}

// findClosestFile walks from path upward toward root, returning the first
// directory where test returns true.
func findClosestFile(root, path string, test func(string) (bool, error)) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	if !strings.HasPrefix(pathAbs, rootAbs) {
		return "", ErrResolvedOutsideRepo
	}

	currentDir := pathAbs
	for {
		match, err := test(currentDir)
		if err == nil && match {
			return currentDir, nil
		}

		if currentDir == rootAbs {
			break
		}

		currentDir = filepath.Dir(currentDir)
	}

	return "", ErrFileNotFound
}
