package crd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/k8s-schemas/crdcat/pkg/kube"
)

// FromReader reads CRDs from a reader and returns the corresponding
// []kube.Object representation.
func FromReader(r io.Reader) ([]kube.Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return FromData(data)
}

// FromData reads CRDs from raw bytes and returns the corresponding
// []kube.Object representation. Non-CRD documents in the input are ignored.
func FromData(data []byte) ([]kube.Object, error) {
	resources, err := kube.SplitYAML(data)
	if err != nil {
		return nil, fmt.Errorf("split yaml: %w", err)
	}

	crds := []kube.Object{}

	for _, r := range resources {
		obj := kube.FromUnstructured(r)
		if obj.IsCRD() {
			crds = append(crds, obj)
		}
	}

	return crds, nil
}

// FromPath reads CRDs from the given file path and returns the corresponding
// []kube.Object representation.
func FromPath(path string) ([]kube.Object, error) {
	//nolint:gosec // G304 not relevant for client-side extraction.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return FromData(data)
}

// FromPaths reads CRDs from the given file paths and returns the corresponding
// []kube.Object representation.
func FromPaths(paths ...string) ([]kube.Object, error) {
	if len(paths) == 0 {
		return nil, errors.New("no paths provided")
	}

	crds := []kube.Object{}

	for _, path := range paths {
		c, err := FromPath(path)
		if err != nil {
			return nil, fmt.Errorf("read CRDs from %s: %w", path, err)
		}

		crds = append(crds, c...)
	}

	return crds, nil
}
