package crd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/k8s-schemas/crdcat/pkg/kube"
	"github.com/k8s-schemas/crdcat/pkg/schema"
)

// Lint validates every version schema of the given CRDs as an OpenAPI v3
// schema fragment, returning one error per version that fails validation.
// Kubernetes vendor extensions are tolerated. Lint findings are diagnostics;
// extraction does not depend on them.
func Lint(ctx context.Context, crds []kube.Object) []error {
	var errs []error

	for _, c := range crds {
		name := c.GetName()

		forEachVersionSchema(c, func(gvk schema.GVK, versionSchema map[string]any) {
			err := lintVersionSchema(ctx, versionSchema)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %s: %w", name, gvk.Version, err))
			}
		})
	}

	return errs
}

func lintVersionSchema(ctx context.Context, versionSchema map[string]any) error {
	data, err := json.Marshal(versionSchema)
	if err != nil {
		return fmt.Errorf("marshal version schema: %w", err)
	}

	var s openapi3.Schema

	err = s.UnmarshalJSON(data)
	if err != nil {
		return fmt.Errorf("parse openapi schema: %w", err)
	}

	err = s.Validate(ctx)
	if err != nil {
		return fmt.Errorf("validate openapi schema: %w", err)
	}

	return nil
}
