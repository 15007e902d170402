package crd

import (
	"log/slog"

	"github.com/k8s-schemas/crdcat/pkg/kube"
	"github.com/k8s-schemas/crdcat/pkg/schema"
)

// Record pairs a GVK with the normalized schema extracted for it.
type Record struct {
	Schema schema.Schema
	GVK    schema.GVK
}

// Extract converts CRD objects into normalized schema records, one per
// declared version carrying a non-empty openAPIV3Schema. CRDs missing
// spec.group or spec.names.kind yield no records; versions without a schema
// are skipped. prov is stamped into every record.
func Extract(crds []kube.Object, prov schema.Provenance) []Record {
	records := []Record{}

	for _, c := range crds {
		forEachVersionSchema(c, func(gvk schema.GVK, versionSchema map[string]any) {
			records = append(records, Record{
				GVK:    gvk,
				Schema: schema.Normalize(gvk, versionSchema, prov),
			})
		})
	}

	return records
}

// forEachVersionSchema calls fn for every version of the CRD that carries a
// non-empty openAPIV3Schema. Both the multi-version and the legacy
// single-version layouts are handled.
func forEachVersionSchema(obj kube.Object, fn func(schema.GVK, map[string]any)) {
	spec, ok := obj["spec"].(map[string]any)
	if !ok {
		return
	}

	group, _ := spec["group"].(string)

	names, _ := spec["names"].(map[string]any)
	kind, _ := names["kind"].(string)

	if group == "" || kind == "" {
		slog.Debug("skipping CRD without group or kind",
			slog.String("name", obj.GetName()),
		)

		return
	}

	versions, _ := spec["versions"].([]any)

	// Legacy v1beta1 layout: a single schema at spec.validation with the
	// version at spec.version, defaulting to v1.
	if len(versions) == 0 {
		validation, ok := spec["validation"].(map[string]any)
		if !ok {
			return
		}

		version, _ := spec["version"].(string)
		if version == "" {
			version = "v1"
		}

		openAPISchema, _ := validation["openAPIV3Schema"].(map[string]any)
		if len(openAPISchema) == 0 {
			return
		}

		fn(schema.GVK{Group: group, Version: version, Kind: kind}, openAPISchema)

		return
	}

	for _, v := range versions {
		version, ok := v.(map[string]any)
		if !ok {
			continue
		}

		versionName, _ := version["name"].(string)
		if versionName == "" {
			slog.Debug("skipping CRD version without a name",
				slog.String("name", obj.GetName()),
			)

			continue
		}

		versionSchema, _ := version["schema"].(map[string]any)

		openAPISchema, _ := versionSchema["openAPIV3Schema"].(map[string]any)
		if len(openAPISchema) == 0 {
			slog.Debug("skipping CRD version without a schema",
				slog.String("name", obj.GetName()),
				slog.String("version", versionName),
			)

			continue
		}

		fn(schema.GVK{Group: group, Version: versionName, Kind: kind}, openAPISchema)
	}
}
