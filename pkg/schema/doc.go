// Package schema provides the JSON Schema representation used by the catalog.
//
// A [Schema] is a map-based JSON Schema document following the 2020-12 draft,
// produced by normalizing the openAPIV3Schema of a CRD version. Normalization
// builds a stable envelope ($schema, $id, title, description, type), strips
// Kubernetes-specific OpenAPI vendor extensions at every depth, and injects
// apiVersion/kind enum properties when absent. Content hashes ignore $id and
// provenance metadata so that the same schema extracted from different
// sources compares equal.
package schema
