// Package crd reads Kubernetes CustomResourceDefinitions and extracts JSON
// schemas from them.
//
// CRDs can be loaded from raw bytes, readers, file paths, or URLs. [Extract]
// converts each declared version of a CRD into a normalized schema record,
// handling both the current multi-version layout (spec.versions[].schema) and
// the legacy v1beta1 layout (spec.validation with a single spec.version).
package crd
