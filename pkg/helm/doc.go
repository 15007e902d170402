// Package helm pulls Helm charts and extracts the CRD manifests they ship.
//
// Charts are downloaded once per (repository, chart, version) into a
// randomized temporary root and reused for the process lifetime. Rendering
// runs client-side only with CRDs included, so the returned manifests carry
// both crds/ files and template-rendered CRDs. Repository index fetches are
// cached per URL.
package helm
