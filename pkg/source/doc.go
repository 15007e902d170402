// Package source loads the descriptors that say where CRDs come from.
//
// Sources live one directory per source under a sources root:
//
//	sources/helm/{name}/helmrelease.yaml
//	sources/kustomize/{name}/kustomization.yaml
//	sources/github/{name}/source.yaml
//	sources/url/{name}/source.yaml
//
// Kustomize configs are loaded as github sources carrying the CRD directory
// from their first resource URL.
package source
