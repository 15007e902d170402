// Package seed imports an existing public CRD schema collection into the
// catalog. Group directories fan out to bounded workers; every imported
// document gets its $id rewritten to the catalog convention.
package seed
