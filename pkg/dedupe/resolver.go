package dedupe

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/k8s-schemas/crdcat/pkg/catalog"
	"github.com/k8s-schemas/crdcat/pkg/schema"
)

var ErrUnknownRoot = errors.New("entry outside any catalog root")

// Group is every catalog entry sharing one API path.
type Group struct {
	APIPath string
	Entries []catalog.Entry
}

// Variant is the subset of a group's entries sharing identical content.
type Variant struct {
	Hash    string
	Entries []catalog.Entry
}

// Action is the planned reduction of one API path whose duplicates all share
// the same content: keep the highest-priority entry, remove the rest.
type Action struct {
	APIPath string
	Keep    catalog.Entry
	Remove  []catalog.Entry
}

// Divergent is an API path whose duplicates disagree on content. Divergent
// groups are reported, never reduced.
type Divergent struct {
	APIPath  string
	Variants []Variant
}

// Plan is the outcome of planning a dedupe pass over the catalog.
type Plan struct {
	Actions   []Action
	Divergent []Divergent
}

// Result summarizes an apply pass.
type Result struct {
	Kept      int
	Planned   int
	Deleted   int
	Divergent int
	DryRun    bool
}

// Resolver selects canonical schema documents across sources. It scans one
// or more catalog roots, so a seed catalog and the main catalog can carry
// the same API path as distinct files. Roots must not overlap. The priority
// table is injected so alternate rankings can be supplied.
type Resolver struct {
	byRoot map[string]*catalog.Store
	stores []*catalog.Store
	table  PriorityTable
}

// NewResolver creates a resolver over the given catalog stores.
func NewResolver(table PriorityTable, stores ...*catalog.Store) *Resolver {
	byRoot := make(map[string]*catalog.Store, len(stores))
	for _, s := range stores {
		byRoot[s.Root()] = s
	}

	return &Resolver{
		byRoot: byRoot,
		stores: stores,
		table:  table,
	}
}

// Scan groups every schema document in every catalog root by API path.
// Groups are ordered by API path; entries within a group are ordered by
// priority, then source, source version, and path.
func (r *Resolver) Scan(ctx context.Context) ([]Group, error) {
	var entries []catalog.Entry

	for _, store := range r.stores {
		storeEntries, err := store.Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan for duplicates: %w", err)
		}

		entries = append(entries, storeEntries...)
	}

	byPath := map[string][]catalog.Entry{}
	for _, e := range entries {
		byPath[e.APIPath()] = append(byPath[e.APIPath()], e)
	}

	groups := make([]Group, 0, len(byPath))
	for apiPath, pathEntries := range byPath {
		r.sortEntries(pathEntries)
		groups = append(groups, Group{APIPath: apiPath, Entries: pathEntries})
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return cmp.Compare(a.APIPath, b.APIPath)
	})

	return groups, nil
}

// Duplicates filters groups down to API paths with more than one entry.
func Duplicates(groups []Group) []Group {
	var dups []Group

	for _, g := range groups {
		if len(g.Entries) > 1 {
			dups = append(dups, g)
		}
	}

	return dups
}

// Plan computes the reduction for every duplicated API path. Identical
// content becomes an Action keeping the highest-priority source; anything
// else is recorded as Divergent.
func (r *Resolver) Plan(groups []Group) Plan {
	var plan Plan

	for _, g := range Duplicates(groups) {
		variants := r.bucketByHash(g.Entries)

		if len(variants) == 1 {
			entries := variants[0].Entries
			plan.Actions = append(plan.Actions, Action{
				APIPath: g.APIPath,
				Keep:    entries[0],
				Remove:  entries[1:],
			})

			continue
		}

		plan.Divergent = append(plan.Divergent, Divergent{
			APIPath:  g.APIPath,
			Variants: variants,
		})
	}

	return plan
}

// Apply executes a plan. With dryRun set, nothing is deleted and the result
// only reports what an apply would remove. Deletion failures are collected
// and do not stop the pass.
func (r *Resolver) Apply(plan Plan, dryRun bool) (Result, error) {
	res := Result{
		Kept:      len(plan.Actions),
		Divergent: len(plan.Divergent),
		DryRun:    dryRun,
	}

	var merr *multierror.Error

	for _, action := range plan.Actions {
		for _, entry := range action.Remove {
			res.Planned++

			if dryRun {
				slog.Debug("would delete duplicate schema",
					slog.String("apiPath", action.APIPath),
					slog.String("source", SourceRef(entry)),
				)

				continue
			}

			store, ok := r.byRoot[entry.Root]
			if !ok {
				merr = multierror.Append(merr, fmt.Errorf("%w: %s", ErrUnknownRoot, entry.Path))

				continue
			}

			err := store.Delete(entry.RelPath)
			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("delete %s: %w", entry.RelPath, err))

				continue
			}

			res.Deleted++

			slog.Info("deleted duplicate schema",
				slog.String("apiPath", action.APIPath),
				slog.String("source", SourceRef(entry)),
				slog.String("keep", SourceRef(action.Keep)),
			)
		}
	}

	return res, merr.ErrorOrNil()
}

// Backfill adds a provenance block naming sourceName and sourceVersion to
// every schema document lacking one, and returns how many documents were
// updated. Existing provenance is never modified, so the operation is
// idempotent.
func (r *Resolver) Backfill(ctx context.Context, sourceName, sourceVersion string) (int, error) {
	count := 0

	var merr *multierror.Error

	for _, store := range r.stores {
		entries, err := store.Scan(ctx)
		if err != nil {
			return count, fmt.Errorf("scan for backfill: %w", err)
		}

		for _, e := range entries {
			added := e.Schema.EnsureProvenance(schema.Provenance{
				SourceName:    sourceName,
				SourceVersion: sourceVersion,
			})
			if !added {
				continue
			}

			_, err := store.Write(e.GVK(), e.Schema)
			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("backfill %s: %w", e.RelPath, err))

				continue
			}

			count++
		}
	}

	return count, merr.ErrorOrNil()
}

// SourceRef renders an entry's source as source@version for reports.
func SourceRef(e catalog.Entry) string {
	return e.Source + "@" + e.SourceVersion
}

// bucketByHash splits entries into content variants. Variants are ordered by
// their best entry so output is deterministic.
func (r *Resolver) bucketByHash(entries []catalog.Entry) []Variant {
	byHash := map[string][]catalog.Entry{}
	for _, e := range entries {
		byHash[e.Hash] = append(byHash[e.Hash], e)
	}

	variants := make([]Variant, 0, len(byHash))
	for hash, hashEntries := range byHash {
		r.sortEntries(hashEntries)
		variants = append(variants, Variant{Hash: hash, Entries: hashEntries})
	}

	slices.SortFunc(variants, func(a, b Variant) int {
		return r.compareEntries(a.Entries[0], b.Entries[0])
	})

	return variants
}

func (r *Resolver) sortEntries(entries []catalog.Entry) {
	slices.SortFunc(entries, r.compareEntries)
}

// compareEntries orders by priority, then source name, source version, and
// absolute path. Everything after priority exists only to break ties
// deterministically.
func (r *Resolver) compareEntries(a, b catalog.Entry) int {
	if c := cmp.Compare(r.table.Priority(a.Source), r.table.Priority(b.Source)); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Source, b.Source); c != 0 {
		return c
	}

	if c := cmp.Compare(a.SourceVersion, b.SourceVersion); c != 0 {
		return c
	}

	return cmp.Compare(a.Path, b.Path)
}
