package dedupe

import (
	"fmt"
	"strings"
)

// FormatPlan renders a plan for terminal output. With dryRun set, removal
// lines read WOULD DELETE and a banner notes that nothing was modified.
func FormatPlan(plan Plan, dryRun bool) string {
	if len(plan.Actions) == 0 && len(plan.Divergent) == 0 {
		return "No duplicates to process.\n"
	}

	verb := "DELETE"
	if dryRun {
		verb = "WOULD DELETE"
	}

	var b strings.Builder

	for _, action := range plan.Actions {
		fmt.Fprintf(&b, "%s:\n", action.APIPath)
		fmt.Fprintf(&b, "  KEEP: %s\n", SourceRef(action.Keep))

		for _, e := range action.Remove {
			fmt.Fprintf(&b, "  %s: %s\n", verb, SourceRef(e))
		}
	}

	for _, d := range plan.Divergent {
		fmt.Fprintf(&b, "%s: %d content variants (keeping all)\n", d.APIPath, len(d.Variants))
	}

	if dryRun {
		b.WriteString("\n[DRY RUN - no files modified. Use --execute to apply changes]\n")
	}

	return b.String()
}

// FormatReport renders duplicate statistics for the whole catalog, listing
// the contributing sources per content variant.
func (r *Resolver) FormatReport(groups []Group) string {
	total := 0
	for _, g := range groups {
		total += len(g.Entries)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Total schema files: %d\n", total)
	fmt.Fprintf(&b, "Unique API paths: %d\n", len(groups))

	dups := Duplicates(groups)
	if len(dups) == 0 {
		b.WriteString("\nNo duplicates found!\n")

		return b.String()
	}

	fmt.Fprintf(&b, "\nDuplicates found: %d API paths\n\n", len(dups))

	for _, g := range dups {
		fmt.Fprintf(&b, "  %s:\n", g.APIPath)

		variants := r.bucketByHash(g.Entries)
		if len(variants) == 1 {
			fmt.Fprintf(&b, "    IDENTICAL content from %d sources:\n", len(g.Entries))
		} else {
			fmt.Fprintf(&b, "    DIFFERENT content (%d variants):\n", len(variants))
		}

		for _, v := range variants {
			refs := make([]string, 0, len(v.Entries))
			for _, e := range v.Entries {
				refs = append(refs, SourceRef(e))
			}

			fmt.Fprintf(&b, "      [%s] %s\n", v.Hash, strings.Join(refs, ", "))
		}
	}

	return b.String()
}
