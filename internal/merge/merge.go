// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/course-engine/pkg/types"
)

// Outcome reports one group's merge result.
type Outcome struct {
	// Merged is false when no member survived validation ("nothing to
	// merge" — not an error).
	Merged bool

	// Pages is the page count of the merged output.
	Pages int

	// Skipped lists members dropped because they could not be read as
	// PDFs.
	Skipped []string
}

// MergeGroup merges the group's members, in natural order, into its output
// file. Members that fail PDF validation are skipped with a warning and do
// not abort the merge. With zero survivors no output is written. Errors are
// reserved for the merge write itself.
func MergeGroup(g Group, w io.Writer) (Outcome, error) {
	var out Outcome

	members := append([]string(nil), g.Members...)
	sort.Slice(members, func(i, j int) bool { return NaturalLess(members[i], members[j]) })

	var survivors []string
	for _, m := range members {
		if err := api.ValidateFile(m, nil); err != nil {
			fmt.Fprintf(w, "  warning: skipping unreadable member %s: %v\n", filepath.Base(m), err)
			out.Skipped = append(out.Skipped, filepath.Base(m))
			continue
		}
		survivors = append(survivors, m)
	}

	if len(survivors) == 0 {
		fmt.Fprintf(w, "  nothing to merge for %s/%s\n", g.Unit, g.Category)
		return out, nil
	}

	if err := api.MergeCreateFile(survivors, g.Output, false, nil); err != nil {
		return out, fmt.Errorf("merging %s/%s: %w", g.Unit, g.Category, err)
	}
	out.Merged = true

	if pages, err := api.PageCountFile(g.Output); err == nil {
		out.Pages = pages
	}
	fmt.Fprintf(w, "  merged %d file(s) into %s (%d pages)\n",
		len(survivors), filepath.Base(g.Output), out.Pages)
	return out, nil
}

// MergeAll discovers every (unit, category) group under cfg.Root and merges
// each. Empty cfg.Categories means every known category. Merges are
// re-derived from scratch on every run; a failed group does not stop the
// rest.
func MergeAll(cfg types.MergeConfig, w io.Writer) error {
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = types.CategoryNames()
	}

	groups, err := Discover(cfg.Root, categories)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(w, "No PDF groups found.")
		return nil
	}

	var failed int
	for _, g := range groups {
		fmt.Fprintf(w, "%s / %s: %d member(s)\n", g.Unit, g.Category, len(g.Members))
		if _, err := MergeGroup(g, w); err != nil {
			fmt.Fprintf(w, "  merge failed: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d group(s) failed to merge", failed)
	}
	return nil
}
