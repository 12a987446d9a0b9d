// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Group is the set of PDFs belonging to one (unit, category) pair, plus
// where their merged output goes. Discovery and merging are decoupled so
// the merge algorithm can be exercised against synthetic groups.
type Group struct {
	// Unit is the unit directory name (e.g. "Unit_1").
	Unit string

	// Category is the resource category (e.g. "Slides").
	Category string

	// Members are the member PDF paths, in natural order.
	Members []string

	// Output is the target merged-PDF path.
	Output string
}

// Discover scans the layout convention Unit_<n>/<class>/<category>/*.pdf
// under root and returns one Group per (unit, category) combination that
// has at least one member. Groups reflect the directory state at call
// time; nothing is cached across runs.
func Discover(root string, categories []string) ([]Group, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var unitDirs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "Unit_") {
			unitDirs = append(unitDirs, e.Name())
		}
	}
	sort.Slice(unitDirs, func(i, j int) bool { return NaturalLess(unitDirs[i], unitDirs[j]) })

	var groups []Group
	for _, unit := range unitDirs {
		unitPath := filepath.Join(root, unit)
		classEntries, err := os.ReadDir(unitPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", unitPath, err)
		}

		var classDirs []string
		for _, e := range classEntries {
			if e.IsDir() {
				classDirs = append(classDirs, e.Name())
			}
		}
		sort.Slice(classDirs, func(i, j int) bool { return NaturalLess(classDirs[i], classDirs[j]) })

		for _, category := range categories {
			var members []string
			for _, class := range classDirs {
				catDir := filepath.Join(unitPath, class, category)
				pdfs, err := filepath.Glob(filepath.Join(catDir, "*.pdf"))
				if err != nil {
					return nil, err
				}
				sort.Slice(pdfs, func(i, j int) bool {
					return NaturalLess(filepath.Base(pdfs[i]), filepath.Base(pdfs[j]))
				})
				members = append(members, pdfs...)
			}
			if len(members) == 0 {
				continue
			}
			groups = append(groups, Group{
				Unit:     unit,
				Category: category,
				Members:  members,
				Output:   filepath.Join(unitPath, fmt.Sprintf("%s_%s_Merged.pdf", unit, category)),
			})
		}
	}
	return groups, nil
}
