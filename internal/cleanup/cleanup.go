// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cleanup removes stray non-course files and empty directories left
// behind by the download and conversion stages.
package cleanup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// strayPatterns matches files that are never course material: readmes and
// notes the portal bundles in, OS metadata droppings, and editor backups.
var strayPatterns = []string{
	"README*",
	"*.md",
	"*.txt",
	"Thumbs.db",
	".DS_Store",
	"desktop.ini",
	"*.tmp",
	"*.temp",
	"*~",
}

// Sweep removes stray files matching the unwanted patterns under root, then
// prunes empty directories deepest-first. The catalog directory is left
// alone. It returns the number of files and directories removed.
func Sweep(root string, w io.Writer) (int, error) {
	removed := 0

	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".course-engine") {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
			return nil
		}
		if !stray(d.Name()) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(w, "failed: %s: %v\n", d.Name(), err)
			return nil
		}
		fmt.Fprintf(w, "removed: %s\n", d.Name())
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("sweeping %s: %w", root, err)
	}

	// Deepest first, so a directory emptied by removing its children is
	// itself removable in the same pass.
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			continue
		}
		fmt.Fprintf(w, "removed empty directory: %s\n", filepath.Base(dir))
		removed++
	}

	fmt.Fprintf(w, "Cleanup summary: %d removed\n", removed)
	return removed, nil
}

func stray(name string) bool {
	for _, pattern := range strayPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
