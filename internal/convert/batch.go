// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/course-engine/pkg/types"
)

// officeExts are the source extensions the batch stage picks up, legacy and
// OOXML variants of both families.
var officeExts = map[string]bool{
	".ppt":  true,
	".pptx": true,
	".doc":  true,
	".docx": true,
}

// Recorder receives per-file conversion outcomes. The catalog implements
// it; a nil Recorder disables recording.
type Recorder interface {
	RecordConversion(sourcePath, label string, ok bool) error
}

// ConvertTree converts every office document under root to a sibling PDF,
// printing per-file status lines to w. Successfully
// converted sources are deleted; failures stay in place for manual
// intervention and never abort the batch. The returned error is reserved
// for environment-level problems (an unwalkable root).
func ConvertTree(e *Engine, root string, rec Recorder, w io.Writer) (types.ConversionStats, error) {
	var stats types.ConversionStats

	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && officeExts[strings.ToLower(filepath.Ext(path))] {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walking %s: %w", root, err)
	}

	if len(sources) == 0 {
		fmt.Fprintln(w, "No office documents to convert.")
		return stats, nil
	}

	for i, src := range sources {
		base := filepath.Base(src)
		output := strings.TrimSuffix(src, filepath.Ext(src)) + ".pdf"
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(sources), base)

		ok, label := e.ToPDF(src, output)
		if rec != nil {
			if err := rec.RecordConversion(src, label, ok); err != nil {
				fmt.Fprintf(w, "  warning: recording outcome: %v\n", err)
			}
		}

		if !ok {
			fmt.Fprintf(w, "  failed: no conversion backend succeeded\n")
			stats.Failed++
			stats.FailedFiles = append(stats.FailedFiles, base)
			continue
		}

		if strings.HasSuffix(label, repairedSuffix) {
			stats.Repaired++
		} else {
			stats.Succeeded++
		}
		fmt.Fprintf(w, "  converted: %s (%s)\n", filepath.Base(output), label)

		// Source is superseded by its PDF.
		if err := os.Remove(src); err != nil {
			fmt.Fprintf(w, "  warning: could not remove source: %v\n", err)
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d repaired, %d failed (total: %d)\n",
		stats.Succeeded, stats.Repaired, stats.Failed, stats.Total())
	return stats, nil
}

// PrintFailed writes the capped list of failed filenames.
func PrintFailed(stats types.ConversionStats, max int, w io.Writer) {
	if len(stats.FailedFiles) == 0 {
		return
	}
	if max <= 0 {
		max = 10
	}
	fmt.Fprintln(w, "Failed files:")
	for i, name := range stats.FailedFiles {
		if i == max {
			fmt.Fprintf(w, "  ... and %d more\n", len(stats.FailedFiles)-max)
			break
		}
		fmt.Fprintf(w, "  - %s\n", name)
	}
}
