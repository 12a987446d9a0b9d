// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/catalog"
	"github.com/pdiddy/course-engine/internal/convert"
	"github.com/pdiddy/course-engine/pkg/types"
)

const defaultMaxFailedShown = 20

var convertCmd = &cobra.Command{
	Use:   "convert [root]",
	Short: "Convert downloaded office documents to PDF",
	Long: `Convert walks a downloaded course tree and converts every office document
(.pptx, .ppt, .docx, .doc) to PDF next to the source. Corrupt files go through
the repair cascade before the converters retry. Sources are deleted after a
successful conversion; failed sources are kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Duration("backend-timeout", 0, "per-invocation timeout for external converters (default 2m)")
	convertCmd.Flags().Int("max-failed", defaultMaxFailedShown, "maximum failed filenames listed in the summary")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	root := "downloads"
	if len(args) == 1 {
		root = args[0]
	}

	backendTimeout, _ := cmd.Flags().GetDuration("backend-timeout")
	if backendTimeout == 0 {
		backendTimeout = 2 * time.Minute
	}
	maxFailed, _ := cmd.Flags().GetInt("max-failed")

	cfg := types.ConversionConfig{
		Root:           root,
		BackendTimeout: backendTimeout,
		MaxFailedShown: maxFailed,
	}

	var rec convert.Recorder
	store, err := catalog.Open(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: catalog unavailable: %v\n", err)
	} else {
		defer store.Close()
		rec = store
	}

	engine := convert.NewEngine(cfg)
	stats, err := convert.ConvertTree(engine, root, rec, os.Stdout)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.ExportYAML(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: export.yaml write failed: %v\n", err)
		}
	}

	if stats.HasFailures() {
		convert.PrintFailed(stats, cfg.MaxFailedShown, os.Stdout)
		return fmt.Errorf("%d file(s) failed conversion", stats.Failed)
	}
	return nil
}
