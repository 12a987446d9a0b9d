// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/merge"
	"github.com/pdiddy/course-engine/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [root]",
	Short: "Merge converted PDFs into one PDF per unit and category",
	Long: `Merge scans Unit_<n> directories under the course root and produces one
merged PDF per unit and resource category, named Unit_<n>_<category>_Merged.pdf.
Members are ordered naturally (2 before 10) across the unit's classes; corrupt
members are skipped with a warning.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringSlice("categories", nil, "resource categories to merge (default: all)")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	root := "downloads"
	if len(args) == 1 {
		root = args[0]
	}

	categories, _ := cmd.Flags().GetStringSlice("categories")
	return merge.MergeAll(types.MergeConfig{Root: root, Categories: categories}, os.Stdout)
}
