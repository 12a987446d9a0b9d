// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/cleanup"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [root]",
	Short: "Remove stray files and empty directories from a course tree",
	Long: `Cleanup removes files that are never course material (readmes, OS metadata,
editor backups) and prunes directories left empty, deepest first. The catalog
directory is left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "downloads"
		if len(args) == 1 {
			root = args[0]
		}
		_, err := cleanup.Sweep(root, os.Stdout)
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
