// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/catalog"
	"github.com/pdiddy/course-engine/internal/portal"
	"github.com/pdiddy/course-engine/pkg/types"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List courses available on the portal",
	Long: `Courses logs into the portal and lists every course the account can see,
with the subject code used by the download command. With --local it instead
summarizes what has already been downloaded into a course tree, from the
catalog database.`,
	RunE: runCourses,
}

func init() {
	coursesCmd.Flags().String("local", "", "summarize the catalog of a downloaded course tree instead of querying the portal")
	coursesCmd.Flags().String("base-url", defaultBaseURL, "portal base URL")
	coursesCmd.Flags().String("username", "", "portal username (default: .secrets/portal-username)")
	coursesCmd.Flags().String("password", "", "portal password (default: .secrets/portal-password)")

	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, args []string) error {
	if local, _ := cmd.Flags().GetString("local"); local != "" {
		return printLocalSummary(local)
	}

	baseURL, _ := cmd.Flags().GetString("base-url")
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	cfg := types.PortalConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		BaseURL:  baseURL,
		Username: secretDefault("portal-username", username),
		Password: secretDefault("portal-password", password),
	}
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("portal credentials required: pass --username/--password or create .secrets/portal-username and .secrets/portal-password")
	}

	client, err := portal.New(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := client.Login(ctx); err != nil {
		return err
	}

	courses, err := client.Courses(ctx)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		fmt.Println("No courses found")
		return nil
	}
	for _, c := range courses {
		fmt.Printf("%-14s %s\n", c.Code, c.Name)
	}
	return nil
}

func printLocalSummary(root string) error {
	store, err := catalog.Open(root)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.Summaries()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("Catalog is empty")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-12s %8s %12s\n", "COURSE", "FILES", "BYTES")
	for _, s := range summaries {
		fmt.Fprintf(os.Stdout, "%-12s %8d %12d\n", s.CourseID, s.Files, s.Bytes)
	}
	return nil
}
