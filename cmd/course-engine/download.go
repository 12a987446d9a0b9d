// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/catalog"
	"github.com/pdiddy/course-engine/internal/portal"
	"github.com/pdiddy/course-engine/internal/sniff"
	"github.com/pdiddy/course-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "course-engine/0.1"
	defaultBaseURL   = "https://www.pesuacademy.com/Academy"
)

var downloadCmd = &cobra.Command{
	Use:   "download <course-code>",
	Short: "Download course documents from the portal",
	Long: `Download logs into the portal, finds the course matching the given subject
code, and downloads the selected units and resource categories into
downloads/<course-code>/Unit_<n>/<class>/<category>/. File extensions are
corrected from magic bytes after each download; empty files are discarded.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().IntSlice("units", nil, "1-based unit numbers to download (default: all)")
	downloadCmd.Flags().StringSlice("categories", nil, "resource categories to download (default: all)")
	downloadCmd.Flags().String("downloads-dir", "downloads", "base directory for downloaded courses")
	downloadCmd.Flags().String("base-url", defaultBaseURL, "portal base URL")
	downloadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	downloadCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	downloadCmd.Flags().String("username", "", "portal username (default: .secrets/portal-username)")
	downloadCmd.Flags().String("password", "", "portal password (default: .secrets/portal-password)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	courseCode := args[0]

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	baseURL, _ := cmd.Flags().GetString("base-url")
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	cfg := types.PortalConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		BaseURL:       baseURL,
		Username:      secretDefault("portal-username", username),
		Password:      secretDefault("portal-password", password),
		DownloadDelay: delay,
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

	course, err := findCourse(ctx, client, courseCode)
	if err != nil {
		return err
	}
	fmt.Printf("Course: %s\n", course.Name)

	units, _ := cmd.Flags().GetIntSlice("units")
	if len(units) == 0 {
		all, err := client.Units(ctx, course.ID)
		if err != nil {
			return fmt.Errorf("listing units: %w", err)
		}
		for i := range all {
			units = append(units, i+1)
		}
	}

	categories, _ := cmd.Flags().GetStringSlice("categories")
	categoryIDs, err := resolveCategories(categories)
	if err != nil {
		return err
	}

	downloadsDir, _ := cmd.Flags().GetString("downloads-dir")
	baseDir := filepath.Join(downloadsDir, course.Code)

	// The catalog is advisory: a failure to open it degrades to a warning.
	var rec portal.Recorder
	store, err := catalog.Open(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: catalog unavailable: %v\n", err)
	} else {
		defer store.Close()
		rec = store
	}

	d := portal.NewDownloader(client, sniff.DefaultConfig(), rec, os.Stdout)
	n, err := d.DownloadCourse(ctx, course, units, categoryIDs, baseDir)
	if err != nil {
		return err
	}
	if store != nil {
		if err := store.ExportYAML(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: export.yaml write failed: %v\n", err)
		}
	}
	if n == 0 {
		return fmt.Errorf("no files downloaded")
	}
	return nil
}

func findCourse(ctx context.Context, client *portal.Client, code string) (types.Course, error) {
	courses, err := client.Courses(ctx)
	if err != nil {
		return types.Course{}, fmt.Errorf("listing courses: %w", err)
	}
	for _, c := range courses {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return types.Course{}, fmt.Errorf("course %q not found (have %d courses; run 'course-engine courses' to list)", code, len(courses))
}

// resolveCategories maps category names (or raw portal ids) to portal ids.
// Empty input selects every known category.
func resolveCategories(names []string) ([]string, error) {
	if len(names) == 0 {
		ids := make([]string, 0, len(types.Categories))
		for id := range types.Categories {
			ids = append(ids, id)
		}
		// Map order is random; ids are single digits so a string sort works.
		sort.Strings(ids)
		return ids, nil
	}

	byName := make(map[string]string, len(types.Categories))
	for id, name := range types.Categories {
		byName[strings.ToLower(name)] = id
	}

	ids := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := types.Categories[n]; ok {
			ids = append(ids, n)
			continue
		}
		id, ok := byName[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("unknown category %q (known: %s)", n, strings.Join(types.CategoryNames(), ", "))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
