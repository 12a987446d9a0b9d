//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// run executes the built CLI binary with the given arguments.
func run(args ...string) error {
	bin := filepath.Join(binDir, binName)
	if _, err := os.Stat(bin); err != nil {
		return fmt.Errorf("%s not found; run 'mage build' first", bin)
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Download fetches a course from the portal. Pass the subject code via
// the COURSE environment variable.
func Download() error {
	course := os.Getenv("COURSE")
	if course == "" {
		return fmt.Errorf("set COURSE to the subject code to download")
	}
	return run("download", course)
}

// Convert converts every office document under downloads/ to PDF.
func Convert() error {
	return run("convert", "downloads")
}

// Merge produces one merged PDF per unit and category under downloads/.
func Merge() error {
	return run("merge", "downloads")
}

// Cleanup removes stray files and empty directories under downloads/.
func Cleanup() error {
	return run("cleanup", "downloads")
}
