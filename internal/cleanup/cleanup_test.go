// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSweep(t *testing.T) {
	root := t.TempDir()

	keep := []string{
		filepath.Join(root, "Unit_1", "01_Intro", "Slides", "1.Intro.pdf"),
		filepath.Join(root, "Unit_1", "Unit_1_Slides_Merged.pdf"),
	}
	stray := []string{
		filepath.Join(root, "README.md"),
		filepath.Join(root, "Unit_1", "notes.txt"),
		filepath.Join(root, "Unit_1", "01_Intro", "Thumbs.db"),
		filepath.Join(root, "Unit_1", "01_Intro", ".DS_Store"),
		filepath.Join(root, "Unit_1", "01_Intro", "draft.tmp"),
		filepath.Join(root, "Unit_1", "01_Intro", "old~"),
	}
	for _, p := range append(append([]string{}, keep...), stray...) {
		touch(t, p)
	}
	// A directory that holds only stray files becomes empty and is pruned.
	touch(t, filepath.Join(root, "Unit_2", "02_Empty", "desktop.ini"))
	// The catalog directory is never touched.
	touch(t, filepath.Join(root, ".course-engine", "catalog.db"))
	touch(t, filepath.Join(root, ".course-engine", "export.yaml"))

	var out strings.Builder
	removed, err := Sweep(root, &out)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	for _, p := range keep {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("kept file missing: %s", p)
		}
	}
	for _, p := range stray {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("stray file survived: %s", p)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "Unit_2")); !os.IsNotExist(err) {
		t.Errorf("emptied directory tree survived")
	}
	if _, err := os.Stat(filepath.Join(root, ".course-engine", "catalog.db")); err != nil {
		t.Errorf("catalog directory was touched: %v", err)
	}

	// 7 stray files + Unit_2/02_Empty + Unit_2.
	if removed != 9 {
		t.Errorf("removed = %d, want 9\noutput:\n%s", removed, out.String())
	}
	if !strings.Contains(out.String(), "Cleanup summary: 9 removed") {
		t.Errorf("missing summary line:\n%s", out.String())
	}
}

func TestSweep_NothingToDo(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Unit_1", "Slides", "1.Intro.pdf"))

	var out strings.Builder
	removed, err := Sweep(root, &out)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0\n%s", removed, out.String())
	}
}

func TestSweep_MissingRoot(t *testing.T) {
	var out strings.Builder
	if _, err := Sweep(filepath.Join(t.TempDir(), "absent"), &out); err == nil {
		t.Fatal("Sweep on missing root: want error")
	}
}

func TestStray(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"README", true},
		{"README.txt", true},
		{"guide.md", true},
		{"Thumbs.db", true},
		{"old~", true},
		{"1.Intro.pdf", false},
		{"2.Lecture.pptx", false},
		{"Unit_1_Slides_Merged.pdf", false},
	}
	for _, tt := range tests {
		if got := stray(tt.name); got != tt.want {
			t.Errorf("stray(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
