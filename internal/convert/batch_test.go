// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/course-engine/pkg/types"
)

func defaultTestConfig() types.ConversionConfig {
	return types.ConversionConfig{BackendTimeout: time.Minute}
}

// memRecorder accumulates conversion outcomes.
type memRecorder struct {
	records map[string]string
}

func (m *memRecorder) RecordConversion(src, label string, ok bool) error {
	if m.records == nil {
		m.records = make(map[string]string)
	}
	m.records[filepath.Base(src)] = label
	return nil
}

func TestConvertTree(t *testing.T) {
	root := t.TempDir()
	resDir := filepath.Join(root, "Unit_1", "01_Lecture", "Slides")
	if err := os.MkdirAll(resDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// 1.Lecture.pptx converts directly; 2.Lecture.pptx only after
	// repair; 3.Lecture.docx is beyond saving (not even a ZIP).
	writePlainZip(t, filepath.Join(resDir, "1.Lecture.pptx"))
	writePlainZip(t, filepath.Join(resDir, "2.Lecture.pptx"))
	if err := os.WriteFile(filepath.Join(resDir, "3.Lecture.docx"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	picky := &fakeBackend{
		name:      "picky",
		available: true,
		convert: func(in, out string) error {
			base := filepath.Base(in)
			switch {
			case strings.HasPrefix(base, "1."):
				return writePDF(in, out)
			case strings.Contains(base, "repaired_"):
				return writePDF(in, out)
			default:
				return errors.New("cannot open container")
			}
		},
	}

	rec := &memRecorder{}
	var log bytes.Buffer
	stats, err := ConvertTree(newTestEngine(picky), root, rec, &log)
	if err != nil {
		t.Fatalf("ConvertTree() error: %v", err)
	}

	if stats.Succeeded != 1 || stats.Repaired != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 1 succeeded, 1 repaired, 1 failed", stats)
	}
	if len(stats.FailedFiles) != 1 || stats.FailedFiles[0] != "3.Lecture.docx" {
		t.Errorf("FailedFiles = %v", stats.FailedFiles)
	}

	// Converted sources replaced by PDFs, failed source left in place.
	for _, name := range []string{"1.Lecture.pdf", "2.Lecture.pdf"} {
		if _, err := os.Stat(filepath.Join(resDir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
	for _, name := range []string{"1.Lecture.pptx", "2.Lecture.pptx"} {
		if _, err := os.Stat(filepath.Join(resDir, name)); !os.IsNotExist(err) {
			t.Errorf("source %s should be deleted", name)
		}
	}
	if _, err := os.Stat(filepath.Join(resDir, "3.Lecture.docx")); err != nil {
		t.Errorf("failed source should stay in place: %v", err)
	}

	if got := rec.records["2.Lecture.pptx"]; !strings.Contains(got, "(repaired)") {
		t.Errorf("recorded label for repaired file = %q", got)
	}
	if !strings.Contains(log.String(), "Batch summary: 1 converted, 1 repaired, 1 failed (total: 3)") {
		t.Errorf("summary line missing from log:\n%s", log.String())
	}
}

func TestConvertTree_EmptyTree(t *testing.T) {
	var log bytes.Buffer
	stats, err := ConvertTree(newTestEngine(), t.TempDir(), nil, &log)
	if err != nil {
		t.Fatalf("ConvertTree() error: %v", err)
	}
	if stats.Total() != 0 {
		t.Errorf("stats = %+v, want empty", stats)
	}
	if !strings.Contains(log.String(), "No office documents") {
		t.Error("expected a nothing-to-do message")
	}
}

func TestConvertTree_MissingRoot(t *testing.T) {
	var log bytes.Buffer
	_, err := ConvertTree(newTestEngine(), filepath.Join(t.TempDir(), "nope"), nil, &log)
	if err == nil {
		t.Error("ConvertTree() should fail on an unwalkable root")
	}
}

func TestPrintFailed_Caps(t *testing.T) {
	stats := types.ConversionStats{
		Failed:      4,
		FailedFiles: []string{"a.pptx", "b.pptx", "c.pptx", "d.pptx"},
	}

	var out bytes.Buffer
	PrintFailed(stats, 2, &out)

	s := out.String()
	if !strings.Contains(s, "a.pptx") || !strings.Contains(s, "b.pptx") {
		t.Error("first entries missing")
	}
	if strings.Contains(s, "c.pptx") {
		t.Error("entries beyond the cap should be elided")
	}
	if !strings.Contains(s, "and 2 more") {
		t.Errorf("elision note missing:\n%s", s)
	}
}
