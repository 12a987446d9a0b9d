// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/course-engine/internal/backend"
	"github.com/pdiddy/course-engine/internal/repair"
)

// fakeBackend is a scriptable conversion backend.
type fakeBackend struct {
	name      string
	available bool
	convert   func(input, output string) error
	calls     int
}

func (f *fakeBackend) Name() string    { return f.name }
func (f *fakeBackend) Available() bool { return f.available }
func (f *fakeBackend) Convert(input, output string) error {
	f.calls++
	if f.convert == nil {
		return errors.New("no convert behavior")
	}
	return f.convert(input, output)
}

// writePDF simulates a successful backend conversion.
func writePDF(input, output string) error {
	return os.WriteFile(output, []byte("%PDF-1.4 fake"), 0o644)
}

// newTestEngine wires fakes into both cascades.
func newTestEngine(backends ...backend.Backend) *Engine {
	return &Engine{
		presentation: backends,
		word:         backends,
		repairer:     repair.New(),
	}
}

// writePlainZip writes a minimal valid ZIP (repairable by re-archiving,
// not loadable as a package).
func writePlainZip(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("content.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("<x/>")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestToPDF_FirstBackendWins(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	output := filepath.Join(dir, "deck.pdf")
	writePlainZip(t, input)

	first := &fakeBackend{name: "first", available: true, convert: writePDF}
	second := &fakeBackend{name: "second", available: true, convert: writePDF}

	ok, label := newTestEngine(first, second).ToPDF(input, output)
	if !ok || label != "first" {
		t.Fatalf("ToPDF() = (%v, %q), want (true, first)", ok, label)
	}
	if second.calls != 0 {
		t.Error("cascade did not short-circuit on first success")
	}
}

func TestToPDF_SkipsUnavailable(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	output := filepath.Join(dir, "deck.pdf")
	writePlainZip(t, input)

	absent := &fakeBackend{name: "absent", available: false}
	present := &fakeBackend{name: "present", available: true, convert: writePDF}

	ok, label := newTestEngine(absent, present).ToPDF(input, output)
	if !ok || label != "present" {
		t.Fatalf("ToPDF() = (%v, %q), want (true, present)", ok, label)
	}
	if absent.calls != 0 {
		t.Error("unavailable backend was invoked")
	}
}

func TestToPDF_AllUnavailable(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	writePlainZip(t, input)

	ok, label := newTestEngine(
		&fakeBackend{name: "a"},
		&fakeBackend{name: "b"},
	).ToPDF(input, filepath.Join(dir, "deck.pdf"))

	if ok || label != LabelNone {
		t.Fatalf("ToPDF() = (%v, %q), want (false, none)", ok, label)
	}
}

func TestToPDF_RepairedPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	output := filepath.Join(dir, "deck.pdf")
	writePlainZip(t, input)

	// Fails against the original file, succeeds against any repair
	// artifact.
	picky := &fakeBackend{
		name:      "picky",
		available: true,
		convert: func(in, out string) error {
			if !strings.Contains(filepath.Base(in), "repaired_") {
				return errors.New("cannot open container")
			}
			return writePDF(in, out)
		},
	}

	ok, label := newTestEngine(picky).ToPDF(input, output)
	if !ok {
		t.Fatal("ToPDF() should succeed via the repair tier")
	}
	if !strings.Contains(label, "(repaired)") {
		t.Errorf("label = %q, want a (repaired) marker", label)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output missing: %v", err)
	}

	// The repair scratch dir must be gone.
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "course-repair-") {
			t.Errorf("repair scratch dir %s leaked", e.Name())
		}
	}
}

func TestToPDF_UnrepairableInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	if err := os.WriteFile(input, []byte("not a container"), 0o644); err != nil {
		t.Fatal(err)
	}

	failing := &fakeBackend{
		name:      "failing",
		available: true,
		convert:   func(string, string) error { return errors.New("nope") },
	}

	ok, label := newTestEngine(failing).ToPDF(input, filepath.Join(dir, "deck.pdf"))
	if ok || label != LabelNone {
		t.Fatalf("ToPDF() = (%v, %q), want (false, none)", ok, label)
	}
}

func TestToPDF_EmptyOutputIsFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	output := filepath.Join(dir, "deck.pdf")
	writePlainZip(t, input)

	empty := &fakeBackend{
		name:      "empty",
		available: true,
		convert: func(in, out string) error {
			return os.WriteFile(out, nil, 0o644)
		},
	}
	good := &fakeBackend{name: "good", available: true, convert: writePDF}

	ok, label := newTestEngine(empty, good).ToPDF(input, output)
	if !ok || label != "good" {
		t.Fatalf("ToPDF() = (%v, %q), want fallthrough to good", ok, label)
	}
}

func TestToPDF_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(defaultTestConfig())
	ok, label := e.ToPDF(input, filepath.Join(dir, "notes.pdf"))
	if ok || label != LabelNone {
		t.Fatalf("ToPDF() = (%v, %q), want (false, none)", ok, label)
	}
}
