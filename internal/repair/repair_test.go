// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/course-engine/internal/opc"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
</Types>`

	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`

	presentationXML = `<?xml version="1.0"?><p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`

	// presRelsXML carries one good relationship and one broken
	// external-hyperlink entry with an empty target.
	presRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" TargetMode="External" Target=""/>
</Relationships>`
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func validPackage() map[string]string {
	return map[string]string{
		"[Content_Types].xml":  contentTypesXML,
		"_rels/.rels":          rootRelsXML,
		"ppt/presentation.xml": presentationXML,
	}
}

// scratchDirCount counts course-repair scratch directories left in the
// system temp directory.
func scratchDirCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "course-repair-") {
			n++
		}
	}
	return n
}

func TestAttempt_ReserializeWins(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	writeZip(t, input, validPackage())

	repaired, ok := New().Attempt(input)
	if !ok {
		t.Fatal("Attempt() should succeed on a loadable package")
	}
	defer Release(repaired)

	// The first strategy should have produced the artifact.
	if !strings.Contains(filepath.Base(repaired), "repaired_0_") {
		t.Errorf("artifact %q not produced by the reserialize tier", repaired)
	}
	if _, err := opc.Load(repaired); err != nil {
		t.Errorf("repair artifact does not load: %v", err)
	}
}

func TestAttempt_RezipFallback(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	// Valid ZIP but not a loadable package: reserialize declines,
	// rezip accepts.
	writeZip(t, input, map[string]string{"some/file.xml": "<x/>"})

	repaired, ok := New().Attempt(input)
	if !ok {
		t.Fatal("Attempt() should fall back to rezip for a plain ZIP")
	}
	defer Release(repaired)

	if !strings.Contains(filepath.Base(repaired), "repaired_1_") {
		t.Errorf("artifact %q not produced by the rezip tier", repaired)
	}

	// The rewritten archive must be a readable ZIP with the same entry.
	r, err := zip.OpenReader(repaired)
	if err != nil {
		t.Fatalf("repair artifact is not a readable ZIP: %v", err)
	}
	defer r.Close()
	if len(r.File) != 1 || r.File[0].Name != "some/file.xml" {
		t.Errorf("unexpected rezip contents: %v", r.File)
	}
}

func TestAttempt_NotAZip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.pptx")
	if err := os.WriteFile(input, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	before := scratchDirCount(t)
	if repaired, ok := New().Attempt(input); ok {
		t.Fatalf("Attempt() = %q, want failure on non-ZIP input", repaired)
	}
	if after := scratchDirCount(t); after != before {
		t.Errorf("scratch dirs leaked: %d before, %d after", before, after)
	}
}

func TestRelease(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	writeZip(t, input, validPackage())

	repaired, ok := New().Attempt(input)
	if !ok {
		t.Fatal("Attempt() failed")
	}
	scratch := filepath.Dir(repaired)
	Release(repaired)
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("Release() left scratch dir %s behind", scratch)
	}
}

func TestFixRelationships(t *testing.T) {
	dir := t.TempDir()

	t.Run("strips broken hyperlink entries", func(t *testing.T) {
		entries := validPackage()
		entries["ppt/_rels/presentation.xml.rels"] = presRelsXML
		input := filepath.Join(dir, "links.pptx")
		writeZip(t, input, entries)

		output := filepath.Join(dir, "links-fixed.pptx")
		if err := New().fixRelationships(input, output); err != nil {
			t.Fatalf("fixRelationships() error: %v", err)
		}

		pkg, err := opc.Load(output)
		if err != nil {
			t.Fatalf("fixed package does not load: %v", err)
		}
		for _, part := range pkg.Parts {
			if part.Name != "ppt/_rels/presentation.xml.rels" {
				continue
			}
			if strings.Contains(string(part.Data), `Target=""`) {
				t.Error("broken relationship entry survived the repair")
			}
			if !strings.Contains(string(part.Data), "slides/slide1.xml") {
				t.Error("healthy relationship entry was removed")
			}
		}
	})

	t.Run("rejects output that fails validation", func(t *testing.T) {
		// Valid ZIP, but rebuilding it cannot make it a loadable package.
		input := filepath.Join(dir, "nopkg.pptx")
		writeZip(t, input, map[string]string{"readme.txt": "hi"})

		output := filepath.Join(dir, "nopkg-fixed.pptx")
		if err := New().fixRelationships(input, output); err == nil {
			t.Error("fixRelationships() should fail validation for a non-package ZIP")
		}
		if _, err := os.Stat(output); !os.IsNotExist(err) {
			t.Error("rejected output file should be removed")
		}
	})
}
