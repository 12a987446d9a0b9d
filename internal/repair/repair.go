// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repair produces best-effort repaired copies of damaged OOXML
// containers. Strategies run in fixed priority order and the first one that
// yields a non-empty output wins. Acceptance does not guarantee the copy
// converts downstream; it only means the container is structurally sounder
// than the input.
package repair

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/course-engine/internal/opc"
)

// brokenHyperlinkRel matches relationship entries for external hyperlinks
// with an empty target. Some upstream tooling emits these, and strict
// consumers refuse to open the package until they are gone.
var brokenHyperlinkRel = regexp.MustCompile(
	`<Relationship\b[^>]*Type="[^"]*/hyperlink"[^>]*TargetMode="External"[^>]*Target=""[^>]*/>`)

type strategy struct {
	name string
	run  func(input, output string) error
}

// Engine tries repair strategies in order. The zero value is not usable;
// construct with New.
type Engine struct {
	strategies []strategy
}

// New returns an Engine with the standard strategy order: reserialize the
// package model, re-archive the raw ZIP, then strip broken relationship
// entries.
func New() *Engine {
	e := &Engine{}
	e.strategies = []strategy{
		{"reserialize", e.reserialize},
		{"rezip", e.rezip},
		{"relationships", e.fixRelationships},
	}
	return e
}

// Attempt runs the strategies against path and returns the path of the
// first accepted repair artifact. The artifact lives in a scratch directory
// owned by the caller, who must remove it (via Release) once the artifact
// has been consumed. On failure all scratch state is removed and ok is
// false.
func (e *Engine) Attempt(path string) (repaired string, ok bool) {
	scratch, err := os.MkdirTemp("", "course-repair-")
	if err != nil {
		return "", false
	}

	for i, s := range e.strategies {
		output := filepath.Join(scratch, fmt.Sprintf("repaired_%d_%s", i, filepath.Base(path)))
		if err := s.run(path, output); err != nil {
			os.Remove(output)
			continue
		}
		if info, err := os.Stat(output); err == nil && info.Size() > 0 {
			return output, true
		}
		os.Remove(output)
	}

	os.RemoveAll(scratch)
	return "", false
}

// Release removes the scratch directory holding a repair artifact returned
// by Attempt.
func Release(repaired string) {
	if repaired != "" {
		os.RemoveAll(filepath.Dir(repaired))
	}
}

// reserialize loads the package model and writes it back out, rebuilding
// all archive records. Repairs inconsistencies that only manifest on a
// structured load.
func (e *Engine) reserialize(input, output string) error {
	return opc.Reserialize(input, output)
}

// rezip extracts the raw ZIP and rewrites a fresh deflated archive from the
// extracted tree. Fixes corrupted central-directory records. Declines when
// the input is not a readable ZIP at all.
func (e *Engine) rezip(input, output string) error {
	tmp, err := os.MkdirTemp(filepath.Dir(output), "rezip-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	if err := extractZip(input, tmp); err != nil {
		return err
	}
	return archiveTree(tmp, output)
}

// fixRelationships extracts the package, textually strips broken
// external-hyperlink relationship entries from every relationship part,
// re-archives, and validates the result by loading it as a package. A
// produced file that fails validation is still a strategy failure.
func (e *Engine) fixRelationships(input, output string) error {
	tmp, err := os.MkdirTemp(filepath.Dir(output), "relfix-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	if err := extractZip(input, tmp); err != nil {
		return err
	}

	err = filepath.WalkDir(tmp, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".rels") {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		cleaned := brokenHyperlinkRel.ReplaceAll(data, nil)
		if bytes.Equal(cleaned, data) {
			return nil
		}
		return os.WriteFile(path, cleaned, 0o644)
	})
	if err != nil {
		return err
	}

	if err := archiveTree(tmp, output); err != nil {
		return err
	}

	if _, err := opc.Load(output); err != nil {
		os.Remove(output)
		return fmt.Errorf("repaired package fails to load: %w", err)
	}
	return nil
}

// extractZip unpacks src into destDir.
func extractZip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		name := filepath.Clean(f.Name)
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			continue
		}
		target := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// archiveTree writes every file under srcDir into a fresh deflated ZIP at
// dest, with entry names relative to srcDir using forward slashes.
func archiveTree(srcDir, dest string) error {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	err := filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		fw, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = fw.Write(data)
		return err
	})
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return os.WriteFile(dest, buf.Bytes(), 0o644)
}
