// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sniff classifies downloaded files by their leading bytes. The
// portal labels everything it serves, but the labels are frequently wrong
// (slide decks served as .pdf and so on), so classification works from the
// file content and the saved extension is corrected afterwards.
package sniff

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/course-engine/pkg/types"
)

// headerSize is how much of the file classification inspects. OOXML archives
// place their first local-file header (and with it the internal path of the
// first part) well within this window.
const headerSize = 512

var (
	magicZIP = []byte{0x50, 0x4B, 0x03, 0x04}
	magicPDF = []byte("%PDF")
	magicCFB = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// DefaultConfig leans both ambiguous cases toward the presentation family,
// which dominates this corpus.
func DefaultConfig() types.SnifferConfig {
	return types.SnifferConfig{
		ZIPDefault: types.KindPresentation,
		CFBDefault: types.KindLegacyPresentation,
	}
}

// Classify reads the file header and returns the detected container kind.
// It never fails: any I/O problem yields KindUnknown.
func Classify(path string, cfg types.SnifferConfig) types.ContainerKind {
	f, err := os.Open(path)
	if err != nil {
		return types.KindUnknown
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return types.KindUnknown
	}
	header = header[:n]

	return classifyHeader(header, cfg)
}

// classifyHeader is the pure core of Classify, split out for tests.
func classifyHeader(header []byte, cfg types.SnifferConfig) types.ContainerKind {
	switch {
	case bytes.HasPrefix(header, magicZIP):
		// ZIP container: disambiguate OOXML families by the internal
		// path of the first archive entries.
		switch {
		case bytes.Contains(header, []byte("ppt/")):
			return types.KindPresentation
		case bytes.Contains(header, []byte("word/")):
			return types.KindWordProcessing
		case bytes.Contains(header, []byte("xl/")):
			return types.KindSpreadsheet
		default:
			if cfg.ZIPDefault != types.KindUnknown {
				return cfg.ZIPDefault
			}
			return types.KindPresentation
		}
	case bytes.HasPrefix(header, magicPDF):
		return types.KindPDF
	case bytes.HasPrefix(header, magicCFB):
		// Legacy compound file (ppt/doc/xls). The header alone does not
		// say which; the configured default decides.
		if cfg.CFBDefault != types.KindUnknown {
			return cfg.CFBDefault
		}
		return types.KindLegacyPresentation
	default:
		return types.KindUnknown
	}
}

// Normalize renames path to the canonical extension of the detected kind and
// returns the resulting path. It is idempotent: when the extension already
// matches, or the kind is unknown, the path is returned unchanged. Conversion
// dispatches on extension, so this must run before the file enters the
// conversion stage.
func Normalize(path string, kind types.ContainerKind) (string, error) {
	if kind == types.KindUnknown {
		return path, nil
	}
	want := kind.Ext()
	if strings.EqualFold(filepath.Ext(path), want) {
		return path, nil
	}

	renamed := strings.TrimSuffix(path, filepath.Ext(path)) + want
	if err := os.Rename(path, renamed); err != nil {
		return path, fmt.Errorf("renaming %s to %s: %w", path, renamed, err)
	}
	return renamed, nil
}
