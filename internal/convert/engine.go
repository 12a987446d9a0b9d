// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert produces PDFs from downloaded course documents. Each
// source family (presentation, word-processing) has an ordered cascade of
// backends tried until one succeeds; when the whole cascade fails the
// engine repairs the container once and retries the cascade against the
// repaired copy. Corruption is common in this corpus — documents are
// produced and re-saved by varied upstream tooling — but repair is
// expensive, so it runs once and only after the direct cascade is
// exhausted.
package convert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/course-engine/internal/backend"
	"github.com/pdiddy/course-engine/internal/repair"
	"github.com/pdiddy/course-engine/pkg/types"
)

// LabelNone is the backend label reported when no tier succeeded.
const LabelNone = "none"

// repairedSuffix marks conversions that needed the repair tier.
const repairedSuffix = " (repaired)"

// Engine holds the per-family backend cascades.
type Engine struct {
	presentation []backend.Backend
	word         []backend.Backend
	repairer     *repair.Engine
}

// NewEngine builds the standard cascades: native-application automation
// first (best fidelity when present), then any injected library backends
// for the presentation family, then the headless CLI, then the containerized
// CLI for hosts with no Office install at all. Extra backends slot between
// automation and the CLI in the presentation cascade.
func NewEngine(cfg types.ConversionConfig, extra ...backend.Backend) *Engine {
	soffice := backend.NewSoffice(cfg.BackendTimeout)
	contained := backend.NewContainerSoffice("")

	pres := []backend.Backend{backend.NewPowerPoint(cfg.BackendTimeout)}
	pres = append(pres, extra...)
	pres = append(pres, soffice, contained)

	return &Engine{
		presentation: pres,
		word:         []backend.Backend{backend.NewWord(cfg.BackendTimeout), soffice, contained},
		repairer:     repair.New(),
	}
}

// cascadeFor selects the backend list by the input's extension. The
// extension must already be normalized (see sniff.Normalize); dispatch is
// purely extension-based.
func (e *Engine) cascadeFor(input string) []backend.Backend {
	switch strings.ToLower(filepath.Ext(input)) {
	case ".pptx", ".ppt":
		return e.presentation
	case ".docx", ".doc":
		return e.word
	default:
		return nil
	}
}

// ToPDF converts input to a PDF at output. It returns whether a backend
// succeeded and the label of the winning backend — suffixed with
// "(repaired)" when only the repair tier saved the file, or "none" when
// everything failed. Backend errors never propagate.
func (e *Engine) ToPDF(input, output string) (bool, string) {
	cascade := e.cascadeFor(input)
	if len(cascade) == 0 {
		return false, LabelNone
	}

	if label, ok := runCascade(cascade, input, output); ok {
		return true, label
	}

	repaired, ok := e.repairer.Attempt(input)
	if !ok {
		return false, LabelNone
	}
	defer repair.Release(repaired)

	if label, ok := runCascade(cascade, repaired, output); ok {
		return true, label + repairedSuffix
	}
	return false, LabelNone
}

// runCascade tries each available backend in order and returns the name of
// the first one that leaves a non-empty output behind.
func runCascade(cascade []backend.Backend, input, output string) (string, bool) {
	for _, b := range cascade {
		if !b.Available() {
			continue
		}
		if err := b.Convert(input, output); err != nil {
			continue
		}
		if info, err := os.Stat(output); err == nil && info.Size() > 0 {
			return b.Name(), true
		}
		os.Remove(output)
	}
	return "", false
}
