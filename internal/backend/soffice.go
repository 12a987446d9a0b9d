// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// sofficeProcs are the process names LibreOffice leaves behind.
var sofficeProcs = []string{"soffice.bin", "soffice.exe", "soffice"}

// sofficePaths lists well-known install locations probed when the binary is
// not on PATH.
func sofficePaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	case "darwin":
		return []string{"/Applications/LibreOffice.app/Contents/MacOS/soffice"}
	default:
		return []string{"/usr/bin/soffice", "/usr/local/bin/soffice", "/opt/libreoffice/program/soffice"}
	}
}

// Soffice converts documents through the headless LibreOffice CLI. Works
// for both the presentation and word-processing families.
type Soffice struct {
	exec    executor
	timeout time.Duration
	bin     string // resolved binary, cached after first lookup
}

// NewSoffice returns a LibreOffice backend with the given per-invocation
// timeout (DefaultTimeout when zero).
func NewSoffice(timeout time.Duration) *Soffice {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Soffice{exec: defaultExec, timeout: timeout}
}

func (s *Soffice) Name() string { return "libreoffice" }

func (s *Soffice) Available() bool { return s.locate() != "" }

// locate resolves the soffice binary: PATH first, then well-known install
// locations.
func (s *Soffice) locate() string {
	if s.bin != "" {
		return s.bin
	}
	if p, err := s.exec.LookPath("soffice"); err == nil {
		s.bin = p
		return p
	}
	for _, p := range sofficePaths() {
		if _, err := os.Stat(p); err == nil {
			s.bin = p
			return p
		}
	}
	return ""
}

// Convert runs soffice --headless --convert-to pdf. LibreOffice names its
// output after the input stem inside the output directory, so the produced
// file is renamed to the requested path when the two differ.
func (s *Soffice) Convert(input, output string) error {
	bin := s.locate()
	if bin == "" {
		return ErrUnavailable
	}

	// A leftover output would mask a silent conversion failure.
	os.Remove(output)

	outDir := filepath.Dir(output)
	err := guardedRun(s.exec, sofficeProcs, func() error {
		return s.exec.RunTimeout(s.timeout, bin,
			"--headless", "--convert-to", "pdf", "--outdir", outDir, input)
	})
	if err != nil {
		return fmt.Errorf("soffice: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	produced := filepath.Join(outDir, stem+".pdf")
	if produced != output {
		if err := os.Rename(produced, output); err != nil {
			return fmt.Errorf("soffice produced no output for %s: %w", input, err)
		}
	}

	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("soffice produced no output for %s: %w", input, err)
	}
	if info.Size() == 0 {
		os.Remove(output)
		return fmt.Errorf("soffice produced empty output for %s", input)
	}
	return nil
}
