// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// COM save-as format constants used by the Office automation interfaces.
const (
	ppSaveAsPDF = 32 // PowerPoint SaveAs format
	wdFormatPDF = 17 // Word SaveAs file format
)

// Automation converts through a native Office application driven over COM.
// The bridge is a generated PowerShell command, so this backend exists only
// on Windows hosts with the target application installed.
type Automation struct {
	name   string
	app    string // COM ProgID, e.g. "PowerPoint.Application"
	procs  []string
	script func(input, output string) string

	exec    executor
	timeout time.Duration
	goos    string
}

// NewPowerPoint returns the PowerPoint automation backend.
func NewPowerPoint(timeout time.Duration) *Automation {
	a := newAutomation("powerpoint", "PowerPoint.Application", []string{"POWERPNT.EXE"}, timeout)
	a.script = func(input, output string) string {
		return fmt.Sprintf(
			`$app = New-Object -ComObject %s
try {
  $deck = $app.Presentations.Open(%q, $true, $true, $false)
  $deck.SaveAs(%q, %d)
  $deck.Close()
} finally {
  $app.Quit()
}`, a.app, input, output, ppSaveAsPDF)
	}
	return a
}

// NewWord returns the Word automation backend.
func NewWord(timeout time.Duration) *Automation {
	a := newAutomation("word", "Word.Application", []string{"WINWORD.EXE"}, timeout)
	a.script = func(input, output string) string {
		return fmt.Sprintf(
			`$app = New-Object -ComObject %s
$app.Visible = $false
try {
  $doc = $app.Documents.Open(%q)
  $doc.SaveAs(%q, %d)
  $doc.Close()
} finally {
  $app.Quit()
}`, a.app, input, output, wdFormatPDF)
	}
	return a
}

func newAutomation(name, app string, procs []string, timeout time.Duration) *Automation {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Automation{
		name:    name,
		app:     app,
		procs:   procs,
		exec:    defaultExec,
		timeout: timeout,
		goos:    runtime.GOOS,
	}
}

func (a *Automation) Name() string { return a.name }

// Available reports whether a COM bridge exists: Windows with PowerShell on
// PATH. The application itself is probed lazily — a missing install fails
// the Convert call, which cascades treat the same way.
func (a *Automation) Available() bool {
	if a.goos != "windows" {
		return false
	}
	_, err := a.exec.LookPath("powershell")
	return err == nil
}

func (a *Automation) Convert(input, output string) error {
	if !a.Available() {
		return ErrUnavailable
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	os.Remove(absOut)

	err = guardedRun(a.exec, a.procs, func() error {
		return a.exec.RunTimeout(a.timeout, "powershell",
			"-NoProfile", "-NonInteractive", "-Command", a.script(absIn, absOut))
	})
	if err != nil {
		return fmt.Errorf("%s automation: %w", a.name, err)
	}

	info, err := os.Stat(absOut)
	if err != nil {
		return fmt.Errorf("%s automation produced no output for %s: %w", a.name, input, err)
	}
	if info.Size() == 0 {
		os.Remove(absOut)
		return fmt.Errorf("%s automation produced empty output for %s", a.name, input)
	}
	return nil
}
