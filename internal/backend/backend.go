// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend implements the PDF conversion backends: native-application
// automation (Windows COM through PowerShell) and the headless LibreOffice
// CLI. Backends probe their own availability so cascades can degrade
// gracefully on hosts where a tier is absent.
package backend

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// ErrUnavailable marks a backend whose host dependency is absent. Cascades
// treat it as a skip, not a conversion failure.
var ErrUnavailable = errors.New("backend unavailable on this host")

// DefaultTimeout bounds each external-process invocation. A timed-out call
// is an ordinary strategy failure.
const DefaultTimeout = 2 * time.Minute

// Backend converts one document to PDF. Implementations must contain all
// host errors: a failed Convert returns an error, never panics, and must
// not leave a partial output behind as success (callers verify the output
// exists and is non-empty).
type Backend interface {
	// Name identifies the backend in conversion labels.
	Name() string

	// Available reports whether the backend can run on this host.
	Available() bool

	// Convert produces output (a PDF) from input. Any failure, including
	// timeout and non-zero exit, is returned as an error.
	Convert(input, output string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunTimeout(timeout time.Duration, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunTimeout(timeout time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := exec.CommandContext(ctx, name, args...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

var defaultExec executor = &osExecutor{}
