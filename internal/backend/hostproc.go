// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import "runtime"

// The automation and CLI backends share one application instance per host.
// A stale instance left by a prior timed-out call corrupts subsequent runs,
// so every invocation is bracketed: kill stale instances before, run, kill
// again on every exit path. This discipline is the only protection — the
// pipeline is single-threaded and callers must not interleave with it.

// killProcesses force-terminates every named process, ignoring errors
// (usually there is nothing to kill).
func killProcesses(x executor, names []string) {
	for _, name := range names {
		if runtime.GOOS == "windows" {
			x.RunSilent("taskkill", "/F", "/IM", name, "/T")
		} else {
			x.RunSilent("pkill", "-x", name)
		}
	}
}

// guardedRun brackets fn with the kill-before/kill-after discipline for the
// given process names.
func guardedRun(x executor, names []string, fn func() error) error {
	killProcesses(x, names)
	defer killProcesses(x, names)
	return fn()
}
