// Package logger provides pipeline tracing for the Satchel CLI.
// With --verbose set, debug and info lines let users follow each
// ingestion and search stage on stderr. Warnings and errors always
// print. Command results go through cobra's output, never this
// package.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var state = struct {
	mu      sync.RWMutex
	verbose bool
	out     io.Writer
}{out: os.Stderr}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	state.mu.Lock()
	state.verbose = v
	state.mu.Unlock()
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.verbose
}

// SetOutput redirects log output, os.Stderr by default. Tests use it
// to capture lines.
func SetOutput(w io.Writer) {
	state.mu.Lock()
	state.out = w
	state.mu.Unlock()
}

// logf writes one prefixed line. Gated lines are dropped unless
// verbose mode is on.
func logf(prefix string, gated bool, format string, args ...any) {
	state.mu.RLock()
	defer state.mu.RUnlock()
	if gated && !state.verbose {
		return
	}
	fmt.Fprintf(state.out, prefix+format+"\n", args...)
}

// Debug prints a message in verbose mode only.
func Debug(format string, args ...any) {
	logf("[DEBUG] ", true, format, args...)
}

// Info prints an informational message in verbose mode only.
func Info(format string, args ...any) {
	logf("[INFO] ", true, format, args...)
}

// Warn prints a warning regardless of verbosity.
func Warn(format string, args ...any) {
	logf("[WARN] ", false, format, args...)
}

// Error prints an error regardless of verbosity.
func Error(format string, args ...any) {
	logf("[ERROR] ", false, format, args...)
}

// Section prints a stage header in verbose mode only.
func Section(name string) {
	state.mu.RLock()
	defer state.mu.RUnlock()
	if state.verbose {
		fmt.Fprintf(state.out, "\n=== %s ===\n", name)
	}
}
