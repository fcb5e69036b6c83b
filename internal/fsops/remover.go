package fsops

import (
	"fmt"
	"io"
	"os"
)

// Remover deletes a list of paths best-effort. Each path may be a file, a
// directory tree, or missing entirely; all removal failures are suppressed
// so repeated cleanup runs never fail because there was nothing to clean.
type Remover struct {
	deleter Deleter
	out     io.Writer
	verbose bool
}

// RemoverOption configures a Remover.
type RemoverOption func(*Remover)

// WithDeleter swaps the Deleter implementation. Used by dry-run mode and
// tests to guarantee no real delete syscalls occur.
func WithDeleter(d Deleter) RemoverOption {
	return func(r *Remover) {
		r.deleter = d
	}
}

// WithOutput redirects the per-path announcement lines. Default is stdout.
func WithOutput(w io.Writer) RemoverOption {
	return func(r *Remover) {
		r.out = w
	}
}

// Quiet disables the per-path announcement lines.
func Quiet() RemoverOption {
	return func(r *Remover) {
		r.verbose = false
	}
}

// NewRemover creates a Remover. By default it deletes for real, announces
// each target on stdout, and never returns an error to the caller.
func NewRemover(opts ...RemoverOption) *Remover {
	r := &Remover{
		deleter: OSDeleter{},
		out:     os.Stdout,
		verbose: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RemovePaths attempts to delete every path, in order. For each path the
// directory-tree removal is attempted first, then the bare-file removal;
// failures from either attempt (missing path, wrong type, permissions) are
// suppressed. Announcements, when enabled, are exactly one line per path,
// emitted before the attempt.
func (r *Remover) RemovePaths(paths ...string) {
	for _, path := range paths {
		if r.verbose {
			fmt.Fprintf(r.out, "Removing %s\n", path)
		}
		// RemoveAll ignores missing paths but fails on a bare file only
		// when permissions block it; the plain Remove sweeps up whatever
		// the tree removal could not treat as a directory.
		_ = r.deleter.RemoveAll(path)
		_ = r.deleter.Remove(path)
	}
}
