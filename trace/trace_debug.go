//go:build debug

// Package trace is a package-level, compile-time-gated diagnostic hook for
// the verifier packages (bitcoin, mmr, spvclient), which otherwise accept no
// logger so their hot path allocates nothing per spec.md §5. It mirrors the
// original Rust implementation's log_if_enabled! macro: a call site that
// compiles away entirely unless the debug build tag is set.
package trace

import "log"

// Log prints a formatted diagnostic line when this module is built with the
// debug tag (go build -tags debug); a no-op build of the same call site
// lives in trace_nodebug.go.
func Log(format string, args ...interface{}) {
	log.Printf("trace: "+format, args...)
}
