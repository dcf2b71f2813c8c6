// Package logging adapts the teacher's gRPC unary-interceptor logging
// idiom (LogInterceptor) to a plain function wrapper: this module has no
// gRPC server (see SPEC_FULL.md's Non-goals), so the "log every call's
// duration and error" pattern wraps prover.Service operations directly
// instead of a grpc.UnaryHandler.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// LogToStderr mirrors the teacher's package-level toggle. No flag binds it;
// cmd's server startup sets it to true.
var LogToStderr bool

// WrapOperation runs fn, logging its name, duration, and error (if any)
// through log when LogToStderr is set, the same fields the teacher's
// LogInterceptor attaches to every gRPC call.
func WrapOperation(log *logrus.Entry, operation string, fn func() error) error {
	start := time.Now()
	err := fn()

	if LogToStderr {
		entry := log.WithFields(logrus.Fields{
			"operation": operation,
			"duration":  time.Since(start),
			"error":     err,
		})
		if err != nil {
			entry.Error("call failed")
		} else {
			entry.Info("call completed")
		}
	}

	return err
}
