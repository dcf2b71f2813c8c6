package prover

import "fmt"

// Error is the prover's own diagnostic channel: unlike spvtypes's numeric
// verifier taxonomies, the prover runs off-chain with full error context
// available, so it keeps a single wrapping channel for operator-facing
// detail, mirroring original_source/prover/src/result.rs's Other(String).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("prover: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
