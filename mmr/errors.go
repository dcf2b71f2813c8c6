package mmr

import "errors"

// ErrEmptyTree is returned when bagging peaks or generating a proof against
// an MMR with no stored entries.
var ErrEmptyTree = errors.New("mmr: tree is empty")

// ErrProofMismatch is returned by VerifyIncrementalExtension when the number
// of old peaks supplied does not match the peak count of the old MMR size.
// A proof that is well-formed but reconstructs a different root makes the
// Verify* functions return false with a nil error instead.
var ErrProofMismatch = errors.New("mmr: proof does not reconstruct expected root")

// ErrLeafNotInSubtree is returned when a proof's items run out before the
// walk reaches a peak position.
var ErrLeafNotInSubtree = errors.New("mmr: proof is too short for its claimed position")
