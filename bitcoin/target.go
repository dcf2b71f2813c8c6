// Package bitcoin implements the Bitcoin consensus primitives the SPV
// verifier depends on: compact-target encoding, proof-of-work checking, and
// difficulty retargeting.
package bitcoin

import (
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/holiman/uint256"
)

// Target is a 256-bit proof-of-work target threshold. A header's hash,
// interpreted as a 256-bit little-endian integer, must not exceed its
// target for the header to pass the proof-of-work check.
type Target struct {
	v uint256.Int
}

// MaxTarget is the highest (easiest) target permitted on mainnet/testnet:
// 0xffff * 2**208 (just under 2**224), i.e. compact encoding 0x1d00ffff.
var MaxTarget = TargetFromCompact(0x1d00ffff)

// MaxAttainableSignet is signet's maximum target, compact encoding
// 0x1e0377ae, matching Bitcoin Core's CHAINPARAMS for signet.
var MaxAttainableSignet = TargetFromCompact(0x1e0377ae)

// TargetFromCompact decodes a CompactTarget (Bitcoin's "nBits") into a
// Target. The encoding is lossy: see Target.Compact for the inverse.
func TargetFromCompact(bits uint32) *Target {
	bi := blockchain.CompactToBig(bits)
	t := &Target{}
	t.v.SetFromBig(bi)
	return t
}

// Compact lossily re-encodes the target into Bitcoin's nBits form. Encoding
// a target and decoding the result does not generally reproduce the
// original target; this asymmetry is inherent to the format and must be
// preserved, not "fixed".
func (t *Target) Compact() uint32 {
	return blockchain.BigToCompact(t.v.ToBig())
}

// Cmp compares t to other, returning -1, 0, or 1.
func (t *Target) Cmp(other *Target) int {
	return t.v.Cmp(&other.v)
}

// LessThanOrEqual reports whether t <= other.
func (t *Target) LessThanOrEqual(other *Target) bool {
	return t.Cmp(other) <= 0
}

// Clone returns an independent copy of t.
func (t *Target) Clone() *Target {
	out := &Target{}
	out.v.Set(&t.v)
	return out
}

// Uint256 exposes the underlying 256-bit value.
func (t *Target) Uint256() *uint256.Int {
	return &t.v
}

// TargetFromBig constructs a Target from an arbitrary-precision integer,
// truncating to 256 bits (callers are expected to have already clamped to a
// valid range, e.g. via CapTo).
func TargetFromBig(bi *big.Int) *Target {
	t := &Target{}
	t.v.SetFromBig(bi)
	return t
}

// Big returns the target as a *big.Int, for interop with btcd helpers.
func (t *Target) Big() *big.Int {
	return t.v.ToBig()
}

// CapTo clamps t to at most max, returning max unchanged if t exceeds it.
func (t *Target) CapTo(max *Target) *Target {
	if t.Cmp(max) > 0 {
		return max.Clone()
	}
	return t.Clone()
}

// Work returns the estimated number of double-SHA256 hashes required, in
// expectation, to produce a hash meeting this target: floor(2**256 /
// (target + 1)), computed as (~target / (target + 1)) + 1 to stay within
// 256 bits the way Bitcoin Core's GetBlockProof does.
func (t *Target) Work() *uint256.Int {
	one := uint256.NewInt(1)

	denom := new(uint256.Int).Add(&t.v, one)
	if denom.IsZero() {
		// target == max uint256; Bitcoin Core never produces this, but
		// guard against a divide-by-zero rather than panicking.
		return new(uint256.Int)
	}

	notTarget := new(uint256.Int).Not(&t.v)
	work := new(uint256.Int).Div(notTarget, denom)
	return work.AddUint64(work, 1)
}
