// Package mmr implements a Merkle Mountain Range accumulator over Bitcoin
// header digests: an append-only structure supporting O(log n) membership
// proofs and O(log n) "old tip -> new tip" incremental-extension proofs.
package mmr

import (
	"crypto/sha256"
	"errors"

	"github.com/holiman/uint256"

	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/wire"
)

// Digest is the value stored at every MMR node (leaf or internal). A leaf's
// MinHeight equals its MaxHeight (the height of the single header it
// represents); an internal node's range spans its subtree's header heights.
// PartialChainWork accumulates proof-of-work across the subtree, enabling
// "more work wins" comparisons without re-walking headers.
type Digest struct {
	MinHeight        uint64
	MaxHeight        uint64
	PartialChainWork *uint256.Int
	ChildrenHash     hash32.T
}

// ErrHeightMismatch is returned by Merge when the two digests are not
// adjacent subtrees (lhs.MaxHeight+1 must equal rhs.MinHeight).
var ErrHeightMismatch = errors.New("mmr: merge requires lhs.MaxHeight+1 == rhs.MinHeight")

// LeafDigest builds the Digest for a single header at the given chain
// height, given the chain work contributed by that one header.
func LeafDigest(header *wire.Header, height uint64, headerWork *uint256.Int) Digest {
	return Digest{
		MinHeight:        height,
		MaxHeight:        height,
		PartialChainWork: new(uint256.Int).Set(headerWork),
		ChildrenHash:     header.Hash(),
	}
}

// ToWire narrows d to its wire form (wire.HeaderDigest). Bitcoin height
// won't reach 2^32 for centuries, so the narrowing is safe in practice;
// this is the only place it happens.
func (d Digest) ToWire() wire.HeaderDigest {
	return wire.HeaderDigest{
		MinHeight:        uint32(d.MinHeight),
		MaxHeight:        uint32(d.MaxHeight),
		PartialChainWork: d.PartialChainWork,
		ChildrenHash:     d.ChildrenHash,
	}
}

// FromWireDigest widens a wire.HeaderDigest back to a Digest.
func FromWireDigest(d wire.HeaderDigest) Digest {
	return Digest{
		MinHeight:        uint64(d.MinHeight),
		MaxHeight:        uint64(d.MaxHeight),
		PartialChainWork: d.PartialChainWork,
		ChildrenHash:     d.ChildrenHash,
	}
}

// calcMMRHash reduces a Digest to a single hash that can be fed into the
// next merge step. It hashes d's wire-packed form (wire.PackHeaderDigest:
// 4-byte heights, 72 bytes total), not the widened in-memory Digest, so
// that min/max height and accumulated work are bound into the resulting
// tree structure the same way any other implementation verifying the same
// packed proofs would compute it.
func calcMMRHash(d Digest) hash32.T {
	return sha256d(wire.PackHeaderDigest(d.ToWire()))
}

func sha256d(b []byte) hash32.T {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second
}

func hashConcat(lhs, rhs hash32.T) hash32.T {
	buf := make([]byte, 0, 64)
	buf = append(buf, lhs[:]...)
	buf = append(buf, rhs[:]...)
	return sha256d(buf)
}

// Merge combines two adjacent subtree digests into their parent's digest.
// lhs must be the left (lower-height) subtree and rhs the right
// (higher-height) one: lhs.MaxHeight+1 must equal rhs.MinHeight.
func Merge(lhs, rhs Digest) (Digest, error) {
	if lhs.MaxHeight+1 != rhs.MinHeight {
		return Digest{}, ErrHeightMismatch
	}

	lhsWork := lhs.PartialChainWork
	if lhsWork == nil {
		lhsWork = new(uint256.Int)
	}
	rhsWork := rhs.PartialChainWork
	if rhsWork == nil {
		rhsWork = new(uint256.Int)
	}

	return Digest{
		MinHeight:        lhs.MinHeight,
		MaxHeight:        rhs.MaxHeight,
		PartialChainWork: new(uint256.Int).Add(lhsWork, rhsWork),
		ChildrenHash:     hashConcat(calcMMRHash(lhs), calcMMRHash(rhs)),
	}, nil
}

// MergePeaks combines two mountain peaks into the bagged root. Note the
// argument swap relative to Merge: it returns Merge(rhs, lhs), so rhs must
// be the peak to the left in tree order (lower heights) and lhs the one to
// its right; bagging passes the accumulated right-hand root as lhs. This quirk is
// load-bearing for interoperability with clients bagging peaks the same
// way and must not be "corrected".
func MergePeaks(lhs, rhs Digest) (Digest, error) {
	return Merge(rhs, lhs)
}
