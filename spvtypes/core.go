package spvtypes

import (
	"github.com/nervosnetwork/btcspv/bitcoin"
	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/mmr"
)

// TargetAdjustInfo is the 8-byte cached retarget state every SpvClient
// carries: the block-time of the current epoch's first header, and the
// compact-encoded target every header in the epoch must match.
type TargetAdjustInfo struct {
	StartTime uint32
	NextBits  uint32
}

// Target decodes NextBits into a bitcoin.Target.
func (t TargetAdjustInfo) Target() *bitcoin.Target {
	return bitcoin.TargetFromCompact(t.NextBits)
}

// SpvClient is one slot of the host chain's SPV client ring: the verified
// tip of a header chain, anchored by its MMR root. min_height/max_height
// live on HeadersMMRRoot (an MMR node covers exactly that height range),
// not as separate fields — mirroring the single-struct data model Design
// Notes §9 calls for.
type SpvClient struct {
	ID               uint8
	TipBlockHash     hash32.T
	HeadersMMRRoot   mmr.Digest
	TargetAdjustInfo TargetAdjustInfo
}

// MinHeight and MaxHeight expose the height range summarised by the
// client's MMR root.
func (c *SpvClient) MinHeight() uint64 { return c.HeadersMMRRoot.MinHeight }
func (c *SpvClient) MaxHeight() uint64 { return c.HeadersMMRRoot.MaxHeight }

// IsBetterThan reports whether c has strictly more accumulated proof of
// work than other. Supplements the distilled verifier (original_source's
// packed.rs `is_better_than`): useful for a caller juggling more than one
// client slot deciding which represents the tip.
func (c *SpvClient) IsBetterThan(other *SpvClient) bool {
	return c.HeadersMMRRoot.PartialChainWork.Cmp(other.HeadersMMRRoot.PartialChainWork) > 0
}

// SpvInfo is the cell-level pointer to whichever client slot currently
// represents the tip.
type SpvInfo struct {
	TipClientID uint8
}

// SpvTypeArgs is the SPV type script's immutable configuration, embedded in
// its type ID.
type SpvTypeArgs struct {
	TypeID       hash32.T
	ClientsCount uint8
	Flags        uint8
}

// SpvUpdate is the caller-supplied payload for VerifyNewClient: a
// contiguous run of new headers (raw 80-byte Bitcoin consensus encoding,
// decoded inside VerifyNewClient) plus the incremental-extension proof
// connecting the old MMR root to the new one.
type SpvUpdate struct {
	Headers            [][]byte
	NewHeadersMMRProof IncrementalProof
}

// IncrementalProof wraps mmr.VerifyIncrementalExtension's inputs in wire
// form: the old tree's size and the digests of its peaks, left to right.
type IncrementalProof struct {
	OldMMRSize uint64
	OldPeaks   []mmr.Digest
}

// TransactionProof is the caller-supplied payload for VerifyTransaction:
// the claimed height and in-block index of the transaction, the Bitcoin
// MerkleBlock proving its inclusion in that header, and an MMR membership
// proof rooting that header in the client's headers_mmr_root.
type TransactionProof struct {
	Height           uint64
	TxIndex          uint32
	TransactionProof []byte // wire-encoded Bitcoin MerkleBlock
	HeaderProof      mmr.Proof
}

// NewTargetAdjustInfo constructs a TargetAdjustInfo from a start time and a
// target, compact-encoding the target the same lossy way every downstream
// comparison must.
func NewTargetAdjustInfo(startTime uint32, target *bitcoin.Target) TargetAdjustInfo {
	return TargetAdjustInfo{StartTime: startTime, NextBits: target.Compact()}
}
