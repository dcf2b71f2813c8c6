// Package spvclient implements the SPV client state machine: bootstrapping
// a client from a single trusted header, advancing it by a batch of new
// headers plus an MMR extension proof, and answering transaction-inclusion
// queries against it. Every exported entry point returns one of
// spvtypes's three numeric error taxonomies rather than a Go error, mirroring
// the host chain's "i8 return code" calling convention.
package spvclient

import (
	"github.com/nervosnetwork/btcspv/bitcoin"
	"github.com/nervosnetwork/btcspv/mmr"
	"github.com/nervosnetwork/btcspv/spvtypes"
	"github.com/nervosnetwork/btcspv/wire"
)

// DiffchangeInterval mirrors bitcoin.DiffchangeInterval under the name the
// external interface table uses.
const DiffchangeInterval = bitcoin.DiffchangeInterval

// Bootstrap seeds a new SpvClient (always id 0) from a single trusted
// header at a retarget-epoch boundary. The caller is responsible for
// picking a truthful checkpoint: bootstrap only checks internal
// consistency (epoch alignment, decodability, proof-of-work), not whether
// the header actually belongs to the real chain.
func Bootstrap(height uint64, headerBytes []byte) (*spvtypes.SpvClient, spvtypes.BootstrapError) {
	if height%DiffchangeInterval != 0 {
		return nil, spvtypes.BootstrapHeight
	}

	header := wire.NewHeader()
	if _, err := header.ParseFromSlice(headerBytes); err != nil {
		return nil, spvtypes.BootstrapDecodeHeader
	}

	target := bitcoin.TargetFromCompact(header.Bits)
	if !bitcoin.CheckProofOfWork(header.Hash(), target) {
		return nil, spvtypes.BootstrapPow
	}

	leaf := mmr.LeafDigest(header, height, target.Work())

	client := &spvtypes.SpvClient{
		ID:               0,
		TipBlockHash:     header.Hash(),
		HeadersMMRRoot:   leaf,
		TargetAdjustInfo: spvtypes.NewTargetAdjustInfo(header.Time, target),
	}
	return client, spvtypes.BootstrapOK
}
