package spvtypes

import (
	"github.com/nervosnetwork/btcspv/mmr"
	"github.com/nervosnetwork/btcspv/wire"
)

// ToWire converts c to the packed-binary mirror type wire.PackSpvClient
// consumes. Host-chain cells and persistent storage both move SpvClient
// across a process/transaction boundary through this form.
func (c SpvClient) ToWire() wire.SpvClient {
	return wire.SpvClient{
		ID:             c.ID,
		TipBlockHash:   c.TipBlockHash,
		HeadersMMRRoot: c.HeadersMMRRoot.ToWire(),
		TargetAdjustInfo: wire.TargetAdjustInfo{
			StartTime: c.TargetAdjustInfo.StartTime,
			NextBits:  c.TargetAdjustInfo.NextBits,
		},
	}
}

// FromWireClient converts a wire.SpvClient (as read back from a cell or a
// persisted store) to the in-memory SpvClient type.
func FromWireClient(w wire.SpvClient) SpvClient {
	return SpvClient{
		ID:             w.ID,
		TipBlockHash:   w.TipBlockHash,
		HeadersMMRRoot: mmr.FromWireDigest(w.HeadersMMRRoot),
		TargetAdjustInfo: TargetAdjustInfo{
			StartTime: w.TargetAdjustInfo.StartTime,
			NextBits:  w.TargetAdjustInfo.NextBits,
		},
	}
}
