package metrics

import (
	"math/big"

	"github.com/nervosnetwork/btcspv/spvtypes"
)

// ObserveClient updates the tip-height and chain-work gauges from the
// prover's current client state. Called after every successful Bootstrap
// or Update.
func ObserveClient(client *spvtypes.SpvClient) {
	if client == nil {
		return
	}
	TipHeight.Set(float64(client.HeadersMMRRoot.MaxHeight))
	work := client.HeadersMMRRoot.PartialChainWork
	if work != nil {
		f, _ := new(big.Float).SetInt(work.ToBig()).Float64()
		PartialChainWork.Set(f)
	}
}
