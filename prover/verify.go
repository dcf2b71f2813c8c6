package prover

import (
	"time"

	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/metrics"
	"github.com/nervosnetwork/btcspv/spvclient"
	"github.com/nervosnetwork/btcspv/spvtypes"
	"github.com/nervosnetwork/btcspv/wire"
)

// VerifyTransaction times a call to spvclient.VerifyTransaction and records
// it on metrics.VerifyTransactionDuration, keeping spvclient itself free of
// any clock access (it is one of the no-I/O verifier packages). This is the
// entry point a host-chain adapter outside this module would call; it has
// no bearing on the verification result, only on what gets observed.
func VerifyTransaction(client *spvtypes.SpvClient, txid hash32.T, txProof spvtypes.TransactionProof, confirmations uint64) (*wire.Header, spvtypes.VerifyTxError) {
	start := time.Now()
	header, errCode := spvclient.VerifyTransaction(client, txid, txProof, confirmations)
	metrics.VerifyTransactionDuration.Observe(time.Since(start).Seconds())
	return header, errCode
}
