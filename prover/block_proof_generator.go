package prover

import (
	"bytes"

	"github.com/btcsuite/btcd/bloom"
	"github.com/btcsuite/btcd/btcutil"
	btcdwire "github.com/btcsuite/btcd/wire"
)

// BlockProofGenerator builds Bitcoin-format MerkleBlock witnesses from a
// full block, the prover-side half of BIP37: it has the whole block, so it
// reuses btcsuite/btcd/bloom's filter-driven constructor directly rather
// than reimplementing the match/flag-bit logic (only spvclient's
// verifier-side extraction needed hand-written code — see merkleproof).
type BlockProofGenerator struct{}

// GenerateTxOutProofViaIndexes builds a serialized MerkleBlock proving the
// transactions at the given indexes are included in block. The result,
// fed to spvclient.VerifyTransaction as TransactionProof.TransactionProof,
// lets a verifier confirm any one of those transactions without trusting
// the prover.
func (BlockProofGenerator) GenerateTxOutProofViaIndexes(block *btcdwire.MsgBlock, indexes []uint32) ([]byte, error) {
	filter := bloom.NewFilter(uint32(len(indexes)), 0, 0.0000001, btcdwire.BloomUpdateNone)
	for _, idx := range indexes {
		tx := block.Transactions[idx]
		txHash := tx.TxHash()
		filter.AddHash(&txHash)
	}

	btcBlock := btcutil.NewBlock(block)
	merkleBlock, _ := bloom.NewMerkleBlock(btcBlock, filter)

	var buf bytes.Buffer
	if err := merkleBlock.BtcEncode(&buf, btcdwire.ProtocolVersion, btcdwire.BaseEncoding); err != nil {
		return nil, wrapErr("generate_txout_proof", err)
	}
	return buf.Bytes(), nil
}
