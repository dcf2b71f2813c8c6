package spvclient

import (
	"bytes"

	btcdwire "github.com/btcsuite/btcd/wire"

	"github.com/nervosnetwork/btcspv/bitcoin"
	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/merkleproof"
	"github.com/nervosnetwork/btcspv/mmr"
	"github.com/nervosnetwork/btcspv/spvtypes"
	ourwire "github.com/nervosnetwork/btcspv/wire"
)

// VerifyTransaction checks that txid is confirmed, at least confirmations
// deep, in the chain anchored by client's MMR root, using txProof as the
// witness: a Bitcoin MerkleBlock rooting txid in a header, plus an MMR
// proof rooting that header in client.HeadersMMRRoot.
//
// On success it returns the recovered header. This function calls no clock
// and holds no package-level state, per the verifier packages' no-I/O
// contract; callers that want latency observation (see prover.VerifyTransaction)
// time the call themselves.
func VerifyTransaction(client *spvtypes.SpvClient, txid hash32.T, txProof spvtypes.TransactionProof, confirmations uint64) (*ourwire.Header, spvtypes.VerifyTxError) {
	h := txProof.Height
	minHeight := client.HeadersMMRRoot.MinHeight
	maxHeight := client.HeadersMMRRoot.MaxHeight

	if h < minHeight {
		return nil, spvtypes.VerifyTxTransactionTooOld
	}
	if h > maxHeight {
		return nil, spvtypes.VerifyTxTransactionTooNew
	}
	if confirmations > 0 && maxHeight-h < confirmations {
		return nil, spvtypes.VerifyTxTransactionUnconfirmed
	}

	merkleBlock, err := merkleproof.Decode(txProof.TransactionProof)
	if err != nil {
		return nil, spvtypes.VerifyTxDecodeTxOutProof
	}

	reconstructedRoot, matches, err := merkleproof.ExtractMatches(merkleBlock)
	if err != nil {
		return nil, spvtypes.VerifyTxTxOutProofIsInvalid
	}

	header := headerFromBlockHeader(&merkleBlock.Header)
	if reconstructedRoot != header.HashMerkleRoot {
		return nil, spvtypes.VerifyTxTxOutProofIsInvalid
	}

	var matchedTxID hash32.T
	found := false
	for _, m := range matches {
		if m.Index == txProof.TxIndex {
			matchedTxID = m.TxID
			found = true
			break
		}
	}
	if !found {
		return nil, spvtypes.VerifyTxTxOutProofInvalidTxIndex
	}
	if matchedTxID != txid {
		return nil, spvtypes.VerifyTxTxOutProofInvalidTxId
	}

	target := bitcoin.TargetFromCompact(header.Bits)
	leaf := mmr.LeafDigest(header, h, target.Work())

	expectedPos := mmr.LeafIndexToPos(h - minHeight)
	proof := txProof.HeaderProof
	proof.LeafPos = expectedPos

	ok, mmrErr := mmr.VerifyMembership(client.HeadersMMRRoot, leaf, proof)
	if mmrErr != nil || !ok {
		return nil, spvtypes.VerifyTxHeaderMmrProof
	}

	return header, spvtypes.VerifyTxOK
}

// VerifyTransactionData is a convenience overlay over VerifyTransaction: it
// decodes a raw Bitcoin transaction, computes its txid, and delegates.
func VerifyTransactionData(client *spvtypes.SpvClient, txBytes []byte, txProof spvtypes.TransactionProof, confirmations uint64) (*ourwire.Header, spvtypes.VerifyTxError) {
	var tx btcdwire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return nil, spvtypes.VerifyTxDecodeTransaction
	}
	txid := hash32.T(tx.TxHash())
	return VerifyTransaction(client, txid, txProof, confirmations)
}

// headerFromBlockHeader converts btcd's wire.BlockHeader (the type
// merkleproof's underlying wire.MsgMerkleBlock embeds) into this module's
// own wire.Header, so the recovered header feeds the same MMR leaf digest
// and hashing path as every other header in the system.
func headerFromBlockHeader(bh *btcdwire.BlockHeader) *ourwire.Header {
	return ourwire.HeaderFromParts(
		bh.Version,
		hash32.T(bh.PrevBlock),
		hash32.T(bh.MerkleRoot),
		uint32(bh.Timestamp.Unix()),
		bh.Bits,
		bh.Nonce,
	)
}
