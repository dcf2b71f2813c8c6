// Package merkleproof implements BIP37 partial merkle tree extraction: the
// verifier-side half of Bitcoin's merkleblock format. btcsuite/btcd's
// bloom package builds these trees (prover side, see prover.BlockProofGenerator);
// no Go library in this module's dependency surface walks one back down to
// recover matched transactions, so that half is hand-written here, grounded
// directly on BIP37's publicly specified traversal algorithm.
package merkleproof

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/wire"

	"github.com/nervosnetwork/btcspv/hash32"
)

// Match is one transaction BIP37 marked as matching the filter that built
// the tree: its position in the block and its txid.
type Match struct {
	Index uint32
	TxID  hash32.T
}

// ErrMalformedProof is returned when a TxOutProof's flag/hash layout is
// internally inconsistent (zero transactions, flag bits or hashes that run
// out, or hashes left over).
var ErrMalformedProof = errors.New("merkleproof: malformed partial merkle tree")

// Decode parses a wire-encoded Bitcoin merkleblock payload (header + partial
// merkle tree), reusing btcd's wire codec for the framing.
func Decode(raw []byte) (*wire.MsgMerkleBlock, error) {
	msg := &wire.MsgMerkleBlock{}
	if err := msg.BtcDecode(bytes.NewReader(raw), wire.ProtocolVersion, wire.BaseEncoding); err != nil {
		return nil, err
	}
	return msg, nil
}

// ExtractMatches walks msg's partial merkle tree (BIP37 §"Merkle block")
// and returns the reconstructed merkle root together with every
// transaction the tree marks as matched. The caller must separately compare
// the returned root against the embedded header's HashMerkleRoot.
func ExtractMatches(msg *wire.MsgMerkleBlock) (root hash32.T, matches []Match, err error) {
	if msg.Transactions == 0 {
		return hash32.Nil, nil, ErrMalformedProof
	}

	hashes := make([]hash32.T, len(msg.Hashes))
	for i, h := range msg.Hashes {
		hashes[i] = hash32.T(*h)
	}

	flags := unpackFlags(msg.Flags)

	height := treeHeight(msg.Transactions)

	var hashUsed, bitUsed int
	var matched []Match

	var traverse func(height uint32, pos uint32) (hash32.T, error)
	traverse = func(height uint32, pos uint32) (hash32.T, error) {
		if bitUsed >= len(flags) {
			return hash32.Nil, ErrMalformedProof
		}
		parentOfMatch := flags[bitUsed]
		bitUsed++

		if height == 0 || !parentOfMatch {
			if hashUsed >= len(hashes) {
				return hash32.Nil, ErrMalformedProof
			}
			h := hashes[hashUsed]
			hashUsed++
			if height == 0 && parentOfMatch {
				// matched txids are carried in the same internal
				// (little-endian) byte order as the hash list itself,
				// the same order VerifyTransaction's txid argument uses.
				matched = append(matched, Match{Index: pos, TxID: h})
			}
			return h, nil
		}

		left, err := traverse(height-1, pos*2)
		if err != nil {
			return hash32.Nil, err
		}
		var right hash32.T
		if pos*2+1 < treeWidth(height-1, msg.Transactions) {
			right, err = traverse(height-1, pos*2+1)
			if err != nil {
				return hash32.Nil, err
			}
		} else {
			right = left
		}
		return sha256d(concat(left, right)), nil
	}

	rootHash, err := traverse(height, 0)
	if err != nil {
		return hash32.Nil, nil, err
	}
	if hashUsed != len(hashes) {
		return hash32.Nil, nil, ErrMalformedProof
	}

	return rootHash, matched, nil
}

// treeWidth returns the number of nodes at the given height (0 = leaves) of
// a binary tree covering numTransactions leaves.
func treeWidth(height uint32, numTransactions uint32) uint32 {
	return (numTransactions + (uint32(1)<<height) - 1) >> height
}

// treeHeight returns the smallest height at which the tree has a single
// node (the root).
func treeHeight(numTransactions uint32) uint32 {
	var height uint32
	for treeWidth(height, numTransactions) > 1 {
		height++
	}
	return height
}

// unpackFlags expands a byte-packed, LSB-first bit vector (BIP37's "flags"
// field) into individual bools.
func unpackFlags(raw []byte) []bool {
	flags := make([]bool, len(raw)*8)
	for i := range flags {
		flags[i] = raw[i/8]&(1<<(uint(i)%8)) != 0
	}
	return flags
}

func sha256d(b []byte) hash32.T {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second
}

func concat(a, b hash32.T) []byte {
	out := make([]byte, 0, 64)
	out = append(out, a[:]...)
	out = append(out, b[:]...)
	return out
}
