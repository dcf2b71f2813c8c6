// Package wire implements the molecule-compatible packed binary codec used
// to move SPV entities across the host-chain boundary, plus the raw Bitcoin
// block header encoding those entities are built from.
package wire

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"

	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/wire/bytestring"
)

// headerSize is the size in bytes of a serialized Bitcoin block header.
const headerSize = 80

// RawHeader implements the 80-byte Bitcoin block header as defined by the
// Bitcoin protocol: https://developer.bitcoin.org/reference/block_chain.html
type RawHeader struct {
	// Version indicates which set of block validation rules to follow.
	Version int32

	// HashPrevBlock is the double-SHA256 hash, in internal byte order, of
	// the previous block's header.
	HashPrevBlock hash32.T

	// HashMerkleRoot is the double-SHA256 merkle root, in internal byte
	// order, of the block's transactions.
	HashMerkleRoot hash32.T

	// Time is the Unix epoch time (UTC) the miner started hashing the
	// header, according to the miner.
	Time uint32

	// Bits is the compact-encoded target threshold (nBits) this header's
	// hash must not exceed.
	Bits uint32

	// Nonce is the field miners vary to search for a hash meeting Bits.
	Nonce uint32
}

// Header extends RawHeader with a cache for the block hash.
type Header struct {
	*RawHeader
	cachedHash hash32.T
}

// NewHeader returns a pointer to a new, zeroed header instance.
func NewHeader() *Header {
	return &Header{RawHeader: new(RawHeader)}
}

// HeaderFromParts builds a Header from its individual fields, matching the
// wire field order.
func HeaderFromParts(version int32, prevHash, merkleRoot hash32.T, time, bits, nonce uint32) *Header {
	return &Header{
		RawHeader: &RawHeader{
			Version:        version,
			HashPrevBlock:  prevHash,
			HashMerkleRoot: merkleRoot,
			Time:           time,
			Bits:           bits,
			Nonce:          nonce,
		},
	}
}

// MarshalBinary returns the header in its 80-byte wire-serialized form.
func (hdr *RawHeader) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, headerSize))
	if err := binary.Write(buf, binary.LittleEndian, hdr.Version); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, hdr.HashPrevBlock); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, hdr.HashMerkleRoot); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, hdr.Time); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, hdr.Bits); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, hdr.Nonce); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseFromSlice parses a Header from the given data, advancing over the
// bytes read. On success it returns the remaining, unconsumed slice. On
// failure it returns the input slice unaltered along with an error.
func (hdr *Header) ParseFromSlice(in []byte) (rest []byte, err error) {
	s := bytestring.String(in)

	if !s.ReadInt32(&hdr.Version) {
		return in, errors.New("could not read header version")
	}

	var b32 []byte
	if !s.ReadBytes(&b32, 32) {
		return in, errors.New("could not read HashPrevBlock")
	}
	hdr.HashPrevBlock = hash32.FromSlice(b32)

	if !s.ReadBytes(&b32, 32) {
		return in, errors.New("could not read HashMerkleRoot")
	}
	hdr.HashMerkleRoot = hash32.FromSlice(b32)

	if !s.ReadUint32(&hdr.Time) {
		return in, errors.New("could not read header time")
	}
	if !s.ReadUint32(&hdr.Bits) {
		return in, errors.New("could not read header bits")
	}
	if !s.ReadUint32(&hdr.Nonce) {
		return in, errors.New("could not read header nonce")
	}

	hdr.cachedHash = hash32.Nil
	return []byte(s), nil
}

// Hash returns the block hash in internal (little-endian, wire) byte order:
// double-SHA256 of the serialized header. This is the form stored in
// HashPrevBlock fields and used by the MMR leaf digest.
func (hdr *Header) Hash() hash32.T {
	if hdr.cachedHash != hash32.Nil {
		return hdr.cachedHash
	}
	serialized, err := hdr.MarshalBinary()
	if err != nil {
		return hash32.Nil
	}
	digest := sha256.Sum256(serialized)
	digest = sha256.Sum256(digest[:])
	hdr.cachedHash = digest
	return hdr.cachedHash
}

// DisplayHash returns the block hash in the big-endian order conventionally
// used for display and block explorers.
func (hdr *Header) DisplayHash() hash32.T {
	return hash32.Reverse(hdr.Hash())
}

// DisplayHashString returns DisplayHash hex-encoded.
func (hdr *Header) DisplayHashString() string {
	h := hdr.DisplayHash()
	return hex.EncodeToString(h[:])
}
