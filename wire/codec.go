package wire

import (
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"

	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/wire/bytestring"
)

// This file implements the packed binary layout SPEC_FULL.md §6 requires
// for moving SPV entities across the host-chain boundary: a fixed,
// little-endian field order per entity (molecule's "table" shape, without
// molecule's dynamic offset header, since every field here is fixed-width
// or length-prefixed bytes) — compatible byte-for-byte with what an
// existing deployment already expects on the wire.

// PackUint32 encodes n as 4 little-endian bytes.
func PackUint32(n uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, n)
	return buf
}

// PackUint256 encodes n as 32 little-endian bytes.
func PackUint256(n *uint256.Int) []byte {
	if n == nil {
		n = new(uint256.Int)
	}
	be := n.Bytes32()
	le := make([]byte, 32)
	for i := range be {
		le[i] = be[31-i]
	}
	return le
}

// UnpackUint256 decodes 32 little-endian bytes into a *uint256.Int.
func UnpackUint256(b []byte) (*uint256.Int, error) {
	if len(b) != 32 {
		return nil, errors.New("wire: uint256 field must be 32 bytes")
	}
	be := make([]byte, 32)
	for i := range b {
		be[i] = b[31-i]
	}
	return new(uint256.Int).SetBytes32(be), nil
}

// HeaderDigest is the wire-level mirror of mmr.Digest. Heights are carried
// as u32 on the wire (spec.md §3) even though mmr.Digest keeps them as
// uint64 in memory to avoid gratuitous overflow bookkeeping in the MMR
// engine itself; the narrowing happens in mmr.Digest.ToWire, and
// UnpackHeaderDigest/mmr.FromWireDigest widen the heights back.
type HeaderDigest struct {
	MinHeight        uint32
	MaxHeight        uint32
	PartialChainWork *uint256.Int
	ChildrenHash     hash32.T
}

// PackHeaderDigest encodes d as min_height‖max_height‖partial_chain_work‖children_hash.
func PackHeaderDigest(d HeaderDigest) []byte {
	buf := make([]byte, 0, 4+4+32+32)
	buf = append(buf, PackUint32(d.MinHeight)...)
	buf = append(buf, PackUint32(d.MaxHeight)...)
	buf = append(buf, PackUint256(d.PartialChainWork)...)
	buf = append(buf, d.ChildrenHash[:]...)
	return buf
}

// UnpackHeaderDigest decodes a HeaderDigest from raw, returning the
// unconsumed remainder.
func UnpackHeaderDigest(raw []byte) (HeaderDigest, []byte, error) {
	s := bytestring.String(raw)
	var d HeaderDigest

	if !s.ReadUint32(&d.MinHeight) {
		return d, raw, errors.New("wire: could not read min_height")
	}
	if !s.ReadUint32(&d.MaxHeight) {
		return d, raw, errors.New("wire: could not read max_height")
	}
	var workBytes []byte
	if !s.ReadBytes(&workBytes, 32) {
		return d, raw, errors.New("wire: could not read partial_chain_work")
	}
	work, err := UnpackUint256(workBytes)
	if err != nil {
		return d, raw, err
	}
	d.PartialChainWork = work

	var hashBytes []byte
	if !s.ReadBytes(&hashBytes, 32) {
		return d, raw, errors.New("wire: could not read children_hash")
	}
	d.ChildrenHash = hash32.FromSlice(hashBytes)

	return d, []byte(s), nil
}

// TargetAdjustInfo is the wire-level mirror of the cached retarget state:
// 8 fixed bytes, start_time ‖ next_bits, both little-endian u32.
type TargetAdjustInfo struct {
	StartTime uint32
	NextBits  uint32
}

// PackTargetAdjustInfo encodes t as its fixed 8-byte form.
func PackTargetAdjustInfo(t TargetAdjustInfo) []byte {
	buf := make([]byte, 0, 8)
	buf = append(buf, PackUint32(t.StartTime)...)
	buf = append(buf, PackUint32(t.NextBits)...)
	return buf
}

// UnpackTargetAdjustInfo decodes a TargetAdjustInfo from its fixed 8-byte form.
func UnpackTargetAdjustInfo(raw []byte) (TargetAdjustInfo, error) {
	if len(raw) != 8 {
		return TargetAdjustInfo{}, errors.New("wire: target_adjust_info must be 8 bytes")
	}
	return TargetAdjustInfo{
		StartTime: binary.LittleEndian.Uint32(raw[0:4]),
		NextBits:  binary.LittleEndian.Uint32(raw[4:8]),
	}, nil
}

// SpvClient is the wire-level mirror of spvtypes.SpvClient: id ‖
// tip_block_hash ‖ headers_mmr_root ‖ target_adjust_info.
type SpvClient struct {
	ID               uint8
	TipBlockHash     hash32.T
	HeadersMMRRoot   HeaderDigest
	TargetAdjustInfo TargetAdjustInfo
}

// PackSpvClient encodes c in the table field order the external interface
// table specifies.
func PackSpvClient(c SpvClient) []byte {
	buf := make([]byte, 0, 1+32+80+8)
	buf = append(buf, c.ID)
	buf = append(buf, c.TipBlockHash[:]...)
	buf = append(buf, PackHeaderDigest(c.HeadersMMRRoot)...)
	buf = append(buf, PackTargetAdjustInfo(c.TargetAdjustInfo)...)
	return buf
}

// UnpackSpvClient decodes a SpvClient from raw, returning the unconsumed
// remainder.
func UnpackSpvClient(raw []byte) (SpvClient, []byte, error) {
	s := bytestring.String(raw)
	var c SpvClient

	var id uint8
	if !s.ReadByte(&id) {
		return c, raw, errors.New("wire: could not read id")
	}
	c.ID = id

	var tipBytes []byte
	if !s.ReadBytes(&tipBytes, 32) {
		return c, raw, errors.New("wire: could not read tip_block_hash")
	}
	c.TipBlockHash = hash32.FromSlice(tipBytes)

	digest, rest, err := UnpackHeaderDigest([]byte(s))
	if err != nil {
		return c, raw, err
	}
	c.HeadersMMRRoot = digest
	s = bytestring.String(rest)

	var taiBytes []byte
	if !s.ReadBytes(&taiBytes, 8) {
		return c, raw, errors.New("wire: could not read target_adjust_info")
	}
	tai, err := UnpackTargetAdjustInfo(taiBytes)
	if err != nil {
		return c, raw, err
	}
	c.TargetAdjustInfo = tai

	return c, []byte(s), nil
}

// PackSpvInfo encodes the single-byte tip_client_id cell.
func PackSpvInfo(tipClientID uint8) []byte {
	return []byte{tipClientID}
}

// SpvTypeArgs is the wire-level mirror of spvtypes.SpvTypeArgs.
type SpvTypeArgs struct {
	TypeID       hash32.T
	ClientsCount uint8
	Flags        uint8
}

// PackSpvTypeArgs encodes a in type_id ‖ clients_count ‖ flags order.
func PackSpvTypeArgs(a SpvTypeArgs) []byte {
	buf := make([]byte, 0, 34)
	buf = append(buf, a.TypeID[:]...)
	buf = append(buf, a.ClientsCount, a.Flags)
	return buf
}

// UnpackSpvTypeArgs decodes a SpvTypeArgs from its fixed 34-byte form.
func UnpackSpvTypeArgs(raw []byte) (SpvTypeArgs, error) {
	if len(raw) != 34 {
		return SpvTypeArgs{}, errors.New("wire: spv_type_args must be 34 bytes")
	}
	var a SpvTypeArgs
	a.TypeID = hash32.FromSlice(raw[0:32])
	a.ClientsCount = raw[32]
	a.Flags = raw[33]
	return a, nil
}
