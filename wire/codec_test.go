package wire

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/nervosnetwork/btcspv/hash32"
)

func TestHeaderDigestRoundTrip(t *testing.T) {
	want := HeaderDigest{
		MinHeight:        100,
		MaxHeight:        105,
		PartialChainWork: uint256.NewInt(123456),
		ChildrenHash:     hash32.T{0xaa, 0xbb},
	}
	raw := PackHeaderDigest(want)
	if len(raw) != 4+4+32+32 {
		t.Fatalf("unexpected packed length %d", len(raw))
	}
	got, rest, err := UnpackHeaderDigest(raw)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no remainder, got %d bytes", len(rest))
	}
	if got.MinHeight != want.MinHeight || got.MaxHeight != want.MaxHeight {
		t.Fatalf("height mismatch: %+v vs %+v", got, want)
	}
	if got.PartialChainWork.Cmp(want.PartialChainWork) != 0 {
		t.Fatalf("work mismatch: %v vs %v", got.PartialChainWork, want.PartialChainWork)
	}
	if got.ChildrenHash != want.ChildrenHash {
		t.Fatalf("hash mismatch: %x vs %x", got.ChildrenHash, want.ChildrenHash)
	}
}

func TestSpvClientRoundTrip(t *testing.T) {
	want := SpvClient{
		ID:           7,
		TipBlockHash: hash32.T{0x01, 0x02},
		HeadersMMRRoot: HeaderDigest{
			MinHeight:        2016,
			MaxHeight:        4031,
			PartialChainWork: uint256.NewInt(999),
			ChildrenHash:     hash32.T{0xff},
		},
		TargetAdjustInfo: TargetAdjustInfo{StartTime: 1700000000, NextBits: 0x1d00ffff},
	}
	raw := PackSpvClient(want)
	got, rest, err := UnpackSpvClient(raw)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no remainder, got %d bytes", len(rest))
	}
	if got.ID != want.ID || got.TipBlockHash != want.TipBlockHash {
		t.Fatalf("client mismatch: %+v vs %+v", got, want)
	}
	if got.TargetAdjustInfo != want.TargetAdjustInfo {
		t.Fatalf("target_adjust_info mismatch: %+v vs %+v", got.TargetAdjustInfo, want.TargetAdjustInfo)
	}
}

func TestSpvTypeArgsRoundTrip(t *testing.T) {
	want := SpvTypeArgs{TypeID: hash32.T{0x42}, ClientsCount: 3, Flags: 0b0100_0000}
	raw := PackSpvTypeArgs(want)
	got, err := UnpackSpvTypeArgs(raw)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if got != want {
		t.Fatalf("mismatch: %+v vs %+v", got, want)
	}
}

func TestUint256RoundTripIsLittleEndian(t *testing.T) {
	n := uint256.NewInt(1)
	raw := PackUint256(n)
	if raw[0] != 1 {
		t.Fatalf("expected little-endian encoding, first byte should be 1, got %d", raw[0])
	}
	got, err := UnpackUint256(raw)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if got.Cmp(n) != 0 {
		t.Fatalf("round trip mismatch: %v vs %v", got, n)
	}
}
