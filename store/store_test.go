package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"

	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/mmr"
)

func sampleDigest(seed byte) mmr.Digest {
	return mmr.Digest{
		MinHeight:        uint64(seed),
		MaxHeight:        uint64(seed),
		PartialChainWork: uint256.NewInt(uint64(seed) + 1),
		ChildrenHash:     hash32.T{seed},
	}
}

func TestMemStoreAppendGetTruncate(t *testing.T) {
	s := NewMemStore()
	for i := byte(0); i < 5; i++ {
		pos, err := s.Append(sampleDigest(i))
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if pos != uint64(i) {
			t.Fatalf("unexpected position: want %d, have %d", i, pos)
		}
	}
	if s.Len() != 5 {
		t.Fatalf("unexpected length: %d", s.Len())
	}

	got, err := s.Get(2)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.MinHeight != 2 {
		t.Fatalf("unexpected digest at pos 2: %+v", got)
	}

	s.Truncate(3)
	if s.Len() != 3 {
		t.Fatalf("expected length 3 after truncate, got %d", s.Len())
	}
	if _, err := s.Get(3); err == nil {
		t.Fatal("expected error reading truncated position")
	}
}

func TestBoltStoreAppendGetTruncate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mmr.db")

	bs, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("OpenBoltStore failed: %v", err)
	}
	defer bs.Close()

	for i := byte(0); i < 4; i++ {
		pos, err := bs.Append(sampleDigest(i))
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if pos != uint64(i) {
			t.Fatalf("unexpected position: want %d, have %d", i, pos)
		}
	}
	if bs.Len() != 4 {
		t.Fatalf("unexpected length: %d", bs.Len())
	}

	got, err := bs.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.PartialChainWork.Cmp(uint256.NewInt(2)) != 0 {
		t.Fatalf("unexpected work at pos 1: %v", got.PartialChainWork)
	}

	if err := bs.Truncate(2); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	if bs.Len() != 2 {
		t.Fatalf("expected length 2 after truncate, got %d", bs.Len())
	}
	if _, err := bs.Get(2); err == nil {
		t.Fatal("expected error reading truncated position")
	}

	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("expected db file to exist: %v", statErr)
	}
}

func TestBoltStoreClientMetaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	bs, err := OpenBoltStore(filepath.Join(dir, "meta.db"))
	if err != nil {
		t.Fatalf("OpenBoltStore failed: %v", err)
	}
	defer bs.Close()

	if _, _, ok, err := bs.LoadClientMeta(); err != nil || ok {
		t.Fatalf("expected no client meta on a fresh store, ok=%v err=%v", ok, err)
	}

	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if err := bs.SaveClientMeta(want, 2016); err != nil {
		t.Fatalf("SaveClientMeta failed: %v", err)
	}

	got, baseHeight, ok, err := bs.LoadClientMeta()
	if err != nil {
		t.Fatalf("LoadClientMeta failed: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted client meta to be found")
	}
	if baseHeight != 2016 {
		t.Fatalf("unexpected base height: %d", baseHeight)
	}
	if string(got) != string(want) {
		t.Fatalf("unexpected packed client bytes: %x vs %x", got, want)
	}
}
