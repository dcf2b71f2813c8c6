// Package prover implements the off-chain collaborator described by
// SPEC_FULL.md §4.6: it maintains the authoritative MMR over a full header
// history in a mutable backing store and emits the witnesses
// (spvtypes.SpvUpdate, spvtypes.TransactionProof) that spvclient's verifier
// functions consume. It is the only package in this module permitted heap
// access, I/O, and multi-call mutable state.
package prover

import (
	"errors"
	"sync"

	"github.com/nervosnetwork/btcspv/bitcoin"
	"github.com/nervosnetwork/btcspv/mmr"
	"github.com/nervosnetwork/btcspv/spvclient"
	"github.com/nervosnetwork/btcspv/spvtypes"
	"github.com/nervosnetwork/btcspv/wire"
)

// Store is the backing capability prover.Service needs: mmr.Store plus
// truncation, so RollbackTo can discard the tail of a reorg'd range.
// store.MemStore and store.BoltStore both satisfy it.
type Store interface {
	mmr.Store
	Truncate(pos uint64) error
}

// clientPersister is satisfied by store.BoltStore. Service type-asserts for
// it so the same code runs against an in-memory store (which has nothing
// to persist across restarts) without a separate code path.
type clientPersister interface {
	SaveClientMeta(packedClient []byte, baseHeight uint64) error
}

func (s *Service) persistClient() error {
	p, ok := s.store.(clientPersister)
	if !ok {
		return nil
	}
	packed := wire.PackSpvClient(s.client.ToWire())
	return p.SaveClientMeta(packed, s.baseHeight)
}

// Service is single-writer per instance: callers must serialize Update and
// RollbackTo calls themselves (SPEC_FULL.md §5); Service only guards its
// own bookkeeping fields against concurrent readers (TipClient,
// GenerateHeaderProof) racing a writer.
type Service struct {
	mu        sync.RWMutex
	store     Store
	chainType bitcoin.ChainType
	client    *spvtypes.SpvClient
	baseHeight uint64
}

// NewService wraps an empty or previously-bootstrapped store. chainType
// governs the difficulty ceiling Update's retarget bookkeeping caps against
// (bitcoin.MaxTargetFor).
func NewService(st Store, chainType bitcoin.ChainType) *Service {
	return &Service{store: st, chainType: chainType}
}

// Bootstrap seeds the service from a single trusted header, discarding any
// previously-tracked leaves (a prover only ever tracks one contiguous
// header range at a time).
func (s *Service) Bootstrap(height uint64, headerBytes []byte) (*spvtypes.SpvClient, spvtypes.BootstrapError) {
	client, errCode := spvclient.Bootstrap(height, headerBytes)
	if errCode != spvtypes.BootstrapOK {
		return nil, errCode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Truncate(0); err != nil {
		return nil, spvtypes.BootstrapDecodeHeader
	}
	if _, err := s.store.Append(client.HeadersMMRRoot); err != nil {
		return nil, spvtypes.BootstrapDecodeHeader
	}

	s.client = client
	s.baseHeight = height
	if err := s.persistClient(); err != nil {
		return nil, spvtypes.BootstrapDecodeHeader
	}
	return client, spvtypes.BootstrapOK
}

// Resume restores a previously-bootstrapped Service's in-memory bookkeeping
// from a client state read back from persistent storage (store.BoltStore's
// SaveClientMeta/LoadClientMeta), without touching the store's leaves —
// they are assumed to already match client.
func (s *Service) Resume(client *spvtypes.SpvClient, baseHeight uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
	s.baseHeight = baseHeight
}

// Update appends headers (raw 80-byte Bitcoin encoding, in order) to the
// tracked range, replaying the same continuity/difficulty/PoW/retarget
// rules spvclient.VerifyNewClient checks, and returns the SpvUpdate witness
// a verifier can check against the previous client state, together with
// the resulting new client state.
func (s *Service) Update(headers [][]byte) (*spvtypes.SpvUpdate, *spvtypes.SpvClient, error) {
	if len(headers) == 0 {
		return nil, nil, wrapErr("update", errors.New("no headers supplied"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil, nil, wrapErr("update", errors.New("service has not been bootstrapped"))
	}

	oldPeaks, err := mmr.Peaks(s.store)
	if err != nil {
		return nil, nil, wrapErr("update: reading old peaks", err)
	}
	oldSize := s.store.Len()

	tip := s.client.TipBlockHash
	height := s.client.HeadersMMRRoot.MaxHeight
	startTime := s.client.TargetAdjustInfo.StartTime
	nextBits := s.client.TargetAdjustInfo.NextBits

	for _, raw := range headers {
		height++

		hdr := wire.NewHeader()
		if _, err := hdr.ParseFromSlice(raw); err != nil {
			return nil, nil, wrapErr("update: decoding header", err)
		}
		if hdr.HashPrevBlock != tip {
			return nil, nil, wrapErr("update", errors.New("header does not extend the tracked tip"))
		}
		if hdr.Bits != nextBits && s.chainType != bitcoin.ChainTestnet {
			return nil, nil, wrapErr("update", errors.New("header bits do not match the expected retarget"))
		}

		target := bitcoin.TargetFromCompact(hdr.Bits)
		if !bitcoin.CheckProofOfWork(hdr.Hash(), target) {
			return nil, nil, wrapErr("update", errors.New("header fails its own proof-of-work target"))
		}
		tip = hdr.Hash()

		switch {
		case (height+1)%bitcoin.DiffchangeInterval == 0:
			nextTarget := bitcoin.CalculateNextTarget(
				bitcoin.TargetFromCompact(hdr.Bits),
				startTime, hdr.Time,
				bitcoin.MaxTargetFor(s.chainType),
			)
			nextBits = nextTarget.Compact()
		case (height+1)%bitcoin.DiffchangeInterval == 1:
			startTime = hdr.Time
		}

		if _, err := s.store.Append(mmr.LeafDigest(hdr, height, target.Work())); err != nil {
			return nil, nil, wrapErr("update: appending leaf", err)
		}
	}

	newRoot, err := mmr.RootFromStore(s.store)
	if err != nil {
		return nil, nil, wrapErr("update: computing new root", err)
	}

	newClient := &spvtypes.SpvClient{
		ID:             s.client.ID,
		TipBlockHash:   tip,
		HeadersMMRRoot: newRoot,
		TargetAdjustInfo: spvtypes.TargetAdjustInfo{
			StartTime: startTime,
			NextBits:  nextBits,
		},
	}
	s.client = newClient
	if err := s.persistClient(); err != nil {
		return nil, nil, wrapErr("update: persisting client state", err)
	}

	update := &spvtypes.SpvUpdate{
		Headers: headers,
		NewHeadersMMRProof: spvtypes.IncrementalProof{
			OldMMRSize: oldSize,
			OldPeaks:   oldPeaks,
		},
	}
	return update, newClient, nil
}

// RollbackTo discards every leaf above prevClient's max height and restores
// the service's client state to it, for use when a reorg elsewhere has
// invalidated the tracked tail.
func (s *Service) RollbackTo(prevClient *spvtypes.SpvClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prevClient.HeadersMMRRoot.MinHeight != s.baseHeight {
		return wrapErr("rollback_to", errors.New("prevClient does not belong to this service's tracked range"))
	}

	lastLeafIndex := prevClient.HeadersMMRRoot.MaxHeight - s.baseHeight
	retainSize := mmr.LeafIndexToMMRSize(lastLeafIndex)
	if err := s.store.Truncate(retainSize); err != nil {
		return wrapErr("rollback_to: truncating store", err)
	}

	s.client = prevClient
	return s.persistClient()
}

// GenerateHeaderProof builds a single-leaf MMR membership proof for the
// header at the given absolute chain height.
func (s *Service) GenerateHeaderProof(height uint64) (mmr.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.client == nil || height < s.baseHeight || height > s.client.HeadersMMRRoot.MaxHeight {
		return mmr.Proof{}, wrapErr("generate_header_proof", errors.New("height is outside the tracked range"))
	}
	leafIndex := height - s.baseHeight
	pos := mmr.LeafIndexToPos(leafIndex)
	proof, err := mmr.GenerateProof(s.store, pos)
	if err != nil {
		return mmr.Proof{}, wrapErr("generate_header_proof", err)
	}
	return proof, nil
}

// TipClient returns the service's current client state.
func (s *Service) TipClient() *spvtypes.SpvClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// MinHeight returns the lowest height the service tracks.
func (s *Service) MinHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseHeight
}

// MaxHeight returns the service's current tip height.
func (s *Service) MaxHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return 0
	}
	return s.client.HeadersMMRRoot.MaxHeight
}
