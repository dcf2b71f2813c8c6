package spvclient

import (
	"github.com/nervosnetwork/btcspv/bitcoin"
	"github.com/nervosnetwork/btcspv/mmr"
	"github.com/nervosnetwork/btcspv/spvtypes"
	"github.com/nervosnetwork/btcspv/trace"
	"github.com/nervosnetwork/btcspv/wire"
)

// VerifyNewClient checks that update, applied to old, produces exactly new.
// It walks update.Headers one at a time validating continuity, difficulty,
// and proof-of-work, replays the same retarget bookkeeping the prover used
// to build update, verifies the MMR incremental-extension proof, and
// finally checks every field of new against what that walk computed.
//
// flags is old's SpvTypeArgs.Flags; it is re-validated here (not cached on
// SpvClient) because a single type script may be re-read each call.
func VerifyNewClient(old, new *spvtypes.SpvClient, update spvtypes.SpvUpdate, flags uint8) spvtypes.UpdateError {
	chainType, err := bitcoin.ChainTypeFromFlags(flags)
	if err != nil {
		return spvtypes.UpdateFlags
	}
	difficultyDisabled := bitcoin.DifficultyCheckDisabled(flags)

	if len(update.Headers) == 0 {
		return spvtypes.UpdateEmptyHeaders
	}

	hMin := old.HeadersMMRRoot.MinHeight
	hOld := old.HeadersMMRRoot.MaxHeight

	tip := old.TipBlockHash
	height := hOld
	startTime := old.TargetAdjustInfo.StartTime
	nextBits := old.TargetAdjustInfo.NextBits

	appended := make([]mmr.Digest, 0, len(update.Headers))

	for _, raw := range update.Headers {
		height++

		hdr := wire.NewHeader()
		if _, err := hdr.ParseFromSlice(raw); err != nil {
			return spvtypes.UpdateDecodeHeader
		}

		if hdr.HashPrevBlock != tip {
			trace.Log("verify_new_client: header at height %d does not extend tip %x", height, tip)
			return spvtypes.UpdateUncontinuousHeaders
		}

		if hdr.Bits != nextBits {
			tolerated := difficultyDisabled || chainType == bitcoin.ChainTestnet
			if !tolerated {
				trace.Log("verify_new_client: header at height %d has bits %08x, expected %08x", height, hdr.Bits, nextBits)
				return spvtypes.UpdateDifficulty
			}
		}

		target := bitcoin.TargetFromCompact(hdr.Bits)
		if !bitcoin.CheckProofOfWork(hdr.Hash(), target) {
			trace.Log("verify_new_client: header at height %d fails its own proof-of-work target", height)
			return spvtypes.UpdatePow
		}
		tip = hdr.Hash()

		switch {
		case (height+1)%DiffchangeInterval == 0:
			nextTarget := bitcoin.CalculateNextTarget(
				bitcoin.TargetFromCompact(hdr.Bits),
				startTime, hdr.Time,
				bitcoin.MaxTargetFor(chainType),
			)
			nextBits = nextTarget.Compact()
		case (height+1)%DiffchangeInterval == 1:
			startTime = hdr.Time
		}

		appended = append(appended, mmr.LeafDigest(hdr, height, target.Work()))
	}

	ok, mmrErr := mmr.VerifyIncrementalExtension(
		update.NewHeadersMMRProof.OldMMRSize,
		update.NewHeadersMMRProof.OldPeaks,
		appended,
		new.HeadersMMRRoot,
	)
	if mmrErr != nil {
		return spvtypes.UpdateMmr
	}
	if !ok {
		return spvtypes.UpdateHeadersMmrProof
	}

	// The old peaks must bag to old's root; the last MMR node is always a peak.
	oldPeaks := update.NewHeadersMMRProof.OldPeaks
	oldSize := update.NewHeadersMMRProof.OldMMRSize
	if len(oldPeaks) == 0 {
		return spvtypes.UpdateHeadersMmrProof
	}
	oldRoot, bagErr := mmr.CalcRoot(oldPeaks[len(oldPeaks)-1], mmr.Proof{LeafPos: oldSize - 1, MMRSize: oldSize, OtherPeaks: oldPeaks[:len(oldPeaks)-1]})
	if bagErr != nil {
		return spvtypes.UpdateMmr
	}
	oldWant := old.HeadersMMRRoot
	if oldRoot.MinHeight != oldWant.MinHeight || oldRoot.MaxHeight != oldWant.MaxHeight || oldRoot.ChildrenHash != oldWant.ChildrenHash || oldRoot.PartialChainWork.Cmp(oldWant.PartialChainWork) != 0 {
		return spvtypes.UpdateHeadersMmrProof
	}

	if new.ID != old.ID {
		return spvtypes.UpdateClientId
	}
	if new.TipBlockHash != tip {
		return spvtypes.UpdateClientTipBlockHash
	}
	if new.HeadersMMRRoot.MinHeight != hMin {
		return spvtypes.UpdateClientMinimalHeight
	}
	if new.HeadersMMRRoot.MaxHeight != hOld+uint64(len(update.Headers)) {
		return spvtypes.UpdateClientMaximalHeight
	}
	if new.TargetAdjustInfo.StartTime != startTime || new.TargetAdjustInfo.NextBits != nextBits {
		return spvtypes.UpdateClientTargetAdjustInfo
	}

	return spvtypes.UpdateOK
}
