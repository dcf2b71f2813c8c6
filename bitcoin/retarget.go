package bitcoin

import "math/big"

// DiffchangeInterval is the number of blocks between difficulty
// retargets.
const DiffchangeInterval = 2016

// DiffchangeTimespan is the intended number of seconds DiffchangeInterval
// blocks should take: 14 days.
const DiffchangeTimespan = 14 * 24 * 60 * 60

// clampTimespan clamps actualTimespan to within [expected/4, expected*4],
// the same bound Bitcoin Core's CalculateNextWorkRequired applies, which
// keeps a single retarget from moving difficulty by more than 4x in either
// direction.
func clampTimespan(actual int64) int64 {
	const expected = DiffchangeTimespan
	switch {
	case actual < expected/4:
		return expected / 4
	case actual > expected*4:
		return expected * 4
	default:
		return actual
	}
}

// CalculateNextTarget derives the target for the next retarget period from
// the previous period's target and the timestamps of its first and last
// blocks, following the same arithmetic as Bitcoin Core:
//
//	actual  = clamp(endTime - startTime, expected/4, expected*4)
//	next    = prevTarget * actual / expected
//
// The result is capped at maxTarget (MaxTarget for mainnet/testnet,
// MaxAttainableSignet for signet) the same way Bitcoin Core never allows
// difficulty to decrease below the chain's floor.
func CalculateNextTarget(prevTarget *Target, startTime, endTime uint32, maxTarget *Target) *Target {
	actual := clampTimespan(int64(endTime) - int64(startTime))

	next := new(big.Int).Set(prevTarget.Big())
	next.Mul(next, big.NewInt(actual))
	next.Div(next, big.NewInt(DiffchangeTimespan))

	result := TargetFromBig(next)
	return result.CapTo(maxTarget)
}
