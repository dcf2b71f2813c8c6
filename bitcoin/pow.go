package bitcoin

import "github.com/nervosnetwork/btcspv/hash32"

// CheckProofOfWork reports whether hash, interpreted as a little-endian
// 256-bit integer (i.e. Bitcoin's internal hash byte order), does not
// exceed target. This is the proof-of-work half of header validity; it does
// not check that target itself was honestly derived from the chain's
// difficulty history.
func CheckProofOfWork(hash hash32.T, target *Target) bool {
	hashInt := hashToUint256(hash)
	return hashInt.Cmp(target.Uint256()) <= 0
}
