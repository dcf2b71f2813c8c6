package bitcoin

import (
	"github.com/holiman/uint256"

	"github.com/nervosnetwork/btcspv/hash32"
)

// hashToUint256 interprets a hash in Bitcoin's internal (little-endian)
// byte order as a 256-bit unsigned integer, the representation proof-of-work
// comparisons are defined over.
func hashToUint256(h hash32.T) *uint256.Int {
	be := hash32.Reverse(h)
	v := new(uint256.Int)
	v.SetBytes32(be[:])
	return v
}
