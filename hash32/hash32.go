package hash32

import (
	"encoding/hex"
	"errors"
)

// T is a 32-byte double-SHA256 digest: a block hash, a txid, or a merkle
// root. Bitcoin computes and stores these in the order SHA256 produces
// them in, but displays and serializes them byte-reversed (see Reverse).
// Values are passed and returned by value.
type T [32]byte

// Nil is the unset/undefined hash: producing a real double-SHA256 digest
// of all zero bytes is considered computationally infeasible, so the zero
// value doubles as a sentinel (e.g. the previous-block hash of a genesis
// header).
var Nil = [32]byte{}

// FromSlice converts a slice to a hash32. If the slice is too long,
// the return is only the first 32 bytes; if the slice is too short,
// the remaining bytes in the return value are zeros. This should
// not happen in practice.
func FromSlice(arg []byte) T {
	var r T
	copy(r[:], arg)
	return r
}

// ToSlice converts a hash32 to a byte slice.
func ToSlice(arg T) []byte {
	return arg[:]
}

// Reverse byte-swaps arg, converting between Bitcoin's internal digest
// order and the big-endian order block explorers and RPCs display txids
// and block hashes in.
func Reverse(arg T) T {
	r := T{}
	for i := 0; i < 32; i++ {
		r[i] = arg[32-1-i]
	}
	return r
}

func ReverseSlice(arg []byte) []byte {
	return ToSlice(Reverse(FromSlice(arg)))
}

// Decode parses a hex string into a hash32, in whatever byte order the
// string was encoded in. Callers exchanging hashes with RPC or block
// explorers, which use display order, should pair this with Reverse.
func Decode(s string) (T, error) {
	r := T{}
	hash, err := hex.DecodeString(s)
	if err != nil {
		return r, err
	}
	if len(hash) != 32 {
		return r, errors.New("DecodeHexHash: length is not 32 bytes")
	}
	return FromSlice(hash), nil
}

// Encode is Decode's inverse: it does not reverse arg.
func Encode(arg T) string {
	return hex.EncodeToString(ToSlice(arg))
}
