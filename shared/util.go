package shared

import (
	"math/big"
)

const (
	OwnerReadWrite     = 0o600
	OwnerReadWriteExec = 0o700
)

// ByteLen returns the number of bytes needed to hold a value of the given bit length.
func ByteLen(bits uint32) int {
	return int((uint64(bits) + 7) / 8)
}

// EncodeUint returns x as a big-endian unsigned integer of exactly ByteLen(bits) bytes.
// x must be non-negative and fit in bits bits.
func EncodeUint(x *big.Int, bits uint32) []byte {
	return x.FillBytes(make([]byte, ByteLen(bits)))
}

// DecodeUint interprets b as a big-endian unsigned integer.
func DecodeUint(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
