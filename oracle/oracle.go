// Package oracle derives field elements from arbitrary input by hashing.
//
// Every derivation is a SHA-512 "stretch": the input is hashed once per
// 512-bit block, each time suffixed with a domain tag and the block index,
// and the digests are concatenated.
package oracle

import (
	"crypto/sha512"
	"math/big"
)

const (
	// BlockBits is the output size of a single oracle call, in bits.
	BlockBits = sha512.Size * 8

	// TagPrime and TagSeed separate the modulus candidate from the seed.
	TagPrime = "prime"
	TagSeed  = "seed"
)

// Stretch returns bits/8 bytes derived from input and tag.
// bits is rounded up to a multiple of BlockBits.
//
//	out = H(input || tag || '0') || H(input || tag || '1') || ...
func Stretch(input []byte, tag string, bits uint32) []byte {
	numBlocks := (int(bits) + BlockBits - 1) / BlockBits
	out := make([]byte, 0, numBlocks*sha512.Size)

	h := sha512.New()
	for i := 0; i < numBlocks; i++ {
		h.Reset()
		h.Write(input)
		h.Write([]byte(tag))
		h.Write([]byte{'0' + byte(i)})
		out = h.Sum(out)
	}
	return out
}

// Seed maps input into [2, p).
// The stretched digest is read as a big-endian integer and reduced mod p; the
// degenerate values 0 and 1 are moved up by 2.
func Seed(input []byte, p *big.Int) *big.Int {
	seed := new(big.Int).SetBytes(Stretch(input, TagSeed, uint32(p.BitLen())))
	seed.Mod(seed, p)

	if seed.Cmp(two) < 0 {
		seed.Add(seed, two)
		seed.Mod(seed, p)
	}
	return seed
}

var two = big.NewInt(2)
