// Package digest turns a terminal chain state into the witness and final hash.
package digest

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/spacemeshos/sloth/shared"
)

// Size is the length of a final hash, in bytes.
const Size = 64

// bindTag prefixes every bound-scheme preimage.
const bindTag = "sloth/bind/v1"

// Bind encodes state as the witness and computes the final hash for the scheme.
func Bind(scheme shared.Scheme, seed, state *big.Int, bits uint32, iterations uint64) (witness, finalHash []byte, err error) {
	witness = shared.EncodeUint(state, bits)
	finalHash, err = Hash(scheme, seed, witness, bits, iterations)
	if err != nil {
		return nil, nil, err
	}
	return witness, finalHash, nil
}

// Hash computes the final hash for an already encoded witness.
func Hash(scheme shared.Scheme, seed *big.Int, witness []byte, bits uint32, iterations uint64) ([]byte, error) {
	switch scheme {
	case shared.SchemeReference:
		sum := sha512.Sum512(witness)
		return sum[:], nil

	case shared.SchemeBound:
		h, err := blake2b.New512(nil)
		if err != nil {
			return nil, err
		}
		var params [12]byte
		binary.BigEndian.PutUint32(params[:4], bits)
		binary.BigEndian.PutUint64(params[4:], iterations)

		h.Write([]byte(bindTag))
		h.Write(params[:])
		h.Write(shared.EncodeUint(seed, bits))
		h.Write(witness)
		return h.Sum(nil), nil
	}
	return nil, scheme.Validate()
}

// DecodeWitness parses a fixed-width witness and checks that it lies in [0, p).
func DecodeWitness(witness []byte, p *big.Int, bits uint32) (*big.Int, error) {
	if len(witness) != shared.ByteLen(bits) {
		return nil, fmt.Errorf("%w: expected %d bytes, given %d", shared.ErrMalformedWitness, shared.ByteLen(bits), len(witness))
	}
	x := shared.DecodeUint(witness)
	if x.Cmp(p) >= 0 {
		return nil, fmt.Errorf("%w: value exceeds modulus", shared.ErrMalformedWitness)
	}
	return x, nil
}
