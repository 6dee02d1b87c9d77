// Package modulus provides the prime field the delay chain runs in.
//
// Every modulus p is prime with p ≡ 3 (mod 4), so that square roots are a
// single exponentiation by (p+1)/4, and has a bit length of exactly bits.
package modulus

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/oracle"
	"github.com/spacemeshos/sloth/shared"
)

// primalityRounds is the number of Miller-Rabin rounds run on top of Baillie-PSW.
const primalityRounds = 25

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// For returns the modulus of the given scheme.
func For(scheme shared.Scheme, input []byte, bits uint32) (*big.Int, error) {
	switch scheme {
	case shared.SchemeReference:
		return Derive(input, bits)
	case shared.SchemeBound:
		return ForBits(bits)
	}
	return nil, scheme.Validate()
}

// Derive returns the input-dependent modulus: the first prime p ≡ 3 (mod 4)
// above the oracle candidate for input, with the top bit forced set.
func Derive(input []byte, bits uint32) (*big.Int, error) {
	if err := config.ValidateBits(bits); err != nil {
		return nil, err
	}

	candidate := new(big.Int).SetBytes(oracle.Stretch(input, oracle.TagPrime, bits))
	candidate.SetBit(candidate, int(bits)-1, 1)
	return search(candidate, bits)
}

var cache = struct {
	sync.RWMutex
	m map[uint32]*big.Int
}{m: make(map[uint32]*big.Int)}

// ForBits returns the least prime p ≡ 3 (mod 4) above 2^(bits-1).
// Results are memoised; every call returns a fresh copy.
func ForBits(bits uint32) (*big.Int, error) {
	if err := config.ValidateBits(bits); err != nil {
		return nil, err
	}

	cache.RLock()
	p, ok := cache.m[bits]
	cache.RUnlock()
	if ok {
		return new(big.Int).Set(p), nil
	}

	p, err := search(new(big.Int).Lsh(one, uint(bits-1)), bits)
	if err != nil {
		return nil, err
	}

	cache.Lock()
	if cached, ok := cache.m[bits]; ok {
		p = cached
	} else {
		cache.m[bits] = p
	}
	cache.Unlock()
	return new(big.Int).Set(p), nil
}

// search walks primes strictly above n until it finds one that is 3 mod 4.
// n is consumed.
func search(n *big.Int, bits uint32) (*big.Int, error) {
	r := new(big.Int)
	for {
		nextPrime(n)
		if r.Mod(n, four).Cmp(three) == 0 {
			break
		}
	}

	if n.BitLen() != int(bits) {
		return nil, fmt.Errorf("no suitable prime of %d bits above candidate", bits)
	}
	return n, nil
}

// nextPrime sets n to the least probable prime strictly greater than n.
func nextPrime(n *big.Int) {
	if n.Bit(0) == 0 {
		n.Add(n, one)
	} else {
		n.Add(n, two)
	}
	for !n.ProbablyPrime(primalityRounds) {
		n.Add(n, two)
	}
}
