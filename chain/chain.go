// Package chain implements the sequential delay function over a prime field.
//
// A round is the composition of a cheap diffusion permutation σ with a
// canonical square root ρ. Advancing by t rounds costs t modular
// exponentiations; rewinding costs t modular squarings.
package chain

import (
	"math/big"
)

// ProgressFunc receives the number of rounds completed since its previous call.
// It runs on the goroutine driving the chain and must not block.
type ProgressFunc func(delta uint64)

var one = big.NewInt(1)

// Chain holds the per-modulus constants of the round function.
// It is immutable after New and safe for concurrent use.
type Chain struct {
	p    *big.Int
	e    *big.Int // (p+1)/4
	mask *big.Int // 2^(bitlen(p)/2) - 1
}

// New prepares a chain over p. p must be a prime congruent to 3 mod 4.
func New(p *big.Int) *Chain {
	e := new(big.Int).Add(p, one)
	e.Rsh(e, 2)

	mask := new(big.Int).Lsh(one, uint(p.BitLen()>>1))
	mask.Sub(mask, one)

	return &Chain{
		p:    new(big.Int).Set(p),
		e:    e,
		mask: mask,
	}
}

// Modulus returns a copy of p.
func (c *Chain) Modulus() *big.Int {
	return new(big.Int).Set(c.p)
}

// scratch holds the temporaries of a single loop.
type scratch struct {
	t *big.Int
}

func newScratch() *scratch {
	return &scratch{t: new(big.Int)}
}

// diffuse sets x to σ(x): x with its low half of bits flipped, unless that
// leaves [1, p).
func (c *Chain) diffuse(x *big.Int, s *scratch) {
	s.t.Xor(x, c.mask)
	if s.t.Cmp(c.p) >= 0 || s.t.Sign() == 0 {
		return
	}
	x.Set(s.t)
}

// sqrt sets x to ρ(x). The root of a residue is the even one of the pair,
// the root of a non-residue's negation is the odd one.
func (c *Chain) sqrt(x *big.Int, s *scratch) {
	if big.Jacobi(x, c.p) == 1 {
		x.Exp(x, c.e, c.p)
		if x.Bit(0) == 1 {
			x.Sub(c.p, x)
		}
		return
	}

	s.t.Sub(c.p, x)
	x.Exp(s.t, c.e, c.p)
	if x.Bit(0) == 0 {
		x.Sub(c.p, x)
	}
}

// square sets x to ρ⁻¹(x).
func (c *Chain) square(x *big.Int, s *scratch) {
	odd := x.Bit(0) == 1
	s.t.Mul(x, x)
	x.Mod(s.t, c.p)
	if odd {
		x.Sub(c.p, x)
	}
}

// Step returns ρ(σ(x)) for x in [1, p).
func (c *Chain) Step(x *big.Int) *big.Int {
	s := newScratch()
	z := new(big.Int).Set(x)
	c.diffuse(z, s)
	c.sqrt(z, s)
	return z
}

// Unstep returns σ(ρ⁻¹(y)), the inverse of Step.
func (c *Chain) Unstep(y *big.Int) *big.Int {
	s := newScratch()
	z := new(big.Int).Set(y)
	c.square(z, s)
	c.diffuse(z, s)
	return z
}

// Advance applies iterations rounds to seed and returns the terminal state.
// seed is not modified.
func (c *Chain) Advance(seed *big.Int, iterations uint64, progress ProgressFunc) *big.Int {
	s := newScratch()
	x := new(big.Int).Set(seed)

	run(iterations, progress, func() {
		c.diffuse(x, s)
		c.sqrt(x, s)
	})
	return x
}

// Rewind undoes iterations rounds starting from state and returns the result.
// state is not modified.
func (c *Chain) Rewind(state *big.Int, iterations uint64, progress ProgressFunc) *big.Int {
	s := newScratch()
	x := new(big.Int).Set(state)

	run(iterations, progress, func() {
		c.square(x, s)
		c.diffuse(x, s)
	})
	return x
}

// ProgressStep returns the number of rounds between two progress reports.
func ProgressStep(iterations uint64) uint64 {
	if iterations > 200 {
		return iterations / 200
	}
	return 10
}

func run(iterations uint64, progress ProgressFunc, round func()) {
	if progress == nil {
		for i := uint64(0); i < iterations; i++ {
			round()
		}
		return
	}

	step := ProgressStep(iterations)
	var prev uint64
	for i := uint64(1); i <= iterations; i++ {
		round()
		if i%step == 0 {
			progress(i - prev)
			prev = i
		}
	}
	if prev != iterations {
		progress(iterations - prev)
	}
}
