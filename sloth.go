// Package sloth computes and verifies a sequential square-root delay function.
//
// Computing a proof for t iterations takes t modular square roots in a prime
// field of the requested bit length; verifying it takes t modular squarings.
// The functions here are synchronous; see package task for background
// execution with progress polling.
package sloth

import (
	"errors"
	"math"

	"github.com/spacemeshos/sloth/chain"
	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/proving"
	"github.com/spacemeshos/sloth/shared"
	"github.com/spacemeshos/sloth/verifying"
)

// ProgressFunc receives the number of rounds completed since its previous call.
type ProgressFunc = chain.ProgressFunc

// Compute runs the reference construction over input and returns the witness
// and its final hash.
func Compute(input []byte, bits, iterations int, progress ProgressFunc) (witness, finalHash []byte, err error) {
	return ComputeWithScheme(shared.SchemeReference, input, bits, iterations, progress)
}

// ComputeWithScheme is Compute for an explicit scheme.
func ComputeWithScheme(scheme shared.Scheme, input []byte, bits, iterations int, progress ProgressFunc) (witness, finalHash []byte, err error) {
	cfg, err := newConfig(scheme, bits, iterations)
	if err != nil {
		return nil, nil, err
	}

	proof, _, err := proving.Generate(input, cfg, proving.WithProgress(progress))
	if err != nil {
		return nil, nil, err
	}
	return proof.Witness, proof.FinalHash, nil
}

// Verify reports whether witness and finalHash were computed by Compute from
// input, bits and iterations. An error is returned only for invalid parameters.
func Verify(witness, finalHash, input []byte, bits, iterations int, progress ProgressFunc) (bool, error) {
	return VerifyWithScheme(shared.SchemeReference, witness, finalHash, input, bits, iterations, progress)
}

// VerifyWithScheme is Verify for an explicit scheme.
func VerifyWithScheme(scheme shared.Scheme, witness, finalHash, input []byte, bits, iterations int, progress ProgressFunc) (bool, error) {
	cfg, err := newConfig(scheme, bits, iterations)
	if err != nil {
		return false, err
	}

	proof := &shared.Proof{Witness: witness, FinalHash: finalHash}
	meta := &shared.ProofMetadata{
		Input:      input,
		Bits:       cfg.Bits,
		Iterations: cfg.Iterations,
		Scheme:     cfg.Scheme,
	}

	err = verifying.Verify(proof, meta, verifying.WithProgress(progress))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrInvalidParameter):
		return false, err
	default:
		return false, nil
	}
}

func newConfig(scheme shared.Scheme, bits, iterations int) (config.Config, error) {
	if bits < 0 || int64(bits) > math.MaxUint32 {
		return config.Config{}, shared.ParameterError{Param: "Bits", Expected: "a positive multiple of 512", Given: bits}
	}
	if iterations < 0 {
		return config.Config{}, shared.ParameterError{Param: "Iterations", Expected: ">= 0", Given: iterations}
	}

	cfg := config.Config{Bits: uint32(bits), Iterations: uint64(iterations), Scheme: scheme}
	return cfg, cfg.Validate()
}
