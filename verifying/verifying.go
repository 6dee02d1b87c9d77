package verifying

import (
	"context"
	"crypto/subtle"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/sloth/chain"
	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/digest"
	"github.com/spacemeshos/sloth/modulus"
	"github.com/spacemeshos/sloth/oracle"
	"github.com/spacemeshos/sloth/shared"
)

// Verify checks that p was computed from the input and parameters in m.
// It returns nil for a valid proof; otherwise the error matches one of
// shared.ErrInvalidParameter, shared.ErrMalformedWitness or shared.ErrInvalidProof.
func Verify(p *shared.Proof, m *shared.ProofMetadata, opts ...OptionFunc) error {
	options := applyOpts(opts...)

	if p == nil {
		return shared.ParameterError{Param: "Proof", Expected: "non-nil", Given: "nil"}
	}
	if m == nil {
		return shared.ParameterError{Param: "ProofMetadata", Expected: "non-nil", Given: "nil"}
	}

	cfg := config.Config{Bits: m.Bits, Iterations: m.Iterations, Scheme: m.Scheme}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(p.FinalHash) != digest.Size {
		return fmt.Errorf("%w: invalid final hash length; expected: %d, given: %d", shared.ErrInvalidProof, digest.Size, len(p.FinalHash))
	}

	modulo, err := modulus.For(m.Scheme, m.Input, m.Bits)
	if err != nil {
		return err
	}
	seed := oracle.Seed(m.Input, modulo)

	state, err := digest.DecodeWitness(p.Witness, modulo, m.Bits)
	if err != nil {
		return err
	}

	expected, err := digest.Hash(m.Scheme, seed, p.Witness, m.Bits, m.Iterations)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(expected, p.FinalHash) != 1 {
		return fmt.Errorf("%w: final hash mismatch", shared.ErrInvalidProof)
	}

	if chain.New(modulo).Rewind(state, m.Iterations, options.progress).Cmp(seed) != 0 {
		return fmt.Errorf("%w: witness does not rewind to seed", shared.ErrInvalidProof)
	}

	options.logger.Debug("verifying: proof is valid",
		zap.Uint32("bits", m.Bits),
		zap.Uint64("iterations", m.Iterations),
		zap.String("scheme", string(m.Scheme)),
	)
	return nil
}

// Item is a single proof in a batch.
type Item struct {
	Proof    *shared.Proof
	Metadata *shared.ProofMetadata
}

// VerifyBatch verifies items on up to workers goroutines and returns one
// result per item, in order. Items not started before ctx is done report ctx.Err().
func VerifyBatch(ctx context.Context, items []Item, workers int, opts ...OptionFunc) []error {
	results := make([]error, len(items))
	if workers < 1 {
		workers = 1
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for i := range items {
		i := i
		if err := ctx.Err(); err != nil {
			results[i] = err
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = err
				return nil
			}
			results[i] = Verify(items[i].Proof, items[i].Metadata, opts...)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
