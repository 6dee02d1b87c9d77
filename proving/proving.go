package proving

import (
	"time"

	"go.uber.org/zap"

	"github.com/spacemeshos/sloth/chain"
	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/digest"
	"github.com/spacemeshos/sloth/modulus"
	"github.com/spacemeshos/sloth/oracle"
	"github.com/spacemeshos/sloth/shared"
)

// Generate runs the delay chain for input and returns the proof together with
// the metadata a verifier needs. It blocks for the whole computation.
func Generate(input []byte, cfg config.Config, opts ...OptionFunc) (*shared.Proof, *shared.ProofMetadata, error) {
	options := &option{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, nil, err
		}
	}
	if err := options.validate(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := options.logger.With(
		zap.Uint32("bits", cfg.Bits),
		zap.Uint64("iterations", cfg.Iterations),
		zap.String("scheme", string(cfg.Scheme)),
	)

	start := time.Now()
	p, err := modulus.For(cfg.Scheme, input, cfg.Bits)
	if err != nil {
		return nil, nil, err
	}
	seed := oracle.Seed(input, p)
	logger.Debug("proving: derived modulus and seed", zap.Duration("duration", time.Since(start)))

	start = time.Now()
	state := chain.New(p).Advance(seed, cfg.Iterations, options.progress)

	witness, finalHash, err := digest.Bind(cfg.Scheme, seed, state, cfg.Bits, cfg.Iterations)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("proving: generated proof", zap.Duration("duration", time.Since(start)))

	proof := &shared.Proof{
		Witness:   witness,
		FinalHash: finalHash,
	}
	proofMetadata := &shared.ProofMetadata{
		Input:      append([]byte(nil), input...),
		Bits:       cfg.Bits,
		Iterations: cfg.Iterations,
		Scheme:     cfg.Scheme,
	}
	return proof, proofMetadata, nil
}
