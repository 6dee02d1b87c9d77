package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/sloth/persistence"
	"github.com/spacemeshos/sloth/shared"
	"github.com/spacemeshos/sloth/task"
)

var errInvalidProof = errors.New("proof is invalid")

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a proof",
		Long: `Verify checks a proof either stored in the data directory (--key) or given in
hex on the command line (--witness, --final-hash) together with its input and
the configured parameters. It exits with a non-zero status for an invalid proof.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			proof, meta, err := proofFromFlags(cmd, cfg, logger)
			if err != nil {
				return err
			}

			t := task.Verify(proof, meta, task.WithLogger(logger))
			if err := waitTask(t, cfg, logger); err != nil {
				select {
				case <-t.Done():
					// rejected proofs are reported below
				default:
					return err
				}
			}

			valid, err := t.Valid()
			if err != nil {
				return err
			}
			if !valid {
				logger.Info("cli: proof rejected", zap.Error(t.Err()))
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return errInvalidProof
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().String("key", "", "Key of a stored proof")
	cmd.Flags().String("witness", "", "Witness, in hex")
	cmd.Flags().String("final-hash", "", "Final hash, in hex")
	return cmd
}

func proofFromFlags(cmd *cobra.Command, cfg *Config, logger *zap.Logger) (*shared.Proof, *shared.ProofMetadata, error) {
	key, _ := cmd.Flags().GetString("key")
	if key != "" {
		store, err := persistence.NewStore(cfg.DataDir, logger)
		if err != nil {
			return nil, nil, err
		}
		return store.Load(key)
	}

	witnessHex, _ := cmd.Flags().GetString("witness")
	finalHashHex, _ := cmd.Flags().GetString("final-hash")
	if witnessHex == "" || finalHashHex == "" {
		return nil, nil, errors.New("either --key or both --witness and --final-hash are required")
	}

	witness, err := hex.DecodeString(witnessHex)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --witness: %w", err)
	}
	finalHash, err := hex.DecodeString(finalHashHex)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --final-hash: %w", err)
	}
	input, err := readInput(cmd)
	if err != nil {
		return nil, nil, err
	}

	proof := &shared.Proof{Witness: witness, FinalHash: finalHash}
	meta := &shared.ProofMetadata{
		Input:      input,
		Bits:       cfg.Sloth.Bits,
		Iterations: cfg.Sloth.Iterations,
		Scheme:     cfg.Sloth.Scheme,
	}
	return proof, meta, nil
}
