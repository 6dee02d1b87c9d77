package cmd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/sloth/persistence"
	"github.com/spacemeshos/sloth/shared"
	"github.com/spacemeshos/sloth/task"
)

// storedProof is the json form of a stored proof.
type storedProof struct {
	Key string `json:"key"`
	shared.Proof
	shared.ProofMetadata
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput returns the input given either as text or as hex.
func readInput(cmd *cobra.Command) ([]byte, error) {
	text, _ := cmd.Flags().GetString("input")
	hexText, _ := cmd.Flags().GetString("input-hex")

	switch {
	case text != "" && hexText != "":
		return nil, errors.New("only one of --input and --input-hex can be set")
	case hexText != "":
		input, err := hex.DecodeString(hexText)
		if err != nil {
			return nil, fmt.Errorf("invalid --input-hex: %w", err)
		}
		return input, nil
	default:
		return []byte(text), nil
	}
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "Input message, as text")
	cmd.Flags().String("input-hex", "", "Input message, in hex")
}

// logProgress logs the progress of t every rate percent until t is done.
func logProgress(t *task.Task, rate uint64, logger *zap.Logger) {
	if rate == 0 || t.Total() == 0 {
		return
	}

	next := rate
	for completed := range t.ProgressChan() {
		percent := completed * 100 / t.Total()
		if percent < next {
			continue
		}
		logger.Info(fmt.Sprintf("%s: progress", t.Kind()),
			zap.Uint64("percent", percent),
			zap.Uint64("rounds", completed),
			zap.Uint64("total", t.Total()),
		)
		next = percent - percent%rate + rate
	}
}

func waitTask(t *task.Task, cfg *Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go logProgress(t, cfg.LogRate, logger)

	err := t.Wait(ctx)
	if errors.Is(err, context.Canceled) {
		return errors.New("interrupted")
	}
	return err
}

func newComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a proof for an input",
		Long: `Compute runs the delay function over the input for the configured number of
iterations, stores the resulting proof in the data directory and prints it.`,
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

			input, err := readInput(cmd)
			if err != nil {
				return err
			}

			store, err := persistence.NewStore(cfg.DataDir, logger, persistence.WithMinFreeSpace(cfg.MinFreeSpace))
			if err != nil {
				return err
			}

			logger.Info("cli: computing proof",
				zap.Uint32("bits", cfg.Sloth.Bits),
				zap.Uint64("iterations", cfg.Sloth.Iterations),
				zap.String("scheme", string(cfg.Sloth.Scheme)),
			)
			t := task.Compute(input, cfg.Sloth, task.WithLogger(logger))
			if err := waitTask(t, cfg, logger); err != nil {
				return err
			}

			proof, err := t.Proof()
			if err != nil {
				return err
			}
			key, err := store.Save(proof, t.Metadata())
			if err != nil {
				return err
			}
			logger.Info("cli: proof stored", zap.String("key", key), zap.String("datadir", cfg.DataDir))

			return printJSON(cmd.OutOrStdout(), storedProof{Key: key, Proof: *proof, ProofMetadata: *t.Metadata()})
		},
	}
	addInputFlags(cmd)
	return cmd
}
