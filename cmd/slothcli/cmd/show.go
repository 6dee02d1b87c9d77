package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spacemeshos/sloth/persistence"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show stored proofs",
		Long: `Show prints the stored proof with the given --key as json.
Without a key it lists all proofs in the data directory.`,
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

			store, err := persistence.NewStore(cfg.DataDir, logger)
			if err != nil {
				return err
			}

			key, _ := cmd.Flags().GetString("key")
			if key != "" {
				proof, meta, err := store.Load(key)
				if err != nil {
					return fmt.Errorf("failed to load proof %v: %w", key, err)
				}
				return printJSON(cmd.OutOrStdout(), storedProof{Key: key, Proof: *proof, ProofMetadata: *meta})
			}

			keys, err := store.List()
			if err != nil {
				return err
			}

			var data [][]string
			for _, key := range keys {
				_, meta, err := store.Load(key)
				if err != nil {
					data = append(data, []string{key, "", "", "", err.Error()})
					continue
				}
				data = append(data, []string{
					key,
					string(meta.Scheme),
					strconv.FormatUint(uint64(meta.Bits), 10),
					strconv.FormatUint(meta.Iterations, 10),
					meta.Input.String(),
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"key", "scheme", "bits", "iterations", "input"})
			table.SetBorder(false)
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("key", "", "Key of the proof to show")
	return cmd
}
