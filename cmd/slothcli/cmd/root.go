package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is the version of the binary.
	Version string

	// Commit is the commit hash of the binary.
	Commit string
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slothcli",
		Short: "Compute and verify sloth delay proofs",
		Long: `slothcli computes proofs of sequential work with the sloth verifiable delay function
and verifies them. Computed proofs are kept in the data directory and can be
listed, shown and verified later by their key.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
	}
	setFlags(rootCmd.PersistentFlags(), defaultConfig())

	rootCmd.AddCommand(newComputeCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// Execute runs the cli with the process arguments.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(logLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapCfg.Build()
}
