package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/persistence"
)

const (
	defaultConfigFileName = "config.toml"
	defaultDataDirName    = "proofs"
	defaultLogLevel       = "info"
	defaultLogRate        = 10
)

var (
	defaultHomeDir    = filepath.Join(smutil.GetUserHomeDirectory(), ".sloth")
	defaultDataDir    = filepath.Join(defaultHomeDir, defaultDataDirName)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFileName)
)

// Config is the effective configuration of a cli invocation.
type Config struct {
	ConfigFile   string `mapstructure:"config"`
	DataDir      string `mapstructure:"datadir"`
	LogLevel     string `mapstructure:"log-level"`
	LogRate      uint64 `mapstructure:"lograte"`
	MinFreeSpace uint64 `mapstructure:"min-free-space"`

	Sloth config.Config `mapstructure:",squash"`
}

func defaultConfig() *Config {
	return &Config{
		DataDir:      defaultDataDir,
		LogLevel:     defaultLogLevel,
		LogRate:      defaultLogRate,
		MinFreeSpace: persistence.DefaultMinFreeSpace,
		Sloth:        *config.DefaultConfig(),
	}
}

func setFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("config", "", "Path to configuration file (toml, yaml or json)")
	flags.String("datadir", cfg.DataDir, "Directory holding stored proofs")
	flags.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.Uint64("lograte", cfg.LogRate, "Log progress every given percent of rounds (0 disables)")
	flags.Uint64("min-free-space", cfg.MinFreeSpace, "Free space in bytes required to store a proof")

	flags.Uint32("bits", cfg.Sloth.Bits, "Bit length of the prime modulus (a multiple of 512)")
	flags.Uint64("iterations", cfg.Sloth.Iterations, "Number of sequential rounds")
	flags.String("scheme", string(cfg.Sloth.Scheme), "Construction to use (reference, bound)")
}

// loadConfig merges defaults, the config file and the command line, in
// increasing order of precedence.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	vip := viper.New()
	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	fileLocation := vip.GetString("config")
	if err := loadConfigFile(fileLocation, vip); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := vip.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.DataDir = smutil.GetCanonicalPath(cfg.DataDir)

	if err := cfg.Sloth.Validate(); err != nil {
		return nil, err
	}
	if cfg.LogRate > 100 {
		return nil, fmt.Errorf("invalid `lograte`; expected: <= 100, given: %d", cfg.LogRate)
	}
	return cfg, nil
}

// loadConfigFile reads fileLocation into vip. Without an explicit location the
// default config file is read if it exists.
func loadConfigFile(fileLocation string, vip *viper.Viper) error {
	if fileLocation == "" {
		if _, err := os.Stat(defaultConfigFile); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		fileLocation = defaultConfigFile
	}

	vip.SetConfigFile(smutil.GetCanonicalPath(fileLocation))
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			spew.Fdump(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}
