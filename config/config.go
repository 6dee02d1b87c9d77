package config

import (
	"fmt"

	"github.com/spacemeshos/sloth/shared"
)

const (
	// BitsAlignment is the granularity of the modulus size: one oracle block.
	BitsAlignment = 512
	MinBits       = BitsAlignment
	MaxBits       = 64 * BitsAlignment

	// MaxIterations is the largest supported delay, the range of a signed 32-bit counter.
	MaxIterations = 1<<31 - 1
)

const (
	DefaultBits       = 2048
	DefaultIterations = 50000
	DefaultScheme     = shared.SchemeReference
)

type Config struct {
	Bits       uint32        `mapstructure:"bits"`
	Iterations uint64        `mapstructure:"iterations"`
	Scheme     shared.Scheme `mapstructure:"scheme"`
}

func (cfg *Config) Validate() error {
	if err := ValidateBits(cfg.Bits); err != nil {
		return err
	}
	if err := ValidateIterations(cfg.Iterations); err != nil {
		return err
	}
	return cfg.Scheme.Validate()
}

// ValidateBits checks that bits is a supported modulus size.
func ValidateBits(bits uint32) error {
	if bits < MinBits {
		return shared.ParameterError{Param: "Bits", Expected: fmt.Sprintf(">= %d", MinBits), Given: bits}
	}
	if bits > MaxBits {
		return shared.ParameterError{Param: "Bits", Expected: fmt.Sprintf("<= %d", MaxBits), Given: bits}
	}
	if bits%BitsAlignment != 0 {
		return shared.ParameterError{
			Param:    "Bits",
			Expected: fmt.Sprintf("evenly divisible by %d", BitsAlignment),
			Given:    bits,
		}
	}
	return nil
}

func ValidateIterations(iterations uint64) error {
	if iterations > MaxIterations {
		return shared.ParameterError{Param: "Iterations", Expected: fmt.Sprintf("<= %d", MaxIterations), Given: iterations}
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Bits:       DefaultBits,
		Iterations: DefaultIterations,
		Scheme:     DefaultScheme,
	}
}
