package config_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/shared"
)

func TestDefaultConfig(t *testing.T) {
	r := require.New(t)

	cfg := config.DefaultConfig()
	r.NoError(cfg.Validate())
	r.EqualValues(2048, cfg.Bits)
	r.EqualValues(50000, cfg.Iterations)
	r.Equal(shared.SchemeReference, cfg.Scheme)
}

func TestValidate(t *testing.T) {
	tt := []struct {
		name  string
		cfg   config.Config
		valid bool
	}{
		{"minimal", config.Config{Bits: 512, Iterations: 0, Scheme: shared.SchemeReference}, true},
		{"bound", config.Config{Bits: 1024, Iterations: 100, Scheme: shared.SchemeBound}, true},
		{"max", config.Config{Bits: config.MaxBits, Iterations: config.MaxIterations, Scheme: shared.SchemeBound}, true},
		{"bits zero", config.Config{Bits: 0, Scheme: shared.SchemeReference}, false},
		{"bits unaligned", config.Config{Bits: 511, Scheme: shared.SchemeReference}, false},
		{"bits unaligned above", config.Config{Bits: 1000, Scheme: shared.SchemeReference}, false},
		{"bits too large", config.Config{Bits: config.MaxBits + config.BitsAlignment, Scheme: shared.SchemeReference}, false},
		{"iterations too large", config.Config{Bits: 512, Iterations: config.MaxIterations + 1, Scheme: shared.SchemeReference}, false},
		{"unknown scheme", config.Config{Bits: 512, Scheme: "wesolowski"}, false},
		{"empty scheme", config.Config{Bits: 512}, false},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.valid {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, shared.ErrInvalidParameter))
		})
	}
}

func TestValidateBits_Message(t *testing.T) {
	err := config.ValidateBits(511)
	require.EqualError(t, err, "invalid `Bits`; expected: >= 512, given: 511")

	err = config.ValidateBits(1000)
	require.EqualError(t, err, "invalid `Bits`; expected: evenly divisible by 512, given: 1000")
}
