package proving

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/shared"
)

func TestGenerate_Reference(t *testing.T) {
	r := require.New(t)

	cfg := config.Config{Bits: 1024, Iterations: 100, Scheme: shared.SchemeReference}
	proof, meta, err := Generate([]byte("testy"), cfg, WithLogger(zaptest.NewLogger(t)))
	r.NoError(err)

	r.Equal("774f053aa4e983e1668aeb7fdff53a3a1217ad03287c2cb4f24333dc48fbd63cf2349f3d84bc532becd1a57b76459cd898598cfc7d1f8a33d784983b0365e6ac1f0c0875522ea0f6223a64fad63b511d64da8a9eb1918884781b30d33bdf81edf19710d8cc172f6fe5ecc6e07aedf22166602075d8644327b8f403fd1df37ac4", hex.EncodeToString(proof.Witness))
	r.Equal("9c0974dc35cd88bd26dfd51685c6a3ba6bce01085241d366bc818d94182aac13103651c4dc66372483393cb02b77fae8a25eed6b6e6c910495a739a442b2a0ad", hex.EncodeToString(proof.FinalHash))

	r.Equal([]byte("testy"), []byte(meta.Input))
	r.EqualValues(1024, meta.Bits)
	r.EqualValues(100, meta.Iterations)
	r.Equal(shared.SchemeReference, meta.Scheme)
}

func TestGenerate_Bound(t *testing.T) {
	r := require.New(t)

	cfg := config.Config{Bits: 1024, Iterations: 100, Scheme: shared.SchemeBound}
	proof, _, err := Generate([]byte("testy"), cfg)
	r.NoError(err)

	r.Equal("0369f9dc143cbf4edc181f8671016c0f305a81ec65e0ee50d00e2f6e15878d06dafc98aa4bf59ed4c98cc5ef795900e34185051277ac4dad9701d820fab9e99303bb9eabf7fba99391976199ddeef7193c5d31c3458cde9e2fba2f5c6fcadd7de95bbae44e9d2bb9cacb3592599d6e03bd0c8569f7d8d7fd2995d868982f120d", hex.EncodeToString(proof.Witness))
	r.Equal("5ef71e1005a507be125b23cf1077cdb987e5468f2257340e32af124ed161e6b997b58543c826932c055d35deafd0316073b072e8d4326dfcd76e147faa48516b", hex.EncodeToString(proof.FinalHash))
}

func TestGenerate_Deterministic(t *testing.T) {
	r := require.New(t)

	cfg := config.Config{Bits: 512, Iterations: 50, Scheme: shared.SchemeReference}
	a, _, err := Generate([]byte("abc"), cfg)
	r.NoError(err)
	b, _, err := Generate([]byte("abc"), cfg)
	r.NoError(err)
	r.Equal(a, b)

	c, _, err := Generate([]byte("abd"), cfg)
	r.NoError(err)
	r.NotEqual(a.Witness, c.Witness)
}

func TestGenerate_ZeroIterations(t *testing.T) {
	r := require.New(t)

	cfg := config.Config{Bits: 512, Iterations: 0, Scheme: shared.SchemeReference}
	proof, _, err := Generate([]byte("testy"), cfg)
	r.NoError(err)
	r.Len(proof.Witness, 64)
}

func TestGenerate_Progress(t *testing.T) {
	r := require.New(t)

	var sum uint64
	cfg := config.Config{Bits: 512, Iterations: 1234, Scheme: shared.SchemeBound}
	_, _, err := Generate([]byte("testy"), cfg, WithProgress(func(delta uint64) { sum += delta }))
	r.NoError(err)
	r.EqualValues(1234, sum)
}

func TestGenerate_InvalidParameters(t *testing.T) {
	tt := []struct {
		name string
		cfg  config.Config
	}{
		{"bits 511", config.Config{Bits: 511, Iterations: 10, Scheme: shared.SchemeReference}},
		{"bits 0", config.Config{Bits: 0, Iterations: 10, Scheme: shared.SchemeReference}},
		{"iterations overflow", config.Config{Bits: 512, Iterations: config.MaxIterations + 1, Scheme: shared.SchemeReference}},
		{"scheme", config.Config{Bits: 512, Iterations: 10, Scheme: "x"}},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			called := false
			_, _, err := Generate([]byte("testy"), tc.cfg, WithProgress(func(uint64) { called = true }))
			require.True(t, errors.Is(err, shared.ErrInvalidParameter))
			require.False(t, called)
		})
	}
}

func TestGenerate_NilLogger(t *testing.T) {
	cfg := config.Config{Bits: 512, Iterations: 1, Scheme: shared.SchemeReference}
	_, _, err := Generate([]byte("testy"), cfg, WithLogger(nil))
	require.ErrorContains(t, err, "`logger` is required")
}

func BenchmarkGenerate(b *testing.B) {
	cfg := config.Config{Bits: 1024, Iterations: 1000, Scheme: shared.SchemeReference}
	for i := 0; i < b.N; i++ {
		_, _, err := Generate([]byte("testy"), cfg)
		require.NoError(b, err)
	}
	b.ReportMetric(float64(cfg.Iterations), "rounds/op")
}
