package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvailableSpace(t *testing.T) {
	r := require.New(t)

	// Sanity test.
	space := AvailableSpace(t.TempDir())
	r.True(space > 0)
}

func TestValidateSpace(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	r.NoError(ValidateSpace(dir, 1))
	r.ErrorContains(ValidateSpace(dir, 1<<62), "not enough disk space")
}

func TestParameterError(t *testing.T) {
	r := require.New(t)

	var err error = ParameterError{Param: "Bits", Expected: "a positive multiple of 512", Given: "511"}
	r.True(errors.Is(err, ErrInvalidParameter))
	r.EqualError(err, "invalid `Bits`; expected: a positive multiple of 512, given: 511")

	var perr ParameterError
	r.True(errors.As(err, &perr))
	r.Equal("Bits", perr.Param)
}

func TestScheme_Validate(t *testing.T) {
	r := require.New(t)

	r.NoError(SchemeReference.Validate())
	r.NoError(SchemeBound.Validate())

	err := Scheme("wesolowski").Validate()
	r.ErrorIs(err, ErrInvalidParameter)
	r.ErrorContains(err, "Scheme")
}
