package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when bits or iterations are outside their valid range.
	// It is always raised before any round of the chain executes.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrMalformedWitness is returned when a witness has the wrong length or decodes outside of [0, p).
	ErrMalformedWitness = errors.New("malformed witness")

	// ErrInvalidProof is returned when a well-formed proof does not verify.
	ErrInvalidProof = errors.New("invalid proof")

	// ErrProofNotExist is returned when no stored proof matches a key.
	ErrProofNotExist = errors.New("proof doesn't exist")

	// ErrNotCompleted is returned when results of a running task are requested.
	ErrNotCompleted = errors.New("not completed")
)

// ParameterError describes which parameter was rejected and why.
// It matches ErrInvalidParameter with errors.Is.
type ParameterError struct {
	Param    string
	Expected string
	Given    any
}

func (err ParameterError) Error() string {
	return fmt.Sprintf("invalid `%v`; expected: %v, given: %v", err.Param, err.Expected, err.Given)
}

func (err ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
