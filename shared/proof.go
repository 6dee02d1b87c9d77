package shared

import "fmt"

// Scheme selects the construction used to derive the modulus and to bind the final hash.
type Scheme string

const (
	// SchemeReference derives the modulus from the input and hashes the witness only.
	// Its outputs match the published sloth test vectors.
	SchemeReference Scheme = "reference"

	// SchemeBound derives the modulus from the bit length only and binds the seed,
	// the terminal state and both parameters into the final hash.
	SchemeBound Scheme = "bound"
)

func (s Scheme) Validate() error {
	switch s {
	case SchemeReference, SchemeBound:
		return nil
	}
	return ParameterError{
		Param:    "Scheme",
		Expected: fmt.Sprintf("%q or %q", SchemeReference, SchemeBound),
		Given:    fmt.Sprintf("%q", string(s)),
	}
}

// Proof is the output of a compute call.
type Proof struct {
	Witness   HexBytes `json:"witness"`
	FinalHash HexBytes `json:"final_hash"`
}

// ProofMetadata holds everything besides the proof itself that a verifier needs.
type ProofMetadata struct {
	Input      HexBytes `json:"input"`
	Bits       uint32   `json:"bits"`
	Iterations uint64   `json:"iterations"`
	Scheme     Scheme   `json:"scheme"`
}
