package derive

// Signer is the authority presented to the ledger when moving funds. A
// derived signer can only be produced from the seeds of the address it
// signs for; an identity signer stands for a caller that was authenticated
// before reaching the engine.
type Signer struct {
	address string
	derived bool
}

// NewSigner re-derives the address from seeds and bump and returns a signer for it
func NewSigner(programID string, bump uint8, seeds ...[]byte) (Signer, error) {
	address, err := CreateProgramAddress(programID, bump, seeds...)
	if err != nil {
		return Signer{}, err
	}
	return Signer{address: address, derived: true}, nil
}

// IdentitySigner returns a signer acting as identity
func IdentitySigner(identity string) Signer {
	return Signer{address: identity}
}

// Address is the address the signer is authorised for
func (s Signer) Address() string {
	return s.address
}

// IsDerived reports whether the signer was produced from seeds
func (s Signer) IsDerived() bool {
	return s.derived
}
