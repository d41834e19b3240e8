package oracle

// RequestInput contains parameters for a randomness request
type RequestInput struct {
	// Account is the oracle account to draw from
	Account string

	// Authority must match the account's recorded authority
	Authority string

	// Params is opaque caller data mixed into the request
	Params []byte
}

// CreateAccountInput contains parameters for provisioning an oracle account
type CreateAccountInput struct {
	// Payer funds the account and is its initial authority
	Payer string
}

// SetAuthorityInput contains parameters for handing over an account
type SetAuthorityInput struct {
	Account string

	// Current must match the account's recorded authority
	Current string

	Authority string
}
