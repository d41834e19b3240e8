package models

import "time"

// VRFKey records the oracle account provisioned for a payer
type VRFKey struct {
	// Address is derived from the payer
	Address string

	// Payer is who provisioned the oracle account
	Payer string

	// Oracle is the provisioned oracle account
	Oracle string

	// CreatedAt is when the key was recorded
	CreatedAt time.Time
}
