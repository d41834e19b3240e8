package models

import "time"

// Transfer records one movement of funds on the escrow ledger
type Transfer struct {
	ID        string
	From      string
	To        string
	Amount    int64
	Authority string
	Timestamp time.Time
}
