package models

import (
	"encoding/hex"
	"fmt"
)

// Buffer is a 32 byte verified random value
type Buffer [32]byte

// IsZero reports whether the buffer is the "nothing delivered yet" sentinel
func (b Buffer) IsZero() bool {
	return b == Buffer{}
}

// String returns the hex encoding of the buffer
func (b Buffer) String() string {
	return hex.EncodeToString(b[:])
}

// MarshalText encodes the buffer as hex
func (b Buffer) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b[:])), nil
}

// UnmarshalText decodes a hex encoded buffer
func (b *Buffer) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*b = Buffer{}
		return nil
	}
	if hex.DecodedLen(len(text)) != len(b) {
		return fmt.Errorf("buffer must be %d bytes, got %d hex characters", len(b), len(text))
	}
	_, err := hex.Decode(b[:], text)
	return err
}
