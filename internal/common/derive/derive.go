// Package derive computes the deterministic addresses of games, escrows,
// client states and VRF keys from seed material.
//
// A derived address is the base58 encoding of
// sha256(seeds || bump || programID || "ProgramDerivedAddress"), accepted
// only when the digest does not decode to an ed25519 point. Because no
// private key can exist for such an address, the only way to authorise a
// movement of funds it owns is to present the seeds themselves (see Signer).
package derive

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/mr-tron/base58"
	"go.dedis.ch/kyber/v4/suites"
)

const (
	// MaxSeedLength is the longest single seed accepted
	MaxSeedLength = 32

	// MaxSeeds is the maximum number of seeds per address, bump excluded
	MaxSeeds = 15

	pdaMarker = "ProgramDerivedAddress"
)

// Namespace tags
var (
	GameSeed   = []byte("GAME")
	EscrowSeed = []byte("ESCROW")
	StateSeed  = []byte("CLIENTSEED")
	VRFSeed    = []byte("VRF")
)

var (
	ErrEmptyProgramID        = errors.New("program id cannot be empty")
	ErrMaxSeedLengthExceeded = errors.New("seed exceeds maximum length")
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrOnCurve               = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBump          = errors.New("unable to find a viable bump")
)

var suite = suites.MustFind("Ed25519")

// addressCache holds FindProgramAddress results; the bump search is up to
// 256 hashes and curve decodes.
var addressCache *lru.Cache

func init() {
	addressCache, _ = lru.New(10240)
}

type derived struct {
	address string
	bump    uint8
}

// CreateProgramAddress derives the address for seeds and a fixed bump
func CreateProgramAddress(programID string, bump uint8, seeds ...[]byte) (string, error) {
	if err := validate(programID, seeds); err != nil {
		return "", err
	}
	return createAddress(programID, bump, seeds)
}

// FindProgramAddress searches bumps from 255 down and returns the first
// address that lies off the curve
func FindProgramAddress(programID string, seeds ...[]byte) (string, uint8, error) {
	if err := validate(programID, seeds); err != nil {
		return "", 0, err
	}

	key := cacheKey(programID, seeds)
	if value, ok := addressCache.Get(key); ok {
		d := value.(derived)
		return d.address, d.bump, nil
	}

	for bump := 255; bump >= 0; bump-- {
		address, err := createAddress(programID, uint8(bump), seeds)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return "", 0, err
		}
		addressCache.Add(key, derived{address: address, bump: uint8(bump)})
		return address, uint8(bump), nil
	}

	return "", 0, ErrNoViableBump
}

// IdentitySeed turns a participant identity into seed material. Base58
// encoded 32 byte keys are used raw so they fit within MaxSeedLength.
func IdentitySeed(identity string) []byte {
	if decoded, err := base58.Decode(identity); err == nil && len(decoded) == 32 {
		return decoded
	}
	return []byte(identity)
}

// GameSeeds returns the seeds of the game record owned by owner
func GameSeeds(gameID, owner string) [][]byte {
	return [][]byte{GameSeed, []byte(gameID), IdentitySeed(owner)}
}

// EscrowSeeds returns the seeds of the escrow account of a game
func EscrowSeeds(gameID, owner string) [][]byte {
	return [][]byte{EscrowSeed, []byte(gameID), IdentitySeed(owner)}
}

// StateSeeds returns the seeds of the client state bound to an oracle account
func StateSeeds(oracle string) [][]byte {
	return [][]byte{StateSeed, IdentitySeed(oracle)}
}

// VRFSeeds returns the seeds of the VRF key record of a payer
func VRFSeeds(payer string) [][]byte {
	return [][]byte{VRFSeed, IdentitySeed(payer)}
}

func createAddress(programID string, bump uint8, seeds [][]byte) (string, error) {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write([]byte(programID))
	h.Write([]byte(pdaMarker))
	digest := h.Sum(nil)

	if isOnCurve(digest) {
		return "", ErrOnCurve
	}

	return base58.Encode(digest), nil
}

func isOnCurve(b []byte) bool {
	return suite.Point().UnmarshalBinary(b) == nil
}

func validate(programID string, seeds [][]byte) error {
	if programID == "" {
		return ErrEmptyProgramID
	}
	if len(seeds) > MaxSeeds {
		return ErrTooManySeeds
	}
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return fmt.Errorf("seed %d: %w", i, ErrMaxSeedLengthExceeded)
		}
	}
	return nil
}

func cacheKey(programID string, seeds [][]byte) string {
	var sb strings.Builder
	sb.WriteString(programID)
	var n [2]byte
	for _, seed := range seeds {
		binary.BigEndian.PutUint16(n[:], uint16(len(seed)))
		sb.Write(n[:])
		sb.Write(seed)
	}
	return sb.String()
}
