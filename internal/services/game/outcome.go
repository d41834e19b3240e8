package game

import (
	"encoding/binary"
	"math/bits"

	"github.com/KirkDiggler/coinflip/internal/models"
)

// MapResult reads the first 16 bytes of buffer as a little-endian u128 and
// maps it to [1, maxResult]. A maxResult of 0 is treated as the default.
// The modulo bias of the reduction is accepted.
func MapResult(buffer models.Buffer, maxResult uint64) uint64 {
	if maxResult == 0 {
		maxResult = models.DefaultMaxResult
	}

	lo := binary.LittleEndian.Uint64(buffer[0:8])
	hi := binary.LittleEndian.Uint64(buffer[8:16])
	return bits.Rem64(hi, lo, maxResult) + 1
}

// Parity is the bit the owner's choice is compared against
func Parity(numeric uint64) uint8 {
	return uint8(numeric % 2)
}

// OwnerWins reports whether the owner's choice matches the drawn parity
func OwnerWins(choice models.Choice, parity uint8) bool {
	return uint8(choice) == parity
}

// winnerOf returns the participant entitled to the pot for parity
func winnerOf(game *models.Game, parity uint8) string {
	if OwnerWins(game.OwnerChoice, parity) {
		return game.Owner
	}
	return game.Joinee
}
