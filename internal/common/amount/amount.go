// Package amount converts between integer ledger units and display text
package amount

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const maxText = 32

var (
	ErrInvalid    = errors.New("amount must be a positive number")
	ErrTooPrecise = errors.New("amount has more decimals than the token supports")
)

// Token describes how a ledger unit is displayed
type Token struct {
	Symbol   string
	Decimals int32
}

// Format renders ledger units, e.g. 250 with 2 decimals is "2.50 FLIP"
func (t Token) Format(units int64) string {
	text := decimal.New(units, -t.Decimals).StringFixed(t.Decimals)
	if t.Symbol == "" {
		return text
	}
	return text + " " + t.Symbol
}

// Parse reads display text into ledger units
func (t Token) Parse(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if t.Symbol != "" {
		text = strings.TrimSpace(strings.TrimSuffix(text, t.Symbol))
	}
	if text == "" || len(text) > maxText {
		return 0, ErrInvalid
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return 0, ErrInvalid
	}

	units := value.Shift(t.Decimals)
	if !units.Equal(units.Truncate(0)) {
		return 0, ErrTooPrecise
	}
	if !units.IsPositive() {
		return 0, ErrInvalid
	}

	return units.IntPart(), nil
}
