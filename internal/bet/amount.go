// internal/bet/amount.go
package bet

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxUint256 is the largest value a uint256 contract argument can hold.
// It is also the allowance requested by an approval.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Inputs with more fractional digits than this cannot be valid for a token
// with at most 255 decimals.
const minInputExponent = -256

// NormalizeAmount parses a user-entered decimal string into base units of a
// token with the given precision. It never fails: empty, malformed, negative,
// over-precise or overflowing input, and an unknown precision, all yield zero.
func NormalizeAmount(raw string, precision *uint8) *big.Int {
	raw = strings.TrimSpace(raw)
	if raw == "" || precision == nil {
		return new(big.Int)
	}

	if !isPlainDecimal(raw) {
		return new(big.Int)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return new(big.Int)
	}
	if d.Sign() <= 0 || d.Exponent() < minInputExponent {
		return new(big.Int)
	}

	scaled := d.Shift(int32(*precision))
	if !scaled.Equal(scaled.Truncate(0)) {
		// more fractional digits than the token supports
		return new(big.Int)
	}

	units := scaled.BigInt()
	if units.Cmp(MaxUint256) > 0 {
		return new(big.Int)
	}
	return units
}

// isPlainDecimal accepts digits with at most one '.', and at least one digit.
// Signs and exponents ("+5", "1e3") are rejected.
func isPlainDecimal(raw string) bool {
	dots, digits := 0, 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// FormatUnits renders base units as a decimal string with trailing zeros
// trimmed. A nil amount renders as "...".
func FormatUnits(amount *big.Int, precision uint8) string {
	if amount == nil {
		return "..."
	}
	return decimal.NewFromBigInt(amount, -int32(precision)).String()
}

func isZero(amount *big.Int) bool {
	return amount == nil || amount.Sign() == 0
}
