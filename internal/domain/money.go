package domain

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// MinorUnits converts a major-unit decimal amount ("1.23", "999") into minor
// units using the multiply-by-100-and-truncate rule. The rule is lossy for
// sub-cent fractions but deterministic, which is what the hash needs.
func MinorUnits(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a decimal number", amount)
	}
	return d.Mul(decimal.NewFromInt(100)).Truncate(0).IntPart(), nil
}

// FormatMinor renders a minor-unit amount the way the wire expects it:
// a plain decimal integer string.
func FormatMinor(minor int64) string {
	return strconv.FormatInt(minor, 10)
}

// FormatFlag renders a boolean wire field. The provider expects "1"/"0",
// decided at field-construction time so re-hashing is deterministic.
func FormatFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
