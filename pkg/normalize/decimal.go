package normalize

import (
	"math/big"
	"strings"

	"github.com/leapstack-labs/multiquery/pkg/core"
)

// ScaledDecimal renders unscaled * 10^exp in plain decimal notation.
func ScaledDecimal(unscaled *big.Int, exp int) string {
	if unscaled == nil {
		return "0"
	}
	digits := new(big.Int).Abs(unscaled).String()
	sign := ""
	if unscaled.Sign() < 0 {
		sign = "-"
	}

	if exp >= 0 {
		if digits == "0" {
			return "0"
		}
		return sign + digits + strings.Repeat("0", exp)
	}

	scale := -exp
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	point := len(digits) - scale
	return sign + digits[:point] + "." + digits[point:]
}

// Decimal renders a scaled integer with the precision rule of
// core.DecimalFromText.
func Decimal(unscaled *big.Int, exp int) core.Value {
	return core.DecimalFromText(ScaledDecimal(unscaled, exp))
}
