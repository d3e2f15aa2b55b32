package asset

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatUSD renders a USD amount rounded to cents, e.g. "$1,234.50".
// Non-finite values render as "n/a"; amounts beyond int64 cents skip the
// thousands grouping.
func FormatUSD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	cents := decimal.NewFromFloat(v).Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return "$" + cents.Shift(-2).StringFixed(2)
	}
	return money.New(cents.IntPart(), money.USD).Display()
}
