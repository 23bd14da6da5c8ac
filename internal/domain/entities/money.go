package entities

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as US dollars with two decimals, e.g. $5,000.00.
func FormatMoney(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	f, _ := amount.Round(2).Float64()
	return sign + "$" + humanize.FormatFloat("#,###.##", f)
}
