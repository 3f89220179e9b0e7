package common

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
)

// DisplayCurrency is the ISO code used for all money rendering.
// The backend reports plain numbers without a currency.
const DisplayCurrency = money.USD

// FormatMoney renders v as "$1,234.56".
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return money.New(int64(math.Round(v*100)), DisplayCurrency).Display()
}

// FormatSignedMoney renders v with an explicit "+" for gains.
func FormatSignedMoney(v float64) string {
	if v > 0 {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

// FormatSignedPct renders v as "+1.23%" / "-1.23%".
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatQuantity renders quantities with the 6 decimals the backend accepts.
func FormatQuantity(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// FormatVolume renders an integer volume with thousands separators.
func FormatVolume(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
