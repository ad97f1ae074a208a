package views

import (
	"strconv"
	"strings"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// FormatPrice renders a decimal price string ("1299.5") as "$1,299.50". Empty or
// unparsable amounts render as "".
func FormatPrice(amount, currency string) string {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return ""
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return ""
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	minor := int64(v*100 + 0.5)
	out := thousandSep(minor/100) + "." + twoDigits(minor%100)
	if currency == "JPY" {
		out = thousandSep((minor + 50) / 100)
	}
	if sym, ok := currencySymbols[currency]; ok {
		out = sym + out
	} else {
		out = currency + " " + out
	}
	if neg {
		return "-" + out
	}
	return out
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

func thousandSep(n int64) string {
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
