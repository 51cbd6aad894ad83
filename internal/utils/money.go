package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNaira renders an amount with thousand separators, e.g. "NGN 5,500.00".
// gofpdf core fonts have no naira glyph, so the ISO code is used.
func FormatNaira(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	kobo := int64(math.Round(amount * 100))
	return fmt.Sprintf("%sNGN %s.%02d", sign, formatThousand(kobo/100), kobo%100)
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
