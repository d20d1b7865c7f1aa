package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
)

// Amount patterns in priority order: labeled totals first, then bare dollar
// amounts, then "<n> USD" phrasing. The first capture that parses as a
// positive decimal wins.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:total|amount|sum)\s*[:\s]\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`([\d,]+(?:\.\d{1,2})?)\s*usd\b`),
}

// ExtractAmount returns the receipt total, or 0.0 when no pattern yields a
// positive decimal. The zero is a "not found" sentinel, not a measured
// amount.
func ExtractAmount(combinedText string) float64 {
	text := strings.ToLower(combinedText)
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := parseMoney(m[1]); ok && v > 0 {
				return v
			}
		}
	}
	return 0.0
}

// parseMoney parses a decimal with thousands separators stripped.
func parseMoney(s string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractCurrency sniffs currency symbols and keywords in fixed priority
// order, defaulting to USD.
func ExtractCurrency(combinedText string) string {
	text := strings.ToLower(combinedText)
	for _, c := range constants.CurrencyMarkers {
		if strings.Contains(text, c.Marker) {
			return c.Code
		}
	}
	return constants.DefaultCurrency
}
