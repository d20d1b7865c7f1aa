package extract

import (
	"strings"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
)

// ExtractCategory scans the category keyword table in fixed order against
// the combined text plus sender; the first category with any keyword present
// wins, so table order is the tie-break. Defaults to Other.
func ExtractCategory(combinedText, originatingAddress string) constants.Category {
	haystack := strings.ToLower(combinedText) + " " + strings.ToLower(originatingAddress)
	for _, cat := range constants.CategoryOrder {
		for _, kw := range constants.CategoryKeywords[cat] {
			if strings.Contains(haystack, kw) {
				return cat
			}
		}
	}
	return constants.Other
}

// ExtractPaymentMethod sniffs issuer/wallet keywords in fixed priority
// order, defaulting to Unknown.
func ExtractPaymentMethod(combinedText string) string {
	text := strings.ToLower(combinedText)
	for _, pm := range constants.PaymentMethods {
		if strings.Contains(text, pm.Key) {
			return pm.Display
		}
	}
	return constants.UnknownPaymentMethod
}
