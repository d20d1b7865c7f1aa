package extract

import (
	"strings"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
)

// Indicator keywords checked against the combined text for the base
// confidence increment.
var receiptIndicators = []string{
	"receipt", "order", "purchase", "transaction", "payment", "invoice",
}

// Score computes the additive extraction confidence in [0,1]. Each resolved
// field contributes a fixed increment; nothing subtracts. A merchant resolved
// only from the sender domain (or not at all) earns no merchant credit, since
// a domain label says who sent the mail, not who sold the goods.
//
//	merchant (table or pattern)   +0.3
//	amount > 0                    +0.4
//	date not defaulted            +0.1
//	category other than Other     +0.1
//	indicator keyword present     +0.1
func Score(fields PartialFields, combinedText string) float32 {
	var score float32

	if fields.MerchantSource == MerchantFromTable || fields.MerchantSource == MerchantFromPattern {
		score += 0.3
	}
	if fields.Amount > 0 {
		score += 0.4
	}
	if !fields.DateDefaulted {
		score += 0.1
	}
	if fields.Category != "" && fields.Category != constants.Other {
		score += 0.1
	}

	text := strings.ToLower(combinedText)
	for _, kw := range receiptIndicators {
		if strings.Contains(text, kw) {
			score += 0.1
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
