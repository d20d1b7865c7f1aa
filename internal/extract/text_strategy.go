package extract

import (
	"time"

	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// TextStrategy derives every field from the recognized full text with the
// rule tables. It serves the OCR acquisition paths.
type TextStrategy struct {
	// Now is stubbed in tests; nil means time.Now.
	Now func() time.Time
}

func (s TextStrategy) Extract(res entity.AcquisitionResult, originatingAddress string) PartialFields {
	text := res.FullText()
	return ExtractFromText(text, originatingAddress, s.Now)
}

// ExtractFromText runs the full rule set over a combined text. It also backs
// the email path, where the caller passes the lowercased subject+body.
func ExtractFromText(combinedText, originatingAddress string, now func() time.Time) PartialFields {
	merchant, source, merchantCat := ExtractMerchant(combinedText, originatingAddress)

	category := merchantCat
	if category == "" {
		category = ExtractCategory(combinedText, originatingAddress)
	}

	date, defaulted := ExtractDate(combinedText, now)

	return PartialFields{
		Merchant:       merchant,
		MerchantSource: source,
		Amount:         ExtractAmount(combinedText),
		Currency:       ExtractCurrency(combinedText),
		Date:           date,
		DateDefaulted:  defaulted,
		Category:       category,
		Items:          ExtractLineItems(combinedText),
		PaymentMethod:  ExtractPaymentMethod(combinedText),
		TransactionID:  ExtractTransactionID(combinedText),
	}
}

var _ Strategy = TextStrategy{}
