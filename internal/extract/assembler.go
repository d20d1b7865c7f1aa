package extract

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// AssembleInput carries everything assembly needs besides the extracted
// fields. Assembly itself stays pure so tests can pin ProcessedAt.
type AssembleInput struct {
	Method       entity.AcquisitionMethod
	UsedFallback bool
	RawText      string
	Confidence   float32
	Now          func() time.Time
}

// Assemble merges extracted fields into the canonical record. NeedsReview is
// set when confidence falls below the auto-save gate; nothing else flips it.
func Assemble(fields PartialFields, in AssembleInput) entity.ReceiptSchema {
	now := in.Now
	if now == nil {
		now = time.Now
	}

	return entity.ReceiptSchema{
		ID: uuid.New(),

		MerchantName:    fields.Merchant,
		MerchantAddress: fields.MerchantAddress,
		MerchantPhone:   fields.MerchantPhone,

		TxDate:        fields.Date,
		DateDefaulted: fields.DateDefaulted,

		Total:    fields.Amount,
		Subtotal: fields.Subtotal,
		Tax:      fields.Tax,
		Tip:      fields.Tip,
		Discount: fields.Discount,

		CurrencyCode:  fields.Currency,
		Items:         fields.Items,
		Category:      string(fields.Category),
		PaymentMethod: fields.PaymentMethod,
		TransactionID: fields.TransactionID,

		RawText:      in.RawText,
		SourceMethod: in.Method,
		UsedFallback: in.UsedFallback,

		Confidence:  in.Confidence,
		NeedsReview: in.Confidence < constants.AutoSaveThreshold,

		ProcessedAt: now(),
	}
}
