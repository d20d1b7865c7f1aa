package entity

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is one purchased item parsed from a receipt. Quantity is a float
// because weighed goods produce fractional quantities. TotalPrice is required
// for a usable item; UnitPrice is derived, never re-parsed. TotalPrice should
// approximate Quantity × UnitPrice but the extractor does not enforce it.
type LineItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	TotalPrice  float64  `json:"total_price"`
	Category    string   `json:"category,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
	Discount    *float64 `json:"discount,omitempty"`
	Tax         *float64 `json:"tax,omitempty"`
}

// ReceiptSchema is the canonical structured record produced by the pipeline.
// Absent amounts are nil, not zero — absence is a valid, expected state.
// Assembly writes the record once per pipeline run; the annotation path
// mutates it only after it has been persisted, so the two writers never race.
type ReceiptSchema struct {
	ID uuid.UUID `json:"id"`

	MerchantName    string `json:"merchant_name"`
	MerchantAddress string `json:"merchant_address,omitempty"`
	MerchantPhone   string `json:"merchant_phone,omitempty"`

	TxDate time.Time `json:"tx_date"`
	// DateDefaulted marks a date that fell back to "now" because nothing
	// parsed; the TxDate value alone cannot express that.
	DateDefaulted bool `json:"date_defaulted,omitempty"`

	Total    float64  `json:"total"`
	Subtotal *float64 `json:"subtotal,omitempty"`
	Tax      *float64 `json:"tax,omitempty"`
	Tip      *float64 `json:"tip,omitempty"`
	Discount *float64 `json:"discount,omitempty"`

	CurrencyCode  string     `json:"currency_code"`
	Items         []LineItem `json:"items,omitempty"`
	Category      string     `json:"category"`
	PaymentMethod string     `json:"payment_method"`
	TransactionID string     `json:"transaction_id,omitempty"`

	RawText      string            `json:"raw_text,omitempty"`
	SourceMethod AcquisitionMethod `json:"source_method"`
	UsedFallback bool              `json:"used_fallback"`

	Confidence       float32 `json:"confidence"`
	NeedsReview      bool    `json:"needs_review"`
	ManuallyVerified bool    `json:"manually_verified"`
	Notes            string  `json:"notes,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}
