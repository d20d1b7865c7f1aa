// Package extract derives structured receipt fields from recognized text or
// provider-returned entities. Every extractor is a pure function over the
// combined text and originating address; extractors never depend on each
// other's output. A field that cannot be extracted is represented by its
// sentinel (empty string, 0.0 amount, defaulted date), never by an error —
// the pipeline always produces a schema, possibly with many empty fields and
// low confidence.
package extract

import (
	"time"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// MerchantSource records which strategy resolved the merchant name.
type MerchantSource string

const (
	MerchantFromTable   MerchantSource = "table"
	MerchantFromPattern MerchantSource = "pattern"
	MerchantFromDomain  MerchantSource = "domain"
	MerchantUnresolved  MerchantSource = "none"
)

// PartialFields is the strategy-agnostic extraction output. Both strategies
// produce this same shape; only how they derive it differs.
type PartialFields struct {
	Merchant        string
	MerchantSource  MerchantSource
	MerchantAddress string
	MerchantPhone   string

	Amount   float64 // 0.0 is the "not found" sentinel, not a measured zero
	Subtotal *float64
	Tax      *float64
	Tip      *float64
	Discount *float64

	Currency      string
	Date          time.Time
	DateDefaulted bool
	Category      constants.Category
	Items         []entity.LineItem
	PaymentMethod string
	TransactionID string
}

// Strategy turns one acquisition result into PartialFields. The hybrid
// pipeline composes strategies polymorphically rather than branching on the
// acquisition method.
type Strategy interface {
	Extract(res entity.AcquisitionResult, originatingAddress string) PartialFields
}

// StrategyFor picks the strategy matching the acquisition payload: typed
// entities when the document-understanding path produced them, text rules
// otherwise.
func StrategyFor(res entity.AcquisitionResult) Strategy {
	if len(res.Entities) > 0 {
		return EntityStrategy{}
	}
	return TextStrategy{}
}
