package extract

import (
	"strings"
	"time"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// EntityStrategy reads fields directly from the typed entities the
// document-understanding provider returns, instead of regex over raw text.
// Fields the processor did not emit fall back to the text rules over the
// document text, so both strategies always produce the same shape.
type EntityStrategy struct {
	Now func() time.Time
}

func (s EntityStrategy) Extract(res entity.AcquisitionResult, originatingAddress string) PartialFields {
	text := res.FullText()
	fields := ExtractFromText(text, originatingAddress, s.Now)

	for _, e := range res.Entities {
		mention := strings.TrimSpace(e.MentionText)
		if mention == "" && e.Type != "line_item" {
			continue
		}
		switch e.Type {
		case "supplier_name":
			fields.Merchant = mention
			fields.MerchantSource = MerchantFromTable
			// entity-resolved merchants keep the table category when one exists
			if _, _, cat := ExtractMerchant(mention, ""); cat != "" {
				fields.Category = cat
			}
		case "supplier_address":
			fields.MerchantAddress = mention
		case "supplier_phone":
			fields.MerchantPhone = mention
		case "total_amount":
			if v, ok := parseMoney(stripCurrencyNoise(mention)); ok && v > 0 {
				fields.Amount = v
			}
		case "net_amount":
			fields.Subtotal = moneyPtr(mention)
		case "total_tax_amount":
			fields.Tax = moneyPtr(mention)
		case "tip_amount":
			fields.Tip = moneyPtr(mention)
		case "total_discount_amount":
			fields.Discount = moneyPtr(mention)
		case "currency":
			if code := strings.ToUpper(mention); len(code) == 3 {
				fields.Currency = code
			}
		case "receipt_date", "invoice_date":
			if t, defaulted := ExtractDate(mention, s.Now); !defaulted {
				fields.Date = t
				fields.DateDefaulted = false
			}
		case "payment_type":
			if pm := ExtractPaymentMethod(mention); pm != constants.UnknownPaymentMethod {
				fields.PaymentMethod = pm
			} else {
				fields.PaymentMethod = titleCase(strings.ToLower(mention))
			}
		case "receipt_id", "invoice_id":
			fields.TransactionID = strings.ToUpper(mention)
		case "line_item":
			if item, ok := lineItemFromEntity(e); ok {
				fields.Items = append(fields.Items, item)
			}
		}
	}

	// Entities replace, not augment, the regex line-item scan.
	if hasLineItemEntity(res.Entities) {
		fields.Items = lineItemsFromEntities(res.Entities)
	}

	return fields
}

var _ Strategy = EntityStrategy{}

func hasLineItemEntity(entities []entity.Entity) bool {
	for _, e := range entities {
		if e.Type == "line_item" {
			return true
		}
	}
	return false
}

func lineItemsFromEntities(entities []entity.Entity) []entity.LineItem {
	var items []entity.LineItem
	for _, e := range entities {
		if e.Type != "line_item" {
			continue
		}
		if item, ok := lineItemFromEntity(e); ok {
			items = append(items, item)
		}
	}
	return items
}

// lineItemFromEntity unpacks a composite line_item entity's nested
// properties. An item without a total price is unusable and dropped.
func lineItemFromEntity(e entity.Entity) (entity.LineItem, bool) {
	item := entity.LineItem{Quantity: 1}
	for _, p := range e.Properties {
		mention := strings.TrimSpace(p.MentionText)
		switch p.Type {
		case "line_item/description":
			item.Name = mention
		case "line_item/quantity":
			if v, ok := parseMoney(mention); ok && v > 0 {
				item.Quantity = v
			}
		case "line_item/amount":
			if v, ok := parseMoney(stripCurrencyNoise(mention)); ok {
				item.TotalPrice = v
			}
		case "line_item/unit_price":
			if v, ok := parseMoney(stripCurrencyNoise(mention)); ok {
				item.UnitPrice = &v
			}
		case "line_item/product_code":
			item.SKU = mention
		}
	}
	if item.Name == "" && item.TotalPrice == 0 {
		if strings.TrimSpace(e.MentionText) == "" {
			return entity.LineItem{}, false
		}
		item.Name = strings.TrimSpace(e.MentionText)
	}
	if item.TotalPrice == 0 {
		return entity.LineItem{}, false
	}
	if item.UnitPrice == nil {
		unit := item.TotalPrice / item.Quantity
		item.UnitPrice = &unit
	}
	return item, true
}

func moneyPtr(mention string) *float64 {
	if v, ok := parseMoney(stripCurrencyNoise(mention)); ok {
		return &v
	}
	return nil
}

// stripCurrencyNoise drops symbols and codes around a mention amount.
func stripCurrencyNoise(s string) string {
	s = strings.ToLower(s)
	for _, junk := range []string{"$", "€", "£", "¥", "usd", "eur", "gbp", "jpy"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	return strings.TrimSpace(s)
}
