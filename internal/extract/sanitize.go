package extract

import (
	"log/slog"
	"maps"
	"strings"
)

// receiptMapKeys is the allowed key set of the receipt map form, mirroring
// the JSON schema's properties.
var receiptMapKeys = map[string]struct{}{
	"id": {}, "merchant_name": {}, "merchant_address": {}, "merchant_phone": {},
	"tx_date": {}, "date_defaulted": {},
	"total": {}, "subtotal": {}, "tax": {}, "tip": {}, "discount": {},
	"currency_code": {}, "items": {}, "category": {}, "payment_method": {},
	"transaction_id": {}, "raw_text": {}, "source_method": {}, "used_fallback": {},
	"confidence": {}, "needs_review": {}, "manually_verified": {}, "notes": {},
	"processed_at": {},
}

// SanitizeReceiptMap normalizes a receipt map in place before validation:
//   - drops null and empty-string optionals
//   - coerces integral amounts to float64
//   - trims string fields
//   - removes unknown keys (the schema is additionalProperties: false)
//
// It returns the list of keys it dropped or rewrote for the caller's logs.
func SanitizeReceiptMap(m map[string]any, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}

	dropped := make([]string, 0, 8)

	amountKeys := []string{"total", "subtotal", "tax", "tip", "discount", "confidence"}
	for _, k := range amountKeys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			// already canonical
		case float32:
			m[k] = float64(t)
		case int:
			m[k] = float64(t)
		case int64:
			m[k] = float64(t)
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	trimKeys := []string{
		"merchant_name", "merchant_address", "merchant_phone", "currency_code",
		"category", "payment_method", "transaction_id", "notes",
	}
	for _, k := range trimKeys {
		v, ok := m[k].(string)
		if !ok {
			continue
		}
		s := strings.TrimSpace(v)
		if s == "" {
			delete(m, k)
			dropped = append(dropped, k+"(empty)")
		} else {
			m[k] = s
		}
	}

	if v, ok := m["currency_code"].(string); ok {
		m["currency_code"] = strings.ToUpper(v)
	}

	for k := range maps.Clone(m) {
		if _, ok := receiptMapKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	if len(dropped) > 0 {
		logger.Warn("extract.sanitize.dropped", "keys", dropped)
	}
	return dropped
}
