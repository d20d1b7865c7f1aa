package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// BuildReceiptJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It validates the map form of a receipt before persistence.
func BuildReceiptJSONSchema() map[string]any {
	categories := make([]string, 0, len(constants.CategoryOrder)+1)
	for _, c := range constants.CategoryOrder {
		categories = append(categories, string(c))
	}
	categories = append(categories, string(constants.Other))

	amountProp := map[string]any{"type": "number", "minimum": 0.0}

	itemProps := map[string]any{
		"name":        map[string]any{"type": "string", "minLength": 1},
		"description": map[string]any{"type": "string"},
		"quantity":    map[string]any{"type": "number", "exclusiveMinimum": 0.0},
		"unit_price":  amountProp,
		"total_price": amountProp,
		"category":    map[string]any{"type": "string"},
		"sku":         map[string]any{"type": "string"},
		"barcode":     map[string]any{"type": "string"},
		"discount":    amountProp,
		"tax":         amountProp,
	}

	props := map[string]any{
		"id":               map[string]any{"type": "string", "minLength": 1},
		"merchant_name":    map[string]any{"type": "string", "minLength": 1},
		"merchant_address": map[string]any{"type": "string"},
		"merchant_phone":   map[string]any{"type": "string"},
		"tx_date":          map[string]any{"type": "string", "format": "date-time"},
		"date_defaulted":   map[string]any{"type": "boolean"},
		"total":            amountProp,
		"subtotal":         amountProp,
		"tax":              amountProp,
		"tip":              amountProp,
		"discount":         amountProp,
		"currency_code":    map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":       "object",
				"properties": itemProps,
				"required":   []string{"name", "quantity", "total_price"},
			},
		},
		"category":          map[string]any{"type": "string", "enum": categories},
		"payment_method":    map[string]any{"type": "string"},
		"transaction_id":    map[string]any{"type": "string"},
		"raw_text":          map[string]any{"type": "string"},
		"source_method":     map[string]any{"type": "string"},
		"used_fallback":     map[string]any{"type": "boolean"},
		"confidence":        map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"needs_review":      map[string]any{"type": "boolean"},
		"manually_verified": map[string]any{"type": "boolean"},
		"notes":             map[string]any{"type": "string"},
		"processed_at":      map[string]any{"type": "string", "format": "date-time"},
	}
	required := []string{
		"id", "merchant_name", "tx_date", "total", "currency_code",
		"category", "source_method", "confidence",
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ToMap converts a receipt to its generic map form, the shape the document
// stores persist. Conversion goes through the JSON codec so field names and
// omit-empty behavior stay in one place (the struct tags).
func ToMap(r entity.ReceiptSchema) (map[string]any, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("receipt to map: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("receipt to map: %w", err)
	}
	return m, nil
}

// FromMap rebuilds a receipt from its map form. Unknown keys are ignored, so
// records written by newer builds still load.
func FromMap(m map[string]any) (entity.ReceiptSchema, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return entity.ReceiptSchema{}, fmt.Errorf("receipt from map: %w", err)
	}
	var r entity.ReceiptSchema
	if err := json.Unmarshal(b, &r); err != nil {
		return entity.ReceiptSchema{}, fmt.Errorf("receipt from map: %w", err)
	}
	return r, nil
}
