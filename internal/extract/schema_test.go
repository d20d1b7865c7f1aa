package extract

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

func sampleReceipt() entity.ReceiptSchema {
	unit := 7.50
	tax := 1.23
	return entity.ReceiptSchema{
		ID:            uuid.New(),
		MerchantName:  "Whole Foods",
		TxDate:        fixedNow(),
		Total:         16.23,
		Tax:           &tax,
		CurrencyCode:  "USD",
		Category:      "Groceries",
		PaymentMethod: "Visa",
		Items: []entity.LineItem{
			{Name: "Coffee Beans", Quantity: 2, UnitPrice: &unit, TotalPrice: 15.00},
		},
		SourceMethod: entity.MethodDocumentAI,
		Confidence:   0.9,
		ProcessedAt:  fixedNow(),
	}
}

func TestReceiptMapRoundTrip(t *testing.T) {
	original := sampleReceipt()

	m, err := ToMap(original)
	require.NoError(t, err)
	restored, err := FromMap(m)
	require.NoError(t, err)

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.MerchantName, restored.MerchantName)
	assert.True(t, original.TxDate.Equal(restored.TxDate))
	assert.InDelta(t, original.Total, restored.Total, 0.01)
	require.NotNil(t, restored.Tax)
	assert.InDelta(t, *original.Tax, *restored.Tax, 0.01)
	assert.Equal(t, original.CurrencyCode, restored.CurrencyCode)
	assert.Equal(t, original.Category, restored.Category)
	assert.Equal(t, original.SourceMethod, restored.SourceMethod)
	assert.InDelta(t, float64(original.Confidence), float64(restored.Confidence), 0.0001)

	require.Len(t, restored.Items, 1)
	assert.Equal(t, original.Items[0].Name, restored.Items[0].Name)
	assert.InDelta(t, original.Items[0].TotalPrice, restored.Items[0].TotalPrice, 0.01)
	require.NotNil(t, restored.Items[0].UnitPrice)
	assert.InDelta(t, *original.Items[0].UnitPrice, *restored.Items[0].UnitPrice, 0.01)
}

func TestReceiptMapValidates(t *testing.T) {
	m, err := ToMap(sampleReceipt())
	require.NoError(t, err)

	SanitizeReceiptMap(m, nil)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.NoError(t, ValidateJSONAgainstSchema(BuildReceiptJSONSchema(), b))
}

func TestSanitizeReceiptMap(t *testing.T) {
	m := map[string]any{
		"id":            "abc",
		"merchant_name": "  Target  ",
		"total":         12,
		"tax":           nil,
		"currency_code": "usd",
		"llm_notes":     "stray",
	}

	dropped := SanitizeReceiptMap(m, nil)

	assert.Equal(t, "Target", m["merchant_name"])
	assert.Equal(t, float64(12), m["total"])
	assert.Equal(t, "USD", m["currency_code"])
	assert.NotContains(t, m, "tax")
	assert.NotContains(t, m, "llm_notes")
	assert.NotEmpty(t, dropped)
}

func TestValidateRejectsBadReceipt(t *testing.T) {
	m, err := ToMap(sampleReceipt())
	require.NoError(t, err)
	m["category"] = "NotACategory"
	delete(m, "merchant_name")

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Error(t, ValidateJSONAgainstSchema(BuildReceiptJSONSchema(), b))
}
