package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

func TestScore_RichReceipt(t *testing.T) {
	text := "Thank you for your order from Amazon.\nTotal: $42.99\nDate: 01/15/2026"
	fields := ExtractFromText(text, "auto-confirm@amazon.com", fixedNow)

	require.Equal(t, "Amazon", fields.Merchant)
	require.InDelta(t, 42.99, fields.Amount, 0.001)
	require.False(t, fields.DateDefaulted)
	require.Equal(t, constants.Shopping, fields.Category)

	score := Score(fields, text)
	assert.GreaterOrEqual(t, score, float32(0.8))
	assert.LessOrEqual(t, score, float32(1.0))
}

func TestScore_EmptyText(t *testing.T) {
	fields := ExtractFromText("", "", fixedNow)

	require.Equal(t, constants.UnknownMerchant, fields.Merchant)
	require.Zero(t, fields.Amount)
	require.True(t, fields.DateDefaulted)

	assert.LessOrEqual(t, Score(fields, ""), float32(0.2))
}

func TestScore_DomainMerchantEarnsNoMerchantCredit(t *testing.T) {
	// A sender-domain merchant alone must not push a junk text past review.
	fields := ExtractFromText("hello there", "noreply@obscureshop.com", fixedNow)

	require.Equal(t, MerchantFromDomain, fields.MerchantSource)
	assert.LessOrEqual(t, Score(fields, "hello there"), float32(0.2))
}

func TestScore_MonotonicAndBounded(t *testing.T) {
	var prev float32

	steps := []PartialFields{
		{MerchantSource: MerchantUnresolved, DateDefaulted: true, Category: constants.Other},
		{MerchantSource: MerchantFromTable, DateDefaulted: true, Category: constants.Other},
		{MerchantSource: MerchantFromTable, Amount: 10, DateDefaulted: true, Category: constants.Other},
		{MerchantSource: MerchantFromTable, Amount: 10, Category: constants.Other},
		{MerchantSource: MerchantFromTable, Amount: 10, Category: constants.Dining},
	}
	for _, fields := range steps {
		score := Score(fields, "")
		assert.GreaterOrEqual(t, score, prev)
		assert.GreaterOrEqual(t, score, float32(0))
		assert.LessOrEqual(t, score, float32(1))
		prev = score
	}

	full := Score(steps[len(steps)-1], "receipt")
	assert.LessOrEqual(t, full, float32(1.0))
	assert.InDelta(t, 1.0, full, 0.0001)
}

func TestAssemble_NeedsReviewGate(t *testing.T) {
	fields := PartialFields{
		Merchant:       "Starbucks",
		MerchantSource: MerchantFromTable,
		Amount:         6.40,
		Currency:       "USD",
		Date:           fixedNow(),
		Category:       constants.Dining,
	}

	low := Assemble(fields, AssembleInput{
		Method:     entity.MethodVisionOCR,
		Confidence: constants.AutoSaveThreshold - 0.01,
		Now:        fixedNow,
	})
	assert.True(t, low.NeedsReview)

	high := Assemble(fields, AssembleInput{
		Method:     entity.MethodDocumentAI,
		Confidence: constants.AutoSaveThreshold,
		Now:        fixedNow,
	})
	assert.False(t, high.NeedsReview)
	assert.Equal(t, entity.MethodDocumentAI, high.SourceMethod)
	assert.Equal(t, "Starbucks", high.MerchantName)
	assert.True(t, fixedNow().Equal(high.ProcessedAt))
	assert.NotEqual(t, low.ID, high.ID)
}
