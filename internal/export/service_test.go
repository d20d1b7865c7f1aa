package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
	"github.com/joseph-ayodele/receipt-pipeline/internal/repository"
)

func seedStore(t *testing.T) repository.Store {
	t.Helper()
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	receipts := []*entity.ReceiptSchema{
		{
			ID:            uuid.New(),
			MerchantName:  "Starbucks",
			TxDate:        time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Total:         6.40,
			CurrencyCode:  "USD",
			Category:      "Dining",
			PaymentMethod: "Visa",
			SourceMethod:  entity.MethodDocumentAI,
			Confidence:    0.95,
			ProcessedAt:   time.Now().UTC(),
		},
		{
			ID:           uuid.New(),
			MerchantName: "Unknown Merchant",
			TxDate:       time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
			Total:        12.00,
			CurrencyCode: "USD",
			Category:     "Other",
			SourceMethod: entity.MethodVisionOCR,
			UsedFallback: true,
			Confidence:   0.3,
			NeedsReview:  true,
			ProcessedAt:  time.Now().UTC(),
		},
	}
	for _, r := range receipts {
		require.NoError(t, store.SaveReceipt(context.Background(), r))
	}
	return store
}

func TestExportReceiptsXLSX(t *testing.T) {
	svc := NewService(seedStore(t), nil)

	out, err := svc.ExportReceiptsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Receipts")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 receipts

	assert.Equal(t, "Transaction Date", rows[0][0])
	assert.Equal(t, "2026-01-05", rows[1][0])
	assert.Equal(t, "Starbucks", rows[1][1])
	assert.Equal(t, "Dining", rows[1][2])
	assert.Equal(t, "yes", rows[2][8])
}

func TestExportReceiptsXLSX_DateWindow(t *testing.T) {
	svc := NewService(seedStore(t), nil)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	out, err := svc.ExportReceiptsXLSX(context.Background(), &from, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Receipts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Unknown Merchant", rows[1][1])
}
