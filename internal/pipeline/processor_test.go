package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
	"github.com/joseph-ayodele/receipt-pipeline/internal/hybrid"
	"github.com/joseph-ayodele/receipt-pipeline/internal/provider"
	"github.com/joseph-ayodele/receipt-pipeline/internal/repository"
)

type stubAcquirer struct {
	outcome hybrid.Outcome
	err     error
	calls   int
}

func (s *stubAcquirer) Acquire(_ context.Context, _ provider.Image) (hybrid.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

func newTestProcessor(t *testing.T, acq Acquirer) (*Processor, repository.Store) {
	t.Helper()
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	p := NewProcessor(acq, store, nil)
	p.Now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return p, store
}

func writeTempReceipt(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receipt.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake-image"), 0o644))
	return path
}

func TestProcessor_ProcessFile(t *testing.T) {
	acq := &stubAcquirer{outcome: hybrid.Outcome{
		Result: entity.AcquisitionResult{
			Success:    true,
			Method:     entity.MethodDocumentAI,
			Confidence: 0.92,
			Text: &entity.RecognizedText{
				FullText: "receipt from amazon total: $25.00 date: 01/15/2026",
			},
		},
	}}
	p, store := newTestProcessor(t, acq)

	receipt, err := p.ProcessFile(context.Background(), writeTempReceipt(t))
	require.NoError(t, err)
	assert.Equal(t, 1, acq.calls)

	assert.Equal(t, "Amazon", receipt.MerchantName)
	assert.InDelta(t, 25.00, receipt.Total, 0.001)
	assert.Equal(t, entity.MethodDocumentAI, receipt.SourceMethod)
	assert.False(t, receipt.UsedFallback)
	assert.False(t, receipt.NeedsReview)
	assert.GreaterOrEqual(t, receipt.Confidence, float32(0.8))

	stored, err := store.GetReceipt(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.MerchantName, stored.MerchantName)
}

func TestProcessor_FallbackProvenanceRecorded(t *testing.T) {
	acq := &stubAcquirer{outcome: hybrid.Outcome{
		UsedFallback: true,
		Result: entity.AcquisitionResult{
			Success:    true,
			Method:     entity.MethodVisionOCR,
			Confidence: 0.4,
			Text:       &entity.RecognizedText{FullText: "illegible scribbles"},
		},
	}}
	p, _ := newTestProcessor(t, acq)

	receipt, err := p.ProcessFile(context.Background(), writeTempReceipt(t))
	require.NoError(t, err)

	assert.True(t, receipt.UsedFallback)
	assert.Equal(t, entity.MethodVisionOCR, receipt.SourceMethod)
	// nothing extracted: below the auto-save gate
	assert.True(t, receipt.NeedsReview)
	assert.LessOrEqual(t, receipt.Confidence, float32(0.2))
}

func TestProcessor_AcquireFailureFailsJob(t *testing.T) {
	acq := &stubAcquirer{err: hybrid.ErrAllProvidersFailed}
	p, store := newTestProcessor(t, acq)

	_, err := p.ProcessFile(context.Background(), writeTempReceipt(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, hybrid.ErrAllProvidersFailed)

	// no receipt rows, and the job carries the failure
	receipts, lerr := store.ListReceipts(context.Background(), repository.ReceiptFilter{})
	require.NoError(t, lerr)
	assert.Empty(t, receipts)
}

func TestProcessor_UnsupportedFormat(t *testing.T) {
	p, _ := newTestProcessor(t, &stubAcquirer{})

	_, err := p.ProcessFile(context.Background(), "/inbox/notes.docx")
	require.Error(t, err)
}

func TestProcessor_ProcessImageUsesSender(t *testing.T) {
	acq := &stubAcquirer{outcome: hybrid.Outcome{
		Result: entity.AcquisitionResult{
			Success:    true,
			Method:     entity.MethodOnDevice,
			Confidence: 0.9,
			Text:       &entity.RecognizedText{FullText: "your purchase total: $5.00"},
		},
	}}
	p, _ := newTestProcessor(t, acq)

	receipt, err := p.ProcessImage(context.Background(),
		provider.Image{Data: []byte("img"), MimeType: "image/png"},
		"noreply@cornerstorefoods.com")
	require.NoError(t, err)

	assert.Equal(t, "Cornerstorefoods", receipt.MerchantName)
	assert.Equal(t, entity.MethodOnDevice, receipt.SourceMethod)
}
