package provider

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// Digital PDFs carry a text layer; scanned ones do not. Anything shorter
// than this after trimming is treated as a scan, which we do not rasterize.
const minPDFTextChars = 32

// acquirePDF extracts the digital text layer from a PDF with pdftotext.
// Scanned PDFs without a text layer are rejected with a terminal error.
func (c *TesseractClient) acquirePDF(ctx context.Context, path string) (entity.AcquisitionResult, error) {
	start := time.Now()
	res := entity.AcquisitionResult{Method: entity.MethodOnDevice}

	out, errb, err := c.runner.Run(ctx, c.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		res.ErrorMessage = string(errb)
		res.Duration = time.Since(start)
		return res, common.NewTerminalError(tesseractProviderName, 0, "pdftotext run", err)
	}
	text := string(out)
	if len(strings.TrimSpace(text)) < minPDFTextChars {
		res.ErrorMessage = "pdf has no usable text layer"
		res.Duration = time.Since(start)
		return res, common.NewTerminalError(tesseractProviderName, 0, res.ErrorMessage, nil)
	}

	res.Success = true
	res.Text = &entity.RecognizedText{FullText: text}
	res.Confidence = heuristicConfidence(text)
	res.Duration = time.Since(start)
	c.logger.Info("pdftotext.ok",
		"chars", len(text),
		"pages", 1+strings.Count(text, "\f"),
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// acquireText reads a plain-text receipt (a forwarded email body saved to a
// file) straight into the result. No OCR involved.
func (c *TesseractClient) acquireText(path string, data []byte) (entity.AcquisitionResult, error) {
	start := time.Now()
	res := entity.AcquisitionResult{Method: entity.MethodOnDevice}

	if len(data) == 0 {
		b, err := os.ReadFile(path)
		if err != nil {
			res.ErrorMessage = err.Error()
			return res, common.NewTerminalError(tesseractProviderName, 0, "read text file", err)
		}
		data = b
	}
	text := string(data)

	res.Success = true
	res.Text = &entity.RecognizedText{FullText: text}
	res.Confidence = heuristicConfidence(text)
	res.Duration = time.Since(start)
	return res, nil
}
