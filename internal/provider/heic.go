package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
)

// convertHEIC converts a HEIC/HEIF image to PNG so tesseract can read it.
// The configured converter wins; otherwise the usual suspects are tried in
// order (heif-convert ships with libheif, magick and sips are fallbacks on
// systems that have them). Returns the PNG path and a cleanup func.
func (c *TesseractClient) convertHEIC(ctx context.Context, path string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "rp-heic-*")
	if err != nil {
		return "", nil, common.NewTerminalError(tesseractProviderName, 0, "heic temp dir", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "converted.png")

	candidates := [][]string{
		{"heif-convert", path, out},
		{"magick", path, out},
		{"sips", "-s", "format", "png", path, "--out", out},
	}
	if c.cfg.HeicConverter != "" {
		candidates = [][]string{{c.cfg.HeicConverter, path, out}}
	}

	var lastErr error
	for _, cand := range candidates {
		_, errb, err := c.runner.Run(ctx, cand[0], cand[1:]...)
		if err != nil {
			lastErr = fmt.Errorf("%s: %s: %w", cand[0], truncate(errb, 256), err)
			continue
		}
		if fi, err := os.Stat(out); err == nil && fi.Size() > 0 {
			c.logger.Info("heic.convert.ok", "converter", cand[0], "bytes", fi.Size())
			return out, cleanup, nil
		}
		lastErr = fmt.Errorf("%s produced no output", cand[0])
	}
	cleanup()
	return "", nil, common.NewTerminalError(tesseractProviderName, 0, "heic conversion failed", lastErr)
}
