package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

const tesseractProviderName = "tesseract"

// TesseractConfig configures the on-device recognizer.
type TesseractConfig struct {
	Binary        string // binary name or absolute path; if empty -> "tesseract"
	Lang          string // default "eng"
	TessdataDir   string
	PSM           int    // 6 is good for a uniform block of text
	OEM           int    // 1 = LSTM; leave 0 to use default
	Pdftotext     string // text-layer extraction for digital PDFs; default "pdftotext"
	HeicConverter string // optional explicit HEIC converter binary
}

// TesseractClient is the on-device recognizer: no network, runs the
// tesseract binary in TSV mode and rebuilds the block → line → element
// hierarchy with per-word confidences from its output.
type TesseractClient struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractClient(cfg TesseractConfig, logger *slog.Logger) *TesseractClient {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractClient{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (c *TesseractClient) Name() entity.AcquisitionMethod { return entity.MethodOnDevice }

// Acquire dispatches on the source type: plain text is read directly, digital
// PDFs go through pdftotext, HEIC is converted to PNG first, and everything
// else is OCRed by tesseract in TSV mode. In-memory images are spilled to a
// temp file because the external tools want a path.
func (c *TesseractClient) Acquire(ctx context.Context, img Image) (entity.AcquisitionResult, error) {
	start := time.Now()
	res := entity.AcquisitionResult{Method: entity.MethodOnDevice}

	mime := img.Mime()
	if mime == "text/plain" {
		return c.acquireText(img.Path, img.Data)
	}

	path := img.Path
	if path == "" {
		tmp, err := os.CreateTemp("", "rp-ocr-*"+extForMime(mime))
		if err != nil {
			res.ErrorMessage = err.Error()
			return res, common.NewTerminalError(tesseractProviderName, 0, "spill image", err)
		}
		defer func() { _ = os.Remove(tmp.Name()) }()
		if _, err := tmp.Write(img.Data); err != nil {
			_ = tmp.Close()
			res.ErrorMessage = err.Error()
			return res, common.NewTerminalError(tesseractProviderName, 0, "spill image", err)
		}
		_ = tmp.Close()
		path = tmp.Name()
	}

	switch mime {
	case "application/pdf":
		return c.acquirePDF(ctx, path)
	case "image/heic", "image/heif":
		converted, cleanup, err := c.convertHEIC(ctx, path)
		if err != nil {
			res.ErrorMessage = err.Error()
			res.Duration = time.Since(start)
			return res, err
		}
		defer cleanup()
		path = converted
	}

	out, errb, err := c.runner.Run(ctx, c.cfg.Binary, c.tesseractArgs(path)...)
	if err != nil {
		res.ErrorMessage = string(errb)
		res.Duration = time.Since(start)
		return res, common.NewTerminalError(tesseractProviderName, 0, "tesseract run", err)
	}

	text := parseTSV(string(out))
	res.Success = true
	res.Text = text
	res.Confidence = blendConfidence(text)
	res.Duration = time.Since(start)
	c.logger.Info("tesseract.acquire.ok",
		"chars", len(text.FullText),
		"blocks", len(text.Blocks),
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (c *TesseractClient) tesseractArgs(path string) []string {
	args := []string{path, "stdout", "-l", c.cfg.Lang}
	if c.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", c.cfg.PSM))
	}
	if c.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", c.cfg.OEM))
	}
	if c.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", c.cfg.TessdataDir)
	}
	return append(args, "tsv")
}

// parseTSV rebuilds the recognition hierarchy from tesseract TSV output.
// Columns: level page block par line word left top width height conf text;
// level 2 opens a block, 4 a line, 5 is a word. conf -1 marks non-word rows.
func parseTSV(tsv string) *entity.RecognizedText {
	out := &entity.RecognizedText{}
	var full strings.Builder

	var block *entity.TextBlock
	var line *entity.TextLine

	flushLine := func() {
		if line == nil || block == nil {
			return
		}
		line.Confidence = meanElementConf(line.Elements)
		block.Lines = append(block.Lines, *line)
		if block.Text != "" {
			block.Text += "\n"
		}
		block.Text += line.Text
		line = nil
	}
	flushBlock := func() {
		flushLine()
		if block == nil {
			return
		}
		var sum float32
		var n int
		for _, l := range block.Lines {
			if l.Confidence > 0 {
				sum += l.Confidence
				n++
			}
		}
		if n > 0 {
			block.Confidence = sum / float32(n)
		}
		out.Blocks = append(out.Blocks, *block)
		block = nil
	}

	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		level, _ := strconv.Atoi(cols[0])
		left, _ := strconv.Atoi(cols[6])
		top, _ := strconv.Atoi(cols[7])
		width, _ := strconv.Atoi(cols[8])
		height, _ := strconv.Atoi(cols[9])
		bounds := entity.Rect{X: left, Y: top, Width: width, Height: height}

		switch level {
		case 2:
			flushBlock()
			block = &entity.TextBlock{Bounds: bounds}
		case 4:
			flushLine()
			line = &entity.TextLine{Bounds: bounds}
		case 5:
			word := cols[11]
			if strings.TrimSpace(word) == "" {
				continue
			}
			var conf float32
			if v, err := strconv.ParseFloat(cols[10], 64); err == nil && v >= 0 {
				conf = float32(v / 100.0)
			}
			if block == nil {
				block = &entity.TextBlock{Bounds: bounds}
			}
			if line == nil {
				line = &entity.TextLine{Bounds: bounds}
			}
			line.Elements = append(line.Elements, entity.TextElement{
				Text:       word,
				Bounds:     bounds,
				Confidence: conf,
			})
			if line.Text != "" {
				line.Text += " "
			}
			line.Text += word
			if full.Len() > 0 {
				full.WriteByte(' ')
			}
			full.WriteString(word)
		}
	}
	flushBlock()

	out.FullText = full.String()
	return out
}

func meanElementConf(els []entity.TextElement) float32 {
	var sum float32
	var n int
	for _, e := range els {
		if e.Confidence > 0 {
			sum += e.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// blendConfidence weights measured word confidence over the text heuristic
// when TSV confidences are available.
func blendConfidence(text *entity.RecognizedText) float32 {
	var sum float32
	var n int
	for _, b := range text.Blocks {
		for _, l := range b.Lines {
			for _, e := range l.Elements {
				if e.Confidence > 0 {
					sum += e.Confidence
					n++
				}
			}
		}
	}
	heur := heuristicConfidence(text.FullText)
	if n == 0 {
		return heur
	}
	conf := 0.7*(sum/float32(n)) + 0.3*heur
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

func extForMime(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	case "image/heic", "image/heif":
		return ".heic"
	default:
		return ".jpg"
	}
}

// SetRunner replaces the command runner; tests use this to stub tesseract.
func (c *TesseractClient) SetRunner(r Runner) { c.runner = r }
