package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
	"github.com/joseph-ayodele/receipt-pipeline/internal/retry"
)

const visionProviderName = "vision"

// VisionConfig configures the cloud OCR client.
type VisionConfig struct {
	Endpoint   string
	APIKey     string
	MaxResults int
	Timeout    time.Duration
}

// VisionClient is the plain cloud OCR provider: full text detection with
// geometric annotations, no typed entities. It is the fallback tier of the
// hybrid pipeline.
type VisionClient struct {
	cfg     VisionConfig
	http    *http.Client
	exec    *retry.Executor
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

func NewVisionClient(cfg VisionConfig, exec *retry.Executor, logger *slog.Logger) *VisionClient {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		exec:    exec,
		breaker: retry.NewProviderBreaker(visionProviderName, logger),
		logger:  logger,
	}
}

func (c *VisionClient) Name() entity.AcquisitionMethod { return entity.MethodVisionOCR }

// Wire types for the annotate call.

type visionRequest struct {
	Requests []visionAnnotateRequest `json:"requests"`
}

type visionAnnotateRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type visionResponse struct {
	Responses []visionAnnotateResponse `json:"responses"`
}

type visionAnnotateResponse struct {
	Error              *visionStatus          `json:"error,omitempty"`
	TextAnnotations    []visionTextAnnotation `json:"textAnnotations,omitempty"`
	FullTextAnnotation *visionFullText        `json:"fullTextAnnotation,omitempty"`
}

type visionStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type visionTextAnnotation struct {
	Description  string     `json:"description"`
	BoundingPoly visionPoly `json:"boundingPoly"`
}

type visionPoly struct {
	Vertices []visionVertex `json:"vertices"`
}

type visionVertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type visionFullText struct {
	Text  string       `json:"text"`
	Pages []visionPage `json:"pages"`
}

type visionPage struct {
	Blocks []visionBlock `json:"blocks"`
}

type visionBlock struct {
	Confidence  float32      `json:"confidence"`
	BoundingBox visionPoly   `json:"boundingBox"`
	Paragraphs  []visionPara `json:"paragraphs"`
}

type visionPara struct {
	Confidence  float32      `json:"confidence"`
	BoundingBox visionPoly   `json:"boundingBox"`
	Words       []visionWord `json:"words"`
}

type visionWord struct {
	Confidence  float32        `json:"confidence"`
	BoundingBox visionPoly     `json:"boundingBox"`
	Symbols     []visionSymbol `json:"symbols"`
}

type visionSymbol struct {
	Text string `json:"text"`
}

// Acquire sends the image for text detection and converts the annotate
// response into RecognizedText.
func (c *VisionClient) Acquire(ctx context.Context, img Image) (entity.AcquisitionResult, error) {
	start := time.Now()
	res := entity.AcquisitionResult{Method: entity.MethodVisionOCR}

	content, err := img.Base64()
	if err != nil {
		res.ErrorMessage = err.Error()
		return res, common.NewTerminalError(visionProviderName, 0, "read image", err)
	}

	body := visionRequest{
		Requests: []visionAnnotateRequest{{
			Image: visionImage{Content: content},
			Features: []visionFeature{
				{Type: "TEXT_DETECTION", MaxResults: c.cfg.MaxResults},
			},
		}},
	}
	headers := map[string]string{}
	if c.cfg.APIKey != "" {
		headers["X-Goog-Api-Key"] = c.cfg.APIKey
	}

	var raw []byte
	err = c.exec.Do(ctx, "vision.annotate", func(ctx context.Context) error {
		var callErr error
		raw, callErr = c.breaker.Execute(func() ([]byte, error) {
			return postJSON(ctx, c.http, visionProviderName, c.cfg.Endpoint, body, headers, c.logger)
		})
		return callErr
	})
	if err != nil {
		res.ErrorMessage = err.Error()
		res.Duration = time.Since(start)
		return res, err
	}

	text, conf, parseErr := parseVisionResponse(raw)
	if parseErr != nil {
		res.ErrorMessage = parseErr.Error()
		res.Duration = time.Since(start)
		return res, parseErr
	}

	res.Success = true
	res.Text = text
	res.Confidence = conf
	res.Duration = time.Since(start)
	c.logger.Info("vision.acquire.ok",
		"chars", len(text.FullText),
		"blocks", len(text.Blocks),
		"confidence", conf,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// parseVisionResponse converts the wire response. A missing response element
// or an embedded error object counts as a provider failure, not a crash.
func parseVisionResponse(raw []byte) (*entity.RecognizedText, float32, error) {
	var vr visionResponse
	if err := json.Unmarshal(raw, &vr); err != nil {
		return nil, 0, common.NewTerminalError(visionProviderName, 0, "decode response", err)
	}
	if len(vr.Responses) == 0 {
		return nil, 0, common.NewTerminalError(visionProviderName, 0, "empty response list", nil)
	}
	first := vr.Responses[0]
	if first.Error != nil {
		return nil, 0, common.NewTerminalError(visionProviderName, first.Error.Code, first.Error.Message, nil)
	}
	if len(first.TextAnnotations) == 0 && first.FullTextAnnotation == nil {
		return nil, 0, common.NewTerminalError(visionProviderName, 0, "no text annotations", nil)
	}

	if first.FullTextAnnotation != nil && len(first.FullTextAnnotation.Pages) > 0 {
		text, conf := fromFullTextAnnotation(first.FullTextAnnotation)
		return text, conf, nil
	}
	return fromTextAnnotations(first.TextAnnotations)
}

func fromFullTextAnnotation(ft *visionFullText) (*entity.RecognizedText, float32) {
	out := &entity.RecognizedText{FullText: ft.Text}
	var confSum float32
	var confN int
	for _, page := range ft.Pages {
		for _, b := range page.Blocks {
			block := entity.TextBlock{
				Bounds:     polyToRect(b.BoundingBox),
				Confidence: b.Confidence,
			}
			if b.Confidence > 0 {
				confSum += b.Confidence
				confN++
			}
			for _, p := range b.Paragraphs {
				line := entity.TextLine{
					Bounds:     polyToRect(p.BoundingBox),
					Confidence: p.Confidence,
				}
				for _, w := range p.Words {
					var word []byte
					for _, s := range w.Symbols {
						word = append(word, s.Text...)
					}
					line.Elements = append(line.Elements, entity.TextElement{
						Text:       string(word),
						Bounds:     polyToRect(w.BoundingBox),
						Confidence: w.Confidence,
					})
					if line.Text != "" {
						line.Text += " "
					}
					line.Text += string(word)
				}
				block.Lines = append(block.Lines, line)
				if block.Text != "" {
					block.Text += "\n"
				}
				block.Text += line.Text
			}
			out.Blocks = append(out.Blocks, block)
		}
	}
	conf := heuristicConfidence(ft.Text)
	if confN > 0 {
		conf = confSum / float32(confN)
	}
	return out, conf
}

// fromTextAnnotations handles the legacy shape: annotation 0 carries the
// full text, the rest are per-word boxes without confidence.
func fromTextAnnotations(anns []visionTextAnnotation) (*entity.RecognizedText, float32, error) {
	full := anns[0].Description
	block := entity.TextBlock{
		Text:   full,
		Bounds: polyToRect(anns[0].BoundingPoly),
	}
	line := entity.TextLine{Text: full, Bounds: block.Bounds}
	for _, a := range anns[1:] {
		line.Elements = append(line.Elements, entity.TextElement{
			Text:   a.Description,
			Bounds: polyToRect(a.BoundingPoly),
		})
	}
	block.Lines = []entity.TextLine{line}
	out := &entity.RecognizedText{FullText: full, Blocks: []entity.TextBlock{block}}
	return out, heuristicConfidence(full), nil
}

func polyToRect(p visionPoly) entity.Rect {
	if len(p.Vertices) == 0 {
		return entity.Rect{}
	}
	minX, minY := p.Vertices[0].X, p.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range p.Vertices[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return entity.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
