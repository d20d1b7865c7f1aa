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

const docaiProviderName = "docai"

// DocAIConfig configures the document-understanding client. Endpoint is the
// full processor-specific process URL.
type DocAIConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// DocAIClient is the high-fidelity primary provider: it returns typed
// entities (supplier_name, total_amount, line_item, ...) instead of raw
// geometry, so the entity extraction strategy can skip the regex heuristics.
type DocAIClient struct {
	cfg     DocAIConfig
	http    *http.Client
	exec    *retry.Executor
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

func NewDocAIClient(cfg DocAIConfig, exec *retry.Executor, logger *slog.Logger) *DocAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocAIClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		exec:    exec,
		breaker: retry.NewProviderBreaker(docaiProviderName, logger),
		logger:  logger,
	}
}

func (c *DocAIClient) Name() entity.AcquisitionMethod { return entity.MethodDocumentAI }

// Wire types for the process call.

type docaiRequest struct {
	RawDocument docaiRawDocument `json:"rawDocument"`
}

type docaiRawDocument struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

type docaiResponse struct {
	Document *docaiDocument `json:"document,omitempty"`
	Error    *docaiStatus   `json:"error,omitempty"`
}

type docaiStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type docaiDocument struct {
	Text     string        `json:"text"`
	Entities []docaiEntity `json:"entities,omitempty"`
}

type docaiEntity struct {
	Type        string        `json:"type"`
	MentionText string        `json:"mentionText"`
	Confidence  float32       `json:"confidence"`
	Properties  []docaiEntity `json:"properties,omitempty"`
}

// Acquire sends the image to the processor endpoint and converts the
// response document into an entity list.
func (c *DocAIClient) Acquire(ctx context.Context, img Image) (entity.AcquisitionResult, error) {
	start := time.Now()
	res := entity.AcquisitionResult{Method: entity.MethodDocumentAI}

	content, err := img.Base64()
	if err != nil {
		res.ErrorMessage = err.Error()
		return res, common.NewTerminalError(docaiProviderName, 0, "read image", err)
	}

	body := docaiRequest{
		RawDocument: docaiRawDocument{Content: content, MimeType: img.Mime()},
	}
	headers := map[string]string{}
	if c.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
	}

	var raw []byte
	err = c.exec.Do(ctx, "docai.process", func(ctx context.Context) error {
		var callErr error
		raw, callErr = c.breaker.Execute(func() ([]byte, error) {
			return postJSON(ctx, c.http, docaiProviderName, c.cfg.Endpoint, body, headers, c.logger)
		})
		return callErr
	})
	if err != nil {
		res.ErrorMessage = err.Error()
		res.Duration = time.Since(start)
		return res, err
	}

	entities, text, conf, parseErr := parseDocAIResponse(raw)
	if parseErr != nil {
		res.ErrorMessage = parseErr.Error()
		res.Duration = time.Since(start)
		return res, parseErr
	}

	res.Success = true
	res.Entities = entities
	res.Text = &entity.RecognizedText{FullText: text}
	res.Confidence = conf
	res.Duration = time.Since(start)
	c.logger.Info("docai.acquire.ok",
		"entities", len(entities),
		"chars", len(text),
		"confidence", conf,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// parseDocAIResponse converts the wire document. A missing document or an
// embedded error object is a provider failure for this call.
func parseDocAIResponse(raw []byte) ([]entity.Entity, string, float32, error) {
	var dr docaiResponse
	if err := json.Unmarshal(raw, &dr); err != nil {
		return nil, "", 0, common.NewTerminalError(docaiProviderName, 0, "decode response", err)
	}
	if dr.Error != nil {
		return nil, "", 0, common.NewTerminalError(docaiProviderName, dr.Error.Code, dr.Error.Message, nil)
	}
	if dr.Document == nil {
		return nil, "", 0, common.NewTerminalError(docaiProviderName, 0, "response missing document", nil)
	}

	entities := make([]entity.Entity, 0, len(dr.Document.Entities))
	var confSum float32
	var confN int
	for _, e := range dr.Document.Entities {
		entities = append(entities, convertEntity(e))
		if e.Confidence > 0 {
			confSum += e.Confidence
			confN++
		}
	}
	var conf float32
	if confN > 0 {
		conf = confSum / float32(confN)
	}
	return entities, dr.Document.Text, conf, nil
}

func convertEntity(e docaiEntity) entity.Entity {
	out := entity.Entity{
		Type:        e.Type,
		MentionText: e.MentionText,
		Confidence:  e.Confidence,
	}
	for _, p := range e.Properties {
		out.Properties = append(out.Properties, convertEntity(p))
	}
	return out
}
