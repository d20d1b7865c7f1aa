package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
)

// postJSON sends a JSON request and returns the raw response body. Failures
// are classified for the retry executor: transport errors and 5xx responses
// are transient, 4xx responses are terminal.
func postJSON(ctx context.Context, client *http.Client, providerName, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, common.NewTerminalError(providerName, 0, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, common.NewTerminalError(providerName, 0, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("provider.http.request",
		"req_id", reqID,
		"provider", providerName,
		"content_length", len(bs),
	)

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("provider.http.send_error", "req_id", reqID, "provider", providerName, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewTransientError(providerName, 0, "send request", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			logger.Warn("provider.http.body_close_error", "req_id", reqID, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	logger.Debug("provider.http.response",
		"req_id", reqID,
		"provider", providerName,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode/100 == 2:
		return raw, nil
	case resp.StatusCode >= 500:
		return nil, common.NewTransientError(providerName, resp.StatusCode,
			fmt.Sprintf("server error: %s", truncate(raw, 512)), nil)
	default:
		return nil, common.NewTerminalError(providerName, resp.StatusCode,
			fmt.Sprintf("client error: %s", truncate(raw, 512)), nil)
	}
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
