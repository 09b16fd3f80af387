package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/qarzbook/ledgercore/internal/config"
)

// RestyTransport is the default Transport over the upstream REST API.
type RestyTransport struct {
	client *resty.Client
	logger *zap.Logger
}

func NewRestyTransport(cfg config.UpstreamConfig, logger *zap.Logger) *RestyTransport {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.BearerToken != "" {
		client.SetAuthToken(cfg.BearerToken)
	}

	return &RestyTransport{client: client, logger: logger}
}

// Request performs one upstream call and parses the response envelope.
// Responses that are not wrapped in {success, data, message} are tolerated:
// any 2xx body becomes Success=true with the body as Data.
func (t *RestyTransport) Request(ctx context.Context, method, path string, body any) (*Envelope, error) {
	req := t.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		t.logger.Warn("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("upstream %s %s: %w", method, path, err)
	}

	envelope := parseEnvelope(resp.Body())
	envelope.Status = resp.StatusCode()

	if resp.StatusCode() == http.StatusNotFound {
		envelope.Success = false
		if envelope.Message == "" {
			envelope.Message = "not found"
		}
		return envelope, nil
	}
	if resp.StatusCode() >= 400 {
		envelope.Success = false
		if envelope.Message == "" {
			envelope.Message = fmt.Sprintf("upstream returned %d", resp.StatusCode())
		}
		t.logger.Warn("upstream returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", envelope.Message),
		)
	}

	return envelope, nil
}

// parseEnvelope reads the body as an envelope when it looks like one, and
// wraps it otherwise. Older backend revisions return the payload bare.
func parseEnvelope(body []byte) *Envelope {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil {
		if _, hasSuccess := probe["success"]; hasSuccess {
			var env Envelope
			if err := json.Unmarshal(body, &env); err == nil {
				return &env
			}
		}
	}
	return &Envelope{Success: true, Data: append(json.RawMessage(nil), body...)}
}
