// Package webhook delivers lifecycle notifications to the URL supplied with
// a prediction request. Delivery is best effort: failures are logged and
// never propagated into the prediction lifecycle.
package webhook

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"inferd/internal/types"
	"inferd/log"
)

// Sender posts response snapshots to client webhooks.
type Sender struct {
	client *resty.Client
}

// Config controls delivery retries and the per-request timeout.
type Config struct {
	RetryCount int
	Timeout    time.Duration
}

// NewSender builds a sender. Zero config values fall back to sane defaults.
func NewSender(cfg Config) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &Sender{client: client}
}

// Send posts the snapshot to the request's webhook if the event passes the
// request's filter. An empty filter delivers every event.
func (s *Sender) Send(req types.Request, event types.WebhookEvent, resp types.Response) {
	if !req.WantsEvent(event) {
		return
	}

	res, err := s.client.R().
		SetBody(resp).
		Post(req.Webhook)
	if err != nil {
		log.GetLogger().Warn("webhook delivery failed",
			zap.String("id", resp.ID),
			zap.String("event", string(event)),
			zap.String("url", req.Webhook),
			zap.Error(err))
		return
	}

	if res.IsError() {
		log.GetLogger().Warn("webhook rejected",
			zap.String("id", resp.ID),
			zap.String("event", string(event)),
			zap.String("url", req.Webhook),
			zap.Int("status", res.StatusCode()))
		return
	}

	log.GetLogger().Debug("webhook delivered",
		zap.String("id", resp.ID),
		zap.String("event", string(event)))
}

// SendAsync delivers in the background, for callers on a latency-sensitive path.
func (s *Sender) SendAsync(req types.Request, event types.WebhookEvent, resp types.Response) {
	go s.Send(req, event, resp)
}
