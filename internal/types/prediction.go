package types

import (
	"context"
	"time"

	"github.com/samber/lo"
)

// WebhookEvent selects which lifecycle notifications a client wants delivered.
type WebhookEvent string

const (
	WebhookEventStart     WebhookEvent = "start"
	WebhookEventOutput    WebhookEvent = "output"
	WebhookEventLogs      WebhookEvent = "logs"
	WebhookEventCompleted WebhookEvent = "completed"
)

// Request is a prediction submission. Immutable once stored in the slot; the
// input is echoed verbatim into the response.
type Request struct {
	Webhook             string         `json:"webhook,omitempty"`
	WebhookEventsFilter []WebhookEvent `json:"webhook_events_filter,omitempty"`
	OutputFilePrefix    string         `json:"output_file_prefix,omitempty"`

	Input any `json:"input"`
}

// WantsEvent reports whether the request asked for a given webhook event. An
// absent filter means every event.
func (r Request) WantsEvent(event WebhookEvent) bool {
	if r.Webhook == "" {
		return false
	}
	if len(r.WebhookEventsFilter) == 0 {
		return true
	}
	return lo.Contains(r.WebhookEventsFilter, event)
}

// Response is a terminal or near-terminal snapshot of a prediction. Once built
// by a terminal transition it is immutable and freely copyable across waiters.
type Response struct {
	ID      string `json:"id,omitempty"`
	Input   any    `json:"input,omitempty"`
	Output  any    `json:"output,omitempty"`
	Version string `json:"version,omitempty"`

	CreatedAt   *time.Time `json:"created_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Logs    string         `json:"logs"`
	Status  Status         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

func newResponse(id string, req Request, status Status) Response {
	now := time.Now().UTC()
	return Response{
		ID:          id,
		Input:       req.Input,
		Status:      status,
		StartedAt:   &now,
		CompletedAt: &now,
	}
}

// NewSuccessResponse builds the terminal snapshot for a completed run,
// recording the engine's wall time as the predict_time metric in seconds.
func NewSuccessResponse(id string, req Request, output any, predictTime time.Duration) Response {
	resp := newResponse(id, req, StatusSucceeded)
	resp.Output = output
	resp.Metrics = map[string]any{
		"predict_time": predictTime.Seconds(),
	}
	return resp
}

// NewErrorResponse builds the terminal snapshot for a failed run. The engine
// error is surfaced as text, not as a structured error.
func NewErrorResponse(id string, req Request, err error) Response {
	resp := newResponse(id, req, StatusFailed)
	resp.Error = err.Error()
	return resp
}

// NewCanceledResponse builds the terminal snapshot for a canceled run. No
// output, no error text.
func NewCanceledResponse(id string, req Request) Response {
	return newResponse(id, req, StatusCanceled)
}

// Predictor is the execution engine plugged in at setup. Implementations run
// the actual model code; the lifecycle depends only on this interface.
//
// Predict must observe ctx and return promptly once it is canceled; the
// runner cancels ctx when either the prediction is canceled out-of-band or
// the process begins shutting down.
type Predictor interface {
	// Validate checks the decoded input before a run. A failure is reported
	// as a *errors.ValidationErrorSet carrying field-level locations.
	Validate(input any) error

	// Predict runs the input and returns the output value.
	Predict(ctx context.Context, input any) (any, error)
}
