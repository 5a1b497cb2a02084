package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuccessResponse(t *testing.T) {
	req := Request{Input: map[string]any{"prompt": "hi"}}

	resp := NewSuccessResponse("p-1", req, "out", 1500*time.Millisecond)

	assert.Equal(t, "p-1", resp.ID)
	assert.Equal(t, StatusSucceeded, resp.Status)
	assert.Equal(t, "out", resp.Output)
	assert.Equal(t, req.Input, resp.Input)
	assert.Empty(t, resp.Error)

	require.NotNil(t, resp.Metrics)
	assert.InDelta(t, 1.5, resp.Metrics["predict_time"], 1e-9)
}

func TestNewErrorResponse(t *testing.T) {
	req := Request{Input: "in"}

	resp := NewErrorResponse("p-2", req, errors.New("model exploded"))

	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, "model exploded", resp.Error)
	assert.Nil(t, resp.Output)
	assert.Equal(t, "in", resp.Input)
}

func TestNewCanceledResponse(t *testing.T) {
	req := Request{Input: "in"}

	resp := NewCanceledResponse("p-3", req)

	assert.Equal(t, StatusCanceled, resp.Status)
	assert.Nil(t, resp.Output)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "in", resp.Input)
}

func TestRequestWantsEvent(t *testing.T) {
	testCases := []struct {
		name    string
		request Request
		event   WebhookEvent
		want    bool
	}{
		{
			name:    "no webhook url",
			request: Request{},
			event:   WebhookEventCompleted,
			want:    false,
		},
		{
			name:    "empty filter means all events",
			request: Request{Webhook: "http://example.com/hook"},
			event:   WebhookEventStart,
			want:    true,
		},
		{
			name: "event in filter",
			request: Request{
				Webhook:             "http://example.com/hook",
				WebhookEventsFilter: []WebhookEvent{WebhookEventCompleted},
			},
			event: WebhookEventCompleted,
			want:  true,
		},
		{
			name: "event not in filter",
			request: Request{
				Webhook:             "http://example.com/hook",
				WebhookEventsFilter: []WebhookEvent{WebhookEventCompleted},
			},
			event: WebhookEventStart,
			want:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.request.WantsEvent(tc.event))
		})
	}
}
