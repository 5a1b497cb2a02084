package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"inferd/internal/types"
	"inferd/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const eventsPollInterval = 250 * time.Millisecond

type statusEvent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PredictionEvents streams status snapshots for the given prediction over a
// websocket, finishing with the terminal response.
func (h *Handler) PredictionEvents(c *gin.Context) {
	id := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.Prediction.ID() != id {
		_ = conn.WriteJSON(gin.H{"error": "the requested prediction does not exist"})
		return
	}

	// The hijacked request's context outlives the peer, so the read loop is
	// what notices the client going away.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	// Deliver the terminal response as soon as the slot produces it.
	done := make(chan types.Response, 1)
	go func() {
		resp, waitErr := h.Prediction.WaitFor(ctx, id)
		if waitErr == nil {
			done <- resp
		}
		close(done)
	}()

	ticker := time.NewTicker(eventsPollInterval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case resp, ok := <-done:
			if ok {
				_ = conn.WriteJSON(resp)
			}
			return
		case <-ticker.C:
			status := h.Prediction.Status().String()
			if status == last {
				continue
			}
			last = status
			if err := conn.WriteJSON(statusEvent{ID: id, Status: status}); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
