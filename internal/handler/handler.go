// Package handler exposes the prediction lifecycle over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inferd/internal/prediction"
	"inferd/internal/webhook"
)

// Handler carries the shared slot and its collaborators into the gin routes.
type Handler struct {
	Prediction *prediction.Prediction
	Webhook    *webhook.Sender
	Version    string
}

// NewHandler builds the handler set around the worker's single job slot.
func NewHandler(p *prediction.Prediction, sender *webhook.Sender, version string) *Handler {
	return &Handler{
		Prediction: p,
		Webhook:    sender,
		Version:    version,
	}
}

// HealthCheck reports the worker's readiness and the slot's current status.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.Version,
		"slot": gin.H{
			"status": h.Prediction.Status().String(),
			"id":     h.Prediction.ID(),
		},
	})
}
