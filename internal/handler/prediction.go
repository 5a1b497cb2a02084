package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"inferd/internal/prediction"
	"inferd/internal/response"
	"inferd/internal/storage"
	"inferd/internal/types"
	"inferd/log"
	apperrors "inferd/pkg/errors"
)

const historyLimit = 200

// CreatePrediction submits a prediction synchronously and answers with its
// terminal response. The id is minted server-side.
func (h *Handler) CreatePrediction(c *gin.Context) {
	var req types.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("CreatePrediction bind error", zap.Error(err))
		response.Error(c, apperrors.NewValidationErrorSet(apperrors.ValidationError{
			Loc:  []string{"body"},
			Msg:  err.Error(),
			Type: "value_error",
		}))
		return
	}

	h.submit(c, uuid.NewString(), req)
}

// CreatePredictionWithID submits a prediction under a caller-chosen id.
func (h *Handler) CreatePredictionWithID(c *gin.Context) {
	var req types.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("CreatePredictionWithID bind error", zap.Error(err))
		response.Error(c, apperrors.NewValidationErrorSet(apperrors.ValidationError{
			Loc:  []string{"body"},
			Msg:  err.Error(),
			Type: "value_error",
		}))
		return
	}

	h.submit(c, c.Param("id"), req)
}

// submit is the single-flight path: claim the slot, run, persist, notify.
func (h *Handler) submit(c *gin.Context, id string, req types.Request) {
	guard := prediction.NewSyncGuard(h.Prediction)
	defer guard.Close()

	if err := guard.Init(id, req); err != nil {
		response.Error(c, err)
		return
	}

	log.GetLogger().Info("prediction submitted", zap.String("id", id))

	starting := types.Response{
		ID:     id,
		Input:  req.Input,
		Status: types.StatusStarting,
	}
	h.Webhook.SendAsync(req, types.WebhookEventStart, starting)

	resp, err := guard.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	resp.Version = h.Version
	if err := storage.SaveRecord(storage.RecordFromResponse(resp, req.Webhook)); err != nil {
		log.GetLogger().Warn("failed to persist prediction record",
			zap.String("id", id), zap.Error(err))
	}
	h.Webhook.SendAsync(req, types.WebhookEventCompleted, resp)

	response.JSON(c, resp)
}

// GetPrediction observes a prediction's outcome by id: a cached or in-flight
// result comes from the slot, anything older from storage.
func (h *Handler) GetPrediction(c *gin.Context) {
	id := c.Param("id")

	resp, err := h.Prediction.WaitFor(c.Request.Context(), id)
	if err == nil {
		resp.Version = h.Version
		response.JSON(c, resp)
		return
	}

	// The slot has moved on; the outcome may still be in history.
	if errors.Is(err, apperrors.ErrUnknown) || errors.Is(err, apperrors.ErrAlreadyRunning) {
		if record, dbErr := storage.GetRecord(id); dbErr == nil {
			stored, convErr := record.ToResponse()
			if convErr != nil {
				log.GetLogger().Error("corrupt prediction record",
					zap.String("id", id), zap.Error(convErr))
				response.Error(c, convErr)
				return
			}
			stored.Version = h.Version
			response.JSON(c, stored)
			return
		}
	}

	response.Error(c, err)
}

// CancelPrediction requests cancellation of the running prediction.
func (h *Handler) CancelPrediction(c *gin.Context) {
	id := c.Param("id")

	if err := h.Prediction.Cancel(id); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, gin.H{"status": types.StatusCanceled.String()})
}

// ListPredictions returns recent prediction history, newest first.
func (h *Handler) ListPredictions(c *gin.Context) {
	records, err := storage.ListRecords(historyLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, gin.H{"predictions": records})
}

// DeletePrediction removes one prediction from history.
func (h *Handler) DeletePrediction(c *gin.Context) {
	id := c.Param("id")

	if _, err := storage.GetRecord(id); err != nil {
		response.Error(c, apperrors.ErrUnknown)
		return
	}

	if err := storage.DeleteRecord(id); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, gin.H{"deleted": id})
}
