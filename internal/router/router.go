package router

import (
	"github.com/gin-gonic/gin"

	"inferd/internal/handler"
)

// SetupRouter registers the prediction API on the given engine.
func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	r.GET("/health-check", hdl.HealthCheck)

	predictions := r.Group("/predictions")
	{
		predictions.POST("", hdl.CreatePrediction)
		predictions.GET("", hdl.ListPredictions)
		predictions.PUT("/:id", hdl.CreatePredictionWithID)
		predictions.GET("/:id", hdl.GetPrediction)
		predictions.DELETE("/:id", hdl.DeletePrediction)
		predictions.POST("/:id/cancel", hdl.CancelPrediction)
		predictions.GET("/:id/events", hdl.PredictionEvents)
	}
}
