// Package server boots the HTTP worker around a single prediction slot.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inferd/config"
	"inferd/internal/handler"
	"inferd/internal/prediction"
	"inferd/internal/router"
	"inferd/internal/shutdown"
	"inferd/internal/types"
	"inferd/internal/webhook"
	"inferd/log"
)

const drainTimeout = 10 * time.Second

// Run serves the prediction API for the given execution engine until the
// process receives SIGINT or SIGTERM. The shutdown signal fires before the
// listener drains, so an in-flight run is abandoned rather than awaited.
func Run(predictor types.Predictor) error {
	sd := shutdown.New()
	slot := prediction.Setup(predictor, sd)

	sender := webhook.NewSender(webhook.Config{
		RetryCount: config.Conf.Webhook.RetryCount,
		Timeout:    time.Duration(config.Conf.Webhook.TimeoutSeconds) * time.Second,
	})

	hdl := handler.NewHandler(slot, sender, config.Conf.App.Version)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.SetupRouter(engine, hdl)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.GetLogger().Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.GetLogger().Info("shutting down")
		sd.Fire()

		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		return srv.Shutdown(drainCtx)
	})

	return g.Wait()
}
