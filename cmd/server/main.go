package main

import (
	"os"

	"go.uber.org/zap"

	"inferd/config"
	"inferd/internal/server"
	"inferd/internal/storage"
	"inferd/log"
)

func main() {
	created, err := config.LoadOrCreateConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log.InitLogger(config.Conf.Log.Dir)
	defer log.GetLogger().Sync()

	if created {
		log.GetLogger().Info("wrote default config")
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid config", zap.Error(err))
		return
	}

	storage.InitDB()

	// Flag rows left mid-run by a previous process.
	if count, err := storage.MarkStaleRecords(); err != nil {
		log.GetLogger().Warn("failed to mark stale records", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("marked stale records as failed", zap.Int64("count", count))
	}

	if err = server.Run(&echoPredictor{}); err != nil {
		log.GetLogger().Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}
