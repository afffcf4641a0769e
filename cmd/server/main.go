package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sahith215/AtmosTrack/internal/ml"
	"github.com/sahith215/AtmosTrack/internal/server"
	"github.com/sahith215/AtmosTrack/internal/service"
	"github.com/sahith215/AtmosTrack/pkg/config"
	"github.com/sahith215/AtmosTrack/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer log.Sync()

	log.Info("starting AtmosTrack classifier service",
		zap.String("model_path", cfg.ModelPath),
		zap.String("features_path", cfg.FeaturesPath),
	)

	// Bootstrap a sample artifact when no trained model is mounted
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		log.Warn("model artifact missing, writing sample model", zap.String("path", cfg.ModelPath))
		if err := ml.WriteSampleModel(cfg.ModelPath); err != nil {
			log.Fatal("failed to write sample model", zap.Error(err))
		}
		if err := ml.WriteSampleFeatures(cfg.FeaturesPath); err != nil {
			log.Fatal("failed to write sample feature names", zap.Error(err))
		}
	}

	// Load the model exactly once, before accepting traffic. A metadata
	// mismatch fails here, not at the first request.
	forest, err := ml.Load(cfg.ModelPath)
	if err != nil {
		log.Fatal("failed to load model", zap.Error(err))
	}

	names, err := ml.LoadFeatureNames(cfg.FeaturesPath)
	if err != nil {
		log.Fatal("failed to load feature names", zap.Error(err))
	}
	if err := forest.CheckFeatureNames(names); err != nil {
		log.Fatal("feature names disagree with model artifact", zap.Error(err))
	}

	log.Info("model loaded",
		zap.String("model_version", forest.Metadata.ModelVersion),
		zap.Int("trees", len(forest.Trees)),
		zap.Strings("classes", forest.Metadata.Classes),
		zap.Float64("reported_accuracy", cfg.ModelAccuracy),
	)

	classifier := service.NewClassifier(forest, cfg.ModelAccuracy)
	srv := server.New(cfg.HTTPAddr, classifier, forest.Metadata, cfg.ModelAccuracy, log)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	log.Info("classifier service is running", zap.String("addr", cfg.HTTPAddr))

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	log.Info("shutdown signal received, stopping server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
}
