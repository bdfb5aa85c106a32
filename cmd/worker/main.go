// Package main runs the background render worker (certificate PDF + QR to S3)
// as a standalone process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/certivault/backend/config"
	"github.com/certivault/backend/internal/pdfrender"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/internal/worker"
	"github.com/certivault/backend/pkg/kv"
	"github.com/certivault/backend/pkg/queue"
	"github.com/certivault/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	if cfg.Redis.Addr == "" {
		logger.Fatal("REDIS_ADDR is required: the worker dequeues jobs from Redis")
	}

	ctx := context.Background()
	redisKV, err := kv.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer redisKV.Close()

	domainStore := store.New(redisKV, logger)
	if err := domainStore.Load(ctx); err != nil {
		logger.Fatal("store load", zap.Error(err))
	}

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		Bucket:               cfg.AWS.AssetsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jobQueue := queue.NewQueue(redisKV.Client(), logger)
	renderer := pdfrender.NewRenderer(logger)
	processor := worker.NewRenderProcessor(domainStore, renderer, s3Client, jobQueue, cfg.Verification.BaseURL, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
