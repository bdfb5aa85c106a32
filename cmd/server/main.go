// Package main runs the certificate management HTTP server with graceful
// shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/certivault/backend/config"
	"github.com/certivault/backend/internal/attendees"
	"github.com/certivault/backend/internal/authorities"
	"github.com/certivault/backend/internal/certificates"
	"github.com/certivault/backend/internal/events"
	"github.com/certivault/backend/internal/issuance"
	"github.com/certivault/backend/internal/middleware"
	"github.com/certivault/backend/internal/pdfrender"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/internal/templates"
	"github.com/certivault/backend/internal/verification"
	"github.com/certivault/backend/internal/worker"
	"github.com/certivault/backend/pkg/kv"
	"github.com/certivault/backend/pkg/queue"
	"github.com/certivault/backend/pkg/response"
	"github.com/certivault/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var substrate kv.Store
	var redisKV *kv.Redis
	if cfg.Redis.Addr != "" {
		redisKV, err = kv.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer redisKV.Close()
		substrate = redisKV
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory substrate (state lost on restart)")
		substrate = kv.NewMemory()
	}

	domainStore := store.New(substrate, logger)
	if err := domainStore.Load(ctx); err != nil {
		logger.Fatal("store load", zap.Error(err))
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			Bucket:               cfg.AWS.AssetsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
			s3Client = nil
		}
	}

	renderer := pdfrender.NewRenderer(logger)
	issuer := issuance.NewIssuer(domainStore, logger)
	verifyService := verification.NewService(domainStore)

	var jobQueue *queue.Queue
	if redisKV != nil {
		jobQueue = queue.NewQueue(redisKV.Client(), logger)
	}

	templateHandler := templates.NewHandler(domainStore, s3Client, logger)
	eventHandler := events.NewHandler(domainStore, issuer, jobQueue, logger)
	attendeeHandler := attendees.NewHandler(domainStore)
	authorityHandler := authorities.NewHandler(domainStore, s3Client, logger)
	certificateHandler := certificates.NewHandler(domainStore, renderer, s3Client, cfg.Verification.BaseURL, logger)
	verifyHandler := verification.NewHandler(verifyService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public verification entry point (no auth)
	router.GET("/verify", verifyHandler.Verify)

	// Templates
	router.GET("/templates", templateHandler.List)
	router.GET("/templates/defaults", templateHandler.Defaults)
	router.POST("/templates", templateHandler.Create)
	router.GET("/templates/:id", templateHandler.GetByID)
	router.PUT("/templates/:id", templateHandler.Update)
	router.DELETE("/templates/:id", templateHandler.Delete)
	router.POST("/templates/:id/background", templateHandler.UploadBackground)

	// Events
	router.GET("/events", eventHandler.List)
	router.POST("/events", eventHandler.Create)
	router.GET("/events/:id", eventHandler.GetByID)
	router.PUT("/events/:id", eventHandler.Update)
	router.DELETE("/events/:id", eventHandler.Delete)
	router.POST("/events/:id/attendees", eventHandler.AddAttendees)
	router.POST("/events/:id/certificates", eventHandler.GenerateCertificates)
	router.GET("/events/:id/certificates", eventHandler.ListCertificates)

	// Attendees
	router.GET("/attendees", attendeeHandler.List)
	router.POST("/attendees", attendeeHandler.Create)
	router.GET("/attendees/:id", attendeeHandler.GetByID)
	router.PUT("/attendees/:id", attendeeHandler.Update)
	router.DELETE("/attendees/:id", attendeeHandler.Delete)

	// Signing authorities
	router.GET("/authorities", authorityHandler.List)
	router.POST("/authorities", authorityHandler.Create)
	router.PUT("/authorities/:id", authorityHandler.Update)
	router.DELETE("/authorities/:id", authorityHandler.Delete)
	router.POST("/authorities/:id/signature", authorityHandler.UploadSignature)

	// Certificates (append-only; read and render routes only)
	router.GET("/certificates", certificateHandler.List)
	router.GET("/certificates/:certificateId", certificateHandler.GetByCertificateID)
	router.GET("/certificates/:certificateId/pdf", certificateHandler.DownloadPDF)
	router.GET("/certificates/:certificateId/download-url", certificateHandler.DownloadURL)
	router.GET("/certificates/:certificateId/qr", certificateHandler.QRCode)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background render worker (PDF + QR to S3)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if jobQueue != nil && s3Client != nil {
		processor := worker.NewRenderProcessor(domainStore, renderer, s3Client, jobQueue, cfg.Verification.BaseURL, logger)
		go processor.Run(workerCtx)
		logger.Info("render worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
