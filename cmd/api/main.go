package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/idempotency"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/infra/storage"
	"github.com/BruksfildServices01/barber-booking/internal/jobs"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/payment"
	"github.com/BruksfildServices01/barber-booking/internal/routes"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

func main() {

	cfg := config.Load()
	log := logger.Init(cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	db := dbpkg.NewDB(cfg)

	if err := validators.Register(); err != nil {
		log.Fatal("failed to register validators", zap.Error(err))
	}

	// ======================================================
	// DISPATCHERS
	// ======================================================
	auditDispatcher := audit.NewDispatcher(audit.New(db), log)

	var (
		sender      notify.Sender = notify.NewLogSender(log)
		idemStore   idempotency.Store
		redisClient *redis.Client
		asynqSender *notify.AsynqSender
	)

	if cfg.RedisAddr != "" {
		asynqSender = notify.NewAsynqSender(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		sender = asynqSender

		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		idemStore = idempotency.NewRedisStore(
			redisClient,
			time.Duration(cfg.IdempotencyTTLMinutes)*time.Minute,
		)
	} else {
		log.Warn("REDIS_ADDR not set: notifications are only logged, Idempotency-Key is ignored")
	}

	notifyDispatcher := notify.NewDispatcher(sender, log)

	var gateway payment.Gateway
	if cfg.MercadoPagoAccessToken != "" {
		mp, err := payment.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken)
		if err != nil {
			log.Fatal("failed to configure payments", zap.Error(err))
		}
		gateway = mp
	}

	// ======================================================
	// JOBS
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	directory := infraRepo.NewDirectoryGormRepository(db)

	reminders := ucBooking.NewSendReminders(
		bookingRepo,
		directory,
		notifyDispatcher,
		time.Duration(cfg.ReminderLeadMinutes)*time.Minute,
		time.Duration(cfg.ReminderWindowMinutes)*time.Minute,
	)

	var ledger jobs.LedgerRunner
	if cfg.S3Bucket != "" {
		ledger = ucBooking.NewExportLedger(bookingRepo, storage.NewS3Uploader(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}))
	}

	scheduler := jobs.NewScheduler(reminders, ledger, log)
	if err := scheduler.Register(cfg.ReminderCron, cfg.LedgerExportCron); err != nil {
		log.Fatal("invalid cron expression", zap.Error(err))
	}
	scheduler.Start()

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.CORSMiddleware(),
	)

	routes.RegisterRoutes(r, routes.Deps{
		DB:          db,
		Config:      cfg,
		Audit:       auditDispatcher,
		Notifier:    notifyDispatcher,
		Idempotency: idemStore,
		Payments:    gateway,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	scheduler.Stop(ctx)

	// drain queued events before closing their sinks
	notifyDispatcher.Close()
	auditDispatcher.Close()

	if asynqSender != nil {
		if err := asynqSender.Close(); err != nil {
			log.Warn("asynq close failed", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("redis close failed", zap.Error(err))
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
