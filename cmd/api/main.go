package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/origenhr/advance-api/api/swagger"
	"github.com/origenhr/advance-api/internal/handler"
	"github.com/origenhr/advance-api/internal/middleware"
	"github.com/origenhr/advance-api/internal/repository"
	"github.com/origenhr/advance-api/internal/service"
	"github.com/origenhr/advance-api/pkg/cache"
	"github.com/origenhr/advance-api/pkg/config"
	"github.com/origenhr/advance-api/pkg/database"
	"github.com/origenhr/advance-api/pkg/jobs"
	"github.com/origenhr/advance-api/pkg/logger"
	"github.com/origenhr/advance-api/pkg/mailer"
	corsmiddleware "github.com/origenhr/advance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/origenhr/advance-api/pkg/middleware/requestid"
)

// @title Advance API
// @version 1.0.0
// @description Salary advance request management API
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	employeeRepo := repository.NewEmployeeRepository(db)
	advanceRepo := repository.NewAdvanceRepository(db)
	draftRepo := repository.NewDraftRepository(redisClient, cfg.Advances.DraftTTL)
	otpRepo := repository.NewOTPRepository(redisClient, cfg.OTP.TTL)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	authService := service.NewAuthService(employeeRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "advance-api",
		Audience:           []string{"advance-api"},
	})

	sender := mailer.NewSMTPSender(cfg.SMTP, cfg.OTP.MailFromAddress)
	mailQueue := jobs.NewQueue("otp-mail", service.MailHandler(sender, logr), jobs.QueueConfig{
		Workers:    cfg.OTP.MailWorkers,
		BufferSize: cfg.OTP.MailBuffer,
		MaxRetries: cfg.OTP.MailMaxRetries,
		RetryDelay: cfg.OTP.MailRetryDelay,
		Logger:     logr,
	})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	otpService := service.NewOTPService(otpRepo, employeeRepo, mailQueue, logr, service.OTPConfig{
		Digits:      cfg.OTP.Digits,
		MaxAttempts: cfg.OTP.MaxAttempts,
		TTL:         cfg.OTP.TTL,
	})

	metricsService := service.NewMetricsService()
	advanceService := service.NewAdvanceService(advanceRepo, logr, cfg.Advances)
	draftService := service.NewDraftService(draftRepo, employeeRepo, otpService, advanceRepo, logr, cfg.Advances)
	payrollService := service.NewPayrollService(employeeRepo, logr)
	statsService := service.NewStatsService(advanceRepo, cacheRepo, logr, cfg.Stats)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	handler.RegisterRoutes(r, cfg.APIPrefix, authService, handler.Handlers{
		Auth:    handler.NewAuthHandler(authService, otpService),
		Advance: handler.NewAdvanceHandler(advanceService, statsService, metricsService),
		Draft:   handler.NewDraftHandler(draftService),
		Payroll: handler.NewPayrollHandler(payrollService),
		Stats:   handler.NewStatsHandler(statsService),
		Metrics: handler.NewMetricsHandler(metricsService),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
