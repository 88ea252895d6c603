package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/ravi-menon/dept-attendance-api/api/swagger"
	"github.com/ravi-menon/dept-attendance-api/internal/handler"
	"github.com/ravi-menon/dept-attendance-api/internal/repository"
	"github.com/ravi-menon/dept-attendance-api/internal/router"
	"github.com/ravi-menon/dept-attendance-api/internal/service"
	"github.com/ravi-menon/dept-attendance-api/pkg/cache"
	"github.com/ravi-menon/dept-attendance-api/pkg/config"
	"github.com/ravi-menon/dept-attendance-api/pkg/database"
	"github.com/ravi-menon/dept-attendance-api/pkg/logger"
)

// @title Department Attendance API
// @version 1.0.0
// @description Attendance and timetable management for a university department
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	// Redis is optional: without it reports are computed on every request.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	reportCache := service.NewReportCache(cacheRepo, service.ReportCacheConfig{
		Enabled: cfg.Reports.CacheEnabled && redisClient != nil,
		TTL:     cfg.Reports.CacheTTL,
		Workers: cfg.Reports.InvalidateWorkers,
	}, logr)
	reportCache.SetMetrics(metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportCache.Start(ctx)
	defer reportCache.Stop()

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, reportCache, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, timetableRepo, userRepo, reportCache, metricsSvc, validate, logr)
	reportSvc := service.NewReportService(attendanceRepo, reportCache, logr)

	engine := router.New(router.Dependencies{
		Config:     cfg,
		Logger:     logr,
		DB:         db,
		Auth:       authSvc,
		Metrics:    metricsSvc,
		AuthH:      handler.NewAuthHandler(authSvc),
		UserH:      handler.NewUserHandler(userSvc),
		TimetableH: handler.NewTimetableHandler(timetableSvc),
		AttendH:    handler.NewAttendanceHandler(attendanceSvc),
		ReportH:    handler.NewReportHandler(reportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
