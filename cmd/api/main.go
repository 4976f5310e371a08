package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidstream-platform/internal/audit"
	"vidstream-platform/internal/auth"
	"vidstream-platform/internal/calls"
	"vidstream-platform/internal/config"
	"vidstream-platform/internal/httpapi"
	"vidstream-platform/internal/recordings"
	"vidstream-platform/internal/reporting"
	"vidstream-platform/internal/signaling"
	"vidstream-platform/pkg/logger"
	"vidstream-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	if err := calls.EnsureSchema(rootCtx, db); err != nil {
		log.Error("call schema init failed", "err", err)
		os.Exit(1)
	}
	if err := audit.EnsureSchema(rootCtx, db); err != nil {
		log.Error("audit schema init failed", "err", err)
		os.Exit(1)
	}

	// Call lifecycle: postgres-backed records, redis-backed pending index so
	// unanswered calls get swept to missed.
	callRepo := calls.NewPostgresRepo(db)
	pendingIndex := calls.NewRedisPendingIndex(rdb, log)
	callService := calls.NewService(callRepo, pendingIndex, cfg.Calls.RingTimeout)

	auditService := audit.NewService(audit.NewPostgresRepo(db))
	callService.SetTrail(calls.AuditAdapter{Audit: auditService, Log: log})

	sweeper := calls.NewSweeper(pendingIndex, callService, cfg.Calls.SweepInterval, log)
	go sweeper.Run(rootCtx)

	// Signaling relay: in-memory room registry, no persistence coupling.
	registry := signaling.NewRegistry()
	relay := signaling.NewRelay(registry, log)
	wsHandler := signaling.NewHandler(relay, log)

	recordingStore, err := recordings.NewStore(cfg.Recordings.Dir, cfg.Recordings.MaxUploadBytes, log)
	if err != nil {
		log.Error("recording store init failed", "err", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.MaxMultipartMemory = 32 << 20

	reportService := reporting.NewService(reporting.NewPostgresRepo(db))

	h := httpapi.Handlers{
		Auth:       authManager,
		Calls:      callService,
		Recordings: recordingStore,
		Reports:    reportService,
	}
	registerRoutes(r, h, wsHandler, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
