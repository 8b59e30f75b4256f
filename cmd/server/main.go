package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/business/survey"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/firestore"
	apirouter "github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/http"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/kvstore"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/metrics"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/sheets"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	if !cfg.EndpointConfigured() {
		logger.Warn("GOOGLE_SCRIPT_URL is not set: stats will be empty and submissions will fail")
	}

	store, err := kvstore.Open(cfg.StateDBPath)
	if err != nil {
		log.Fatalf("state store: %v", err)
	}
	defer store.Close()

	m := metrics.New()
	gateway := sheets.New(nil, sheets.Config{
		URL:      cfg.ScriptURL,
		Timeout:  cfg.GatewayTimeout,
		Logger:   logger,
		Observer: m,
	})
	records := survey.NewCachedSource(gateway, cfg.RecordsCacheTTL)
	limiter := survey.NewRateLimiter(store, survey.SystemClock{}, cfg.SubmitInterval)
	logger.Info("submission rate limit", "interval", limiter.Interval(), "state_db", cfg.StateDBPath)
	submissions := survey.NewSubmissionService(gateway, limiter, survey.SystemClock{}, records, logger)

	deps := apirouter.Deps{
		Records:        records,
		Submissions:    submissions,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	}

	firestoreClient, credsSource, err := firestoreclient.New(ctx, cfg)
	switch {
	case errors.Is(err, firestoreclient.ErrDisabled):
		logger.Info("FIREBASE_PROJECT_ID not set, stats snapshots disabled")
	case err != nil:
		log.Fatalf("firestore init: %v", err)
	default:
		defer firestoreClient.Close()
		if err := firestoreclient.Ping(ctx, firestoreClient); err != nil {
			log.Fatalf("firestore ping: %v", err)
		}
		logger.Info("connected to Firestore", "project", cfg.FirebaseProjectID, "credentials", credsSource)
		deps.Snapshots = repository.NewSnapshotRepository(firestoreClient)
	}

	go pruneRateLimits(ctx, store, cfg.SubmitInterval, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apirouter.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	logger.Info("server listening", "port", cfg.Port)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server exited")
}

// pruneRateLimits drops rate limit entries older than the submit interval once an hour.
func pruneRateLimits(ctx context.Context, store kvstore.Store, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PruneBefore(ctx, time.Now().Add(-interval))
			if err != nil {
				logger.Warn("prune rate limit entries", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("pruned rate limit entries", "count", n)
			}
		}
	}
}
