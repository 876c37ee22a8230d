package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/example/liveclass-gateway/internal/application"
	"github.com/example/liveclass-gateway/internal/config"
	httptransport "github.com/example/liveclass-gateway/internal/http"
	"github.com/example/liveclass-gateway/internal/identity"
	"github.com/example/liveclass-gateway/internal/logging"
	"github.com/example/liveclass-gateway/internal/meeting"
	"github.com/example/liveclass-gateway/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stdout, "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	storage, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, display-name cache disabled", "error", err)
			cache = nil
		}
	}

	provider := meeting.NewClient(cfg.ProviderBaseURL, cfg.ProviderName, meeting.Credentials{
		OrgID:  cfg.ProviderOrgID,
		APIKey: cfg.ProviderAPIKey,
	}, nil)

	var directory application.IdentityDirectory
	if cfg.IdentityBaseURL != "" {
		directory = identity.NewClient(cfg.IdentityBaseURL, nil, cache)
	} else {
		directory = noDirectory{}
	}

	idGenerator := uuid.NewString
	now := time.Now

	batchRepo := newBatchRepositoryAdapter(storage)
	sessionRepo := newSessionRepositoryAdapter(storage)
	attendanceRepo := newAttendanceRepositoryAdapter(storage)

	policy := application.AdmissionPolicy{
		HostPreset:            cfg.HostPreset,
		ParticipantPreset:     cfg.ParticipantPreset,
		DedupeDailyAttendance: cfg.DedupeDailyAttendance,
	}

	admissionService := application.NewAdmissionServiceWithLogger(batchRepo, attendanceRepo, provider, directory, policy, idGenerator, now, logger)
	syncService := application.NewSyncServiceWithLogger(batchRepo, sessionRepo, provider, idGenerator, now, logger)
	batchService := application.NewBatchServiceWithLogger(batchRepo, sessionRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Classes: httptransport.NewClassHandler(admissionService, batchService),
		Sync:    httptransport.NewSyncHandler(syncService),
		Logger:  logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("liveclass gateway listening", "addr", server.Addr, "provider", cfg.ProviderName)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// noDirectory is used when no identity service is configured; the admission
// service then falls back to the caller's email.
type noDirectory struct{}

func (noDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	return "", errors.New("identity service is not configured")
}
