package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bookhub/database"
	"bookhub/internal/config"
	"bookhub/internal/logger"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/session"
)

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx := context.Background()

	// 2. Entity store
	store, closeStore, err := openStore(ctx, cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("failed to open entity store")
	}
	defer closeStore()

	// 3. Sessions
	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("failed to open session store")
	}
	defer closeSessions()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	svc := newServices(store, sessions, tokens, appLog)

	if cfg.HasBootstrapAdmin() {
		seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		admin, err := svc.auth.SeedAdmin(seedCtx, cfg.AdminLogin, cfg.AdminEmail, cfg.AdminPassword)
		cancel()
		if err != nil {
			appLog.WithError(err).Fatal("failed to seed administrator")
		}
		appLog.WithField("login", admin.Login).Info("administrator account ready")
	}

	// 4. Router
	r, err := newRouter(svc, routerOptions{
		TokenTTL:     cfg.JWTExpiry,
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
	}, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("failed to build router")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		appLog.WithFields(logrus.Fields{
			"addr":     cfg.Addr(),
			"store":    cfg.StoreDriver,
			"sessions": cfg.SessionDriver,
		}).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		appLog.Info("received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("server shutdown failed")
		}
		appLog.Info("server stopped gracefully")
	case err := <-errChan:
		appLog.WithError(err).Error("server error")
		closeSessions()
		closeStore()
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*repository.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using the in-memory entity store; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := database.ConnectDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("failed to close database")
		}
	}
	return repository.NewGormStore(db), closeDB, nil
}

func openSessions(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	if cfg.SessionDriver == config.SessionDriverMemory {
		return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	client, err := session.Connect(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
}
