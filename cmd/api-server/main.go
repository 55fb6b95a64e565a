package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"booklist/database"
	"booklist/internal/config"
	"booklist/internal/microservices/http-api/handler"
	"booklist/internal/microservices/http-api/middleware"
	"booklist/internal/microservices/http-api/repository"
	"booklist/internal/microservices/http-api/service"
	"booklist/internal/openlibrary"

	"github.com/gin-gonic/gin"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup structured logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("database_connect_failed", "error", err.Error())
		os.Exit(1)
	}
	defer database.Close(db)

	// Session registry is optional, signed cookies still work without it
	var sessionRepo *repository.SessionRedisRepo
	if cfg.RedisURL != "" {
		sessionRepo, err = repository.NewSessionRedisRepo(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Error("redis_connect_failed", "error", err.Error())
			os.Exit(1)
		}
		defer sessionRepo.Close()
	} else {
		logger.Warn("redis_not_configured", "detail", "sessions cannot be revoked before they expire")
	}

	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	catalog := openlibrary.NewClient(cfg.CatalogAPIURL, cfg.CatalogTimeout, logger)

	loginLimiter := middleware.NewKeyedRateLimiter(cfg.LoginRatePerMin, time.Minute, cfg.LoginRatePerMin)
	defer loginLimiter.Stop()

	router := handler.NewRouter(handler.Deps{
		AuthService:     service.NewAuthService(userRepo, sessionRepo, cfg.SecretKey, cfg.SessionTTL, logger),
		UserService:     service.NewUserService(userRepo, sessionRepo, logger),
		BookService:     service.NewBookService(catalog, reviewRepo, logger),
		ReviewService:   service.NewReviewService(reviewRepo),
		LikeService:     service.NewLikeService(likeRepo),
		SessionTTL:      cfg.SessionTTL,
		SecureCookies:   cfg.IsProduction(),
		LoginRatePerMin: cfg.LoginRatePerMin,
		TrustedProxies:  cfg.TrustedProxies,
		LoginLimiter:    loginLimiter,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting_web_server",
		"addr", server.Addr,
		"env", cfg.GoEnv,
		"catalog_url", cfg.CatalogAPIURL,
		"catalog_timeout", cfg.CatalogTimeout.String(),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown_failed", "error", err.Error())
		}
		logger.Info("server_stopped_gracefully")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.LogFormat) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
