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

	"github.com/Pankajjr12/snapnest-api/internal/api"
	"github.com/Pankajjr12/snapnest-api/internal/auth"
	"github.com/Pankajjr12/snapnest-api/internal/config"
	"github.com/Pankajjr12/snapnest-api/internal/database"
	redisclient "github.com/Pankajjr12/snapnest-api/internal/redis"
	"github.com/Pankajjr12/snapnest-api/internal/service"
	"github.com/Pankajjr12/snapnest-api/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("snapnest exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// --- Infrastructure ---

	if cfg.Database.AutoMigrate {
		version, err := database.Migrate(cfg.Database.URL)
		if err != nil {
			return err
		}
		logger.Info("database migrated", "version", version)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	files, err := newFileStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}

	hasher, err := auth.NewHasher(auth.DefaultParams)
	if err != nil {
		return err
	}
	tokenSvc, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return err
	}

	// --- Repositories ---

	users := database.NewUserRepository(pool)
	follows := database.NewFollowRepository(pool)

	// --- Services ---

	images := service.NewImageStore(files, logger)
	authSvc := service.NewAuthService(users, hasher, tokenSvc, images, logger)
	socialSvc := service.NewSocialService(users, follows, authSvc, rdb, logger)

	// --- Handlers ---

	deps := &api.Dependencies{
		Auth:         api.NewAuthHandler(authSvc, auth.CookiePolicy{Secure: cfg.IsProduction()}),
		Users:        api.NewUserHandler(socialSvc),
		Uploads:      api.NewUploadHandler(images),
		TokenService: tokenSvc,
		HealthChecks: map[string]api.Pinger{"postgres": pool, "redis": rdb},
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.ErrorContext(c.Request().Context(), "request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("snapnest starting", "addr", cfg.ServerAddr, "env", cfg.Env)
		if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newFileStorage picks MinIO when an endpoint is configured and the local
// upload directory otherwise.
func newFileStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.FileStorage, error) {
	if cfg.MinIO.Endpoint != "" {
		logger.Info("profile images stored in minio", "endpoint", cfg.MinIO.Endpoint, "bucket", cfg.MinIO.Bucket)
		return storage.NewMinIO(ctx, cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	}
	logger.Info("profile images stored on disk", "dir", cfg.Upload.Dir)
	return storage.NewLocal(cfg.Upload.Dir)
}
