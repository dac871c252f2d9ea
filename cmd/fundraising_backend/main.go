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

	"github.com/SscSPs/fundraising_app/internal/core/services"
	"github.com/SscSPs/fundraising_app/internal/handlers"
	"github.com/SscSPs/fundraising_app/internal/middleware"
	"github.com/SscSPs/fundraising_app/internal/platform/bootstrap"
	"github.com/SscSPs/fundraising_app/internal/platform/config"
	"github.com/SscSPs/fundraising_app/internal/platform/tracing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Fundraising Backend API
// @version 1.0
// @description Campaign ledger mirror: campaigns and donations confirmed on the ledger, kept queryable locally.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, tracing.OTelConfig{
			ServiceName:    cfg.ServiceName,
			ExportEndpoint: cfg.OTelEndpoint,
			Insecure:       cfg.OTelInsecure,
		})
		if err != nil {
			logger.Error("Failed to initialize tracer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to flush traces", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("Running database migrations...", slog.String("driver", cfg.MirrorDriver))
	if err := bootstrap.Migrate(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, closeMirror, err := bootstrap.OpenMirror(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open mirror", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeMirror()

	ledgerGateway, err := bootstrap.NewLedger(cfg, logger)
	if err != nil {
		logger.Error("Failed to configure ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	container := services.NewServiceContainer(cfg, repos, ledgerGateway, logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	var writeLimit gin.HandlerFunc
	if cfg.RateLimit != "" {
		lim, err := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitRedisURL)
		if err != nil {
			logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
			os.Exit(1)
		}
		writeLimit = middleware.RateLimit(lim)
	}

	handlers.RegisterRoutes(r, cfg, container, writeLimit)

	if cfg.ReconcileInterval > 0 {
		go container.Reconciler.Run(ctx, cfg.ReconcileInterval)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}

	// detached ledger calls still commit their outcome before the mirror closes
	container.Campaign.Wait()
}
