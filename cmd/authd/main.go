package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/dataloft-systems/dataloft-backend/internal/audit"
	"github.com/dataloft-systems/dataloft-backend/internal/config"
	"github.com/dataloft-systems/dataloft-backend/internal/handlers"
	authmw "github.com/dataloft-systems/dataloft-backend/internal/middleware"
	"github.com/dataloft-systems/dataloft-backend/internal/repository"
	"github.com/dataloft-systems/dataloft-backend/internal/server"
	"github.com/dataloft-systems/dataloft-backend/internal/service"
	"github.com/dataloft-systems/dataloft-backend/pkg/logging"
	"github.com/dataloft-systems/dataloft-backend/pkg/tokens"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("authd"))
	logging.SetDefault(logger)

	slog.Info("Starting auth service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Initialize repository based on config. The in-memory repository also
	// serves as the revocation and audit store when Postgres is not in play.
	var (
		repo        repository.Repository
		revocations repository.RevocationStore
		events      repository.AuditStore
	)
	if cfg.Database.Type == "postgres" {
		connString := cfg.Database.Postgres.ConnString()

		slog.Info("Connecting to PostgreSQL",
			slog.String("host", cfg.Database.Postgres.Host),
			slog.Int("port", cfg.Database.Postgres.Port),
			slog.String("database", cfg.Database.Postgres.Database),
		)

		pgRepo, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			slog.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pgRepo.Close()
		repo = pgRepo
		revocations = pgRepo
		events = pgRepo
		slog.Info("Connected to PostgreSQL")

		// Run database migrations
		slog.Info("Running database migrations")
		m, err := migrate.New(
			"file://migrations",
			connString,
		)
		if err != nil {
			slog.Error("Failed to initialize migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			slog.Error("Failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}

		version, dirty, err := m.Version()
		if err != nil {
			slog.Warn("Could not get migration version", slog.String("error", err.Error()))
		} else {
			slog.Info("Database migration complete",
				slog.Uint64("version", uint64(version)),
				slog.Bool("dirty", dirty),
			)
		}
	} else {
		slog.Warn("Using in-memory repository (development only)")
		memRepo := repository.NewInMemoryRepository()
		repo = memRepo
		revocations = memRepo
		events = memRepo
	}

	// Redis serves revocation lookups when enabled; entries expire with the
	// tokens they cover.
	if cfg.Redis.Enabled {
		slog.Info("Using Redis revocation store", slog.String("addr", cfg.Redis.Addr))
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Error("Failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer client.Close()
		revocations = repository.NewRedisRevocationStore(client)
	}

	// Audit logger, optionally forwarding events to NATS
	var auditLog *audit.Logger
	if cfg.Audit.NATSEnabled {
		slog.Info("Enabling auth event forwarding",
			slog.String("nats_url", cfg.Audit.NATSURL),
			slog.String("subject", cfg.Audit.NATSSubject),
		)
		forwarder, err := audit.NewForwarder(audit.ForwarderConfig{
			URL:     cfg.Audit.NATSURL,
			Subject: cfg.Audit.NATSSubject,
		})
		if err != nil {
			slog.Error("Failed to connect to NATS", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer forwarder.Close()
		auditLog = audit.NewLoggerWithForwarder(cfg.Auth.AuditSecret, events, forwarder)
	} else {
		auditLog = audit.NewLogger(cfg.Auth.AuditSecret, events)
	}

	// Initialize service layer
	codec := tokens.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTRefreshSecret)
	authService := service.NewAuthService(repo, revocations, events, codec, auditLog)

	// Initialize HTTP handlers
	handler := handlers.NewAuthHandler(authService)
	router := server.NewRouter(handler, authmw.NewAuthMiddleware(codec))

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Auth service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Server stopped gracefully")
}
