package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/user-management/web/internal/auth"
	"github.com/ayush/user-management/web/internal/config"
	"github.com/ayush/user-management/web/internal/gateway"
	"github.com/ayush/user-management/web/internal/server"
	"github.com/ayush/user-management/web/internal/store"
	"github.com/ayush/user-management/web/internal/users"
	"github.com/ayush/user-management/web/internal/validation"
	"github.com/ayush/user-management/web/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := setupLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Session storage ──────────────────────────────────────
	kv, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("session store", "backend", cfg.SessionBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	sessions := auth.NewSessions(kv, cfg.SessionTTL, cfg.CookieSecure, logger)

	// ── API gateway ──────────────────────────────────────────
	api := gateway.New(cfg.APIBaseURL, cfg.APITimeout, logger)
	logger.Info("API gateway configured", "base_url", api.BaseURL())

	// ── Handlers ─────────────────────────────────────────────
	views, err := web.NewRenderer(logger)
	if err != nil {
		logger.Error("templates", "error", err)
		os.Exit(1)
	}
	rules := validation.New(nil)
	authHandler := auth.NewHandler(api, sessions, rules, views, auth.Delays{
		Login:    cfg.LoginRedirectDelay,
		Register: cfg.RegisterRedirectDelay,
	}, logger)
	usersHandler := users.NewHandler(api, views, logger)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: server.Router(server.Deps{
			Sessions:    sessions,
			Auth:        authHandler,
			Users:       usersHandler,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.APITimeout + 15*time.Second,
	}

	go func() {
		logger.Info("user management web listening", "addr", cfg.Addr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("graceful shutdown", "error", err)
	}
}

// openStore connects the configured session backend and returns its closer.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.Store, func(), error) {
	switch cfg.SessionBackend {
	case "memory":
		logger.Warn("using in-memory sessions; they do not survive a restart")
		mem := store.NewMemoryStore()
		go sweep(ctx, mem, cfg.SessionTTL, logger)
		return mem, func() {}, nil

	case "redis":
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		return store.NewRedisStore(rdb), func() { rdb.Close() }, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		go sweep(ctx, pg, cfg.SessionTTL, logger)
		return pg, pool.Close, nil

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		ms := store.NewMongoStore(client.Database(cfg.MongoDB))
		if err := ms.EnsureIndexes(ctx); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}
		return ms, func() { client.Disconnect(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}

type sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// sweep periodically deletes expired sessions from backends that do not expire
// keys on their own (memory, Postgres).
func sweep(ctx context.Context, s sweeper, ttl time.Duration, logger *slog.Logger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("session sweep", "removed", n)
			}
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger
	switch env {
	case "development":
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return logger
}
