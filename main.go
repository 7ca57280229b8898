package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/pickpool/auth"
	"github.com/danielhkuo/pickpool/cliparse"
	"github.com/danielhkuo/pickpool/db"
	"github.com/danielhkuo/pickpool/middleware"
	"github.com/danielhkuo/pickpool/router"
)

func main() {
	var err error

	// .env is optional; real environment variables still apply
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	store := db.NewStore(dbConn, cfg.DatabaseType)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Join statistics are optional
	var stats *middleware.JoinStats
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			slog.Error("redis ping failed", "error", err)
			os.Exit(1)
		}
		stats = middleware.NewJoinStats(rdb, "pickpool:joins", 24*time.Hour)
		slog.Info("Join statistics enabled")
	}

	limiter := middleware.NewJoinLimiter(cfg.JoinRPS, cfg.JoinBurst)
	limiter.StartJanitor(ctx)

	// Create router
	mux := router.NewRouter(store, cfg, router.Options{
		Tokens:  auth.NewManager(cfg.JWTSecret, 0),
		Limiter: limiter,
		Stats:   stats,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
