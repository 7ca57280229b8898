// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/pickpool/auth"
	"github.com/danielhkuo/pickpool/cliparse"
	"github.com/danielhkuo/pickpool/handlers"
	"github.com/danielhkuo/pickpool/middleware"
	"github.com/danielhkuo/pickpool/storage"
)

// Options carries the shared pieces main wires up once. Zero values are
// filled from cfg; a nil Stats records nothing.
type Options struct {
	Tokens  *auth.Manager
	Limiter *middleware.JoinLimiter
	Stats   *middleware.JoinStats
}

func NewRouter(store storage.Store, cfg cliparse.Config, opts Options) *http.ServeMux {
	mux := http.NewServeMux()

	if opts.Tokens == nil {
		opts.Tokens = auth.NewManager(cfg.JWTSecret, 0)
	}
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewJoinLimiter(cfg.JoinRPS, cfg.JoinBurst)
	}

	// Initialize handlers
	poolHandler := handlers.NewPoolHandler(store, cfg)
	guessHandler := handlers.NewGuessHandler(store)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireIdentity(opts.Tokens, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public counters
	mux.HandleFunc("GET /pools/count", middleware.WithLogging(poolHandler.CountPools))
	mux.HandleFunc("GET /guesses/count", middleware.WithLogging(guessHandler.CountGuesses))

	// Pools
	mux.HandleFunc("POST /pools", middleware.WithLogging(middleware.OptionalIdentity(opts.Tokens, poolHandler.CreatePool)))
	// Joins are limited before the token is required, so failed-token
	// attempts are throttled by address as well
	mux.HandleFunc("POST /pools/join", middleware.WithLogging(
		middleware.OptionalIdentity(opts.Tokens,
			middleware.LimitJoins(opts.Limiter, opts.Stats, cfg.JWTSecret,
				middleware.RequireIdentity(opts.Tokens, poolHandler.JoinPool)))))
	mux.HandleFunc("GET /pools", authed(poolHandler.ListPools))
	mux.HandleFunc("GET /pools/{id}", authed(poolHandler.GetPool))

	// Guesses
	mux.HandleFunc("POST /pools/{poolId}/games/{gameId}/guesses", authed(guessHandler.SubmitGuess))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pickpool API v1"))
	})

	return mux
}
