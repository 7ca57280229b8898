// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /pools", middleware.WithLogging(handler))

One line per request with method, path, status and duration_ms. Responses
with a 5xx status log at Warn.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Any origin may call the API. Callers authenticate with bearer tokens, so the
wildcard origin is sent without Access-Control-Allow-Credentials. Preflight
requests are answered with 204.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

WriteError reports an error from package pools, mapping its kind to a status
(not found 404, conflict 409, forbidden 403, validation 400). Anything else is
logged and answered with 500 and the fallback message:

	pool, err := lifecycle.CreatePool(ctx, title, creatorID)
	if err != nil {
		middleware.WriteError(w, err, "Failed to create pool")
		return
	}

ParseJSONBody decodes a bounded body and returns ErrEmptyBody when there is
nothing to decode.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

First X-Forwarded-For hop, then X-Real-IP, then the host part of RemoteAddr.

# Identity

RequireIdentity rejects requests without a valid bearer token with 401.
OptionalIdentity attaches the caller when the token verifies and otherwise
serves the request anonymously. Handlers read the caller back with:

	id, ok := middleware.IdentityFrom(r.Context())

# Join Rate Limiting

LimitJoins throttles join attempts with a token bucket per caller
(golang.org/x/time/rate). Callers with a verified identity are keyed by user
id, others by a salted IP hash. The join route mounts it between
OptionalIdentity and RequireIdentity so attempts with bad tokens are counted.
Idle buckets are evicted by a janitor goroutine:

	limiter := middleware.NewJoinLimiter(cfg.JoinRPS, cfg.JoinBurst)
	limiter.StartJanitor(ctx)

When REDIS_URL is set, JoinStats counts allowed and denied attempts in Redis
hashes (total, per minute, per key). A nil *JoinStats records nothing, and a
Redis failure is logged without blocking the join.
*/
package middleware
