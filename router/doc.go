// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pickpool API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, cfg, router.Options{Limiter: limiter, Stats: stats})

# Endpoints

Health and counters (public):

	GET /health
	GET /pools/count
	GET /guesses/count

Pools:

	POST /pools      - Create pool (bearer token optional; owner when present)
	POST /pools/join - Join by code (rate limited per caller)
	GET  /pools      - Pools the caller participates in
	GET  /pools/{id} - Pool view with participant previews and owner

Guesses:

	POST /pools/{poolId}/games/{gameId}/guesses - Submit a score prediction

Everything except the public routes and POST /pools requires
"Authorization: Bearer <token>".
*/
package router
