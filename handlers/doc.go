// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pickpool API.

# Handler Types

Each handler is a struct built over a storage.Store:

  - PoolHandler: Pool creation, joining, views and counts
  - GuessHandler: Guess submission and counts

	poolHandler := handlers.NewPoolHandler(store, cfg)
	guessHandler := handlers.NewGuessHandler(store)

The business rules live in package pools; handlers decode requests, read the
caller from middleware.IdentityFrom and report pools errors through
middleware.WriteError, which maps error kinds to status codes:

	not found   → 404
	conflict    → 409 (already joined, already guessed)
	forbidden   → 403 (guessing in a pool you have not joined)
	validation  → 400 (blank title, game already started)
	anything else → 500

# Profiles

Every authenticated create or join upserts the caller's profile (name and
avatar from the token) so pool views can show owner names and avatars.

# Guesses

Scores are required and must be non-negative; 0 is a valid score.

	POST /pools/{poolId}/games/{gameId}/guesses
	{"first_team_points": 2, "second_team_points": 1}
*/
package handlers
