// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies caller identity tokens.

# Tokens

Tokens are HS256 JWTs signed with JWT_SECRET. The subject is the user id; name
and avatar_url are copied into the user's profile so pool views can show them.

	mgr := auth.NewManager(cfg.JWTSecret, 0)
	token, err := mgr.IssueToken("user-1", "Ana", "https://example.com/ana.png")
	identity, err := mgr.ParseToken(token)

ParseToken returns ErrTokenExpired for expired tokens and ErrTokenInvalid for
anything else that fails verification (bad signature, wrong algorithm, wrong
issuer, empty subject).

# Headers

BearerToken extracts the token from an Authorization header:

	token, ok := auth.BearerToken(r.Header.Get("Authorization"))

# Privacy

HashIP creates a salted one-way hash of a client address. Join attempt
statistics are keyed by this hash rather than the raw address.
*/
package auth
