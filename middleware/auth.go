// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pickpool/auth"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the verified caller
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller stored by RequireIdentity or OptionalIdentity
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// RequireIdentity rejects requests without a valid bearer token. A caller
// already attached by OptionalIdentity is passed through.
func RequireIdentity(mgr *auth.Manager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); ok {
			next(w, r)
			return
		}

		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		id, err := mgr.ParseToken(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Token expired"
			}
			ErrorResponse(w, http.StatusUnauthorized, msg)
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

// OptionalIdentity attaches the caller when a valid token is present.
// A missing or invalid token is served anonymously.
func OptionalIdentity(mgr *auth.Manager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			next(w, r)
			return
		}

		id, err := mgr.ParseToken(token)
		if err != nil {
			slog.Debug("ignoring invalid token", "path", r.URL.Path, "error", err)
			next(w, r)
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}
