// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pickpool/auth"
	"github.com/danielhkuo/pickpool/cliparse"
	"github.com/danielhkuo/pickpool/codegen"
	"github.com/danielhkuo/pickpool/middleware"
	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/pools"
	"github.com/danielhkuo/pickpool/storage"
)

type PoolHandler struct {
	store     storage.Store
	lifecycle *pools.Lifecycle
	registry  *pools.Registry
}

func NewPoolHandler(store storage.Store, cfg cliparse.Config) *PoolHandler {
	return &PoolHandler{
		store:     store,
		lifecycle: pools.NewLifecycle(store, codegen.NewRandom(), cfg.MaxCodeAttempts),
		registry:  pools.NewRegistry(store),
	}
}

// CreatePool handles POST /pools
func (h *PoolHandler) CreatePool(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePoolRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Anonymous callers create unowned pools; the first joiner claims them
	var creatorID *string
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		if err := saveCaller(r.Context(), h.store, id); err != nil {
			slog.Error("failed to save user", "user_id", id.UserID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create pool")
			return
		}
		creatorID = &id.UserID
	}

	pool, err := h.lifecycle.CreatePool(r.Context(), req.Title, creatorID)
	if err != nil {
		middleware.WriteError(w, err, "Failed to create pool")
		return
	}

	slog.Info("pool created", "pool_id", pool.ID, "code", pool.Code, "owned", creatorID != nil)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePoolResponse{
		ID:   pool.ID,
		Code: pool.Code,
	})
}

// JoinPool handles POST /pools/join
func (h *PoolHandler) JoinPool(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authorization header required")
		return
	}

	var req models.JoinPoolRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := saveCaller(r.Context(), h.store, id); err != nil {
		slog.Error("failed to save user", "user_id", id.UserID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join pool")
		return
	}

	participant, err := h.registry.JoinPool(r.Context(), req.Code, id.UserID)
	if err != nil {
		middleware.WriteError(w, err, "Failed to join pool")
		return
	}

	slog.Info("pool joined", "pool_id", participant.PoolID, "user_id", id.UserID)

	middleware.JSONResponse(w, http.StatusCreated, models.JoinPoolResponse{
		Message:       "Joined",
		ParticipantID: participant.ID,
	})
}

// GetPool handles GET /pools/{id}
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("id")
	if poolID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "pool id is required")
		return
	}

	view, err := h.lifecycle.GetPool(r.Context(), poolID)
	if err != nil {
		middleware.WriteError(w, err, "Failed to load pool")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GetPoolResponse{Pool: view})
}

// ListPools handles GET /pools, returning the pools the caller participates in
func (h *PoolHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authorization header required")
		return
	}

	views, err := h.lifecycle.ListPoolsForUser(r.Context(), id.UserID)
	if err != nil {
		middleware.WriteError(w, err, "Failed to list pools")
		return
	}
	if views == nil {
		views = []models.PoolView{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListPoolsResponse{Pools: views})
}

// CountPools handles GET /pools/count
func (h *PoolHandler) CountPools(w http.ResponseWriter, r *http.Request) {
	n, err := h.lifecycle.CountPools(r.Context())
	if err != nil {
		middleware.WriteError(w, err, "Failed to count pools")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CountResponse{Count: n})
}

// saveCaller keeps the caller's profile in sync with their token claims
func saveCaller(ctx context.Context, store storage.Store, id auth.Identity) error {
	return store.SaveUser(ctx, models.User{
		ID:        id.UserID,
		Name:      id.Name,
		AvatarURL: id.AvatarURL,
	})
}
