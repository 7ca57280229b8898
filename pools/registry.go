// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/storage"
)

type Registry struct {
	store storage.Store
	now   func() time.Time
}

func NewRegistry(store storage.Store) *Registry {
	return &Registry{store: store, now: time.Now}
}

// JoinPool adds userID to the pool with the given code. The first member of an
// unowned pool becomes its owner.
func (r *Registry) JoinPool(ctx context.Context, code, userID string) (models.Participant, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	pool, err := r.store.GetPoolByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Participant{}, ErrPoolNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("failed to find pool: %w", err)
	}

	_, err = r.store.GetParticipant(ctx, pool.ID, userID)
	if err == nil {
		return models.Participant{}, ErrAlreadyJoined
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Participant{}, fmt.Errorf("failed to check membership: %w", err)
	}

	if pool.OwnerID == nil {
		claimed, err := r.store.ClaimPoolOwner(ctx, pool.ID, userID)
		if err != nil {
			return models.Participant{}, fmt.Errorf("failed to claim owner: %w", err)
		}
		if claimed {
			slog.Info("pool owner claimed", "pool_id", pool.ID, "user_id", userID)
		}
	}

	participant := models.Participant{
		ID:       uuid.NewString(),
		PoolID:   pool.ID,
		UserID:   userID,
		JoinedAt: r.now().UTC(),
	}
	err = r.store.CreateParticipant(ctx, participant)
	if errors.Is(err, storage.ErrConflict) {
		// lost a race with a concurrent join for the same user
		return models.Participant{}, ErrAlreadyJoined
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("failed to create participant: %w", err)
	}

	return participant, nil
}
