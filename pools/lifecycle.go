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

	"github.com/danielhkuo/pickpool/codegen"
	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/storage"
)

// DefaultMaxCodeAttempts bounds how many codes CreatePool tries before giving up
const DefaultMaxCodeAttempts = 5

type Lifecycle struct {
	store       storage.Store
	codes       codegen.Generator
	maxAttempts int
	now         func() time.Time
}

func NewLifecycle(store storage.Store, codes codegen.Generator, maxAttempts int) *Lifecycle {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxCodeAttempts
	}
	return &Lifecycle{store: store, codes: codes, maxAttempts: maxAttempts, now: time.Now}
}

// CreatePool persists a new pool under a fresh join code. A nil creatorID
// leaves the pool unowned until its first join.
func (l *Lifecycle) CreatePool(ctx context.Context, title string, creatorID *string) (models.Pool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Pool{}, ErrInvalidTitle
	}

	pool := models.Pool{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: l.now().UTC(),
	}
	if creatorID != nil {
		owner := *creatorID
		pool.OwnerID = &owner
	}

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		code, err := l.codes.Generate()
		if err != nil {
			return models.Pool{}, err
		}
		pool.Code = code

		err = l.store.CreatePool(ctx, pool)
		if err == nil {
			return pool, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return models.Pool{}, fmt.Errorf("failed to create pool: %w", err)
		}
		slog.Warn("join code collision", "attempt", attempt, "code", code)
	}

	return models.Pool{}, ErrCodeSpaceExhausted
}

func (l *Lifecycle) GetPool(ctx context.Context, id string) (models.PoolView, error) {
	pool, err := l.store.GetPool(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.PoolView{}, ErrPoolNotFound
	}
	if err != nil {
		return models.PoolView{}, fmt.Errorf("failed to get pool: %w", err)
	}
	return l.view(ctx, pool)
}

// ListPoolsForUser returns views of every pool userID participates in
func (l *Lifecycle) ListPoolsForUser(ctx context.Context, userID string) ([]models.PoolView, error) {
	pools, err := l.store.ListPoolsByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	views := make([]models.PoolView, 0, len(pools))
	for _, pool := range pools {
		v, err := l.view(ctx, pool)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (l *Lifecycle) CountPools(ctx context.Context) (int, error) {
	return l.store.CountPools(ctx)
}

func (l *Lifecycle) view(ctx context.Context, pool models.Pool) (models.PoolView, error) {
	v := models.PoolView{Pool: pool}

	count, err := l.store.CountParticipants(ctx, pool.ID)
	if err != nil {
		return models.PoolView{}, fmt.Errorf("failed to count participants: %w", err)
	}
	v.ParticipantCount = count

	v.Participants, err = l.store.ListParticipantPreviews(ctx, pool.ID, models.ParticipantPreviewLimit)
	if err != nil {
		return models.PoolView{}, fmt.Errorf("failed to list participants: %w", err)
	}

	if pool.OwnerID != nil {
		owner := &models.PoolOwner{ID: *pool.OwnerID}
		user, err := l.store.GetUser(ctx, *pool.OwnerID)
		switch {
		case err == nil:
			owner.Name = user.Name
		case !errors.Is(err, storage.ErrNotFound):
			return models.PoolView{}, fmt.Errorf("failed to get owner: %w", err)
		}
		v.Owner = owner
	}

	return v, nil
}
