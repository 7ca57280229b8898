// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package storage defines the persistence contract used by the pool core.
package storage

import (
	"context"
	"errors"

	"github.com/danielhkuo/pickpool/models"
)

var (
	// ErrNotFound indicates a point lookup matched no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a create violated a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// Store is the persistence engine. Creates are atomic and enforce uniqueness on
// pool code, (pool, user) and (participant, game); a violation returns ErrConflict.
type Store interface {
	CreatePool(ctx context.Context, pool models.Pool) error
	GetPool(ctx context.Context, id string) (models.Pool, error)
	GetPoolByCode(ctx context.Context, code string) (models.Pool, error)
	// ClaimPoolOwner sets the owner only if the pool has none. It reports
	// whether this call performed the assignment.
	ClaimPoolOwner(ctx context.Context, poolID, userID string) (bool, error)
	ListPoolsByParticipant(ctx context.Context, userID string) ([]models.Pool, error)
	CountPools(ctx context.Context) (int, error)

	CreateParticipant(ctx context.Context, participant models.Participant) error
	GetParticipant(ctx context.Context, poolID, userID string) (models.Participant, error)
	CountParticipants(ctx context.Context, poolID string) (int, error)
	ListParticipantPreviews(ctx context.Context, poolID string, limit int) ([]models.ParticipantPreview, error)

	SaveUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)

	GetGame(ctx context.Context, id string) (models.Game, error)

	CreateGuess(ctx context.Context, guess models.Guess) error
	GetGuess(ctx context.Context, participantID, gameID string) (models.Guess, error)
	CountGuesses(ctx context.Context) (int, error)
}
