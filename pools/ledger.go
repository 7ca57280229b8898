// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/storage"
)

type Ledger struct {
	store storage.Store
	now   func() time.Time
}

func NewLedger(store storage.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// SubmitGuess records one score prediction. Submissions close at kickoff.
func (l *Ledger) SubmitGuess(ctx context.Context, in models.GuessInput) (models.Guess, error) {
	participant, err := l.store.GetParticipant(ctx, in.PoolID, in.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Guess{}, ErrNotParticipant
	}
	if err != nil {
		return models.Guess{}, fmt.Errorf("failed to find participant: %w", err)
	}

	_, err = l.store.GetGuess(ctx, participant.ID, in.GameID)
	if err == nil {
		return models.Guess{}, ErrAlreadyGuessed
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Guess{}, fmt.Errorf("failed to check guess: %w", err)
	}

	game, err := l.store.GetGame(ctx, in.GameID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Guess{}, ErrGameNotFound
	}
	if err != nil {
		return models.Guess{}, fmt.Errorf("failed to find game: %w", err)
	}

	now := l.now()
	if !game.StartsAt.After(now) {
		return models.Guess{}, ErrGameStarted
	}

	guess := models.Guess{
		ID:               uuid.NewString(),
		ParticipantID:    participant.ID,
		GameID:           game.ID,
		FirstTeamPoints:  in.FirstTeamPoints,
		SecondTeamPoints: in.SecondTeamPoints,
		CreatedAt:        now.UTC(),
	}
	err = l.store.CreateGuess(ctx, guess)
	if errors.Is(err, storage.ErrConflict) {
		return models.Guess{}, ErrAlreadyGuessed
	}
	if err != nil {
		return models.Guess{}, fmt.Errorf("failed to create guess: %w", err)
	}

	return guess, nil
}

func (l *Ledger) CountGuesses(ctx context.Context) (int, error) {
	return l.store.CountGuesses(ctx)
}
