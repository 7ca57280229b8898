// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package memory provides an in-process storage.Store used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/storage"
)

type participantKey struct{ poolID, userID string }

type guessKey struct{ participantID, gameID string }

// Store keeps every table in maps guarded by one mutex. Unique keys are checked
// and written under the same lock, mirroring a database unique index.
type Store struct {
	mu sync.Mutex

	pools        map[string]models.Pool
	poolsByCode  map[string]string
	participants map[participantKey]models.Participant
	users        map[string]models.User
	games        map[string]models.Game
	guesses      map[guessKey]models.Guess
}

func New() *Store {
	return &Store{
		pools:        make(map[string]models.Pool),
		poolsByCode:  make(map[string]string),
		participants: make(map[participantKey]models.Participant),
		users:        make(map[string]models.User),
		games:        make(map[string]models.Game),
		guesses:      make(map[guessKey]models.Guess),
	}
}

// PutGame seeds a game. Games are owned by the schedule service, so this is
// not part of storage.Store.
func (s *Store) PutGame(game models.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
}

func (s *Store) CreatePool(ctx context.Context, pool models.Pool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[pool.ID]; ok {
		return storage.ErrConflict
	}
	if _, ok := s.poolsByCode[pool.Code]; ok {
		return storage.ErrConflict
	}
	s.pools[pool.ID] = clonePool(pool)
	s.poolsByCode[pool.Code] = pool.ID
	return nil
}

func (s *Store) GetPool(ctx context.Context, id string) (models.Pool, error) {
	if err := ctx.Err(); err != nil {
		return models.Pool{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[id]
	if !ok {
		return models.Pool{}, storage.ErrNotFound
	}
	return clonePool(pool), nil
}

func (s *Store) GetPoolByCode(ctx context.Context, code string) (models.Pool, error) {
	if err := ctx.Err(); err != nil {
		return models.Pool{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.poolsByCode[code]
	if !ok {
		return models.Pool{}, storage.ErrNotFound
	}
	return clonePool(s.pools[id]), nil
}

func (s *Store) ClaimPoolOwner(ctx context.Context, poolID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[poolID]
	if !ok {
		return false, storage.ErrNotFound
	}
	if pool.OwnerID != nil {
		return false, nil
	}
	owner := userID
	pool.OwnerID = &owner
	s.pools[poolID] = pool
	return true, nil
}

func (s *Store) ListPoolsByParticipant(ctx context.Context, userID string) ([]models.Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pools := []models.Pool{}
	for key := range s.participants {
		if key.userID == userID {
			pools = append(pools, clonePool(s.pools[key.poolID]))
		}
	}
	sort.Slice(pools, func(i, j int) bool {
		if pools[i].CreatedAt.Equal(pools[j].CreatedAt) {
			return pools[i].ID < pools[j].ID
		}
		return pools[i].CreatedAt.After(pools[j].CreatedAt)
	})
	return pools, nil
}

func (s *Store) CountPools(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pools), nil
}

func (s *Store) CreateParticipant(ctx context.Context, participant models.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[participant.PoolID]; !ok {
		return storage.ErrNotFound
	}
	key := participantKey{participant.PoolID, participant.UserID}
	if _, ok := s.participants[key]; ok {
		return storage.ErrConflict
	}
	s.participants[key] = participant
	return nil
}

func (s *Store) GetParticipant(ctx context.Context, poolID, userID string) (models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return models.Participant{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[participantKey{poolID, userID}]
	if !ok {
		return models.Participant{}, storage.ErrNotFound
	}
	return participant, nil
}

func (s *Store) CountParticipants(ctx context.Context, poolID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.participants {
		if key.poolID == poolID {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListParticipantPreviews(ctx context.Context, poolID string, limit int) ([]models.ParticipantPreview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	members := []models.Participant{}
	for key, participant := range s.participants {
		if key.poolID == poolID {
			members = append(members, participant)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}

	previews := make([]models.ParticipantPreview, 0, len(members))
	for _, member := range members {
		preview := models.ParticipantPreview{ID: member.ID}
		if user, ok := s.users[member.UserID]; ok {
			preview.AvatarURL = user.AvatarURL
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetGame(ctx context.Context, id string) (models.Game, error) {
	if err := ctx.Err(); err != nil {
		return models.Game{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return models.Game{}, storage.ErrNotFound
	}
	return game, nil
}

func (s *Store) CreateGuess(ctx context.Context, guess models.Guess) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := guessKey{guess.ParticipantID, guess.GameID}
	if _, ok := s.guesses[key]; ok {
		return storage.ErrConflict
	}
	s.guesses[key] = guess
	return nil
}

func (s *Store) GetGuess(ctx context.Context, participantID, gameID string) (models.Guess, error) {
	if err := ctx.Err(); err != nil {
		return models.Guess{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	guess, ok := s.guesses[guessKey{participantID, gameID}]
	if !ok {
		return models.Guess{}, storage.ErrNotFound
	}
	return guess, nil
}

func (s *Store) CountGuesses(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.guesses), nil
}

// clonePool copies OwnerID so callers never share the stored pointer.
func clonePool(pool models.Pool) models.Pool {
	if pool.OwnerID != nil {
		owner := *pool.OwnerID
		pool.OwnerID = &owner
	}
	return pool
}

var _ storage.Store = (*Store)(nil)
