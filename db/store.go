// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/storage"
)

// Store implements storage.Store on PostgreSQL or SQLite.
type Store struct {
	db     *sql.DB
	dbType string
}

func NewStore(db *sql.DB, dbType string) *Store {
	return &Store{db: db, dbType: dbType}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// q rewrites ? placeholders into $N for PostgreSQL
func (s *Store) q(query string) string {
	if s.dbType != TypePostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

func (s *Store) CreatePool(ctx context.Context, pool models.Pool) error {
	var owner sql.NullString
	if pool.OwnerID != nil {
		owner = sql.NullString{String: *pool.OwnerID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO pool (id, title, code, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), pool.ID, pool.Title, pool.Code, owner, toMillis(pool.CreatedAt))
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert pool: %w", err)
	}
	return nil
}

const poolColumns = `p.id, p.title, p.code, p.owner_id, p.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPool(row rowScanner) (models.Pool, error) {
	var pool models.Pool
	var owner sql.NullString
	var createdAt int64
	if err := row.Scan(&pool.ID, &pool.Title, &pool.Code, &owner, &createdAt); err != nil {
		return models.Pool{}, err
	}
	if owner.Valid {
		pool.OwnerID = &owner.String
	}
	pool.CreatedAt = fromMillis(createdAt)
	return pool, nil
}

func (s *Store) GetPool(ctx context.Context, id string) (models.Pool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+poolColumns+` FROM pool p WHERE p.id = ?`), id)
	pool, err := scanPool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pool{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Pool{}, fmt.Errorf("get pool: %w", err)
	}
	return pool, nil
}

func (s *Store) GetPoolByCode(ctx context.Context, code string) (models.Pool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+poolColumns+` FROM pool p WHERE p.code = ?`), code)
	pool, err := scanPool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pool{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Pool{}, fmt.Errorf("get pool by code: %w", err)
	}
	return pool, nil
}

func (s *Store) ClaimPoolOwner(ctx context.Context, poolID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE pool SET owner_id = ?
		WHERE id = ? AND owner_id IS NULL
	`), userID, poolID)
	if err != nil {
		return false, fmt.Errorf("claim pool owner: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim pool owner: %w", err)
	}
	if affected == 1 {
		return true, nil
	}

	if _, err := s.GetPool(ctx, poolID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) ListPoolsByParticipant(ctx context.Context, userID string) ([]models.Pool, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+poolColumns+`
		FROM pool p
		JOIN participant pa ON pa.pool_id = p.id
		WHERE pa.user_id = ?
		ORDER BY p.created_at DESC, p.id
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	pools := []models.Pool{}
	for rows.Next() {
		pool, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		pools = append(pools, pool)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	return pools, nil
}

func (s *Store) CountPools(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM pool`)
}

func (s *Store) CreateParticipant(ctx context.Context, participant models.Participant) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO participant (id, pool_id, user_id, joined_at)
		VALUES (?, ?, ?, ?)
	`), participant.ID, participant.PoolID, participant.UserID, toMillis(participant.JoinedAt))
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *Store) GetParticipant(ctx context.Context, poolID, userID string) (models.Participant, error) {
	var participant models.Participant
	var joinedAt int64
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, pool_id, user_id, joined_at
		FROM participant
		WHERE pool_id = ? AND user_id = ?
	`), poolID, userID).Scan(&participant.ID, &participant.PoolID, &participant.UserID, &joinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	participant.JoinedAt = fromMillis(joinedAt)
	return participant, nil
}

func (s *Store) CountParticipants(ctx context.Context, poolID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM participant WHERE pool_id = ?`, poolID)
}

func (s *Store) ListParticipantPreviews(ctx context.Context, poolID string, limit int) ([]models.ParticipantPreview, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT pa.id, u.avatar_url
		FROM participant pa
		LEFT JOIN app_user u ON u.id = pa.user_id
		WHERE pa.pool_id = ?
		ORDER BY pa.joined_at, pa.id
		LIMIT ?
	`), poolID, limit)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	previews := []models.ParticipantPreview{}
	for rows.Next() {
		var preview models.ParticipantPreview
		var avatar sql.NullString
		if err := rows.Scan(&preview.ID, &avatar); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if avatar.Valid {
			preview.AvatarURL = &avatar.String
		}
		previews = append(previews, preview)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return previews, nil
}

func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	var avatar sql.NullString
	if user.AvatarURL != nil {
		avatar = sql.NullString{String: *user.AvatarURL, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO app_user (id, name, avatar_url)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url
	`), user.ID, user.Name, avatar)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	var avatar sql.NullString
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, name, avatar_url FROM app_user WHERE id = ?
	`), id).Scan(&user.ID, &user.Name, &avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, storage.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	if avatar.Valid {
		user.AvatarURL = &avatar.String
	}
	return user, nil
}

// PutGame inserts or replaces a game. Schedules belong to another service;
// this exists for seeding and tests.
func (s *Store) PutGame(ctx context.Context, game models.Game) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO game (id, starts_at, first_team_country_code, second_team_country_code)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			starts_at = excluded.starts_at,
			first_team_country_code = excluded.first_team_country_code,
			second_team_country_code = excluded.second_team_country_code
	`), game.ID, toMillis(game.StartsAt), game.FirstTeamCountryCode, game.SecondTeamCountryCode)
	if err != nil {
		return fmt.Errorf("put game: %w", err)
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id string) (models.Game, error) {
	var game models.Game
	var startsAt int64
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, starts_at, first_team_country_code, second_team_country_code
		FROM game
		WHERE id = ?
	`), id).Scan(&game.ID, &startsAt, &game.FirstTeamCountryCode, &game.SecondTeamCountryCode)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Game{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Game{}, fmt.Errorf("get game: %w", err)
	}
	game.StartsAt = fromMillis(startsAt)
	return game, nil
}

func (s *Store) CreateGuess(ctx context.Context, guess models.Guess) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO guess (id, participant_id, game_id, first_team_points, second_team_points, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), guess.ID, guess.ParticipantID, guess.GameID, guess.FirstTeamPoints, guess.SecondTeamPoints, toMillis(guess.CreatedAt))
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert guess: %w", err)
	}
	return nil
}

func (s *Store) GetGuess(ctx context.Context, participantID, gameID string) (models.Guess, error) {
	var guess models.Guess
	var createdAt int64
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, participant_id, game_id, first_team_points, second_team_points, created_at
		FROM guess
		WHERE participant_id = ? AND game_id = ?
	`), participantID, gameID).Scan(
		&guess.ID, &guess.ParticipantID, &guess.GameID,
		&guess.FirstTeamPoints, &guess.SecondTeamPoints, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Guess{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Guess{}, fmt.Errorf("get guess: %w", err)
	}
	guess.CreatedAt = fromMillis(createdAt)
	return guess, nil
}

func (s *Store) CountGuesses(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM guess`)
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.q(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

var _ storage.Store = (*Store)(nil)
