// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "pickpool.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}
	// second call must be a no-op
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema() twice error = %v", err)
	}

	return NewStore(conn, TypeSQLite)
}

var testTime = time.Date(2026, time.June, 11, 16, 0, 0, 0, time.UTC)

func seedPool(t *testing.T, s *Store, id, code string, owner *string) models.Pool {
	t.Helper()
	pool := models.Pool{ID: id, Title: "Pool " + id, Code: code, OwnerID: owner, CreatedAt: testTime}
	if err := s.CreatePool(context.Background(), pool); err != nil {
		t.Fatalf("CreatePool(%s) error = %v", id, err)
	}
	return pool
}

func TestOpen_RejectsUnknownType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("Open(mysql) should fail")
	}
	if _, err := Open(TypeSQLite, "  "); err == nil {
		t.Error("Open(sqlite, blank) should fail")
	}
}

func TestPoolRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := "user-1"
	seedPool(t, s, "p1", "ABC123", &owner)

	got, err := s.GetPool(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPool() error = %v", err)
	}
	if got.Code != "ABC123" || got.OwnerID == nil || *got.OwnerID != "user-1" {
		t.Errorf("GetPool() = %+v", got)
	}
	if !got.CreatedAt.Equal(testTime) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testTime)
	}

	byCode, err := s.GetPoolByCode(ctx, "ABC123")
	if err != nil {
		t.Fatalf("GetPoolByCode() error = %v", err)
	}
	if byCode.ID != "p1" {
		t.Errorf("GetPoolByCode() id = %q, want p1", byCode.ID)
	}

	if _, err := s.GetPool(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetPool(missing) error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := s.GetPoolByCode(ctx, "ZZZZZZ"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetPoolByCode(missing) error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreatePool_DuplicateCodeIsConflict(t *testing.T) {
	s := openTestStore(t)
	seedPool(t, s, "p1", "ABC123", nil)

	err := s.CreatePool(context.Background(), models.Pool{ID: "p2", Title: "dup", Code: "ABC123", CreatedAt: testTime})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("CreatePool(dup code) error = %v, want %v", err, storage.ErrConflict)
	}

	count, err := s.CountPools(context.Background())
	if err != nil {
		t.Fatalf("CountPools() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountPools() = %d, want 1", count)
	}
}

func TestClaimPoolOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPool(t, s, "p1", "ABC123", nil)

	claimed, err := s.ClaimPoolOwner(ctx, "p1", "first")
	if err != nil || !claimed {
		t.Fatalf("ClaimPoolOwner(first) = %v, %v; want true, nil", claimed, err)
	}

	claimed, err = s.ClaimPoolOwner(ctx, "p1", "second")
	if err != nil || claimed {
		t.Fatalf("ClaimPoolOwner(second) = %v, %v; want false, nil", claimed, err)
	}

	pool, _ := s.GetPool(ctx, "p1")
	if pool.OwnerID == nil || *pool.OwnerID != "first" {
		t.Errorf("owner = %v, want first", pool.OwnerID)
	}

	if _, err := s.ClaimPoolOwner(ctx, "missing", "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ClaimPoolOwner(missing) error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestParticipants(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPool(t, s, "p1", "ABC123", nil)
	seedPool(t, s, "p2", "DEF456", nil)

	avatar := "https://example.com/a.png"
	if err := s.SaveUser(ctx, models.User{ID: "u0", Name: "Ana", AvatarURL: &avatar}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	for i, user := range []string{"u0", "u1", "u2", "u3", "u4"} {
		err := s.CreateParticipant(ctx, models.Participant{
			ID:       "pa-" + user,
			PoolID:   "p1",
			UserID:   user,
			JoinedAt: testTime.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateParticipant(%s) error = %v", user, err)
		}
	}

	err := s.CreateParticipant(ctx, models.Participant{ID: "pa-dup", PoolID: "p1", UserID: "u0", JoinedAt: testTime})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("CreateParticipant(dup) error = %v, want %v", err, storage.ErrConflict)
	}

	// same user in another pool is fine
	if err := s.CreateParticipant(ctx, models.Participant{ID: "pa-p2", PoolID: "p2", UserID: "u0", JoinedAt: testTime}); err != nil {
		t.Fatalf("CreateParticipant(p2) error = %v", err)
	}

	got, err := s.GetParticipant(ctx, "p1", "u3")
	if err != nil {
		t.Fatalf("GetParticipant() error = %v", err)
	}
	if got.ID != "pa-u3" || !got.JoinedAt.Equal(testTime.Add(3*time.Minute)) {
		t.Errorf("GetParticipant() = %+v", got)
	}
	if _, err := s.GetParticipant(ctx, "p2", "u3"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetParticipant(not member) error = %v, want %v", err, storage.ErrNotFound)
	}

	count, _ := s.CountParticipants(ctx, "p1")
	if count != 5 {
		t.Errorf("CountParticipants() = %d, want 5", count)
	}

	previews, err := s.ListParticipantPreviews(ctx, "p1", models.ParticipantPreviewLimit)
	if err != nil {
		t.Fatalf("ListParticipantPreviews() error = %v", err)
	}
	if len(previews) != 4 {
		t.Fatalf("len(previews) = %d, want 4", len(previews))
	}
	if previews[0].ID != "pa-u0" || previews[0].AvatarURL == nil || *previews[0].AvatarURL != avatar {
		t.Errorf("previews[0] = %+v, want pa-u0 with avatar", previews[0])
	}
	if previews[1].AvatarURL != nil {
		t.Errorf("previews[1] avatar = %v, want nil", *previews[1].AvatarURL)
	}

	pools, err := s.ListPoolsByParticipant(ctx, "u0")
	if err != nil {
		t.Fatalf("ListPoolsByParticipant() error = %v", err)
	}
	if len(pools) != 2 {
		t.Errorf("ListPoolsByParticipant(u0) = %d pools, want 2", len(pools))
	}
	pools, _ = s.ListPoolsByParticipant(ctx, "nobody")
	if len(pools) != 0 {
		t.Errorf("ListPoolsByParticipant(nobody) = %d pools, want 0", len(pools))
	}
}

func TestSaveUser_Upserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SaveUser(ctx, models.User{ID: "u1", Name: "Old"})
	avatar := "https://example.com/new.png"
	if err := s.SaveUser(ctx, models.User{ID: "u1", Name: "New", AvatarURL: &avatar}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	user, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Name != "New" || user.AvatarURL == nil || *user.AvatarURL != avatar {
		t.Errorf("GetUser() = %+v", user)
	}
	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUser(missing) error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestGuesses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPool(t, s, "p1", "ABC123", nil)
	s.CreateParticipant(ctx, models.Participant{ID: "pa1", PoolID: "p1", UserID: "u1", JoinedAt: testTime})

	kickoff := testTime.Add(48 * time.Hour)
	if err := s.PutGame(ctx, models.Game{ID: "g1", StartsAt: kickoff, FirstTeamCountryCode: "BR", SecondTeamCountryCode: "DE"}); err != nil {
		t.Fatalf("PutGame() error = %v", err)
	}
	game, err := s.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGame() error = %v", err)
	}
	if !game.StartsAt.Equal(kickoff) || game.SecondTeamCountryCode != "DE" {
		t.Errorf("GetGame() = %+v", game)
	}
	if _, err := s.GetGame(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetGame(missing) error = %v, want %v", err, storage.ErrNotFound)
	}

	guess := models.Guess{ID: "gs1", ParticipantID: "pa1", GameID: "g1", FirstTeamPoints: 7, SecondTeamPoints: 1, CreatedAt: testTime}
	if err := s.CreateGuess(ctx, guess); err != nil {
		t.Fatalf("CreateGuess() error = %v", err)
	}

	dup := guess
	dup.ID = "gs2"
	if err := s.CreateGuess(ctx, dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("CreateGuess(dup) error = %v, want %v", err, storage.ErrConflict)
	}

	got, err := s.GetGuess(ctx, "pa1", "g1")
	if err != nil {
		t.Fatalf("GetGuess() error = %v", err)
	}
	if got.ID != "gs1" || got.FirstTeamPoints != 7 || got.SecondTeamPoints != 1 {
		t.Errorf("GetGuess() = %+v", got)
	}
	if _, err := s.GetGuess(ctx, "pa1", "g2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetGuess(missing) error = %v, want %v", err, storage.ErrNotFound)
	}

	count, _ := s.CountGuesses(ctx)
	if count != 1 {
		t.Errorf("CountGuesses() = %d, want 1", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres unique", &pq.Error{Code: "23505"}, true},
		{"postgres foreign key", &pq.Error{Code: "23503"}, false},
		{"sqlite message", errors.New("constraint failed: UNIQUE constraint failed: pool.code (2067)"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUniqueViolation_SQLiteForeignKeyIsNot(t *testing.T) {
	s := openTestStore(t)

	err := s.CreateParticipant(context.Background(), models.Participant{ID: "pa", PoolID: "no-such-pool", UserID: "u", JoinedAt: testTime})
	if err == nil {
		t.Fatal("expected foreign key error")
	}
	if errors.Is(err, storage.ErrConflict) {
		t.Errorf("foreign key failure reported as conflict: %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := NewStore(nil, TypePostgres)
	got := pg.q(`SELECT * FROM participant WHERE pool_id = ? AND user_id = ?`)
	want := `SELECT * FROM participant WHERE pool_id = $1 AND user_id = $2`
	if got != want {
		t.Errorf("q() = %q, want %q", got, want)
	}

	lite := NewStore(nil, TypeSQLite)
	if got := lite.q(`a = ?`); got != `a = ?` {
		t.Errorf("sqlite q() = %q, want unchanged", got)
	}
}
