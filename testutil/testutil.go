// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pickpool/auth"
	"github.com/danielhkuo/pickpool/cliparse"
	"github.com/danielhkuo/pickpool/db"
	"github.com/danielhkuo/pickpool/middleware"
	"github.com/danielhkuo/pickpool/models"
)

// TestJWTSecret signs every token minted by these helpers
const TestJWTSecret = "test-jwt-secret"

// SetupTestStore opens a fresh SQLite database in a temp dir with the full schema
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "pickpool.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db.NewStore(conn, db.TypeSQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3333,
		DatabaseURL:     "pickpool-test.db",
		DatabaseType:    db.TypeSQLite,
		JWTSecret:       TestJWTSecret,
		MaxCodeAttempts: 5,
		JoinRPS:         1000,
		JoinBurst:       1000,
	}
}

// TestManager returns a token manager using TestJWTSecret
func TestManager() *auth.Manager {
	return auth.NewManager(TestJWTSecret, time.Hour)
}

// IssueTestToken returns an Authorization header value for the given user
func IssueTestToken(t *testing.T, userID, name string) string {
	t.Helper()

	token, err := TestManager().IssueToken(userID, name, "https://example.com/"+userID+".png")
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return "Bearer " + token
}

// WithUser attaches an identity to the request as RequireIdentity would
func WithUser(r *http.Request, userID, name string) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), auth.Identity{UserID: userID, Name: name}))
}

// CreateTestPool inserts a pool and returns it. A non-empty ownerID also
// saves a profile for that user.
func CreateTestPool(t *testing.T, s *db.Store, title, code, ownerID string) models.Pool {
	t.Helper()

	ctx := context.Background()
	pool := models.Pool{
		ID:        uuid.NewString(),
		Title:     title,
		Code:      code,
		CreatedAt: time.Now(),
	}
	if ownerID != "" {
		if err := s.SaveUser(ctx, models.User{ID: ownerID, Name: "Owner " + ownerID}); err != nil {
			t.Fatalf("Failed to create test owner: %v", err)
		}
		pool.OwnerID = &ownerID
	}

	if err := s.CreatePool(ctx, pool); err != nil {
		t.Fatalf("Failed to create test pool: %v", err)
	}
	return pool
}

// JoinTestPool adds userID to the pool and returns the participant ID
func JoinTestPool(t *testing.T, s *db.Store, poolID, userID string) string {
	t.Helper()

	ctx := context.Background()
	if err := s.SaveUser(ctx, models.User{ID: userID, Name: "User " + userID}); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	participant := models.Participant{
		ID:       uuid.NewString(),
		PoolID:   poolID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	if err := s.CreateParticipant(ctx, participant); err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}
	return participant.ID
}

// AddTestGame inserts a game kicking off at startsAt and returns its ID
func AddTestGame(t *testing.T, s *db.Store, startsAt time.Time) string {
	t.Helper()

	game := models.Game{
		ID:                    uuid.NewString(),
		StartsAt:              startsAt,
		FirstTeamCountryCode:  "BR",
		SecondTeamCountryCode: "AR",
	}
	if err := s.PutGame(context.Background(), game); err != nil {
		t.Fatalf("Failed to create test game: %v", err)
	}
	return game.ID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
