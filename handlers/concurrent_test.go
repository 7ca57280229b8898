// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/testutil"
)

// TestConcurrentJoins verifies that simultaneous joins from distinct users all
// succeed and exactly one of them claims the unowned pool
func TestConcurrentJoins(t *testing.T) {
	store := testutil.SetupTestStore(t)
	h := NewPoolHandler(store, testutil.GetTestConfig())
	pool := testutil.CreateTestPool(t, store, "Rush", "RUSHHH", "")

	numUsers := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numUsers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			userID := "rusher-" + string(rune('A'+idx))
			req := testutil.MakeRequest("POST", "/pools/join", models.JoinPoolRequest{Code: "RUSHHH"}, nil)
			req = testutil.WithUser(req, userID, userID)
			w := httptest.NewRecorder()

			h.JoinPool(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numUsers {
		t.Errorf("Expected %d successful joins, got %d", numUsers, successCount.Load())
	}

	n, err := store.CountParticipants(context.Background(), pool.ID)
	if err != nil {
		t.Fatalf("CountParticipants() error = %v", err)
	}
	if n != numUsers {
		t.Errorf("Expected %d participants, got %d", numUsers, n)
	}

	got, _ := store.GetPool(context.Background(), pool.ID)
	if got.OwnerID == nil {
		t.Error("Expected one joiner to claim the pool")
	}
}

// TestConcurrentDuplicateJoins verifies that a user racing themselves gets
// exactly one participant row and conflicts for the rest
func TestConcurrentDuplicateJoins(t *testing.T) {
	store := testutil.SetupTestStore(t)
	h := NewPoolHandler(store, testutil.GetTestConfig())
	pool := testutil.CreateTestPool(t, store, "Twice", "TWICEE", "")

	attempts := 10
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/pools/join", models.JoinPoolRequest{Code: "TWICEE"}, nil)
			req = testutil.WithUser(req, "same-user", "Same")
			w := httptest.NewRecorder()

			h.JoinPool(w, req)

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 successful join, got %d", created.Load())
	}
	if conflicts.Load() != int32(attempts-1) {
		t.Errorf("Expected %d conflicts, got %d", attempts-1, conflicts.Load())
	}

	n, _ := store.CountParticipants(context.Background(), pool.ID)
	if n != 1 {
		t.Errorf("Expected 1 participant, got %d", n)
	}
}

// TestConcurrentDuplicateGuesses verifies that one participant submitting the
// same game many times at once ends up with a single guess
func TestConcurrentDuplicateGuesses(t *testing.T) {
	store := testutil.SetupTestStore(t)
	h := NewGuessHandler(store)

	pool := testutil.CreateTestPool(t, store, "Guessers", "GUESSR", "")
	testutil.JoinTestPool(t, store, pool.ID, "eager")
	game := testutil.AddTestGame(t, store, time.Now().Add(time.Hour))

	attempts := 10
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			w := submitGuess(h, pool.ID, game, "eager", models.SubmitGuessRequest{
				FirstTeamPoints:  intPtr(idx),
				SecondTeamPoints: intPtr(0),
			})

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted guess, got %d", created.Load())
	}
	if conflicts.Load() != int32(attempts-1) {
		t.Errorf("Expected %d conflicts, got %d", attempts-1, conflicts.Load())
	}

	n, _ := store.CountGuesses(context.Background())
	if n != 1 {
		t.Errorf("Expected 1 stored guess, got %d", n)
	}
}

// TestConcurrentPoolCreation verifies that many pools created at once all get
// distinct codes
func TestConcurrentPoolCreation(t *testing.T) {
	store := testutil.SetupTestStore(t)
	h := NewPoolHandler(store, testutil.GetTestConfig())

	numPools := 20
	codes := make([]string, numPools)
	var wg sync.WaitGroup

	for i := 0; i < numPools; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/pools", models.CreatePoolRequest{Title: "Pool"}, nil)
			w := httptest.NewRecorder()
			h.CreatePool(w, req)

			if w.Code != http.StatusCreated {
				t.Errorf("Pool %d: expected 201, got %d", idx, w.Code)
				return
			}
			var resp models.CreatePoolResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Errorf("Pool %d: decode error = %v", idx, err)
				return
			}
			codes[idx] = resp.Code
		}(i)
	}

	wg.Wait()

	seen := make(map[string]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate code %s", code)
		}
		seen[code] = true
	}

	n, _ := store.CountPools(context.Background())
	if n != numPools {
		t.Errorf("Expected %d pools, got %d", numPools, n)
	}
}
