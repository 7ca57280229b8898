// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/pickpool/middleware"
	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/testutil"
)

// TestFullPoolWorkflow tests the complete end-to-end workflow:
// 1. Create an unowned pool
// 2. First joiner becomes owner
// 3. Second joiner joins with a lowercase code
// 4. Both submit guesses before kickoff
// 5. A late guess is rejected
// 6. Pool view and counters reflect everything
func TestFullPoolWorkflow(t *testing.T) {
	store := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	tokens := testutil.TestManager()
	poolHandler := NewPoolHandler(store, cfg)
	guessHandler := NewGuessHandler(store)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireIdentity(tokens, h)
	}
	alice := testutil.IssueTestToken(t, "alice", "Alice")
	bob := testutil.IssueTestToken(t, "bob", "Bob")

	// Step 1: Create a pool without a token
	req := testutil.MakeRequest("POST", "/pools", models.CreatePoolRequest{Title: "World Cup Office Pool"}, nil)
	w := httptest.NewRecorder()
	middleware.OptionalIdentity(tokens, poolHandler.CreatePool)(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create pool failed: %d - %s", w.Code, w.Body.String())
	}
	var created models.CreatePoolResponse
	testutil.AssertJSON(t, w, &created)
	t.Logf("Step 1 - Created pool %s with code %s", created.ID, created.Code)

	// Step 2: Alice joins and claims the pool
	req = testutil.MakeRequest("POST", "/pools/join", models.JoinPoolRequest{Code: created.Code}, map[string]string{
		"Authorization": alice,
	})
	w = httptest.NewRecorder()
	authed(poolHandler.JoinPool)(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Alice join failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 3: Bob joins with the code typed in lowercase
	req = testutil.MakeRequest("POST", "/pools/join", models.JoinPoolRequest{Code: strings.ToLower(created.Code)}, map[string]string{
		"Authorization": bob,
	})
	w = httptest.NewRecorder()
	authed(poolHandler.JoinPool)(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 3 - Bob join failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 4: Both guess the opener
	opener := testutil.AddTestGame(t, store, time.Now().Add(24*time.Hour))
	kickedOff := testutil.AddTestGame(t, store, time.Now().Add(-time.Hour))

	for _, token := range []string{alice, bob} {
		req = testutil.MakeRequest("POST", "/pools/"+created.ID+"/games/"+opener+"/guesses", models.SubmitGuessRequest{
			FirstTeamPoints:  intPtr(3),
			SecondTeamPoints: intPtr(1),
		}, map[string]string{"Authorization": token})
		req.SetPathValue("poolId", created.ID)
		req.SetPathValue("gameId", opener)
		w = httptest.NewRecorder()
		authed(guessHandler.SubmitGuess)(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 4 - Guess failed: %d - %s", w.Code, w.Body.String())
		}
	}

	// Step 5: Late guess
	req = testutil.MakeRequest("POST", "/pools/"+created.ID+"/games/"+kickedOff+"/guesses", models.SubmitGuessRequest{
		FirstTeamPoints:  intPtr(0),
		SecondTeamPoints: intPtr(0),
	}, map[string]string{"Authorization": alice})
	req.SetPathValue("poolId", created.ID)
	req.SetPathValue("gameId", kickedOff)
	w = httptest.NewRecorder()
	authed(guessHandler.SubmitGuess)(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Step 6: Pool view
	req = testutil.MakeRequest("GET", "/pools/"+created.ID, nil, map[string]string{"Authorization": bob})
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	authed(poolHandler.GetPool)(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.GetPoolResponse
	testutil.AssertJSON(t, w, &view)
	if view.Pool.ParticipantCount != 2 {
		t.Errorf("Step 6 - Expected 2 participants, got %d", view.Pool.ParticipantCount)
	}
	if view.Pool.Owner == nil || view.Pool.Owner.ID != "alice" || view.Pool.Owner.Name != "Alice" {
		t.Errorf("Step 6 - Expected Alice as owner, got %+v", view.Pool.Owner)
	}
	for _, p := range view.Pool.Participants {
		if p.AvatarURL == nil {
			t.Errorf("Step 6 - Expected avatar for participant %s", p.ID)
		}
	}

	w = httptest.NewRecorder()
	guessHandler.CountGuesses(w, testutil.MakeRequest("GET", "/guesses/count", nil, nil))
	var count models.CountResponse
	testutil.AssertJSON(t, w, &count)
	if count.Count != 2 {
		t.Errorf("Step 6 - Expected 2 guesses, got %d", count.Count)
	}
}
