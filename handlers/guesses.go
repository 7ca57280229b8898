// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pickpool/middleware"
	"github.com/danielhkuo/pickpool/models"
	"github.com/danielhkuo/pickpool/pools"
	"github.com/danielhkuo/pickpool/storage"
)

type GuessHandler struct {
	ledger *pools.Ledger
}

func NewGuessHandler(store storage.Store) *GuessHandler {
	return &GuessHandler{ledger: pools.NewLedger(store)}
}

// SubmitGuess handles POST /pools/{poolId}/games/{gameId}/guesses
func (h *GuessHandler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authorization header required")
		return
	}

	poolID := r.PathValue("poolId")
	gameID := r.PathValue("gameId")
	if poolID == "" || gameID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "pool id and game id are required")
		return
	}

	var req models.SubmitGuessRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.FirstTeamPoints == nil || req.SecondTeamPoints == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "first_team_points and second_team_points are required")
		return
	}
	if *req.FirstTeamPoints < 0 || *req.SecondTeamPoints < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "points must not be negative")
		return
	}

	guess, err := h.ledger.SubmitGuess(r.Context(), models.GuessInput{
		PoolID:           poolID,
		GameID:           gameID,
		UserID:           id.UserID,
		FirstTeamPoints:  *req.FirstTeamPoints,
		SecondTeamPoints: *req.SecondTeamPoints,
	})
	if err != nil {
		middleware.WriteError(w, err, "Failed to submit guess")
		return
	}

	slog.Info("guess submitted", "pool_id", poolID, "game_id", gameID, "participant_id", guess.ParticipantID)

	middleware.JSONResponse(w, http.StatusCreated, guess)
}

// CountGuesses handles GET /guesses/count
func (h *GuessHandler) CountGuesses(w http.ResponseWriter, r *http.Request) {
	n, err := h.ledger.CountGuesses(r.Context())
	if err != nil {
		middleware.WriteError(w, err, "Failed to count guesses")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CountResponse{Count: n})
}
