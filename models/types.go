package models

import "time"

// Pool projection limits
const (
	// ParticipantPreviewLimit caps the avatars returned with a pool view
	ParticipantPreviewLimit = 4
)

// Request types

type CreatePoolRequest struct {
	Title string `json:"title"`
}

type JoinPoolRequest struct {
	Code string `json:"code"`
}

// Scores are pointers so a missing field can be told apart from 0
type SubmitGuessRequest struct {
	FirstTeamPoints  *int `json:"first_team_points"`
	SecondTeamPoints *int `json:"second_team_points"`
}

// Response types

type CreatePoolResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type JoinPoolResponse struct {
	Message       string `json:"message"`
	ParticipantID string `json:"participant_id"`
}

type GetPoolResponse struct {
	Pool PoolView `json:"pool"`
}

type ListPoolsResponse struct {
	Pools []PoolView `json:"pools"`
}

type CountResponse struct {
	Count int `json:"count"`
}

// Domain types

type Pool struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Code      string    `json:"code"`
	OwnerID   *string   `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Participant struct {
	ID       string    `json:"id"`
	PoolID   string    `json:"pool_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Game is read-only here; schedules are loaded by another service
type Game struct {
	ID                    string    `json:"id"`
	StartsAt              time.Time `json:"starts_at"`
	FirstTeamCountryCode  string    `json:"first_team_country_code"`
	SecondTeamCountryCode string    `json:"second_team_country_code"`
}

type Guess struct {
	ID               string    `json:"id"`
	ParticipantID    string    `json:"participant_id"`
	GameID           string    `json:"game_id"`
	FirstTeamPoints  int       `json:"first_team_points"`
	SecondTeamPoints int       `json:"second_team_points"`
	CreatedAt        time.Time `json:"created_at"`
}

// GuessInput is everything SubmitGuess needs from the caller
type GuessInput struct {
	PoolID           string
	GameID           string
	UserID           string
	FirstTeamPoints  int
	SecondTeamPoints int
}

type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Projection types

type ParticipantPreview struct {
	ID        string  `json:"id"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type PoolOwner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PoolView struct {
	Pool
	ParticipantCount int                  `json:"participant_count"`
	Participants     []ParticipantPreview `json:"participants"`
	Owner            *PoolOwner           `json:"owner,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
