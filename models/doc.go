// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePoolRequest: title
  - JoinPoolRequest: code
  - SubmitGuessRequest: first_team_points, second_team_points

# Response Types

Types for JSON responses:

  - CreatePoolResponse: id, code
  - JoinPoolResponse: message, participant_id
  - GetPoolResponse: pool
  - ListPoolsResponse: pools
  - CountResponse: count
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Pool: title, join code and optional owner
  - Participant: one user's membership in one pool
  - Game: externally scheduled match with a start time
  - Guess: a participant's predicted score for one game
  - User: display profile taken from the identity token

# Projections

PoolView is the read model returned by GET /pools and GET /pools/{id}. It embeds
the Pool and adds the participant count, up to ParticipantPreviewLimit avatars
and the owner's id and name.
*/
package models
