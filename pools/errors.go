// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pools

import "errors"

// Kind classifies an expected outcome so transports can map it to a status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindValidation
)

type domainError struct {
	kind Kind
	msg  string
}

func (e *domainError) Error() string { return e.msg }

var (
	ErrPoolNotFound   = &domainError{KindNotFound, "pool not found"}
	ErrGameNotFound   = &domainError{KindNotFound, "game not found"}
	ErrAlreadyJoined  = &domainError{KindConflict, "already joined"}
	ErrAlreadyGuessed = &domainError{KindConflict, "you already made a guess for this game"}
	ErrNotParticipant = &domainError{KindForbidden, "you're not allowed to create a guess for this pool"}
	ErrGameStarted    = &domainError{KindValidation, "you can't create a guess for a game that already started"}
	ErrInvalidTitle   = &domainError{KindValidation, "title is required"}
)

// ErrCodeSpaceExhausted means every generated code collided. It points at a
// misconfigured generator or retry budget, not at anything the caller did.
var ErrCodeSpaceExhausted = errors.New("join code generation exhausted its retry budget")

// KindOf returns the Kind of err, or KindInternal for anything unrecognised.
func KindOf(err error) Kind {
	var de *domainError
	if errors.As(err, &de) {
		return de.kind
	}
	return KindInternal
}
