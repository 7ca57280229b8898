// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pools holds the rules for prediction pools, memberships and guesses.

# Components

  - Lifecycle: creates pools under a unique join code and builds PoolView projections
  - Registry: joins a user to a pool by code, claiming ownership of unowned pools
  - Ledger: records one guess per participant per game, before kickoff

Each component takes a storage.Store:

	store := memory.New()
	lifecycle := pools.NewLifecycle(store, codegen.NewRandom(), pools.DefaultMaxCodeAttempts)
	registry := pools.NewRegistry(store)
	ledger := pools.NewLedger(store)

# Races

Every "check, then create" step is backed by a unique constraint in the store.
When a concurrent request wins, the store answers storage.ErrConflict and the
component reports the matching domain error:

	CreatePool  code collision     → retry with a new code
	JoinPool    (pool, user)       → ErrAlreadyJoined
	SubmitGuess (participant, game) → ErrAlreadyGuessed

Ownership is claimed with a conditional update that only fills an empty owner,
so a pool's owner is assigned at most once.

# Errors

Expected outcomes are sentinel errors with a Kind:

	KindNotFound    ErrPoolNotFound, ErrGameNotFound
	KindConflict    ErrAlreadyJoined, ErrAlreadyGuessed
	KindForbidden   ErrNotParticipant
	KindValidation  ErrGameStarted, ErrInvalidTitle

ErrCodeSpaceExhausted has no Kind (KindInternal): it means the generator or the
retry budget is misconfigured.
*/
package pools
