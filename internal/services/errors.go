package services

import "errors"

// User-visible failure taxonomy. Authorization and lookup errors short-circuit
// before any mutation; the validation errors only ever touch the transient
// selection, never position, turn or scores.
var (
	ErrUnauthorized       = errors.New("not authorized")
	ErrChallengeNotFound  = errors.New("challenge no longer available")
	ErrGameNotFound       = errors.New("game not found")
	ErrSelfChallenge      = errors.New("cannot play against yourself")
	ErrNotAParticipant    = errors.New("not a participant in this game")
	ErrOutOfTurn          = errors.New("not your turn")
	ErrEmptyOrForeignCell = errors.New("cell is empty or not your piece")
)
