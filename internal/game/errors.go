package game

import "errors"

var (
	// ErrInsufficientChips means an action's cost exceeds the acting
	// player's chips. The state machine recovers by converting the
	// action into a forced fold; it never surfaces to callers as a
	// hard failure.
	ErrInsufficientChips = errors.New("insufficient chips")

	// ErrIllegalAction means the action is not valid in the current
	// phase or for the current player. State is unchanged.
	ErrIllegalAction = errors.New("illegal action")

	// ErrNoOpponent means a showdown was requested with no eligible
	// opponent.
	ErrNoOpponent = errors.New("no opponent available for showdown")

	// ErrNotYourTurn means the submitting player is not the active
	// player.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrUnknownPlayer means the player ID is not seated in the game.
	ErrUnknownPlayer = errors.New("unknown player")
)
