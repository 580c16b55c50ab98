package i

import (
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/google/uuid"
)

// GameSessionManager manages game sessions and provides session-related information.
type GameSessionManager interface {
	// NewSession starts a game for the player and returns the session ID.
	NewSession(playerID uuid.UUID) (uuid.UUID, error)

	// Steer queues a direction change for the player's snake.
	Steer(playerID uuid.UUID, dir game.Direction) error

	// Reset restarts the player's game from its initial state.
	Reset(playerID uuid.UUID) error

	// State returns the latest encoded snapshot of the player's game.
	State(playerID uuid.UUID) ([]byte, error)

	// SessionInfo returns the UDP socket's public key and address for a player
	// with a live session.
	SessionInfo(playerID uuid.UUID) ([]byte, string, error)

	StopAll()
}
