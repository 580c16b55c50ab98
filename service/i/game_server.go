package i

import (
	"time"

	"github.com/beka-birhanu/vinom-snake/game"
)

// GameServer defines the interface for a running snake game session.
type GameServer interface {
	// Start runs the game loop until the duration elapses or Stop is called.
	Start(gameDuration time.Duration)

	// Stop ends the game, closes channels, and publishes the final state.
	Stop()

	// Submit queues an action record; it returns false once the game has ended.
	Submit(action []byte) bool

	// State returns the current encoded snapshot.
	State() ([]byte, error)

	// StateChan returns the state change channel.
	StateChan() <-chan []byte

	// EndChan returns the end channel for the game.
	EndChan() <-chan []byte
}

// GameEncoder serialises snapshots and direction actions.
type GameEncoder interface {
	MarshalGameState(game.Snapshot) ([]byte, error)
	UnmarshalGameState([]byte) (game.Snapshot, error)
	MarshalAction(game.Direction) ([]byte, error)
	UnmarshalAction([]byte) (game.Direction, error)
}
