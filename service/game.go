package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/beka-birhanu/vinom-snake/service/i"
)

// Action record types. The first byte of every action names its type.
const (
	moveActionType         = 3 << iota // Action type for direction changes.
	stateRequestActionType             // Action type for state requests.
	resetActionType                    // Action type for restarting the game.

	actionBufferSize = 8  // Pending actions accepted before Submit blocks.
	stateBufferSize  = 16 // Published states kept for a slow consumer.
)

// inputBuffer holds at most two directions between ticks. The first one is
// applied on the next tick and the second on the tick after; any further input
// replaces the second.
type inputBuffer struct {
	next  *game.Direction
	after *game.Direction
}

func (b *inputBuffer) push(d game.Direction) {
	if b.next == nil {
		b.next = &d
		return
	}
	b.after = &d
}

func (b *inputBuffer) pop() *game.Direction {
	d := b.next
	b.next, b.after = b.after, nil
	return d
}

func (b *inputBuffer) clear() {
	b.next, b.after = nil, nil
}

// Game runs one snake game in real time. It paces the rule engine with the
// engine's step time, feeds it buffered player input and publishes an encoded
// snapshot after every tick that changed the state.
type Game struct {
	engine       *game.Game    // The rule engine; guarded by the mutex.
	encoder      i.GameEncoder // Encoder for serializing game state.
	input        inputBuffer   // Directions waiting for the next ticks.
	stop         chan struct{} // Closed to signal stop.
	stopOnce     sync.Once
	done         chan struct{} // Closed when the loop has exited.
	actionChan   chan []byte   // Incoming action records.
	stateChan    chan []byte   // Channel for broadcasting state changes.
	endChan      chan []byte   // Channel to signal game completion.
	sync.RWMutex               // Read-Write lock for synchronizing access.
}

// NewGame creates a session for a fresh game built from cfg.
func NewGame(cfg game.Config, e i.GameEncoder) (*Game, error) {
	engine, err := game.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}

	return &Game{
		engine:     engine,
		encoder:    e,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		actionChan: make(chan []byte, actionBufferSize),
		stateChan:  make(chan []byte, stateBufferSize),
		endChan:    make(chan []byte, 1),
	}, nil
}

// Start runs the game until gameDuration elapses or Stop is called. A lost
// game keeps running so it can still be reset.
func (g *Game) Start(gameDuration time.Duration) {
	defer g.finish()

	timeout := time.NewTimer(gameDuration)
	defer timeout.Stop()
	ticker := time.NewTicker(g.stepTime())
	defer ticker.Stop()

	for {
		select {
		case <-g.stop:
			return
		case <-timeout.C:
			return
		case action := <-g.actionChan:
			g.handleAction(action)
		case <-ticker.C:
			if g.tick() {
				g.publish()
			}
		}
	}
}

// Stop signals the game loop to end. The final state is then delivered on
// EndChan and both channels are closed.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// Submit queues an action record. It returns false once the game has ended,
// including when the game ended while the action was being queued.
func (g *Game) Submit(action []byte) bool {
	select {
	case <-g.done:
		return false
	default:
	}

	select {
	case <-g.done:
		return false
	case g.actionChan <- action:
	}

	// The loop may have exited while the send was in flight; anything left in
	// the buffer then is never read.
	select {
	case <-g.done:
		return false
	default:
		return true
	}
}

// State returns the current encoded snapshot.
func (g *Game) State() ([]byte, error) {
	g.RLock()
	snap := g.engine.Snapshot()
	g.RUnlock()
	return g.encoder.MarshalGameState(snap)
}

// StateChan returns the state change channel.
func (g *Game) StateChan() <-chan []byte {
	return g.stateChan
}

// EndChan returns the end channel for the game.
func (g *Game) EndChan() <-chan []byte {
	return g.endChan
}

// handleAction processes incoming actions based on their type.
func (g *Game) handleAction(action []byte) {
	if len(action) == 0 {
		return
	}

	switch action[0] {
	case moveActionType:
		d, err := g.encoder.UnmarshalAction(action[1:])
		if err != nil {
			return
		}
		g.Lock()
		g.input.push(d)
		g.Unlock()
	case stateRequestActionType:
		g.publish()
	case resetActionType:
		g.Lock()
		g.engine.Reset()
		g.input.clear()
		g.Unlock()
		g.publish()
	}
}

// tick advances the engine once and reports whether anything could have
// changed.
func (g *Game) tick() bool {
	g.Lock()
	defer g.Unlock()
	if g.engine.Lost() {
		return false
	}
	g.engine.Step(g.input.pop())
	return true
}

// publish sends the current state to the state channel, dropping it if the
// consumer has fallen behind.
func (g *Game) publish() {
	payload, err := g.State()
	if err != nil {
		return
	}

	select {
	case g.stateChan <- payload:
	default:
	}
}

// finish marks the game as ended, delivers the final state and closes the
// output channels. Only the loop goroutine sends on them, so closing here is
// safe.
func (g *Game) finish() {
	close(g.done)
	if payload, err := g.State(); err == nil {
		g.endChan <- payload
	}
	close(g.stateChan)
	close(g.endChan)
}

func (g *Game) stepTime() time.Duration {
	g.RLock()
	defer g.RUnlock()
	return g.engine.StepTime()
}
