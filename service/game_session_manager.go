package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/google/uuid"
)

// Session errors.
var (
	ErrNoSession     = errors.New("player does not have game session")
	ErrSessionExists = errors.New("player already has a game session")
	ErrMissingLogger = errors.New("logger is required")
	ErrMissingSocket = errors.New("client socket is required")
	ErrInvalidToken  = errors.New("invalid token")
)

const (
	defaultGameDuration = 10 * time.Minute

	gameStateRecordType = 10 // Record type of a pushed game state.
	gameEndedRecordType = 11 // Record type of the final game state.
)

type session struct {
	gameSession i.GameServer
	player      uuid.UUID
	latest      []byte // Last published state.
}

// GameSessionManager runs one snake game per player and relays their input.
type GameSessionManager struct {
	sessions        map[uuid.UUID]*session
	playerToSession map[uuid.UUID]uuid.UUID
	gameConfig      game.Config
	gameDuration    time.Duration
	gameEncoder     i.GameEncoder
	socket          i.ClientSocket
	logger          general_i.Logger
	listeners       sync.WaitGroup
	sync.RWMutex
}

// Config configures a GameSessionManager.
type Config struct {
	GameConfig   game.Config   // Template for every new game
	GameDuration time.Duration // Lifetime of a session; defaults to ten minutes
	GameEncoder  i.GameEncoder
	Socket       i.ClientSocket // Pushes states to players and receives their actions
	Logger       general_i.Logger
}

// NewGameSessionManager validates the game template and returns an empty
// manager. The caller registers the manager's HandleClientRequest and
// Authenticate with the socket that delivers player records.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.Logger == nil {
		return nil, ErrMissingLogger
	}
	if c.Socket == nil {
		return nil, ErrMissingSocket
	}
	template, err := game.New(c.GameConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	duration := c.GameDuration
	if duration <= 0 {
		duration = defaultGameDuration
	}

	return &GameSessionManager{
		sessions:        make(map[uuid.UUID]*session),
		playerToSession: make(map[uuid.UUID]uuid.UUID),
		gameConfig:      template.Config(),
		gameDuration:    duration,
		gameEncoder:     c.GameEncoder,
		socket:          c.Socket,
		logger:          c.Logger,
	}, nil
}

// NewSession starts a game for the player and returns its session ID.
func (g *GameSessionManager) NewSession(playerID uuid.UUID) (uuid.UUID, error) {
	g.Lock()
	defer g.Unlock()
	if _, ok := g.playerToSession[playerID]; ok {
		g.logger.Warning(fmt.Sprintf("player %s already has a session", playerID))
		return uuid.Nil, ErrSessionExists
	}

	gameServer, err := NewGame(g.gameConfig, g.gameEncoder)
	if err != nil {
		g.logger.Error(fmt.Sprintf("creating new game server: %s", err))
		return uuid.Nil, err
	}

	initial, err := gameServer.State()
	if err != nil {
		g.logger.Warning(fmt.Sprintf("encoding initial state: %s", err))
	}

	sessionID := g.saveSession(playerID, gameServer, initial)
	g.listeners.Add(1)
	go gameServer.Start(g.gameDuration)
	go g.listenGameChan(sessionID, []uuid.UUID{playerID}, gameServer)
	g.logger.Info(fmt.Sprintf("started new game %s for player: %s", sessionID, playerID))
	return sessionID, nil
}

// Steer queues a direction change for the player's snake.
func (g *GameSessionManager) Steer(playerID uuid.UUID, dir game.Direction) error {
	payload, err := g.gameEncoder.MarshalAction(dir)
	if err != nil {
		return err
	}
	return g.writePlayerRequest(playerID, moveActionType, payload)
}

// Reset restarts the player's game.
func (g *GameSessionManager) Reset(playerID uuid.UUID) error {
	return g.writePlayerRequest(playerID, resetActionType, nil)
}

// State returns the latest state published by the player's game.
func (g *GameSessionManager) State(playerID uuid.UUID) ([]byte, error) {
	g.RLock()
	defer g.RUnlock()
	sessionID, ok := g.playerToSession[playerID]
	if !ok {
		return nil, ErrNoSession
	}

	latest := g.sessions[sessionID].latest
	out := make([]byte, len(latest))
	copy(out, latest)
	return out, nil
}

// SessionInfo returns the socket's public key and address for a player with a
// live session.
func (g *GameSessionManager) SessionInfo(playerID uuid.UUID) ([]byte, string, error) {
	g.RLock()
	defer g.RUnlock()
	if _, ok := g.playerToSession[playerID]; !ok {
		return nil, "", ErrNoSession
	}
	return g.socket.GetPublicKey(), g.socket.GetAddr(), nil
}

// Authenticate accepts a socket handshake token holding the 16 bytes of a
// player ID that has a live session.
func (g *GameSessionManager) Authenticate(token []byte) (uuid.UUID, error) {
	g.RLock()
	defer g.RUnlock()
	id, err := uuid.FromBytes(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if _, ok := g.playerToSession[id]; !ok {
		return uuid.Nil, ErrNoSession
	}

	g.logger.Info(fmt.Sprintf("authenticated player: %s", id))
	return id, nil
}

// HandleClientRequest forwards an action record received on the socket to the
// player's game.
func (g *GameSessionManager) HandleClientRequest(pID uuid.UUID, actionType byte, payload []byte) {
	_ = g.writePlayerRequest(pID, actionType, payload)
}

// StopAll stops every running game and waits until each has delivered its
// final state and been removed.
func (g *GameSessionManager) StopAll() {
	g.RLock()
	running := make([]i.GameServer, 0, len(g.sessions))
	for _, s := range g.sessions {
		running = append(running, s.gameSession)
	}
	g.RUnlock()

	for _, gs := range running {
		gs.Stop()
	}
	g.listeners.Wait()
}

// saveSession must be called with the write lock held.
func (g *GameSessionManager) saveSession(player uuid.UUID, gs i.GameServer, initial []byte) uuid.UUID {
	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}

	g.sessions[sessionID] = &session{gameSession: gs, player: player, latest: initial}
	g.playerToSession[player] = sessionID
	return sessionID
}

func (g *GameSessionManager) listenGameChan(id uuid.UUID, players []uuid.UUID, gs i.GameServer) {
	defer g.listeners.Done()
	stateChan := gs.StateChan()
	for {
		select {
		case val, ok := <-stateChan:
			if !ok {
				stateChan = nil
				continue
			}
			g.Lock()
			if s, ok := g.sessions[id]; ok {
				s.latest = val
			}
			g.Unlock()
			g.socket.BroadcastToClients(players, gameStateRecordType, val)
		case val, ok := <-gs.EndChan():
			if ok {
				g.socket.BroadcastToClients(players, gameEndedRecordType, val)
				g.logEnd(id, val)
			}
			g.clean(id)
			return
		}
	}
}

func (g *GameSessionManager) logEnd(id uuid.UUID, final []byte) {
	snap, err := g.gameEncoder.UnmarshalGameState(final)
	if err != nil {
		g.logger.Warning(fmt.Sprintf("decoding final state of game %s: %s", id, err))
		return
	}
	g.logger.Info(fmt.Sprintf("game %s ended: apples=%d lost=%t", id, snap.ApplesEaten, snap.Lost))
}

func (g *GameSessionManager) writePlayerRequest(pID uuid.UUID, actionType byte, payload []byte) error {
	g.RLock()
	sessionID, ok := g.playerToSession[pID]
	var gameServer i.GameServer
	if ok {
		gameServer = g.sessions[sessionID].gameSession
	}
	g.RUnlock()

	if !ok {
		g.logger.Warning("received request for player without session")
		return ErrNoSession
	}
	if !gameServer.Submit(append([]byte{actionType}, payload...)) {
		return ErrNoSession
	}
	g.logger.Info(fmt.Sprintf("processed request for player: %s", pID))
	return nil
}

func (g *GameSessionManager) clean(id uuid.UUID) {
	g.Lock()
	defer g.Unlock()
	if s, ok := g.sessions[id]; ok {
		delete(g.playerToSession, s.player)
	}
	delete(g.sessions, id)
}
