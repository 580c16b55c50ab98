package service

import (
	"bytes"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/beka-birhanu/vinom-snake/config"
	"github.com/beka-birhanu/vinom-snake/encoding"
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/google/uuid"
)

func newTestLogger(t *testing.T) general_i.Logger {
	t.Helper()
	l, err := logger.New("TEST", config.ColorCyan, os.Stdout)
	if err != nil {
		t.Fatalf("creating logger: %v", err)
	}
	return l
}

type record struct {
	clients    []uuid.UUID
	recordType byte
	payload    []byte
}

// recordingSocket stands in for the UDP socket manager and keeps every record
// broadcast through it.
type recordingSocket struct {
	mu      sync.Mutex
	records []record
}

func (s *recordingSocket) BroadcastToClients(clientIDs []uuid.UUID, recordType byte, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record{clients: clientIDs, recordType: recordType, payload: payload})
}

func (s *recordingSocket) GetPublicKey() []byte { return []byte("test-public-key") }

func (s *recordingSocket) GetAddr() string { return "127.0.0.1:50052" }

func (s *recordingSocket) recordsOfType(recordType byte) []record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record, 0)
	for _, r := range s.records {
		if r.recordType == recordType {
			out = append(out, r)
		}
	}
	return out
}

func newTestManager(t *testing.T, stepTime, duration time.Duration) (*GameSessionManager, *recordingSocket) {
	t.Helper()
	socket := &recordingSocket{}
	m, err := NewGameSessionManager(&Config{
		GameConfig:   testGameConfig(stepTime),
		GameDuration: duration,
		GameEncoder:  &encoding.Protobuf{},
		Socket:       socket,
		Logger:       newTestLogger(t),
	})
	if err != nil {
		t.Fatalf("NewGameSessionManager: %v", err)
	}
	t.Cleanup(m.StopAll)
	return m, socket
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNewGameSessionManagerValidatesConfig(t *testing.T) {
	_, err := NewGameSessionManager(&Config{
		GameConfig:  testGameConfig(time.Hour),
		GameEncoder: &encoding.Protobuf{},
		Socket:      &recordingSocket{},
	})
	if !errors.Is(err, ErrMissingLogger) {
		t.Errorf("missing logger: err = %v, want %v", err, ErrMissingLogger)
	}

	_, err = NewGameSessionManager(&Config{
		GameConfig:  testGameConfig(time.Hour),
		GameEncoder: &encoding.Protobuf{},
		Logger:      newTestLogger(t),
	})
	if !errors.Is(err, ErrMissingSocket) {
		t.Errorf("missing socket: err = %v, want %v", err, ErrMissingSocket)
	}

	bad := testGameConfig(time.Hour)
	bad.Width = 0
	_, err = NewGameSessionManager(&Config{
		GameConfig:  bad,
		GameEncoder: &encoding.Protobuf{},
		Socket:      &recordingSocket{},
		Logger:      newTestLogger(t),
	})
	if !errors.Is(err, game.ErrInvalidDimension) {
		t.Errorf("zero width: err = %v, want %v", err, game.ErrInvalidDimension)
	}

	template := testGameConfig(0)
	m, err := NewGameSessionManager(&Config{
		GameConfig:  template,
		GameEncoder: &encoding.Protobuf{},
		Socket:      &recordingSocket{},
		Logger:      newTestLogger(t),
	})
	if err != nil {
		t.Fatalf("valid config: %v", err)
	}
	if m.gameDuration != defaultGameDuration {
		t.Errorf("gameDuration = %v, want %v", m.gameDuration, defaultGameDuration)
	}
	if m.gameConfig.StepTime != game.DefaultStepTime {
		t.Errorf("template step time = %v, want %v", m.gameConfig.StepTime, game.DefaultStepTime)
	}
}

func TestSessionLifecycle(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, time.Minute)
	player := uuid.New()

	sessionID, err := m.NewSession(player)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if sessionID == uuid.Nil {
		t.Fatal("NewSession returned a nil session ID")
	}
	if _, err := m.NewSession(player); !errors.Is(err, ErrSessionExists) {
		t.Errorf("second NewSession: err = %v, want %v", err, ErrSessionExists)
	}

	payload, err := m.State(player)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	s := decodeState(t, payload)
	if s.Head != (game.Point{X: 2, Y: 5}) || s.Apple != (game.Point{X: 7, Y: 5}) || s.Lost {
		t.Errorf("initial state = %+v", s)
	}

	if err := m.Steer(player, game.Up); err != nil {
		t.Errorf("Steer: %v", err)
	}
	if err := m.Reset(player); err != nil {
		t.Errorf("Reset: %v", err)
	}

	m.StopAll()
	waitFor(t, "session cleanup", func() bool {
		_, err := m.State(player)
		return errors.Is(err, ErrNoSession)
	})

	if _, err := m.NewSession(player); err != nil {
		t.Errorf("NewSession after the old one ended: %v", err)
	}
}

func TestUnknownPlayer(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, time.Minute)
	stranger := uuid.New()

	if err := m.Steer(stranger, game.Left); !errors.Is(err, ErrNoSession) {
		t.Errorf("Steer: err = %v, want %v", err, ErrNoSession)
	}
	if err := m.Reset(stranger); !errors.Is(err, ErrNoSession) {
		t.Errorf("Reset: err = %v, want %v", err, ErrNoSession)
	}
	if _, err := m.State(stranger); !errors.Is(err, ErrNoSession) {
		t.Errorf("State: err = %v, want %v", err, ErrNoSession)
	}
}

func TestSteerReachesRunningGame(t *testing.T) {
	m, _ := newTestManager(t, 5*time.Millisecond, time.Minute)
	player := uuid.New()
	if _, err := m.NewSession(player); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if err := m.Steer(player, game.Up); err != nil {
		t.Fatalf("Steer: %v", err)
	}

	waitFor(t, "the snake to turn up", func() bool {
		payload, err := m.State(player)
		if err != nil {
			return false
		}
		return decodeState(t, payload).Direction == game.Up
	})
}

func TestSessionEndsAfterDuration(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, 20*time.Millisecond)
	player := uuid.New()
	if _, err := m.NewSession(player); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	waitFor(t, "the session to expire", func() bool {
		_, err := m.State(player)
		return errors.Is(err, ErrNoSession)
	})
}

func TestStatesArePushedToThePlayer(t *testing.T) {
	m, socket := newTestManager(t, 2*time.Millisecond, time.Minute)
	player := uuid.New()
	if _, err := m.NewSession(player); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	waitFor(t, "a pushed state", func() bool {
		return len(socket.recordsOfType(gameStateRecordType)) > 0
	})
	pushed := socket.recordsOfType(gameStateRecordType)[0]
	if len(pushed.clients) != 1 || pushed.clients[0] != player {
		t.Errorf("state pushed to %v, want only %s", pushed.clients, player)
	}
	if s := decodeState(t, pushed.payload); s.Head == (game.Point{X: 2, Y: 5}) {
		t.Errorf("pushed state did not advance: %+v", s)
	}

	m.StopAll()
	ended := socket.recordsOfType(gameEndedRecordType)
	if len(ended) != 1 {
		t.Fatalf("got %d end records after StopAll, want 1", len(ended))
	}
	if ended[0].clients[0] != player {
		t.Errorf("end record sent to %v, want %s", ended[0].clients, player)
	}
	decodeState(t, ended[0].payload)
}

func TestAuthenticate(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, time.Minute)
	player := uuid.New()

	if _, err := m.Authenticate(player[:]); !errors.Is(err, ErrNoSession) {
		t.Errorf("player without session: err = %v, want %v", err, ErrNoSession)
	}
	if _, err := m.Authenticate([]byte("short")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("malformed token: err = %v, want %v", err, ErrInvalidToken)
	}

	if _, err := m.NewSession(player); err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	id, err := m.Authenticate(player[:])
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id != player {
		t.Errorf("authenticated %s, want %s", id, player)
	}
}

func TestClientRequestsReachTheGame(t *testing.T) {
	m, _ := newTestManager(t, 5*time.Millisecond, time.Minute)
	player := uuid.New()
	if _, err := m.NewSession(player); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	m.HandleClientRequest(uuid.New(), moveActionType, nil)
	payload, err := (&encoding.Protobuf{}).MarshalAction(game.Up)
	if err != nil {
		t.Fatalf("MarshalAction: %v", err)
	}
	m.HandleClientRequest(player, moveActionType, payload)

	waitFor(t, "the snake to turn up", func() bool {
		state, err := m.State(player)
		if err != nil {
			return false
		}
		return decodeState(t, state).Direction == game.Up
	})
}

func TestSessionInfo(t *testing.T) {
	m, socket := newTestManager(t, time.Hour, time.Minute)
	player := uuid.New()

	if _, _, err := m.SessionInfo(player); !errors.Is(err, ErrNoSession) {
		t.Errorf("SessionInfo without session: err = %v, want %v", err, ErrNoSession)
	}

	if _, err := m.NewSession(player); err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	key, addr, err := m.SessionInfo(player)
	if err != nil {
		t.Fatalf("SessionInfo: %v", err)
	}
	if !bytes.Equal(key, socket.GetPublicKey()) || addr != socket.GetAddr() {
		t.Errorf("SessionInfo = %q, %q", key, addr)
	}
}
