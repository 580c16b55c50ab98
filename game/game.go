package game

import (
	"errors"
	"math"
	"time"
)

// Configuration errors returned by New.
var (
	ErrInvalidDimension = errors.New("board dimensions must be positive")
	ErrStartOutOfBounds = errors.New("start position is off the board")
	ErrAppleOnSnake     = errors.New("apple starts under the snake")
	ErrInvalidSeed      = errors.New("seed must be a finite number")
)

// DefaultStepTime is the advisory tick duration used when Config.StepTime is
// zero.
const DefaultStepTime = 100 * time.Millisecond

// StartPositions holds the initial head and apple cells.
type StartPositions struct {
	Snake Point
	Apple Point
}

// DefaultStart places the snake a quarter of the way across the board and the
// apple three quarters of the way, both on the middle row.
func DefaultStart(width, height int) StartPositions {
	return StartPositions{
		Snake: Point{X: width / 4, Y: height / 2},
		Apple: Point{X: width * 3 / 4, Y: height / 2},
	}
}

// Config describes one game session.
type Config struct {
	Width    int
	Height   int
	Start    StartPositions
	Seed     float64
	StepTime time.Duration // Advisory; the game itself keeps no time.
}

func (c Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrInvalidDimension
	}
	if c.Start.Snake.X < 0 || c.Start.Snake.X >= c.Width || c.Start.Snake.Y < 0 || c.Start.Snake.Y >= c.Height {
		return ErrStartOutOfBounds
	}
	if c.Start.Apple.X < 0 || c.Start.Apple.X >= c.Width || c.Start.Apple.Y < 0 || c.Start.Apple.Y >= c.Height {
		return ErrStartOutOfBounds
	}
	if c.Start.Apple == c.Start.Snake {
		return ErrAppleOnSnake
	}
	if math.IsNaN(c.Seed) || math.IsInf(c.Seed, 0) {
		return ErrInvalidSeed
	}
	return nil
}

// Game is the snake rule engine. It is not safe for concurrent use; callers
// advance it one tick at a time with Step and read its state in between.
type Game struct {
	cfg         Config
	board       *Board
	snake       snakeBody
	apple       Point
	gen         PositionGenerator
	applesEaten uint32
	lost        bool
}

// New creates a game in its initial state.
func New(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.StepTime <= 0 {
		cfg.StepTime = DefaultStepTime
	}

	g := &Game{cfg: cfg}
	g.Reset()
	return g, nil
}

// Reset discards all progress and restores the configured initial state.
func (g *Game) Reset() {
	g.board = NewBoard(g.cfg.Width, g.cfg.Height)
	g.snake = newSnakeBody(g.cfg.Start.Snake)
	g.apple = g.cfg.Start.Apple
	g.gen = PositionGenerator{Seed: g.cfg.Seed}
	g.applesEaten = 0
	g.lost = false
}

// Step advances the game by one tick. dir, when non-nil, turns the head before
// it moves. Once the game is lost Step does nothing.
func (g *Game) Step(dir *Direction) {
	if g.lost {
		return
	}

	g.board.Set(g.snake.head, Snake)
	if dir != nil && dir.Valid() {
		g.snake.applyDirection(*dir)
	}
	g.snake.advanceHead()

	if g.clampHead() {
		g.lost = true
	}
	if g.board.Get(g.snake.head) == Snake {
		g.lost = true
	}

	if g.snake.head == g.apple {
		g.applesEaten++
		g.snake.grow(appleGrowth)
		if !g.relocateApple() {
			g.lost = true
		}
	}

	// The tail cell is released only when the tail actually moves off it,
	// after the head's collision check.
	tail := g.snake.tail
	if g.snake.advanceTail() {
		g.board.Set(tail, Empty)
	}
}

// clampHead pulls an off-board head back onto the nearest edge cell and
// reports whether it had to.
func (g *Game) clampHead() bool {
	p := &g.snake.head
	clamped := false
	if p.X < 0 {
		p.X, clamped = 0, true
	} else if p.X >= g.board.Width() {
		p.X, clamped = g.board.Width()-1, true
	}
	if p.Y < 0 {
		p.Y, clamped = 0, true
	} else if p.Y >= g.board.Height() {
		p.Y, clamped = g.board.Height()-1, true
	}
	return clamped
}

// Config returns the configuration the game was created with.
func (g *Game) Config() Config { return g.cfg }

// Width returns the board width.
func (g *Game) Width() int { return g.board.Width() }

// Height returns the board height.
func (g *Game) Height() int { return g.board.Height() }

// Cell returns the occupancy of p. It panics if p is off the board.
func (g *Game) Cell(p Point) Cell { return g.board.Get(p) }

// Head returns the head cell.
func (g *Game) Head() Point { return g.snake.head }

// Direction returns the head direction.
func (g *Game) Direction() Direction { return g.snake.dir }

// Tail returns the tail cell.
func (g *Game) Tail() Point { return g.snake.tail }

// TailDirection returns the direction the tail moves in.
func (g *Game) TailDirection() Direction { return g.snake.tailDir }

// Turns returns a copy of the turns the tail has not replayed yet, oldest
// first.
func (g *Game) Turns() []Turn { return g.snake.pendingTurns() }

// Growth returns the remaining growth budget.
func (g *Game) Growth() int { return g.snake.growth }

// Apple returns the apple cell.
func (g *Game) Apple() Point { return g.apple }

// ApplesEaten returns how many apples have been consumed.
func (g *Game) ApplesEaten() uint32 { return g.applesEaten }

// Lost reports whether the game has ended.
func (g *Game) Lost() bool { return g.lost }

// StepTime returns the advisory duration of one tick.
func (g *Game) StepTime() time.Duration { return g.cfg.StepTime }

// Seed returns the apple placement seed.
func (g *Game) Seed() float64 { return g.cfg.Seed }

// Snapshot is a self-contained copy of the readable game state.
type Snapshot struct {
	Width         int
	Height        int
	Head          Point
	Direction     Direction
	Tail          Point
	TailDirection Direction
	Turns         []Turn
	Body          []Point // Cells marked Snake on the board.
	Growth        int
	Apple         Point
	ApplesEaten   uint32
	Lost          bool
	StepTime      time.Duration
	Seed          float64
}

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Width:         g.board.Width(),
		Height:        g.board.Height(),
		Head:          g.snake.head,
		Direction:     g.snake.dir,
		Tail:          g.snake.tail,
		TailDirection: g.snake.tailDir,
		Turns:         g.snake.pendingTurns(),
		Body:          g.board.OccupiedCells(),
		Growth:        g.snake.growth,
		Apple:         g.apple,
		ApplesEaten:   g.applesEaten,
		Lost:          g.lost,
		StepTime:      g.cfg.StepTime,
		Seed:          g.cfg.Seed,
	}
}
