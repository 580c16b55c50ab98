package game

// Turn records a direction change of the head and the cell where it happened.
// The tail replays it once it reaches that cell.
type Turn struct {
	Dir Direction
	At  Point
}

// snakeBody tracks only the two ends of the snake. The body in between is
// implied by the turns the tail has yet to replay.
type snakeBody struct {
	head    Point     // Current head cell.
	dir     Direction // Current head direction.
	growth  int       // Ticks left during which the tail stays put.
	tail    Point     // Current tail cell.
	tailDir Direction // Direction the tail moves in.
	turns   []Turn    // Pending turns, oldest first.
}

func newSnakeBody(start Point) snakeBody {
	return snakeBody{
		head:    start,
		dir:     Right,
		growth:  appleGrowth,
		tail:    start,
		tailDir: Right,
		turns:   make([]Turn, 0),
	}
}

// applyDirection points the head towards d and queues the turn for the tail.
// Repeating the current direction is recorded too.
func (s *snakeBody) applyDirection(d Direction) {
	s.dir = d
	s.turns = append(s.turns, Turn{Dir: d, At: s.head})
}

func (s *snakeBody) advanceHead() {
	s.head = s.head.Add(s.dir)
}

// advanceTail moves the tail one cell unless the snake is still growing. It
// reports whether the tail left its cell.
func (s *snakeBody) advanceTail() bool {
	if s.growth > 0 {
		s.growth--
		return false
	}

	if len(s.turns) > 0 && s.turns[0].At == s.tail {
		s.tailDir = s.turns[0].Dir
		s.turns = s.turns[1:]
	}
	s.tail = s.tail.Add(s.tailDir)
	return true
}

func (s *snakeBody) grow(n int) {
	s.growth = n
}

func (s *snakeBody) pendingTurns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}
