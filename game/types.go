package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDirection is returned by ParseDirection for unrecognised names.
var ErrUnknownDirection = errors.New("unknown direction")

// Direction is the heading of the snake's head or tail.
type Direction uint8

// Directions. The grid's y axis grows upward.
const (
	Up Direction = iota
	Down
	Left
	Right
)

// String returns the lower-case name of the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	return d <= Right
}

// ParseDirection resolves a direction name. It accepts the full names as well
// as the w/s/a/d keyboard aliases, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	case "left", "a":
		return Left, nil
	case "right", "d":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Cell is the occupancy state of one board cell.
type Cell uint8

// Cell states.
const (
	Empty Cell = iota
	Snake
)

// Point is a board coordinate.
type Point struct {
	X int
	Y int
}

// Add returns p moved one cell towards d.
func (p Point) Add(d Direction) Point {
	switch d {
	case Up:
		p.Y++
	case Down:
		p.Y--
	case Left:
		p.X--
	case Right:
		p.X++
	}
	return p
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
