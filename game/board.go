package game

import "fmt"

// Board is a fixed width x height occupancy grid indexed [x][y].
type Board struct {
	width  int
	height int
	cells  [][]Cell
}

// NewBoard returns an all-empty board. Dimensions must be positive.
func NewBoard(width, height int) *Board {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("game: invalid board dimensions %dx%d", width, height))
	}

	cells := make([][]Cell, width)
	for x := range cells {
		cells[x] = make([]Cell, height)
	}
	return &Board{width: width, height: height, cells: cells}
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p Point) bool {
	return p.X >= 0 && p.X < b.width && p.Y >= 0 && p.Y < b.height
}

// Get returns the state of the cell at p. It panics if p is off the board.
func (b *Board) Get(p Point) Cell {
	b.mustBeInBounds(p)
	return b.cells[p.X][p.Y]
}

// Set stores c at p. It panics if p is off the board.
func (b *Board) Set(p Point, c Cell) {
	b.mustBeInBounds(p)
	b.cells[p.X][p.Y] = c
}

// Occupied returns the number of cells marked Snake.
func (b *Board) Occupied() int {
	n := 0
	for _, col := range b.cells {
		for _, c := range col {
			if c == Snake {
				n++
			}
		}
	}
	return n
}

// OccupiedCells lists the Snake cells in column-major order.
func (b *Board) OccupiedCells() []Point {
	cells := make([]Point, 0)
	for x, col := range b.cells {
		for y, c := range col {
			if c == Snake {
				cells = append(cells, Point{X: x, Y: y})
			}
		}
	}
	return cells
}

func (b *Board) mustBeInBounds(p Point) {
	if !b.InBounds(p) {
		panic(fmt.Sprintf("game: cell %s outside %dx%d board", p, b.width, b.height))
	}
}
