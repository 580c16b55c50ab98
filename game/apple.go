package game

// appleGrowth is the growth budget granted by each apple.
const appleGrowth = 3

// relocateApple moves the apple to the first free cell at or after the
// generator's pick for the current apple count, scanning in row-major order
// with wraparound. A free cell is Empty and not under the head. It reports
// false when a full sweep finds none.
func (g *Game) relocateApple() bool {
	w, h := g.board.Width(), g.board.Height()
	p := g.gen.Point(g.applesEaten, w, h)

	for range w * h {
		if p != g.snake.head && g.board.Get(p) == Empty {
			g.apple = p
			return true
		}

		p.X++
		if p.X >= w {
			p.X = 0
			p.Y++
		}
		if p.Y >= h {
			p.Y = 0
		}
	}
	return false
}
