package game

import "math"

// PositionGenerator is the deterministic pseudo-random source for apple
// placement. Its output depends only on the seed and the counter passed in, so
// a given seed always produces the same apple sequence.
type PositionGenerator struct {
	Seed float64
}

// Next returns frac(sqrt(counter*seed)^π), a value in [0, 1).
func (g PositionGenerator) Next(counter float64) float64 {
	r := math.Pow(math.Sqrt(counter*g.Seed), math.Pi)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r - math.Floor(r)
}

// Point derives a cell on a width x height board from one counter tick. The y
// axis samples the sequence half a step after the x axis.
func (g PositionGenerator) Point(counter uint32, width, height int) Point {
	c := float64(counter)
	return Point{
		X: scale(g.Next(c), width),
		Y: scale(g.Next(c+0.5), height),
	}
}

func scale(f float64, n int) int {
	v := int(f * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
