package game

import "testing"

func TestNewSnakeBody(t *testing.T) {
	s := newSnakeBody(Point{X: 2, Y: 5})
	if s.head != s.tail {
		t.Errorf("tail %v != head %v", s.tail, s.head)
	}
	if s.growth != appleGrowth {
		t.Errorf("growth = %d, want %d", s.growth, appleGrowth)
	}
	if s.dir != Right || s.tailDir != Right {
		t.Errorf("directions = %v/%v, want right/right", s.dir, s.tailDir)
	}
	if len(s.turns) != 0 {
		t.Errorf("turns = %v, want none", s.turns)
	}
}

func TestApplyDirectionRecordsEveryTurn(t *testing.T) {
	s := newSnakeBody(Point{X: 1, Y: 1})
	s.applyDirection(Right)
	s.applyDirection(Right)
	s.advanceHead()
	s.applyDirection(Up)

	want := []Turn{
		{Dir: Right, At: Point{X: 1, Y: 1}},
		{Dir: Right, At: Point{X: 1, Y: 1}},
		{Dir: Up, At: Point{X: 2, Y: 1}},
	}
	got := s.pendingTurns()
	if len(got) != len(want) {
		t.Fatalf("turns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("turns[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if s.dir != Up {
		t.Errorf("dir = %v, want up", s.dir)
	}
}

func TestAdvanceTailWaitsForGrowth(t *testing.T) {
	s := newSnakeBody(Point{X: 0, Y: 0})
	for i := 0; i < appleGrowth; i++ {
		if s.advanceTail() {
			t.Fatalf("tail moved on growth tick %d", i)
		}
	}
	if s.tail != (Point{X: 0, Y: 0}) {
		t.Fatalf("tail = %v, want (0,0)", s.tail)
	}
	if !s.advanceTail() {
		t.Fatal("tail should move once growth is spent")
	}
	if s.tail != (Point{X: 1, Y: 0}) {
		t.Errorf("tail = %v, want (1,0)", s.tail)
	}
}

func TestAdvanceTailReplaysTurns(t *testing.T) {
	s := newSnakeBody(Point{X: 0, Y: 0})
	s.growth = 0
	s.turns = []Turn{
		{Dir: Up, At: Point{X: 1, Y: 0}},
		{Dir: Left, At: Point{X: 1, Y: 2}},
	}

	path := []Point{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}
	pending := []int{2, 1, 1, 0}
	for i, want := range path {
		s.advanceTail()
		if s.tail != want {
			t.Fatalf("step %d: tail = %v, want %v", i, s.tail, want)
		}
		if len(s.turns) != pending[i] {
			t.Fatalf("step %d: %d turns pending, want %d", i, len(s.turns), pending[i])
		}
	}
	if s.tailDir != Left {
		t.Errorf("tailDir = %v, want left", s.tailDir)
	}
}
