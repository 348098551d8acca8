package game

import "testing"

func TestMove_ChangesOneAxisAndReverses(t *testing.T) {
	p := Point{X: 5, Y: 7}
	for _, d := range AllDirections {
		q := Move(p, d)
		dx, dy := q.X-p.X, q.Y-p.Y
		if abs(dx)+abs(dy) != 1 {
			t.Fatalf("Move(%v, %s) = %v: expected exactly one axis to change by 1", p, d, q)
		}
		if back := Move(q, Opposite(d)); back != p {
			t.Fatalf("Move(Move(p, %s), %s) = %v, want %v", d, Opposite(d), back, p)
		}
	}
}

func TestMove_ScreenCoordinates(t *testing.T) {
	p := Point{X: 3, Y: 3}
	cases := map[Direction]Point{
		DirUp:    {X: 3, Y: 2},
		DirDown:  {X: 3, Y: 4},
		DirLeft:  {X: 2, Y: 3},
		DirRight: {X: 4, Y: 3},
		DirNone:  {X: 3, Y: 3},
	}
	for d, want := range cases {
		if got := Move(p, d); got != want {
			t.Errorf("Move(%v, %v) = %v, want %v", p, d, got, want)
		}
	}
}

func TestOutOfBounds(t *testing.T) {
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, false},
		{Point{11, 17}, false},
		{Point{-1, 0}, true},
		{Point{0, -1}, true},
		{Point{12, 0}, true},
		{Point{0, 18}, true},
	}
	for _, c := range cases {
		if got := OutOfBounds(c.p, 12, 18); got != c.want {
			t.Errorf("OutOfBounds(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestWrap(t *testing.T) {
	cases := []struct {
		in, want Point
	}{
		{Point{-1, 5}, Point{11, 5}},
		{Point{12, 5}, Point{0, 5}},
		{Point{4, -1}, Point{4, 17}},
		{Point{4, 18}, Point{4, 0}},
		{Point{4, 9}, Point{4, 9}},
	}
	for _, c := range cases {
		if got := Wrap(c.in, 12, 18); got != c.want {
			t.Errorf("Wrap(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestHitsBody_SkipHead(t *testing.T) {
	s := NewSnake("a", "", Point{X: 5, Y: 5}, DirUp, 3) // (5,5) (5,6) (5,7)
	if HitsBody(Point{X: 5, Y: 5}, s, true) {
		t.Fatalf("head must be ignored when skipHead is set")
	}
	if !HitsBody(Point{X: 5, Y: 5}, s, false) {
		t.Fatalf("head must count when skipHead is not set")
	}
	if !HitsBody(Point{X: 5, Y: 7}, s, true) {
		t.Fatalf("tail must count")
	}
	if HitsBody(Point{X: 6, Y: 6}, s, false) {
		t.Fatalf("unexpected hit off the body")
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range AllDirections {
		got, err := ParseDirection(d.String())
		if err != nil || got != d {
			t.Fatalf("ParseDirection(%q) = %v, %v", d.String(), got, err)
		}
	}
	if got, err := ParseDirection(" left "); err != nil || got != DirLeft {
		t.Fatalf("ParseDirection lower case = %v, %v", got, err)
	}
	if _, err := ParseDirection("diagonal"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
