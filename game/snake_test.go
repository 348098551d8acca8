package game

import "testing"

func TestNewSnake_Layout(t *testing.T) {
	s := NewSnake("a", "#fff", Point{X: 4, Y: 4}, DirRight, SpawnLength)
	want := []Point{{4, 4}, {3, 4}, {2, 4}}
	if s.Len() != len(want) {
		t.Fatalf("len = %d, want %d", s.Len(), len(want))
	}
	seen := map[int]bool{}
	for i, seg := range s.Body {
		if seg.Point != want[i] {
			t.Errorf("segment %d = %v, want %v", i, seg.Point, want[i])
		}
		if seen[seg.ID] {
			t.Errorf("duplicate segment id %d", seg.ID)
		}
		seen[seg.ID] = true
	}
	if !s.Alive || s.Score != 0 {
		t.Fatalf("fresh snake should be alive with zero score")
	}
}

func TestChangeDirection_RejectsReverse(t *testing.T) {
	for _, length := range []int{2, 3, 8} {
		for _, d := range AllDirections {
			s := NewSnake("a", "", Point{X: 10, Y: 10}, d, length)
			s.ChangeDirection(Opposite(d))
			s.CommitDirection()
			if s.Direction != d {
				t.Fatalf("len=%d: reversing %s changed direction to %s", length, d, s.Direction)
			}
		}
	}
}

func TestChangeDirection_LastWriteWins(t *testing.T) {
	s := NewSnake("a", "", Point{X: 10, Y: 10}, DirUp, 3)
	s.ChangeDirection(DirLeft)
	s.ChangeDirection(DirRight)
	s.CommitDirection()
	if s.Direction != DirRight {
		t.Fatalf("direction = %s, want RIGHT", s.Direction)
	}
	if s.Pending != DirNone {
		t.Fatalf("pending should be cleared after commit")
	}
}

func TestAdvanceKeepsIDsStable(t *testing.T) {
	s := NewSnake("a", "", Point{X: 5, Y: 5}, DirUp, 3)
	oldIDs := []int{s.Body[0].ID, s.Body[1].ID}
	s.Advance(s.Step(DirUp))
	if s.Head() != (Point{X: 5, Y: 4}) {
		t.Fatalf("head = %v", s.Head())
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d after plain advance", s.Len())
	}
	if s.Body[1].ID != oldIDs[0] || s.Body[2].ID != oldIDs[1] {
		t.Fatalf("ids shifted incorrectly: %+v", s.Body)
	}
}

func TestGrow_RestoresDroppedTail(t *testing.T) {
	s := NewSnake("a", "", Point{X: 5, Y: 5}, DirUp, 3) // tail at (5,7)
	s.Advance(s.Step(DirUp))
	s.Grow()
	if s.Len() != 4 {
		t.Fatalf("len = %d, want 4", s.Len())
	}
	if tail := s.Body[3].Point; tail != (Point{X: 5, Y: 7}) {
		t.Fatalf("tail = %v, want the dropped (5,7)", tail)
	}
}

func TestKill_FreezesMovement(t *testing.T) {
	s := NewSnake("a", "", Point{X: 5, Y: 5}, DirUp, 3)
	s.Kill(CauseWall)
	before := s.Head()
	s.Advance(Point{X: 5, Y: 4})
	s.ChangeDirection(DirLeft)
	if s.Head() != before || s.Pending != DirNone {
		t.Fatalf("dead snake moved or buffered input")
	}
	s.Kill(CauseSelf)
	if s.Cause != CauseWall {
		t.Fatalf("second Kill must not overwrite cause, got %s", s.Cause)
	}
}
