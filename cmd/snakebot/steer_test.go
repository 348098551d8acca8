package main

import (
	"testing"

	"snakeduel/game"
	"snakeduel/server"
)

func snakeAt(dir game.Direction, pts ...game.Point) server.SnakeData {
	segs := make([]server.SegmentData, len(pts))
	for i, p := range pts {
		segs[i] = server.SegmentData{X: p.X, Y: p.Y}
	}
	return server.SnakeData{Segments: segs, Alive: true, Direction: dir}
}

func TestChooseDirection_HeadsForFood(t *testing.T) {
	state := server.GameStateData{
		BoardWidth: 10, BoardHeight: 10,
		Snakes: []server.SnakeData{
			snakeAt(game.DirUp, game.Point{X: 2, Y: 5}, game.Point{X: 2, Y: 6}, game.Point{X: 2, Y: 7}),
		},
		Food: &game.Point{X: 6, Y: 5},
	}
	if got := chooseDirection(state, 0, false); got != game.DirRight {
		t.Fatalf("expected RIGHT toward food, got %v", got)
	}
}

func TestChooseDirection_AvoidsWall(t *testing.T) {
	state := server.GameStateData{
		BoardWidth: 10, BoardHeight: 10,
		Snakes: []server.SnakeData{
			snakeAt(game.DirUp, game.Point{X: 0, Y: 0}, game.Point{X: 0, Y: 1}, game.Point{X: 0, Y: 2}),
		},
		Food: &game.Point{X: 0, Y: 9},
	}
	if got := chooseDirection(state, 0, false); got != game.DirRight {
		t.Fatalf("expected RIGHT away from the corner, got %v", got)
	}
}

func TestChooseDirection_WrapsInInfiniteMode(t *testing.T) {
	state := server.GameStateData{
		BoardWidth: 10, BoardHeight: 10,
		Snakes: []server.SnakeData{
			snakeAt(game.DirLeft, game.Point{X: 0, Y: 5}, game.Point{X: 1, Y: 5}, game.Point{X: 2, Y: 5}),
		},
		Food: &game.Point{X: 8, Y: 5},
	}
	if got := chooseDirection(state, 0, true); got != game.DirLeft {
		t.Fatalf("expected LEFT through the wall, got %v", got)
	}
}

func TestChooseDirection_AvoidsBodies(t *testing.T) {
	state := server.GameStateData{
		BoardWidth: 10, BoardHeight: 10,
		Snakes: []server.SnakeData{
			snakeAt(game.DirUp, game.Point{X: 5, Y: 5}, game.Point{X: 5, Y: 6}, game.Point{X: 5, Y: 7}),
			snakeAt(game.DirDown, game.Point{X: 3, Y: 3}, game.Point{X: 4, Y: 3}, game.Point{X: 5, Y: 3}, game.Point{X: 5, Y: 4}, game.Point{X: 6, Y: 4}),
		},
		Food: &game.Point{X: 5, Y: 0},
	}
	// 上方被对手挡住，左侧比右侧更空
	if got := chooseDirection(state, 0, false); got != game.DirLeft {
		t.Fatalf("expected LEFT, got %v", got)
	}
}

func TestChooseDirection_DeadSnakeHasNoMove(t *testing.T) {
	s := snakeAt(game.DirUp, game.Point{X: 5, Y: 5})
	s.Alive = false
	state := server.GameStateData{BoardWidth: 10, BoardHeight: 10, Snakes: []server.SnakeData{s}}
	if got := chooseDirection(state, 0, false); got != game.DirNone {
		t.Fatalf("expected no move, got %v", got)
	}
}
