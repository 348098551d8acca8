package main

import (
	"snakeduel/game"
	"snakeduel/server"
)

// board 由 game_state 还原的只读棋盘视图
type board struct {
	width, height int
	wrap          bool
	occupied      map[game.Point]bool
	// 对手蛇头下一帧可能到达的格子
	contested map[game.Point]bool
}

func newBoard(state server.GameStateData, me int, wrap bool) board {
	b := board{
		width:     state.BoardWidth,
		height:    state.BoardHeight,
		wrap:      wrap,
		occupied:  make(map[game.Point]bool),
		contested: make(map[game.Point]bool),
	}
	for i, s := range state.Snakes {
		for _, seg := range s.Segments {
			b.occupied[game.Point{X: seg.X, Y: seg.Y}] = true
		}
		if i == me || !s.Alive || len(s.Segments) == 0 {
			continue
		}
		head := game.Point{X: s.Segments[0].X, Y: s.Segments[0].Y}
		for _, d := range game.AllDirections {
			if d == game.Opposite(s.Direction) {
				continue
			}
			if p, ok := b.next(head, d); ok {
				b.contested[p] = true
			}
		}
	}
	return b
}

// next 返回从 p 朝 d 走一步的格子；撞墙时 ok 为 false
func (b board) next(p game.Point, d game.Direction) (game.Point, bool) {
	n := game.Move(p, d)
	if game.OutOfBounds(n, b.width, b.height) {
		if !b.wrap {
			return n, false
		}
		n = game.Wrap(n, b.width, b.height)
	}
	return n, true
}

func (b board) distance(p, q game.Point) int {
	dx, dy := abs(p.X-q.X), abs(p.Y-q.Y)
	if b.wrap {
		dx = min(dx, b.width-dx)
		dy = min(dy, b.height-dy)
	}
	return dx + dy
}

// chooseDirection 贪心寻路：在不会立即死亡的方向里选离食物最近的，
// 尽量避开对手可能抢到的格子；无路可走时保持原方向。
func chooseDirection(state server.GameStateData, me int, wrap bool) game.Direction {
	if me < 0 || me >= len(state.Snakes) {
		return game.DirNone
	}
	self := state.Snakes[me]
	if !self.Alive || len(self.Segments) == 0 {
		return game.DirNone
	}
	b := newBoard(state, me, wrap)
	head := game.Point{X: self.Segments[0].X, Y: self.Segments[0].Y}

	best, bestScore := self.Direction, -1
	for _, d := range game.AllDirections {
		if d == game.Opposite(self.Direction) {
			continue
		}
		p, ok := b.next(head, d)
		if !ok || b.occupied[p] {
			continue
		}
		score := 1000 + b.freedom(p)
		if b.contested[p] {
			score -= 500
		}
		if state.Food != nil {
			score -= 10 * b.distance(p, *state.Food)
		}
		if d == self.Direction {
			score++
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// freedom 从 p 出发一步可达的空格数
func (b board) freedom(p game.Point) int {
	n := 0
	for _, d := range game.AllDirections {
		if q, ok := b.next(p, d); ok && !b.occupied[q] {
			n++
		}
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
