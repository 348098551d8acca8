// Package game 是双人贪吃蛇的纯模拟层：网格移动、蛇实体、食物与逐帧结算。
//
// 本包不做任何 I/O，也不持有锁；并发与计时由 server 包中的房间协程负责。
// 坐标为屏幕坐标：(0,0) 在左上角，UP 使 y 减一。
package game

// Point 网格坐标
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Move 沿方向走一格（不做边界处理）
func Move(p Point, d Direction) Point {
	switch d {
	case DirUp:
		p.Y--
	case DirDown:
		p.Y++
	case DirLeft:
		p.X--
	case DirRight:
		p.X++
	}
	return p
}

// OutOfBounds 判断坐标是否越出 width×height 的棋盘
func OutOfBounds(p Point, width, height int) bool {
	return p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height
}

// Wrap 将越界坐标卷回棋盘另一侧（无尽模式）
func Wrap(p Point, width, height int) Point {
	if width > 0 {
		p.X = ((p.X % width) + width) % width
	}
	if height > 0 {
		p.Y = ((p.Y % height) + height) % height
	}
	return p
}

// HitsBody 判断 p 是否落在蛇身上；skipHead 时忽略下标 0
func HitsBody(p Point, s *Snake, skipHead bool) bool {
	if s == nil {
		return false
	}
	for i, seg := range s.Body {
		if skipHead && i == 0 {
			continue
		}
		if seg.X == p.X && seg.Y == p.Y {
			return true
		}
	}
	return false
}
