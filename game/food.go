package game

import "math/rand"

// SpawnFood 在所有未被蛇身占用的格子中随机挑一个放置食物。
// 棋盘被占满时返回 nil。
func SpawnFood(width, height int, snakes []*Snake, rng *rand.Rand) *Point {
	if width <= 0 || height <= 0 {
		return nil
	}
	occupied := make(map[Point]struct{}, 64)
	for _, s := range snakes {
		if s == nil {
			continue
		}
		// 死蛇仍然留在棋盘上渲染，同样不能放食物
		for _, seg := range s.Body {
			occupied[seg.Point] = struct{}{}
		}
	}

	available := make([]Point, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := Point{X: x, Y: y}
			if _, ok := occupied[p]; ok {
				continue
			}
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		return nil
	}
	var i int
	if rng != nil {
		i = rng.Intn(len(available))
	} else {
		i = rand.Intn(len(available))
	}
	p := available[i]
	return &p
}
