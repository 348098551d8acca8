package game

import (
	"fmt"
	"strings"
	"time"
)

// Mode 墙体规则
type Mode string

const (
	ModeClassic  Mode = "CLASSIC"  // 撞墙即死
	ModeInfinite Mode = "INFINITE" // 穿墙
)

// Difficulty 决定帧间隔曲线
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyHard   Difficulty = "HARD"
)

// SpeedCurve 与单机版一致：每吃一个食物帧间隔减少 Increment，直到 Min
type SpeedCurve struct {
	Initial   time.Duration
	Increment time.Duration
	Min       time.Duration
}

var speedCurves = map[Difficulty]SpeedCurve{
	DifficultyEasy:   {Initial: 350 * time.Millisecond, Increment: 1 * time.Millisecond, Min: 150 * time.Millisecond},
	DifficultyNormal: {Initial: 250 * time.Millisecond, Increment: 2 * time.Millisecond, Min: 80 * time.Millisecond},
	DifficultyHard:   {Initial: 150 * time.Millisecond, Increment: 3 * time.Millisecond, Min: 50 * time.Millisecond},
}

// Curve 返回难度对应的速度曲线；未知难度按 NORMAL 处理
func (d Difficulty) Curve() SpeedCurve {
	if c, ok := speedCurves[d]; ok {
		return c
	}
	return speedCurves[DifficultyNormal]
}

// Interval 根据已吃食物数计算帧间隔
func (c SpeedCurve) Interval(foods int) time.Duration {
	iv := c.Initial - time.Duration(foods)*c.Increment
	if iv < c.Min {
		iv = c.Min
	}
	return iv
}

// Settings 玩家在排队/建房时提交的对局设置
type Settings struct {
	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
}

// DefaultSettings 客户端未提供设置时使用
var DefaultSettings = Settings{Mode: ModeClassic, Difficulty: DifficultyNormal}

// Normalize 补全缺省值并统一大小写，非法取值返回错误
func (s Settings) Normalize() (Settings, error) {
	out := Settings{
		Mode:       Mode(strings.ToUpper(strings.TrimSpace(string(s.Mode)))),
		Difficulty: Difficulty(strings.ToUpper(strings.TrimSpace(string(s.Difficulty)))),
	}
	if out.Mode == "" {
		out.Mode = DefaultSettings.Mode
	}
	if out.Difficulty == "" {
		out.Difficulty = DefaultSettings.Difficulty
	}
	switch out.Mode {
	case ModeClassic, ModeInfinite:
	default:
		return Settings{}, fmt.Errorf("unknown mode %q", s.Mode)
	}
	if _, ok := speedCurves[out.Difficulty]; !ok {
		return Settings{}, fmt.Errorf("unknown difficulty %q", s.Difficulty)
	}
	return out, nil
}
