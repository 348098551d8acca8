package game

import (
	"math/rand"
	"time"
)

const (
	// PointsPerFood 每个食物的基础分
	PointsPerFood = 10
	// DefaultWinTarget 默认胜利分数
	DefaultWinTarget = 200
	// DefaultBoardWidth 多人模式默认棋盘宽
	DefaultBoardWidth = 24
	// DefaultBoardHeight 多人模式默认棋盘高
	DefaultBoardHeight = 36
)

// PlayerColors 两名玩家的蛇头颜色（与客户端霓虹配色一致）
var PlayerColors = [2]string{"#00ff88", "#ff0066"}

// Reason 终局原因，直接作为协议字段下发
type Reason string

const (
	ReasonScore           Reason = "score"
	ReasonSurvival        Reason = "survival"
	ReasonDraw            Reason = "draw"
	ReasonOpponentLeft    Reason = "opponent_left"
	ReasonScoreAfterDeath Reason = "score_after_death"
	ReasonHeadCollision   Reason = "head_collision"
)

// Outcome 一局的结果；Winner 为蛇的下标，-1 表示平局
type Outcome struct {
	Winner int
	Reason Reason
}

// Draw 是否平局
func (o Outcome) Draw() bool { return o.Winner < 0 }

// Config 单局模拟参数
type Config struct {
	Width     int
	Height    int
	WinTarget int
	Settings  Settings
}

// DefaultConfig 多人模式默认配置
func DefaultConfig() Config {
	return Config{
		Width:     DefaultBoardWidth,
		Height:    DefaultBoardHeight,
		WinTarget: DefaultWinTarget,
		Settings:  DefaultSettings,
	}
}

// Match 一局对战的完整模拟状态。非并发安全：由房间协程独占。
type Match struct {
	Config  Config
	Snakes  []*Snake
	Food    *Point
	Turn    int
	Outcome *Outcome

	rng *rand.Rand
}

// NewMatch 在出生点放置两条蛇并生成第一个食物
func NewMatch(cfg Config, nicknames [2]string, rng *rand.Rand) *Match {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Match{Config: cfg, rng: rng}
	for i, name := range nicknames {
		head, dir := SpawnPoint(i, cfg.Width, cfg.Height)
		m.Snakes = append(m.Snakes, NewSnake(name, PlayerColors[i], head, dir, SpawnLength))
	}
	m.Food = SpawnFood(cfg.Width, cfg.Height, m.Snakes, m.rng)
	return m
}

// SpawnPoint 返回第 i 名玩家的出生蛇头与朝向：
// 0 号在左侧四分之一处向上，1 号在右侧四分之一处向下。
func SpawnPoint(i, width, height int) (Point, Direction) {
	if i == 0 {
		return Point{X: width / 4, Y: height / 2}, DirUp
	}
	return Point{X: width - 1 - width/4, Y: height / 2}, DirDown
}

// Steer 缓冲玩家 i 的下一帧方向（后写覆盖先写）
func (m *Match) Steer(i int, d Direction) {
	if i < 0 || i >= len(m.Snakes) || m.Outcome != nil {
		return
	}
	m.Snakes[i].ChangeDirection(d)
}

// TickInterval 由房间内最高分推导当前帧间隔
func (m *Match) TickInterval() time.Duration {
	best := 0
	for _, s := range m.Snakes {
		if s.Score > best {
			best = s.Score
		}
	}
	return m.Config.Settings.Difficulty.Curve().Interval(best / PointsPerFood)
}

// Tick 推进一帧。返回非 nil 表示本帧分出了胜负。
// 所有碰撞都基于帧开始时的身体判定，结果与蛇的遍历顺序无关。
func (m *Match) Tick() *Outcome {
	if m.Outcome != nil {
		return m.Outcome
	}
	m.Turn++

	n := len(m.Snakes)
	cand := make([]Point, n)
	moving := make([]bool, n)
	death := make([]DeathCause, n)

	// 1-3. 提交方向、候选蛇头、墙
	for i, s := range m.Snakes {
		if !s.Alive {
			continue
		}
		s.CommitDirection()
		moving[i] = true
		cand[i] = s.Step(s.Direction)
		if m.Config.Settings.Mode == ModeInfinite {
			cand[i] = Wrap(cand[i], m.Config.Width, m.Config.Height)
		} else if OutOfBounds(cand[i], m.Config.Width, m.Config.Height) {
			death[i] = CauseWall
		}
	}

	// 4. 撞自己
	for i, s := range m.Snakes {
		if moving[i] && death[i] == CauseNone && HitsBody(cand[i], s, true) {
			death[i] = CauseSelf
		}
	}

	// 5. 头对头：两颗候选蛇头落在同一格，双方同时死亡
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !moving[i] || !moving[j] || cand[i] != cand[j] {
				continue
			}
			if death[i] == CauseNone && death[j] == CauseNone {
				death[i], death[j] = CauseHeadOn, CauseHeadOn
			}
		}
	}

	// 6. 撞对手身体：只有撞上去的一方死亡
	for i := range m.Snakes {
		if !moving[i] || death[i] != CauseNone {
			continue
		}
		for j, other := range m.Snakes {
			if j != i && HitsBody(cand[i], other, false) {
				death[i] = CauseBody
				break
			}
		}
	}

	// 7. 结算死亡，提交幸存者
	for i, s := range m.Snakes {
		if !moving[i] {
			continue
		}
		if death[i] != CauseNone {
			s.Kill(death[i])
			continue
		}
		s.Advance(cand[i])
	}

	// 8. 食物：同一帧两条蛇都吃到时各自得分，食物只刷新一次
	if m.Food != nil {
		eaten := false
		for _, s := range m.Snakes {
			if s.Alive && s.Head() == *m.Food {
				s.Grow()
				s.AddScore(PointsPerFood)
				eaten = true
			}
		}
		if eaten {
			m.Food = SpawnFood(m.Config.Width, m.Config.Height, m.Snakes, m.rng)
		}
	}

	// 9. 胜负
	m.Outcome = m.evaluate()
	return m.Outcome
}

// Forfeit 玩家 i 离开：其蛇死亡，对手以 opponent_left 获胜
func (m *Match) Forfeit(i int) *Outcome {
	if m.Outcome != nil || i < 0 || i >= len(m.Snakes) {
		return m.Outcome
	}
	m.Snakes[i].Kill(CauseForfeit)
	m.Outcome = &Outcome{Winner: -1, Reason: ReasonOpponentLeft}
	for j := range m.Snakes {
		if j != i {
			m.Outcome.Winner = j
			break
		}
	}
	return m.Outcome
}

func (m *Match) evaluate() *Outcome {
	target := m.Config.WinTarget
	if target <= 0 {
		target = DefaultWinTarget
	}

	// (a) 活着的蛇达到目标分
	reached := make([]int, 0, 2)
	for i, s := range m.Snakes {
		if s.Alive && s.Score >= target {
			reached = append(reached, i)
		}
	}
	switch len(reached) {
	case 1:
		return &Outcome{Winner: reached[0], Reason: ReasonScore}
	case 2:
		if w := m.higherScore(reached[0], reached[1]); w >= 0 {
			return &Outcome{Winner: w, Reason: ReasonScore}
		}
		return &Outcome{Winner: -1, Reason: ReasonDraw}
	}

	alive := make([]int, 0, 2)
	for i, s := range m.Snakes {
		if s.Alive {
			alive = append(alive, i)
		}
	}
	switch len(alive) {
	case 1:
		// (b) 仅一方存活
		return &Outcome{Winner: alive[0], Reason: ReasonSurvival}
	case 0:
		// (c) 同帧双亡，比分数
		a, b := 0, 1
		if w := m.higherScore(a, b); w >= 0 {
			return &Outcome{Winner: w, Reason: ReasonScoreAfterDeath}
		}
		if m.Snakes[a].Cause == CauseHeadOn && m.Snakes[b].Cause == CauseHeadOn {
			return &Outcome{Winner: -1, Reason: ReasonHeadCollision}
		}
		return &Outcome{Winner: -1, Reason: ReasonDraw}
	}
	return nil
}

// higherScore 返回分数更高的下标，相等返回 -1
func (m *Match) higherScore(a, b int) int {
	switch {
	case m.Snakes[a].Score > m.Snakes[b].Score:
		return a
	case m.Snakes[b].Score > m.Snakes[a].Score:
		return b
	default:
		return -1
	}
}
