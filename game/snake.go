package game

// SpawnLength 出生时的蛇长
const SpawnLength = 3

// Segment 蛇身的一节；ID 在整条蛇的生命周期内稳定，便于前端做平滑动画
type Segment struct {
	Point
	ID int
}

// DeathCause 记录蛇的死亡原因，决定终局判定中的 head_collision
type DeathCause int

const (
	CauseNone DeathCause = iota
	CauseWall
	CauseSelf
	CauseHeadOn
	CauseBody
	CauseForfeit
)

func (c DeathCause) String() string {
	switch c {
	case CauseWall:
		return "wall"
	case CauseSelf:
		return "self"
	case CauseHeadOn:
		return "head_on"
	case CauseBody:
		return "body"
	case CauseForfeit:
		return "forfeit"
	default:
		return "none"
	}
}

// Snake 一名玩家的蛇（服务端权威状态）
type Snake struct {
	Nickname  string
	Color     string
	Body      []Segment // Body[0] 为蛇头
	Alive     bool
	Score     int
	Direction Direction // 已提交的方向
	Pending   Direction // 下一帧生效的方向，DirNone 表示无输入
	Cause     DeathCause

	nextID  int
	dropped *Segment // 最近一次 Advance 丢弃的尾巴，Grow 时接回
}

// NewSnake 在 head 处生成一条朝 dir 前进、长度为 length 的蛇，身体向反方向延伸
func NewSnake(nickname, color string, head Point, dir Direction, length int) *Snake {
	if length < 1 {
		length = 1
	}
	s := &Snake{
		Nickname:  nickname,
		Color:     color,
		Alive:     true,
		Direction: dir,
		Body:      make([]Segment, 0, length),
	}
	back := Opposite(dir)
	p := head
	for i := 0; i < length; i++ {
		s.Body = append(s.Body, Segment{Point: p, ID: s.nextID})
		s.nextID++
		p = Move(p, back)
	}
	return s
}

// Head 返回蛇头坐标
func (s *Snake) Head() Point {
	return s.Body[0].Point
}

// Len 当前长度
func (s *Snake) Len() int {
	return len(s.Body)
}

// ChangeDirection 缓冲下一帧的方向；与已提交方向正好相反时静默忽略
func (s *Snake) ChangeDirection(d Direction) {
	if !s.Alive || d == DirNone {
		return
	}
	if d == Opposite(s.Direction) {
		return
	}
	s.Pending = d
}

// CommitDirection 在帧开始时把缓冲方向提交为当前方向
func (s *Snake) CommitDirection() {
	if s.Pending != DirNone && s.Pending != Opposite(s.Direction) {
		s.Direction = s.Pending
	}
	s.Pending = DirNone
}

// Step 计算沿 d 前进后的候选蛇头，不修改蛇
func (s *Snake) Step(d Direction) Point {
	return Move(s.Head(), d)
}

// Advance 提交移动：头部加一节，尾部去掉一节
func (s *Snake) Advance(head Point) {
	if !s.Alive {
		return
	}
	tail := s.Body[len(s.Body)-1]
	copy(s.Body[1:], s.Body[:len(s.Body)-1])
	s.Body[0] = Segment{Point: head, ID: s.nextID}
	s.nextID++
	s.dropped = &tail
}

// Grow 长度加一：接回本帧丢弃的尾巴，没有则复制当前尾巴
func (s *Snake) Grow() {
	tail := s.Body[len(s.Body)-1].Point
	if s.dropped != nil {
		tail = s.dropped.Point
		s.dropped = nil
	}
	s.Body = append(s.Body, Segment{Point: tail, ID: s.nextID})
	s.nextID++
}

// AddScore 加分，负数被忽略
func (s *Snake) AddScore(points int) {
	if points > 0 {
		s.Score += points
	}
}

// Kill 标记死亡，之后不再移动
func (s *Snake) Kill(cause DeathCause) {
	if !s.Alive {
		return
	}
	s.Alive = false
	s.Cause = cause
	s.Pending = DirNone
}
