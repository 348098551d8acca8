package server

// Sink 接收房间/注册表发往某个连接的事件（实现者必须非阻塞）
type Sink interface {
	Send(event string, data any)
}

// Participant 一个连接在匹配/房间中的身份
type Participant struct {
	ID       string // 连接 ID，内部唯一
	Nickname string
	Sink     Sink
}

// seat 房间内的一个座位；下标与对局中的蛇下标一一对应
type seat struct {
	Participant
	rematch bool // 是否已请求再来一局
}

// RoomState 房间状态机
type RoomState string

const (
	StateWaiting   RoomState = "WAITING"
	StateCountdown RoomState = "COUNTDOWN"
	StatePlaying   RoomState = "PLAYING"
	StateGameOver  RoomState = "GAME_OVER"
)

func playersOf(seats []*seat) []PlayerInfo {
	out := make([]PlayerInfo, 0, len(seats))
	for _, s := range seats {
		out = append(out, PlayerInfo{Nickname: s.Nickname})
	}
	return out
}
