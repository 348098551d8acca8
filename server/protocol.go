package server

import (
	"encoding/json"
	"strconv"

	"snakeduel/game"
)

// 出站事件名（服务端 → 客户端）
const (
	EvConnected        = "connected"
	EvQueueJoined      = "queue_joined"
	EvQueueLeft        = "queue_left"
	EvMatchFound       = "match_found"
	EvRoomCreated      = "room_created"
	EvRoomJoined       = "room_joined"
	EvRoomLeft         = "room_left"
	EvPlayerJoined     = "player_joined"
	EvPlayerLeft       = "player_left"
	EvCountdown        = "countdown"
	EvGameStart        = "game_start"
	EvGameState        = "game_state"
	EvGameOver         = "game_over"
	EvRematchRequested = "rematch_requested"
	EvRematchAccepted  = "rematch_accepted"
	EvRematchDeclined  = "rematch_declined"
	EvError            = "error"
)

// OutboundMessage 服务端文本帧
type OutboundMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// encodeEvent 序列化一个出站事件；data 为 nil 时下发 {}
func encodeEvent(event string, data any) ([]byte, error) {
	if data == nil {
		data = struct{}{}
	}
	return json.Marshal(OutboundMessage{Event: event, Data: data})
}

type ConnectedData struct {
	PlayersOnline int `json:"playersOnline"`
}

type QueueJoinedData struct {
	Position      int `json:"position"`
	PlayersOnline int `json:"playersOnline"`
}

type PlayerInfo struct {
	Nickname string `json:"nickname"`
}

type RoomPlayersData struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerInfo `json:"players"`
}

type RoomCreatedData struct {
	RoomCode string `json:"roomCode"`
}

type PlayerJoinedData struct {
	Nickname string       `json:"nickname"`
	Players  []PlayerInfo `json:"players"`
}

type NicknameData struct {
	Nickname string `json:"nickname"`
}

type CountdownData struct {
	Seconds int `json:"seconds"`
}

type SegmentData struct {
	X  int    `json:"x"`
	Y  int    `json:"y"`
	ID string `json:"id"`
}

type SnakeData struct {
	Nickname  string         `json:"nickname"`
	Segments  []SegmentData  `json:"segments"`
	Alive     bool           `json:"alive"`
	Score     int            `json:"score"`
	Color     string         `json:"color"`
	Direction game.Direction `json:"direction"`
}

type GameStateData struct {
	Snakes      []SnakeData `json:"snakes"`
	Food        *game.Point `json:"food"`
	State       RoomState   `json:"state"`
	BoardWidth  int         `json:"boardWidth"`
	BoardHeight int         `json:"boardHeight"`
}

type ScoreData struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Alive    bool   `json:"alive"`
}

type GameOverData struct {
	Winner *string     `json:"winner"`
	Reason game.Reason `json:"reason"`
	Scores []ScoreData `json:"scores"`
}

type ErrorData struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// snapshotOf 构造 game_state 载荷；段 ID 以蛇下标为前缀，保证两条蛇之间也不重复
func snapshotOf(m *game.Match, state RoomState) GameStateData {
	out := GameStateData{
		Snakes:      make([]SnakeData, 0, len(m.Snakes)),
		State:       state,
		BoardWidth:  m.Config.Width,
		BoardHeight: m.Config.Height,
	}
	if m.Food != nil {
		f := *m.Food
		out.Food = &f
	}
	for i, s := range m.Snakes {
		prefix := strconv.Itoa(i) + "-"
		segs := make([]SegmentData, len(s.Body))
		for j, seg := range s.Body {
			segs[j] = SegmentData{X: seg.X, Y: seg.Y, ID: prefix + strconv.Itoa(seg.ID)}
		}
		out.Snakes = append(out.Snakes, SnakeData{
			Nickname:  s.Nickname,
			Segments:  segs,
			Alive:     s.Alive,
			Score:     s.Score,
			Color:     s.Color,
			Direction: s.Direction,
		})
	}
	return out
}

// gameOverOf 构造 game_over 载荷
func gameOverOf(m *game.Match, out game.Outcome) GameOverData {
	data := GameOverData{Reason: out.Reason, Scores: make([]ScoreData, 0, len(m.Snakes))}
	if !out.Draw() {
		name := m.Snakes[out.Winner].Nickname
		data.Winner = &name
	}
	for _, s := range m.Snakes {
		data.Scores = append(data.Scores, ScoreData{Nickname: s.Nickname, Score: s.Score, Alive: s.Alive})
	}
	return data
}
