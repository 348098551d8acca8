package server

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"snakeduel/game"
)

// 入站事件名（客户端 → 服务端）
const (
	EvJoinQueue      = "join_queue"
	EvLeaveQueue     = "leave_queue"
	EvCreateRoom     = "create_room"
	EvJoinRoom       = "join_room"
	EvLeaveRoom      = "leave_room"
	EvInput          = "input"
	EvRequestRematch = "request_rematch"
	EvDeclineRematch = "decline_rematch"
)

// maxNicknameLen 昵称最大字符数
const maxNicknameLen = 20

// InboundMessage 客户端文本帧：{"event":"input","data":{"direction":"UP"}}
type InboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinQueueData join_queue / create_room 的载荷
type JoinQueueData struct {
	Nickname string         `json:"nickname"`
	Settings *game.Settings `json:"settings,omitempty"`
}

// JoinRoomData join_room 的载荷
type JoinRoomData struct {
	Nickname string `json:"nickname"`
	RoomCode string `json:"roomCode"`
}

// InputData input 的载荷；方向在 Tick 中才生效
type InputData struct {
	Direction string `json:"direction"`
}

// decodeData 解析事件载荷；空载荷视为 {}
func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrBadMessage.withMessage("malformed payload: " + err.Error())
	}
	return nil
}

// normalizeNickname 去掉首尾空白并校验长度
func normalizeNickname(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n == 0 || n > maxNicknameLen {
		return "", ErrInvalidNickname
	}
	return s, nil
}

// normalizeSettings 缺省时使用默认设置
func normalizeSettings(s *game.Settings) (game.Settings, error) {
	if s == nil {
		return game.DefaultSettings, nil
	}
	out, err := s.Normalize()
	if err != nil {
		return game.Settings{}, ErrInvalidSettings.withMessage(err.Error())
	}
	return out, nil
}
