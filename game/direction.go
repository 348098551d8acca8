package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction 移动方向；DirNone 表示"没有缓冲的输入"
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// String 返回协议中使用的方向名（UP/DOWN/LEFT/RIGHT）
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	default:
		return ""
	}
}

// ParseDirection 解析客户端方向（大小写不敏感）
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return DirUp, nil
	case "DOWN":
		return DirDown, nil
	case "LEFT":
		return DirLeft, nil
	case "RIGHT":
		return DirRight, nil
	}
	return DirNone, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalJSON() ([]byte, error) {
	if d == DirNone {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Opposite 返回反方向，DirNone 的反方向仍是 DirNone
func Opposite(d Direction) Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return DirNone
	}
}

// AllDirections 固定顺序，便于遍历
var AllDirections = [4]Direction{DirUp, DirDown, DirLeft, DirRight}
