package main

import (
	"time"

	"github.com/fatih/color"
)

// display 彩色终端输出
type display struct {
	serverColor  *color.Color
	connectColor *color.Color
	gameColor    *color.Color
	winColor     *color.Color
	loseColor    *color.Color
	warningColor *color.Color
	infoColor    *color.Color
}

func newDisplay() *display {
	return &display{
		serverColor:  color.New(color.FgCyan, color.Bold),
		connectColor: color.New(color.FgGreen, color.Bold),
		gameColor:    color.New(color.FgYellow, color.Bold),
		winColor:     color.New(color.FgGreen, color.Bold, color.BgBlack),
		loseColor:    color.New(color.FgRed, color.Bold, color.BgBlack),
		warningColor: color.New(color.FgYellow),
		infoColor:    color.New(color.FgWhite),
	}
}

func stamp() string { return time.Now().Format("15:04:05") }

func (d *display) server(format string, args ...any) {
	d.serverColor.Printf("[%s] [SERVER] "+format+"\n", append([]any{stamp()}, args...)...)
}

func (d *display) connect(format string, args ...any) {
	d.connectColor.Printf("[%s] [CONNECT] "+format+"\n", append([]any{stamp()}, args...)...)
}

func (d *display) game(format string, args ...any) {
	d.gameColor.Printf("[%s] [GAME] "+format+"\n", append([]any{stamp()}, args...)...)
}

func (d *display) warn(format string, args ...any) {
	d.warningColor.Printf("[%s] [WARN] "+format+"\n", append([]any{stamp()}, args...)...)
}

func (d *display) info(format string, args ...any) {
	d.infoColor.Printf("[%s] "+format+"\n", append([]any{stamp()}, args...)...)
}

// result 打印一局结果，胜负不同配色
func (d *display) result(won, draw bool, reason string, scores string) {
	switch {
	case draw:
		d.gameColor.Printf("[%s] [DRAW] reason=%s %s\n", stamp(), reason, scores)
	case won:
		d.winColor.Printf("[%s] [VICTORY] reason=%s %s\n", stamp(), reason, scores)
	default:
		d.loseColor.Printf("[%s] [DEFEAT] reason=%s %s\n", stamp(), reason, scores)
	}
}
