// snakebot 是一个命令行对战机器人：连接服务端，排队或加入房间，
// 按贪心策略操作蛇，并在结束后自动请求再战。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"snakeduel/game"
	"snakeduel/server"
)

type options struct {
	url        string
	nickname   string
	room       string
	settings   game.Settings
	rematches  int
	retries    int
	minBackoff time.Duration
	maxBackoff time.Duration
}

// envelope 入站文本帧，data 延迟解析
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// errDone 正常结束（再战次数用完或房间关闭），不再重连
var errDone = errors.New("done")

func main() {
	var opts options
	var mode, difficulty string
	flag.StringVar(&opts.url, "url", "ws://localhost:8080/snakemultiplayer/ws", "server websocket url")
	flag.StringVar(&opts.nickname, "name", defaultNickname(rand.New(rand.NewSource(time.Now().UnixNano()))),
		"nickname; must differ from the opponent's so the bot can find its own snake")
	flag.StringVar(&opts.room, "room", "", "room code to join; \"new\" creates a private room; empty uses quick match")
	flag.StringVar(&mode, "mode", string(game.ModeClassic), "CLASSIC or INFINITE")
	flag.StringVar(&difficulty, "difficulty", string(game.DifficultyNormal), "EASY, NORMAL or HARD")
	flag.IntVar(&opts.rematches, "rematches", 3, "number of rematches to request after the first game")
	flag.IntVar(&opts.retries, "retries", 5, "reconnect attempts before giving up")
	flag.DurationVar(&opts.minBackoff, "backoff", 500*time.Millisecond, "initial reconnect delay")
	flag.DurationVar(&opts.maxBackoff, "max-backoff", 10*time.Second, "maximum reconnect delay")
	flag.Parse()

	d := newDisplay()
	settings, err := game.Settings{Mode: game.Mode(mode), Difficulty: game.Difficulty(difficulty)}.Normalize()
	if err != nil {
		d.warn("%v", err)
		os.Exit(2)
	}
	opts.settings = settings

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := &bot{opts: opts, out: d, rematchesLeft: opts.rematches}
	if err := b.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		d.warn("%v", err)
		os.Exit(1)
	}
}

type bot struct {
	opts          options
	out           *display
	rematchesLeft int

	me      int
	lastDir game.Direction
}

// run 带指数退避的重连循环
func (b *bot) run(ctx context.Context) error {
	delay := b.opts.minBackoff
	for attempt := 0; ; attempt++ {
		connected, err := b.session(ctx)
		if errors.Is(err, errDone) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			attempt, delay = 0, b.opts.minBackoff
		}
		if attempt >= b.opts.retries {
			return fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}
		b.out.warn("connection lost (%v), retrying in %s", err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, b.opts.maxBackoff)
	}
}

// session 一次连接的完整生命周期；connected 表示握手成功过
func (b *bot) session(ctx context.Context) (connected bool, err error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, b.opts.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	stop := closeOnCancel(ctx, conn)
	defer stop()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("%w: %v", server.ErrConnectionLost, err)
		}
		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			b.out.warn("bad frame: %v", err)
			continue
		}
		if err := b.handle(conn, env); err != nil {
			return true, err
		}
	}
}

func (b *bot) send(conn *websocket.Conn, event string, data any) error {
	if data == nil {
		data = struct{}{}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(map[string]any{"event": event, "data": data})
}

func (b *bot) join(conn *websocket.Conn) error {
	b.lastDir = game.DirNone
	switch b.opts.room {
	case "":
		return b.send(conn, server.EvJoinQueue, server.JoinQueueData{Nickname: b.opts.nickname, Settings: &b.opts.settings})
	case "new":
		return b.send(conn, server.EvCreateRoom, server.JoinQueueData{Nickname: b.opts.nickname, Settings: &b.opts.settings})
	default:
		return b.send(conn, server.EvJoinRoom, server.JoinRoomData{Nickname: b.opts.nickname, RoomCode: b.opts.room})
	}
}

func (b *bot) handle(conn *websocket.Conn, env envelope) error {
	switch env.Event {
	case server.EvConnected:
		var data server.ConnectedData
		_ = json.Unmarshal(env.Data, &data)
		b.out.connect("connected to %s (%d online)", b.opts.url, data.PlayersOnline)
		return b.join(conn)

	case server.EvQueueJoined:
		var data server.QueueJoinedData
		_ = json.Unmarshal(env.Data, &data)
		b.out.server("queued at position %d", data.Position)

	case server.EvRoomCreated:
		var data server.RoomCreatedData
		_ = json.Unmarshal(env.Data, &data)
		b.out.server("room %s created, waiting for an opponent", data.RoomCode)

	case server.EvMatchFound, server.EvRoomJoined:
		var data server.RoomPlayersData
		_ = json.Unmarshal(env.Data, &data)
		b.me = seatOf(data.Players, b.opts.nickname)
		b.out.game("room %s: %s", data.RoomCode, names(data.Players))

	case server.EvPlayerJoined:
		var data server.PlayerJoinedData
		_ = json.Unmarshal(env.Data, &data)
		b.me = seatOf(data.Players, b.opts.nickname)
		b.out.game("%s joined", data.Nickname)

	case server.EvCountdown:
		var data server.CountdownData
		_ = json.Unmarshal(env.Data, &data)
		b.out.info("starting in %d...", data.Seconds)

	case server.EvGameStart:
		b.lastDir = game.DirNone
		b.out.game("go!")

	case server.EvGameState:
		var state server.GameStateData
		if err := json.Unmarshal(env.Data, &state); err != nil {
			return fmt.Errorf("decode game_state: %w", err)
		}
		if state.State != server.StatePlaying {
			return nil
		}
		d := chooseDirection(state, b.me, b.opts.settings.Mode == game.ModeInfinite)
		if d == game.DirNone || d == b.lastDir {
			return nil
		}
		b.lastDir = d
		return b.send(conn, server.EvInput, server.InputData{Direction: d.String()})

	case server.EvGameOver:
		var data server.GameOverData
		_ = json.Unmarshal(env.Data, &data)
		won := data.Winner != nil && *data.Winner == b.opts.nickname
		b.out.result(won, data.Winner == nil, string(data.Reason), scoreLine(data.Scores))
		if b.rematchesLeft <= 0 {
			return errDone
		}
		b.rematchesLeft--
		return b.send(conn, server.EvRequestRematch, nil)

	case server.EvRematchRequested:
		b.out.info("opponent wants a rematch")

	case server.EvRematchAccepted:
		b.out.game("rematch accepted")

	case server.EvRematchDeclined, server.EvPlayerLeft:
		b.out.info("%s", env.Event)

	case server.EvRoomLeft:
		if b.opts.room != "" || b.rematchesLeft <= 0 {
			return errDone
		}
		b.out.info("back to the queue")
		return b.join(conn)

	case server.EvError:
		var data server.ErrorData
		_ = json.Unmarshal(env.Data, &data)
		b.out.warn("server error %s: %s", data.Code, data.Message)
		switch data.Code {
		case server.ErrRoomNotFound.Code, server.ErrRoomFull.Code, server.ErrInvalidNickname.Code, server.ErrInvalidSettings.Code:
			return errDone
		}
	}
	return nil
}

// defaultNickname 每个进程一个不同的昵称，两个默认参数的机器人对战时也能区分座位
func defaultNickname(rng *rand.Rand) string {
	return fmt.Sprintf("snakebot-%04d", rng.Intn(10000))
}

// closeOnCancel ctx 取消时关闭连接以打断阻塞的读；返回的 stop 结束监听协程
func closeOnCancel(ctx context.Context, c io.Closer) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func seatOf(players []server.PlayerInfo, nickname string) int {
	for i, p := range players {
		if p.Nickname == nickname {
			return i
		}
	}
	return 0
}

func names(players []server.PlayerInfo) string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Nickname
	}
	return strings.Join(out, " vs ")
}

func scoreLine(scores []server.ScoreData) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%s=%d", s.Nickname, s.Score)
	}
	return strings.Join(parts, " ")
}
