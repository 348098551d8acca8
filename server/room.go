package server

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"snakeduel/archive"
	"snakeduel/game"
)

// MatchRecorder 接收已结束的对局（例如 parquet 归档）
type MatchRecorder interface {
	Record(rec archive.MatchRecord) error
}

type eventKind int

const (
	evJoin eventKind = iota
	evLeave
	evDisconnect
	evInput
	evRematch
	evDecline
	evShutdown
)

// roomEvent 投递到房间协程的事件；只有房间协程会修改房间状态
type roomEvent struct {
	kind  eventKind
	id    string
	seat  *seat
	dir   game.Direction
	reply chan error
}

// RoomInfo 房间概要，供 /admin/rooms 读取
type RoomInfo struct {
	Code       string          `json:"code"`
	State      RoomState       `json:"state"`
	Mode       game.Mode       `json:"mode"`
	Difficulty game.Difficulty `json:"difficulty"`
	Players    []PlayerInfo    `json:"players"`
	Turn       int             `json:"turn"`
}

// Room 一场权威对局：状态只由房间协程在事件与计时器回调中修改
type Room struct {
	Code     string
	Settings game.Settings

	cfg      RoomConfig
	log      *zap.SugaredLogger
	inbox    chan roomEvent
	done     chan struct{}
	onClose  func(*Room)
	metrics  *Metrics
	recorder MatchRecorder
	rng      *rand.Rand

	// 以下字段仅由房间协程访问
	state     RoomState
	seats     []*seat
	match     *game.Match
	countdown int
	timer     *time.Timer
	closed    bool
	startedAt time.Time
	opening   func()

	infoMu sync.Mutex
	info   RoomInfo
}

// roomDeps 注册表传给房间的共享依赖
type roomDeps struct {
	metrics  *Metrics
	recorder MatchRecorder
	onClose  func(*Room)
	rng      *rand.Rand
}

func newRoom(code string, settings game.Settings, cfg RoomConfig, deps roomDeps) *Room {
	if deps.metrics == nil {
		deps.metrics = &Metrics{}
	}
	if deps.rng == nil {
		deps.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r := &Room{
		Code:     code,
		Settings: settings,
		cfg:      cfg,
		log:      Log.With("room", code),
		inbox:    make(chan roomEvent, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		done:     make(chan struct{}),
		onClose:  deps.onClose,
		metrics:  deps.metrics,
		recorder: deps.recorder,
		rng:      deps.rng,
		state:    StateWaiting,
	}
	deps.metrics.IncRoomsCreated()
	r.publish()
	return r
}

// newHostedRoom 私人房间：房主先入座，开局后收到 room_created
func newHostedRoom(code string, settings game.Settings, cfg RoomConfig, deps roomDeps, host Participant) *Room {
	r := newRoom(code, settings, cfg, deps)
	host0 := &seat{Participant: host}
	r.seats = []*seat{host0}
	r.opening = func() {
		r.sendTo(host0, EvRoomCreated, RoomCreatedData{RoomCode: r.Code})
	}
	r.publish()
	return r
}

// newMatchedRoom 快速匹配：两人同时入座，双方收到 match_found 后直接倒计时
func newMatchedRoom(code string, settings game.Settings, cfg RoomConfig, deps roomDeps, a, b Participant) *Room {
	r := newRoom(code, settings, cfg, deps)
	r.seats = []*seat{{Participant: a}, {Participant: b}}
	r.opening = func() {
		r.broadcast(EvMatchFound, RoomPlayersData{RoomCode: r.Code, Players: playersOf(r.seats)})
		r.startCountdown()
	}
	r.publish()
	return r
}

// Done 房间销毁后关闭
func (r *Room) Done() <-chan struct{} { return r.done }

// Info 返回最近一次发布的房间概要
func (r *Room) Info() RoomInfo {
	r.infoMu.Lock()
	defer r.infoMu.Unlock()
	info := r.info
	info.Players = append([]PlayerInfo(nil), r.info.Players...)
	return info
}

// Join 通过房间码加入；房间已销毁时返回 ErrRoomNotFound
func (r *Room) Join(p Participant) error {
	reply := make(chan error, 1)
	if !r.post(roomEvent{kind: evJoin, seat: &seat{Participant: p}, reply: reply}) {
		return ErrRoomNotFound
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomNotFound
	}
}

// Input 缓冲方向输入（非阻塞：收件箱满时丢弃，保证 Tick 准时）
func (r *Room) Input(id string, d game.Direction) {
	select {
	case r.inbox <- roomEvent{kind: evInput, id: id, dir: d}:
	case <-r.done:
	default:
		r.metrics.IncDropped()
	}
}

// Leave 玩家主动离开
func (r *Room) Leave(id string) { r.post(roomEvent{kind: evLeave, id: id}) }

// Disconnect 玩家连接断开
func (r *Room) Disconnect(id string) { r.post(roomEvent{kind: evDisconnect, id: id}) }

// RequestRematch 请求再来一局
func (r *Room) RequestRematch(id string) { r.post(roomEvent{kind: evRematch, id: id}) }

// DeclineRematch 拒绝再来一局，房间随之销毁
func (r *Room) DeclineRematch(id string) { r.post(roomEvent{kind: evDecline, id: id}) }

// Close 通知房间销毁（进程退出时使用）
func (r *Room) Close() { r.post(roomEvent{kind: evShutdown}) }

// post 阻塞投递事件；房间已销毁时返回 false
func (r *Room) post(ev roomEvent) bool {
	select {
	case r.inbox <- ev:
		return true
	case <-r.done:
		return false
	}
}

// handle 在房间协程中处理一个事件
func (r *Room) handle(ev roomEvent) {
	switch ev.kind {
	case evJoin:
		err := r.handleJoin(ev.seat)
		if ev.reply != nil {
			ev.reply <- err
		}
	case evLeave:
		r.handleLeave(ev.id, false)
	case evDisconnect:
		r.handleLeave(ev.id, true)
	case evInput:
		r.handleInput(ev.id, ev.dir)
	case evRematch:
		r.handleRematch(ev.id)
	case evDecline:
		r.handleDecline(ev.id)
	case evShutdown:
		r.teardown("shutdown")
	}
}

func (r *Room) handleJoin(s *seat) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if len(r.seats) >= 2 || r.state != StateWaiting {
		return ErrRoomFull
	}
	r.seats = append(r.seats, s)
	players := playersOf(r.seats)
	r.sendTo(s, EvRoomJoined, RoomPlayersData{RoomCode: r.Code, Players: players})
	for _, o := range r.seats {
		if o != s {
			r.sendTo(o, EvPlayerJoined, PlayerJoinedData{Nickname: s.Nickname, Players: players})
		}
	}
	r.log.Infow("player joined", "nickname", s.Nickname, "players", len(r.seats))
	if len(r.seats) == 2 {
		r.startCountdown()
	}
	return nil
}

// handleLeave 处理离开/断线，按当前状态决定是移除、判负还是放弃再战
func (r *Room) handleLeave(id string, disconnected bool) {
	idx := r.seatIndex(id)
	if idx < 0 {
		return
	}
	leaver := r.seats[idx]
	r.log.Infow("player left", "nickname", leaver.Nickname, "state", r.state, "disconnected", disconnected)

	switch r.state {
	case StateWaiting, StateCountdown:
		r.removeSeat(idx)
		if r.state == StateCountdown {
			r.stopTimer()
			r.state = StateWaiting
		}
		if len(r.seats) == 0 {
			r.teardown("empty")
			return
		}
		r.broadcast(EvPlayerLeft, NicknameData{Nickname: leaver.Nickname})

	case StatePlaying:
		out := r.match.Forfeit(idx)
		r.removeSeat(idx)
		r.broadcast(EvPlayerLeft, NicknameData{Nickname: leaver.Nickname})
		r.broadcast(EvGameState, snapshotOf(r.match, StateGameOver))
		if out != nil {
			r.finish(*out)
		}
		if len(r.seats) == 0 {
			r.teardown("empty")
		}

	case StateGameOver:
		r.removeSeat(idx)
		if len(r.seats) == 0 {
			r.teardown("empty")
			return
		}
		r.broadcast(EvPlayerLeft, NicknameData{Nickname: leaver.Nickname})
		if !disconnected {
			// 主动离开等同拒绝再战
			r.broadcast(EvRematchDeclined, nil)
			r.teardown("left after game over")
		}
	}
}

func (r *Room) handleInput(id string, d game.Direction) {
	if r.state != StatePlaying || r.match == nil {
		r.metrics.IncIgnored()
		return
	}
	idx := r.seatIndex(id)
	if idx < 0 {
		return
	}
	r.match.Steer(idx, d)
	r.metrics.IncAccepted()
}

func (r *Room) handleRematch(id string) {
	idx := r.seatIndex(id)
	if idx < 0 || r.state != StateGameOver {
		return
	}
	s := r.seats[idx]
	if len(r.seats) < 2 {
		// 对手已离开，无法再战
		r.sendTo(s, EvRematchDeclined, nil)
		r.teardown("opponent gone")
		return
	}
	if s.rematch {
		return
	}
	s.rematch = true
	r.broadcast(EvRematchRequested, NicknameData{Nickname: s.Nickname})
	for _, o := range r.seats {
		if !o.rematch {
			return
		}
	}
	r.log.Infow("rematch accepted")
	r.broadcast(EvRematchAccepted, nil)
	r.startCountdown()
}

func (r *Room) handleDecline(id string) {
	if r.seatIndex(id) < 0 || r.state != StateGameOver {
		return
	}
	r.broadcast(EvRematchDeclined, nil)
	r.teardown("rematch declined")
}

// startCountdown 进入倒计时，每秒广播一次剩余秒数
func (r *Room) startCountdown() {
	r.stopTimer()
	r.state = StateCountdown
	for _, s := range r.seats {
		s.rematch = false
	}
	r.countdown = r.cfg.CountdownSeconds
	if r.countdown <= 0 {
		r.startPlaying()
		return
	}
	r.broadcast(EvCountdown, CountdownData{Seconds: r.countdown})
	r.schedule(r.cfg.countdownStep())
}

// startPlaying 按出生点重置双方并开始 Tick
func (r *Room) startPlaying() {
	names := [2]string{r.seats[0].Nickname, r.seats[1].Nickname}
	r.match = game.NewMatch(r.cfg.matchConfig(r.Settings), names, r.rng)
	r.state = StatePlaying
	r.startedAt = time.Now()
	r.log.Infow("game started", "players", names, "mode", r.Settings.Mode, "difficulty", r.Settings.Difficulty)
	r.broadcast(EvGameStart, nil)
	r.broadcast(EvGameState, snapshotOf(r.match, r.state))
	r.schedule(r.match.TickInterval())
}

// finish 进入 GAME_OVER，等待双方再战握手
func (r *Room) finish(out game.Outcome) {
	r.stopTimer()
	r.state = StateGameOver
	for _, s := range r.seats {
		s.rematch = false
	}
	data := gameOverOf(r.match, out)
	winner := ""
	if data.Winner != nil {
		winner = *data.Winner
	}
	r.log.Infow("game over", "winner", winner, "reason", out.Reason, "turns", r.match.Turn)
	r.broadcast(EvGameOver, data)
	r.metrics.IncGamesFinished()
	r.record(out, winner)
	r.schedule(r.cfg.RematchTimeout)
}

func (r *Room) record(out game.Outcome, winner string) {
	if r.recorder == nil || r.match == nil || len(r.match.Snakes) < 2 {
		return
	}
	a, b := r.match.Snakes[0], r.match.Snakes[1]
	rec := archive.MatchRecord{
		RoomCode:   r.Code,
		Mode:       string(r.Settings.Mode),
		Difficulty: string(r.Settings.Difficulty),
		Player1:    a.Nickname,
		Player2:    b.Nickname,
		Score1:     int32(a.Score),
		Score2:     int32(b.Score),
		Alive1:     a.Alive,
		Alive2:     b.Alive,
		Winner:     winner,
		Reason:     string(out.Reason),
		Turns:      int32(r.match.Turn),
		DurationMs: time.Since(r.startedAt).Milliseconds(),
		FinishedAt: time.Now().UnixMilli(),
	}
	if err := r.recorder.Record(rec); err != nil {
		r.log.Warnw("archive match failed", "err", err)
	}
}

// teardown 销毁房间：通知剩余玩家、取消计时器、从注册表摘除
func (r *Room) teardown(reason string) {
	if r.closed {
		return
	}
	r.closed = true
	r.stopTimer()
	for _, s := range r.seats {
		r.sendTo(s, EvRoomLeft, nil)
	}
	r.seats = nil
	r.log.Infow("room closed", "reason", reason)
	r.metrics.IncRoomsClosed()
	if r.onClose != nil {
		r.onClose(r)
	}
	r.publish()
	close(r.done)
}

func (r *Room) seatIndex(id string) int {
	for i, s := range r.seats {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) removeSeat(idx int) {
	r.seats = append(r.seats[:idx], r.seats[idx+1:]...)
}

// broadcast 将事件发给房间内所有玩家
func (r *Room) broadcast(event string, data any) {
	for _, s := range r.seats {
		r.sendTo(s, event, data)
	}
}

func (r *Room) sendTo(s *seat, event string, data any) {
	if s.Sink != nil {
		s.Sink.Send(event, data)
	}
}

// publish 刷新供外部读取的房间概要
func (r *Room) publish() {
	info := RoomInfo{
		Code:       r.Code,
		State:      r.state,
		Mode:       r.Settings.Mode,
		Difficulty: r.Settings.Difficulty,
		Players:    playersOf(r.seats),
	}
	if r.match != nil {
		info.Turn = r.match.Turn
	}
	r.infoMu.Lock()
	r.info = info
	r.infoMu.Unlock()
}
