package server

import (
	"sync/atomic"
)

// Metrics 记录进程运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount      int64 // 所有房间累计 Tick 次数
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
	InputsAccepted int64 // 进入缓冲的方向输入
	InputsIgnored  int64 // 非 PLAYING 状态下被忽略的输入
	InputsDropped  int64 // 因房间收件箱满被丢弃的输入
	RoomsCreated   int64
	RoomsClosed    int64
	MatchesMade    int64 // 快速匹配成功次数
	GamesFinished  int64
	TickFailures   int64 // Tick 崩溃导致的房间销毁
}

func (m *Metrics) IncAccepted()      { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *Metrics) IncIgnored()       { atomic.AddInt64(&m.InputsIgnored, 1) }
func (m *Metrics) IncDropped()       { atomic.AddInt64(&m.InputsDropped, 1) }
func (m *Metrics) IncRoomsCreated()  { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *Metrics) IncRoomsClosed()   { atomic.AddInt64(&m.RoomsClosed, 1) }
func (m *Metrics) IncMatchesMade()   { atomic.AddInt64(&m.MatchesMade, 1) }
func (m *Metrics) IncGamesFinished() { atomic.AddInt64(&m.GamesFinished, 1) }
func (m *Metrics) IncTickFailures()  { atomic.AddInt64(&m.TickFailures, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"avg_tick_ms":     avgMs,
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"inputs_ignored":  atomic.LoadInt64(&m.InputsIgnored),
		"inputs_dropped":  atomic.LoadInt64(&m.InputsDropped),
		"rooms_created":   atomic.LoadInt64(&m.RoomsCreated),
		"rooms_closed":    atomic.LoadInt64(&m.RoomsClosed),
		"matches_made":    atomic.LoadInt64(&m.MatchesMade),
		"games_finished":  atomic.LoadInt64(&m.GamesFinished),
		"tick_failures":   atomic.LoadInt64(&m.TickFailures),
	}
}
