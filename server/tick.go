package server

import (
	"time"
)

// Start 启动房间协程（单线程推进房间状态）
func (r *Room) Start() {
	go r.run()
}

// run 房间主循环：事件与计时器串行处理，房间销毁后退出
func (r *Room) run() {
	if r.opening != nil {
		r.opening()
		r.opening = nil
		r.publish()
	}
	for !r.closed {
		var wake <-chan time.Time
		if r.timer != nil {
			wake = r.timer.C
		}
		select {
		case ev := <-r.inbox:
			r.handle(ev)
		case <-wake:
			r.timer = nil
			r.onTimer()
		}
		r.publish()
	}
}

// onTimer 计时器到期：按状态推进倒计时、Tick 或再战超时
func (r *Room) onTimer() {
	switch r.state {
	case StateCountdown:
		r.countdown--
		if r.countdown > 0 {
			r.broadcast(EvCountdown, CountdownData{Seconds: r.countdown})
			r.schedule(r.cfg.countdownStep())
			return
		}
		r.startPlaying()
	case StatePlaying:
		r.safeTick()
	case StateGameOver:
		r.log.Infow("rematch timed out")
		r.broadcast(EvRematchDeclined, nil)
		r.teardown("rematch timeout")
	}
}

// safeTick 执行一帧；帧内崩溃无法保证一致性，直接销毁房间
func (r *Room) safeTick() {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorw("tick panicked, closing room", "panic", rec)
			r.metrics.IncTickFailures()
			r.broadcast(EvError, ErrorData{Code: CodeInternal, Message: "game aborted by a server error"})
			r.teardown("tick failure")
		}
	}()
	r.tick()
}

// tick 核心循环：消费缓冲输入 → 推进世界 → 广播结果
func (r *Room) tick() {
	start := time.Now()
	out := r.match.Tick()
	state := r.state
	if out != nil {
		state = StateGameOver
	}
	r.broadcast(EvGameState, snapshotOf(r.match, state))
	r.metrics.AddTick(time.Since(start).Nanoseconds())
	if out != nil {
		r.finish(*out)
		return
	}
	r.schedule(r.match.TickInterval())
}

// schedule 设置下一次唤醒，替换已有计时器
func (r *Room) schedule(d time.Duration) {
	r.stopTimer()
	r.timer = time.NewTimer(d)
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
