package server

import (
	"sync"
	"testing"
	"time"
)

type sentEvent struct {
	Event string
	Data  any
}

// recordingSink 记录房间/注册表下发的事件
type recordingSink struct {
	mu     sync.Mutex
	events []sentEvent
	notify chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan struct{}, 1)}
}

func (s *recordingSink) Send(event string, data any) {
	s.mu.Lock()
	s.events = append(s.events, sentEvent{Event: event, Data: data})
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Event
	}
	return out
}

// last 返回最近一次指定事件
func (s *recordingSink) last(event string) (sentEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Event == event {
			return s.events[i], true
		}
	}
	return sentEvent{}, false
}

func (s *recordingSink) has(event string) bool {
	_, ok := s.last(event)
	return ok
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}

// waitFor 等待某个事件出现，超时则失败
func (s *recordingSink) waitFor(t *testing.T, event string) sentEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if e, ok := s.last(event); ok {
			return e
		}
		select {
		case <-s.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %q; got %v", event, s.names())
			return sentEvent{}
		}
	}
}

// indexOf 事件第一次出现的位置，没有时为 -1
func indexOf(names []string, event string) int {
	for i, n := range names {
		if n == event {
			return i
		}
	}
	return -1
}

func testRoomConfig() RoomConfig {
	return RoomConfig{
		BoardWidth:       24,
		BoardHeight:      36,
		WinTargetScore:   200,
		CountdownSeconds: 1,
		RematchTimeout:   time.Minute,
		CountdownStep:    10 * time.Millisecond,
	}
}
