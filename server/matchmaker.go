package server

import (
	"time"

	"snakeduel/game"
)

// QueueEntry 一个等待匹配的玩家
type QueueEntry struct {
	Participant
	Settings   game.Settings
	EnqueuedAt time.Time
}

// Queue 快速匹配队列：按入队顺序，只配对设置（模式+难度）相同的玩家。
// 非并发安全，由 Registry 的锁保护。
type Queue struct {
	entries []QueueEntry
}

// Push 入队并返回从 1 开始的位置
func (q *Queue) Push(e QueueEntry) int {
	q.entries = append(q.entries, e)
	return len(q.entries)
}

// PushFront 把已取出的玩家放回队首，保持原有先后顺序
func (q *Queue) PushFront(entries ...QueueEntry) {
	q.entries = append(append([]QueueEntry(nil), entries...), q.entries...)
}

// Remove 按连接 ID 出队；不在队列中时返回 false
func (q *Queue) Remove(id string) bool {
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Contains 连接是否在排队
func (q *Queue) Contains(id string) bool {
	for _, e := range q.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Len 排队人数
func (q *Queue) Len() int { return len(q.entries) }

// Pair 取出最早的两名设置相同的玩家
func (q *Queue) Pair() (QueueEntry, QueueEntry, bool) {
	for i := 0; i < len(q.entries); i++ {
		for j := i + 1; j < len(q.entries); j++ {
			if q.entries[i].Settings != q.entries[j].Settings {
				continue
			}
			a, b := q.entries[i], q.entries[j]
			// 先删后面的，下标 i 不受影响
			q.entries = append(q.entries[:j], q.entries[j+1:]...)
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return a, b, true
		}
	}
	return QueueEntry{}, QueueEntry{}, false
}
