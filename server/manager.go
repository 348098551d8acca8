package server

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"snakeduel/game"
)

// Registry 管理所有房间、匹配队列以及"连接 → 房间"的归属。
// 一个连接同一时刻最多属于一个房间或排在队列中。
// 锁只在房间边界事件上持有，且持锁期间不会等待房间协程。
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	members map[string]*Room // 连接 ID → 房间
	queue   Queue
	online  int
	rng     *rand.Rand

	cfgMu    sync.RWMutex
	roomCfg  RoomConfig
	metrics  *Metrics
	recorder MatchRecorder
}

// NewRegistry 创建注册表；recorder 可以为 nil
func NewRegistry(cfg RoomConfig, recorder MatchRecorder) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		members:  make(map[string]*Room),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		roomCfg:  cfg,
		metrics:  &Metrics{},
		recorder: recorder,
	}
}

// Metrics 进程级指标
func (g *Registry) Metrics() *Metrics { return g.metrics }

// RoomConfig 当前用于新房间的配置
func (g *Registry) RoomConfig() RoomConfig {
	g.cfgMu.RLock()
	defer g.cfgMu.RUnlock()
	return g.roomCfg
}

// SetRoomConfig 热更新新房间的配置，已开局的房间不受影响
func (g *Registry) SetRoomConfig(cfg RoomConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfgMu.Lock()
	g.roomCfg = cfg
	g.cfgMu.Unlock()
	return nil
}

// Connect 登记一个新连接，返回在线人数
func (g *Registry) Connect() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.online++
	return g.online
}

// Disconnect 连接断开：出队，或通知所在房间
func (g *Registry) Disconnect(id string) {
	g.mu.Lock()
	g.online--
	g.queue.Remove(id)
	room := g.members[id]
	delete(g.members, id)
	g.mu.Unlock()

	if room != nil {
		room.Disconnect(id)
	}
}

// JoinQueue 加入快速匹配；凑齐两名设置相同的玩家即建房
func (g *Registry) JoinQueue(p Participant, settings game.Settings) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.members[p.ID] != nil {
		return ErrAlreadyInRoom
	}
	if g.queue.Contains(p.ID) {
		return ErrAlreadyQueued
	}
	pos := g.queue.Push(QueueEntry{Participant: p, Settings: settings, EnqueuedAt: time.Now()})
	// 先确认入队，再可能收到 match_found
	p.Sink.Send(EvQueueJoined, QueueJoinedData{Position: pos, PlayersOnline: g.online})
	Log.Infow("queue joined", "nickname", p.Nickname, "mode", settings.Mode, "difficulty", settings.Difficulty, "position", pos)

	a, b, ok := g.queue.Pair()
	if !ok {
		return nil
	}
	code, err := g.newCodeLocked()
	if err != nil {
		// 放回队首，等有房间码时再配对
		g.queue.PushFront(a, b)
		return err
	}
	room := newMatchedRoom(code, a.Settings, g.RoomConfig(), g.deps(), a.Participant, b.Participant)
	g.rooms[code] = room
	g.members[a.ID] = room
	g.members[b.ID] = room
	g.metrics.IncMatchesMade()
	Log.Infow("match found", "room", code, "players", []string{a.Nickname, b.Nickname},
		"waited", time.Since(a.EnqueuedAt).Round(time.Millisecond))
	room.Start()
	return nil
}

// LeaveQueue 退出排队；已匹配或未排队时返回 false
func (g *Registry) LeaveQueue(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queue.Remove(id)
}

// CreateRoom 创建私人房间并分配四位房间码
func (g *Registry) CreateRoom(p Participant, settings game.Settings) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkFreeLocked(p.ID); err != nil {
		return nil, err
	}
	code, err := g.newCodeLocked()
	if err != nil {
		return nil, err
	}
	room := newHostedRoom(code, settings, g.RoomConfig(), g.deps(), p)
	g.rooms[code] = room
	g.members[p.ID] = room
	Log.Infow("room created", "room", code, "host", p.Nickname, "mode", settings.Mode, "difficulty", settings.Difficulty)
	room.Start()
	return room, nil
}

// JoinRoom 通过房间码加入；失败时连接的归属保持不变
func (g *Registry) JoinRoom(p Participant, code string) (*Room, error) {
	g.mu.Lock()
	if err := g.checkFreeLocked(p.ID); err != nil {
		g.mu.Unlock()
		return nil, err
	}
	room := g.rooms[code]
	if room == nil {
		g.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	// 先占位，避免同一连接并发加入两个房间
	g.members[p.ID] = room
	g.mu.Unlock()

	if err := room.Join(p); err != nil {
		g.mu.Lock()
		if g.members[p.ID] == room {
			delete(g.members, p.ID)
		}
		g.mu.Unlock()
		return nil, err
	}
	return room, nil
}

// LeaveRoom 主动离开当前房间
func (g *Registry) LeaveRoom(id string) error {
	g.mu.Lock()
	room := g.members[id]
	delete(g.members, id)
	g.mu.Unlock()

	if room == nil {
		return ErrNotInRoom
	}
	room.Leave(id)
	return nil
}

// RoomOf 返回连接所在房间
func (g *Registry) RoomOf(id string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room := g.members[id]
	if room == nil {
		return nil, ErrNotInRoom
	}
	return room, nil
}

// Input 转发方向输入
func (g *Registry) Input(id string, d game.Direction) error {
	room, err := g.RoomOf(id)
	if err != nil {
		return err
	}
	room.Input(id, d)
	return nil
}

// RequestRematch 转发再战请求
func (g *Registry) RequestRematch(id string) error {
	room, err := g.RoomOf(id)
	if err != nil {
		return err
	}
	room.RequestRematch(id)
	return nil
}

// DeclineRematch 转发拒绝再战
func (g *Registry) DeclineRematch(id string) error {
	room, err := g.RoomOf(id)
	if err != nil {
		return err
	}
	room.DeclineRematch(id)
	return nil
}

// Lookup 按房间码查找房间
func (g *Registry) Lookup(code string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[code]
}

// Online 在线连接数
func (g *Registry) Online() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.online
}

// QueueLen 排队人数
func (g *Registry) QueueLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queue.Len()
}

// Rooms 返回所有活跃房间的概要（按房间码排序）
func (g *Registry) Rooms() []RoomInfo {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.Unlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Shutdown 销毁所有房间并等待其协程退出
func (g *Registry) Shutdown() {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.Unlock()

	for _, r := range rooms {
		r.Close()
		<-r.Done()
	}
}

// release 由房间协程在销毁时调用，摘除房间及其成员
func (g *Registry) release(r *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rooms[r.Code] == r {
		delete(g.rooms, r.Code)
	}
	for id, room := range g.members {
		if room == r {
			delete(g.members, id)
		}
	}
}

func (g *Registry) checkFreeLocked(id string) error {
	if g.members[id] != nil {
		return ErrAlreadyInRoom
	}
	if g.queue.Contains(id) {
		return ErrAlreadyQueued
	}
	return nil
}

// newCodeLocked 生成一个当前未被占用的四位房间码
func (g *Registry) newCodeLocked() (string, error) {
	for i := 0; i < 64; i++ {
		code := fmt.Sprintf("%04d", g.rng.Intn(10000))
		if g.rooms[code] == nil {
			return code, nil
		}
	}
	// 随机多次仍冲突时顺序扫描
	for n := 0; n < 10000; n++ {
		code := fmt.Sprintf("%04d", n)
		if g.rooms[code] == nil {
			return code, nil
		}
	}
	return "", ErrInternal.withMessage("no free room codes")
}

func (g *Registry) deps() roomDeps {
	return roomDeps{
		metrics:  g.metrics,
		recorder: g.recorder,
		onClose:  g.release,
		rng:      rand.New(rand.NewSource(g.rng.Int63())),
	}
}
