package server

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"snakeduel/game"
)

// outbox 连接的发送端（非阻塞）
type outbox interface {
	Enqueue(b []byte)
}

// Session 一个客户端连接的网关会话：解析入站事件、转发给注册表/房间，
// 并作为 Sink 把房间事件写回连接
type Session struct {
	ID       string
	registry *Registry
	out      outbox
	log      *zap.SugaredLogger
}

// NewSession 为新连接创建会话
func NewSession(reg *Registry, out outbox) *Session {
	id := uuid.NewString()
	return &Session{
		ID:       id,
		registry: reg,
		out:      out,
		log:      Log.With("session", id),
	}
}

// Open 登记连接并下发 connected
func (s *Session) Open() {
	online := s.registry.Connect()
	s.log.Debugw("connected", "online", online)
	s.Send(EvConnected, ConnectedData{PlayersOnline: online})
}

// Close 连接断开后的清理（出队/判负/放弃再战由注册表与房间处理）
func (s *Session) Close() {
	s.log.Debugw("disconnected")
	s.registry.Disconnect(s.ID)
}

// Send 实现 Sink
func (s *Session) Send(event string, data any) {
	b, err := encodeEvent(event, data)
	if err != nil {
		s.log.Errorw("encode event failed", "event", event, "err", err)
		return
	}
	s.out.Enqueue(b)
}

// Dispatch 处理一条入站文本帧；错误只回给本连接
func (s *Session) Dispatch(payload []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.sendError(ErrBadMessage)
		return
	}
	if err := s.dispatch(msg); err != nil {
		var e *Error
		if !errors.As(err, &e) {
			s.log.Errorw("event failed", "event", msg.Event, "err", err)
		}
		s.sendError(err)
	}
}

func (s *Session) dispatch(msg InboundMessage) error {
	switch msg.Event {
	case EvJoinQueue:
		p, settings, err := s.decodeJoin(msg.Data)
		if err != nil {
			return err
		}
		return s.registry.JoinQueue(p, settings)

	case EvLeaveQueue:
		if s.registry.LeaveQueue(s.ID) {
			s.Send(EvQueueLeft, nil)
		}
		return nil

	case EvCreateRoom:
		p, settings, err := s.decodeJoin(msg.Data)
		if err != nil {
			return err
		}
		_, err = s.registry.CreateRoom(p, settings)
		return err

	case EvJoinRoom:
		var data JoinRoomData
		if err := decodeData(msg.Data, &data); err != nil {
			return err
		}
		nick, err := normalizeNickname(data.Nickname)
		if err != nil {
			return err
		}
		_, err = s.registry.JoinRoom(s.participant(nick), data.RoomCode)
		return err

	case EvLeaveRoom:
		if err := s.registry.LeaveRoom(s.ID); err != nil {
			return err
		}
		s.Send(EvRoomLeft, nil)
		return nil

	case EvInput:
		var data InputData
		if err := decodeData(msg.Data, &data); err != nil {
			return err
		}
		d, err := game.ParseDirection(data.Direction)
		if err != nil {
			return ErrBadMessage.withMessage(err.Error())
		}
		return s.registry.Input(s.ID, d)

	case EvRequestRematch:
		return s.registry.RequestRematch(s.ID)

	case EvDeclineRematch:
		return s.registry.DeclineRematch(s.ID)

	default:
		return ErrBadMessage.withMessage("unknown event " + msg.Event)
	}
}

func (s *Session) decodeJoin(raw json.RawMessage) (Participant, game.Settings, error) {
	var data JoinQueueData
	if err := decodeData(raw, &data); err != nil {
		return Participant{}, game.Settings{}, err
	}
	nick, err := normalizeNickname(data.Nickname)
	if err != nil {
		return Participant{}, game.Settings{}, err
	}
	settings, err := normalizeSettings(data.Settings)
	if err != nil {
		return Participant{}, game.Settings{}, err
	}
	return s.participant(nick), settings, nil
}

func (s *Session) participant(nickname string) Participant {
	return Participant{ID: s.ID, Nickname: nickname, Sink: s}
}

func (s *Session) sendError(err error) {
	s.Send(EvError, errorPayload(err))
}
