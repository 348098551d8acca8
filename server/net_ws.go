package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 写超时
	writeWait = 10 * time.Second
	// 读超时，收到 pong 后顺延
	pongWait = 60 * time.Second
	// 发送 ping 的周期，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
	// 入站消息大小上限
	maxMessageSize = 4096
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	mu   sync.Mutex
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃；连接关闭后忽略）
func (c *ClientConn) Enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.send == nil {
		return
	}
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃消息（防止阻塞房间协程）
		Log.Warnw("send queue full, dropping message", "remote", c.ws.RemoteAddr().String())
	}
}

// Close 关闭发送队列，写协程随后关闭底层连接
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump(send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端事件并交给会话处理；退出即视为断线
func (c *ClientConn) readPump(sess *Session) {
	defer func() {
		sess.Close()
		c.Close()
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.log.Infow("read error", "err", err)
			}
			return
		}
		sess.Dispatch(payload)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 移动端客户端不带固定 Origin，允许所有来源
		return true
	},
}

// HandleWS WebSocket 接入：每个连接一个会话
func HandleWS(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Log.Warnw("upgrade error", "err", err)
			return
		}

		client := NewClientConn(ws)
		sess := NewSession(reg, client)
		sess.log.Infow("client connected", "remote", r.RemoteAddr)

		go client.writePump(client.send)
		sess.Open()
		go client.readPump(sess)
	}
}
