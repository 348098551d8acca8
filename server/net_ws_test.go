package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialTest(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(event string, data any) {
	c.t.Helper()
	if err := c.conn.WriteJSON(map[string]any{"event": event, "data": data}); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// readUntil 丢弃其他事件，直到读到指定事件
func (c *wsClient) readUntil(event string) wireFrame {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var f wireFrame
		if err := c.conn.ReadJSON(&f); err != nil {
			c.t.Fatalf("waiting for %q: %v", event, err)
		}
		if f.Event == event {
			return f
		}
	}
}

func TestHandleWS_QuickMatchAndForfeit(t *testing.T) {
	reg := newTestRegistry(t)
	srv := httptest.NewServer(HandleWS(reg))
	defer srv.Close()

	alice, bob := dialTest(t, srv), dialTest(t, srv)
	alice.readUntil(EvConnected)
	bob.readUntil(EvConnected)

	alice.send(EvJoinQueue, map[string]any{"nickname": "alice"})
	alice.readUntil(EvQueueJoined)
	bob.send(EvJoinQueue, map[string]any{"nickname": "bob"})

	f := alice.readUntil(EvMatchFound)
	var found RoomPlayersData
	_ = json.Unmarshal(f.Data, &found)
	if len(found.Players) != 2 || len(found.RoomCode) != 4 {
		t.Fatalf("match_found = %+v", found)
	}
	bob.readUntil(EvMatchFound)

	alice.readUntil(EvGameStart)
	f = alice.readUntil(EvGameState)
	var state GameStateData
	_ = json.Unmarshal(f.Data, &state)
	if state.State != StatePlaying || len(state.Snakes) != 2 || state.Snakes[0].Color != "#00ff88" {
		t.Fatalf("game_state = %+v", state)
	}
	alice.send(EvInput, map[string]any{"direction": "left"})

	_ = bob.conn.Close()
	alice.readUntil(EvPlayerLeft)
	f = alice.readUntil(EvGameOver)
	var over GameOverData
	_ = json.Unmarshal(f.Data, &over)
	if over.Winner == nil || *over.Winner != "alice" || over.Reason != "opponent_left" {
		t.Fatalf("game_over = %+v", over)
	}

	alice.send(EvDeclineRematch, nil)
	alice.readUntil(EvRematchDeclined)
	alice.readUntil(EvRoomLeft)
}
