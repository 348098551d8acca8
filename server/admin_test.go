package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"snakeduel/game"
)

func TestHandleAdminConfig(t *testing.T) {
	reg := newTestRegistry(t)
	h := HandleAdminConfig(reg)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/admin/config", strings.NewReader(`{"winTargetScore":120,"rematchTimeoutSec":5}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	cfg := reg.RoomConfig()
	if cfg.WinTargetScore != 120 || cfg.RematchTimeout != 5*time.Second || cfg.BoardWidth != 24 {
		t.Fatalf("config = %+v", cfg)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/admin/config", strings.NewReader(`{"boardWidth":3}`)))
	if rec.Code != http.StatusBadRequest || reg.RoomConfig().BoardWidth != 24 {
		t.Fatalf("invalid update accepted: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/admin/config", nil))
	var got map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["winTargetScore"] != 120 || got["rematchTimeoutSec"] != 5 {
		t.Fatalf("GET = %v", got)
	}
}

func TestHandleAdminRoomsAndMetrics(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.CreateRoom(participant("h", newRecordingSink()), game.DefaultSettings); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	HandleAdminRooms(reg)(rec, httptest.NewRequest(http.MethodGet, "/admin/rooms", nil))
	var rooms struct {
		Rooms []RoomInfo `json:"rooms"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&rooms); err != nil {
		t.Fatal(err)
	}
	if len(rooms.Rooms) != 1 || rooms.Rooms[0].State != StateWaiting || len(rooms.Rooms[0].Players) != 1 {
		t.Fatalf("rooms = %+v", rooms.Rooms)
	}

	rec = httptest.NewRecorder()
	HandleMetrics(reg)(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var m map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m["rooms"].(float64) != 1 {
		t.Fatalf("metrics = %v", m)
	}
}
