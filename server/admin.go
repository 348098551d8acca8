package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// adminConfig /admin/config 的载荷；POST 时只更新非空字段
type adminConfig struct {
	BoardWidth        *int `json:"boardWidth,omitempty"`
	BoardHeight       *int `json:"boardHeight,omitempty"`
	WinTargetScore    *int `json:"winTargetScore,omitempty"`
	CountdownSeconds  *int `json:"countdownSeconds,omitempty"`
	RematchTimeoutSec *int `json:"rematchTimeoutSec,omitempty"`
}

// HandleAdminConfig 提供新房间配置的读取与更新（热更新基本规则）
// GET /admin/config  返回当前配置
// POST /admin/config 以 JSON 载荷更新部分字段，仅影响之后创建的房间
func HandleAdminConfig(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, adminConfigOf(reg.RoomConfig()))
		case http.MethodPost:
			var body adminConfig
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			cfg := reg.RoomConfig()
			if body.BoardWidth != nil {
				cfg.BoardWidth = *body.BoardWidth
			}
			if body.BoardHeight != nil {
				cfg.BoardHeight = *body.BoardHeight
			}
			if body.WinTargetScore != nil {
				cfg.WinTargetScore = *body.WinTargetScore
			}
			if body.CountdownSeconds != nil {
				cfg.CountdownSeconds = *body.CountdownSeconds
			}
			if body.RematchTimeoutSec != nil {
				cfg.RematchTimeout = time.Duration(*body.RematchTimeoutSec) * time.Second
			}
			if err := reg.SetRoomConfig(cfg); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			Log.Infow("config updated", "board", []int{cfg.BoardWidth, cfg.BoardHeight},
				"winTarget", cfg.WinTargetScore, "countdown", cfg.CountdownSeconds, "rematchTimeout", cfg.RematchTimeout)
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "config": adminConfigOf(cfg)})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleAdminRooms 列出当前所有房间
// GET /admin/rooms
func HandleAdminRooms(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"rooms": reg.Rooms()})
	}
}

// HandleMetrics 输出进程级运行指标
// GET /metrics
func HandleMetrics(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"online":  reg.Online(),
			"queued":  reg.QueueLen(),
			"rooms":   len(reg.Rooms()),
			"metrics": reg.Metrics().Snapshot(),
		})
	}
}

func adminConfigOf(cfg RoomConfig) adminConfig {
	rematch := int(cfg.RematchTimeout / time.Second)
	return adminConfig{
		BoardWidth:        &cfg.BoardWidth,
		BoardHeight:       &cfg.BoardHeight,
		WinTargetScore:    &cfg.WinTargetScore,
		CountdownSeconds:  &cfg.CountdownSeconds,
		RematchTimeoutSec: &rematch,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
