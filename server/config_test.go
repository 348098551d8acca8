package server

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("SNAKE_WIN_SCORE", "300")
	t.Setenv("SNAKE_COUNTDOWN", "5")
	t.Setenv("PORT", "9000")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := LoadConfig(fs, []string{"-countdown", "2", "-rematch-timeout", "10"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.Room.WinTargetScore != 300 {
		t.Errorf("win score = %d, want env value", cfg.Room.WinTargetScore)
	}
	if cfg.Room.CountdownSeconds != 2 {
		t.Errorf("countdown = %d, want flag value", cfg.Room.CountdownSeconds)
	}
	if cfg.Room.RematchTimeout != 10*time.Second {
		t.Errorf("rematch timeout = %v", cfg.Room.RematchTimeout)
	}
	if cfg.WSPath != "/snakemultiplayer/ws" || cfg.Room.BoardWidth != 24 || cfg.Room.BoardHeight != 36 {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	t.Run("bad env number", func(t *testing.T) {
		t.Setenv("SNAKE_BOARD_WIDTH", "wide")
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		if _, err := LoadConfig(fs, nil); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("board too small", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		if _, err := LoadConfig(fs, []string{"-board-width", "4"}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestErrors_MatchByCode(t *testing.T) {
	err := ErrInvalidSettings.withMessage("unknown mode")
	if !errors.Is(err, ErrInvalidSettings) || errors.Is(err, ErrRoomFull) {
		t.Fatalf("errors.Is by code failed")
	}
	if p := errorPayload(err); p.Code != CodeInvalidSettings || p.Message != "unknown mode" {
		t.Fatalf("payload = %+v", p)
	}
	if p := errorPayload(io.EOF); p.Code != CodeInternal {
		t.Fatalf("unexpected payload for plain error: %+v", p)
	}
}

func TestNormalizeNickname(t *testing.T) {
	cases := map[string]bool{
		"alice":                 true,
		"  bob  ":               true,
		"蛇蛇":                    true,
		"":                      false,
		"   ":                   false,
		"abcdefghijklmnopqrst":  true,
		"abcdefghijklmnopqrstu": false,
		"一二三四五六七八九十一二三四五六七八九十": true,
	}
	for in, ok := range cases {
		_, err := normalizeNickname(in)
		if (err == nil) != ok {
			t.Errorf("normalizeNickname(%q) err = %v, want ok=%v", in, err, ok)
		}
	}
}

func TestEncodeEvent_NilDataIsEmptyObject(t *testing.T) {
	b, err := encodeEvent(EvQueueLeft, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"event":"queue_left","data":{}}` {
		t.Fatalf("frame = %s", b)
	}
}

func TestInitLogger_WritesRotatingFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "snake.log")
	if err := InitLogger(LogConfig{File: path, Level: "debug", MaxSizeMB: 1}); err != nil {
		t.Fatal(err)
	}
	Log.Infow("room closed", "room", "0042")
	SyncLogger()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "room closed") || !strings.Contains(string(b), "0042") {
		t.Fatalf("log file = %q", b)
	}
	if err := InitLogger(LogConfig{File: path, Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
