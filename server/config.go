package server

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"snakeduel/game"
)

// LogConfig 日志输出配置
type LogConfig struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Console    bool
}

// RoomConfig 新建房间时使用的参数，可通过 /admin/config 热更新
type RoomConfig struct {
	BoardWidth       int           `json:"boardWidth"`
	BoardHeight      int           `json:"boardHeight"`
	WinTargetScore   int           `json:"winTargetScore"`
	CountdownSeconds int           `json:"countdownSeconds"`
	RematchTimeout   time.Duration `json:"-"`
	CountdownStep    time.Duration `json:"-"` // 零值表示一秒
}

// Config 进程级配置：默认值 → .env → 环境变量 → 命令行参数
type Config struct {
	Addr              string
	WSPath            string
	Log               LogConfig
	Room              RoomConfig
	ArchiveDir        string
	ArchiveFlushEvery int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Addr:   ":8080",
		WSPath: "/snakemultiplayer/ws",
		Log: LogConfig{
			File:       "app.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Room: RoomConfig{
			BoardWidth:       game.DefaultBoardWidth,
			BoardHeight:      game.DefaultBoardHeight,
			WinTargetScore:   game.DefaultWinTarget,
			CountdownSeconds: 3,
			RematchTimeout:   30 * time.Second,
		},
		ArchiveFlushEvery: 100,
	}
}

// LoadConfig 依次叠加 .env 文件、SNAKE_* 环境变量和命令行参数
func LoadConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := DefaultConfig()

	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	rematchSec := int(cfg.Room.RematchTimeout / time.Second)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	fs.StringVar(&cfg.WSPath, "ws-path", cfg.WSPath, "websocket endpoint path")
	fs.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "log file path")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Log.Console, "log-console", cfg.Log.Console, "also log to stderr")
	fs.IntVar(&cfg.Room.BoardWidth, "board-width", cfg.Room.BoardWidth, "multiplayer board width")
	fs.IntVar(&cfg.Room.BoardHeight, "board-height", cfg.Room.BoardHeight, "multiplayer board height")
	fs.IntVar(&cfg.Room.WinTargetScore, "win-score", cfg.Room.WinTargetScore, "score that wins a match")
	fs.IntVar(&cfg.Room.CountdownSeconds, "countdown", cfg.Room.CountdownSeconds, "countdown seconds before a match")
	fs.IntVar(&rematchSec, "rematch-timeout", rematchSec, "seconds to wait for a rematch after game over")
	fs.StringVar(&cfg.ArchiveDir, "archive-dir", cfg.ArchiveDir, "directory for finished-match parquet files (empty disables)")
	fs.IntVar(&cfg.ArchiveFlushEvery, "archive-flush", cfg.ArchiveFlushEvery, "matches per parquet file")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Room.RematchTimeout = time.Duration(rematchSec) * time.Second
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("SNAKE_ADDR", &c.Addr)
	// PORT 兼容常见的容器部署方式
	if p := os.Getenv("PORT"); p != "" && os.Getenv("SNAKE_ADDR") == "" {
		c.Addr = ":" + p
	}
	str("SNAKE_WS_PATH", &c.WSPath)
	str("SNAKE_LOG_FILE", &c.Log.File)
	str("SNAKE_LOG_LEVEL", &c.Log.Level)
	str("SNAKE_ARCHIVE_DIR", &c.ArchiveDir)
	if v := os.Getenv("SNAKE_LOG_CONSOLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SNAKE_LOG_CONSOLE: %w", err)
		}
		c.Log.Console = b
	}

	rematchSec := int(c.Room.RematchTimeout / time.Second)
	for key, dst := range map[string]*int{
		"SNAKE_BOARD_WIDTH":     &c.Room.BoardWidth,
		"SNAKE_BOARD_HEIGHT":    &c.Room.BoardHeight,
		"SNAKE_WIN_SCORE":       &c.Room.WinTargetScore,
		"SNAKE_COUNTDOWN":       &c.Room.CountdownSeconds,
		"SNAKE_REMATCH_TIMEOUT": &rematchSec,
		"SNAKE_ARCHIVE_FLUSH":   &c.ArchiveFlushEvery,
		"SNAKE_LOG_MAX_SIZE_MB": &c.Log.MaxSizeMB,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	c.Room.RematchTimeout = time.Duration(rematchSec) * time.Second
	return nil
}

// Validate 拒绝无意义的配置
func (c Config) Validate() error {
	if err := c.Room.Validate(); err != nil {
		return err
	}
	if c.WSPath == "" || c.WSPath[0] != '/' {
		return fmt.Errorf("ws path must start with /: %q", c.WSPath)
	}
	if c.ArchiveFlushEvery <= 0 {
		return fmt.Errorf("archive flush must be positive: %d", c.ArchiveFlushEvery)
	}
	return nil
}

// Validate 棋盘至少 8×8，目标分与倒计时为正
func (rc RoomConfig) Validate() error {
	if rc.BoardWidth < 8 || rc.BoardHeight < 8 {
		return fmt.Errorf("board too small: %dx%d", rc.BoardWidth, rc.BoardHeight)
	}
	if rc.WinTargetScore <= 0 {
		return fmt.Errorf("win target must be positive: %d", rc.WinTargetScore)
	}
	if rc.CountdownSeconds < 0 {
		return fmt.Errorf("countdown must not be negative: %d", rc.CountdownSeconds)
	}
	if rc.RematchTimeout <= 0 {
		return fmt.Errorf("rematch timeout must be positive: %v", rc.RematchTimeout)
	}
	return nil
}

func (rc RoomConfig) countdownStep() time.Duration {
	if rc.CountdownStep > 0 {
		return rc.CountdownStep
	}
	return time.Second
}

// matchConfig 将房间配置与对局设置合成为模拟参数
func (rc RoomConfig) matchConfig(s game.Settings) game.Config {
	return game.Config{
		Width:     rc.BoardWidth,
		Height:    rc.BoardHeight,
		WinTarget: rc.WinTargetScore,
		Settings:  s,
	}
}
