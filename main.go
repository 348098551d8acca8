package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snakeduel/archive"
	"snakeduel/server"
)

// snakeduel 入口：启动 HTTP + WebSocket 服务，并初始化房间注册表
func main() {
	cfg, err := server.LoadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	// 对局归档是可选的；不要把 nil *Writer 放进接口
	var recorder server.MatchRecorder
	var archiver *archive.Writer
	if cfg.ArchiveDir != "" {
		archiver, err = archive.NewWriter(cfg.ArchiveDir, cfg.ArchiveFlushEvery)
		if err != nil {
			server.Log.Fatalf("archive: %v", err)
		}
		recorder = archiver
	}

	reg := server.NewRegistry(cfg.Room, recorder)

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.WSPath, server.HandleWS(reg))
	// 管理与监控接口
	mux.HandleFunc("/admin/config", server.HandleAdminConfig(reg))
	mux.HandleFunc("/admin/rooms", server.HandleAdminRooms(reg))
	mux.HandleFunc("/metrics", server.HandleMetrics(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		server.Log.Infof("snakeduel listening on %s; websocket at ws://localhost%s%s", cfg.Addr, cfg.Addr, cfg.WSPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnw("http shutdown", "err", err)
	}
	reg.Shutdown()
	if archiver != nil {
		if err := archiver.Close(); err != nil {
			server.Log.Warnw("archive close", "err", err)
		}
	}
}
