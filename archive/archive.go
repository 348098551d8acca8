// Package archive 将结束的对局以 parquet 批文件形式落盘，供离线统计与排行榜回放使用。
//
// 写入先落到 outDir/tmp/ 下的临时文件，攒满 flushEvery 局或 Close 时才移动到 outDir，
// 读取方只会看到完整的文件。
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// MatchRecord 一局已结束对局的结果
type MatchRecord struct {
	RoomCode   string `parquet:"room_code,dict"`
	Mode       string `parquet:"mode,dict"`
	Difficulty string `parquet:"difficulty,dict"`
	Player1    string `parquet:"player1"`
	Player2    string `parquet:"player2"`
	Score1     int32  `parquet:"score1"`
	Score2     int32  `parquet:"score2"`
	Alive1     bool   `parquet:"alive1"`
	Alive2     bool   `parquet:"alive2"`
	Winner     string `parquet:"winner"` // 平局为空
	Reason     string `parquet:"reason,dict"`
	Turns      int32  `parquet:"turns"`
	DurationMs int64  `parquet:"duration_ms"`
	FinishedAt int64  `parquet:"finished_at"` // unix 毫秒
}

// Writer 线程安全的 parquet 批量写入器
type Writer struct {
	mu         sync.Mutex
	outDir     string
	tmpDir     string
	flushEvery int

	file    *os.File
	writer  *parquet.GenericWriter[MatchRecord]
	tmpPath string
	outPath string
	rows    int
	seq     int
}

// NewWriter 创建写入器；flushEvery 为每个文件的最大局数
func NewWriter(outDir string, flushEvery int) (*Writer, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	if flushEvery <= 0 {
		flushEvery = 100
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}
	return &Writer{outDir: absOut, tmpDir: tmpDir, flushEvery: flushEvery}, nil
}

// Record 追加一局；攒满后自动滚动到新文件
func (w *Writer) Record(rec MatchRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		if err := w.open(); err != nil {
			return err
		}
	}
	if _, err := w.writer.Write([]MatchRecord{rec}); err != nil {
		return fmt.Errorf("write match record: %w", err)
	}
	w.rows++
	if w.rows >= w.flushEvery {
		_, err := w.finalize()
		return err
	}
	return nil
}

// Flush 立即封存当前文件，返回最终路径（无数据时为空）
func (w *Writer) Flush() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finalize()
}

// Close 封存剩余数据
func (w *Writer) Close() error {
	_, err := w.Flush()
	return err
}

func (w *Writer) open() error {
	w.seq++
	name := fmt.Sprintf("matches_%d_%04d.parquet", time.Now().UnixNano(), w.seq)
	w.tmpPath = filepath.Join(w.tmpDir, name)
	w.outPath = filepath.Join(w.outDir, name)

	f, err := os.OpenFile(w.tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open tmp parquet: %w", err)
	}
	w.file = f
	w.writer = parquet.NewGenericWriter[MatchRecord](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.writer.SetKeyValueMetadata("schema", "match_record_v1")
	w.rows = 0
	return nil
}

func (w *Writer) finalize() (string, error) {
	if w.writer == nil && w.file == nil {
		return "", nil
	}
	rows := w.rows
	outPath := w.outPath

	var closeErr error
	if w.writer != nil {
		closeErr = w.writer.Close()
		w.writer = nil
	}
	var fileErr error
	if w.file != nil {
		_ = w.file.Sync()
		fileErr = w.file.Close()
		w.file = nil
	}
	w.rows = 0
	if closeErr != nil {
		return "", fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", fmt.Errorf("close parquet file: %w", fileErr)
	}
	if rows == 0 {
		_ = os.Remove(w.tmpPath)
		return "", nil
	}
	if err := os.Rename(w.tmpPath, outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return outPath, nil
}

// ReadFile 读取一个已封存的文件，主要用于测试与离线工具
func ReadFile(path string) ([]MatchRecord, error) {
	rows, err := parquet.ReadFile[MatchRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}
