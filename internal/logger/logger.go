// Package logger は設定に応じた *slog.Logger を構築します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"fullstack-todolist/backend/internal/config"
)

// New は LogConfig に従って *slog.Logger を作成し、slog.SetDefault で既定のロガーにします。
// Format "json" は本番向けの構造化出力、"text" はソース位置付きの開発向け出力です。
// 出力先は常に os.Stderr です。
func New(cfg config.LogConfig) *slog.Logger {
	logger := NewWithWriter(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

// NewWithWriter は出力先を指定して *slog.Logger を作成します。既定のロガーは変更しません。
func NewWithWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard は何も出力しないロガーを返します (テスト用)。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel は debug/info/warn/error を slog.Level に変換します。不明な値は info です。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
