// Package log собирает slog.Logger приложения по настройкам logging.
package log

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel переводит строковый уровень из конфигурации в slog.Level. Неизвестное значение дает Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// New создает логгер с очисткой чатового текста. format: "json" или "text".
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(NewSanitizerHandler(handler))
}
