package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// SanitizerHandler - обертка для slog.Handler, которая очищает текст, пришедший из чата:
// удаляет коды форматирования и экранирует управляющие символы,
// чтобы игрок не мог подделать строки журнала.
type SanitizerHandler struct {
	handler slog.Handler
}

// NewSanitizerHandler создает новый обработчик с очисткой значений
func NewSanitizerHandler(handler slog.Handler) *SanitizerHandler {
	return &SanitizerHandler{
		handler: handler,
	}
}

var formattingCodeRegex = regexp.MustCompile(`§.`)

var controlReplacer = strings.NewReplacer(
	"\r", `\r`,
	"\n", `\n`,
	"\t", `\t`,
	"\x1b", `\x1b`,
)

// sanitize удаляет коды форматирования и экранирует управляющие символы
func sanitize(text string) string {
	if strings.Contains(text, "§") {
		text = formattingCodeRegex.ReplaceAllString(text, "")
	}
	return controlReplacer.Replace(text)
}

// Enabled реализует интерфейс slog.Handler
func (h *SanitizerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *SanitizerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Атрибуты записи нельзя заменить на месте, поэтому запись собирается заново с очищенными значениями.
	r := slog.NewRecord(record.Time, record.Level, sanitize(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *SanitizerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		clean[i] = sanitizeAttr(attr)
	}
	return &SanitizerHandler{
		handler: h.handler.WithAttrs(clean),
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *SanitizerHandler) WithGroup(name string) slog.Handler {
	return &SanitizerHandler{
		handler: h.handler.WithGroup(name),
	}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: sanitizeValue(a.Value)}
}

// sanitizeValue рекурсивно очищает значения атрибутов
func sanitizeValue(value slog.Value) slog.Value {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(sanitize(value.String()))
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(sanitize(err.Error()))
		}
		if ss, ok := value.Any().([]string); ok {
			clean := make([]string, len(ss))
			for i, s := range ss {
				clean[i] = sanitize(s)
			}
			return slog.AnyValue(clean)
		}
		if arr, ok := value.Any().([4]string); ok {
			for i := range arr {
				arr[i] = sanitize(arr[i])
			}
			return slog.AnyValue(arr)
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		clean := make([]slog.Attr, len(group))
		for i, attr := range group {
			clean[i] = sanitizeAttr(attr)
		}
		return slog.GroupValue(clean...)
	default:
		return value
	}
}
