package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"wynn-raid-parser/internal/cache"
	"wynn-raid-parser/internal/core/services"
	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/ports"
)

var (
	// ErrInvalidLine возвращается, если входные данные не являются компонентом чата.
	ErrInvalidLine = errors.New("invalid chat line")
	// ErrLineTooLarge возвращается для строк больше допустимого размера.
	ErrLineTooLarge = errors.New("chat line too large")
)

// LineResult - результат обработки одной строки чата.
type LineResult struct {
	Raid domain.GuildRaid
	// LineHash идентифицирует строку вместе с наблюдателем для подавления дубликатов.
	LineHash string
}

// ProcessLineUseCase инкапсулирует бизнес-логику обработки одной строки чата:
// разбор компонента, определение наблюдателя и извлечение рейда.
type ProcessLineUseCase struct {
	parser       ports.Parser
	extractor    ports.ExtractionService
	reporter     ports.ReporterResolver
	maxLineBytes int64
	log          *slog.Logger
}

// Option определяет функциональную опцию для ProcessLineUseCase.
type Option func(*ProcessLineUseCase)

// WithLogger устанавливает логгер.
func WithLogger(l *slog.Logger) Option {
	return func(uc *ProcessLineUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithMaxLineBytes ограничивает размер входной строки. 0 снимает ограничение.
func WithMaxLineBytes(n int64) Option {
	return func(uc *ProcessLineUseCase) {
		uc.maxLineBytes = n
	}
}

// NewProcessLineUseCase создает новый экземпляр ProcessLineUseCase.
func NewProcessLineUseCase(
	parser ports.Parser,
	extractor ports.ExtractionService,
	reporter ports.ReporterResolver,
	opts ...Option,
) *ProcessLineUseCase {
	uc := &ProcessLineUseCase{
		parser:    parser,
		extractor: extractor,
		reporter:  reporter,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessLine обрабатывает JSON одной строки чата. Ненулевой reporterOverride имеет приоритет
// над настроенным наблюдателем. Ошибки извлечения возвращаются без изменений,
// их причина определяется через domain.ReasonOf.
func (uc *ProcessLineUseCase) ProcessLine(ctx context.Context, data []byte, reporterOverride uuid.UUID) (LineResult, error) {
	if uc.maxLineBytes > 0 && int64(len(data)) > uc.maxLineBytes {
		return LineResult{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrLineTooLarge, len(data), uc.maxLineBytes)
	}

	node, err := uc.parser.Parse(data)
	if err != nil {
		return LineResult{}, fmt.Errorf("%w: %w", ErrInvalidLine, err)
	}

	// Наблюдатель нужен только для строки о рейде, обычный чат не должен ходить в сеть.
	plain := services.StripFormatting(services.Flatten(node))
	if _, ok := services.MatchRaidLine(plain); !ok {
		uc.log.DebugContext(ctx, "Skipping ordinary chat line")
		return LineResult{}, &domain.ExtractionError{Reason: domain.ReasonNotARaidLine, Stage: domain.StageTreeWalked}
	}

	reporter := reporterOverride
	if reporter == uuid.Nil && uc.reporter != nil {
		reporter, err = uc.reporter.Reporter(ctx)
		if err != nil {
			uc.log.DebugContext(ctx, "Reporter is not available", "error", err)
			reporter = uuid.Nil
		}
	}

	raid, err := uc.extractor.Extract(node, reporter)
	if err != nil {
		return LineResult{}, err
	}

	result := LineResult{
		Raid:     raid,
		LineHash: cache.LineHash(plain, reporter),
	}
	uc.log.InfoContext(ctx, "Guild raid extracted",
		"raid", raid.Type.Code(),
		"players", raid.Players,
		"reporter", reporter,
	)
	return result, nil
}
