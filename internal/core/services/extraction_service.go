package services

import (
	"log/slog"

	"github.com/google/uuid"

	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/ports"
)

// ExtractionOption - функциональная опция для настройки RaidExtractionService.
type ExtractionOption func(*RaidExtractionService)

// WithExtractionLogger устанавливает логгер для сервиса извлечения.
func WithExtractionLogger(l *slog.Logger) ExtractionOption {
	return func(s *RaidExtractionService) {
		if l != nil {
			s.log = l
		}
	}
}

// RaidExtractionService собирает GuildRaid из строки чата.
// Сервис не хранит состояние между вызовами и безопасен для одновременного использования.
type RaidExtractionService struct {
	log *slog.Logger
}

// NewExtractionService создает новый экземпляр RaidExtractionService.
func NewExtractionService(opts ...ExtractionOption) ports.ExtractionService {
	s := &RaidExtractionService{log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract проводит строку через состояния Idle → TreeWalked → LineMatched → PlayersResolved →
// TypeClassified → NumbersNormalized → Built. Любой отказ возвращается как *domain.ExtractionError.
func (s *RaidExtractionService) Extract(line *domain.StyledTextNode, reporter uuid.UUID) (domain.GuildRaid, error) {
	// Idle → TreeWalked
	aliases := BuildAliasTable(line)

	// TreeWalked → LineMatched
	plain := StripFormatting(Flatten(line))
	capture, ok := MatchRaidLine(plain)
	if !ok {
		return domain.GuildRaid{}, &domain.ExtractionError{Reason: domain.ReasonNotARaidLine, Stage: domain.StageTreeWalked}
	}
	s.log.Debug("Parsing guild raid", "line", plain, "aliases", aliases.Len())

	// LineMatched → PlayersResolved
	var players [4]string
	for i, nickname := range capture.Players {
		players[i] = aliases.Consume(nickname)
	}

	// PlayersResolved → TypeClassified
	raidType, known := domain.ClassifyRaid(capture.Raid)
	if !known {
		s.log.Warn("Failed to parse guild raid, unknown raid type", "raid", capture.Raid)
		return domain.GuildRaid{}, &domain.ExtractionError{
			Reason: domain.ReasonUnknownRaidType,
			Stage:  domain.StagePlayersResolved,
			Field:  "raid",
			Raw:    capture.Raid,
		}
	}

	// TypeClassified → NumbersNormalized
	aspects, err := NormalizeShorthand(capture.Aspects)
	if err != nil {
		return domain.GuildRaid{}, s.malformed("aspects", capture.Aspects, err)
	}
	emeralds, err := NormalizeShorthand(capture.Emeralds)
	if err != nil {
		return domain.GuildRaid{}, s.malformed("emeralds", capture.Emeralds, err)
	}
	xp, err := NormalizeShorthand(capture.XP)
	if err != nil {
		return domain.GuildRaid{}, s.malformed("xp", capture.XP, err)
	}
	sr, err := ParseOptionalInt(capture.SR, 0)
	if err != nil {
		return domain.GuildRaid{}, s.malformed("sr", capture.SR, err)
	}

	// NumbersNormalized → Built
	if reporter == uuid.Nil {
		s.log.Warn("Dropping guild raid, local player is unknown", "raid", raidType.Code())
		return domain.GuildRaid{}, &domain.ExtractionError{Reason: domain.ReasonMissingLocalPlayer, Stage: domain.StageNumbersNormalized}
	}

	raid := domain.GuildRaid{
		Type:       raidType,
		Players:    players,
		ReporterID: reporter,
		Aspects:    aspects,
		Emeralds:   emeralds,
		XP:         xp,
		SR:         sr,
	}
	s.log.Debug("Completed parsing guild raid", "raid", raid.Type.Code(), "players", raid.Players, "xp", raid.XP)
	return raid, nil
}

func (s *RaidExtractionService) malformed(field, raw string, err error) error {
	s.log.Warn("Failed to normalize guild raid number", "field", field, "raw", raw, "error", err)
	return &domain.ExtractionError{
		Reason: domain.ReasonMalformedNumber,
		Stage:  domain.StageTypeClassified,
		Field:  field,
		Raw:    raw,
		Err:    err,
	}
}
