package domain

import (
	"errors"
	"fmt"
)

// FailureReason - закрытая классификация причин, по которым строка не стала событием.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonNotARaidLine
	ReasonUnknownRaidType
	ReasonMalformedNumber
	ReasonMissingLocalPlayer
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotARaidLine:
		return "not_a_raid_line"
	case ReasonUnknownRaidType:
		return "unknown_raid_type"
	case ReasonMalformedNumber:
		return "malformed_number"
	case ReasonMissingLocalPlayer:
		return "missing_local_player"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

var (
	// ErrNotARaidLine - строка не является объявлением о завершении рейда. Штатная ситуация.
	ErrNotARaidLine = errors.New("not a raid completion line")
	// ErrUnknownRaidType - название рейда не входит в список известных.
	ErrUnknownRaidType = errors.New("unknown raid type")
	// ErrMalformedNumber - числовое поле не удалось нормализовать.
	ErrMalformedNumber = errors.New("malformed number")
	// ErrMissingLocalPlayer - не задан идентификатор наблюдателя.
	ErrMissingLocalPlayer = errors.New("missing local player")
)

// ParseFailureReason разбирает строковое представление причины. Неизвестная строка дает ReasonNone.
func ParseFailureReason(s string) FailureReason {
	for r := ReasonNotARaidLine; r <= ReasonMissingLocalPlayer; r++ {
		if r.String() == s {
			return r
		}
	}
	return ReasonNone
}

// Err возвращает сигнальную ошибку причины или nil для ReasonNone.
func (r FailureReason) Err() error {
	return r.sentinel()
}

func (r FailureReason) sentinel() error {
	switch r {
	case ReasonNotARaidLine:
		return ErrNotARaidLine
	case ReasonUnknownRaidType:
		return ErrUnknownRaidType
	case ReasonMalformedNumber:
		return ErrMalformedNumber
	case ReasonMissingLocalPlayer:
		return ErrMissingLocalPlayer
	}
	return nil
}

// Stage - состояние конечного автомата сборки события.
type Stage int

const (
	StageIdle Stage = iota
	StageTreeWalked
	StageLineMatched
	StagePlayersResolved
	StageTypeClassified
	StageNumbersNormalized
	StageBuilt
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageTreeWalked:
		return "tree_walked"
	case StageLineMatched:
		return "line_matched"
	case StagePlayersResolved:
		return "players_resolved"
	case StageTypeClassified:
		return "type_classified"
	case StageNumbersNormalized:
		return "numbers_normalized"
	case StageBuilt:
		return "built"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ExtractionError описывает переход автомата в состояние Failed.
// Stage - последнее успешно достигнутое состояние.
type ExtractionError struct {
	Reason FailureReason
	Stage  Stage
	Field  string
	Raw    string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := "extraction failed"
	if s := e.Reason.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" in %s", e.Field)
	}
	if e.Raw != "" {
		msg += fmt.Sprintf(": %q", e.Raw)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с сигнальной ошибкой ее причины.
func (e *ExtractionError) Is(target error) bool {
	return target != nil && target == e.Reason.sentinel()
}

// ReasonOf отображает произвольную ошибку в FailureReason.
// Для nil возвращает ReasonNone, для посторонних ошибок - тоже ReasonNone.
func ReasonOf(err error) FailureReason {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Reason
	}
	switch {
	case errors.Is(err, ErrNotARaidLine):
		return ReasonNotARaidLine
	case errors.Is(err, ErrUnknownRaidType):
		return ReasonUnknownRaidType
	case errors.Is(err, ErrMalformedNumber):
		return ReasonMalformedNumber
	case errors.Is(err, ErrMissingLocalPlayer):
		return ReasonMissingLocalPlayer
	}
	return ReasonNone
}
