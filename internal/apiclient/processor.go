package apiclient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/server/usecase"
)

// remoteError переносит отказ сервера с сохранением причины для domain.ReasonOf.
type remoteError struct {
	reason domain.FailureReason
	msg    string
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() error { return e.reason.Err() }

// ProcessLine отправляет строку на сервер и приводит ответ к виду локальной обработки.
// В LineHash возвращается идентификатор записи на сервере, поэтому дубликаты совпадают.
func (c *ServerClient) ProcessLine(ctx context.Context, data []byte, reporterOverride uuid.UUID) (usecase.LineResult, error) {
	resp, err := c.SubmitLine(ctx, data, reporterOverride)
	if err != nil {
		return usecase.LineResult{}, err
	}

	switch resp.Status {
	case "recorded", "duplicate":
		if resp.Raid == nil {
			return usecase.LineResult{}, fmt.Errorf("server response %q has no raid", resp.Status)
		}
		return usecase.LineResult{Raid: *resp.Raid, LineHash: resp.ID}, nil
	case "ignored":
		return usecase.LineResult{}, &domain.ExtractionError{Reason: domain.ReasonNotARaidLine}
	}

	reason := domain.ParseFailureReason(resp.Reason)
	if reason == domain.ReasonNone {
		return usecase.LineResult{}, fmt.Errorf("%w: %s", usecase.ErrInvalidLine, resp.Error)
	}
	return usecase.LineResult{}, &remoteError{reason: reason, msg: resp.Error}
}
