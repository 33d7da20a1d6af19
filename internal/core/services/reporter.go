package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/ports"
)

// ReporterResolverImpl определяет локального наблюдателя: либо по заданному UUID,
// либо по имени игрока через ProfileLookup.
type ReporterResolverImpl struct {
	fixed    uuid.UUID
	username string
	lookup   ports.ProfileLookup
}

// NewReporterResolver создает резолвер. lookup может быть nil, если задан fixed.
func NewReporterResolver(fixed uuid.UUID, username string, lookup ports.ProfileLookup) ports.ReporterResolver {
	return &ReporterResolverImpl{fixed: fixed, username: username, lookup: lookup}
}

// Reporter возвращает UUID наблюдателя или ошибку, обернутую в domain.ErrMissingLocalPlayer.
func (r *ReporterResolverImpl) Reporter(ctx context.Context) (uuid.UUID, error) {
	if r.fixed != uuid.Nil {
		return r.fixed, nil
	}
	if r.username == "" || r.lookup == nil {
		return uuid.Nil, fmt.Errorf("%w: no reporter uuid or username configured", domain.ErrMissingLocalPlayer)
	}
	id, err := r.lookup.LookupUUID(ctx, r.username)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: resolving %q: %w", domain.ErrMissingLocalPlayer, r.username, err)
	}
	return id, nil
}
