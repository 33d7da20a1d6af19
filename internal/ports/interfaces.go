package ports

import (
	"context"

	"github.com/google/uuid"

	"wynn-raid-parser/internal/domain"
)

// DataSource определяет интерфейс для получения исходных данных.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для разбора одной строки чата в дерево фрагментов.
type Parser interface {
	Parse(data []byte) (*domain.StyledTextNode, error)
}

// ExtractionService извлекает событие о рейде из одной строки чата.
// Реализация не должна изменять переданное дерево.
type ExtractionService interface {
	Extract(line *domain.StyledTextNode, reporter uuid.UUID) (domain.GuildRaid, error)
}

// ProfileLookup разрешает имя игрока в его UUID.
type ProfileLookup interface {
	LookupUUID(ctx context.Context, username string) (uuid.UUID, error)
}

// ReporterResolver возвращает идентификатор локального наблюдателя.
type ReporterResolver interface {
	Reporter(ctx context.Context) (uuid.UUID, error)
}

// Exporter определяет интерфейс для вывода результата.
type Exporter interface {
	// Export принимает список рейдов и выводит их.
	Export(raids []domain.GuildRaid) error
}
