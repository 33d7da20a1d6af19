package source

import (
	"errors"

	"wynn-raid-parser/internal/ports"
)

// MemorySource реализует интерфейс DataSource для строк чата, уже находящихся в памяти.
type MemorySource struct {
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(data []byte) ports.DataSource {
	return &MemorySource{data: data}
}

// NewMemorySourceFromLines собирает источник из отдельных компонентов, по одному на строку.
func NewMemorySourceFromLines(lines ...string) ports.DataSource {
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	return &MemorySource{data: data}
}

// Fetch возвращает копию данных, чтобы вызывающий не мог изменить оригинал.
func (s *MemorySource) Fetch() ([]byte, error) {
	if s.data == nil {
		return nil, errors.New("data not set")
	}

	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)

	return dataCopy, nil
}
