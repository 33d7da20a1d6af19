package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/ports"
)

// JSONExporter пишет каждый рейд отдельной JSON-строкой.
type JSONExporter struct {
	out io.Writer
}

// NewJSONExporter создает новый экземпляр JSONExporter. Если w равен nil, вывод идет в stdout.
func NewJSONExporter(w io.Writer) ports.Exporter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONExporter{out: w}
}

// Export кодирует рейды в формате JSON Lines.
func (e *JSONExporter) Export(raids []domain.GuildRaid) error {
	enc := json.NewEncoder(e.out)
	for i, r := range raids {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode raid %d: %w", i, err)
		}
	}
	return nil
}
