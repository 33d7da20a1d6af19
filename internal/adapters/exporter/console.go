package exporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/ports"
)

// Ширины колонок таблицы в консоли.
const (
	raidColumnWidth   = 5
	playerColumnWidth = 16
)

// ConsoleExporter реализует интерфейс Exporter для вывода рейдов таблицей в консоль.
type ConsoleExporter struct {
	out io.Writer
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter. Если w равен nil, вывод идет в stdout.
func NewConsoleExporter(w io.Writer) ports.Exporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleExporter{out: w}
}

// Export выводит список рейдов в консоль.
func (e *ConsoleExporter) Export(raids []domain.GuildRaid) error {
	var sb strings.Builder
	sb.WriteString("--- Guild Raids ---\n")
	if len(raids) == 0 {
		sb.WriteString("No guild raids found.\n")
		_, err := io.WriteString(e.out, sb.String())
		return err
	}

	header := []string{pad("Raid", raidColumnWidth)}
	for i := 1; i <= 4; i++ {
		header = append(header, pad(fmt.Sprintf("Player %d", i), playerColumnWidth))
	}
	header = append(header, "Aspects", "Emeralds", "XP", "SR")
	sb.WriteString(strings.Join(header, " | "))
	sb.WriteString("\n")

	for _, r := range raids {
		row := []string{pad(r.Type.Code(), raidColumnWidth)}
		for _, p := range r.Players {
			row = append(row, pad(p, playerColumnWidth))
		}
		row = append(row,
			fmt.Sprintf("%d", r.Aspects),
			fmt.Sprintf("%d", r.Emeralds),
			fmt.Sprintf("%d", r.XP),
			fmt.Sprintf("%d", r.SR),
		)
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Total: %d\n", len(raids))

	_, err := io.WriteString(e.out, sb.String())
	return err
}

// pad дополняет строку пробелами до ширины колонки с учетом широких символов.
// Слишком длинные строки обрезаются с многоточием.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
