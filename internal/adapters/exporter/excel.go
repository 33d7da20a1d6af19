package exporter

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/ports"
)

const raidSheetName = "Raids"

var raidSheetHeaders = []string{"Raid", "Raid Name", "Player 1", "Player 2", "Player 3", "Player 4", "Reporter", "Aspects", "Emeralds", "XP", "SR"}

// ExcelExporter сохраняет рейды в XLSX-файл.
type ExcelExporter struct {
	path string
}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter(path string) ports.Exporter {
	return &ExcelExporter{path: path}
}

// Export записывает рейды на лист "Raids", по одной строке на рейд.
func (e *ExcelExporter) Export(raids []domain.GuildRaid) (err error) {
	if e.path == "" {
		return errors.New("xlsx output path is not set")
	}

	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", closeErr)
		}
	}()

	index, err := f.NewSheet(raidSheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	for i, h := range raidSheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(raidSheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, r := range raids {
		row := []interface{}{
			r.Type.Code(), r.Type.DisplayName(),
			r.Players[0], r.Players[1], r.Players[2], r.Players[3],
			r.ReporterID.String(),
			r.Aspects, r.Emeralds, r.XP, r.SR,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(raidSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write raid %d: %w", i, err)
		}
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", e.path, err)
	}
	return nil
}
