package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"picorg/internal"
)

func ExportOutcomesToXLSX(outcomes []internal.RowOutcome, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"line_no", "source_name", "destination", "status", "detail"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, outcome := range outcomes {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, outcome.LineNo)
		set(2, outcome.SourceName)
		set(3, outcome.DestPath)
		set(4, string(outcome.Status))
		set(5, outcome.Detail)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
