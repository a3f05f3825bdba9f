package pipeline

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestExtractFromXLSX(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Current File Name", "Suggested File Name", "Area", "Date"},
		{"01", "beach-sunset", "Vacation", "2024-06-01"},
		{"2", "city lights", "Trips", ""},
	})
	table, err := ExtractFromXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows=%d", len(table.Rows))
	}
	if table.Rows[0].Cells[0] != "01" || table.Indexes.Date != 3 {
		t.Fatalf("table bad: %+v", table)
	}
}
