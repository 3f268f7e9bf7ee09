package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	headerMarker    = "conference"
	headerScanDepth = 10
	legacyHeaderRow = 5
)

var skippedSheetMarkers = []string{"tutorial", "readme"}

// Workbook is the parsed content of a staff workbook: rows keyed by sheet
// name, and the sheet names in workbook order.
type Workbook struct {
	Sheets []string
	Rows   map[string][]CoachRow
}

// All returns every row, sheet by sheet in workbook order.
func (w *Workbook) All() []CoachRow {
	total := 0
	for _, rows := range w.Rows {
		total += len(rows)
	}
	all := make([]CoachRow, 0, total)
	for _, sheet := range w.Sheets {
		all = append(all, w.Rows[sheet]...)
	}
	return all
}

// Read parses every data sheet of an xlsx workbook.
func Read(content []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("error opening Excel file: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Rows: make(map[string][]CoachRow)}
	for _, sheet := range f.GetSheetList() {
		if isSkippedSheet(sheet) {
			zap.S().Named("spreadsheet").Debugw("skipping non-data sheet", "sheet", sheet)
			continue
		}

		cells, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}

		rows := parseSheet(sheet, cells)
		zap.S().Named("spreadsheet").Infow("sheet parsed", "sheet", sheet, "rows", len(rows))

		wb.Sheets = append(wb.Sheets, sheet)
		wb.Rows[sheet] = rows
	}

	return wb, nil
}

func isSkippedSheet(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range skippedSheetMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// findHeaderRow returns the index of the first row, among the first few,
// holding a "Conference" cell. Older templates without it keep their header
// on a fixed row.
func findHeaderRow(cells [][]string) int {
	for i := 0; i < len(cells) && i < headerScanDepth; i++ {
		for _, c := range cells[i] {
			if strings.EqualFold(strings.TrimSpace(c), headerMarker) {
				return i
			}
		}
	}
	return legacyHeaderRow
}

func parseSheet(sheet string, cells [][]string) []CoachRow {
	headerIdx := findHeaderRow(cells)
	if headerIdx >= len(cells) {
		return []CoachRow{}
	}
	headers := cells[headerIdx]

	rows := make([]CoachRow, 0, len(cells)-headerIdx-1)
	for i := headerIdx + 1; i < len(cells); i++ {
		row := CoachRow{
			Division:  sheet,
			SheetName: sheet,
			SourceRow: i + 1,
		}

		empty := true
		for col, header := range headers {
			var value *string
			if col < len(cells[i]) && strings.TrimSpace(cells[i][col]) != "" {
				v := cells[i][col]
				value = &v
				empty = false
			}
			row.set(header, value)
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
