package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/conorfennell/studydeck/internal/domain"
)

// ReadSpreadsheet takes fronts from column A and backs from column B of the
// named sheet (the first sheet when empty), starting at the 1-based
// startRow (2 when zero, skipping a header). Rows missing either side are
// skipped.
func ReadSpreadsheet(path, sheet string, startRow int) ([]domain.Draft, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if startRow <= 0 {
		startRow = 2
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %q: %w", sheet, err)
	}

	var drafts []domain.Draft
	for i, row := range rows {
		if i < startRow-1 || len(row) < 2 {
			continue
		}
		front, back := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if front == "" || back == "" {
			continue
		}
		drafts = append(drafts, domain.Draft{Front: front, Back: back})
	}
	return drafts, nil
}
