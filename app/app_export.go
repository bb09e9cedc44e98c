package app

import (
	"fmt"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Results"

// ExportToExcel writes the current filtered and sorted view (visible columns
// only) to an .xlsx file chosen via a save dialog. Hidden columns and rows
// excluded by the active filters are not exported.
func (a *App) ExportToExcel(req ExportRequest) (*ExportResult, error) {
	if a == nil || a.ctx == nil {
		return nil, fmt.Errorf("app context not initialised")
	}

	columns, rows := a.viewRows(req.Sort)
	if len(columns) == 0 {
		return nil, fmt.Errorf("no visible columns to export")
	}

	defaultName := strings.TrimSpace(req.DefaultFilename)
	if defaultName == "" {
		defaultName = "sweep-results.xlsx"
	}
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export Results",
		DefaultFilename: defaultName,
		Filters:         []runtime.FileFilter{{DisplayName: "Excel Workbook", Pattern: "*.xlsx"}},
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		// user cancelled
		return &ExportResult{Cancelled: true}, nil
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path = path + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cells := make([]interface{}, len(columns))
		for j, col := range columns {
			v, _ := row.Cell(col)
			cells[j] = v
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheetName, cellRef, &cells); err != nil {
			return nil, err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	a.Log("info", fmt.Sprintf("Exported %d rows to %s", len(rows), path))
	return &ExportResult{RowsExported: len(rows), Path: path}, nil
}
