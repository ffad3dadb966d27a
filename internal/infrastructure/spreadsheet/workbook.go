// Package spreadsheet writes export files as XLSX workbooks.
package spreadsheet

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/roofing-ops/internal/application/export"
)

const sheetName = "Sage Export"

var headers = []string{
	"Batch", "Warehouse", "Item", "Qty", "UOM", "Description",
	"Job", "Lot", "Cost Code", "Kitting Type", "Kitted On", "Kit Date", "Acct Date",
}

var _ export.WorkbookWriter = (*ExcelWriter)(nil)

// ExcelWriter implements export.WorkbookWriter with excelize.
type ExcelWriter struct{}

// NewExcelWriter builds the writer.
func NewExcelWriter() *ExcelWriter { return &ExcelWriter{} }

// Write renders one header row plus one row per line and returns the XLSX bytes.
func (w *ExcelWriter) Write(_ context.Context, h export.Header, lines []export.Line) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(headers))
	for i, v := range headers {
		header[i] = v
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	kit := h.KitDate.Format("2006-01-02")
	acct := h.AcctDate.Format("2006-01-02")
	for i, l := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			h.Batch, l.Warehouse, l.ItemCode, l.Quantity, l.UOM, l.Description,
			l.JobNumber, l.LotNumber, l.CostCode, l.KittingType, l.KittedOn.Format("2006-01-02 15:04"), kit, acct,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheetName, "A", lastCol, 15); err != nil {
		return nil, fmt.Errorf("set widths: %w", err)
	}
	if err := f.SetColWidth(sheetName, "F", "F", 40); err != nil {
		return nil, fmt.Errorf("set widths: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
