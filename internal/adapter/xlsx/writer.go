// Package xlsx serializes rendered forecast tables into Excel workbooks.
package xlsx

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
)

const sheetName = "Forecast"

// Writer turns a rendered table into a single-sheet .xlsx workbook. The
// metadata row is merged across the table width and header rows are bold,
// everything else mirrors the table cell for cell.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteTable writes the workbook to w.
func (*Writer) WriteTable(w io.Writer, table domain.RenderedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	width := tableWidth(table)

	for i, row := range table.Rows {
		anchor, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheetName, anchor, rowValues(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := styleRows(f, table, width); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// rowValues converts table cells to sheet values. Numeric data cells become
// numbers so spreadsheet sorting and charting work; missing values stay
// empty strings.
func rowValues(row domain.Row) *[]interface{} {
	values := make([]interface{}, len(row.Cells))
	for i, cell := range row.Cells {
		if row.Kind == domain.RowData && cell != "" {
			if n, err := strconv.ParseFloat(cell, 64); err == nil {
				values[i] = n
				continue
			}
		}
		values[i] = cell
	}
	return &values
}

func styleRows(f *excelize.File, table domain.RenderedTable, width int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, row := range table.Rows {
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(max(width, 1), i+1)
		if err != nil {
			return err
		}

		switch row.Kind {
		case domain.RowMetadata:
			if width > 1 {
				if err := f.MergeCell(sheetName, start, end); err != nil {
					return fmt.Errorf("merge metadata row: %w", err)
				}
			}
			if err := f.SetCellStyle(sheetName, start, end, bold); err != nil {
				return err
			}
		case domain.RowHeaderNames, domain.RowHeaderUnits:
			if err := f.SetCellStyle(sheetName, start, end, bold); err != nil {
				return err
			}
		}
	}
	return nil
}

func tableWidth(table domain.RenderedTable) int {
	width := 0
	for _, row := range table.Rows {
		if len(row.Cells) > width {
			width = len(row.Cells)
		}
	}
	return width
}
