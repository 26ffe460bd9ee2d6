package domain

import "fmt"

// Labels for the synthetic lead-time column.
const (
	leadTimeHeader = "Forecast Hour"
	leadTimeUnit   = "h"
)

// FormatTable assembles a Bulletin into the fixed presentation layout:
// one metadata row, parameter-name and units header rows, one blank
// separator row, then one data row per forecast lead time. Pure function;
// a schema-consistent Bulletin always formats successfully.
func FormatTable(b Bulletin) RenderedTable {
	width := len(b.Parameters) + 1
	rows := make([]Row, 0, len(b.Rows)+4)

	meta := fmt.Sprintf("%s %s  GFS wave forecast  cycle %s", b.Station.ID, b.Station.Name, b.Cycle.Label())
	rows = append(rows, Row{Kind: RowMetadata, Cells: []string{meta}})

	names := make([]string, width)
	units := make([]string, width)
	names[0] = leadTimeHeader
	units[0] = leadTimeUnit
	for i, p := range b.Parameters {
		names[i+1] = p.Name
		units[i+1] = p.Unit
	}
	rows = append(rows,
		Row{Kind: RowHeaderNames, Cells: names},
		Row{Kind: RowHeaderUnits, Cells: units},
		Row{Kind: RowBlank, Cells: make([]string, width)},
	)

	for _, dr := range b.Rows {
		cells := make([]string, width)
		cells[0] = fmt.Sprintf("%d", dr.LeadHour)
		for i, v := range dr.Values {
			cells[i+1] = formatValue(v)
		}
		rows = append(rows, Row{Kind: RowData, Cells: cells})
	}

	return RenderedTable{Rows: rows}
}

// formatValue renders a cell. Missing values are empty, never "0" or "N/A".
// The source token is preserved so "7.0" does not collapse to "7".
func formatValue(v Value) string {
	if !v.Valid {
		return ""
	}
	if v.Raw != "" {
		return v.Raw
	}
	return fmt.Sprintf("%g", v.Float)
}
