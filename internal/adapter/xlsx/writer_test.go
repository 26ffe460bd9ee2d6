package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
)

func sampleTable() domain.RenderedTable {
	return domain.RenderedTable{Rows: []domain.Row{
		{Kind: domain.RowMetadata, Cells: []string{"41001 EAST HATTERAS  GFS wave forecast  cycle 2024-01-01 12:00 UTC"}},
		{Kind: domain.RowHeaderNames, Cells: []string{"Forecast Hour", "Hs", "Tp"}},
		{Kind: domain.RowHeaderUnits, Cells: []string{"h", "m", "s"}},
		{Kind: domain.RowBlank, Cells: []string{"", "", ""}},
		{Kind: domain.RowData, Cells: []string{"0", "1.2", "7.5"}},
		{Kind: domain.RowData, Cells: []string{"3", "", "8.1"}},
	}}
}

func writeAndReopen(t *testing.T, table domain.RenderedTable) *excelize.File {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteTable(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriter_CellContents(t *testing.T) {
	f := writeAndReopen(t, sampleTable())

	meta, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Contains(t, meta, "41001")
	assert.Contains(t, meta, "2024-01-01 12:00 UTC")

	for cell, want := range map[string]string{
		"A2": "Forecast Hour",
		"B2": "Hs",
		"C2": "Tp",
		"A3": "h",
		"B3": "m",
		"A5": "0",
		"B5": "1.2",
		"C5": "7.5",
		"B6": "", // missing value stays blank
		"C6": "8.1",
	} {
		got, err := f.GetCellValue(sheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}

func TestWriter_MetadataRowMerged(t *testing.T) {
	f := writeAndReopen(t, sampleTable())

	merges, err := f.GetMergeCells(sheetName)
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "A1", merges[0].GetStartAxis())
	assert.Equal(t, "C1", merges[0].GetEndAxis())
}

func TestWriter_SheetName(t *testing.T) {
	f := writeAndReopen(t, sampleTable())

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
}

func TestWriter_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteTable(&buf, domain.RenderedTable{}))
	assert.NotZero(t, buf.Len())
}
