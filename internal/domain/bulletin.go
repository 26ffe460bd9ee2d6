package domain

import "strconv"

// Station is a buoy station from the catalog, used as a lookup key.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Parameter is one forecast column: a name and its unit string. The order of
// a bulletin's parameters defines the column order of the rendered table.
type Parameter struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// Value is a single forecast cell. Raw preserves the source token so the
// rendered table shows exactly what the bulletin published ("7.0" stays
// "7.0"). Valid is false for the missing-value marker.
type Value struct {
	Raw   string  `json:"raw,omitempty"`
	Float float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Num builds a valid Value from a float, for programmatic construction.
func Num(f float64) Value {
	return Value{Raw: strconv.FormatFloat(f, 'f', -1, 64), Float: f, Valid: true}
}

// Missing is the explicit missing-value marker.
func Missing() Value {
	return Value{}
}

// DataRow is one forecast lead time with values aligned to the bulletin's
// parameter order: len(Values) always equals len(Bulletin.Parameters).
type DataRow struct {
	LeadHour int     `json:"lead_hour"`
	Values   []Value `json:"values"`
}

// Bulletin is the structured form of one station/cycle forecast product.
// Rows are strictly ascending by lead hour. Immutable once built.
type Bulletin struct {
	Station    Station     `json:"station"`
	Cycle      ModelCycle  `json:"cycle"`
	Parameters []Parameter `json:"parameters"`
	Rows       []DataRow   `json:"rows"`
}

// RowKind tags a rendered row's role in the fixed layout.
type RowKind string

const (
	RowMetadata    RowKind = "metadata"
	RowHeaderNames RowKind = "header-names"
	RowHeaderUnits RowKind = "header-units"
	RowBlank       RowKind = "blank"
	RowData        RowKind = "data"
)

// Row is one rendered table row: a kind tag plus cell strings.
type Row struct {
	Kind  RowKind  `json:"kind"`
	Cells []string `json:"cells"`
}

// RenderedTable is the medium-agnostic output consumed by the HTML and
// spreadsheet layers. It has no semantic structure beyond the tagged rows.
type RenderedTable struct {
	Rows []Row `json:"rows"`
}
