package domain

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBulletin = `Location : 41001      (34.68N  72.66W)
Model    : spectral resolution for points
Cycle    : 20240101 12 UTC

  hr    Hs     Tp    Dir
   -     m      s    deg
   0    1.2    7.0   110
   3     -     7.5   112
   6    1.4    7.6   115

Polar spectrum printed for first output time
`

// Two swell groups plus a leading combined-height column.
const multiSwellBulletin = `Location : 46005
Cycle    : 20240101 06 UTC

  hr   Hst    Hs    Tp   Dir    Hs    Tp   Dir
   -    m      m     s   deg     m     s   deg
   0   2.1    1.2   7.0  110    0.8  14.2  280
   3   2.0    1.1   7.1  111    0.9  14.0  278
`

func testStation() Station {
	return Station{ID: "41001", Name: "EAST HATTERAS"}
}

func testCycle() ModelCycle {
	return ModelCycle{2024, time.January, 1, 12}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseBulletin(t *testing.T) {
	b, err := ParseBulletin(sampleBulletin, testStation(), testCycle(), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, testStation(), b.Station)
	assert.Equal(t, testCycle(), b.Cycle)

	require.Equal(t, []Parameter{{"Hs", "m"}, {"Tp", "s"}, {"Dir", "deg"}}, b.Parameters)
	require.Len(t, b.Rows, 3)

	assert.Equal(t, 0, b.Rows[0].LeadHour)
	assert.Equal(t, Value{Raw: "1.2", Float: 1.2, Valid: true}, b.Rows[0].Values[0])
	assert.Equal(t, Value{Raw: "7.0", Float: 7.0, Valid: true}, b.Rows[0].Values[1])

	// Missing marker in column 1 keeps the remaining values.
	assert.Equal(t, 3, b.Rows[1].LeadHour)
	assert.False(t, b.Rows[1].Values[0].Valid)
	assert.Equal(t, 7.5, b.Rows[1].Values[1].Float)
	assert.Equal(t, 112.0, b.Rows[1].Values[2].Float)
}

func TestParseBulletin_Idempotent(t *testing.T) {
	first, err := ParseBulletin(sampleBulletin, testStation(), testCycle(), discardLogger())
	require.NoError(t, err)
	second, err := ParseBulletin(sampleBulletin, testStation(), testCycle(), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseBulletin_SwellGroupLabels(t *testing.T) {
	station := Station{ID: "46005", Name: "WEST WASHINGTON"}
	cycle := ModelCycle{2024, time.January, 1, 6}

	b, err := ParseBulletin(multiSwellBulletin, station, cycle, discardLogger())
	require.NoError(t, err)

	names := make([]string, len(b.Parameters))
	for i, p := range b.Parameters {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Hst", "S1 Hs", "S1 Tp", "S1 Dir", "S2 Hs", "S2 Tp", "S2 Dir"}, names)

	require.Len(t, b.Rows, 2)
	assert.Equal(t, 14.2, b.Rows[0].Values[5].Float)
}

func TestParseBulletin_MissingValueColumn2Of5(t *testing.T) {
	raw := `Cycle : 20240101 12 UTC
  hr   A    B    C    D    E
   0  1.0   *   3.0  4.0  5.0
`
	b, err := ParseBulletin(raw, testStation(), testCycle(), discardLogger())
	require.NoError(t, err)
	require.Len(t, b.Rows, 1)

	vals := b.Rows[0].Values
	require.Len(t, vals, 5)
	assert.True(t, vals[0].Valid)
	assert.False(t, vals[1].Valid)
	assert.True(t, vals[2].Valid)
	assert.True(t, vals[3].Valid)
	assert.True(t, vals[4].Valid)
}

func TestParseBulletin_NoUnitsLine(t *testing.T) {
	raw := `  hr   Hs    Tp
   0   1.2   7.0
   3   1.3   7.1
`
	b, err := ParseBulletin(raw, testStation(), testCycle(), discardLogger())
	require.NoError(t, err)

	// Units inferred from the column names.
	assert.Equal(t, []Parameter{{"Hs", "m"}, {"Tp", "s"}}, b.Parameters)
	require.Len(t, b.Rows, 2)
}

func TestParseBulletin_RuleLineUnderHeader(t *testing.T) {
	raw := ` hr | Hs | Tp
-----+----+----
  0 1.2 7.0
`
	b, err := ParseBulletin(raw, testStation(), testCycle(), discardLogger())
	require.NoError(t, err)
	require.Len(t, b.Rows, 1)
	assert.Equal(t, 1.2, b.Rows[0].Values[0].Float)
}

func TestParseBulletin_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty input", ""},
		{"no header line", "some text\nwithout any table\n1.2 3.4\n"},
		{"header but no rows", "  hr   Hs   Tp\n   -    m    s\n"},
		{"header then footer only", "  hr   Hs\nend of product\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBulletin(tt.raw, testStation(), testCycle(), discardLogger())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedBulletin)
		})
	}
}

func TestParseBulletin_TooManyBadRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("  hr   Hs   Tp\n")
	sb.WriteString("   0   1.2  7.0\n")
	for i := 1; i <= maxBadRows+1; i++ {
		// Wrong column count: one trailing token too many.
		sb.WriteString("   3   1.2  7.0  9.9\n")
	}

	_, err := ParseBulletin(sb.String(), testStation(), testCycle(), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedBulletin)
}

func TestParseBulletin_NonIncreasingHoursDropped(t *testing.T) {
	raw := `  hr   Hs
   0   1.2
   3   1.3
   3   1.4
   2   1.5
   6   1.6
`
	b, err := ParseBulletin(raw, testStation(), testCycle(), discardLogger())
	require.NoError(t, err)

	hours := make([]int, len(b.Rows))
	for i, r := range b.Rows {
		hours[i] = r.LeadHour
	}
	assert.Equal(t, []int{0, 3, 6}, hours)
}

func TestParseBulletin_MetadataMismatchLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// Bulletin declares a different station and cycle than requested.
	_, err := ParseBulletin(sampleBulletin, Station{ID: "44011", Name: "GEORGES BANK"},
		ModelCycle{2024, time.January, 1, 6}, logger)
	require.NoError(t, err, "metadata mismatch must not fail the parse")

	out := buf.String()
	assert.Contains(t, out, "station metadata mismatch")
	assert.Contains(t, out, "cycle metadata mismatch")
}

func TestParseBulletin_MatchingMetadataSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := ParseBulletin(sampleBulletin, testStation(), testCycle(), logger)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "mismatch")
}
