package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Column-name vocabularies seen across bulletin format revisions. Tokens are
// normalized (lowercased, non-alphanumerics stripped) before lookup.
var (
	hourNames = map[string]bool{"hr": true, "fhr": true, "hour": true}
	hsNames   = map[string]bool{"hs": true, "swh": true, "wvht": true, "hsig": true, "htsgw": true, "hm0": true}
	tpNames   = map[string]bool{"tp": true, "tpp": true, "tps": true, "per": true, "pp1d": true, "tm1": true}
	dirNames  = map[string]bool{"dir": true, "dp": true, "dd": true, "wvdir": true, "peakdir": true, "mdc": true, "pcdir": true}

	// stationLineRe and cycleLineRe match the redundant metadata lines in the
	// bulletin header block, e.g. "Location : 41001" / "Cycle : 20240101 12 UTC".
	stationLineRe = regexp.MustCompile(`(?i)^\s*(?:location|station|point)\s*:\s*(\S+)`)
	cycleLineRe   = regexp.MustCompile(`(?i)cycle\s*:\s*(\d{8})\s+(\d{1,2})`)
)

const (
	// headerScanLines bounds the search for the parameter-name line; the
	// header is always early in the file.
	headerScanLines = 120

	// maxSwellGroups caps detected Hs/Tp/Dir triples, matching the WW3
	// bulletin format which carries at most six swell partitions.
	maxSwellGroups = 6

	// maxBadRows is the tolerance for rows that cannot be tokenized into the
	// expected column count before the whole parse is rejected.
	maxBadRows = 8
)

// ParseBulletin converts raw bulletin text into a structured Bulletin for the
// requested station and cycle. It tolerates blank lines, variable whitespace,
// footer noise, and missing values; it fails with ErrMalformedBulletin when
// no parameter header can be located or no forecast row survives.
//
// The station/cycle named inside the text is checked against the requested
// pair; a mismatch is logged as an anomaly and the requested pair wins.
func ParseBulletin(raw string, station Station, cycle ModelCycle, logger *slog.Logger) (Bulletin, error) {
	lines := strings.Split(raw, "\n")

	headerIdx, names, err := findParameterHeader(lines)
	if err != nil {
		return Bulletin{}, err
	}

	checkMetadata(lines[:headerIdx], station, cycle, logger)

	units, unitsIdx := parseUnitsLine(lines, headerIdx, names)
	params := buildParameters(names, units)

	rows, bad := parseDataRows(lines, unitsIdx+1, len(params), logger)
	if len(rows) == 0 {
		return Bulletin{}, fmt.Errorf("%w: no forecast rows after header line %d", ErrMalformedBulletin, headerIdx+1)
	}
	if bad > maxBadRows {
		return Bulletin{}, fmt.Errorf("%w: %d rows with unexpected column count", ErrMalformedBulletin, bad)
	}

	return Bulletin{
		Station:    station,
		Cycle:      cycle,
		Parameters: params,
		Rows:       rows,
	}, nil
}

// fields splits a line on whitespace, treating the pipe column separators of
// older bulletin layouts as spaces.
func fields(line string) []string {
	return strings.Fields(strings.ReplaceAll(line, "|", " "))
}

// normalizeToken lowercases a token and strips everything but letters/digits,
// so "Hs(m)", "hs" and "HS" all compare equal.
func normalizeToken(tok string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tok) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// findParameterHeader locates the parameter-name line and returns its index
// and the column names after the forecast-hour column. The primary scan wants
// the hour column first; the fallback accepts it anywhere in the line.
func findParameterHeader(lines []string) (int, []string, error) {
	limit := min(len(lines), headerScanLines)

	for i := range limit {
		toks := fields(lines[i])
		if len(toks) < 2 {
			continue
		}
		if hourNames[normalizeToken(toks[0])] {
			return i, toks[1:], nil
		}
	}

	// Older layouts indent or decorate the hour column; accept a line that
	// contains it anywhere and treat later tokens as the parameter names.
	for i := range limit {
		toks := fields(lines[i])
		for j, tok := range toks {
			if hourNames[normalizeToken(tok)] && j+1 < len(toks) {
				return i, toks[j+1:], nil
			}
		}
	}

	return 0, nil, fmt.Errorf("%w: no parameter header line with an hour column", ErrMalformedBulletin)
}

// checkMetadata compares the bulletin's own station/cycle lines against the
// requested pair. Mismatches are anomalies, not failures: upstream metadata
// has looser guarantees than the data rows.
func checkMetadata(headerBlock []string, station Station, cycle ModelCycle, logger *slog.Logger) {
	for _, line := range headerBlock {
		if m := stationLineRe.FindStringSubmatch(line); m != nil {
			if !strings.EqualFold(m[1], station.ID) {
				logger.Warn("bulletin station metadata mismatch",
					"requested", station.ID, "declared", m[1])
			}
		}
		if m := cycleLineRe.FindStringSubmatch(line); m != nil {
			hour, _ := strconv.Atoi(m[2])
			if m[1] != cycle.YMD() || hour != cycle.Hour {
				logger.Warn("bulletin cycle metadata mismatch",
					"requested", cycle.String(), "declared", m[1]+" "+m[2]+"z")
			}
		}
	}
}

// parseUnitsLine reads the units row that follows the header, aligned to the
// same columns. If the next non-blank line already starts with a number it is
// data, and units fall back to per-name defaults. Returns the units and the
// index of the last schema line (data starts after it).
func parseUnitsLine(lines []string, headerIdx int, names []string) ([]string, int) {
	defaults := defaultUnits(names)

	for i := headerIdx + 1; i < len(lines); i++ {
		toks := fields(lines[i])
		if len(toks) == 0 || isRuleLine(lines[i]) {
			continue
		}
		if _, err := strconv.ParseFloat(toks[0], 64); err == nil {
			// Data row: no units line in this bulletin.
			return defaults, i - 1
		}

		units := toks
		// Tolerate a unit under the hour column ("-" or "h") by dropping it.
		if len(units) == len(names)+1 {
			units = units[1:]
		}
		if len(units) != len(names) {
			return defaults, i
		}
		for j, u := range units {
			if u == "-" || u == "." {
				units[j] = defaults[j]
			}
		}
		return units, i
	}
	return defaults, headerIdx
}

// isRuleLine reports decoration lines like "-----+-----" under the header.
func isRuleLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	return strings.Trim(trimmed, "-=+| ") == ""
}

// defaultUnits infers a unit for each column name when the bulletin omits or
// mangles the units line.
func defaultUnits(names []string) []string {
	units := make([]string, len(names))
	for i, name := range names {
		switch n := normalizeToken(name); {
		case hsNames[n]:
			units[i] = "m"
		case tpNames[n]:
			units[i] = "s"
		case dirNames[n]:
			units[i] = "deg"
		}
	}
	return units
}

// buildParameters pairs names with units and labels repeated swell-group
// triples. With two or more Hs/Tp/Dir triples the groups get "S1 ".."S6 "
// prefixes; a single group keeps its plain names.
func buildParameters(names, units []string) []Parameter {
	params := make([]Parameter, len(names))
	for i := range names {
		params[i] = Parameter{Name: names[i], Unit: units[i]}
	}

	triples := findSwellTriples(names)
	if len(triples) < 2 {
		return params
	}
	for g, start := range triples {
		if g >= maxSwellGroups {
			break
		}
		label := fmt.Sprintf("S%d ", g+1)
		params[start].Name = label + params[start].Name
		params[start+1].Name = label + params[start+1].Name
		params[start+2].Name = label + params[start+2].Name
	}
	return params
}

// findSwellTriples returns the start index of each consecutive Hs/Tp/Dir
// name triple.
func findSwellTriples(names []string) []int {
	var starts []int
	for i := 0; i+2 < len(names); {
		if hsNames[normalizeToken(names[i])] &&
			tpNames[normalizeToken(names[i+1])] &&
			dirNames[normalizeToken(names[i+2])] {
			starts = append(starts, i)
			i += 3
			continue
		}
		i++
	}
	return starts
}

// parseDataRows tokenizes forecast rows from startIdx on. Rows with a
// non-numeric lead-time token are footer noise and skipped silently; rows
// with the wrong column count are counted bad; lead times must strictly
// increase, regressions are dropped as logged anomalies. A token that fails
// to parse as a float marks that cell missing.
func parseDataRows(lines []string, startIdx, paramCount int, logger *slog.Logger) ([]DataRow, int) {
	var rows []DataRow
	bad := 0
	lastHour := -1

	for i := startIdx; i < len(lines); i++ {
		toks := fields(lines[i])
		if len(toks) == 0 || isRuleLine(lines[i]) || strings.HasPrefix(toks[0], "#") {
			continue
		}

		hourF, err := strconv.ParseFloat(toks[0], 64)
		if err != nil || hourF < 0 {
			continue
		}
		hour := int(hourF)

		if len(toks) != paramCount+1 {
			bad++
			continue
		}
		if hour <= lastHour {
			logger.Warn("non-increasing forecast hour, dropping row",
				"line", i+1, "hour", hour, "previous", lastHour)
			continue
		}
		lastHour = hour

		values := make([]Value, paramCount)
		for j, tok := range toks[1:] {
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				values[j] = Value{Raw: tok}
				continue
			}
			values[j] = Value{Raw: tok, Float: f, Valid: true}
		}
		rows = append(rows, DataRow{LeadHour: hour, Values: values})
	}

	return rows, bad
}
