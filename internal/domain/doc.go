// Package domain models NOAA GFS wave forecast bulletins.
//
// # Data Source
//
// Bulletins are the per-station, per-cycle plain-text ".bull" products
// published by the GFS wave component on the NOMADS server
// (https://nomads.ncep.noaa.gov/pub/data/nccf/com/gfs/prod). The model runs
// four cycles a day at 00, 06, 12, and 18 UTC, and a cycle's bulletins appear
// on the server with a non-deterministic delay after the run completes. Old
// cycles are pruned after a retention window, so a bulletin confirmed present
// can vanish between a probe and the download.
//
// # Bulletin text conventions
//
// Header block:
//
//	"Location : 41001" and "Cycle : 20240101 12 UTC" style lines precede the
//	data table. They repeat what the caller already knows and are used only
//	for a consistency check; a mismatch is a logged anomaly, never a hard
//	failure, because upstream metadata has looser guarantees than the rows.
//
// Schema lines:
//
//	A parameter-name line whose first token is the forecast-hour column
//	("hr", "fhr", or "hour", any case), followed by a units line aligned to
//	the same columns. Repeated Hs/Tp/Dir name triples describe separate
//	swell groups and are labeled S1..S6 (capped at six, matching the WW3
//	bulletin format).
//
// Data rows:
//
//	One whitespace-delimited row per forecast lead time, ascending. A token
//	that does not parse as a number is the missing-value marker. Rows whose
//	first token is non-numeric are footer noise and skipped.
//
// # Model cycles
//
// A ModelCycle identifies one run by UTC date and canonical hour. Cycles are
// ordered, 6 hours apart, and never in the future of the reference time used
// to resolve them.
package domain
