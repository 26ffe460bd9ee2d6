package domain

import (
	"fmt"
	"time"
)

// CycleInterval is the spacing between GFS model cycles.
const CycleInterval = 6 * time.Hour

// ModelCycle identifies a single GFS run by UTC date and canonical cycle hour.
// The zero value is not a valid cycle; construct via MakeCycle or CycleAt.
type ModelCycle struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int // 0, 6, 12, or 18
}

// MakeCycle builds a ModelCycle, rejecting non-canonical hours.
func MakeCycle(year int, month time.Month, day, hour int) (ModelCycle, error) {
	if hour%6 != 0 || hour < 0 || hour > 18 {
		return ModelCycle{}, fmt.Errorf("cycle hour %d not one of 00/06/12/18", hour)
	}
	return ModelCycle{Year: year, Month: month, Day: day, Hour: hour}, nil
}

// CycleAt returns the most recent canonical cycle at or before t.
// Midnight rollback is handled by time arithmetic: 02z on the 1st maps to
// 00z on the 1st, and 23z maps to 18z the same day.
func CycleAt(t time.Time) ModelCycle {
	t = t.UTC()
	hour := (t.Hour() / 6) * 6
	return ModelCycle{Year: t.Year(), Month: t.Month(), Day: t.Day(), Hour: hour}
}

// Time returns the cycle's issue time in UTC.
func (c ModelCycle) Time() time.Time {
	return time.Date(c.Year, c.Month, c.Day, c.Hour, 0, 0, 0, time.UTC)
}

// Prev returns the preceding cycle, 6 hours earlier.
func (c ModelCycle) Prev() ModelCycle {
	return CycleAt(c.Time().Add(-CycleInterval))
}

// Before reports whether c was issued before other.
func (c ModelCycle) Before(other ModelCycle) bool {
	return c.Time().Before(other.Time())
}

// YMD returns the cycle date as "20240101", the NOMADS directory date segment.
func (c ModelCycle) YMD() string {
	return c.Time().Format("20060102")
}

// HH returns the zero-padded cycle hour, e.g. "06".
func (c ModelCycle) HH() string {
	return fmt.Sprintf("%02d", c.Hour)
}

// String renders the cycle as "20240101 12z".
func (c ModelCycle) String() string {
	return c.YMD() + " " + c.HH() + "z"
}

// Label renders the cycle for display, e.g. "2024-01-01 12:00 UTC".
func (c ModelCycle) Label() string {
	return c.Time().Format("2006-01-02 15:04 UTC")
}

// CandidateCycles returns the n most recent cycles at or before ref,
// newest first. This is the probe order for run resolution.
func CandidateCycles(ref time.Time, n int) []ModelCycle {
	out := make([]ModelCycle, 0, n)
	c := CycleAt(ref)
	for range n {
		out = append(out, c)
		c = c.Prev()
	}
	return out
}
