package domain

import "errors"

// Error kinds surfaced by the resolve-fetch-parse pipeline. Callers branch
// with errors.Is; every failure carries exactly one of these so the web layer
// can map it to a distinct response.
var (
	// ErrUnknownStation reports a station id absent from the catalog.
	ErrUnknownStation = errors.New("unknown station")

	// ErrNoCycleAvailable reports that no probed cycle inside the lookback
	// window exists upstream.
	ErrNoCycleAvailable = errors.New("no model cycle available")

	// ErrBulletinNotFound reports a bulletin that was absent on download
	// despite a prior successful probe (a race against upstream pruning).
	ErrBulletinNotFound = errors.New("bulletin not found")

	// ErrFetchFailed reports a transport-level failure talking to NOMADS.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrMalformedBulletin reports bulletin text with no recognizable
	// parameter header or forecast-row section.
	ErrMalformedBulletin = errors.New("malformed bulletin")
)
