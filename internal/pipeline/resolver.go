package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
	"github.com/couchcryptid/wave-bulletin-service/internal/observability"
)

// Prober checks whether a bulletin is published upstream, without
// downloading it.
type Prober interface {
	ProbeExists(ctx context.Context, station string, cycle domain.ModelCycle) (bool, error)
}

// DefaultLookback is how many candidate cycles are probed before giving up,
// covering two full days of model runs.
const DefaultLookback = 8

// Resolver finds the newest model cycle whose bulletin is actually
// published. Publication lags the nominal cycle time by several hours, so
// the newest candidate is often absent and the walk continues backwards.
type Resolver struct {
	prober   Prober
	lookback int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewResolver creates a Resolver probing up to lookback cycles.
// Non-positive lookback falls back to DefaultLookback.
func NewResolver(prober Prober, lookback int, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Resolver{
		prober:   prober,
		lookback: lookback,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve returns the newest cycle at or before ref whose bulletin exists
// for the station. Candidates are probed newest first and the first hit
// wins. A probe transport failure aborts the walk; exhausting the window
// yields domain.ErrNoCycleAvailable.
func (r *Resolver) Resolve(ctx context.Context, station string, ref time.Time) (domain.ModelCycle, error) {
	probes := 0
	for _, cycle := range domain.CandidateCycles(ref, r.lookback) {
		probes++
		ok, err := r.prober.ProbeExists(ctx, station, cycle)
		if err != nil {
			return domain.ModelCycle{}, fmt.Errorf("resolve run for %s: %w", station, err)
		}
		if ok {
			r.metrics.ResolveProbes.Observe(float64(probes))
			r.logger.Debug("resolved model run",
				"station", station, "cycle", cycle.String(), "probes", probes)
			return cycle, nil
		}
	}

	r.metrics.ResolveFailures.Inc()
	return domain.ModelCycle{}, fmt.Errorf("%w: station %s, %d cycles before %s checked",
		domain.ErrNoCycleAvailable, station, r.lookback, ref.UTC().Format(time.RFC3339))
}
