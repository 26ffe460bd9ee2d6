// Package pipeline wires run resolution, download, parsing, and table
// formatting into the request flow behind the HTTP handlers.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/wave-bulletin-service/internal/catalog"
	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
	"github.com/couchcryptid/wave-bulletin-service/internal/observability"
)

// Fetcher is the upstream bulletin source used by the service.
type Fetcher interface {
	Prober
	Fetch(ctx context.Context, station string, cycle domain.ModelCycle) (string, error)
}

// Service builds forecast tables for stations.
type Service struct {
	catalog  *catalog.Catalog
	fetcher  Fetcher
	resolver *Resolver
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates the table-building service.
func New(cat *catalog.Catalog, fetcher Fetcher, resolver *Resolver, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		catalog:  cat,
		fetcher:  fetcher,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
	}
}

// Stations lists every known station sorted by id.
func (s *Service) Stations() []domain.Station {
	return s.catalog.All()
}

// BuildTable produces the rendered forecast table for the station using the
// newest bulletin published at or before ref. It returns the cycle the
// table was built from alongside the table.
func (s *Service) BuildTable(ctx context.Context, stationID string, ref time.Time) (domain.RenderedTable, domain.ModelCycle, error) {
	station, ok := s.catalog.Lookup(stationID)
	if !ok {
		return domain.RenderedTable{}, domain.ModelCycle{}, fmt.Errorf("%w: %q", domain.ErrUnknownStation, stationID)
	}

	cycle, err := s.resolver.Resolve(ctx, station.ID, ref)
	if err != nil {
		return domain.RenderedTable{}, domain.ModelCycle{}, err
	}

	text, err := s.fetcher.Fetch(ctx, station.ID, cycle)
	if err != nil {
		return domain.RenderedTable{}, domain.ModelCycle{}, err
	}

	bulletin, err := domain.ParseBulletin(text, station, cycle, s.logger)
	if err != nil {
		s.metrics.ParseErrors.Inc()
		return domain.RenderedTable{}, domain.ModelCycle{}, err
	}

	table := domain.FormatTable(bulletin)
	s.metrics.TablesRendered.Inc()
	s.logger.Info("forecast table built",
		"station", station.ID, "cycle", cycle.String(),
		"parameters", len(bulletin.Parameters), "rows", len(bulletin.Rows))

	return table, cycle, nil
}
