// Package seatsvc serves the seat management summary for the dashboard.
package seatsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ncecere/copilot_usage_dashboard/internal/cache"
	"github.com/ncecere/copilot_usage_dashboard/internal/observability"
	"github.com/ncecere/copilot_usage_dashboard/internal/seats"
	"github.com/ncecere/copilot_usage_dashboard/internal/source"
	"github.com/ncecere/copilot_usage_dashboard/internal/timeutil"
)

// Service fetches seat snapshots and summarizes them.
type Service struct {
	source     source.SeatsSource
	sourceName string
	cache      *cache.ResponseCache
	obs        *observability.Provider
	now        func() time.Time

	scope        source.Scope
	enterprise   string
	organization string
}

// Options wires the service dependencies. Cache, Observability, and Now may
// be nil.
type Options struct {
	Source        source.SeatsSource
	SourceName    string
	Cache         *cache.ResponseCache
	Observability *observability.Provider
	Scope         source.Scope
	Enterprise    string
	Organization  string
	Now           func() time.Time
}

func NewService(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		source:       opts.Source,
		sourceName:   opts.SourceName,
		cache:        opts.Cache,
		obs:          opts.Observability,
		now:          now,
		scope:        opts.Scope,
		enterprise:   opts.Enterprise,
		organization: opts.Organization,
	}
}

// Summary is the seat management document plus the derived adoption rate.
type Summary struct {
	seats.ManagementSummary
	AdoptionRate float64 `json:"adoption_rate"`
}

// Summary fetches the seat snapshot for the filter and summarizes seat
// activity over the trailing 30 days.
func (s *Service) Summary(ctx context.Context, filter source.Filter) (*Summary, error) {
	snapshot, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}
	management := seats.Summarize(snapshot, s.now())
	return &Summary{
		ManagementSummary: management,
		AdoptionRate:      seats.AdoptionRate(management),
	}, nil
}

func (s *Service) fetch(ctx context.Context, filter source.Filter) (*seats.Snapshot, error) {
	filter = filter.WithScopeDefaults(s.scope, s.enterprise, s.organization)
	key := cacheKey(filter)

	if data, ok := s.cache.Get(ctx, key); ok {
		var cached seats.Snapshot
		if err := json.Unmarshal(data, &cached); err == nil {
			s.obs.RecordSourceFetch(s.sourceName, "cache_hit", 0)
			return &cached, nil
		}
		slog.Warn("discarding undecodable cached seats payload", "key", key)
	}

	start := time.Now()
	snapshot, err := s.source.Seats(ctx, filter)
	if err != nil {
		s.obs.RecordSourceFetch(s.sourceName, "error", time.Since(start))
		return nil, fmt.Errorf("fetch seats: %w", err)
	}
	s.obs.RecordSourceFetch(s.sourceName, "ok", time.Since(start))

	if snapshot != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			s.cache.Set(ctx, key, data)
		}
	}
	return snapshot, nil
}

func cacheKey(filter source.Filter) string {
	parts := []string{"seats"}
	if !filter.Until.IsZero() {
		parts = append(parts, timeutil.FormatDay(filter.Until))
	}
	parts = append(parts, filter.Enterprise, filter.Organization, filter.Team)
	return strings.Join(parts, ":")
}
