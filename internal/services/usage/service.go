// Package usage turns raw daily Copilot metrics into the normalized records
// and chart-ready aggregates the dashboard serves.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ncecere/copilot_usage_dashboard/internal/cache"
	"github.com/ncecere/copilot_usage_dashboard/internal/metrics"
	"github.com/ncecere/copilot_usage_dashboard/internal/observability"
	"github.com/ncecere/copilot_usage_dashboard/internal/source"
	"github.com/ncecere/copilot_usage_dashboard/internal/timeutil"
)

// Service fetches metrics from the configured source and runs the
// normalization pipeline over them.
type Service struct {
	source     source.MetricsSource
	sourceName string
	cache      *cache.ResponseCache
	obs        *observability.Provider

	scope        source.Scope
	enterprise   string
	organization string
}

// Options wires the service dependencies. Cache and Observability may be nil.
type Options struct {
	Source        source.MetricsSource
	SourceName    string
	Cache         *cache.ResponseCache
	Observability *observability.Provider
	Scope         source.Scope
	Enterprise    string
	Organization  string
}

func NewService(opts Options) *Service {
	return &Service{
		source:       opts.Source,
		sourceName:   opts.SourceName,
		cache:        opts.Cache,
		obs:          opts.Observability,
		scope:        opts.Scope,
		enterprise:   opts.Enterprise,
		organization: opts.Organization,
	}
}

// Records returns the normalized usage series for the filter.
func (s *Service) Records(ctx context.Context, filter source.Filter) ([]metrics.Usage, error) {
	raw, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}
	return metrics.Normalize(raw), nil
}

// Summary is the full set of chart series and scalars for one filter.
type Summary struct {
	AcceptanceRates          []metrics.AcceptanceRatePoint     `json:"acceptanceRates"`
	ChatAcceptanceRates      []metrics.ChatAcceptanceRatePoint `json:"chatAcceptanceRates"`
	ActiveUsers              []metrics.ActiveUsersPoint        `json:"activeUsers"`
	LineTotals               []metrics.LineTotalsPoint         `json:"lineTotals"`
	SuggestionTotals         []metrics.SuggestionTotalsPoint   `json:"suggestionTotals"`
	ChatTotals               []metrics.ChatTotalsPoint         `json:"chatTotals"`
	EditorDistribution       []metrics.PieSlice                `json:"editorDistribution"`
	LanguageDistribution     []metrics.PieSlice                `json:"languageDistribution"`
	AverageActiveUsers       float64                           `json:"averageActiveUsers"`
	CumulativeAcceptanceRate float64                           `json:"cumulativeAcceptanceRate"`
}

// Summary fetches, normalizes, and aggregates in one call.
func (s *Service) Summary(ctx context.Context, filter source.Filter) (*Summary, error) {
	records, err := s.Records(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &Summary{
		AcceptanceRates:          metrics.AcceptanceRates(records),
		ChatAcceptanceRates:      metrics.ChatAcceptanceRates(records),
		ActiveUsers:              metrics.ActiveUsers(records),
		LineTotals:               metrics.LineTotals(records),
		SuggestionTotals:         metrics.SuggestionTotals(records),
		ChatTotals:               metrics.ChatTotals(records),
		EditorDistribution:       metrics.EditorDistribution(records),
		LanguageDistribution:     metrics.LanguageDistribution(records),
		AverageActiveUsers:       metrics.AverageActiveUsers(records),
		CumulativeAcceptanceRate: metrics.CumulativeAcceptanceRate(records),
	}, nil
}

func (s *Service) fetch(ctx context.Context, filter source.Filter) ([]metrics.Metrics, error) {
	filter = filter.WithScopeDefaults(s.scope, s.enterprise, s.organization)
	key := cacheKey(filter)

	if data, ok := s.cache.Get(ctx, key); ok {
		var cached []metrics.Metrics
		if err := json.Unmarshal(data, &cached); err == nil {
			s.obs.RecordSourceFetch(s.sourceName, "cache_hit", 0)
			return cached, nil
		}
		slog.Warn("discarding undecodable cached metrics payload", "key", key)
	}

	start := time.Now()
	raw, err := s.source.Metrics(ctx, filter)
	if err != nil {
		s.obs.RecordSourceFetch(s.sourceName, "error", time.Since(start))
		return nil, fmt.Errorf("fetch metrics: %w", err)
	}
	s.obs.RecordSourceFetch(s.sourceName, "ok", time.Since(start))

	if data, err := json.Marshal(raw); err == nil {
		s.cache.Set(ctx, key, data)
	}
	return raw, nil
}

func cacheKey(filter source.Filter) string {
	parts := []string{"metrics"}
	if !filter.Since.IsZero() {
		parts = append(parts, timeutil.FormatDay(filter.Since))
	}
	if !filter.Until.IsZero() {
		parts = append(parts, timeutil.FormatDay(filter.Until))
	}
	parts = append(parts, filter.Enterprise, filter.Organization, filter.Team)
	return strings.Join(parts, ":")
}
