// Package source defines the contract between the aggregation services and
// the places raw Copilot data comes from: the live GitHub REST API or the
// snapshot history tables. The pipeline is agnostic to transport; it only
// sees the resulting record lists.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/ncecere/copilot_usage_dashboard/internal/metrics"
	"github.com/ncecere/copilot_usage_dashboard/internal/seats"
)

// Scope selects which GitHub entity kind the dashboard reports on.
type Scope string

const (
	ScopeOrganization Scope = "organization"
	ScopeEnterprise   Scope = "enterprise"
)

// Filter narrows a fetch to an entity and optional date range. Zero Since /
// Until mean "source default" (trailing window for metrics, today for seats).
type Filter struct {
	Since        time.Time
	Until        time.Time
	Enterprise   string
	Organization string
	Team         string
}

// WithScopeDefaults fills the entity matching the configured scope when the
// caller left it empty; the other entity is never defaulted.
func (f Filter) WithScopeDefaults(scope Scope, enterprise, organization string) Filter {
	switch scope {
	case ScopeEnterprise:
		if f.Enterprise == "" {
			f.Enterprise = enterprise
		}
	default:
		if f.Organization == "" {
			f.Organization = organization
		}
	}
	return f
}

// MetricsSource yields raw daily usage snapshots for a filter.
type MetricsSource interface {
	Metrics(ctx context.Context, filter Filter) ([]metrics.Metrics, error)
}

// SeatsSource yields the seat snapshot for a filter, nil when none exists.
type SeatsSource interface {
	Seats(ctx context.Context, filter Filter) (*seats.Snapshot, error)
}

// StatusError tags an upstream non-2xx response so callers can tell a failed
// fetch apart from a successful-but-empty one.
type StatusError struct {
	Entity string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream request for %q failed with status %d", e.Entity, e.Status)
}
