package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/ncecere/copilot_usage_dashboard/internal/app"
	"github.com/ncecere/copilot_usage_dashboard/internal/config"
	"github.com/ncecere/copilot_usage_dashboard/internal/metrics"
	"github.com/ncecere/copilot_usage_dashboard/internal/seats"
	"github.com/ncecere/copilot_usage_dashboard/internal/services/seatsvc"
	usagesvc "github.com/ncecere/copilot_usage_dashboard/internal/services/usage"
	"github.com/ncecere/copilot_usage_dashboard/internal/source"
)

type stubMetricsSource struct {
	records []metrics.Metrics
	err     error
}

func (s *stubMetricsSource) Metrics(ctx context.Context, filter source.Filter) ([]metrics.Metrics, error) {
	return s.records, s.err
}

type stubSeatsSource struct {
	snapshot *seats.Snapshot
	err      error
}

func (s *stubSeatsSource) Seats(ctx context.Context, filter source.Filter) (*seats.Snapshot, error) {
	return s.snapshot, s.err
}

func testServer(t *testing.T, metricsSrc source.MetricsSource, seatsSrc source.SeatsSource) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.GitHub.Scope = config.ScopeOrganization
	cfg.GitHub.Organization = "acme"
	cfg.Features.Dashboard = true
	cfg.Features.Seats = true

	container := &app.Container{
		Config:     cfg,
		SourceName: "github",
		Usage: usagesvc.NewService(usagesvc.Options{
			Source:       metricsSrc,
			SourceName:   "github",
			Scope:        source.ScopeOrganization,
			Organization: "acme",
		}),
		Seats: seatsvc.NewService(seatsvc.Options{
			Source:       seatsSrc,
			SourceName:   "github",
			Scope:        source.ScopeOrganization,
			Organization: "acme",
		}),
	}

	server, err := New(container)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return server
}

func decodeBody(t *testing.T, body io.Reader, out any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	src := &stubMetricsSource{records: []metrics.Metrics{
		{
			Date: "2024-01-09",
			IDECodeCompletions: &metrics.IDECodeCompletions{
				Editors: []metrics.CompletionEditor{{
					Name: "VSCode",
					Models: []metrics.CompletionModel{{
						Name: "default",
						Languages: []metrics.CompletionLanguage{{
							Name: "go", TotalCodeSuggestions: 10, TotalCodeAcceptances: 4,
						}},
					}},
				}},
			},
		},
	}}
	server := testServer(t, src, &stubSeatsSource{})

	resp, err := server.app.Test(httptest.NewRequest("GET", "/api/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var records []metrics.Usage
	decodeBody(t, resp.Body, &records)
	if len(records) != 1 || records[0].TotalCodeSuggestions != 10 {
		t.Fatalf("unexpected payload %+v", records)
	}
	if records[0].Breakdown[0].Editor != "vscode" {
		t.Fatalf("expected normalized editor, got %q", records[0].Breakdown[0].Editor)
	}
}

func TestMetricsEndpointInvalidDates(t *testing.T) {
	server := testServer(t, &stubMetricsSource{}, &stubSeatsSource{})

	resp, err := server.app.Test(httptest.NewRequest("GET", "/api/metrics?since=01-02-2024", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for bad since, got %d", resp.StatusCode)
	}

	resp, err = server.app.Test(httptest.NewRequest("GET", "/api/metrics?since=2024-03-15&until=2024-03-01", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for inverted range, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpointUpstreamError(t *testing.T) {
	src := &stubMetricsSource{err: &source.StatusError{Entity: "acme", Status: 404}}
	server := testServer(t, src, &stubSeatsSource{})

	resp, err := server.app.Test(httptest.NewRequest("GET", "/api/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 502 {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	if body["entity"] != "acme" || body["upstream_status"] != float64(404) {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	server := testServer(t, &stubMetricsSource{}, &stubSeatsSource{})

	resp, err := server.app.Test(httptest.NewRequest("GET", "/api/metrics/summary", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	series, ok := body["acceptanceRates"].([]any)
	if !ok || len(series) != 0 {
		t.Fatalf("expected empty acceptanceRates array, got %v", body["acceptanceRates"])
	}
}

func TestSeatsEndpoint(t *testing.T) {
	src := &stubSeatsSource{snapshot: &seats.Snapshot{
		ID:           "2024-03-15-ORG-acme",
		Organization: "acme",
		TotalSeats:   2,
		Seats:        []seats.Seat{{}, {}},
	}}
	server := testServer(t, &stubMetricsSource{}, src)

	resp, err := server.app.Test(httptest.NewRequest("GET", "/api/seats", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	if body["id"] != "2024-03-15-ORG-acme" {
		t.Fatalf("unexpected seats body %v", body)
	}
	if body["adoption_rate"] != float64(0) {
		t.Fatalf("expected zero adoption rate, got %v", body["adoption_rate"])
	}
}

func TestFeaturesEndpoint(t *testing.T) {
	server := testServer(t, &stubMetricsSource{}, &stubSeatsSource{})

	resp, err := server.app.Test(httptest.NewRequest("GET", "/api/features", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	if body["dashboard"] != true || body["seats"] != true {
		t.Fatalf("unexpected features %v", body)
	}
}

func TestHealthz(t *testing.T) {
	server := testServer(t, &stubMetricsSource{}, &stubSeatsSource{})

	resp, err := server.app.Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health status %v", body["status"])
	}
}
