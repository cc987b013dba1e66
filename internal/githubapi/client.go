// Package githubapi is the live REST source for Copilot metrics and billing
// seat listings.
package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ncecere/copilot_usage_dashboard/internal/metrics"
	"github.com/ncecere/copilot_usage_dashboard/internal/seats"
	"github.com/ncecere/copilot_usage_dashboard/internal/source"
	"github.com/ncecere/copilot_usage_dashboard/internal/timeutil"
)

const (
	defaultBaseURL    = "https://api.github.com"
	defaultAPIVersion = "2022-11-28"
	acceptHeader      = "application/vnd.github+json"
)

// ErrMissingEntity is returned when a filter names neither an enterprise nor
// an organization after scope defaulting.
var ErrMissingEntity = errors.New("filter requires an enterprise or organization")

// Options configures the client. Token is required; everything else has a
// sensible default.
type Options struct {
	Token      string
	APIVersion string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the GitHub REST API. Construct once and reuse; it is safe for
// concurrent use.
type Client struct {
	token      string
	apiVersion string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// New constructs a client from options.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("github token is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := opts.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		token:      opts.Token,
		apiVersion: version,
		baseURL:    baseURL,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// Metrics fetches the daily usage snapshots for the filtered entity,
// optionally bounded by the filter's since/until days.
func (c *Client) Metrics(ctx context.Context, filter source.Filter) ([]metrics.Metrics, error) {
	entity, basePath, err := entityPath(filter)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if !filter.Since.IsZero() {
		query.Set("since", timeutil.FormatDay(filter.Since))
	}
	if !filter.Until.IsZero() {
		query.Set("until", timeutil.FormatDay(filter.Until))
	}
	reqURL := c.baseURL + basePath + "/copilot/metrics"
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	var records []metrics.Metrics
	if _, err := c.getJSON(ctx, reqURL, entity, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// seatsPage mirrors one page of the billing seats listing.
type seatsPage struct {
	TotalSeats int          `json:"total_seats"`
	Seats      []seats.Seat `json:"seats"`
}

// Seats fetches the full seat listing for the filtered entity, following the
// Link response header until no rel="next" entry remains.
func (c *Client) Seats(ctx context.Context, filter source.Filter) (*seats.Snapshot, error) {
	entity, basePath, err := entityPath(filter)
	if err != nil {
		return nil, err
	}

	now := c.now()
	snapshot := &seats.Snapshot{
		Enterprise:   filter.Enterprise,
		Organization: filter.Organization,
		Date:         timeutil.FormatDay(now),
		LastUpdate:   now.Format("2006-01-02T15:04:05"),
		Seats:        []seats.Seat{},
	}
	if filter.Enterprise != "" {
		snapshot.ID = fmt.Sprintf("%s-ENT-%s", snapshot.Date, filter.Enterprise)
	} else {
		snapshot.ID = fmt.Sprintf("%s-ORG-%s", snapshot.Date, filter.Organization)
	}

	pageURL := c.baseURL + basePath + "/copilot/billing/seats"
	for pageURL != "" {
		var page seatsPage
		linkHeader, err := c.getJSON(ctx, pageURL, entity, &page)
		if err != nil {
			return nil, err
		}
		snapshot.Seats = append(snapshot.Seats, page.Seats...)
		snapshot.TotalSeats = page.TotalSeats
		pageURL = nextURLFromLinkHeader(linkHeader)
	}
	return snapshot, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL, entity string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-GitHub-Api-Version", c.apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &source.StatusError{Entity: entity, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("decode github response: %w", err)
	}
	return resp.Header.Get("Link"), nil
}

func entityPath(filter source.Filter) (entity, path string, err error) {
	switch {
	case filter.Enterprise != "":
		return filter.Enterprise, "/enterprises/" + url.PathEscape(filter.Enterprise), nil
	case filter.Organization != "":
		return filter.Organization, "/orgs/" + url.PathEscape(filter.Organization), nil
	default:
		return "", "", ErrMissingEntity
	}
}

var linkEntryRe = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// nextURLFromLinkHeader extracts the rel="next" target from a comma-separated
// Link header, empty when there is no next page.
func nextURLFromLinkHeader(header string) string {
	if header == "" {
		return ""
	}
	for _, link := range strings.Split(header, ",") {
		match := linkEntryRe.FindStringSubmatch(link)
		if match != nil && match[2] == "next" {
			return match[1]
		}
	}
	return ""
}
