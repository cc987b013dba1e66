// Package seats summarizes Copilot license assignments into the adoption
// figures shown on the seats page.
package seats

import (
	"time"
)

// activityWindow is how far back a seat's last activity may be while still
// counting as active this cycle. It is a moving window anchored at the
// summarization moment, not a billing-cycle cutoff.
const activityWindow = 30 * 24 * time.Hour

// Snapshot is one day's seat assignment listing for an enterprise or
// organization, either fetched live from the billing API or read from the
// seats history table.
type Snapshot struct {
	Enterprise   string `json:"enterprise,omitempty" dynamodbav:"enterprise,omitempty"`
	Organization string `json:"organization,omitempty" dynamodbav:"organization,omitempty"`
	Team         string `json:"team,omitempty" dynamodbav:"team,omitempty"`
	Date         string `json:"date" dynamodbav:"date"`
	ID           string `json:"id" dynamodbav:"id"`
	LastUpdate   string `json:"last_update" dynamodbav:"last_update"`
	TotalSeats   int    `json:"total_seats" dynamodbav:"total_seats"`
	Seats        []Seat `json:"seats" dynamodbav:"seats"`
}

// Seat is a single assigned license.
type Seat struct {
	CreatedAt               string   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt               string   `json:"updated_at" dynamodbav:"updated_at"`
	LastActivityAt          string   `json:"last_activity_at" dynamodbav:"last_activity_at"`
	LastActivityEditor      string   `json:"last_activity_editor" dynamodbav:"last_activity_editor"`
	PendingCancellationDate string   `json:"pending_cancellation_date" dynamodbav:"pending_cancellation_date"`
	PlanType                string   `json:"plan_type" dynamodbav:"plan_type"`
	Assignee                Assignee `json:"assignee" dynamodbav:"assignee"`
}

// Assignee identifies the user holding the seat.
type Assignee struct {
	Login string `json:"login" dynamodbav:"login"`
	ID    int64  `json:"id" dynamodbav:"id"`
}

// Breakdown is the seat-state tally behind the adoption chart. The added and
// pending fields are carried for a richer upstream source and are never
// derived from snapshots here.
type Breakdown struct {
	Total               int `json:"total"`
	ActiveThisCycle     int `json:"active_this_cycle"`
	InactiveThisCycle   int `json:"inactive_this_cycle"`
	AddedThisCycle      int `json:"added_this_cycle"`
	PendingInvitation   int `json:"pending_invitation"`
	PendingCancellation int `json:"pending_cancellation"`
}

// Policy carries the seat breakdown plus pass-through plan configuration
// strings; none of the strings are computed by this pipeline.
type Policy struct {
	SeatBreakdown         Breakdown `json:"seat_breakdown"`
	SeatManagementSetting string    `json:"seat_management_setting"`
	PublicCodeSuggestions string    `json:"public_code_suggestions"`
	IDEChat               string    `json:"ide_chat"`
	PlatformChat          string    `json:"platform_chat"`
	CLI                   string    `json:"cli"`
	PlanType              string    `json:"plan_type"`
}

// ManagementSummary is the seats-page payload.
type ManagementSummary struct {
	Enterprise   string `json:"enterprise"`
	Organization string `json:"organization"`
	Date         string `json:"date"`
	ID           string `json:"id"`
	LastUpdate   string `json:"last_update"`
	TotalSeats   int    `json:"total_seats"`
	Seats        Policy `json:"seats"`
}

// Summarize tallies a snapshot into a management summary. A nil snapshot
// yields an all-zero summary with blank metadata so callers never see null
// fields.
func Summarize(snapshot *Snapshot, now time.Time) ManagementSummary {
	summary := ManagementSummary{}
	if snapshot == nil {
		return summary
	}

	active := 0
	cutoff := now.Add(-activityWindow)
	for _, seat := range snapshot.Seats {
		if isActive(seat, cutoff) {
			active++
		}
	}

	summary.Enterprise = snapshot.Enterprise
	summary.Organization = snapshot.Organization
	summary.Date = snapshot.Date
	summary.ID = snapshot.ID
	summary.LastUpdate = snapshot.LastUpdate
	summary.TotalSeats = snapshot.TotalSeats
	summary.Seats.SeatBreakdown.Total = len(snapshot.Seats)
	summary.Seats.SeatBreakdown.ActiveThisCycle = active
	summary.Seats.SeatBreakdown.InactiveThisCycle = len(snapshot.Seats) - active
	return summary
}

// AdoptionRate is the share of tallied seats active this cycle, in percent.
// Owns its own zero-guard like every other aggregator.
func AdoptionRate(summary ManagementSummary) float64 {
	total := summary.Seats.SeatBreakdown.Total
	if total == 0 {
		return 0
	}
	return float64(summary.Seats.SeatBreakdown.ActiveThisCycle) / float64(total) * 100
}

func isActive(seat Seat, cutoff time.Time) bool {
	if seat.LastActivityAt == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339, seat.LastActivityAt)
	if err != nil {
		return false
	}
	return !ts.Before(cutoff)
}
