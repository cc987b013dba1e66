package metrics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Every aggregator below is a standalone pure function over the normalized
// sequence. Each one owns its own empty-input and zero-denominator guards
// rather than sharing a safe-divide helper, so each stays independently
// testable.

const unknownTimeFrame = "Unknown"

// AcceptanceRatePoint carries a day's code acceptance rates for line charts.
type AcceptanceRatePoint struct {
	AcceptanceRate      float64 `json:"acceptanceRate"`
	AcceptanceLinesRate float64 `json:"acceptanceLinesRate"`
	TimeFrameDisplay    string  `json:"timeFrameDisplay"`
}

// AcceptanceRates computes per-record suggestion and line acceptance rates as
// percentages, zero when nothing was suggested that day.
func AcceptanceRates(records []Usage) []AcceptanceRatePoint {
	if len(records) == 0 {
		return []AcceptanceRatePoint{}
	}

	points := make([]AcceptanceRatePoint, 0, len(records))
	for _, item := range records {
		var accepted, suggested, linesAccepted, linesSuggested int
		for _, b := range item.Breakdown {
			accepted += b.AcceptancesCount
			suggested += b.SuggestionsCount
			linesAccepted += b.LinesAccepted
			linesSuggested += b.LinesSuggested
		}

		rate := 0.0
		if suggested != 0 {
			rate = float64(accepted) / float64(suggested) * 100
		}
		linesRate := 0.0
		if linesSuggested != 0 {
			linesRate = float64(linesAccepted) / float64(linesSuggested) * 100
		}

		points = append(points, AcceptanceRatePoint{
			AcceptanceRate:      round2(rate),
			AcceptanceLinesRate: round2(linesRate),
			TimeFrameDisplay:    displayLabel(item),
		})
	}
	return points
}

// ActiveUsersPoint carries a day's active and chat-engaged user counts.
type ActiveUsersPoint struct {
	TotalUsers       int    `json:"totalUsers"`
	TotalChatUsers   int    `json:"totalChatUsers"`
	TimeFrameDisplay string `json:"timeFrameDisplay"`
}

// ActiveUsers passes through per-record user counts.
func ActiveUsers(records []Usage) []ActiveUsersPoint {
	if len(records) == 0 {
		return []ActiveUsersPoint{}
	}
	points := make([]ActiveUsersPoint, 0, len(records))
	for _, item := range records {
		points = append(points, ActiveUsersPoint{
			TotalUsers:       item.TotalActiveUsers,
			TotalChatUsers:   item.TotalChatEngagedUsers,
			TimeFrameDisplay: displayLabel(item),
		})
	}
	return points
}

// ChatAcceptanceRatePoint carries a day's chat acceptance rate.
type ChatAcceptanceRatePoint struct {
	AcceptanceChatRate float64 `json:"acceptanceChatRate"`
	TimeFrameDisplay   string  `json:"timeFrameDisplay"`
}

// ChatAcceptanceRates computes (insertions+copies)/chats as a percentage.
// Insertion and copy events can both fire for one chat, so the raw ratio may
// exceed 100%; the reported rate is capped there.
func ChatAcceptanceRates(records []Usage) []ChatAcceptanceRatePoint {
	if len(records) == 0 {
		return []ChatAcceptanceRatePoint{}
	}
	points := make([]ChatAcceptanceRatePoint, 0, len(records))
	for _, item := range records {
		rate := 0.0
		if item.TotalChats != 0 {
			rate = float64(item.TotalChatInsertionEvents+item.TotalChatCopyEvents) / float64(item.TotalChats) * 100
			if rate > 100 {
				rate = 100
			}
		}
		points = append(points, ChatAcceptanceRatePoint{
			AcceptanceChatRate: round2(rate),
			TimeFrameDisplay:   displayLabel(item),
		})
	}
	return points
}

// LineTotalsPoint carries a day's suggested/accepted line counts.
type LineTotalsPoint struct {
	TotalLinesAccepted  int    `json:"totalLinesAccepted"`
	TotalLinesSuggested int    `json:"totalLinesSuggested"`
	TimeFrameDisplay    string `json:"timeFrameDisplay"`
}

// LineTotals sums suggested and accepted lines over each record's breakdown.
func LineTotals(records []Usage) []LineTotalsPoint {
	if len(records) == 0 {
		return []LineTotalsPoint{}
	}
	points := make([]LineTotalsPoint, 0, len(records))
	for _, item := range records {
		var accepted, suggested int
		for _, b := range item.Breakdown {
			accepted += b.LinesAccepted
			suggested += b.LinesSuggested
		}
		points = append(points, LineTotalsPoint{
			TotalLinesAccepted:  accepted,
			TotalLinesSuggested: suggested,
			TimeFrameDisplay:    displayLabel(item),
		})
	}
	return points
}

// SuggestionTotalsPoint carries a day's suggestion/acceptance counts.
type SuggestionTotalsPoint struct {
	TotalAcceptancesCount int    `json:"totalAcceptancesCount"`
	TotalSuggestionsCount int    `json:"totalSuggestionsCount"`
	TimeFrameDisplay      string `json:"timeFrameDisplay"`
}

// SuggestionTotals sums suggestion and acceptance counts over each record's
// breakdown.
func SuggestionTotals(records []Usage) []SuggestionTotalsPoint {
	if len(records) == 0 {
		return []SuggestionTotalsPoint{}
	}
	points := make([]SuggestionTotalsPoint, 0, len(records))
	for _, item := range records {
		var acceptances, suggestions int
		for _, b := range item.Breakdown {
			acceptances += b.AcceptancesCount
			suggestions += b.SuggestionsCount
		}
		points = append(points, SuggestionTotalsPoint{
			TotalAcceptancesCount: acceptances,
			TotalSuggestionsCount: suggestions,
			TimeFrameDisplay:      displayLabel(item),
		})
	}
	return points
}

// ChatTotalsPoint carries a day's chat interaction counts.
type ChatTotalsPoint struct {
	TotalChats               int    `json:"totalChats"`
	TotalChatInsertionEvents int    `json:"totalChatInsertionEvents"`
	TotalChatCopyEvents      int    `json:"totalChatCopyEvents"`
	TimeFrameDisplay         string `json:"timeFrameDisplay"`
}

// ChatTotals passes through per-record chat counters.
func ChatTotals(records []Usage) []ChatTotalsPoint {
	if len(records) == 0 {
		return []ChatTotalsPoint{}
	}
	points := make([]ChatTotalsPoint, 0, len(records))
	for _, item := range records {
		points = append(points, ChatTotalsPoint{
			TotalChats:               item.TotalChats,
			TotalChatInsertionEvents: item.TotalChatInsertionEvents,
			TotalChatCopyEvents:      item.TotalChatCopyEvents,
			TimeFrameDisplay:         displayLabel(item),
		})
	}
	return points
}

// PieSlice is one category of a share-of-total donut chart. Fill carries the
// CSS variable slot the frontend theme resolves to a color: the four largest
// categories get distinct slots, everything after shares the fifth.
type PieSlice struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Fill  string  `json:"fill"`
}

// EditorDistribution groups breakdown entries by editor across all records
// and converts summed active users into percentage shares.
func EditorDistribution(records []Usage) []PieSlice {
	return shareByCategory(records, func(b Breakdown) string { return b.Editor })
}

// LanguageDistribution groups breakdown entries by language across all
// records and converts summed active users into percentage shares.
func LanguageDistribution(records []Usage) []PieSlice {
	return shareByCategory(records, func(b Breakdown) string { return b.Language })
}

func shareByCategory(records []Usage, key func(Breakdown) string) []PieSlice {
	if len(records) == 0 {
		return []PieSlice{}
	}

	sums := make(map[string]int)
	order := make([]string, 0)
	for _, item := range records {
		for _, b := range item.Breakdown {
			name := key(b)
			if name == "" {
				continue
			}
			if _, seen := sums[name]; !seen {
				order = append(order, name)
			}
			sums[name] += b.ActiveUsers
		}
	}

	total := 0
	for _, v := range sums {
		total += v
	}
	if total == 0 {
		return []PieSlice{}
	}

	slices := make([]PieSlice, 0, len(order))
	for _, name := range order {
		slices = append(slices, PieSlice{
			ID:    name,
			Name:  name,
			Value: round2(float64(sums[name]) / float64(total) * 100),
		})
	}
	sort.SliceStable(slices, func(i, j int) bool { return slices[i].Value > slices[j].Value })
	for i := range slices {
		slot := 5
		if i < 4 {
			slot = i + 1
		}
		slices[i].Fill = fmt.Sprintf("hsl(var(--chart-%d))", slot)
	}
	return slices
}

// AverageActiveUsers is the mean of total_active_users across all records.
func AverageActiveUsers(records []Usage) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, item := range records {
		sum += item.TotalActiveUsers
	}
	return float64(sum) / float64(len(records))
}

// CumulativeAcceptanceRate blends the mean per-day line acceptance rate with
// the mean per-day chat acceptance rate into the single headline figure.
func CumulativeAcceptanceRate(records []Usage) float64 {
	if len(records) == 0 {
		return 0
	}

	lineRates := AcceptanceRates(records)
	chatRates := ChatAcceptanceRates(records)
	if len(lineRates) == 0 || len(chatRates) == 0 {
		return 0
	}

	var lineSum, chatSum float64
	for _, r := range lineRates {
		lineSum += r.AcceptanceLinesRate
	}
	for _, r := range chatRates {
		chatSum += r.AcceptanceChatRate
	}

	lineMean := lineSum / float64(len(lineRates))
	chatMean := chatSum / float64(len(chatRates))
	return (lineMean + chatMean) / 2
}

func displayLabel(item Usage) string {
	if item.TimeFrameDisplay == "" {
		return unknownTimeFrame
	}
	return item.TimeFrameDisplay
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
