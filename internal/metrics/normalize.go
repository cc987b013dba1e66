package metrics

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/ncecere/copilot_usage_dashboard/internal/timeutil"
)

// Normalize flattens raw daily snapshots into chart-ready usage records.
// Input is sorted ascending by date before labeling; downstream aggregators
// rely on that order. A record whose date cannot be parsed is dropped with a
// warning so one bad row never sinks the batch.
func Normalize(records []Metrics) []Usage {
	if len(records) == 0 {
		return []Usage{}
	}

	sorted := make([]Metrics, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	out := make([]Usage, 0, len(sorted))
	for _, item := range sorted {
		day, err := timeutil.ParseDay(item.Date)
		if err != nil {
			slog.Warn("skipping metrics record with unparseable date", slog.String("date", item.Date))
			continue
		}

		usage := Usage{
			Day:               item.Date,
			TotalActiveUsers:  item.TotalActiveUsers,
			TotalEngagedUsers: item.TotalEngagedUsers,
			Breakdown:         []Breakdown{},
			TimeFrameWeek:     timeutil.WeekLabel(day),
			TimeFrameMonth:    timeutil.MonthLabel(day),
		}
		usage.TimeFrameDisplay = usage.TimeFrameWeek

		if cc := item.IDECodeCompletions; cc != nil {
			usage.TotalIDEEngagedUsers = cc.TotalEngagedUsers
			for _, editor := range cc.Editors {
				name := strings.ToLower(editor.Name)
				for _, model := range editor.Models {
					for _, lang := range model.Languages {
						usage.Breakdown = append(usage.Breakdown, Breakdown{
							Editor:           name,
							Model:            model.Name,
							Language:         lang.Name,
							SuggestionsCount: lang.TotalCodeSuggestions,
							AcceptancesCount: lang.TotalCodeAcceptances,
							LinesSuggested:   lang.TotalCodeLinesSuggested,
							LinesAccepted:    lang.TotalCodeLinesAccepted,
							ActiveUsers:      lang.TotalEngagedUsers,
						})
						usage.TotalCodeSuggestions += lang.TotalCodeSuggestions
						usage.TotalCodeAcceptances += lang.TotalCodeAcceptances
						usage.TotalCodeLinesSuggested += lang.TotalCodeLinesSuggested
						usage.TotalCodeLinesAccepted += lang.TotalCodeLinesAccepted
					}
				}
			}
		}

		if chat := item.IDEChat; chat != nil {
			usage.TotalChatEngagedUsers = chat.TotalEngagedUsers
			for _, editor := range chat.Editors {
				for _, model := range editor.Models {
					usage.TotalChats += model.TotalChats
					usage.TotalChatInsertionEvents += model.TotalChatInsertionEvents
					usage.TotalChatCopyEvents += model.TotalChatCopyEvents
				}
			}
		}

		// Dotcom chat adds onto the IDE chat totals; the sources are
		// additive, not mutually exclusive.
		if dotcom := item.DotcomChat; dotcom != nil {
			for _, model := range dotcom.Models {
				usage.TotalChats += model.TotalChats
			}
			usage.TotalChatEngagedUsers += dotcom.TotalEngagedUsers
		}

		out = append(out, usage)
	}

	return out
}
