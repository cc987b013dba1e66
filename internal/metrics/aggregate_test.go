package metrics

import (
	"math"
	"reflect"
	"testing"
)

func usageDay(day string, breakdown ...Breakdown) Usage {
	return Usage{Day: day, Breakdown: breakdown, TimeFrameDisplay: "Jan 01"}
}

func TestAcceptanceRates(t *testing.T) {
	records := []Usage{
		usageDay("2024-01-01",
			Breakdown{SuggestionsCount: 100, AcceptancesCount: 40, LinesSuggested: 200, LinesAccepted: 50},
		),
	}
	points := AcceptanceRates(records)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].AcceptanceRate != 40.00 {
		t.Fatalf("expected acceptance rate 40.00, got %v", points[0].AcceptanceRate)
	}
	if points[0].AcceptanceLinesRate != 25.00 {
		t.Fatalf("expected lines rate 25.00, got %v", points[0].AcceptanceLinesRate)
	}
	if points[0].TimeFrameDisplay != "Jan 01" {
		t.Fatalf("unexpected display label %q", points[0].TimeFrameDisplay)
	}
}

func TestAcceptanceRatesZeroDenominator(t *testing.T) {
	records := []Usage{
		usageDay("2024-01-01", Breakdown{SuggestionsCount: 0, AcceptancesCount: 0}),
	}
	points := AcceptanceRates(records)
	if points[0].AcceptanceRate != 0 || points[0].AcceptanceLinesRate != 0 {
		t.Fatalf("expected zero rates, got %+v", points[0])
	}
}

func TestAcceptanceRatesRounding(t *testing.T) {
	records := []Usage{
		usageDay("2024-01-01", Breakdown{SuggestionsCount: 3, AcceptancesCount: 1}),
	}
	points := AcceptanceRates(records)
	if points[0].AcceptanceRate != 33.33 {
		t.Fatalf("expected 33.33, got %v", points[0].AcceptanceRate)
	}
}

func TestActiveUsersPassthrough(t *testing.T) {
	records := []Usage{
		{Day: "2024-01-01", TotalActiveUsers: 12, TotalChatEngagedUsers: 7, TimeFrameDisplay: "Jan 01"},
		{Day: "2024-01-02"},
	}
	points := ActiveUsers(records)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].TotalUsers != 12 || points[0].TotalChatUsers != 7 {
		t.Fatalf("unexpected point %+v", points[0])
	}
	if points[1].TotalUsers != 0 || points[1].TimeFrameDisplay != "Unknown" {
		t.Fatalf("expected zero defaults and Unknown label, got %+v", points[1])
	}
}

func TestChatAcceptanceRateCappedAt100(t *testing.T) {
	records := []Usage{
		{Day: "2024-01-01", TotalChats: 10, TotalChatInsertionEvents: 8, TotalChatCopyEvents: 5, TimeFrameDisplay: "Jan 01"},
	}
	points := ChatAcceptanceRates(records)
	if points[0].AcceptanceChatRate != 100.00 {
		t.Fatalf("expected rate capped at 100, got %v", points[0].AcceptanceChatRate)
	}
}

func TestChatAcceptanceRateZeroChats(t *testing.T) {
	records := []Usage{
		{Day: "2024-01-01", TotalChats: 0, TotalChatInsertionEvents: 5, TimeFrameDisplay: "Jan 01"},
	}
	points := ChatAcceptanceRates(records)
	if points[0].AcceptanceChatRate != 0 {
		t.Fatalf("expected 0 for zero chats, got %v", points[0].AcceptanceChatRate)
	}
}

func TestChatAcceptanceRateUncapped(t *testing.T) {
	records := []Usage{
		{Day: "2024-01-01", TotalChats: 20, TotalChatInsertionEvents: 8, TotalChatCopyEvents: 5, TimeFrameDisplay: "Jan 01"},
	}
	points := ChatAcceptanceRates(records)
	if points[0].AcceptanceChatRate != 65.00 {
		t.Fatalf("expected 65.00, got %v", points[0].AcceptanceChatRate)
	}
}

func TestLineAndSuggestionTotals(t *testing.T) {
	records := []Usage{
		usageDay("2024-01-01",
			Breakdown{SuggestionsCount: 10, AcceptancesCount: 4, LinesSuggested: 30, LinesAccepted: 12},
			Breakdown{SuggestionsCount: 5, AcceptancesCount: 3, LinesSuggested: 15, LinesAccepted: 9},
		),
	}

	lines := LineTotals(records)
	if lines[0].TotalLinesSuggested != 45 || lines[0].TotalLinesAccepted != 21 {
		t.Fatalf("unexpected line totals %+v", lines[0])
	}

	suggestions := SuggestionTotals(records)
	if suggestions[0].TotalSuggestionsCount != 15 || suggestions[0].TotalAcceptancesCount != 7 {
		t.Fatalf("unexpected suggestion totals %+v", suggestions[0])
	}
}

func TestChatTotalsPassthrough(t *testing.T) {
	records := []Usage{
		{Day: "2024-01-01", TotalChats: 9, TotalChatInsertionEvents: 4, TotalChatCopyEvents: 2, TimeFrameDisplay: "Jan 01"},
	}
	points := ChatTotals(records)
	if points[0].TotalChats != 9 || points[0].TotalChatInsertionEvents != 4 || points[0].TotalChatCopyEvents != 2 {
		t.Fatalf("unexpected chat totals %+v", points[0])
	}
}

func TestEditorDistributionMergesAndRanks(t *testing.T) {
	records := []Usage{
		usageDay("2024-01-01",
			Breakdown{Editor: "vscode", Language: "ts", ActiveUsers: 30},
			Breakdown{Editor: "jetbrains", Language: "go", ActiveUsers: 60},
		),
		// Mixed-case editors are lowercased by the normalizer before this
		// point; entries with the same key merge.
		usageDay("2024-01-02",
			Breakdown{Editor: "vscode", Language: "ts", ActiveUsers: 20},
		),
	}

	slices := EditorDistribution(records)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Name != "jetbrains" || slices[0].Value != 54.55 {
		t.Fatalf("unexpected top slice %+v", slices[0])
	}
	if slices[1].Name != "vscode" || slices[1].Value != 45.45 {
		t.Fatalf("unexpected merged slice %+v", slices[1])
	}
	if slices[0].Fill != "hsl(var(--chart-1))" || slices[1].Fill != "hsl(var(--chart-2))" {
		t.Fatalf("unexpected color slots: %q, %q", slices[0].Fill, slices[1].Fill)
	}
}

func TestEditorDistributionTieKeepsFirstSeen(t *testing.T) {
	// Equal shares keep first-seen order: the sort is stable and the
	// accumulator walks breakdowns in encounter order.
	records := []Usage{
		usageDay("2024-01-01",
			Breakdown{Editor: "vscode", Language: "ts", ActiveUsers: 30},
			Breakdown{Editor: "jetbrains", Language: "go", ActiveUsers: 50},
		),
		usageDay("2024-01-02",
			Breakdown{Editor: "vscode", Language: "ts", ActiveUsers: 20},
		),
	}

	slices := EditorDistribution(records)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Name != "vscode" || slices[0].Value != 50.00 {
		t.Fatalf("expected first-seen editor to win the tie, got %+v", slices[0])
	}
	if slices[1].Name != "jetbrains" || slices[1].Value != 50.00 {
		t.Fatalf("unexpected second slice %+v", slices[1])
	}
}

func TestDistributionColorSlotSharedAfterFourth(t *testing.T) {
	breakdown := make([]Breakdown, 0, 6)
	for i, lang := range []string{"go", "ts", "py", "rb", "rs", "java"} {
		breakdown = append(breakdown, Breakdown{Editor: "vscode", Language: lang, ActiveUsers: 60 - i*10})
	}
	slices := LanguageDistribution([]Usage{usageDay("2024-01-01", breakdown...)})
	if len(slices) != 6 {
		t.Fatalf("expected 6 slices, got %d", len(slices))
	}
	for i, slice := range slices {
		want := "hsl(var(--chart-5))"
		if i < 4 {
			want = map[int]string{0: "hsl(var(--chart-1))", 1: "hsl(var(--chart-2))", 2: "hsl(var(--chart-3))", 3: "hsl(var(--chart-4))"}[i]
		}
		if slice.Fill != want {
			t.Fatalf("rank %d: want fill %q, got %q", i, want, slice.Fill)
		}
	}
}

func TestDistributionZeroGrandTotal(t *testing.T) {
	records := []Usage{
		usageDay("2024-01-01", Breakdown{Editor: "vscode", Language: "ts", ActiveUsers: 0}),
	}
	if got := EditorDistribution(records); len(got) != 0 {
		t.Fatalf("expected empty distribution for zero total, got %+v", got)
	}
	if got := LanguageDistribution(records); len(got) != 0 {
		t.Fatalf("expected empty distribution for zero total, got %+v", got)
	}
}

func TestAverageActiveUsers(t *testing.T) {
	records := []Usage{
		{TotalActiveUsers: 10},
		{TotalActiveUsers: 20},
		{TotalActiveUsers: 40},
	}
	if got := AverageActiveUsers(records); math.Abs(got-23.333333) > 1e-5 {
		t.Fatalf("unexpected average %v", got)
	}
	if got := AverageActiveUsers(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}

func TestCumulativeAcceptanceRate(t *testing.T) {
	records := []Usage{
		{
			Day:                      "2024-01-01",
			Breakdown:                []Breakdown{{LinesSuggested: 100, LinesAccepted: 40}},
			TotalChats:               10,
			TotalChatInsertionEvents: 2,
			TimeFrameDisplay:         "Jan 01",
		},
		{
			Day:                      "2024-01-02",
			Breakdown:                []Breakdown{{LinesSuggested: 100, LinesAccepted: 60}},
			TotalChats:               10,
			TotalChatInsertionEvents: 4,
			TimeFrameDisplay:         "Jan 01",
		},
	}
	// mean lines rate = (40+60)/2 = 50, mean chat rate = (20+40)/2 = 30.
	if got := CumulativeAcceptanceRate(records); got != 40 {
		t.Fatalf("expected blended rate 40, got %v", got)
	}
	if got := CumulativeAcceptanceRate(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}

func TestAggregatorsAreIdempotent(t *testing.T) {
	records := []Usage{
		usageDay("2024-01-01",
			Breakdown{Editor: "vscode", Language: "ts", SuggestionsCount: 100, AcceptancesCount: 40, LinesSuggested: 50, LinesAccepted: 20, ActiveUsers: 5},
		),
	}
	first := AcceptanceRates(records)
	second := AcceptanceRates(records)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output on reruns: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(EditorDistribution(records), EditorDistribution(records)) {
		t.Fatal("editor distribution should be deterministic")
	}
}

func TestAggregatorsEmptyInput(t *testing.T) {
	if got := AcceptanceRates(nil); len(got) != 0 {
		t.Fatalf("AcceptanceRates: expected empty, got %v", got)
	}
	if got := ActiveUsers(nil); len(got) != 0 {
		t.Fatalf("ActiveUsers: expected empty, got %v", got)
	}
	if got := ChatAcceptanceRates(nil); len(got) != 0 {
		t.Fatalf("ChatAcceptanceRates: expected empty, got %v", got)
	}
	if got := LineTotals(nil); len(got) != 0 {
		t.Fatalf("LineTotals: expected empty, got %v", got)
	}
	if got := SuggestionTotals(nil); len(got) != 0 {
		t.Fatalf("SuggestionTotals: expected empty, got %v", got)
	}
	if got := ChatTotals(nil); len(got) != 0 {
		t.Fatalf("ChatTotals: expected empty, got %v", got)
	}
	if got := EditorDistribution(nil); len(got) != 0 {
		t.Fatalf("EditorDistribution: expected empty, got %v", got)
	}
	if got := LanguageDistribution(nil); len(got) != 0 {
		t.Fatalf("LanguageDistribution: expected empty, got %v", got)
	}
}
