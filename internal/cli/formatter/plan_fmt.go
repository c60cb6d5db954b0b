package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/llm"
)

// FormatPlan renders a generation result as a table grouped by date, with
// the summary and source underneath.
func FormatPlan(res *domain.GenerationResult) string {
	if res == nil || len(res.Events) == 0 {
		return Dim("No events.") + "\n"
	}

	var b strings.Builder
	b.WriteString(Header("Plan"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(res.Events))
	prevDate := ""
	for _, ev := range res.Events {
		date := ev.Date
		if date == prevDate {
			date = ""
		} else {
			prevDate = ev.Date
		}
		rows = append(rows, []string{
			Dim(date),
			StyleGreen.Render(ev.StartTime + "-" + ev.EndTime),
			Bold(ev.Title),
			ev.Location,
			truncate(ev.Description, 40),
		})
	}
	b.WriteString(RenderTable([]string{"DATE", "TIME", "TITLE", "LOCATION", "NOTES"}, rows))

	b.WriteString("\n")
	b.WriteString(SourceBadge(res.Source))
	b.WriteString("  ")
	b.WriteString(res.Summary)
	b.WriteString("\n")
	return b.String()
}

// FormatSaved reports how many events were stored and published.
func FormatSaved(userID string, saved, published int) string {
	line := fmt.Sprintf("Saved %d event(s) for user %s", saved, userID)
	if published > 0 {
		line += fmt.Sprintf(", published %d to CalDAV", published)
	}
	return StyleGreen.Render(line) + "\n"
}

// FormatProviders lists backends in priority order with their eligibility.
func FormatProviders(infos []llm.ProviderInfo) string {
	var b strings.Builder
	b.WriteString(Header("Providers"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(infos)+1)
	for i, info := range infos {
		state := StyleGreen.Render("ready")
		switch {
		case !info.Eligible:
			state = StyleRed.Render("skipped")
		case info.Reachable != nil && !*info.Reachable:
			state = StyleYellow.Render("unreachable")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			Bold(string(info.Kind)),
			state,
			strings.Join(info.Models, ", "),
			Dim(info.Reason),
		})
	}
	rows = append(rows, []string{
		fmt.Sprintf("%d", len(infos)+1),
		Bold("fallback"),
		StyleYellow.Render("always"),
		"rule-based parser",
		"",
	})
	b.WriteString(RenderTable([]string{"#", "PROVIDER", "STATE", "MODELS", "REASON"}, rows))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
