package render

import (
	"fmt"
	"strings"

	"github.com/hyperengineering/croppriceai/internal/chat"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Market renders one line per ticker tile with a trend arrow.
func (r *Renderer) Market(tiles []agriapi.MarketTile) string {
	if len(tiles) == 0 {
		return r.muted.Render("Market data unavailable.")
	}
	lines := []string{r.title.Render("Live Market")}
	for _, t := range tiles {
		var arrow string
		switch t.Trend {
		case "Up":
			arrow = r.good.Render(fmt.Sprintf("▲ %.1f%%", t.Change))
		case "Down":
			arrow = r.bad.Render(fmt.Sprintf("▼ %.1f%%", t.Change))
		default:
			arrow = r.muted.Render(fmt.Sprintf("▶ %.1f%%", t.Change))
		}
		lines = append(lines, fmt.Sprintf("%-8s %14s  %s", t.Crop, r.Rupees(t.Price), arrow))
	}
	return strings.Join(lines, "\n")
}

// Alerts renders the alert list.
func (r *Renderer) Alerts(list []agriapi.Alert) string {
	if len(list) == 0 {
		return r.muted.Render("No active alerts.")
	}
	lines := []string{r.title.Render("Active Alerts")}
	for _, a := range list {
		line := fmt.Sprintf("#%-4d %-8s %-5s %s  → %s", a.ID, a.Crop, a.Condition, r.Rupees(a.TargetPrice), a.Contact)
		if a.CreatedAt != "" {
			line += "  " + r.muted.Render(a.CreatedAt)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Chat renders the header and the transcript. Suggestions are offered
// until the first question.
func (r *Renderer) Chat(p chat.Pack, turns []chat.Turn) string {
	lines := []string{r.title.Render(p.Title), r.muted.Render(p.Subtitle), ""}
	for _, t := range turns {
		lines = append(lines, r.Turn(t))
	}
	if len(turns) <= 1 {
		lines = append(lines, "")
		for _, s := range p.Suggestions {
			lines = append(lines, r.accent.Render("  › "+s))
		}
	}
	return strings.Join(lines, "\n")
}

// Turn renders one transcript entry.
func (r *Renderer) Turn(t chat.Turn) string {
	if t.Sender == chat.User {
		return r.accent.Render("🧑 ") + t.Text
	}
	return r.good.Render("🤖 ") + t.Text
}
