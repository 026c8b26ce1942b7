package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperengineering/croppriceai/internal/pages"
	"github.com/hyperengineering/croppriceai/internal/resultparse"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Price renders the dashboard prediction card and its five-month outlook.
func (r *Renderer) Price(p *agriapi.PricePrediction) string {
	card := r.card.Render(strings.Join([]string{
		r.muted.Render("Predicted Price"),
		r.title.Render(r.Rupees(p.PredictedPrice) + " / Quintal"),
		p.Suggestion,
		r.muted.Render("Trend: ") + p.Trend,
	}, "\n"))

	trend := pages.PriceTrend(p.PredictedPrice)
	rows := make([]labelled, len(trend))
	for i, m := range trend {
		rows[i] = labelled{m.Month, m.Price}
	}
	return card + "\n" + r.title.Render("Price Outlook") + "\n" + r.bars(rows, r.wholeRupees)
}

// Weather renders a weather lookup.
func (r *Renderer) Weather(w *agriapi.Weather) string {
	return fmt.Sprintf("🌡 %.1f °C   💧 %.0f%% humidity   🌧 %.1f mm rainfall", w.Temperature, w.Humidity, w.Rainfall)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func spark(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		out[i] = sparkRunes[idx]
	}
	return string(out)
}

// Analytics renders the average-price charts and the recent trend per crop.
func (r *Renderer) Analytics(a *agriapi.Analytics) string {
	var sections []string
	if len(a.AvgPriceByCrop) > 0 {
		sections = append(sections, r.title.Render("Average Price by Crop")+"\n"+r.bars(sortedByValue(a.AvgPriceByCrop), r.wholeRupees))
	}
	if len(a.AvgPriceByRegion) > 0 {
		sections = append(sections, r.title.Render("Average Price by Region")+"\n"+r.bars(sortedByValue(a.AvgPriceByRegion), r.wholeRupees))
	}

	if len(a.TrendData) > 0 {
		series := map[string][]float64{}
		var crops []string
		for _, p := range a.TrendData {
			if _, ok := series[p.Crop]; !ok {
				crops = append(crops, p.Crop)
			}
			series[p.Crop] = append(series[p.Crop], p.Price)
		}
		sort.Strings(crops)

		first, last := a.TrendData[0].Date, a.TrendData[len(a.TrendData)-1].Date
		lines := []string{r.title.Render("Recent Trend") + " " + r.muted.Render(first+" to "+last)}
		for _, c := range crops {
			s := series[c]
			lines = append(lines, fmt.Sprintf("%-10s %s  %s", c, r.accent.Render(spark(s)), r.wholeRupees(s[len(s)-1])))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(sections) == 0 {
		return r.muted.Render("No analytics data.")
	}
	return strings.Join(sections, "\n\n")
}

// Recommendations renders the ranked crop list, best first.
func (r *Renderer) Recommendations(resp *agriapi.RecommendResponse) string {
	if len(resp.Recommendations) == 0 {
		return r.muted.Render("No crops match these conditions.")
	}
	lines := []string{r.title.Render(fmt.Sprintf("Top %d crops", resp.Count))}
	for i, rec := range resp.Recommendations {
		line := fmt.Sprintf("%2d. %-10s %s", i+1, rec.Crop, r.Rupees(rec.PredictedPrice))
		if i == 0 {
			line = r.good.Render(line + "  ★ Best choice")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) bandStyle(b resultparse.Band) lipgloss.Style {
	switch b {
	case resultparse.BandHigh:
		return r.good
	case resultparse.BandMedium:
		return r.warn
	default:
		return r.bad
	}
}

// Suitability renders a parsed text answer: a verdict, the remaining lines,
// a bar per score and the alternatives as chips.
func (r *Renderer) Suitability(res resultparse.StructuredResult) string {
	if res.Empty() {
		return r.muted.Render(pages.NoResponse)
	}

	verdict := r.good.Render("✓ Recommended")
	if res.Negative {
		verdict = r.bad.Render("✗ Not Recommended")
	}
	parts := []string{verdict}
	if len(res.Lines) > 0 {
		parts = append(parts, strings.Join(res.Lines, "\n"))
	}

	for _, s := range res.Scores {
		label := cases.Title(language.English).String(s.Name)
		parts = append(parts, fmt.Sprintf("%-12s %s  %s",
			label, r.bar(s.Value, 100), r.bandStyle(s.Band).Render(fmt.Sprintf("%.0f%% (%s)", s.Value, s.Band))))
	}

	if len(res.Alternatives) > 0 {
		chips := make([]string, len(res.Alternatives))
		for i, a := range res.Alternatives {
			chips[i] = r.chip.Render(a)
		}
		parts = append(parts, r.muted.Render("Alternatives")+"\n"+lipgloss.JoinHorizontal(lipgloss.Center, chips...))
	}
	return r.card.Render(strings.Join(parts, "\n"))
}

// Pest renders the risk badge, the pest, the spray day and the 7-day chart.
func (r *Renderer) Pest(p *agriapi.PestRisk) string {
	badge := r.good
	switch strings.ToLower(p.RiskLevel) {
	case "high":
		badge = r.bad
	case "medium":
		badge = r.warn
	}

	head := strings.Join([]string{
		badge.Render(fmt.Sprintf("%s RISK  %.0f/100", strings.ToUpper(p.RiskLevel), p.RiskScore)),
		"Pest: " + p.PestName,
		fmt.Sprintf("Recommended spray: Day %d", p.RecommendedSprayDay),
	}, "\n")

	rows := make([]labelled, len(p.Next7Days))
	for i, v := range p.Next7Days {
		rows[i] = labelled{fmt.Sprintf("Day %d", i+1), v}
	}
	chart := r.bars(rows, func(v float64) string { return fmt.Sprintf("%.1f", v) })
	return r.card.Render(head) + "\n" + r.title.Render("Next 7 Days") + "\n" + chart
}
