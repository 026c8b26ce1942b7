// Package render draws view results for the terminal with lipgloss.
// Colour is decided by the output writer: a pipe or buffer gets plain text.
package render

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hyperengineering/croppriceai/internal/shell"
	"github.com/hyperengineering/croppriceai/internal/validation"
)

const barWidth = 30

// Renderer holds the styles for one output.
type Renderer struct {
	lg      *lipgloss.Renderer
	printer *message.Printer

	title   lipgloss.Style
	card    lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	accent  lipgloss.Style
	chip    lipgloss.Style
	barFill lipgloss.Style
	barRest lipgloss.Style
}

// New creates a renderer for w.
func New(w io.Writer) *Renderer {
	lg := lipgloss.NewRenderer(w)
	return &Renderer{
		lg:      lg,
		printer: message.NewPrinter(language.English),
		title:   lg.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		card: lg.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(0, 1),
		muted:   lg.NewStyle().Foreground(lipgloss.Color("240")),
		good:    lg.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		warn:    lg.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		bad:     lg.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		accent:  lg.NewStyle().Foreground(lipgloss.Color("39")),
		chip:    lg.NewStyle().Foreground(lipgloss.Color("42")).Border(lipgloss.NormalBorder(), false, true).Padding(0, 1),
		barFill: lg.NewStyle().Foreground(lipgloss.Color("42")),
		barRest: lg.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Rupees formats v as "₹ 12,345.67".
func (r *Renderer) Rupees(v float64) string {
	return r.printer.Sprintf("₹ %.2f", v)
}

// wholeRupees formats v rounded to whole rupees.
func (r *Renderer) wholeRupees(v float64) string {
	return r.printer.Sprintf("₹ %d", int64(math.Round(v)))
}

func (r *Renderer) bar(v, max float64) string {
	if max <= 0 || v < 0 {
		v = 0
	}
	n := 0
	if max > 0 {
		n = int(math.Round(v / max * barWidth))
	}
	if n > barWidth {
		n = barWidth
	}
	return r.barFill.Render(strings.Repeat("█", n)) + r.barRest.Render(strings.Repeat("░", barWidth-n))
}

type labelled struct {
	label string
	value float64
}

// bars draws one row per entry, scaled to the largest value.
func (r *Renderer) bars(rows []labelled, format func(float64) string) string {
	width, max := 0, 0.0
	for _, row := range rows {
		width = int(math.Max(float64(width), float64(lipgloss.Width(row.label))))
		max = math.Max(max, row.value)
	}
	var b strings.Builder
	for _, row := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(row.label))
		fmt.Fprintf(&b, "%s%s  %s  %s\n", row.label, pad, r.bar(row.value, max), format(row.value))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func sortedByValue(m map[string]float64) []labelled {
	rows := make([]labelled, 0, len(m))
	for k, v := range m {
		rows = append(rows, labelled{k, v})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].value == rows[j].value {
			return rows[i].label < rows[j].label
		}
		return rows[i].value > rows[j].value
	})
	return rows
}

// Failure renders a view's failure message.
func (r *Renderer) Failure(msg string) string {
	return r.bad.Render("✗ " + msg)
}

// Notice renders a non-fatal notice.
func (r *Renderer) Notice(msg string) string {
	return r.warn.Render("! " + msg)
}

// Placeholder renders the empty state of a lookup that found nothing.
func (r *Renderer) Placeholder(msg string) string {
	return r.muted.Render(msg)
}

// FieldErrors lists validation failures, one per line.
func (r *Renderer) FieldErrors(errs validation.Errors) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = r.bad.Render("• ") + e.String()
	}
	return strings.Join(lines, "\n")
}

// Menu renders the shell greeting and its items.
func (r *Renderer) Menu(greeting string, items []shell.Item) string {
	var b strings.Builder
	b.WriteString(r.title.Render("🌾 CropPriceAI"))
	b.WriteString("  " + r.muted.Render(greeting) + "\n")
	for _, it := range items {
		fmt.Fprintf(&b, "  %-16s %s\n", it.Label, r.accent.Render("croppriceai "+it.Command))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
