package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/rustyeddy/marketmind/internal/app"
	"github.com/rustyeddy/marketmind/market"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	buyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	sellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	holdStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

func actionStyle(a market.Action) lipgloss.Style {
	switch a {
	case market.Buy:
		return buyStyle
	case market.Sell:
		return sellStyle
	default:
		return holdStyle
	}
}

// stepPrinter writes one line per decision, plus one for its fill.
func stepPrinter(w io.Writer) app.Reporter {
	return func(r app.StepResult) {
		if r.Err != nil {
			fmt.Fprintf(w, "%s %s\n", r.Symbol, errorStyle.Render(r.Err.Error()))
			return
		}
		d := r.Decision
		line := fmt.Sprintf("%s %s %s size=%.2f",
			d.Time.Format("2006-01-02T15:04:05Z07:00"), d.Symbol,
			actionStyle(d.Action).Render(string(d.Action)), d.Size)
		if len(d.GuardrailsApplied) > 0 {
			line += " " + mutedStyle.Render(fmt.Sprintf("guardrails=%v", d.GuardrailsApplied))
		}
		fmt.Fprintln(w, line)
		if r.Fill != nil {
			fmt.Fprintf(w, " fill @%.2f latency=%.1fms\n", r.Fill.Price, r.Fill.LatencyMs)
		}
	}
}
