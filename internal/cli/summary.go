package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/datagen/internal/metrics"
	"github.com/raphaelgruber/datagen/internal/models"
	"github.com/raphaelgruber/datagen/internal/service"
)

// Theme holds the color scheme for the run summary.
type Theme struct {
	Title   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Title:   lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Warning: lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) okStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success)
}

func (t Theme) warnStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func printSummary(w io.Writer, sum service.Summary, theme Theme) {
	count := func(n int, bad bool) string {
		s := fmt.Sprintf("%d", n)
		if n == 0 {
			return s
		}
		if bad {
			return theme.warnStyle().Render(s)
		}
		return theme.okStyle().Render(s)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.titleStyle().Render("Run summary"))
	fmt.Fprintf(w, "  units:      %d\n", sum.Units)
	fmt.Fprintf(w, "  generated:  %s\n", count(sum.Generated, false))
	fmt.Fprintf(w, "  skipped:    %s\n", count(sum.Skipped, true))
	fmt.Fprintf(w, "  rated:      %s\n", count(sum.Rated, false))
	fmt.Fprintf(w, "  unrated:    %s\n", count(sum.Unrated, true))
	if sum.Nonconforming > 0 {
		fmt.Fprintf(w, "  off-format: %s\n", count(sum.Nonconforming, true))
	}
	if sum.Truncated > 0 {
		fmt.Fprintf(w, "  truncated rows: %s\n", count(sum.Truncated, true))
	}
	if sum.FileErrors > 0 {
		fmt.Fprintf(w, "  file errors: %s\n", count(sum.FileErrors, true))
	}

	if len(sum.SkipReasons) == 0 {
		return
	}
	reasons := make([]models.SkipReason, 0, len(sum.SkipReasons))
	for r := range sum.SkipReasons {
		reasons = append(reasons, r)
	}
	slices.Sort(reasons)
	for _, r := range reasons {
		fmt.Fprintln(w, theme.hintStyle().Render(fmt.Sprintf("    %s: %d", r, sum.SkipReasons[r])))
	}
}

func printCallStats(w io.Writer, calls []metrics.OperationSnapshot, elapsed time.Duration, theme Theme) {
	if len(calls) == 0 {
		return
	}
	fmt.Fprintln(w, theme.titleStyle().Render("Calls"))
	for _, op := range calls {
		line := fmt.Sprintf("  %-9s %d calls, %d failed, avg %.0fms", op.Name, op.Count, op.Failed, op.AvgTimeMs)
		if op.InputTokens > 0 || op.OutputTokens > 0 {
			line += fmt.Sprintf(", tokens %d in / %d out", op.InputTokens, op.OutputTokens)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, theme.hintStyle().Render(fmt.Sprintf("  elapsed %s", elapsed.Round(time.Millisecond))))
}
