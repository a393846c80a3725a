package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/datagen/internal/metrics"
	"github.com/raphaelgruber/datagen/internal/models"
	"github.com/raphaelgruber/datagen/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestPrintSummary(t *testing.T) {
	tests := []struct {
		name     string
		sum      service.Summary
		contains []string
		excludes []string
	}{
		{
			name:     "clean run",
			sum:      service.Summary{Units: 2, Generated: 2, Rated: 2},
			contains: []string{"Run summary", "units:      2"},
			excludes: []string{"off-format", "file errors", "truncated rows"},
		},
		{
			name: "skips listed by reason",
			sum: service.Summary{
				Units: 4, Generated: 1, Skipped: 3, Rated: 0, Unrated: 1, Nonconforming: 1, FileErrors: 1, Truncated: 2,
				SkipReasons: map[models.SkipReason]int{
					models.ReasonNoContent:  2,
					models.ReasonEmptyInput: 1,
					models.ReasonNotANumber: 1,
				},
			},
			contains: []string{"off-format", "file errors", "truncated rows: 2", "no_content: 2", "empty_input: 1", "not_a_number: 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printSummary(&buf, tt.sum, defaultTheme)
			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPrintSummaryReasonsSorted(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, service.Summary{
		Skipped: 2,
		SkipReasons: map[models.SkipReason]int{
			models.ReasonRequestFailed: 1,
			models.ReasonEmptyInput:    1,
		},
	}, defaultTheme)

	out := buf.String()
	assert.Less(t, strings.Index(out, "empty_input"), strings.Index(out, "request_failed"))
}

func TestPrintCallStats(t *testing.T) {
	var buf bytes.Buffer
	printCallStats(&buf, []metrics.OperationSnapshot{
		{Name: metrics.OpGenerate, Count: 3, Failed: 1, AvgTimeMs: 12, InputTokens: 30, OutputTokens: 9},
		{Name: metrics.OpRate, Count: 2, AvgTimeMs: 4},
	}, 1500*time.Millisecond, defaultTheme)

	out := buf.String()
	assert.Contains(t, out, "generate  3 calls, 1 failed, avg 12ms, tokens 30 in / 9 out")
	assert.Contains(t, out, "rate      2 calls, 0 failed, avg 4ms\n")
	assert.Contains(t, out, "elapsed 1.5s")
}

func TestPrintCallStatsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printCallStats(&buf, nil, time.Second, defaultTheme)
	assert.Empty(t, buf.String())
}
