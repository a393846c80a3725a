package service

import "github.com/raphaelgruber/datagen/internal/models"

// RunResult collects everything a run produced, in processing order.
type RunResult struct {
	Dataset        []models.GenerationExample
	Ratings        []models.RatingExample
	Outcomes       []models.Outcome
	FilesProcessed int
	Errors         []string
}

// Summary counts outcomes by step status.
type Summary struct {
	Units          int
	Generated      int
	Skipped        int
	Rated          int
	Unrated        int
	Nonconforming  int
	Truncated      int
	FilesProcessed int
	FileErrors     int
	SkipReasons    map[models.SkipReason]int
}

// Summary tallies the run's outcomes.
func (r *RunResult) Summary() Summary {
	sum := Summary{
		Units:          len(r.Outcomes),
		FilesProcessed: r.FilesProcessed,
		FileErrors:     len(r.Errors),
		SkipReasons:    make(map[models.SkipReason]int),
	}
	for _, o := range r.Outcomes {
		if o.Truncated {
			sum.Truncated++
		}
		if !o.Generation.OK() {
			sum.Skipped++
			sum.SkipReasons[o.Generation.Reason]++
			continue
		}
		sum.Generated++
		if o.Rating.OK() {
			sum.Rated++
		} else {
			sum.Unrated++
			sum.SkipReasons[o.Rating.Reason]++
		}
		if o.Conforms != nil && !*o.Conforms {
			sum.Nonconforming++
		}
	}
	return sum
}

// LogAttrs returns the summary as slog key/value pairs.
func (r *RunResult) LogAttrs() []any {
	sum := r.Summary()
	return []any{
		"units", sum.Units,
		"generated", sum.Generated,
		"skipped", sum.Skipped,
		"rated", sum.Rated,
		"unrated", sum.Unrated,
		"truncated", sum.Truncated,
		"errors", sum.FileErrors,
	}
}
