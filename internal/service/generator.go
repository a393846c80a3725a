// Package service runs the dataset generation pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/datagen/internal/llm"
	"github.com/raphaelgruber/datagen/internal/metrics"
	"github.com/raphaelgruber/datagen/internal/models"
	"github.com/raphaelgruber/datagen/internal/parser"
)

// GeneratorService turns input units into generation and rating examples.
// Units are processed one at a time; the rating call for a unit always
// follows its generation call.
type GeneratorService struct {
	llm       llm.Completer
	templates parser.Templates
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// NewGeneratorService creates a generator. A nil logger uses slog.Default().
func NewGeneratorService(completer llm.Completer, templates parser.Templates, logger *slog.Logger) *GeneratorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeneratorService{
		llm:       completer,
		templates: templates,
		logger:    logger,
	}
}

// WithMetrics records the timing and token usage of every call in c.
func (s *GeneratorService) WithMetrics(c *metrics.Collector) *GeneratorService {
	s.metrics = c
	return s
}

// CollectFiles lists the supported regular files directly inside dirPath,
// sorted by name.
func (s *GeneratorService) CollectFiles(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !parser.Supported(entry.Name()) {
			continue
		}
		path := filepath.Join(dirPath, entry.Name())
		// Stat follows symlinks so linked files count as regular files.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// FileUnits reads one file and builds its input units.
// A .py file is one unit; a .txt file yields one unit per paragraph.
func (s *GeneratorService) FileUnits(path string) ([]models.InputUnit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	if parser.IsCode(path) {
		return []models.InputUnit{{
			Kind:   models.KindCode,
			Source: path,
			Text:   s.templates.CodePrompt(string(content)),
		}}, nil
	}

	paragraphs := parser.SplitParagraphs(string(content))
	units := make([]models.InputUnit, 0, len(paragraphs))
	for i, p := range paragraphs {
		units = append(units, models.InputUnit{
			Kind:     models.KindText,
			Source:   path,
			Position: i,
			Text:     p,
		})
	}
	return units, nil
}

// RowUnits flattens selected dataset rows into input units.
func (s *GeneratorService) RowUnits(repo string, rows []models.Row) []models.InputUnit {
	units := make([]models.InputUnit, 0, len(rows))
	for _, row := range rows {
		units = append(units, models.InputUnit{
			Kind:      models.KindRow,
			Source:    fmt.Sprintf("%s#%d", repo, row.Index),
			Position:  row.Index,
			Text:      parser.FlattenRow(row),
			Truncated: len(row.Truncated) > 0,
		})
	}
	return units
}

// ProcessFolder runs every supported file in dirPath through the pipeline.
// Unreadable files are recorded in RunResult.Errors and skipped.
func (s *GeneratorService) ProcessFolder(ctx context.Context, dirPath string) (*RunResult, error) {
	files, err := s.CollectFiles(dirPath)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting folder processing", "folder", dirPath, "files", len(files))

	result := &RunResult{}
	for i, file := range files {
		s.logger.Info("processing file", "file", filepath.Base(file), "progress", fmt.Sprintf("%d/%d", i+1, len(files)))

		units, err := s.FileUnits(file)
		if err != nil {
			s.logger.Warn("skipping file", "file", file, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file, err))
			continue
		}
		result.FilesProcessed++

		if err := s.processUnits(ctx, units, result); err != nil {
			return nil, err
		}
	}

	s.logger.Info("folder processing complete", result.LogAttrs()...)
	return result, nil
}

// ProcessRows runs selected dataset rows through the pipeline.
func (s *GeneratorService) ProcessRows(ctx context.Context, repo string, rows []models.Row) (*RunResult, error) {
	s.logger.Info("starting row processing", "repo", repo, "rows", len(rows))

	result := &RunResult{}
	if err := s.processUnits(ctx, s.RowUnits(repo, rows), result); err != nil {
		return nil, err
	}

	s.logger.Info("row processing complete", result.LogAttrs()...)
	return result, nil
}

// ProcessUnits runs arbitrary units through the pipeline.
func (s *GeneratorService) ProcessUnits(ctx context.Context, units []models.InputUnit) (*RunResult, error) {
	result := &RunResult{}
	if err := s.processUnits(ctx, units, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GeneratorService) processUnits(ctx context.Context, units []models.InputUnit, result *RunResult) error {
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted: %w", err)
		}
		outcome, err := s.processUnit(ctx, unit, result)
		if err != nil {
			return err
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return nil
}

// processUnit issues the generation call and, if it produced an example,
// the rating call. Only context cancellation is returned as an error.
func (s *GeneratorService) processUnit(ctx context.Context, unit models.InputUnit, result *RunResult) (models.Outcome, error) {
	outcome := models.Outcome{
		Kind:      unit.Kind,
		Source:    unit.Source,
		Position:  unit.Position,
		Rating:    models.Skipped(models.ReasonNotGenerated, ""),
		Truncated: unit.Truncated,
	}
	log := s.logger.With("source", unit.Source, "position", unit.Position)

	if parser.IsBlank(unit.Text) {
		outcome.Generation = models.Skipped(models.ReasonEmptyInput, "")
		log.Debug("unit skipped", "step", "generation", "reason", outcome.Generation.Reason)
		return outcome, nil
	}

	output, step, err := s.complete(ctx, metrics.OpGenerate, llm.GenerationRequest(unit.Text))
	if err != nil {
		return outcome, err
	}
	outcome.Generation = step
	if !step.OK() {
		s.logSkip(log, "generation", step)
		return outcome, nil
	}

	output = strings.TrimSpace(output)
	result.Dataset = append(result.Dataset, models.GenerationExample{Input: unit.Text, Output: output})

	if unit.Kind == models.KindCode {
		conforms := true
		if err := parser.ValidateConversation(output); err != nil {
			conforms = false
			log.Warn("generated conversation does not match requested format", "error", err)
		}
		outcome.Conforms = &conforms
	}

	text, step, err := s.complete(ctx, metrics.OpRate, llm.RatingRequest(s.templates.RatingPrompt(unit.Text)))
	if err != nil {
		return outcome, err
	}
	if step.OK() {
		var score int
		score, step = parseRating(text)
		if step.OK() {
			result.Ratings = append(result.Ratings, models.RatingExample{Input: unit.Text, Output: score})
		}
	}
	outcome.Rating = step
	if !step.OK() {
		s.logSkip(log, "rating", step)
	}

	return outcome, nil
}

// complete sends one request and classifies the response. The returned error
// is non-nil only when ctx is done.
func (s *GeneratorService) complete(ctx context.Context, op string, req llm.Request) (string, models.Step, error) {
	start := time.Now()
	completion, err := s.llm.Complete(ctx, req)
	text, ok := completion.First()
	var usage llm.Usage
	if completion != nil {
		usage = completion.Usage
	}
	s.metrics.RecordCall(op, time.Since(start), usage.InputTokens, usage.OutputTokens, err != nil || !ok)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", models.Step{}, fmt.Errorf("run interrupted: %w", ctxErr)
		}
		if errors.Is(err, llm.ErrFatalAPI) {
			s.logger.Warn("provider rejected request", "model", s.llm.Model(), "error", err)
		}
		return "", models.Skipped(models.ReasonRequestFailed, err.Error()), nil
	}

	if !ok {
		return "", models.Skipped(models.ReasonNoContent, ""), nil
	}
	return text, models.Okay(), nil
}

func (s *GeneratorService) logSkip(log *slog.Logger, stepName string, step models.Step) {
	log.Debug("unit skipped", "step", stepName, "reason", step.Reason, "detail", step.Detail)
}

// parseRating reads a bare integer score in [MinRating, MaxRating].
func parseRating(text string) (int, models.Step) {
	trimmed := strings.TrimSpace(text)
	score, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, models.Skipped(models.ReasonNotANumber, trimmed)
	}
	if score < models.MinRating || score > models.MaxRating {
		return 0, models.Skipped(models.ReasonOutOfRange, trimmed)
	}
	return score, models.Okay()
}
