package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/raphaelgruber/datagen/internal/config"
	"github.com/raphaelgruber/datagen/internal/export"
	"github.com/raphaelgruber/datagen/internal/hub"
	"github.com/raphaelgruber/datagen/internal/llm"
	"github.com/raphaelgruber/datagen/internal/metrics"
	"github.com/raphaelgruber/datagen/internal/models"
	"github.com/raphaelgruber/datagen/internal/parser"
	"github.com/raphaelgruber/datagen/internal/selection"
	"github.com/raphaelgruber/datagen/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// trainSplit is the only split rows are selected from.
const trainSplit = "train"

func runGenerate(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	cfg := config.Load()
	if opts.verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, cleanup := config.SetupLogger(cmd.ErrOrStderr(), cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	logger = logger.With("run_id", uuid.New().String()[:8])
	prevLogger := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(prevLogger)

	templates, err := parser.LoadTemplates(cfg.PromptsFile)
	if err != nil {
		return err
	}

	completer, err := llm.New(cfg)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	logger.Info("datagen starting", "version", Version, "provider", cfg.Provider, "model", completer.Model(), "rate", opts.rate)

	collector := metrics.NewCollector()
	svc := service.NewGeneratorService(completer, templates, logger).WithMetrics(collector)

	var result *service.RunResult
	if opts.folder != "" {
		result, err = svc.ProcessFolder(ctx, opts.folder)
		if err != nil {
			return fmt.Errorf("process folder: %w", err)
		}
	} else {
		rows, err := selectRows(ctx, cmd, cfg, opts, collector)
		if err != nil {
			return err
		}
		result, err = svc.ProcessRows(ctx, opts.repo, rows)
		if err != nil {
			return fmt.Errorf("process rows: %w", err)
		}
	}

	datasetPath, err := export.WriteDataset(opts.outDir, result.Dataset)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Dataset saved to %s\n", datasetPath)

	if opts.rate {
		ratingsPath, err := export.WriteRatings(opts.outDir, result.Ratings)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Ratings saved to %s\n", ratingsPath)
	}

	calls := collector.Snapshot()
	for _, op := range calls {
		logger.Info("call stats", "op", op.Name, "count", op.Count, "failed", op.Failed,
			"avg_ms", op.AvgTimeMs, "input_tokens", op.InputTokens, "output_tokens", op.OutputTokens)
	}
	printSummary(out, result.Summary(), defaultTheme)
	printCallStats(out, calls, collector.Elapsed(), defaultTheme)
	return nil
}

// selectRows loads the train split and picks rows either from --rows or
// from interactive input.
func selectRows(ctx context.Context, cmd *cobra.Command, cfg config.Config, opts *rootOptions, collector *metrics.Collector) ([]models.Row, error) {
	out := cmd.OutOrStdout()

	client := hub.NewClient(cfg.HubURL, cfg.HubToken).WithMetrics(collector)
	rows, err := client.LoadSplit(ctx, opts.repo, trainSplit)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	if opts.rows != "" {
		indices, err := selection.ParseIndices(opts.rows, len(rows))
		if err != nil {
			return nil, fmt.Errorf("select rows: %w", err)
		}
		return selection.Pick(rows, indices), nil
	}

	if err := selection.PrintRows(out, rows); err != nil {
		return nil, fmt.Errorf("print rows: %w", err)
	}

	in := cmd.InOrStdin()
	var prompt io.Writer
	if isTerminal(in) {
		prompt = out
	}
	indices, err := selection.Prompt(selection.NewLineReader(in), prompt, len(rows))
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	return selection.Pick(rows, indices), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
