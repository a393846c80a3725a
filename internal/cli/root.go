// Package cli provides the command-line interface for datagen.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// ErrNoSource is returned when neither --folder nor --repo is given.
// The usage message has already been printed when it is returned.
var ErrNoSource = errors.New("no input source given")

// rootOptions holds the flag values of one invocation.
type rootOptions struct {
	folder  string
	repo    string
	rate    bool
	rows    string
	outDir  string
	verbose bool
}

// NewRootCmd builds the datagen command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Generate a synthetic training dataset with an LLM",
		Long: `Datagen sends local text/code files, or selected rows of a remote dataset,
to a language model and records the generated examples and a 1-10 quality rating.

Each .txt paragraph (split on blank lines), each .py file, or each selected row
is one unit. Results are written to dataset.json, and with --rate also to
ratings.jsonl.

Examples:
  datagen --folder ./notes
  datagen --folder ./src --rate
  datagen --repo tatsu-lab/alpaca --rows 0,5,12 --rate`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.folder == "" && opts.repo == "" {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Please provide either a folder path or a dataset repository path.")
				fmt.Fprint(out, cmd.UsageString())
				return ErrNoSource
			}
			return runGenerate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.folder, "folder", "", "path to the folder containing .txt/.py files")
	flags.StringVar(&opts.repo, "repo", "", "dataset repository id (train split is used)")
	flags.BoolVar(&opts.rate, "rate", false, "also write ratings.jsonl")
	flags.StringVar(&opts.rows, "rows", "", "comma-separated row indices to select with --repo (skips the interactive prompt)")
	flags.StringVarP(&opts.outDir, "out", "o", ".", "directory for dataset.json and ratings.jsonl")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	cmd.MarkFlagsMutuallyExclusive("folder", "repo")
	cmd.MarkFlagsMutuallyExclusive("folder", "rows")

	return cmd
}

// ExecuteContext runs the root command with ctx, which cancels in-flight requests.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
