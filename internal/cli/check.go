package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// ErrCycleFound is returned by the check command when the pipeline is not a
// DAG. The result has already been printed at that point; main uses the
// sentinel to pick the exit status without printing again.
var ErrCycleFound = stderrors.New("pipeline contains a cycle")

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	jsonOut   bool // write the report as JSON instead of styled output
	noCache   bool // skip the report cache entirely
	refresh   bool // recompute even if a cached report exists
	noHistory bool // do not record the run
	watch     bool // re-check whenever the file changes
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	opts := checkOpts{}

	cmd := &cobra.Command{
		Use:   "check <file|->",
		Short: "Check a pipeline file for cycles",
		Long: `Check reads a pipeline document exported from the visual editor and
reports the node count, edge count, and whether the connections form a
directed acyclic graph. Pass - to read the document from stdin.

The command exits 0 for a valid DAG, 2 when a cycle is found, and 1 on
any other failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch {
				if args[0] == "-" {
					return errors.New(errors.ErrCodeInvalidInput, "cannot watch stdin")
				}
				return c.watchCheck(cmd.Context(), args[0], &opts)
			}
			return c.runCheck(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "write the report as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached report exists")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record this run in history")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-check whenever the file changes")

	return cmd
}

// runCheck performs a single check of the pipeline file at path.
func (c *CLI) runCheck(ctx context.Context, path string, opts *checkOpts) error {
	runner := c.newRunner(opts.noCache, opts.noHistory)
	defer runner.Close()
	return c.checkOnce(ctx, runner, path, opts)
}

// checkOnce loads, analyzes, and reports on a single pipeline document. It
// returns ErrCycleFound when the pipeline contains a cycle.
func (c *CLI) checkOnce(ctx context.Context, runner *pipeline.Runner, path string, opts *checkOpts) error {
	p, err := readPipeline(path)
	if err != nil {
		return err
	}

	res, err := runner.Execute(ctx, p, pipeline.Options{
		Refresh: opts.refresh,
		Source:  pipeline.SourceCLI,
		Logger:  c.Logger,
	})
	if err != nil {
		return err
	}

	if opts.jsonOut {
		if err := json.NewEncoder(os.Stdout).Encode(res.Report); err != nil {
			return err
		}
	} else {
		printReport(displayName(path), res)
	}

	if !res.Report.IsDAG {
		return ErrCycleFound
	}
	return nil
}

// readPipeline loads the document at path, or from stdin when path is "-".
func readPipeline(path string) (*pipeline.Pipeline, error) {
	if path == "-" {
		return pipeline.ReadJSON(os.Stdin)
	}
	return pipeline.ReadFile(path)
}

// displayName names the input in human output.
func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

// printReport writes the styled check result to stdout.
func printReport(name string, res *pipeline.Result) {
	if res.Report.IsDAG {
		printSuccess("%s is a valid pipeline", name)
	} else {
		printError("%s contains a cycle", name)
	}
	printStats(res.Report.NumNodes, res.Report.NumEdges, res.Cached)
}
